package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slotdesk/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP: it decodes requests, resolves the acting principal and delegates
// every decision to the usecases. Routes are registered on a chi.Router.
type Handler struct {
	availability port.AvailabilityUseCase
	orders       port.WorkOrderUseCase
	payments     port.PaymentUseCase
	releases     port.ReleaseUseCase
	deployments  port.DeployUseCase
	logger       *slog.Logger
	authSecret   string
	router       chi.Router
}

// NewHandler creates a handler with all routes configured behind the
// bearer-token middleware.
func NewHandler(
	availability port.AvailabilityUseCase,
	orders port.WorkOrderUseCase,
	payments port.PaymentUseCase,
	releases port.ReleaseUseCase,
	deployments port.DeployUseCase,
	logger *slog.Logger,
	authSecret string,
) *Handler {
	h := &Handler{
		availability: availability,
		orders:       orders,
		payments:     payments,
		releases:     releases,
		deployments:  deployments,
		logger:       logger,
		authSecret:   authSecret,
	}

	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.authMiddleware)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.handleReserveCommitments)
			r.Get("/{id}", h.handleGetOrder)
			r.Patch("/{id}/quote", h.handleQuote)
			r.Post("/{id}/negotiate", h.handleNegotiate)
			r.Post("/{id}/accept", h.handleAccept)
			r.Post("/{id}/approve-po", h.handleApprovePO)
			r.Post("/{id}/reject", h.handleRejectOrder)
			r.Get("/{id}/deployments", h.handleListDeployments)
		})

		r.Post("/invoices/{id}/pay", h.handlePayInvoice)

		r.Route("/release-orders", func(r chi.Router) {
			r.Post("/{id}/approve", h.handleApproveRelease)
			r.Post("/{id}/reject", h.handleRejectRelease)
			r.Post("/{id}/return-to-client", h.handleReturnToClient)
			r.Post("/{id}/resubmit", h.handleResubmit)
			r.Post("/{id}/settle", h.handleSettle)
		})

		r.Route("/commitments", func(r chi.Router) {
			r.Post("/{id}/banner", h.handleUploadBanner)
			r.Post("/{id}/deploy", h.handleDeploy)
		})

		r.Route("/slots", func(r chi.Router) {
			r.Get("/", h.handleListSlots)
			r.Post("/", h.handleCreateSlot)
			r.Post("/{id}/block", h.handleBlockSlot)
			r.Post("/{id}/unblock", h.handleUnblockSlot)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
