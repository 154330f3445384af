package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"slotdesk/internal/core/domain"
	"slotdesk/internal/core/port"
)

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

type reserveItemRequest struct {
	SlotID  *int64    `json:"slot_id"`
	Channel string    `json:"channel,omitempty"`
	Start   time.Time `json:"start_date"`
	End     time.Time `json:"end_date"`
}

type reserveOrderRequest struct {
	Items []reserveItemRequest `json:"items"`
}

type commitmentResponse struct {
	ID        int64      `json:"id"`
	SlotID    *int64     `json:"slot_id,omitempty"`
	Channel   string     `json:"channel"`
	Section   string     `json:"section"`
	Start     time.Time  `json:"start_date"`
	End       time.Time  `json:"end_date"`
	Price     int64      `json:"price"`
	BannerRef string     `json:"banner_ref,omitempty"`
	BannerAt  *time.Time `json:"banner_uploaded_at,omitempty"`
}

type orderResponse struct {
	ID           int64                `json:"id"`
	ClientID     int64                `json:"client_id"`
	Status       string               `json:"status"`
	PaymentTerms string               `json:"payment_terms,omitempty"`
	TaxRateBps   int                  `json:"tax_rate_bps"`
	Negotiation  bool                 `json:"negotiation_requested"`
	Reason       string               `json:"negotiation_reason,omitempty"`
	Items        []commitmentResponse `json:"items"`
	Release      *releaseResponse     `json:"release_order,omitempty"`
}

func toOrderResponse(view port.OrderView) orderResponse {
	resp := orderResponse{
		ID:           view.Order.ID,
		ClientID:     view.Order.ClientID,
		Status:       string(view.Order.Status),
		PaymentTerms: string(view.Order.PaymentTerms),
		TaxRateBps:   view.Order.TaxRateBps,
		Negotiation:  view.Order.NegotiationRequested,
		Reason:       view.Order.NegotiationReason,
	}
	for _, c := range view.Commitments {
		resp.Items = append(resp.Items, commitmentResponse{
			ID:        c.ID,
			SlotID:    c.SlotID,
			Channel:   string(c.Channel),
			Section:   c.Section,
			Start:     c.Window.Start,
			End:       c.Window.End,
			Price:     c.Price,
			BannerRef: c.BannerRef,
			BannerAt:  c.BannerUploadedAt,
		})
	}
	if view.Release != nil {
		rr := toReleaseResponse(*view.Release)
		resp.Release = &rr
	}
	return resp
}

// handleReserveCommitments books a client's slot selection. A conflict on
// any item fails the whole order with 409.
func (h *Handler) handleReserveCommitments(w http.ResponseWriter, r *http.Request) {
	var req reserveOrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid JSON")
		return
	}

	in := port.ReserveOrderInput{}
	for _, it := range req.Items {
		in.Items = append(in.Items, port.ReserveItemInput{
			SlotID:  it.SlotID,
			Channel: domain.Channel(it.Channel),
			Window:  domain.Window{Start: it.Start, End: it.End},
		})
	}

	view, err := h.availability.ReserveCommitments(r.Context(), actorFrom(r), in)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(view))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	view, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(view))
}

type quoteRequest struct {
	Prices       map[string]int64 `json:"prices"` // commitment id -> price in cents
	PaymentTerms string           `json:"payment_terms"`
	TaxRateBps   int              `json:"tax_rate_bps"`
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	var req quoteRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid JSON")
		return
	}

	in := port.QuoteInput{
		WorkOrderID:  id,
		PaymentTerms: domain.PaymentTerms(req.PaymentTerms),
		TaxRateBps:   req.TaxRateBps,
	}
	for cid, price := range req.Prices {
		commitmentID, err := strconv.ParseInt(cid, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "invalid commitment id")
			return
		}
		in.Prices = append(in.Prices, port.QuoteItemPrice{CommitmentID: commitmentID, Price: price})
	}

	wo, err := h.orders.Quote(r.Context(), actorFrom(r), in)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(port.OrderView{Order: wo}))
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleNegotiate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid JSON")
		return
	}
	wo, err := h.orders.Negotiate(r.Context(), actorFrom(r), id, req.Reason)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(port.OrderView{Order: wo}))
}

type acceptRequest struct {
	PODocRef string `json:"po_doc_ref"`
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid JSON")
		return
	}
	wo, err := h.orders.Accept(r.Context(), actorFrom(r), id, req.PODocRef)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(port.OrderView{Order: wo}))
}

type invoiceResponse struct {
	ID      int64      `json:"id"`
	Number  string     `json:"number"`
	Kind    string     `json:"kind"`
	Amount  int64      `json:"amount"`
	Status  string     `json:"status"`
	Active  bool       `json:"active"`
	DueDate *time.Time `json:"due_date,omitempty"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
}

func toInvoiceResponse(inv domain.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:      inv.ID,
		Number:  inv.Number,
		Kind:    string(inv.Kind),
		Amount:  inv.Amount,
		Status:  string(inv.Status),
		Active:  inv.Active,
		DueDate: inv.DueDate,
		PaidAt:  inv.PaidAt,
	}
}

func (h *Handler) handleApprovePO(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	inv, err := h.orders.ApprovePO(r.Context(), actorFrom(r), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceResponse(inv))
}

func (h *Handler) handleRejectOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid JSON")
		return
	}
	wo, err := h.orders.Reject(r.Context(), actorFrom(r), id, req.Reason)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(port.OrderView{Order: wo}))
}

func (h *Handler) handlePayInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid id")
		return
	}
	inv, err := h.payments.Pay(r.Context(), actorFrom(r), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}
