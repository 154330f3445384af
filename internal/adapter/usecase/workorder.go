package usecase

import (
	"context"
	"errors"

	"slotdesk/internal/clock"
	"slotdesk/internal/core/domain"
	"slotdesk/internal/core/port"
)

// WorkOrderService drives the commercial lifecycle: draft → quoted →
// (negotiate loop) → client_accepted → paid, with manager rejection as the
// terminal back-out. Every transition is a compare-and-set against the
// status the caller observed, so duplicate clicks fail instead of applying
// twice.
type WorkOrderService struct {
	orders   port.OrderRepository
	releases port.ReleaseRepository
	payments *PaymentService
	clock    clock.Clock
	notify   port.Notifier
}

func NewWorkOrderService(orders port.OrderRepository, releases port.ReleaseRepository, payments *PaymentService, clk clock.Clock, notify port.Notifier) *WorkOrderService {
	return &WorkOrderService{orders: orders, releases: releases, payments: payments, clock: clk, notify: notify}
}

// Quote sets prices, payment terms and tax rate, moving the order to
// quoted. Re-quoting after a negotiation request clears the negotiation
// flag; the reason stays in the event history.
func (s *WorkOrderService) Quote(ctx context.Context, actor domain.Actor, in port.QuoteInput) (domain.WorkOrder, error) {
	if actor.Role != domain.RoleManager {
		return domain.WorkOrder{}, domain.ErrWrongRole
	}
	if !domain.ValidPaymentTerms(in.PaymentTerms) {
		return domain.WorkOrder{}, domain.ErrTermsRequired
	}
	if in.TaxRateBps < 0 {
		return domain.WorkOrder{}, domain.ErrValidation
	}

	now := s.clock.Now()
	var result domain.WorkOrder

	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		wo, err := s.orders.GetWorkOrderForUpdate(txCtx, in.WorkOrderID)
		if err != nil {
			return err
		}
		if !domain.CanTransitionWorkOrder(wo.Status, domain.WorkOrderQuoted) {
			return domain.ErrStaleStatus
		}
		if wo.PricesLocked() {
			return domain.ErrPriceEditLocked
		}

		for _, p := range in.Prices {
			if p.Price <= 0 {
				return domain.ErrNonPositivePrice
			}
			if err := s.orders.UpdateCommitmentPrice(txCtx, p.CommitmentID, p.Price); err != nil {
				return err
			}
		}
		items, err := s.orders.ListCommitments(txCtx, wo.ID)
		if err != nil {
			return err
		}
		for _, c := range items {
			if c.Price <= 0 {
				return domain.ErrNonPositivePrice
			}
		}

		from := wo.Status
		note := ""
		if wo.NegotiationRequested {
			note = "re-quoted after negotiation"
		}
		wo.Status = domain.WorkOrderQuoted
		wo.PaymentTerms = in.PaymentTerms
		wo.TaxRateBps = in.TaxRateBps
		wo.NegotiationRequested = false
		wo.UpdatedAt = now

		ok, err := s.orders.UpdateWorkOrderCAS(txCtx, wo, from)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrStaleStatus
		}
		result = wo
		return s.orders.AppendWorkOrderEvent(txCtx, domain.WorkOrderEvent{
			WorkOrderID: wo.ID,
			FromStatus:  from,
			ToStatus:    domain.WorkOrderQuoted,
			ActorID:     actor.ID,
			ActorRole:   actor.Role,
			Note:        note,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "work_order.quoted", WorkOrderID: result.ID})
	return result, nil
}

// Negotiate records a client's request to renegotiate the quote. The order
// stays quoted with the negotiation flag set until the manager re-quotes.
func (s *WorkOrderService) Negotiate(ctx context.Context, actor domain.Actor, workOrderID int64, reason string) (domain.WorkOrder, error) {
	if actor.Role != domain.RoleClient {
		return domain.WorkOrder{}, domain.ErrWrongRole
	}
	if reason == "" {
		return domain.WorkOrder{}, domain.ErrReasonRequired
	}

	now := s.clock.Now()
	var result domain.WorkOrder

	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		wo, err := s.orders.GetWorkOrderForUpdate(txCtx, workOrderID)
		if err != nil {
			return err
		}
		if wo.Status != domain.WorkOrderQuoted {
			return domain.ErrStaleStatus
		}

		wo.NegotiationRequested = true
		wo.NegotiationReason = reason
		wo.UpdatedAt = now

		ok, err := s.orders.UpdateWorkOrderCAS(txCtx, wo, domain.WorkOrderQuoted)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrStaleStatus
		}
		result = wo
		return s.orders.AppendWorkOrderEvent(txCtx, domain.WorkOrderEvent{
			WorkOrderID: wo.ID,
			FromStatus:  domain.WorkOrderQuoted,
			ToStatus:    domain.WorkOrderQuoted,
			ActorID:     actor.ID,
			ActorRole:   actor.Role,
			Note:        "negotiation requested: " + reason,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "work_order.negotiation_requested", WorkOrderID: result.ID, Detail: reason})
	return result, nil
}

// Accept records the client's acceptance of the quote. A purchase order
// document must already be uploaded; its storage ref comes with the call.
func (s *WorkOrderService) Accept(ctx context.Context, actor domain.Actor, workOrderID int64, poDocRef string) (domain.WorkOrder, error) {
	if actor.Role != domain.RoleClient {
		return domain.WorkOrder{}, domain.ErrWrongRole
	}
	if poDocRef == "" {
		return domain.WorkOrder{}, domain.ErrPODocRequired
	}

	now := s.clock.Now()
	var result domain.WorkOrder

	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		wo, err := s.orders.GetWorkOrderForUpdate(txCtx, workOrderID)
		if err != nil {
			return err
		}
		if !domain.CanTransitionWorkOrder(wo.Status, domain.WorkOrderClientAccepted) {
			return domain.ErrStaleStatus
		}

		from := wo.Status
		wo.Status = domain.WorkOrderClientAccepted
		wo.PODocRef = poDocRef
		wo.UpdatedAt = now

		ok, err := s.orders.UpdateWorkOrderCAS(txCtx, wo, from)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrStaleStatus
		}
		result = wo
		return s.orders.AppendWorkOrderEvent(txCtx, domain.WorkOrderEvent{
			WorkOrderID: wo.ID,
			FromStatus:  from,
			ToStatus:    domain.WorkOrderClientAccepted,
			ActorID:     actor.ID,
			ActorRole:   actor.Role,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "work_order.accepted", WorkOrderID: result.ID})
	return result, nil
}

// ApprovePO marks the purchase order approved and issues the proforma
// invoice the client pays against.
func (s *WorkOrderService) ApprovePO(ctx context.Context, actor domain.Actor, workOrderID int64) (domain.Invoice, error) {
	if actor.Role != domain.RoleManager {
		return domain.Invoice{}, domain.ErrWrongRole
	}

	now := s.clock.Now()
	var invoice domain.Invoice

	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		wo, err := s.orders.GetWorkOrderForUpdate(txCtx, workOrderID)
		if err != nil {
			return err
		}
		if wo.Status != domain.WorkOrderClientAccepted {
			return domain.ErrStaleStatus
		}
		if wo.PODocRef == "" {
			return domain.ErrPODocRequired
		}

		wo.POApprovedAt = &now
		wo.UpdatedAt = now
		ok, err := s.orders.UpdateWorkOrderCAS(txCtx, wo, domain.WorkOrderClientAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrStaleStatus
		}

		invoice, err = s.payments.issueProforma(txCtx, wo)
		if err != nil {
			return err
		}
		return s.orders.AppendWorkOrderEvent(txCtx, domain.WorkOrderEvent{
			WorkOrderID: wo.ID,
			FromStatus:  domain.WorkOrderClientAccepted,
			ToStatus:    domain.WorkOrderClientAccepted,
			ActorID:     actor.ID,
			ActorRole:   actor.Role,
			Note:        "purchase order approved, proforma " + invoice.Number,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "work_order.po_approved", WorkOrderID: workOrderID})
	return invoice, nil
}

// Reject terminally rejects the order; commitments stop counting as live
// and their windows free up immediately.
func (s *WorkOrderService) Reject(ctx context.Context, actor domain.Actor, workOrderID int64, reason string) (domain.WorkOrder, error) {
	if actor.Role != domain.RoleManager {
		return domain.WorkOrder{}, domain.ErrWrongRole
	}

	now := s.clock.Now()
	var result domain.WorkOrder

	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		wo, err := s.orders.GetWorkOrderForUpdate(txCtx, workOrderID)
		if err != nil {
			return err
		}
		if !domain.CanTransitionWorkOrder(wo.Status, domain.WorkOrderRejected) {
			return domain.ErrStaleStatus
		}

		from := wo.Status
		wo.Status = domain.WorkOrderRejected
		wo.RejectReason = reason
		wo.UpdatedAt = now

		ok, err := s.orders.UpdateWorkOrderCAS(txCtx, wo, from)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrStaleStatus
		}
		result = wo
		return s.orders.AppendWorkOrderEvent(txCtx, domain.WorkOrderEvent{
			WorkOrderID: wo.ID,
			FromStatus:  from,
			ToStatus:    domain.WorkOrderRejected,
			ActorID:     actor.ID,
			ActorRole:   actor.Role,
			Note:        reason,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return domain.WorkOrder{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "work_order.rejected", WorkOrderID: result.ID, Detail: reason})
	return result, nil
}

// Get returns the order with its commitments and, when one exists, its
// release order.
func (s *WorkOrderService) Get(ctx context.Context, workOrderID int64) (port.OrderView, error) {
	wo, err := s.orders.GetWorkOrder(ctx, workOrderID)
	if err != nil {
		return port.OrderView{}, err
	}
	items, err := s.orders.ListCommitments(ctx, workOrderID)
	if err != nil {
		return port.OrderView{}, err
	}
	view := port.OrderView{Order: wo, Commitments: items}
	ro, err := s.releases.GetReleaseOrderByWorkOrder(ctx, workOrderID)
	switch {
	case err == nil:
		view.Release = &ro
	case !errors.Is(err, domain.ErrNotFound):
		return port.OrderView{}, err
	}
	return view, nil
}
