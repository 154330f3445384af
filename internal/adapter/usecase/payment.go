package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"slotdesk/internal/clock"
	"slotdesk/internal/core/domain"
	"slotdesk/internal/core/port"
)

// PaymentService is the payment gate: it issues invoices at the defined
// checkpoints and settles them. Paying is idempotent; the second call on a
// completed invoice returns ErrInvoiceAlreadyPaid with the balance
// untouched.
type PaymentService struct {
	invoices port.InvoiceRepository
	orders   port.OrderRepository
	releases port.ReleaseRepository
	clock    clock.Clock
	notify   port.Notifier
}

func NewPaymentService(invoices port.InvoiceRepository, orders port.OrderRepository, releases port.ReleaseRepository, clk clock.Clock, notify port.Notifier) *PaymentService {
	return &PaymentService{invoices: invoices, orders: orders, releases: releases, clock: clk, notify: notify}
}

// Pay completes an invoice. Completing the active proforma moves its work
// order to paid and creates the release order in the same transaction;
// completing a tax invoice settles the release order.
func (s *PaymentService) Pay(ctx context.Context, actor domain.Actor, invoiceID int64) (domain.Invoice, error) {
	if actor.Role != domain.RoleManager {
		return domain.Invoice{}, domain.ErrWrongRole
	}

	now := s.clock.Now()
	var result domain.Invoice
	var createdRelease bool

	err := s.invoices.WithTx(ctx, func(txCtx context.Context) error {
		inv, err := s.invoices.GetInvoice(txCtx, invoiceID)
		if err != nil {
			return err
		}
		ok, err := s.invoices.MarkInvoicePaidCAS(txCtx, inv.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvoiceAlreadyPaid
		}
		inv.Status = domain.InvoiceCompleted
		inv.PaidAt = &now
		result = inv

		switch inv.Kind {
		case domain.InvoiceProforma:
			if !inv.Active {
				// A superseded proforma settles nothing.
				return nil
			}
			createdRelease, err = s.completeProforma(txCtx, inv, actor, now)
			return err
		case domain.InvoiceTax:
			return s.settleTax(txCtx, inv, now)
		}
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "invoice.paid", WorkOrderID: result.WorkOrderID, Detail: result.Number})
	if createdRelease {
		s.notify.Notify(ctx, port.Notification{Kind: "release_order.created", WorkOrderID: result.WorkOrderID})
	}
	return result, nil
}

// completeProforma drives the work order to paid and creates its release
// order. Exactly one release order ever exists per work order; the unique
// constraint on work_order_id backs that up.
func (s *PaymentService) completeProforma(ctx context.Context, inv domain.Invoice, actor domain.Actor, now time.Time) (bool, error) {
	wo, err := s.orders.GetWorkOrderForUpdate(ctx, inv.WorkOrderID)
	if err != nil {
		return false, err
	}
	if !domain.CanTransitionWorkOrder(wo.Status, domain.WorkOrderPaid) {
		return false, domain.ErrStaleStatus
	}
	if wo.POApprovedAt == nil {
		return false, domain.ErrPONotApproved
	}

	from := wo.Status
	wo.Status = domain.WorkOrderPaid
	wo.UpdatedAt = now
	ok, err := s.orders.UpdateWorkOrderCAS(ctx, wo, from)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, domain.ErrStaleStatus
	}
	if err := s.orders.AppendWorkOrderEvent(ctx, domain.WorkOrderEvent{
		WorkOrderID: wo.ID,
		FromStatus:  from,
		ToStatus:    domain.WorkOrderPaid,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Note:        "proforma " + inv.Number + " paid",
		CreatedAt:   now,
	}); err != nil {
		return false, err
	}

	ro := domain.ReleaseOrder{
		WorkOrderID: wo.ID,
		Status:      domain.ReleasePendingManagerReview,
		Settlement:  domain.SettlementPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	roID, err := s.releases.CreateReleaseOrder(ctx, ro)
	if err != nil {
		return false, err
	}
	return true, s.releases.AppendReleaseOrderEvent(ctx, domain.ReleaseOrderEvent{
		ReleaseOrderID: roID,
		ToStatus:       domain.ReleasePendingManagerReview,
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		Note:           "created on payment",
		CreatedAt:      now,
	})
}

// settleTax marks the release order's settlement complete when its tax
// invoice is paid. Settlement lags approval and never moves the approval
// status itself.
func (s *PaymentService) settleTax(ctx context.Context, inv domain.Invoice, now time.Time) error {
	if inv.ReleaseOrderID == nil {
		return nil
	}
	ro, err := s.releases.GetReleaseOrderForUpdate(ctx, *inv.ReleaseOrderID)
	if err != nil {
		return err
	}
	ro.Settlement = domain.SettlementCompleted
	ro.UpdatedAt = now
	ok, err := s.releases.UpdateReleaseOrderCAS(ctx, ro, ro.Status)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrStaleStatus
	}
	return nil
}

// issueProforma creates the proforma invoice for an approved purchase
// order, superseding any earlier proforma so at most one stays active.
// Runs inside the caller's transaction.
func (s *PaymentService) issueProforma(ctx context.Context, wo domain.WorkOrder) (domain.Invoice, error) {
	amount, err := s.orderTotal(ctx, wo)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := s.invoices.DeactivateProformas(ctx, wo.ID); err != nil {
		return domain.Invoice{}, err
	}
	now := s.clock.Now()
	due := now.AddDate(0, 0, 14)
	inv := domain.Invoice{
		WorkOrderID: wo.ID,
		Number:      uuid.NewString(),
		Kind:        domain.InvoiceProforma,
		Amount:      amount,
		Status:      domain.InvoicePending,
		Active:      true,
		DueDate:     &due,
		CreatedAt:   now,
	}
	id, err := s.invoices.CreateInvoice(ctx, inv)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.ID = id
	return inv, nil
}

// issueTax creates the final tax invoice once the release order is fully
// accepted. Runs inside the caller's transaction.
func (s *PaymentService) issueTax(ctx context.Context, wo domain.WorkOrder, releaseOrderID int64) (domain.Invoice, error) {
	amount, err := s.orderTotal(ctx, wo)
	if err != nil {
		return domain.Invoice{}, err
	}
	now := s.clock.Now()
	inv := domain.Invoice{
		WorkOrderID:    wo.ID,
		ReleaseOrderID: &releaseOrderID,
		Number:         uuid.NewString(),
		Kind:           domain.InvoiceTax,
		Amount:         amount,
		Status:         domain.InvoicePending,
		Active:         true,
		CreatedAt:      now,
	}
	id, err := s.invoices.CreateInvoice(ctx, inv)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.ID = id
	return inv, nil
}

// orderTotal sums item prices and applies the order's tax rate in basis
// points, rounding up to the nearest cent.
func (s *PaymentService) orderTotal(ctx context.Context, wo domain.WorkOrder) (int64, error) {
	items, err := s.orders.ListCommitments(ctx, wo.ID)
	if err != nil {
		return 0, err
	}
	var subtotal int64
	for _, c := range items {
		subtotal += c.Price
	}
	tax := (subtotal*int64(wo.TaxRateBps) + 9999) / 10000
	return subtotal + tax, nil
}
