package port

import (
	"context"
	"time"

	"slotdesk/internal/core/domain"
)

// ReserveItemInput is one requested line of a new order: either a slot
// reservation or a broadcast add-on (email/WhatsApp, no slot).
type ReserveItemInput struct {
	SlotID *int64
	// Channel is only consulted for broadcast add-ons; slot items inherit
	// the slot's channel.
	Channel domain.Channel
	Window  domain.Window
}

// ReserveOrderInput is a client's slot selection submitted for reservation.
type ReserveOrderInput struct {
	Items []ReserveItemInput
}

// OrderView bundles a work order with its commitments for read endpoints.
type OrderView struct {
	Order       domain.WorkOrder
	Commitments []domain.Commitment
	Release     *domain.ReleaseOrder
}

// AvailabilityUseCase owns slot bookability: atomic check-and-reserve,
// administrative blocks and slot administration.
type AvailabilityUseCase interface {
	// ReserveCommitments validates the selection (windows, known slots,
	// one commitment per section) and books every item atomically; any
	// overlap fails the whole order with a conflict error.
	ReserveCommitments(ctx context.Context, actor domain.Actor, in ReserveOrderInput) (OrderView, error)

	BlockSlot(ctx context.Context, actor domain.Actor, slotID int64, reason string, window *domain.Window) error
	UnblockSlot(ctx context.Context, actor domain.Actor, slotID int64) error

	CreateSlot(ctx context.Context, actor domain.Actor, slot domain.Slot) (domain.Slot, error)
	ListSlots(ctx context.Context, channel *domain.Channel) ([]domain.Slot, error)
}

// QuoteItemPrice overrides one commitment's price during quoting.
type QuoteItemPrice struct {
	CommitmentID int64
	Price        int64
}

// QuoteInput carries a manager's pricing decision.
type QuoteInput struct {
	WorkOrderID  int64
	Prices       []QuoteItemPrice
	PaymentTerms domain.PaymentTerms
	TaxRateBps   int
}

// WorkOrderUseCase drives the commercial lifecycle up to payment.
type WorkOrderUseCase interface {
	Quote(ctx context.Context, actor domain.Actor, in QuoteInput) (domain.WorkOrder, error)
	Negotiate(ctx context.Context, actor domain.Actor, workOrderID int64, reason string) (domain.WorkOrder, error)
	Accept(ctx context.Context, actor domain.Actor, workOrderID int64, poDocRef string) (domain.WorkOrder, error)
	// ApprovePO unlocks invoicing; the returned invoice is the freshly
	// issued proforma.
	ApprovePO(ctx context.Context, actor domain.Actor, workOrderID int64) (domain.Invoice, error)
	Reject(ctx context.Context, actor domain.Actor, workOrderID int64, reason string) (domain.WorkOrder, error)
	Get(ctx context.Context, workOrderID int64) (OrderView, error)
}

// PaymentUseCase is the payment gate. Paying a proforma moves the work
// order to paid and creates its release order in the same transaction.
type PaymentUseCase interface {
	Pay(ctx context.Context, actor domain.Actor, invoiceID int64) (domain.Invoice, error)
}

// ReleaseUseCase drives the post-payment approval ladder.
type ReleaseUseCase interface {
	Approve(ctx context.Context, actor domain.Actor, releaseOrderID int64) (domain.ReleaseOrder, error)
	Reject(ctx context.Context, actor domain.Actor, releaseOrderID int64, reason string) (domain.ReleaseOrder, error)
	ReturnToClient(ctx context.Context, actor domain.Actor, releaseOrderID int64, reason string) (domain.ReleaseOrder, error)
	UploadBanner(ctx context.Context, actor domain.Actor, commitmentID int64, bannerRef string) (domain.Commitment, error)
	// Resubmit moves pending_banner_upload back to manager review once
	// every slot-bearing commitment carries a banner newer than the
	// rejection.
	Resubmit(ctx context.Context, actor domain.Actor, releaseOrderID int64) (domain.ReleaseOrder, error)
	Settle(ctx context.Context, actor domain.Actor, releaseOrderID int64) (domain.ReleaseOrder, error)
}

// DeploymentView is a deployment with its derived display status.
type DeploymentView struct {
	Deployment domain.Deployment
	Status     domain.DeploymentStatus
}

// DeployUseCase pushes approved banners live and reads back their derived
// status.
type DeployUseCase interface {
	Deploy(ctx context.Context, actor domain.Actor, commitmentID int64, bannerRef string) (DeploymentView, error)
	ListByWorkOrder(ctx context.Context, workOrderID int64, now time.Time) ([]DeploymentView, error)
}
