package port

import (
	"context"
	"time"

	"slotdesk/internal/core/domain"
)

// OrderRepository is the persistence port for work orders, their
// commitments and the append-only event history.
type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateWorkOrder(ctx context.Context, wo domain.WorkOrder) (int64, error)
	GetWorkOrder(ctx context.Context, id int64) (domain.WorkOrder, error)
	// GetWorkOrderForUpdate locks the row for the rest of the transaction.
	GetWorkOrderForUpdate(ctx context.Context, id int64) (domain.WorkOrder, error)

	// UpdateWorkOrderCAS writes wo's mutable fields where the stored status
	// still equals expected. It returns false when another writer got there
	// first, so duplicate clicks fail instead of applying twice.
	UpdateWorkOrderCAS(ctx context.Context, wo domain.WorkOrder, expected domain.WorkOrderStatus) (bool, error)

	CreateCommitment(ctx context.Context, c domain.Commitment) (int64, error)
	GetCommitment(ctx context.Context, id int64) (domain.Commitment, error)
	ListCommitments(ctx context.Context, workOrderID int64) ([]domain.Commitment, error)
	UpdateCommitmentPrice(ctx context.Context, commitmentID int64, price int64) error
	SetCommitmentBanner(ctx context.Context, commitmentID int64, ref string, uploadedAt time.Time) error

	AppendWorkOrderEvent(ctx context.Context, ev domain.WorkOrderEvent) error
	ListWorkOrderEvents(ctx context.Context, workOrderID int64) ([]domain.WorkOrderEvent, error)
}
