package port

import (
	"context"

	"slotdesk/internal/core/domain"
)

// ReleaseRepository is the persistence port for release orders and their
// event history.
type ReleaseRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateReleaseOrder(ctx context.Context, ro domain.ReleaseOrder) (int64, error)
	GetReleaseOrder(ctx context.Context, id int64) (domain.ReleaseOrder, error)
	GetReleaseOrderForUpdate(ctx context.Context, id int64) (domain.ReleaseOrder, error)
	GetReleaseOrderByWorkOrder(ctx context.Context, workOrderID int64) (domain.ReleaseOrder, error)

	// UpdateReleaseOrderCAS writes ro's mutable fields where the stored
	// status still equals expected; false means a concurrent writer won.
	UpdateReleaseOrderCAS(ctx context.Context, ro domain.ReleaseOrder, expected domain.ReleaseOrderStatus) (bool, error)

	AppendReleaseOrderEvent(ctx context.Context, ev domain.ReleaseOrderEvent) error
	ListReleaseOrderEvents(ctx context.Context, releaseOrderID int64) ([]domain.ReleaseOrderEvent, error)
}

// DeploymentRepository records banners going live. CreateDeployment must
// translate a duplicate commitment id into domain.ErrAlreadyDeployed.
type DeploymentRepository interface {
	CreateDeployment(ctx context.Context, d domain.Deployment) (int64, error)
	GetDeploymentByCommitment(ctx context.Context, commitmentID int64) (*domain.Deployment, error)
	ListDeploymentsByWorkOrder(ctx context.Context, workOrderID int64) ([]domain.Deployment, error)
}
