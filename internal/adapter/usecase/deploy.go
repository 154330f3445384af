package usecase

import (
	"context"
	"time"

	"slotdesk/internal/clock"
	"slotdesk/internal/core/domain"
	"slotdesk/internal/core/port"
)

// DeployService pushes approved banners live, one deployment per
// commitment, and derives the displayed status from the commitment window
// at read time.
type DeployService struct {
	releases    port.ReleaseRepository
	orders      port.OrderRepository
	deployments port.DeploymentRepository
	clock       clock.Clock
	notify      port.Notifier
}

func NewDeployService(releases port.ReleaseRepository, orders port.OrderRepository, deployments port.DeploymentRepository, clk clock.Clock, notify port.Notifier) *DeployService {
	return &DeployService{releases: releases, orders: orders, deployments: deployments, clock: clk, notify: notify}
}

// Deploy records a commitment's banner going live. The release order must
// be past acceptance and the commitment must carry a banner; the unique
// constraint per commitment turns a double deploy into ErrAlreadyDeployed.
// When the last slot commitment deploys, the release order itself moves to
// deployed.
func (s *DeployService) Deploy(ctx context.Context, actor domain.Actor, commitmentID int64, bannerRef string) (port.DeploymentView, error) {
	if actor.Role != domain.RoleIT && actor.Role != domain.RoleMaterial {
		return port.DeploymentView{}, domain.ErrWrongRole
	}

	now := s.clock.Now()
	var result port.DeploymentView

	err := s.releases.WithTx(ctx, func(txCtx context.Context) error {
		c, err := s.orders.GetCommitment(txCtx, commitmentID)
		if err != nil {
			return err
		}
		if !c.HasSlot() {
			return domain.ErrNotSlotCommitment
		}
		ro, err := s.releases.GetReleaseOrderByWorkOrder(txCtx, c.WorkOrderID)
		if err != nil {
			return err
		}
		ro, err = s.releases.GetReleaseOrderForUpdate(txCtx, ro.ID)
		if err != nil {
			return err
		}
		if !ro.Deployable() {
			return domain.ErrNotReadyToDeploy
		}
		if c.BannerRef == "" {
			return domain.ErrBannerMissing
		}
		if bannerRef == "" {
			bannerRef = c.BannerRef
		}

		d := domain.Deployment{
			CommitmentID: commitmentID,
			BannerRef:    bannerRef,
			DeployedAt:   now,
		}
		id, err := s.deployments.CreateDeployment(txCtx, d)
		if err != nil {
			return err
		}
		d.ID = id
		result = port.DeploymentView{
			Deployment: d,
			Status:     d.EffectiveStatus(c.Window.End, now),
		}

		done, err := s.allSlotCommitmentsDeployed(txCtx, ro.WorkOrderID)
		if err != nil {
			return err
		}
		if done && domain.CanTransitionRelease(ro.Status, domain.ReleaseDeployed) {
			from := ro.Status
			ro.Status = domain.ReleaseDeployed
			ro.UpdatedAt = now
			applied, err := s.releases.UpdateReleaseOrderCAS(txCtx, ro, from)
			if err != nil {
				return err
			}
			if !applied {
				return domain.ErrStaleStatus
			}
			if err := s.releases.AppendReleaseOrderEvent(txCtx, domain.ReleaseOrderEvent{
				ReleaseOrderID: ro.ID,
				FromStatus:     from,
				ToStatus:       domain.ReleaseDeployed,
				ActorID:        actor.ID,
				ActorRole:      actor.Role,
				Note:           "all commitments deployed",
				CreatedAt:      now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return port.DeploymentView{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "commitment.deployed", Detail: bannerRef})
	return result, nil
}

// ListByWorkOrder returns deployments with their status recomputed against
// now; nothing is stored as expired.
func (s *DeployService) ListByWorkOrder(ctx context.Context, workOrderID int64, now time.Time) ([]port.DeploymentView, error) {
	if now.IsZero() {
		now = s.clock.Now()
	}
	items, err := s.orders.ListCommitments(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	ends := make(map[int64]time.Time, len(items))
	for _, c := range items {
		ends[c.ID] = c.Window.End
	}
	deps, err := s.deployments.ListDeploymentsByWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	views := make([]port.DeploymentView, 0, len(deps))
	for _, d := range deps {
		views = append(views, port.DeploymentView{
			Deployment: d,
			Status:     d.EffectiveStatus(ends[d.CommitmentID], now),
		})
	}
	return views, nil
}

func (s *DeployService) allSlotCommitmentsDeployed(ctx context.Context, workOrderID int64) (bool, error) {
	items, err := s.orders.ListCommitments(ctx, workOrderID)
	if err != nil {
		return false, err
	}
	for _, c := range items {
		if !c.HasSlot() {
			continue
		}
		d, err := s.deployments.GetDeploymentByCommitment(ctx, c.ID)
		if err != nil {
			return false, err
		}
		if d == nil {
			return false, nil
		}
	}
	return true, nil
}
