package usecase

import (
	"context"
	"time"

	"slotdesk/internal/clock"
	"slotdesk/internal/core/domain"
	"slotdesk/internal/core/port"
)

// ReleaseService drives the post-payment approval ladder:
// manager → VP → PV review with reject back-edges, the shared
// return-to-client state, and the IT/material branch at acceptance. Each
// approve or reject is a compare-and-set on the stage the actor saw.
type ReleaseService struct {
	releases port.ReleaseRepository
	orders   port.OrderRepository
	payments *PaymentService
	clock    clock.Clock
	notify   port.Notifier
}

func NewReleaseService(releases port.ReleaseRepository, orders port.OrderRepository, payments *PaymentService, clk clock.Clock, notify port.Notifier) *ReleaseService {
	return &ReleaseService{releases: releases, orders: orders, payments: payments, clock: clk, notify: notify}
}

// Approve advances the release order one stage. Only the stage's
// designated approver may act; anyone else fails with a transition error,
// never a silent no-op. PV approval also decides the IT/material branch by
// inspecting the commitment set and issues the tax invoice.
func (s *ReleaseService) Approve(ctx context.Context, actor domain.Actor, releaseOrderID int64) (domain.ReleaseOrder, error) {
	now := s.clock.Now()
	var result domain.ReleaseOrder

	err := s.releases.WithTx(ctx, func(txCtx context.Context) error {
		ro, err := s.releases.GetReleaseOrderForUpdate(txCtx, releaseOrderID)
		if err != nil {
			return err
		}
		approver, reviewing := domain.ApproverFor(ro.Status)
		if !reviewing {
			return domain.ErrStaleStatus
		}
		if actor.Role != approver {
			return domain.ErrWrongRole
		}

		items, err := s.orders.ListCommitments(txCtx, ro.WorkOrderID)
		if err != nil {
			return err
		}
		if ro.Status == domain.ReleasePendingManagerReview {
			// Manager review is a banner review; nothing to approve while
			// any slot commitment is missing its upload.
			for _, c := range items {
				if c.HasSlot() && !c.BannerFresh(ro.RejectedAt) {
					return domain.ErrBannerMissing
				}
			}
		}

		from := ro.Status
		next, _ := domain.NextOnApprove(from)
		ro.Status = next
		ro.UpdatedAt = now
		ok, err := s.releases.UpdateReleaseOrderCAS(txCtx, ro, from)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrStaleStatus
		}
		if err := s.appendEvent(txCtx, ro.ID, from, next, actor, "", now); err != nil {
			return err
		}

		if next == domain.ReleaseAccepted {
			// Branch decided exactly once, here at PV approval.
			branch := domain.ReleaseReadyForIT
			for _, c := range items {
				if c.Channel == domain.ChannelMagazine {
					branch = domain.ReleaseReadyForMaterial
					break
				}
			}
			ro.Status = branch
			ro.UpdatedAt = now
			ok, err = s.releases.UpdateReleaseOrderCAS(txCtx, ro, domain.ReleaseAccepted)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrStaleStatus
			}
			if err := s.appendEvent(txCtx, ro.ID, domain.ReleaseAccepted, branch, actor, "", now); err != nil {
				return err
			}

			wo, err := s.orders.GetWorkOrder(txCtx, ro.WorkOrderID)
			if err != nil {
				return err
			}
			if _, err := s.payments.issueTax(txCtx, wo, ro.ID); err != nil {
				return err
			}
		}

		result = ro
		return nil
	})
	if err != nil {
		return domain.ReleaseOrder{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "release_order.approved", WorkOrderID: result.WorkOrderID, Detail: string(result.Status)})
	return result, nil
}

// Reject sends the release order one stage back. The latest rejection
// overwrites the previous one on the row; the full trail stays in the
// event history.
func (s *ReleaseService) Reject(ctx context.Context, actor domain.Actor, releaseOrderID int64, reason string) (domain.ReleaseOrder, error) {
	if reason == "" {
		return domain.ReleaseOrder{}, domain.ErrReasonRequired
	}

	now := s.clock.Now()
	var result domain.ReleaseOrder

	err := s.releases.WithTx(ctx, func(txCtx context.Context) error {
		ro, err := s.releases.GetReleaseOrderForUpdate(txCtx, releaseOrderID)
		if err != nil {
			return err
		}
		prev, ok := domain.PrevOnReject(ro.Status)
		if !ok {
			return domain.ErrStaleStatus
		}
		approver, _ := domain.ApproverFor(ro.Status)
		if actor.Role != approver {
			return domain.ErrWrongRole
		}

		from := ro.Status
		ro.Status = prev
		ro.RejectReason = reason
		ro.RejectedByID = &actor.ID
		ro.RejectedByRole = actor.Role
		ro.RejectedAt = &now
		ro.UpdatedAt = now

		applied, err := s.releases.UpdateReleaseOrderCAS(txCtx, ro, from)
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrStaleStatus
		}
		result = ro
		return s.appendEvent(txCtx, ro.ID, from, prev, actor, reason, now)
	})
	if err != nil {
		return domain.ReleaseOrder{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "release_order.rejected", WorkOrderID: result.WorkOrderID, Detail: reason})
	return result, nil
}

// ReturnToClient kicks the order back for banner rework. Every slot
// commitment must be re-uploaded after this moment before resubmission
// passes, not just the one that was flagged.
func (s *ReleaseService) ReturnToClient(ctx context.Context, actor domain.Actor, releaseOrderID int64, reason string) (domain.ReleaseOrder, error) {
	if actor.Role != domain.RoleManager {
		return domain.ReleaseOrder{}, domain.ErrWrongRole
	}
	if reason == "" {
		return domain.ReleaseOrder{}, domain.ErrReasonRequired
	}

	now := s.clock.Now()
	var result domain.ReleaseOrder

	err := s.releases.WithTx(ctx, func(txCtx context.Context) error {
		ro, err := s.releases.GetReleaseOrderForUpdate(txCtx, releaseOrderID)
		if err != nil {
			return err
		}
		if ro.Status != domain.ReleasePendingManagerReview {
			return domain.ErrStaleStatus
		}

		ro.Status = domain.ReleasePendingBannerUpload
		ro.RejectReason = reason
		ro.RejectedByID = &actor.ID
		ro.RejectedByRole = actor.Role
		ro.RejectedAt = &now
		ro.UpdatedAt = now

		applied, err := s.releases.UpdateReleaseOrderCAS(txCtx, ro, domain.ReleasePendingManagerReview)
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrStaleStatus
		}
		result = ro
		return s.appendEvent(txCtx, ro.ID, domain.ReleasePendingManagerReview, domain.ReleasePendingBannerUpload, actor, reason, now)
	})
	if err != nil {
		return domain.ReleaseOrder{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "release_order.returned_to_client", WorkOrderID: result.WorkOrderID, Detail: reason})
	return result, nil
}

// UploadBanner stores a new banner ref on a slot commitment. Allowed while
// the release order is collecting banners (freshly created or returned to
// the client).
func (s *ReleaseService) UploadBanner(ctx context.Context, actor domain.Actor, commitmentID int64, bannerRef string) (domain.Commitment, error) {
	if actor.Role != domain.RoleClient {
		return domain.Commitment{}, domain.ErrWrongRole
	}
	if bannerRef == "" {
		return domain.Commitment{}, domain.ErrBannerRefRequired
	}

	now := s.clock.Now()
	var result domain.Commitment

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
		switch ro.Status {
		case domain.ReleasePendingManagerReview, domain.ReleasePendingBannerUpload:
		default:
			return domain.ErrStaleStatus
		}
		if err := s.orders.SetCommitmentBanner(txCtx, commitmentID, bannerRef, now); err != nil {
			return err
		}
		c.BannerRef = bannerRef
		c.BannerUploadedAt = &now
		result = c
		return nil
	})
	if err != nil {
		return domain.Commitment{}, err
	}
	return result, nil
}

// Resubmit returns a reworked order to manager review. It fails unless
// every slot commitment carries a banner uploaded strictly after the
// rejection; a stale banner from before it does not count.
func (s *ReleaseService) Resubmit(ctx context.Context, actor domain.Actor, releaseOrderID int64) (domain.ReleaseOrder, error) {
	if actor.Role != domain.RoleClient {
		return domain.ReleaseOrder{}, domain.ErrWrongRole
	}

	now := s.clock.Now()
	var result domain.ReleaseOrder

	err := s.releases.WithTx(ctx, func(txCtx context.Context) error {
		ro, err := s.releases.GetReleaseOrderForUpdate(txCtx, releaseOrderID)
		if err != nil {
			return err
		}
		if ro.Status != domain.ReleasePendingBannerUpload {
			return domain.ErrStaleStatus
		}

		items, err := s.orders.ListCommitments(txCtx, ro.WorkOrderID)
		if err != nil {
			return err
		}
		for _, c := range items {
			if !c.HasSlot() {
				continue
			}
			if !c.BannerFresh(ro.RejectedAt) {
				return domain.ErrStaleBanner
			}
		}

		ro.Status = domain.ReleasePendingManagerReview
		ro.UpdatedAt = now
		applied, err := s.releases.UpdateReleaseOrderCAS(txCtx, ro, domain.ReleasePendingBannerUpload)
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrStaleStatus
		}
		result = ro
		return s.appendEvent(txCtx, ro.ID, domain.ReleasePendingBannerUpload, domain.ReleasePendingManagerReview, actor, "resubmitted", now)
	})
	if err != nil {
		return domain.ReleaseOrder{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "release_order.resubmitted", WorkOrderID: result.WorkOrderID})
	return result, nil
}

// Settle records manual settlement of the final invoice, e.g. a postpay
// bank transfer reconciled outside the system.
func (s *ReleaseService) Settle(ctx context.Context, actor domain.Actor, releaseOrderID int64) (domain.ReleaseOrder, error) {
	if actor.Role != domain.RoleManager {
		return domain.ReleaseOrder{}, domain.ErrWrongRole
	}

	now := s.clock.Now()
	var result domain.ReleaseOrder

	err := s.releases.WithTx(ctx, func(txCtx context.Context) error {
		ro, err := s.releases.GetReleaseOrderForUpdate(txCtx, releaseOrderID)
		if err != nil {
			return err
		}
		ro.Settlement = domain.SettlementCompleted
		ro.UpdatedAt = now
		applied, err := s.releases.UpdateReleaseOrderCAS(txCtx, ro, ro.Status)
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrStaleStatus
		}
		result = ro
		return nil
	})
	if err != nil {
		return domain.ReleaseOrder{}, err
	}
	return result, nil
}

func (s *ReleaseService) appendEvent(ctx context.Context, roID int64, from, to domain.ReleaseOrderStatus, actor domain.Actor, note string, now time.Time) error {
	return s.releases.AppendReleaseOrderEvent(ctx, domain.ReleaseOrderEvent{
		ReleaseOrderID: roID,
		FromStatus:     from,
		ToStatus:       to,
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		Note:           note,
		CreatedAt:      now,
	})
}
