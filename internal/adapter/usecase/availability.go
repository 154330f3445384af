package usecase

import (
	"context"

	"slotdesk/internal/clock"
	"slotdesk/internal/core/domain"
	"slotdesk/internal/core/port"
)

// AvailabilityService answers "is slot S free for window [a,b)?" and turns
// a client's selection into a draft work order. The check and the reserve
// are never separable: both run inside one serializable transaction, so of
// two racing clients one commits and the other gets a conflict.
type AvailabilityService struct {
	slots  port.SlotRepository
	orders port.OrderRepository
	clock  clock.Clock
	notify port.Notifier
}

func NewAvailabilityService(slots port.SlotRepository, orders port.OrderRepository, clk clock.Clock, notify port.Notifier) *AvailabilityService {
	return &AvailabilityService{slots: slots, orders: orders, clock: clk, notify: notify}
}

// ReserveCommitments validates and books a client's slot selection
// atomically. Section exclusivity (one commitment per channel, or per
// channel+sub-page for website) is enforced here, not at the slot level.
func (s *AvailabilityService) ReserveCommitments(ctx context.Context, actor domain.Actor, in port.ReserveOrderInput) (port.OrderView, error) {
	if actor.Role != domain.RoleClient {
		return port.OrderView{}, domain.ErrWrongRole
	}
	if len(in.Items) == 0 {
		return port.OrderView{}, domain.ErrNoCommitments
	}
	for _, it := range in.Items {
		if err := it.Window.Validate(); err != nil {
			return port.OrderView{}, err
		}
		if it.SlotID == nil {
			if it.Channel != domain.ChannelEmail && it.Channel != domain.ChannelWhatsApp {
				return port.OrderView{}, domain.ErrUnknownChannel
			}
		}
	}

	now := s.clock.Now()
	var view port.OrderView

	err := s.slots.WithSerializableTx(ctx, func(txCtx context.Context) error {
		wo := domain.WorkOrder{
			ClientID:  actor.ID,
			Status:    domain.WorkOrderDraft,
			CreatedAt: now,
			UpdatedAt: now,
		}
		woID, err := s.orders.CreateWorkOrder(txCtx, wo)
		if err != nil {
			return err
		}
		wo.ID = woID

		taken := make(map[string]bool, len(in.Items))
		var commitments []domain.Commitment
		for _, it := range in.Items {
			c := domain.Commitment{
				WorkOrderID: woID,
				Window:      it.Window,
				CreatedAt:   now,
			}
			if it.SlotID != nil {
				slot, err := s.slots.GetSlotForUpdate(txCtx, *it.SlotID)
				if err != nil {
					return err
				}
				if err := checkSlotFree(txCtx, s.slots, slot, it.Window, nil); err != nil {
					return err
				}
				c.SlotID = it.SlotID
				c.Channel = slot.Channel
				c.Section = slot.Section()
				c.Price = slot.Price
			} else {
				c.Channel = it.Channel
				c.Section = string(it.Channel)
			}
			if taken[c.Section] {
				return domain.ErrSectionTaken
			}
			taken[c.Section] = true

			id, err := s.orders.CreateCommitment(txCtx, c)
			if err != nil {
				return err
			}
			c.ID = id
			commitments = append(commitments, c)
		}

		ev := domain.WorkOrderEvent{
			WorkOrderID: woID,
			ToStatus:    domain.WorkOrderDraft,
			ActorID:     actor.ID,
			ActorRole:   actor.Role,
			CreatedAt:   now,
		}
		if err := s.orders.AppendWorkOrderEvent(txCtx, ev); err != nil {
			return err
		}

		view = port.OrderView{Order: wo, Commitments: commitments}
		return nil
	})
	if err != nil {
		return port.OrderView{}, err
	}

	s.notify.Notify(ctx, port.Notification{Kind: "work_order.created", WorkOrderID: view.Order.ID})
	return view, nil
}

// CheckSlot answers availability without reserving; exclude lets a re-save
// of an existing commitment ignore itself.
func (s *AvailabilityService) CheckSlot(ctx context.Context, slotID int64, window domain.Window, exclude *int64) error {
	if err := window.Validate(); err != nil {
		return err
	}
	slot, err := s.slots.GetSlot(ctx, slotID)
	if err != nil {
		return err
	}
	return checkSlotFree(ctx, s.slots, slot, window, exclude)
}

// BlockSlot places an administrative block. A live client commitment
// covering the requested window wins over the block; this is a hard
// business invariant, so the block runs the same overlap check.
func (s *AvailabilityService) BlockSlot(ctx context.Context, actor domain.Actor, slotID int64, reason string, window *domain.Window) error {
	if actor.Role != domain.RoleManager {
		return domain.ErrWrongRole
	}
	if reason == "" {
		return domain.ErrReasonRequired
	}
	if window != nil {
		if err := window.Validate(); err != nil {
			return err
		}
	}
	return s.slots.WithSerializableTx(ctx, func(txCtx context.Context) error {
		if _, err := s.slots.GetSlotForUpdate(txCtx, slotID); err != nil {
			return err
		}
		live, err := s.slots.ListLiveCommitments(txCtx, slotID, nil)
		if err != nil {
			return err
		}
		for _, c := range live {
			if window == nil || window.Overlaps(c.Window) {
				return domain.ErrBlockOverCommitment
			}
		}
		return s.slots.SetBlock(txCtx, slotID, reason, window)
	})
}

func (s *AvailabilityService) UnblockSlot(ctx context.Context, actor domain.Actor, slotID int64) error {
	if actor.Role != domain.RoleManager {
		return domain.ErrWrongRole
	}
	return s.slots.ClearBlock(ctx, slotID)
}

func (s *AvailabilityService) CreateSlot(ctx context.Context, actor domain.Actor, slot domain.Slot) (domain.Slot, error) {
	if actor.Role != domain.RoleManager {
		return domain.Slot{}, domain.ErrWrongRole
	}
	if !domain.ValidChannel(slot.Channel) {
		return domain.Slot{}, domain.ErrUnknownChannel
	}
	if slot.Price <= 0 {
		return domain.Slot{}, domain.ErrNonPositivePrice
	}
	now := s.clock.Now()
	slot.Status = domain.SlotStatusAvailable
	slot.CreatedAt = now
	slot.UpdatedAt = now
	id, err := s.slots.CreateSlot(ctx, slot)
	if err != nil {
		return domain.Slot{}, err
	}
	slot.ID = id
	return slot, nil
}

func (s *AvailabilityService) ListSlots(ctx context.Context, channel *domain.Channel) ([]domain.Slot, error) {
	return s.slots.ListSlots(ctx, channel)
}

// checkSlotFree is the effective-availability computation: lifecycle
// status, then the admin block window, then the half-open overlap scan
// over live commitments.
func checkSlotFree(ctx context.Context, repo port.SlotRepository, slot domain.Slot, window domain.Window, exclude *int64) error {
	if slot.Status != domain.SlotStatusAvailable {
		return domain.ErrSlotUnavailable
	}
	if slot.BlockCovers(window) {
		return domain.ErrSlotBlocked
	}
	live, err := repo.ListLiveCommitments(ctx, slot.ID, exclude)
	if err != nil {
		return err
	}
	for _, c := range live {
		if window.Overlaps(c.Window) {
			return domain.ErrSlotWindowConflict
		}
	}
	return nil
}
