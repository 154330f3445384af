package port

import (
	"context"

	"slotdesk/internal/core/domain"
)

// SlotRepository is the persistence port for slots and the commitments
// booked against them. Implementations must make WithSerializableTx a
// genuinely serializable transaction: the availability check and the
// commitment insert run inside it and must not be separable.
type SlotRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	WithSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateSlot(ctx context.Context, slot domain.Slot) (int64, error)
	GetSlot(ctx context.Context, id int64) (domain.Slot, error)
	// GetSlotForUpdate locks the slot row for the rest of the transaction.
	GetSlotForUpdate(ctx context.Context, id int64) (domain.Slot, error)
	ListSlots(ctx context.Context, channel *domain.Channel) ([]domain.Slot, error)

	// ListLiveCommitments returns commitments against the slot whose parent
	// work order is not rejected, optionally ignoring one commitment id so
	// a re-save does not conflict with itself.
	ListLiveCommitments(ctx context.Context, slotID int64, exclude *int64) ([]domain.Commitment, error)

	SetBlock(ctx context.Context, slotID int64, reason string, window *domain.Window) error
	ClearBlock(ctx context.Context, slotID int64) error
}
