package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"slotdesk/internal/core/domain"
)

const slotColumns = `id, channel, sub_page, position, width_px, height_px, price, status,
	blocked, block_reason, block_start, block_end, created_at, updated_at`

func (s *Store) CreateSlot(ctx context.Context, slot domain.Slot) (int64, error) {
	const stmt = `
INSERT INTO slots (channel, sub_page, position, width_px, height_px, price, status,
	blocked, block_reason, block_start, block_end, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
RETURNING id`

	var start, end *time.Time
	if slot.BlockWindow != nil {
		start, end = &slot.BlockWindow.Start, &slot.BlockWindow.End
	}
	var id int64
	err := s.queryRow(ctx, stmt,
		slot.Channel, slot.SubPage, slot.Position, slot.WidthPx, slot.HeightPx,
		slot.Price, slot.Status, slot.Blocked, slot.BlockReason, start, end,
		slot.CreatedAt, slot.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create slot: %w", err)
	}
	return id, nil
}

func (s *Store) GetSlot(ctx context.Context, id int64) (domain.Slot, error) {
	return s.getSlot(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = $1`, id)
}

func (s *Store) GetSlotForUpdate(ctx context.Context, id int64) (domain.Slot, error) {
	return s.getSlot(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = $1 FOR UPDATE`, id)
}

func (s *Store) getSlot(ctx context.Context, query string, id int64) (domain.Slot, error) {
	slot, err := scanSlot(s.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Slot{}, domain.ErrSlotNotFound
		}
		return domain.Slot{}, fmt.Errorf("get slot: %w", err)
	}
	return slot, nil
}

func (s *Store) ListSlots(ctx context.Context, channel *domain.Channel) ([]domain.Slot, error) {
	rows, err := s.query(ctx,
		`SELECT `+slotColumns+` FROM slots WHERE $1::text IS NULL OR channel = $1 ORDER BY id`,
		channel,
	)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Slot, error) {
		return scanSlot(row)
	})
}

func (s *Store) ListLiveCommitments(ctx context.Context, slotID int64, exclude *int64) ([]domain.Commitment, error) {
	const query = `
SELECT ` + commitmentColumns + `
FROM commitments c
JOIN work_orders w ON w.id = c.work_order_id
WHERE c.slot_id = $1
  AND w.status <> 'rejected'
  AND ($2::bigint IS NULL OR c.id <> $2)`

	rows, err := s.query(ctx, query, slotID, exclude)
	if err != nil {
		return nil, fmt.Errorf("list live commitments: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Commitment, error) {
		return scanCommitment(row)
	})
}

func (s *Store) SetBlock(ctx context.Context, slotID int64, reason string, window *domain.Window) error {
	var start, end *time.Time
	if window != nil {
		start, end = &window.Start, &window.End
	}
	tag, err := s.exec(ctx, `
UPDATE slots SET blocked = true, block_reason = $2, block_start = $3, block_end = $4, updated_at = now()
WHERE id = $1`, slotID, reason, start, end)
	if err != nil {
		return fmt.Errorf("set block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

func (s *Store) ClearBlock(ctx context.Context, slotID int64) error {
	tag, err := s.exec(ctx, `
UPDATE slots SET blocked = false, block_reason = '', block_start = NULL, block_end = NULL, updated_at = now()
WHERE id = $1`, slotID)
	if err != nil {
		return fmt.Errorf("clear block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

func scanSlot(row pgx.Row) (domain.Slot, error) {
	var (
		slot       domain.Slot
		start, end *time.Time
	)
	err := row.Scan(
		&slot.ID, &slot.Channel, &slot.SubPage, &slot.Position,
		&slot.WidthPx, &slot.HeightPx, &slot.Price, &slot.Status,
		&slot.Blocked, &slot.BlockReason, &start, &end,
		&slot.CreatedAt, &slot.UpdatedAt,
	)
	if err != nil {
		return domain.Slot{}, err
	}
	if start != nil && end != nil {
		slot.BlockWindow = &domain.Window{Start: *start, End: *end}
	}
	return slot, nil
}
