package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"slotdesk/internal/core/domain"
)

const releaseColumns = `id, work_order_id, status, reject_reason, rejected_by_id,
	rejected_by_role, rejected_at, settlement, created_at, updated_at`

func (s *Store) CreateReleaseOrder(ctx context.Context, ro domain.ReleaseOrder) (int64, error) {
	const stmt = `
INSERT INTO release_orders (work_order_id, status, reject_reason, rejected_by_id,
	rejected_by_role, rejected_at, settlement, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id`

	var id int64
	err := s.queryRow(ctx, stmt,
		ro.WorkOrderID, ro.Status, ro.RejectReason, ro.RejectedByID,
		ro.RejectedByRole, ro.RejectedAt, ro.Settlement, ro.CreatedAt, ro.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			// One release order per work order, ever.
			return 0, fmt.Errorf("%w: release order exists", domain.ErrConflict)
		}
		return 0, fmt.Errorf("create release order: %w", err)
	}
	return id, nil
}

func (s *Store) GetReleaseOrder(ctx context.Context, id int64) (domain.ReleaseOrder, error) {
	return s.getRelease(ctx, `SELECT `+releaseColumns+` FROM release_orders WHERE id = $1`, id)
}

func (s *Store) GetReleaseOrderForUpdate(ctx context.Context, id int64) (domain.ReleaseOrder, error) {
	return s.getRelease(ctx, `SELECT `+releaseColumns+` FROM release_orders WHERE id = $1 FOR UPDATE`, id)
}

func (s *Store) GetReleaseOrderByWorkOrder(ctx context.Context, workOrderID int64) (domain.ReleaseOrder, error) {
	return s.getRelease(ctx, `SELECT `+releaseColumns+` FROM release_orders WHERE work_order_id = $1`, workOrderID)
}

func (s *Store) getRelease(ctx context.Context, query string, id int64) (domain.ReleaseOrder, error) {
	var ro domain.ReleaseOrder
	err := s.queryRow(ctx, query, id).Scan(
		&ro.ID, &ro.WorkOrderID, &ro.Status, &ro.RejectReason, &ro.RejectedByID,
		&ro.RejectedByRole, &ro.RejectedAt, &ro.Settlement, &ro.CreatedAt, &ro.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ReleaseOrder{}, domain.ErrReleaseOrderNotFound
		}
		return domain.ReleaseOrder{}, fmt.Errorf("get release order: %w", err)
	}
	return ro, nil
}

func (s *Store) UpdateReleaseOrderCAS(ctx context.Context, ro domain.ReleaseOrder, expected domain.ReleaseOrderStatus) (bool, error) {
	const stmt = `
UPDATE release_orders SET status = $2, reject_reason = $3, rejected_by_id = $4,
	rejected_by_role = $5, rejected_at = $6, settlement = $7, updated_at = $8
WHERE id = $1 AND status = $9`

	tag, err := s.exec(ctx, stmt,
		ro.ID, ro.Status, ro.RejectReason, ro.RejectedByID,
		ro.RejectedByRole, ro.RejectedAt, ro.Settlement, ro.UpdatedAt, expected,
	)
	if err != nil {
		return false, fmt.Errorf("update release order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendReleaseOrderEvent(ctx context.Context, ev domain.ReleaseOrderEvent) error {
	const stmt = `
INSERT INTO release_order_events (release_order_id, from_status, to_status, actor_id, actor_role, note, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := s.exec(ctx, stmt,
		ev.ReleaseOrderID, ev.FromStatus, ev.ToStatus, ev.ActorID, ev.ActorRole, ev.Note, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append release order event: %w", err)
	}
	return nil
}

func (s *Store) ListReleaseOrderEvents(ctx context.Context, releaseOrderID int64) ([]domain.ReleaseOrderEvent, error) {
	rows, err := s.query(ctx, `
SELECT id, release_order_id, from_status, to_status, actor_id, actor_role, note, created_at
FROM release_order_events WHERE release_order_id = $1 ORDER BY id`, releaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("list release order events: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ReleaseOrderEvent, error) {
		var ev domain.ReleaseOrderEvent
		err := row.Scan(&ev.ID, &ev.ReleaseOrderID, &ev.FromStatus, &ev.ToStatus,
			&ev.ActorID, &ev.ActorRole, &ev.Note, &ev.CreatedAt)
		return ev, err
	})
}
