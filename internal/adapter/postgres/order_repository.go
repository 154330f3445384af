package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"slotdesk/internal/core/domain"
)

const workOrderColumns = `id, client_id, status, payment_terms, tax_rate_bps,
	negotiation_requested, negotiation_reason, po_doc_ref, po_approved_at,
	reject_reason, created_at, updated_at`

const commitmentColumns = `c.id, c.work_order_id, c.slot_id, c.channel, c.section,
	c.start_date, c.end_date, c.price, c.banner_ref, c.banner_uploaded_at, c.created_at`

func (s *Store) CreateWorkOrder(ctx context.Context, wo domain.WorkOrder) (int64, error) {
	const stmt = `
INSERT INTO work_orders (client_id, status, payment_terms, tax_rate_bps,
	negotiation_requested, negotiation_reason, po_doc_ref, po_approved_at,
	reject_reason, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id`

	var id int64
	err := s.queryRow(ctx, stmt,
		wo.ClientID, wo.Status, wo.PaymentTerms, wo.TaxRateBps,
		wo.NegotiationRequested, wo.NegotiationReason, wo.PODocRef, wo.POApprovedAt,
		wo.RejectReason, wo.CreatedAt, wo.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create work order: %w", err)
	}
	return id, nil
}

func (s *Store) GetWorkOrder(ctx context.Context, id int64) (domain.WorkOrder, error) {
	return s.getWorkOrder(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id = $1`, id)
}

func (s *Store) GetWorkOrderForUpdate(ctx context.Context, id int64) (domain.WorkOrder, error) {
	return s.getWorkOrder(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id = $1 FOR UPDATE`, id)
}

func (s *Store) getWorkOrder(ctx context.Context, query string, id int64) (domain.WorkOrder, error) {
	var wo domain.WorkOrder
	err := s.queryRow(ctx, query, id).Scan(
		&wo.ID, &wo.ClientID, &wo.Status, &wo.PaymentTerms, &wo.TaxRateBps,
		&wo.NegotiationRequested, &wo.NegotiationReason, &wo.PODocRef, &wo.POApprovedAt,
		&wo.RejectReason, &wo.CreatedAt, &wo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WorkOrder{}, domain.ErrWorkOrderNotFound
		}
		return domain.WorkOrder{}, fmt.Errorf("get work order: %w", err)
	}
	return wo, nil
}

func (s *Store) UpdateWorkOrderCAS(ctx context.Context, wo domain.WorkOrder, expected domain.WorkOrderStatus) (bool, error) {
	const stmt = `
UPDATE work_orders SET status = $2, payment_terms = $3, tax_rate_bps = $4,
	negotiation_requested = $5, negotiation_reason = $6, po_doc_ref = $7,
	po_approved_at = $8, reject_reason = $9, updated_at = $10
WHERE id = $1 AND status = $11`

	tag, err := s.exec(ctx, stmt,
		wo.ID, wo.Status, wo.PaymentTerms, wo.TaxRateBps,
		wo.NegotiationRequested, wo.NegotiationReason, wo.PODocRef,
		wo.POApprovedAt, wo.RejectReason, wo.UpdatedAt, expected,
	)
	if err != nil {
		return false, fmt.Errorf("update work order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) CreateCommitment(ctx context.Context, c domain.Commitment) (int64, error) {
	const stmt = `
INSERT INTO commitments (work_order_id, slot_id, channel, section, start_date, end_date,
	price, banner_ref, banner_uploaded_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id`

	var id int64
	err := s.queryRow(ctx, stmt,
		c.WorkOrderID, c.SlotID, c.Channel, c.Section, c.Window.Start, c.Window.End,
		c.Price, c.BannerRef, c.BannerUploadedAt, c.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create commitment: %w", err)
	}
	return id, nil
}

func (s *Store) GetCommitment(ctx context.Context, id int64) (domain.Commitment, error) {
	c, err := scanCommitment(s.queryRow(ctx,
		`SELECT `+commitmentColumns+` FROM commitments c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Commitment{}, domain.ErrCommitmentNotFound
		}
		return domain.Commitment{}, fmt.Errorf("get commitment: %w", err)
	}
	return c, nil
}

func (s *Store) ListCommitments(ctx context.Context, workOrderID int64) ([]domain.Commitment, error) {
	rows, err := s.query(ctx,
		`SELECT `+commitmentColumns+` FROM commitments c WHERE c.work_order_id = $1 ORDER BY c.id`,
		workOrderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Commitment, error) {
		return scanCommitment(row)
	})
}

func (s *Store) UpdateCommitmentPrice(ctx context.Context, commitmentID int64, price int64) error {
	tag, err := s.exec(ctx, `UPDATE commitments SET price = $2 WHERE id = $1`, commitmentID, price)
	if err != nil {
		return fmt.Errorf("update commitment price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommitmentNotFound
	}
	return nil
}

func (s *Store) SetCommitmentBanner(ctx context.Context, commitmentID int64, ref string, uploadedAt time.Time) error {
	tag, err := s.exec(ctx,
		`UPDATE commitments SET banner_ref = $2, banner_uploaded_at = $3 WHERE id = $1`,
		commitmentID, ref, uploadedAt,
	)
	if err != nil {
		return fmt.Errorf("set commitment banner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommitmentNotFound
	}
	return nil
}

func (s *Store) AppendWorkOrderEvent(ctx context.Context, ev domain.WorkOrderEvent) error {
	const stmt = `
INSERT INTO work_order_events (work_order_id, from_status, to_status, actor_id, actor_role, note, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := s.exec(ctx, stmt,
		ev.WorkOrderID, ev.FromStatus, ev.ToStatus, ev.ActorID, ev.ActorRole, ev.Note, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append work order event: %w", err)
	}
	return nil
}

func (s *Store) ListWorkOrderEvents(ctx context.Context, workOrderID int64) ([]domain.WorkOrderEvent, error) {
	rows, err := s.query(ctx, `
SELECT id, work_order_id, from_status, to_status, actor_id, actor_role, note, created_at
FROM work_order_events WHERE work_order_id = $1 ORDER BY id`, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("list work order events: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WorkOrderEvent, error) {
		var ev domain.WorkOrderEvent
		err := row.Scan(&ev.ID, &ev.WorkOrderID, &ev.FromStatus, &ev.ToStatus,
			&ev.ActorID, &ev.ActorRole, &ev.Note, &ev.CreatedAt)
		return ev, err
	})
}

func scanCommitment(row pgx.Row) (domain.Commitment, error) {
	var c domain.Commitment
	err := row.Scan(
		&c.ID, &c.WorkOrderID, &c.SlotID, &c.Channel, &c.Section,
		&c.Window.Start, &c.Window.End, &c.Price, &c.BannerRef, &c.BannerUploadedAt,
		&c.CreatedAt,
	)
	return c, err
}
