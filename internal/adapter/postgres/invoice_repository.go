package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"slotdesk/internal/core/domain"
)

const invoiceColumns = `id, work_order_id, release_order_id, number, kind, amount,
	status, active, due_date, paid_at, created_at`

func (s *Store) CreateInvoice(ctx context.Context, inv domain.Invoice) (int64, error) {
	const stmt = `
INSERT INTO invoices (work_order_id, release_order_id, number, kind, amount,
	status, active, due_date, paid_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id`

	var id int64
	err := s.queryRow(ctx, stmt,
		inv.WorkOrderID, inv.ReleaseOrderID, inv.Number, inv.Kind, inv.Amount,
		inv.Status, inv.Active, inv.DueDate, inv.PaidAt, inv.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: active proforma exists", domain.ErrConflict)
		}
		return 0, fmt.Errorf("create invoice: %w", err)
	}
	return id, nil
}

func (s *Store) GetInvoice(ctx context.Context, id int64) (domain.Invoice, error) {
	inv, err := scanInvoice(s.queryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Invoice{}, domain.ErrInvoiceNotFound
		}
		return domain.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (s *Store) GetActiveProforma(ctx context.Context, workOrderID int64) (*domain.Invoice, error) {
	inv, err := scanInvoice(s.queryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE work_order_id = $1 AND kind = 'proforma' AND active`,
		workOrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active proforma: %w", err)
	}
	return &inv, nil
}

func (s *Store) DeactivateProformas(ctx context.Context, workOrderID int64) error {
	_, err := s.exec(ctx,
		`UPDATE invoices SET active = false WHERE work_order_id = $1 AND kind = 'proforma'`,
		workOrderID)
	if err != nil {
		return fmt.Errorf("deactivate proformas: %w", err)
	}
	return nil
}

// MarkInvoicePaidCAS completes the invoice unless it already is completed;
// the row guard makes the second payment a no-op observed by the caller.
func (s *Store) MarkInvoicePaidCAS(ctx context.Context, id int64, paidAt time.Time) (bool, error) {
	tag, err := s.exec(ctx, `
UPDATE invoices SET status = 'completed', paid_at = $2
WHERE id = $1 AND status IN ('pending', 'partial', 'failed')`, id, paidAt)
	if err != nil {
		return false, fmt.Errorf("mark invoice paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanInvoice(row pgx.Row) (domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.ID, &inv.WorkOrderID, &inv.ReleaseOrderID, &inv.Number, &inv.Kind,
		&inv.Amount, &inv.Status, &inv.Active, &inv.DueDate, &inv.PaidAt, &inv.CreatedAt,
	)
	return inv, err
}
