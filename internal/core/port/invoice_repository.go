package port

import (
	"context"
	"time"

	"slotdesk/internal/core/domain"
)

// InvoiceRepository is the persistence port for invoices.
type InvoiceRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateInvoice(ctx context.Context, inv domain.Invoice) (int64, error)
	GetInvoice(ctx context.Context, id int64) (domain.Invoice, error)
	GetActiveProforma(ctx context.Context, workOrderID int64) (*domain.Invoice, error)

	// DeactivateProformas clears the active flag on every proforma of the
	// work order; superseded rows stay for audit.
	DeactivateProformas(ctx context.Context, workOrderID int64) error

	// MarkInvoicePaidCAS completes the invoice only while it is still
	// pending or partial; false means it was already completed.
	MarkInvoicePaidCAS(ctx context.Context, id int64, paidAt time.Time) (bool, error)
}
