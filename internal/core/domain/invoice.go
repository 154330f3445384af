package domain

import "time"

type InvoiceKind string

const (
	InvoiceProforma InvoiceKind = "proforma"
	InvoiceTax      InvoiceKind = "tax"
)

type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoiceCompleted InvoiceStatus = "completed"
	InvoiceFailed    InvoiceStatus = "failed"
	InvoicePartial   InvoiceStatus = "partial"
)

// Invoice is issued against a work order (proforma, at PO approval) or its
// release order (tax, at acceptance). Superseded proformas are kept with
// Active=false for audit; at most one proforma per work order is active.
type Invoice struct {
	ID             int64
	WorkOrderID    int64
	ReleaseOrderID *int64
	Number         string // uuid, printed on the rendered document
	Kind           InvoiceKind
	Amount         int64 // integer cents, tax included
	Status         InvoiceStatus
	Active         bool
	DueDate        *time.Time
	PaidAt         *time.Time
	CreatedAt      time.Time
}
