package domain

import "time"

type WorkOrderStatus string

const (
	WorkOrderDraft          WorkOrderStatus = "draft"
	WorkOrderQuoted         WorkOrderStatus = "quoted"
	WorkOrderClientAccepted WorkOrderStatus = "client_accepted"
	WorkOrderPaid           WorkOrderStatus = "paid"
	WorkOrderRejected       WorkOrderStatus = "rejected"
)

// workOrderTransitions is the closed transition table. Anything not listed
// here is rejected; free-form status strings never reach storage.
var workOrderTransitions = map[WorkOrderStatus]map[WorkOrderStatus]bool{
	WorkOrderDraft:          {WorkOrderQuoted: true, WorkOrderRejected: true},
	WorkOrderQuoted:         {WorkOrderQuoted: true, WorkOrderClientAccepted: true, WorkOrderRejected: true},
	WorkOrderClientAccepted: {WorkOrderPaid: true},
	WorkOrderPaid:           {},
	WorkOrderRejected:       {},
}

// CanTransitionWorkOrder reports whether from -> to is in the table. The
// quoted -> quoted self-edge covers re-quoting after negotiation.
func CanTransitionWorkOrder(from, to WorkOrderStatus) bool {
	return workOrderTransitions[from][to]
}

// Terminal reports whether s admits no further transitions.
func (s WorkOrderStatus) Terminal() bool {
	return len(workOrderTransitions[s]) == 0
}

type PaymentTerms string

const (
	TermsPrepay      PaymentTerms = "prepay"
	TermsPostpay     PaymentTerms = "postpay"
	TermsInstallment PaymentTerms = "installment"
)

// ValidPaymentTerms reports whether t is a known payment scheme.
func ValidPaymentTerms(t PaymentTerms) bool {
	switch t {
	case TermsPrepay, TermsPostpay, TermsInstallment:
		return true
	}
	return false
}

// WorkOrder is the commercial document: one client, one or more
// commitments, pricing and payment terms. Rows are never deleted; the
// status history lives in append-only work_order_events.
type WorkOrder struct {
	ID       int64
	ClientID int64
	Status   WorkOrderStatus

	PaymentTerms PaymentTerms
	TaxRateBps   int // tax rate in basis points

	// Negotiation sub-state. The flag is cleared on re-quote; the reason
	// survives in the event history for display.
	NegotiationRequested bool
	NegotiationReason    string

	PODocRef     string
	POApprovedAt *time.Time

	RejectReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PricesLocked reports whether item prices may no longer be edited.
func (w WorkOrder) PricesLocked() bool {
	return w.Status != WorkOrderDraft && w.Status != WorkOrderQuoted
}

// WorkOrderEvent is one append-only history entry.
type WorkOrderEvent struct {
	ID          int64
	WorkOrderID int64
	FromStatus  WorkOrderStatus
	ToStatus    WorkOrderStatus
	ActorID     int64
	ActorRole   Role
	Note        string
	CreatedAt   time.Time
}
