package domain

import (
	"errors"
	"fmt"
)

// The four error kinds surfaced by this service. Every specific error below
// wraps exactly one kind so callers can branch with errors.Is without
// matching message text.
var (
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
)

var (
	ErrSlotWindowConflict  = fmt.Errorf("%w: slot window overlaps a live commitment", ErrConflict)
	ErrSlotBlocked         = fmt.Errorf("%w: slot is administratively blocked for this window", ErrConflict)
	ErrBlockOverCommitment = fmt.Errorf("%w: block window overlaps a live commitment", ErrConflict)
	ErrInvoiceAlreadyPaid  = fmt.Errorf("%w: invoice already paid", ErrConflict)
	ErrAlreadyDeployed     = fmt.Errorf("%w: commitment already deployed", ErrConflict)
	ErrSectionTaken        = fmt.Errorf("%w: section already selected in this order", ErrConflict)
	ErrSlotUnavailable     = fmt.Errorf("%w: slot is not open for sale", ErrConflict)

	ErrWrongRole         = fmt.Errorf("%w: acting role may not perform this step", ErrInvalidTransition)
	ErrStaleStatus       = fmt.Errorf("%w: current status does not allow this step", ErrInvalidTransition)
	ErrUnpaidInvoice     = fmt.Errorf("%w: proforma invoice not paid", ErrInvalidTransition)
	ErrBannerMissing     = fmt.Errorf("%w: commitment has no banner upload", ErrInvalidTransition)
	ErrStaleBanner       = fmt.Errorf("%w: banner predates the last rejection", ErrInvalidTransition)
	ErrNotReadyToDeploy  = fmt.Errorf("%w: release order is not ready for deployment", ErrInvalidTransition)
	ErrPONotApproved     = fmt.Errorf("%w: purchase order not approved", ErrInvalidTransition)
	ErrPriceEditLocked   = fmt.Errorf("%w: prices may only change in draft or quoted", ErrInvalidTransition)

	ErrInvalidWindow     = fmt.Errorf("%w: window start must precede end", ErrValidation)
	ErrNonPositivePrice  = fmt.Errorf("%w: price must be positive", ErrValidation)
	ErrReasonRequired    = fmt.Errorf("%w: a non-empty reason is required", ErrValidation)
	ErrPODocRequired     = fmt.Errorf("%w: purchase order document is required", ErrValidation)
	ErrTermsRequired     = fmt.Errorf("%w: payment terms are required", ErrValidation)
	ErrNoCommitments     = fmt.Errorf("%w: order needs at least one commitment", ErrValidation)
	ErrBannerRefRequired = fmt.Errorf("%w: banner reference is required", ErrValidation)
	ErrNotSlotCommitment = fmt.Errorf("%w: commitment has no slot to deploy to", ErrValidation)
	ErrUnknownChannel    = fmt.Errorf("%w: unknown channel", ErrValidation)

	ErrSlotNotFound         = fmt.Errorf("%w: slot", ErrNotFound)
	ErrWorkOrderNotFound    = fmt.Errorf("%w: work order", ErrNotFound)
	ErrReleaseOrderNotFound = fmt.Errorf("%w: release order", ErrNotFound)
	ErrInvoiceNotFound      = fmt.Errorf("%w: invoice", ErrNotFound)
	ErrCommitmentNotFound   = fmt.Errorf("%w: commitment", ErrNotFound)
)
