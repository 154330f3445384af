package domain

import "time"

type ReleaseOrderStatus string

const (
	ReleasePendingManagerReview ReleaseOrderStatus = "pending_manager_review"
	ReleasePendingBannerUpload  ReleaseOrderStatus = "pending_banner_upload"
	ReleasePendingVPReview      ReleaseOrderStatus = "pending_vp_review"
	ReleasePendingPVReview      ReleaseOrderStatus = "pending_pv_review"
	ReleaseAccepted             ReleaseOrderStatus = "accepted"
	ReleaseReadyForIT           ReleaseOrderStatus = "ready_for_it"
	ReleaseReadyForMaterial     ReleaseOrderStatus = "ready_for_material"
	ReleaseDeployed             ReleaseOrderStatus = "deployed"
)

// releaseTransitions is the closed transition table for the production
// ladder, including the reject back-edges and the shared return-to-client
// state every rejection can fall back to.
var releaseTransitions = map[ReleaseOrderStatus]map[ReleaseOrderStatus]bool{
	ReleasePendingManagerReview: {ReleasePendingVPReview: true, ReleasePendingBannerUpload: true},
	ReleasePendingBannerUpload:  {ReleasePendingManagerReview: true},
	ReleasePendingVPReview:      {ReleasePendingPVReview: true, ReleasePendingManagerReview: true},
	ReleasePendingPVReview:      {ReleaseAccepted: true, ReleasePendingVPReview: true},
	ReleaseAccepted:             {ReleaseReadyForIT: true, ReleaseReadyForMaterial: true},
	ReleaseReadyForIT:           {ReleaseDeployed: true},
	ReleaseReadyForMaterial:     {ReleaseDeployed: true},
	ReleaseDeployed:             {},
}

// CanTransitionRelease reports whether from -> to is in the table.
func CanTransitionRelease(from, to ReleaseOrderStatus) bool {
	return releaseTransitions[from][to]
}

// stageApprover maps each review stage to the only role that may approve
// or reject it. Approving out of turn fails, it never no-ops.
var stageApprover = map[ReleaseOrderStatus]Role{
	ReleasePendingManagerReview: RoleManager,
	ReleasePendingVPReview:      RoleVP,
	ReleasePendingPVReview:      RolePV,
}

// ApproverFor returns the designated approver role for a review stage.
// ok is false for non-review states.
func ApproverFor(s ReleaseOrderStatus) (Role, bool) {
	r, ok := stageApprover[s]
	return r, ok
}

// NextOnApprove returns the state an approval moves to from s. The branch
// out of accepted is decided elsewhere, at PV-approval time, from the
// commitment set.
func NextOnApprove(s ReleaseOrderStatus) (ReleaseOrderStatus, bool) {
	switch s {
	case ReleasePendingManagerReview:
		return ReleasePendingVPReview, true
	case ReleasePendingVPReview:
		return ReleasePendingPVReview, true
	case ReleasePendingPVReview:
		return ReleaseAccepted, true
	}
	return "", false
}

// PrevOnReject returns the state a rejection falls back to from s.
func PrevOnReject(s ReleaseOrderStatus) (ReleaseOrderStatus, bool) {
	switch s {
	case ReleasePendingVPReview:
		return ReleasePendingManagerReview, true
	case ReleasePendingPVReview:
		return ReleasePendingVPReview, true
	}
	return "", false
}

type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementCompleted SettlementStatus = "completed"
)

// ReleaseOrder is the production/approval twin of a paid work order,
// created exactly once when the work order reaches paid. The latest
// rejection overwrites the previous one on the row; the full trail is in
// release_order_events.
type ReleaseOrder struct {
	ID          int64
	WorkOrderID int64
	Status      ReleaseOrderStatus

	RejectReason   string
	RejectedByID   *int64
	RejectedByRole Role
	RejectedAt     *time.Time

	// Settlement of the final tax invoice; lags approval independently of
	// the work order's proforma payment.
	Settlement SettlementStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deployable reports whether commitments under this release order may be
// pushed live.
func (r ReleaseOrder) Deployable() bool {
	switch r.Status {
	case ReleaseAccepted, ReleaseReadyForIT, ReleaseReadyForMaterial:
		return true
	}
	return false
}

// ReleaseOrderEvent is one append-only history entry.
type ReleaseOrderEvent struct {
	ID             int64
	ReleaseOrderID int64
	FromStatus     ReleaseOrderStatus
	ToStatus       ReleaseOrderStatus
	ActorID        int64
	ActorRole      Role
	Note           string
	CreatedAt      time.Time
}
