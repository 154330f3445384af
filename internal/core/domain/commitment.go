package domain

import "time"

// Commitment is one line of a work order: a reservation of a slot for a
// date window, or a broadcast add-on (email/WhatsApp blast) with no slot.
type Commitment struct {
	ID          int64
	WorkOrderID int64
	SlotID      *int64 // nil for broadcast add-ons
	Channel     Channel
	Section     string
	Window      Window
	Price       int64 // integer cents

	// Banner asset supplied by the client. UploadedAt decides freshness
	// against the release order's rejection timestamp.
	BannerRef        string
	BannerUploadedAt *time.Time

	CreatedAt time.Time
}

// HasSlot reports whether the commitment reserves an actual slot; only
// slot-bearing commitments need banners and deployments.
func (c Commitment) HasSlot() bool {
	return c.SlotID != nil
}

// BannerFresh reports whether a banner exists and, when a rejection
// timestamp is given, was uploaded strictly after it.
func (c Commitment) BannerFresh(rejectedAt *time.Time) bool {
	if c.BannerRef == "" || c.BannerUploadedAt == nil {
		return false
	}
	if rejectedAt == nil {
		return true
	}
	return c.BannerUploadedAt.After(*rejectedAt)
}
