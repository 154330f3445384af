package domain

import "time"

// Channel is the medium a slot is sold on.
type Channel string

const (
	ChannelWebsite  Channel = "website"
	ChannelMobile   Channel = "mobile"
	ChannelMagazine Channel = "magazine"
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// ValidChannel reports whether c is one of the sellable channels.
func ValidChannel(c Channel) bool {
	switch c {
	case ChannelWebsite, ChannelMobile, ChannelMagazine, ChannelEmail, ChannelWhatsApp:
		return true
	}
	return false
}

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusPending   SlotStatus = "pending"
	SlotStatusExpired   SlotStatus = "expired"
)

// Window is a half-open [Start, End) date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Validate rejects empty or inverted windows.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() || !w.Start.Before(w.End) {
		return ErrInvalidWindow
	}
	return nil
}

// Overlaps reports half-open interval overlap: touching endpoints do not
// conflict, so [1st,10th) and [10th,15th) can coexist on one slot.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Slot is a sellable, time-windowed advertising placement. Whether a slot
// is actually bookable for a window is never answered by Status alone; the
// availability engine combines Status, the admin block and the live
// commitments intersecting the requested window.
type Slot struct {
	ID       int64
	Channel  Channel
	SubPage  string // website sub-page/category, empty for other channels
	Position string
	WidthPx  int
	HeightPx int
	Price    int64 // integer cents
	Status   SlotStatus

	// Administrative block, independent of the lifecycle status. A nil
	// BlockWindow means the block covers all time.
	Blocked     bool
	BlockReason string
	BlockWindow *Window

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Section names the exclusivity bucket a slot belongs to: the channel, or
// channel plus sub-page for website placements. An order may carry at most
// one commitment per section.
func (s Slot) Section() string {
	if s.Channel == ChannelWebsite && s.SubPage != "" {
		return string(s.Channel) + "/" + s.SubPage
	}
	return string(s.Channel)
}

// BlockCovers reports whether the admin block applies to the given window.
func (s Slot) BlockCovers(w Window) bool {
	if !s.Blocked {
		return false
	}
	if s.BlockWindow == nil {
		return true
	}
	return s.BlockWindow.Overlaps(w)
}
