package port

import "context"

// Notification describes a state transition worth telling someone about.
type Notification struct {
	Kind        string // e.g. "work_order.quoted", "release_order.rejected"
	WorkOrderID int64
	Detail      string
}

// Notifier dispatches notifications fire-and-forget: failures are logged by
// the implementation and never fail the transition that triggered them.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
