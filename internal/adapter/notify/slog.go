package notify

import (
	"context"
	"log/slog"

	"slotdesk/internal/core/port"
)

// SlogNotifier is a fire-and-forget Notifier that writes structured log
// lines. It stands in for the external dispatcher (email/WhatsApp) in
// development and tests; delivery failures never fail a transition.
type SlogNotifier struct {
	logger *slog.Logger
}

func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	return &SlogNotifier{logger: logger}
}

func (n *SlogNotifier) Notify(_ context.Context, ev port.Notification) {
	n.logger.Info("notification",
		slog.String("kind", ev.Kind),
		slog.Int64("work_order_id", ev.WorkOrderID),
		slog.String("detail", ev.Detail),
	)
}
