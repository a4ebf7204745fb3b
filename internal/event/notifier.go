package event

import (
	"context"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/logger"
)

// Publisher is the part of ResilientPublisher the notifier needs
type Publisher interface {
	PublishWithRetry(ctx context.Context, event Event)
}

// Notifier adapts the bus to domain.NotificationPort. Delivery failures are
// handled by the publisher and never reach the caller.
type Notifier struct {
	publisher Publisher
}

// NewNotifier creates a Notifier over publisher. A nil publisher drops everything.
func NewNotifier(publisher Publisher) *Notifier {
	return &Notifier{publisher: publisher}
}

// Notify publishes n with a context detached from the caller's cancellation
func (n *Notifier) Notify(ctx context.Context, notification domain.Notification) {
	if n == nil || n.publisher == nil {
		logger.FromContext(ctx).Debug(LogMsgNotificationDropped, "type", notification.Type)
		return
	}
	n.publisher.PublishWithRetry(context.WithoutCancel(ctx), FromNotification(notification))
}

var _ domain.NotificationPort = (*Notifier)(nil)
