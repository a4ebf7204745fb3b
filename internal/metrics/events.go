package metrics

import (
	"context"

	"github.com/osse101/liveops/internal/event"
	"github.com/osse101/liveops/internal/logger"
)

// EventMetricsCollector subscribes to lifecycle events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to every lifecycle event type
func (e *EventMetricsCollector) Register(bus event.Bus) {
	event.SubscribeLifecycle(bus, e.HandleEvent)
}

// HandleEvent counts the notification. It never fails the publish.
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	NotificationsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.EventCreated, event.EventProgressUpdated, event.EventCompleted:
	default:
		logger.FromContext(ctx).Debug(LogMsgUnknownEventType, "type", evt.Type)
	}
	return nil
}
