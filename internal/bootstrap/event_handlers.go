package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/liveops/internal/discord"
	"github.com/osse101/liveops/internal/event"
	"github.com/osse101/liveops/internal/metrics"
	"github.com/osse101/liveops/internal/sse"
)

// EventHandlerDependencies holds what the bus subscribers need
type EventHandlerDependencies struct {
	EventBus event.Bus
	Hub      *sse.Hub
	// Announcer is nil when Discord is not configured
	Announcer *discord.Announcer
}

// RegisterEventHandlers subscribes the metrics collector, the SSE bridge and,
// when configured, the Discord announcer to lifecycle events.
func RegisterEventHandlers(ctx context.Context, deps EventHandlerDependencies) {
	metrics.NewEventMetricsCollector().Register(deps.EventBus)
	slog.Info(LogMsgMetricsCollectorRegistered)

	if deps.Hub != nil {
		sse.NewSubscriber(deps.Hub, deps.EventBus).Subscribe(ctx)
		slog.Info(LogMsgSSESubscriberRegistered)
	}

	if deps.Announcer == nil {
		slog.Info(LogMsgAnnouncerDisabled)
		return
	}
	deps.Announcer.Register(deps.EventBus)
	deps.Announcer.Start(ctx)
	slog.Info(LogMsgAnnouncerRegistered)
}
