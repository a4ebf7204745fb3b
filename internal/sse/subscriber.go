package sse

import (
	"context"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/event"
	"github.com/osse101/liveops/internal/logger"
)

// Subscriber bridges the internal event bus to the SSE hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a new SSE subscriber
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{
		hub: hub,
		bus: bus,
	}
}

// Subscribe registers the bridge for every lifecycle event type
func (s *Subscriber) Subscribe(ctx context.Context) {
	event.SubscribeLifecycle(s.bus, s.handle)
	logger.FromContext(ctx).Info(LogMsgSubscribed)
}

// handle forwards the payload unchanged and tags it with routing keys.
// It never fails the publish: a client stream is best effort.
func (s *Subscriber) handle(ctx context.Context, evt event.Event) error {
	out := Event{
		Type:      string(evt.Type),
		Timestamp: evt.Timestamp.Unix(),
		Payload:   evt.Payload,
	}

	switch evt.Type {
	case event.EventCreated:
		p, err := event.DecodePayload[domain.EventCreatedPayload](evt.Payload)
		if err != nil {
			logger.FromContext(ctx).Warn(LogMsgBadPayload, "type", evt.Type, "error", err)
			return nil
		}
		out.eventID = p.EventID
	case event.EventProgressUpdated:
		p, err := event.DecodePayload[domain.ProgressUpdatedPayload](evt.Payload)
		if err != nil {
			logger.FromContext(ctx).Warn(LogMsgBadPayload, "type", evt.Type, "error", err)
			return nil
		}
		out.eventID, out.playerID = p.EventID, p.PlayerID
	case event.EventCompleted:
		p, err := event.DecodePayload[domain.EventCompletedPayload](evt.Payload)
		if err != nil {
			logger.FromContext(ctx).Warn(LogMsgBadPayload, "type", evt.Type, "error", err)
			return nil
		}
		out.eventID, out.playerID = p.EventID, p.PlayerID
	}

	s.hub.publish(out)
	logger.FromContext(ctx).Debug(LogMsgEventBroadcast, "event_type", out.Type, "event_id", out.eventID)
	return nil
}
