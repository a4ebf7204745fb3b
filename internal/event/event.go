package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/liveops/internal/domain"
)

// Type represents the type of an event
type Type string

// Event represents a lifecycle message travelling over the bus
type Event struct {
	Version   string         `json:"version"` // Event schema version (e.g., "1.0")
	Type      Type           `json:"type"`
	Payload   interface{}    `json:"payload"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata[key]
}

// Lifecycle event types. They share their names with domain.NotificationType.
const (
	EventCreated         = Type(domain.NotificationCreated)
	EventProgressUpdated = Type(domain.NotificationProgressUpdated)
	EventCompleted       = Type(domain.NotificationCompleted)
)

// FromNotification wraps a domain notification for the bus
func FromNotification(n domain.Notification) Event {
	ts := n.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Event{
		Version:   EventSchemaVersion,
		Type:      Type(n.Type),
		Payload:   n.Payload,
		Timestamp: ts,
	}
}

// NewEventCreated creates an event.created event
func NewEventCreated(e domain.Event) Event {
	return FromNotification(domain.NewNotification(domain.NotificationCreated, domain.EventCreatedPayload{
		EventID:   e.ID,
		Title:     e.Title,
		EventType: e.EventType,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Priority:  e.Priority,
	}))
}

// NewProgressUpdated creates an event.progress_updated event
func NewProgressUpdated(p domain.EventProgress, completed bool) Event {
	return FromNotification(domain.NewNotification(domain.NotificationProgressUpdated, domain.ProgressUpdatedPayload{
		EventID:      p.EventID,
		PlayerID:     p.PlayerID,
		ProgressData: p.ProgressData,
		Completed:    completed,
	}))
}

// NewEventCompleted creates an event.completed event
func NewEventCompleted(e domain.Event, c domain.EventCompletion) Event {
	return FromNotification(domain.NewNotification(domain.NotificationCompleted, domain.EventCompletedPayload{
		EventID:     e.ID,
		PlayerID:    c.PlayerID,
		Title:       e.Title,
		Rewards:     e.Rewards.CompletionGrants(),
		CompletedAt: c.CompletedAt,
	}))
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish runs every subscriber of the event's type synchronously and joins their errors
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeLifecycle subscribes one handler to every lifecycle event type
func SubscribeLifecycle(bus Bus, handler Handler) {
	for _, t := range []Type{EventCreated, EventProgressUpdated, EventCompleted} {
		bus.Subscribe(t, handler)
	}
}
