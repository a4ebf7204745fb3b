package domain

import (
	"context"
	"time"
)

// NotificationType names a lifecycle notification. Delivery is the transport's job.
type NotificationType string

// Lifecycle notification types
const (
	NotificationCreated         NotificationType = "event.created"
	NotificationProgressUpdated NotificationType = "event.progress_updated"
	NotificationCompleted       NotificationType = "event.completed"
)

// Notification is emitted to the NotificationPort.
type Notification struct {
	Type      NotificationType `json:"type"`
	Payload   any              `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
}

// EventCreatedPayload accompanies NotificationCreated.
type EventCreatedPayload struct {
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	EventType EventType `json:"event_type"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Priority  int       `json:"priority"`
}

// ProgressUpdatedPayload accompanies NotificationProgressUpdated.
type ProgressUpdatedPayload struct {
	EventID      string             `json:"event_id"`
	PlayerID     string             `json:"player_id"`
	ProgressData map[string]float64 `json:"progress_data"`
	Completed    bool               `json:"completed"`
}

// EventCompletedPayload accompanies NotificationCompleted.
type EventCompletedPayload struct {
	EventID     string           `json:"event_id"`
	PlayerID    string           `json:"player_id"`
	Title       string           `json:"title"`
	Rewards     map[string]int64 `json:"rewards,omitempty"`
	CompletedAt time.Time        `json:"completed_at"`
}

// WeatherCondition is a provider's reading at a location.
type WeatherCondition struct {
	Type              string             `json:"type"`
	Description       string             `json:"description,omitempty"`
	TemperatureC      float64            `json:"temperature_c"`
	GameplayModifiers map[string]float64 `json:"gameplay_modifiers,omitempty"`
}

// WeatherClear is the condition type that never triggers a weather event.
const WeatherClear = "clear"

// NotificationPort receives lifecycle notifications. Implementations must not
// block the caller on delivery and must not fail the originating operation.
type NotificationPort interface {
	Notify(ctx context.Context, n Notification)
}

// NewNotification stamps a notification with the current UTC time.
func NewNotification(t NotificationType, payload any) Notification {
	return Notification{Type: t, Payload: payload, Timestamp: time.Now().UTC()}
}
