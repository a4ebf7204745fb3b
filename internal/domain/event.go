package domain

import "time"

// EventType identifies an event class. The set is open; unknown types are stored as-is.
type EventType string

// Known event types
const (
	EventTypeDailyChallenge   EventType = "daily_challenge"
	EventTypeWeeklyTournament EventType = "weekly_tournament"
	EventTypeWeather          EventType = "weather_event"
	EventTypeSpecialOffer     EventType = "special_offer"
	EventTypeSeasonal         EventType = "seasonal_event"
	EventTypeLive             EventType = "live_event"
)

// Event is a time-bounded game activity with requirements and rewards.
// StartTime and EndTime are always UTC; Timezone is the zone the event was authored in.
type Event struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	EventType         EventType          `json:"event_type"`
	StartTime         time.Time          `json:"start_time"`
	EndTime           time.Time          `json:"end_time"`
	Timezone          string             `json:"timezone"`
	Priority          int                `json:"priority"`
	IsActive          bool               `json:"is_active"`
	IsRecurring       bool               `json:"is_recurring"`
	RecurrencePattern string             `json:"recurrence_pattern,omitempty"`
	Requirements      map[string]float64 `json:"requirements"`
	Rewards           RewardTable        `json:"rewards"`
	Metadata          map[string]any     `json:"metadata,omitempty"`

	// WindowStart is the start of the period an auto-created event was made for.
	// Nil for manual and special events.
	WindowStart *time.Time `json:"window_start,omitempty"`
	// WindowKey is the uniqueness key for auto-created events: at most one event
	// per key. It names the producer and the window, see NewWindowKey.
	WindowKey string `json:"window_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether instant t lies in the closed interval [StartTime, EndTime].
func (e Event) Contains(t time.Time) bool {
	return !t.Before(e.StartTime) && !t.After(e.EndTime)
}

// EventSpec is the input for creating an event. StartTime and EndTime carry wall-clock
// values interpreted in Timezone; their own location is ignored.
type EventSpec struct {
	Title             string             `json:"title" validate:"required,max=200"`
	Description       string             `json:"description" validate:"max=2000"`
	EventType         EventType          `json:"event_type" validate:"required,max=64,event_type"`
	StartTime         time.Time          `json:"start_time" validate:"required"`
	EndTime           time.Time          `json:"end_time" validate:"required"`
	Timezone          string             `json:"timezone" validate:"max=64,timezone"`
	Priority          int                `json:"priority" validate:"gte=-1000,lte=1000"`
	IsRecurring       bool               `json:"is_recurring"`
	RecurrencePattern string             `json:"recurrence_pattern,omitempty" validate:"max=500,rrule"`
	Requirements      map[string]float64 `json:"requirements" validate:"dive,keys,required,max=64,endkeys,gte=0"`
	Rewards           RewardTable        `json:"rewards"`
	Metadata          map[string]any     `json:"metadata,omitempty"`
	WindowStart       *time.Time         `json:"-"`
	WindowKey         string             `json:"-"`
}

// IsTemplate reports whether the event is a recurrence template. Templates only
// produce occurrences; they are never listed or played themselves.
func (e Event) IsTemplate() bool {
	return e.IsRecurring && e.RecurrencePattern != ""
}

// NewWindowKey builds the uniqueness key for an auto-created event. producer
// is the event type for period classes and the template id for occurrences.
func NewWindowKey(producer string, windowStart time.Time) string {
	return producer + "@" + windowStart.UTC().Format(time.RFC3339)
}

// EventView is an Event annotated with fields derived at query time for a display zone.
type EventView struct {
	Event
	IsOngoing            bool   `json:"is_ongoing"`
	IsUpcoming           bool   `json:"is_upcoming"`
	DurationMinutes      int64  `json:"duration_minutes"`
	TimeRemainingMinutes int64  `json:"time_remaining_minutes"`
	LocalStart           string `json:"local_start"`
	LocalEnd             string `json:"local_end"`
	DisplayTimezone      string `json:"display_timezone"`
}

// EventProgress holds one player's accumulated values toward an event's requirements.
type EventProgress struct {
	EventID      string             `json:"event_id"`
	PlayerID     string             `json:"player_id"`
	ProgressData map[string]float64 `json:"progress_data"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// EventCompletion records the one-time completion of an event by a player.
type EventCompletion struct {
	EventID        string    `json:"event_id"`
	PlayerID       string    `json:"player_id"`
	CompletedAt    time.Time `json:"completed_at"`
	RewardsClaimed bool      `json:"rewards_claimed"`
}

// IsCompleted reports whether progress satisfies every requirement.
// Missing keys count as zero; keys without a requirement are ignored.
func IsCompleted(requirements, progress map[string]float64) bool {
	for key, required := range requirements {
		if progress[key] < required {
			return false
		}
	}
	return true
}
