package repository

import (
	"context"
	"time"

	"github.com/osse101/liveops/internal/domain"
)

// EventOrder selects the ordering of QueryEvents results.
type EventOrder int

const (
	// OrderPriority sorts by priority desc, then start time asc.
	OrderPriority EventOrder = iota
	// OrderStart sorts by start time asc.
	OrderStart
)

// EventFilter is a conjunction of optional predicates. Nil bounds are not applied.
type EventFilter struct {
	ActiveOnly       bool
	RecurringOnly    bool
	ExcludeTemplates bool // drops recurrence templates, keeping their occurrences
	EventType        domain.EventType

	StartFrom   *time.Time // start_time >= StartFrom
	StartBefore *time.Time // start_time <  StartBefore
	StartAfter  *time.Time // start_time >  StartAfter
	StartUntil  *time.Time // start_time <= StartUntil
	EndFrom     *time.Time // end_time   >= EndFrom
	EndBefore   *time.Time // end_time   <  EndBefore

	Limit int
}

// Matches applies the filter in memory. Stores use it to keep SQL and
// in-process semantics identical; callers use it to re-check cached rows.
func (f EventFilter) Matches(e domain.Event) bool {
	if f.ActiveOnly && !e.IsActive {
		return false
	}
	if f.RecurringOnly && !e.IsRecurring {
		return false
	}
	if f.ExcludeTemplates && e.IsTemplate() {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if f.StartFrom != nil && e.StartTime.Before(*f.StartFrom) {
		return false
	}
	if f.StartBefore != nil && !e.StartTime.Before(*f.StartBefore) {
		return false
	}
	if f.StartAfter != nil && !e.StartTime.After(*f.StartAfter) {
		return false
	}
	if f.StartUntil != nil && e.StartTime.After(*f.StartUntil) {
		return false
	}
	if f.EndFrom != nil && e.EndTime.Before(*f.EndFrom) {
		return false
	}
	if f.EndBefore != nil && !e.EndTime.Before(*f.EndBefore) {
		return false
	}
	return true
}

// EventRepository is the durable event store.
//
// InsertEvent returns domain.ErrEventAlreadyExists when an event with the same
// WindowKey exists; events without a WindowKey never conflict.
// Transient I/O failures are returned as *domain.StoreError.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.Event) error
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	QueryEvents(ctx context.Context, filter EventFilter, order EventOrder) ([]domain.Event, error)
	// DeactivateEvents sets is_active=false on the given ids and returns the rows changed.
	// Already inactive events are left untouched.
	DeactivateEvents(ctx context.Context, ids []string) (int64, error)

	// GetProgress returns nil, nil when the player has no progress for the event.
	GetProgress(ctx context.Context, eventID, playerID string) (*domain.EventProgress, error)
	UpsertProgress(ctx context.Context, progress *domain.EventProgress) error

	// GetCompletion returns nil, nil when no completion is recorded.
	GetCompletion(ctx context.Context, eventID, playerID string) (*domain.EventCompletion, error)
	// UpsertCompletion inserts the completion or refreshes completed_at on an
	// existing row; created reports whether this call inserted it.
	UpsertCompletion(ctx context.Context, completion *domain.EventCompletion) (created bool, err error)
	MarkRewardsClaimed(ctx context.Context, eventID, playerID string) error

	Ping(ctx context.Context) error
	Close() error
}
