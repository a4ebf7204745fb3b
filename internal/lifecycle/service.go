// Package lifecycle owns event creation, cancellation, the active and upcoming
// queries and the expiry sweep.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/liveops/internal/clock"
	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/eventcache"
	"github.com/osse101/liveops/internal/logger"
	"github.com/osse101/liveops/internal/metrics"
	"github.com/osse101/liveops/internal/repository"
	"github.com/osse101/liveops/internal/timewindow"
	"github.com/osse101/liveops/internal/validation"
)

// Service is the event lifecycle manager
type Service interface {
	CreateEvent(ctx context.Context, spec domain.EventSpec) (*domain.Event, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	CancelEvent(ctx context.Context, id string) (*domain.Event, error)

	// GetActiveEvents returns events with start <= now <= end that are still
	// active, ordered by priority desc then start asc, annotated for timezone.
	GetActiveEvents(ctx context.Context, timezone string, typeFilter domain.EventType) ([]domain.EventView, error)
	// GetUpcomingEvents returns active events starting in (now, now+horizon], by start asc.
	GetUpcomingEvents(ctx context.Context, horizonHours int, timezone string) ([]domain.EventView, error)

	// SweepExpiredEvents deactivates every active event whose end has passed
	// and returns how many were changed.
	SweepExpiredEvents(ctx context.Context) (int64, error)
}

type service struct {
	repo     repository.EventRepository
	cache    *eventcache.Cache
	notifier domain.NotificationPort
	clock    clock.Clock
}

// NewService creates the lifecycle manager. A nil notifier disables notifications;
// a nil clock uses the system clock.
func NewService(repo repository.EventRepository, cache *eventcache.Cache, notifier domain.NotificationPort, clk clock.Clock) Service {
	if cache == nil {
		cache = eventcache.New(0, 0)
	}
	if clk == nil {
		clk = clock.NewReal()
	}
	return &service{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		clock:    clk,
	}
}

func (s *service) CreateEvent(ctx context.Context, spec domain.EventSpec) (*domain.Event, error) {
	log := logger.FromContext(ctx)

	if err := validation.ValidateEventSpec(spec); err != nil {
		return nil, err
	}
	loc, err := timewindow.LoadLocation(spec.Timezone)
	if err != nil {
		return nil, domain.NewValidationError(err, map[string]string{"timezone": err.Error()})
	}

	now := s.clock.Now()
	evt := &domain.Event{
		ID:                uuid.NewString(),
		Title:             spec.Title,
		Description:       spec.Description,
		EventType:         spec.EventType,
		StartTime:         timewindow.ToUTC(spec.StartTime, loc),
		EndTime:           timewindow.ToUTC(spec.EndTime, loc),
		Timezone:          loc.String(),
		Priority:          spec.Priority,
		IsActive:          true,
		IsRecurring:       spec.IsRecurring,
		RecurrencePattern: spec.RecurrencePattern,
		Requirements:      spec.Requirements,
		Rewards:           spec.Rewards,
		Metadata:          spec.Metadata,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if evt.Requirements == nil {
		evt.Requirements = map[string]float64{}
	}
	if spec.WindowStart != nil {
		ws := spec.WindowStart.UTC()
		evt.WindowStart = &ws
		evt.WindowKey = spec.WindowKey
		if evt.WindowKey == "" {
			evt.WindowKey = domain.NewWindowKey(string(evt.EventType), ws)
		}
	}

	if err := s.repo.InsertEvent(ctx, evt); err != nil {
		if errors.Is(err, domain.ErrEventAlreadyExists) {
			log.Debug(LogMsgEventAlreadyExists, "event_type", evt.EventType, "window_key", evt.WindowKey)
			return nil, err
		}
		log.Error(LogMsgCreateEventFailed, "error", err, "event_type", evt.EventType)
		return nil, wrapStore(OpCreate, err)
	}

	s.cache.InvalidateAll()
	metrics.EventsCreated.WithLabelValues(string(evt.EventType)).Inc()
	log.Info(LogMsgEventCreated,
		"event_id", evt.ID,
		"event_type", evt.EventType,
		"start", evt.StartTime,
		"end", evt.EndTime)

	s.notify(ctx, domain.NotificationCreated, domain.EventCreatedPayload{
		EventID:   evt.ID,
		Title:     evt.Title,
		EventType: evt.EventType,
		StartTime: evt.StartTime,
		EndTime:   evt.EndTime,
		Priority:  evt.Priority,
	})
	return evt, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	evt, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, wrapStore(OpGet, err)
	}
	return evt, nil
}

func (s *service) CancelEvent(ctx context.Context, id string) (*domain.Event, error) {
	log := logger.FromContext(ctx)

	evt, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			log.Debug(LogMsgCancelEventNotFound, "event_id", id)
		}
		return nil, wrapStore(OpCancel, err)
	}
	if !evt.IsActive {
		return evt, nil
	}

	changed, err := s.repo.DeactivateEvents(ctx, []string{id})
	if err != nil {
		return nil, wrapStore(OpCancel, err)
	}
	s.cache.InvalidateAll()

	evt.IsActive = false
	evt.UpdatedAt = s.clock.Now()
	if changed > 0 {
		metrics.EventsCancelled.Inc()
		log.Info(LogMsgEventCancelled, "event_id", id)
	}
	return evt, nil
}

func (s *service) GetActiveEvents(ctx context.Context, timezone string, typeFilter domain.EventType) ([]domain.EventView, error) {
	loc, err := timewindow.LoadLocation(timezone)
	if err != nil {
		return nil, domain.NewValidationError(err, map[string]string{"timezone": err.Error()})
	}

	now := s.clock.Now()
	key := eventcache.Key{Timezone: loc.String(), TypeFilter: typeFilter}

	candidates, ok := s.cache.Get(key)
	if ok {
		metrics.CacheLookups.WithLabelValues(metrics.ResultHit).Inc()
		logger.FromContext(ctx).Debug(LogMsgCacheHit, "key", key.String(), "count", len(candidates))
	} else {
		metrics.CacheLookups.WithLabelValues(metrics.ResultMiss).Inc()

		gen := s.cache.Generation()
		// Look ahead by one TTL so an event starting while the entry lives is not missed.
		until := now.Add(s.cache.TTL())
		candidates, err = s.repo.QueryEvents(ctx, repository.EventFilter{
			ActiveOnly:       true,
			ExcludeTemplates: true,
			EventType:        typeFilter,
			StartUntil:       &until,
			EndFrom:          &now,
		}, repository.OrderPriority)
		if err != nil {
			return nil, wrapStore(OpActive, err)
		}
		if !s.cache.Set(key, candidates, gen) {
			logger.FromContext(ctx).Debug(LogMsgCacheFillDiscarded, "key", key.String())
		}
	}

	active := repository.EventFilter{
		ActiveOnly:       true,
		ExcludeTemplates: true,
		EventType:        typeFilter,
		StartUntil:       &now,
		EndFrom:          &now,
	}
	views := make([]domain.EventView, 0, len(candidates))
	for _, evt := range candidates {
		if active.Matches(evt) {
			views = append(views, timewindow.Annotate(evt, now, loc))
		}
	}
	return views, nil
}

func (s *service) GetUpcomingEvents(ctx context.Context, horizonHours int, timezone string) ([]domain.EventView, error) {
	if horizonHours <= 0 || horizonHours > MaxUpcomingHorizonHours {
		return nil, domain.NewValidationError(domain.ErrInvalidInput, map[string]string{
			"hours": fmt.Sprintf("must be between 1 and %d", MaxUpcomingHorizonHours),
		})
	}
	loc, err := timewindow.LoadLocation(timezone)
	if err != nil {
		return nil, domain.NewValidationError(err, map[string]string{"timezone": err.Error()})
	}

	now := s.clock.Now()
	until := now.Add(time.Duration(horizonHours) * time.Hour)
	events, err := s.repo.QueryEvents(ctx, repository.EventFilter{
		ActiveOnly:       true,
		ExcludeTemplates: true,
		StartAfter:       &now,
		StartUntil:       &until,
	}, repository.OrderStart)
	if err != nil {
		return nil, wrapStore(OpUpcoming, err)
	}

	views := make([]domain.EventView, 0, len(events))
	for _, evt := range events {
		views = append(views, timewindow.Annotate(evt, now, loc))
	}
	return views, nil
}

func (s *service) SweepExpiredEvents(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)
	// The cache is cleared whatever happens below.
	defer s.cache.InvalidateAll()

	now := s.clock.Now()
	expired, err := s.repo.QueryEvents(ctx, repository.EventFilter{
		ActiveOnly: true,
		EndBefore:  &now,
	}, repository.OrderStart)
	if err != nil {
		log.Error(LogMsgSweepFailed, "error", err)
		return 0, wrapStore(OpSweep, err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(expired))
	for _, evt := range expired {
		ids = append(ids, evt.ID)
	}
	changed, err := s.repo.DeactivateEvents(ctx, ids)
	if err != nil {
		log.Error(LogMsgSweepFailed, "error", err, "candidates", len(ids))
		return 0, wrapStore(OpSweep, err)
	}

	metrics.EventsExpired.Add(float64(changed))
	log.Info(LogMsgSweepCompleted, "deactivated", changed)
	return changed, nil
}

func (s *service) notify(ctx context.Context, t domain.NotificationType, payload any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, domain.NewNotification(t, payload))
}

// wrapStore leaves domain errors alone and wraps anything else as a StoreError
func wrapStore(op string, err error) error {
	var storeErr *domain.StoreError
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &storeErr), errors.As(err, &validationErr):
		return err
	case errors.Is(err, domain.ErrEventNotFound), errors.Is(err, domain.ErrEventAlreadyExists):
		return err
	default:
		return domain.NewStoreError(op, err)
	}
}
