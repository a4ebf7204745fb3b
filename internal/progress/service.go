// Package progress merges per-player progress and triggers completion.
package progress

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/osse101/liveops/internal/clock"
	"github.com/osse101/liveops/internal/concurrency"
	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/logger"
	"github.com/osse101/liveops/internal/metrics"
	"github.com/osse101/liveops/internal/repository"
	"github.com/osse101/liveops/internal/reward"
)

// UpdateResult is the outcome of one progress update
type UpdateResult struct {
	Progress domain.EventProgress `json:"progress"`
	// Completed reports whether the merged progress satisfies every requirement.
	Completed bool `json:"completed"`
	// NewlyCompleted is true only for the update that recorded the completion.
	NewlyCompleted bool                    `json:"newly_completed"`
	Completion     *domain.EventCompletion `json:"completion,omitempty"`
}

// Service is the progress tracker
type Service interface {
	UpdateProgress(ctx context.Context, eventID, playerID string, partial map[string]float64) (*UpdateResult, error)
	GetProgress(ctx context.Context, eventID, playerID string) (*domain.EventProgress, error)
}

type service struct {
	repo     repository.EventRepository
	rewards  reward.Service
	notifier domain.NotificationPort
	locks    *concurrency.LockManager
	clock    clock.Clock
	mode     MergeMode
}

// NewService creates the tracker. Unknown merge modes fall back to overwrite.
func NewService(
	repo repository.EventRepository,
	rewards reward.Service,
	notifier domain.NotificationPort,
	locks *concurrency.LockManager,
	clk clock.Clock,
	mode MergeMode,
) Service {
	if locks == nil {
		locks = concurrency.NewLockManager()
	}
	if clk == nil {
		clk = clock.NewReal()
	}
	if mode != MergeAccumulate {
		mode = MergeOverwrite
	}
	return &service{
		repo:     repo,
		rewards:  rewards,
		notifier: notifier,
		locks:    locks,
		clock:    clk,
		mode:     mode,
	}
}

func (s *service) UpdateProgress(ctx context.Context, eventID, playerID string, partial map[string]float64) (*UpdateResult, error) {
	if err := validateUpdate(eventID, playerID, partial); err != nil {
		return nil, err
	}

	// Updates for one (event, player) pair apply in arrival order.
	unlock, err := s.locks.Lock(ctx, eventID+":"+playerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.update(ctx, eventID, playerID, partial)
}

func (s *service) update(ctx context.Context, eventID, playerID string, partial map[string]float64) (*UpdateResult, error) {
	log := logger.FromContext(ctx)
	now := s.clock.Now()

	evt, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, wrapStore(OpUpdate, err)
	}
	// Templates are played through their occurrences.
	if !evt.IsActive || evt.IsTemplate() || !evt.Contains(now) {
		return nil, fmt.Errorf("%w: %s", domain.ErrEventInactive, eventID)
	}

	var current map[string]float64
	existing, err := s.repo.GetProgress(ctx, eventID, playerID)
	if err != nil {
		return nil, wrapStore(OpUpdate, err)
	}
	if existing != nil {
		current = existing.ProgressData
	}

	progress := domain.EventProgress{
		EventID:      eventID,
		PlayerID:     playerID,
		ProgressData: Merge(s.mode, current, partial),
		UpdatedAt:    now,
	}
	if err := s.repo.UpsertProgress(ctx, &progress); err != nil {
		log.Error(LogMsgProgressFailed, "error", err, "event_id", eventID, "player_id", playerID)
		return nil, wrapStore(OpUpdate, err)
	}
	metrics.ProgressUpdates.Inc()

	result := &UpdateResult{
		Progress:  progress,
		Completed: domain.IsCompleted(evt.Requirements, progress.ProgressData),
	}
	log.Debug(LogMsgProgressUpdated, "event_id", eventID, "player_id", playerID, "completed", result.Completed)

	var completeErr error
	if result.Completed {
		completeErr = s.complete(ctx, evt, playerID, result)
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, domain.NewNotification(domain.NotificationProgressUpdated, domain.ProgressUpdatedPayload{
			EventID:      eventID,
			PlayerID:     playerID,
			ProgressData: progress.ProgressData,
			Completed:    result.Completed,
		}))
	}
	return result, completeErr
}

// complete hands off to the grantor unless the completion's rewards are already claimed
func (s *service) complete(ctx context.Context, evt *domain.Event, playerID string, result *UpdateResult) error {
	log := logger.FromContext(ctx)

	existing, err := s.repo.GetCompletion(ctx, evt.ID, playerID)
	if err != nil {
		return wrapStore(OpUpdate, err)
	}
	if existing != nil && existing.RewardsClaimed {
		result.Completion = existing
		return nil
	}

	log.Info(LogMsgCompletionReached, "event_id", evt.ID, "player_id", playerID)
	completion, created, err := s.rewards.CompleteLoaded(ctx, evt, playerID)
	result.Completion = completion
	result.NewlyCompleted = created
	if err != nil {
		log.Error(LogMsgCompletionFailed, "error", err, "event_id", evt.ID, "player_id", playerID)
		return err
	}
	return nil
}

func (s *service) GetProgress(ctx context.Context, eventID, playerID string) (*domain.EventProgress, error) {
	p, err := s.repo.GetProgress(ctx, eventID, playerID)
	if err != nil {
		return nil, wrapStore(OpGetProgress, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: event %s player %s", domain.ErrProgressNotFound, eventID, playerID)
	}
	return p, nil
}

func validateUpdate(eventID, playerID string, partial map[string]float64) error {
	fields := map[string]string{}
	if eventID == "" {
		fields["event_id"] = "This field is required"
	}
	if playerID == "" {
		fields["player_id"] = "This field is required"
	}
	switch {
	case len(partial) == 0:
		fields["progress"] = "Must contain at least one key"
	case len(partial) > MaxKeysPerUpdate:
		fields["progress"] = fmt.Sprintf("Must contain at most %d keys", MaxKeysPerUpdate)
	}
	for k, v := range partial {
		if k == "" || math.IsNaN(v) || math.IsInf(v, 0) {
			fields["progress"] = "Keys must be non-empty and values finite"
			break
		}
	}
	if len(fields) > 0 {
		return domain.NewValidationError(domain.ErrInvalidInput, fields)
	}
	return nil
}

func wrapStore(op string, err error) error {
	var storeErr *domain.StoreError
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &storeErr), errors.As(err, &validationErr):
		return err
	case errors.Is(err, domain.ErrEventNotFound):
		return err
	default:
		return domain.NewStoreError(op, err)
	}
}
