// Package reward records event completions and grants their rewards once.
package reward

import (
	"context"
	"errors"
	"fmt"

	"github.com/osse101/liveops/internal/clock"
	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/logger"
	"github.com/osse101/liveops/internal/metrics"
	"github.com/osse101/liveops/internal/repository"
)

// Service is the reward grantor
type Service interface {
	// CompleteEvent upserts the completion for (eventID, playerID) and grants the
	// event's rewards until the completion is marked claimed. Grants are not rolled
	// back on partial failure; the returned *domain.GrantError lists what was
	// applied and a later call resumes the grants under the same references.
	CompleteEvent(ctx context.Context, eventID, playerID string) (*domain.EventCompletion, error)
	// CompleteLoaded is CompleteEvent for a caller that already holds the event;
	// created reports whether this call recorded the completion.
	CompleteLoaded(ctx context.Context, evt *domain.Event, playerID string) (completion *domain.EventCompletion, created bool, err error)
	GetCompletion(ctx context.Context, eventID, playerID string) (*domain.EventCompletion, error)
}

type service struct {
	repo     repository.EventRepository
	economy  domain.EconomyPort
	notifier domain.NotificationPort
	clock    clock.Clock
}

// NewService creates a reward grantor
func NewService(repo repository.EventRepository, economy domain.EconomyPort, notifier domain.NotificationPort, clk clock.Clock) Service {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &service{
		repo:     repo,
		economy:  economy,
		notifier: notifier,
		clock:    clk,
	}
}

func (s *service) CompleteEvent(ctx context.Context, eventID, playerID string) (*domain.EventCompletion, error) {
	evt, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, wrapStore(OpComplete, err)
	}
	completion, _, err := s.CompleteLoaded(ctx, evt, playerID)
	return completion, err
}

func (s *service) CompleteLoaded(ctx context.Context, evt *domain.Event, playerID string) (*domain.EventCompletion, bool, error) {
	log := logger.FromContext(ctx)

	if playerID == "" {
		return nil, false, domain.NewValidationError(domain.ErrInvalidInput, map[string]string{"player_id": "This field is required"})
	}

	completion := &domain.EventCompletion{
		EventID:     evt.ID,
		PlayerID:    playerID,
		CompletedAt: s.clock.Now(),
	}
	created, err := s.repo.UpsertCompletion(ctx, completion)
	if err != nil {
		log.Error(LogMsgCompletionLookupFail, "error", err, "event_id", evt.ID, "player_id", playerID)
		return nil, false, wrapStore(OpComplete, err)
	}
	switch {
	case !created && completion.RewardsClaimed:
		log.Debug(LogMsgCompletionDuplicate, "event_id", evt.ID, "player_id", playerID)
		return completion, false, nil
	case !created:
		log.Info(LogMsgResumingGrants, "event_id", evt.ID, "player_id", playerID)
	default:
		metrics.Completions.Inc()
		log.Info(LogMsgCompletionRecorded, "event_id", evt.ID, "player_id", playerID)
	}

	return completion, created, s.claim(ctx, evt, completion)
}

// claim grants the completion's rewards and marks them claimed. Grant
// references are stable per (event, player, key), so repeating a grant that
// already succeeded is absorbed by the economy's idempotency check.
func (s *service) claim(ctx context.Context, evt *domain.Event, completion *domain.EventCompletion) error {
	log := logger.FromContext(ctx)
	playerID := completion.PlayerID

	grants := evt.Rewards.CompletionGrants()
	if err := s.grant(ctx, evt.ID, playerID, grants); err != nil {
		return err
	}

	if err := s.repo.MarkRewardsClaimed(ctx, evt.ID, playerID); err != nil {
		log.Error(LogMsgMarkClaimedFailed, "error", err, "event_id", evt.ID, "player_id", playerID)
		return wrapStore(OpComplete, err)
	}
	completion.RewardsClaimed = true

	if s.notifier != nil {
		s.notifier.Notify(ctx, domain.NewNotification(domain.NotificationCompleted, domain.EventCompletedPayload{
			EventID:     evt.ID,
			PlayerID:    playerID,
			Title:       evt.Title,
			Rewards:     grants,
			CompletedAt: completion.CompletedAt,
		}))
	}
	return nil
}

// grant applies rewards in key order and stops at the first failure
func (s *service) grant(ctx context.Context, eventID, playerID string, grants map[string]int64) error {
	log := logger.FromContext(ctx)
	if len(grants) == 0 {
		return nil
	}
	if s.economy == nil {
		log.Warn(LogMsgNoEconomyConfigured, "event_id", eventID, "player_id", playerID)
		return nil
	}

	granted := make([]string, 0, len(grants))
	for _, key := range domain.SortedKeys(grants) {
		req := domain.GrantRequest{
			PlayerID:  playerID,
			RewardKey: key,
			Amount:    grants[key],
			Reference: fmt.Sprintf("%s:%s:%s", eventID, playerID, key),
		}
		if err := s.economy.Grant(ctx, req); err != nil {
			metrics.RewardGrants.WithLabelValues(metrics.OutcomeFailure).Inc()
			log.Error(LogMsgRewardGrantFailed,
				"error", err,
				"event_id", eventID,
				"player_id", playerID,
				"reward_key", key,
				"granted", granted)
			return &domain.GrantError{
				EventID:   eventID,
				PlayerID:  playerID,
				RewardKey: key,
				Granted:   granted,
				Err:       err,
			}
		}
		metrics.RewardGrants.WithLabelValues(metrics.OutcomeSuccess).Inc()
		log.Debug(LogMsgRewardGranted, "event_id", eventID, "player_id", playerID, "reward_key", key, "amount", req.Amount)
		granted = append(granted, key)
	}
	return nil
}

func (s *service) GetCompletion(ctx context.Context, eventID, playerID string) (*domain.EventCompletion, error) {
	c, err := s.repo.GetCompletion(ctx, eventID, playerID)
	if err != nil {
		return nil, wrapStore(OpGetCompletion, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: event %s player %s", domain.ErrCompletionNotFound, eventID, playerID)
	}
	return c, nil
}

func wrapStore(op string, err error) error {
	var storeErr *domain.StoreError
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &storeErr), errors.As(err, &validationErr):
		return err
	case errors.Is(err, domain.ErrEventNotFound), errors.Is(err, domain.ErrCompletionNotFound):
		return err
	default:
		return domain.NewStoreError(op, err)
	}
}
