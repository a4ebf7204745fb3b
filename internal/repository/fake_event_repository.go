package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/osse101/liveops/internal/domain"
)

// FakeEventRepository is a stateful in-memory EventRepository for tests.
// It enforces the same window_key uniqueness and interval
// check as the SQL stores. Set Err to make every call fail with it.
type FakeEventRepository struct {
	mu          sync.Mutex
	events      map[string]domain.Event
	progress    map[string]domain.EventProgress
	completions map[string]domain.EventCompletion

	Err          error
	InsertCalls  int
	QueryCalls   int
	CompleteHook func(c *domain.EventCompletion)
}

// NewFakeEventRepository creates an empty fake store
func NewFakeEventRepository() *FakeEventRepository {
	return &FakeEventRepository{
		events:      make(map[string]domain.Event),
		progress:    make(map[string]domain.EventProgress),
		completions: make(map[string]domain.EventCompletion),
	}
}

func pairKey(eventID, playerID string) string {
	return eventID + "\x00" + playerID
}

func (f *FakeEventRepository) InsertEvent(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InsertCalls++
	if f.Err != nil {
		return f.Err
	}
	if !e.StartTime.Before(e.EndTime) {
		return domain.NewValidationError(domain.ErrInvertedInterval, map[string]string{"end_time": domain.ErrMsgInvertedInterval})
	}
	if e.WindowKey != "" {
		for _, existing := range f.events {
			if existing.WindowKey == e.WindowKey {
				return fmt.Errorf("%w: %s", domain.ErrEventAlreadyExists, e.WindowKey)
			}
		}
	}
	f.events[e.ID] = *e
	return nil
}

func (f *FakeEventRepository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	e, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, id)
	}
	return &e, nil
}

func (f *FakeEventRepository) QueryEvents(ctx context.Context, filter EventFilter, order EventOrder) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.QueryCalls++
	if f.Err != nil {
		return nil, f.Err
	}

	out := make([]domain.Event, 0)
	for _, e := range f.events {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if order == OrderPriority && a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.ID < b.ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *FakeEventRepository) DeactivateEvents(ctx context.Context, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	var n int64
	for _, id := range ids {
		e, ok := f.events[id]
		if !ok || !e.IsActive {
			continue
		}
		e.IsActive = false
		e.UpdatedAt = time.Now().UTC()
		f.events[id] = e
		n++
	}
	return n, nil
}

func (f *FakeEventRepository) GetProgress(ctx context.Context, eventID, playerID string) (*domain.EventProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	p, ok := f.progress[pairKey(eventID, playerID)]
	if !ok {
		return nil, nil
	}
	p.ProgressData = copyProgress(p.ProgressData)
	return &p, nil
}

func (f *FakeEventRepository) UpsertProgress(ctx context.Context, p *domain.EventProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	stored := *p
	stored.ProgressData = copyProgress(p.ProgressData)
	f.progress[pairKey(p.EventID, p.PlayerID)] = stored
	return nil
}

func (f *FakeEventRepository) GetCompletion(ctx context.Context, eventID, playerID string) (*domain.EventCompletion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	c, ok := f.completions[pairKey(eventID, playerID)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *FakeEventRepository) UpsertCompletion(ctx context.Context, c *domain.EventCompletion) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	key := pairKey(c.EventID, c.PlayerID)
	if existing, ok := f.completions[key]; ok {
		c.CompletedAt = existing.CompletedAt
		c.RewardsClaimed = existing.RewardsClaimed
		return false, nil
	}
	f.completions[key] = *c
	if f.CompleteHook != nil {
		f.CompleteHook(c)
	}
	return true, nil
}

func (f *FakeEventRepository) MarkRewardsClaimed(ctx context.Context, eventID, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	key := pairKey(eventID, playerID)
	c, ok := f.completions[key]
	if !ok {
		return fmt.Errorf("%w: event %s player %s", domain.ErrCompletionNotFound, eventID, playerID)
	}
	c.RewardsClaimed = true
	f.completions[key] = c
	return nil
}

func (f *FakeEventRepository) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Err
}

func (f *FakeEventRepository) Close() error { return nil }

// Put stores e as-is, bypassing uniqueness checks
func (f *FakeEventRepository) Put(e domain.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[e.ID] = e
}

// SetError replaces the injected failure
func (f *FakeEventRepository) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

// Count returns the number of stored events of type t (all types when empty)
func (f *FakeEventRepository) Count(t domain.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if t == "" || e.EventType == t {
			n++
		}
	}
	return n
}

func copyProgress(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var _ EventRepository = (*FakeEventRepository)(nil)
