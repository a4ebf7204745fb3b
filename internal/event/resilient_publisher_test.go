package event

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/liveops/internal/domain"
)

// flakyBus fails the first failures publishes, or every publish when failures < 0
type flakyBus struct {
	mu        sync.Mutex
	failures  int
	published []Event
	attempts  int
}

func (b *flakyBus) Publish(ctx context.Context, evt Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts++
	if b.failures < 0 || b.attempts <= b.failures {
		return errors.New("sse hub unavailable")
	}
	b.published = append(b.published, evt)
	return nil
}

func (b *flakyBus) Subscribe(Type, Handler) {}

func (b *flakyBus) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

func (b *flakyBus) Published() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.published...)
}

func readDeadLetters(t *testing.T, path string) []DeadLetterEntry {
	t.Helper()
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	defer f.Close()

	var out []DeadLetterEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry DeadLetterEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		out = append(out, entry)
	}
	require.NoError(t, sc.Err())
	return out
}

// deadLetterLines counts complete JSONL records without decoding them
func deadLetterLines(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	return bytes.Count(data, []byte("\n"))
}

func halloween() domain.Event {
	start := time.Date(2026, 10, 31, 18, 0, 0, 0, time.UTC)
	return domain.Event{
		ID:        "evt-halloween",
		Title:     "Halloween Hunt",
		EventType: domain.EventTypeLive,
		StartTime: start,
		EndTime:   start.Add(5 * time.Hour),
		Priority:  5,
		Rewards:   domain.FlatRewards(map[string]int64{"coins": 250, "gems": 3}),
	}
}

func TestResilientPublisher_DeliveredFirstTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dead_letter.jsonl")
	bus := &flakyBus{}
	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, path)
	require.NoError(t, err)

	require.NoError(t, rp.Publish(context.Background(), NewEventCreated(halloween())))
	require.NoError(t, rp.Shutdown(context.Background()))

	assert.Equal(t, 1, bus.Attempts())
	require.Len(t, bus.Published(), 1)
	assert.Equal(t, EventCreated, bus.Published()[0].Type)
	assert.Empty(t, readDeadLetters(t, path))
}

func TestResilientPublisher_RecoversAfterTransientFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dead_letter.jsonl")
	bus := &flakyBus{failures: 2}
	rp, err := NewResilientPublisher(bus, 5, 5*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), NewProgressUpdated(domain.EventProgress{
		EventID: "evt-halloween", PlayerID: "p1", ProgressData: map[string]float64{"pumpkins": 4},
	}, false))

	require.Eventually(t, func() bool { return len(bus.Published()) == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	assert.Equal(t, 3, bus.Attempts())
	assert.Equal(t, EventProgressUpdated, bus.Published()[0].Type)
	assert.Empty(t, readDeadLetters(t, path))
}

func TestResilientPublisher_ExhaustedEventIsDeadLettered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dead_letter.jsonl")
	bus := &flakyBus{failures: -1}
	rp, err := NewResilientPublisher(bus, 2, 5*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), NewEventCreated(halloween()))

	require.Eventually(t, func() bool { return deadLetterLines(path) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	entries := readDeadLetters(t, path)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, DeadLetterSchemaVersion, entry.SchemaVersion)
	assert.Equal(t, 3, entry.Attempts, "initial publish plus two retries")
	assert.Equal(t, "sse hub unavailable", entry.LastError)
	assert.Equal(t, EventCreated, entry.Event.Type)

	payload, err := DecodePayload[domain.EventCreatedPayload](entry.Event.Payload)
	require.NoError(t, err)
	assert.Equal(t, "evt-halloween", payload.EventID)
	assert.Equal(t, "Halloween Hunt", payload.Title)
	assert.Equal(t, domain.EventTypeLive, payload.EventType)
	assert.True(t, payload.StartTime.Equal(halloween().StartTime))
}

func TestResilientPublisher_ShutdownMakesOneLastAttempt(t *testing.T) {
	t.Run("still failing goes to the dead letter", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dead_letter.jsonl")
		bus := &flakyBus{failures: -1}
		rp, err := NewResilientPublisher(bus, 5, time.Hour, path)
		require.NoError(t, err)

		evt := halloween()
		rp.PublishWithRetry(context.Background(), NewEventCompleted(evt, domain.EventCompletion{
			EventID: evt.ID, PlayerID: "p1", CompletedAt: evt.StartTime.Add(time.Hour),
		}))
		require.NoError(t, rp.Shutdown(context.Background()))

		assert.Equal(t, 2, bus.Attempts())
		entries := readDeadLetters(t, path)
		require.Len(t, entries, 1)
		assert.Equal(t, 2, entries[0].Attempts)

		payload, err := DecodePayload[domain.EventCompletedPayload](entries[0].Event.Payload)
		require.NoError(t, err)
		assert.Equal(t, "p1", payload.PlayerID)
		assert.Equal(t, map[string]int64{"coins": 250, "gems": 3}, payload.Rewards)
	})

	t.Run("recovered bus delivers the queued event", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dead_letter.jsonl")
		bus := &flakyBus{failures: 1}
		rp, err := NewResilientPublisher(bus, 5, time.Hour, path)
		require.NoError(t, err)

		rp.PublishWithRetry(context.Background(), NewEventCreated(halloween()))
		require.NoError(t, rp.Shutdown(context.Background()))

		assert.Len(t, bus.Published(), 1)
		assert.Empty(t, readDeadLetters(t, path))
	})
}

func TestResilientPublisher_FullRetryQueueSpillsToDeadLetter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dead_letter.jsonl")
	dl, err := NewDeadLetterWriter(path)
	require.NoError(t, err)

	// No retry worker: the single queue slot stays occupied.
	rp := &ResilientPublisher{
		bus:        &flakyBus{failures: -1},
		retryQueue: make(chan retryEntry, 1),
		maxRetries: 3,
		retryDelay: time.Hour,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}

	first := halloween()
	second := halloween()
	second.ID = "evt-overflow"
	rp.PublishWithRetry(context.Background(), NewEventCreated(first))
	rp.PublishWithRetry(context.Background(), NewEventCreated(second))
	require.NoError(t, dl.Close())

	assert.Len(t, rp.retryQueue, 1)
	entries := readDeadLetters(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Attempts)
	payload, err := DecodePayload[domain.EventCreatedPayload](entries[0].Event.Payload)
	require.NoError(t, err)
	assert.Equal(t, "evt-overflow", payload.EventID)
}

func TestResilientPublisher_SubscribeReachesWrappedBus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dead_letter.jsonl")
	rp, err := NewResilientPublisher(NewMemoryBus(), 3, 10*time.Millisecond, path)
	require.NoError(t, err)
	defer func() { _ = rp.Shutdown(context.Background()) }()

	var (
		mu      sync.Mutex
		players []string
	)
	rp.Subscribe(EventCompleted, func(ctx context.Context, evt Event) error {
		p, err := DecodePayload[domain.EventCompletedPayload](evt.Payload)
		if err != nil {
			return err
		}
		mu.Lock()
		players = append(players, p.PlayerID)
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			rp.PublishWithRetry(context.Background(), NewEventCompleted(halloween(), domain.EventCompletion{PlayerID: id}))
		}(id)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"p1", "p2", "p3", "p4"}, players)
}
