package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/liveops/internal/domain"
)

func TestEventFilter_Matches(t *testing.T) {
	t0 := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	evt := domain.Event{
		EventType: domain.EventTypeDailyChallenge,
		StartTime: t0,
		EndTime:   t0.Add(time.Hour),
		IsActive:  true,
	}
	at := func(d time.Duration) *time.Time { v := t0.Add(d); return &v }

	tests := []struct {
		name   string
		filter EventFilter
		want   bool
	}{
		{"empty filter", EventFilter{}, true},
		{"type match", EventFilter{EventType: domain.EventTypeDailyChallenge}, true},
		{"type mismatch", EventFilter{EventType: domain.EventTypeWeather}, false},
		{"recurring only", EventFilter{RecurringOnly: true}, false},
		{"plain event survives template exclusion", EventFilter{ExcludeTemplates: true}, true},
		{"start from inclusive", EventFilter{StartFrom: at(0)}, true},
		{"start before exclusive", EventFilter{StartBefore: at(0)}, false},
		{"start after exclusive", EventFilter{StartAfter: at(0)}, false},
		{"start until inclusive", EventFilter{StartUntil: at(0)}, true},
		{"end from inclusive", EventFilter{EndFrom: at(time.Hour)}, true},
		{"end from past end", EventFilter{EndFrom: at(time.Hour + time.Second)}, false},
		{"end before", EventFilter{EndBefore: at(2 * time.Hour)}, true},
		{"active window", EventFilter{ActiveOnly: true, StartUntil: at(30 * time.Minute), EndFrom: at(30 * time.Minute)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(evt))
		})
	}

	inactive := evt
	inactive.IsActive = false
	assert.False(t, EventFilter{ActiveOnly: true}.Matches(inactive))

	tpl := evt
	tpl.IsRecurring = true
	tpl.RecurrencePattern = "FREQ=DAILY"
	assert.False(t, EventFilter{ExcludeTemplates: true}.Matches(tpl))
	assert.True(t, EventFilter{RecurringOnly: true}.Matches(tpl))
}

func TestFakeEventRepository_WindowKeyUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeEventRepository()
	ws := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	mk := func(id, key string) *domain.Event {
		return &domain.Event{ID: id, EventType: domain.EventTypeLive, StartTime: ws, EndTime: ws.Add(time.Hour), WindowStart: &ws, WindowKey: key}
	}

	require.NoError(t, repo.InsertEvent(ctx, mk("a", domain.NewWindowKey("tpl-a", ws))))
	require.NoError(t, repo.InsertEvent(ctx, mk("b", domain.NewWindowKey("tpl-b", ws))))
	assert.ErrorIs(t, repo.InsertEvent(ctx, mk("c", domain.NewWindowKey("tpl-a", ws))), domain.ErrEventAlreadyExists)
	require.NoError(t, repo.InsertEvent(ctx, mk("d", "")))
	require.NoError(t, repo.InsertEvent(ctx, mk("e", "")))
	assert.Equal(t, 4, repo.Count(domain.EventTypeLive))
}
