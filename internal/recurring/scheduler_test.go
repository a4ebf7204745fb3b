package recurring

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/liveops/internal/clock"
	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/lifecycle"
	"github.com/osse101/liveops/internal/repository"
)

type MockWeather struct {
	mock.Mock
}

func (m *MockWeather) CurrentConditionAt(ctx context.Context, lat, lon float64) (domain.WeatherCondition, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(domain.WeatherCondition), args.Error(1)
}

// Wednesday afternoon, ISO week 42
var baseTime = time.Date(2026, 10, 14, 12, 30, 0, 0, time.UTC)

type fixture struct {
	repo    *repository.FakeEventRepository
	clock   *clock.Simulated
	weather *MockWeather
	svc     *service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    repository.NewFakeEventRepository(),
		clock:   clock.NewSimulated(baseTime),
		weather: new(MockWeather),
	}
	lc := lifecycle.NewService(f.repo, nil, nil, f.clock)
	f.svc = NewService(f.repo, lc, f.weather, Location{Lat: 51.5, Lon: -0.12}, DefaultCatalog(), f.clock).(*service)
	return f
}

func (f *fixture) only(t *testing.T, typ domain.EventType) domain.Event {
	t.Helper()
	events, err := f.repo.QueryEvents(context.Background(), repository.EventFilter{EventType: typ}, repository.OrderStart)
	require.NoError(t, err)
	require.Len(t, events, 1)
	return events[0]
}

func TestDaily_OnePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.Run(ctx, ClassDaily)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out)

	out, err = f.svc.Run(ctx, ClassDaily)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Equal(t, 1, f.repo.Count(domain.EventTypeDailyChallenge))

	evt := f.only(t, domain.EventTypeDailyChallenge)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), evt.StartTime)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), evt.EndTime)
	assert.Equal(t, SourceScheduler, evt.Metadata[MetaSource])
	assert.False(t, evt.IsRecurring)
	assert.True(t, evt.Contains(time.Date(2026, 10, 14, 23, 59, 59, 500_000_000, time.UTC)), "no gap in the last second of the day")

	f.clock.Advance(24 * time.Hour)
	out, err = f.svc.Run(ctx, ClassDaily)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out)
	assert.Equal(t, 2, f.repo.Count(domain.EventTypeDailyChallenge))
}

func TestDaily_CancelledEventStillCountsForTheDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Run(ctx, ClassDaily)
	require.NoError(t, err)
	evt := f.only(t, domain.EventTypeDailyChallenge)
	_, err = f.repo.DeactivateEvents(ctx, []string{evt.ID})
	require.NoError(t, err)

	out, err := f.svc.Run(ctx, ClassDaily)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
}

func TestDaily_LostRaceIsSkipped(t *testing.T) {
	f := newFixture(t)
	ws := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	// a concurrent instance inserted the row after our existence check would run;
	// simulate by storing one whose start lies outside the checked window
	f.repo.Put(domain.Event{
		ID:          "other",
		EventType:   domain.EventTypeDailyChallenge,
		StartTime:   ws.Add(-time.Hour),
		EndTime:     ws.Add(time.Hour),
		IsActive:    true,
		WindowStart: &ws,
		WindowKey:   domain.NewWindowKey(string(domain.EventTypeDailyChallenge), ws),
	})

	out, err := f.svc.Run(context.Background(), ClassDaily)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Equal(t, 1, f.repo.Count(domain.EventTypeDailyChallenge))
}

func TestWeekly_SpansISOWeek(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(time.Date(2026, 10, 18, 22, 0, 0, 0, time.UTC)) // Sunday

	out, err := f.svc.Run(context.Background(), ClassWeekly)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out)

	evt := f.only(t, domain.EventTypeWeeklyTournament)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), evt.StartTime)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), evt.EndTime)
	assert.Contains(t, evt.Title, "Week 42")
	assert.Equal(t, int64(100), evt.Rewards.CompletionGrants()["coins"])
	assert.Equal(t, int64(5000), evt.Rewards.Ranked["first"]["coins"])
}

func TestSeasonal_TitleFollowsMonthQuarter(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Run(context.Background(), ClassSeasonal)
	require.NoError(t, err)

	evt := f.only(t, domain.EventTypeSeasonal)
	assert.Equal(t, "Winter Festival", evt.Title)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), evt.StartTime)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), evt.EndTime)
}

func TestWeather(t *testing.T) {
	ctx := context.Background()

	t.Run("clear skies create nothing", func(t *testing.T) {
		f := newFixture(t)
		f.weather.On("CurrentConditionAt", mock.Anything, 51.5, -0.12).
			Return(domain.WeatherCondition{Type: "Clear"}, nil)

		out, err := f.svc.Run(ctx, ClassWeather)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, out)
		assert.Equal(t, 0, f.repo.Count(domain.EventTypeWeather))
	})

	t.Run("rain creates a four hour event once", func(t *testing.T) {
		f := newFixture(t)
		f.weather.On("CurrentConditionAt", mock.Anything, mock.Anything, mock.Anything).
			Return(domain.WeatherCondition{Type: "rain", Description: "light rain", TemperatureC: 11}, nil)

		out, err := f.svc.Run(ctx, ClassWeather)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, out)

		evt := f.only(t, domain.EventTypeWeather)
		assert.Equal(t, baseTime, evt.StartTime)
		assert.Equal(t, baseTime.Add(4*time.Hour), evt.EndTime)
		assert.Equal(t, "Rain Weather Event", evt.Title)
		assert.Equal(t, int64(150), evt.Rewards.Amounts["coins"])
		require.NotNil(t, evt.WindowStart)
		assert.Equal(t, time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC), *evt.WindowStart)

		f.clock.Advance(time.Hour)
		out, err = f.svc.Run(ctx, ClassWeather)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, out)
		assert.Equal(t, 1, f.repo.Count(domain.EventTypeWeather))
	})

	t.Run("unknown condition uses default rewards", func(t *testing.T) {
		f := newFixture(t)
		f.weather.On("CurrentConditionAt", mock.Anything, mock.Anything, mock.Anything).
			Return(domain.WeatherCondition{Type: "sandstorm"}, nil)

		_, err := f.svc.Run(ctx, ClassWeather)
		require.NoError(t, err)
		assert.Equal(t, int64(100), f.only(t, domain.EventTypeWeather).Rewards.Amounts["coins"])
	})

	t.Run("provider errors are returned", func(t *testing.T) {
		f := newFixture(t)
		f.weather.On("CurrentConditionAt", mock.Anything, mock.Anything, mock.Anything).
			Return(domain.WeatherCondition{}, errors.New("upstream down"))

		_, err := f.svc.Run(ctx, ClassWeather)
		assert.Error(t, err)
	})

	t.Run("no provider disables the class", func(t *testing.T) {
		f := newFixture(t)
		f.svc.weather = nil

		out, err := f.svc.Run(ctx, ClassWeather)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, out)
	})
}

func TestSpecial_AlwaysCreates(t *testing.T) {
	f := newFixture(t)
	f.svc.intn = func(n int) int { return n - 1 }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		out, err := f.svc.Run(ctx, ClassSpecial)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, out)
	}
	assert.Equal(t, 2, f.repo.Count(domain.EventTypeSpecialOffer))

	events, err := f.repo.QueryEvents(ctx, repository.EventFilter{EventType: domain.EventTypeSpecialOffer}, repository.OrderStart)
	require.NoError(t, err)
	for _, e := range events {
		assert.Equal(t, "Booster Bonanza", e.Title)
		assert.Equal(t, 3*time.Hour, e.EndTime.Sub(e.StartTime))
		assert.Nil(t, e.WindowStart)
	}
}

func TestSpecial_DurationWithinBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := f.svc.Run(ctx, ClassSpecial)
		require.NoError(t, err)
	}
	events, err := f.repo.QueryEvents(ctx, repository.EventFilter{EventType: domain.EventTypeSpecialOffer}, repository.OrderStart)
	require.NoError(t, err)
	require.Len(t, events, 20)
	for _, e := range events {
		d := e.EndTime.Sub(e.StartTime)
		assert.GreaterOrEqual(t, d, time.Hour)
		assert.LessOrEqual(t, d, 3*time.Hour)
	}
}

func TestPattern(t *testing.T) {
	ctx := context.Background()
	const happyHour domain.EventType = "happy_hour"

	putTemplate := func(f *fixture, tz, rule string) {
		f.repo.Put(domain.Event{
			ID:                "tpl",
			Title:             "Happy Hour",
			EventType:         happyHour,
			StartTime:         time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			EndTime:           time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			Timezone:          tz,
			Priority:          20,
			IsActive:          true,
			IsRecurring:       true,
			RecurrencePattern: rule,
			Requirements:      map[string]float64{"matches_played": 1},
			Rewards:           domain.FlatRewards(map[string]int64{"coins": 50}),
		})
	}

	t.Run("current occurrence is created once", func(t *testing.T) {
		f := newFixture(t)
		putTemplate(f, "UTC", "FREQ=DAILY;BYHOUR=12;BYMINUTE=0;BYSECOND=0")

		out, err := f.svc.Run(ctx, ClassPattern)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, out)

		out, err = f.svc.Run(ctx, ClassPattern)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, out)
		assert.Equal(t, 2, f.repo.Count(happyHour))

		occ, err := f.repo.QueryEvents(ctx, repository.EventFilter{EventType: happyHour, StartFrom: &baseTime}, repository.OrderStart)
		require.NoError(t, err)
		assert.Empty(t, occ)

		start := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
		occ, err = f.repo.QueryEvents(ctx, repository.EventFilter{EventType: happyHour, StartFrom: &start}, repository.OrderStart)
		require.NoError(t, err)
		require.Len(t, occ, 1)
		assert.Equal(t, start.Add(time.Hour), occ[0].EndTime)
		assert.Equal(t, "tpl", occ[0].Metadata[MetaTemplateID])
		assert.False(t, occ[0].IsRecurring)
	})

	t.Run("templates firing together each get an occurrence", func(t *testing.T) {
		f := newFixture(t)
		for _, id := range []string{"tpl-a", "tpl-b"} {
			f.repo.Put(domain.Event{
				ID:                id,
				Title:             "Double XP " + id,
				EventType:         domain.EventTypeLive,
				StartTime:         time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
				EndTime:           time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
				Timezone:          "UTC",
				IsActive:          true,
				IsRecurring:       true,
				RecurrencePattern: "FREQ=DAILY;BYHOUR=12",
			})
		}

		out, err := f.svc.Run(ctx, ClassPattern)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, out)
		assert.Equal(t, 4, f.repo.Count(domain.EventTypeLive))

		start := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
		occ, err := f.repo.QueryEvents(ctx, repository.EventFilter{EventType: domain.EventTypeLive, StartFrom: &start}, repository.OrderStart)
		require.NoError(t, err)
		require.Len(t, occ, 2)
		keys := []string{occ[0].WindowKey, occ[1].WindowKey}
		assert.ElementsMatch(t, []string{"tpl-a@2026-10-14T12:00:00Z", "tpl-b@2026-10-14T12:00:00Z"}, keys)

		out, err = f.svc.Run(ctx, ClassPattern)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, out)
		assert.Equal(t, 4, f.repo.Count(domain.EventTypeLive))
	})

	t.Run("rule follows the template zone", func(t *testing.T) {
		f := newFixture(t)
		// 21:00 in Tokyo is 12:00 UTC
		putTemplate(f, "Asia/Tokyo", "RRULE:FREQ=DAILY;BYHOUR=21;BYMINUTE=0;BYSECOND=0")

		out, err := f.svc.Run(ctx, ClassPattern)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, out)
	})

	t.Run("outside an occurrence nothing is created", func(t *testing.T) {
		f := newFixture(t)
		f.clock.Set(time.Date(2026, 10, 14, 13, 30, 0, 0, time.UTC))
		putTemplate(f, "UTC", "FREQ=DAILY;BYHOUR=12;BYMINUTE=0;BYSECOND=0")

		out, err := f.svc.Run(ctx, ClassPattern)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, out)
		assert.Equal(t, 1, f.repo.Count(happyHour))
	})

	t.Run("invalid rule is skipped", func(t *testing.T) {
		f := newFixture(t)
		putTemplate(f, "UTC", "FREQ=SOMETIMES")

		out, err := f.svc.Run(ctx, ClassPattern)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, out)
	})
}

func TestRun_UnknownClass(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Run(context.Background(), Class("hourly"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRun_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.SetError(domain.NewStoreError("query", errors.New("connection refused")))

	_, err := f.svc.Run(context.Background(), ClassDaily)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	// Tick swallows the error
	assert.NotPanics(t, func() { f.svc.Tick(context.Background(), ClassDaily) })
}

func TestTick_AllClasses(t *testing.T) {
	f := newFixture(t)
	f.weather.On("CurrentConditionAt", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.WeatherCondition{Type: "snow"}, nil)

	for _, c := range Classes {
		f.svc.Tick(context.Background(), c)
	}

	assert.Equal(t, 1, f.repo.Count(domain.EventTypeDailyChallenge))
	assert.Equal(t, 1, f.repo.Count(domain.EventTypeWeeklyTournament))
	assert.Equal(t, 1, f.repo.Count(domain.EventTypeSeasonal))
	assert.Equal(t, 1, f.repo.Count(domain.EventTypeWeather))
	assert.Equal(t, 1, f.repo.Count(domain.EventTypeSpecialOffer))
	assert.True(t, strings.HasPrefix(f.svc.Catalog().Weekly.Title, "Weekly"))
}
