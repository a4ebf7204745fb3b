// Package recurring creates the auto-generated event classes: daily, weekly,
// seasonal, weather-triggered, special offers and RRULE-driven occurrences.
//
// Existence checks are advisory. The store's (event_type, window_start)
// uniqueness is what guarantees one event per period when ticks overlap.
package recurring

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/osse101/liveops/internal/clock"
	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/lifecycle"
	"github.com/osse101/liveops/internal/logger"
	"github.com/osse101/liveops/internal/metrics"
	"github.com/osse101/liveops/internal/repository"
	"github.com/osse101/liveops/internal/timewindow"
)

// Location is where weather is read
type Location struct {
	Lat float64
	Lon float64
}

// Service evaluates recurring classes
type Service interface {
	// Run evaluates one class and reports whether it created an event.
	// Errors are returned to the caller; background callers use Tick.
	Run(ctx context.Context, class Class) (Outcome, error)
	// Tick runs a class, logging and counting the result. It never fails.
	Tick(ctx context.Context, class Class)
	Catalog() Catalog
}

type service struct {
	repo      repository.EventRepository
	lifecycle lifecycle.Service
	weather   domain.WeatherProvider
	location  Location
	catalog   Catalog
	clock     clock.Clock
	intn      func(n int) int
}

// NewService creates the recurring scheduler. weather may be nil, which
// disables the weather class.
func NewService(
	repo repository.EventRepository,
	lc lifecycle.Service,
	weather domain.WeatherProvider,
	location Location,
	catalog Catalog,
	clk clock.Clock,
) Service {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &service{
		repo:      repo,
		lifecycle: lc,
		weather:   weather,
		location:  location,
		catalog:   catalog.withDefaults(),
		clock:     clk,
		intn:      rand.IntN,
	}
}

func (s *service) Catalog() Catalog {
	return s.catalog
}

func (s *service) Tick(ctx context.Context, class Class) {
	log := logger.FromContext(ctx).With("class", class)
	start := time.Now()

	outcome, err := s.Run(ctx, class)
	metrics.SchedulerDuration.WithLabelValues(string(class)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SchedulerRuns.WithLabelValues(string(class), metrics.OutcomeFailure).Inc()
		log.Error(LogMsgTickFailed, "error", err)
		return
	}
	if outcome == OutcomeCreated {
		metrics.SchedulerRuns.WithLabelValues(string(class), metrics.OutcomeSuccess).Inc()
		return
	}
	metrics.SchedulerRuns.WithLabelValues(string(class), metrics.OutcomeSkipped).Inc()
}

func (s *service) Run(ctx context.Context, class Class) (Outcome, error) {
	now := s.clock.Now()
	logger.FromContext(ctx).Debug(LogMsgTickStarted, "class", class, "now", now)

	switch class {
	case ClassDaily:
		return s.runDaily(ctx, now)
	case ClassWeekly:
		return s.runWeekly(ctx, now)
	case ClassSeasonal:
		return s.runSeasonal(ctx, now)
	case ClassWeather:
		return s.runWeather(ctx, now)
	case ClassSpecial:
		return s.runSpecial(ctx, now)
	case ClassPattern:
		return s.runPatterns(ctx, now)
	default:
		return OutcomeSkipped, domain.NewValidationError(domain.ErrInvalidInput, map[string]string{"class": ErrMsgUnknownClass})
	}
}

func (s *service) runDaily(ctx context.Context, now time.Time) (Outcome, error) {
	w := timewindow.Day(now)
	tpl := s.catalog.Daily.Templates[(now.YearDay()-1)%len(s.catalog.Daily.Templates)]

	return s.createOnce(ctx, ClassDaily, w, domain.EventSpec{
		Title:        tpl.Title,
		Description:  tpl.Description,
		EventType:    domain.EventTypeDailyChallenge,
		Priority:     s.catalog.Daily.Priority,
		Requirements: copyRequirements(tpl.Requirements),
		Rewards:      domain.FlatRewards(tpl.Rewards),
	})
}

func (s *service) runWeekly(ctx context.Context, now time.Time) (Outcome, error) {
	w := timewindow.ISOWeek(now)
	_, week := w.Start.ISOWeek()
	cfg := s.catalog.Weekly

	return s.createOnce(ctx, ClassWeekly, w, domain.EventSpec{
		Title:        fmt.Sprintf("%s (Week %d)", cfg.Title, week),
		Description:  cfg.Description,
		EventType:    domain.EventTypeWeeklyTournament,
		Priority:     cfg.Priority,
		Requirements: copyRequirements(cfg.Requirements),
		Rewards:      domain.RewardTable{Ranked: cfg.Rewards},
	})
}

func (s *service) runSeasonal(ctx context.Context, now time.Time) (Outcome, error) {
	w := timewindow.Month(now)
	cfg := s.catalog.Seasonal
	season := titleCase(timewindow.Season(w.Start.Month()))

	return s.createOnce(ctx, ClassSeasonal, w, domain.EventSpec{
		Title:        season + " " + cfg.TitleSuffix,
		Description:  cfg.Description,
		EventType:    domain.EventTypeSeasonal,
		Priority:     cfg.Priority,
		Requirements: copyRequirements(cfg.Requirements),
		Rewards:      domain.FlatRewards(cfg.Rewards),
		Metadata:     map[string]any{"season": timewindow.Season(w.Start.Month())},
	})
}

// createOnce checks the window for an event of spec's type and creates one
// spanning the window when none exists.
func (s *service) createOnce(ctx context.Context, class Class, w timewindow.Window, spec domain.EventSpec) (Outcome, error) {
	log := logger.FromContext(ctx)

	exists, err := s.exists(ctx, spec.EventType, w)
	if err != nil {
		return OutcomeSkipped, err
	}
	if exists {
		log.Debug(LogMsgEventExists, "class", class, "window_start", w.Start)
		return OutcomeSkipped, nil
	}

	ws := w.Start
	spec.StartTime = w.Start
	spec.EndTime = w.End
	spec.Timezone = "UTC"
	spec.WindowStart = &ws
	spec.Metadata = withSource(spec.Metadata, class)
	return s.create(ctx, class, spec)
}

func (s *service) exists(ctx context.Context, t domain.EventType, w timewindow.Window) (bool, error) {
	start, end := w.Start, w.End
	found, err := s.repo.QueryEvents(ctx, repository.EventFilter{
		EventType:        t,
		ExcludeTemplates: true,
		StartFrom:        &start,
		StartBefore:      &end,
		Limit:            1,
	}, repository.OrderStart)
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

// create treats a uniqueness conflict as a lost race, not a failure
func (s *service) create(ctx context.Context, class Class, spec domain.EventSpec) (Outcome, error) {
	log := logger.FromContext(ctx)

	evt, err := s.lifecycle.CreateEvent(ctx, spec)
	if err != nil {
		if errors.Is(err, domain.ErrEventAlreadyExists) {
			log.Debug(LogMsgEventExists, "class", class, "window_start", spec.WindowStart)
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, err
	}
	log.Info(LogMsgEventCreated, "class", class, "event_id", evt.ID, "title", evt.Title)
	return OutcomeCreated, nil
}

func withSource(md map[string]any, class Class) map[string]any {
	out := make(map[string]any, len(md)+2)
	for k, v := range md {
		out[k] = v
	}
	out[MetaSource] = SourceScheduler
	out[MetaClass] = string(class)
	return out
}

// titleCase builds a Caser per call; Casers are not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func copyRequirements(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
