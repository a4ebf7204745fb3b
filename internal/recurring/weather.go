package recurring

import (
	"context"
	"strings"
	"time"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/logger"
	"github.com/osse101/liveops/internal/repository"
	"github.com/osse101/liveops/internal/timewindow"
)

// runWeather creates a fixed-length event when the provider reports a
// non-clear condition. Events are keyed on the UTC block containing now, and
// a tick is skipped while any weather event is still running.
func (s *service) runWeather(ctx context.Context, now time.Time) (Outcome, error) {
	log := logger.FromContext(ctx)
	if s.weather == nil {
		log.Debug(LogMsgWeatherDisabled)
		return OutcomeSkipped, nil
	}

	cond, err := s.weather.CurrentConditionAt(ctx, s.location.Lat, s.location.Lon)
	if err != nil {
		return OutcomeSkipped, err
	}
	condType := strings.ToLower(strings.TrimSpace(cond.Type))
	if condType == "" || condType == domain.WeatherClear {
		log.Debug(LogMsgWeatherClear, "condition", cond.Type)
		return OutcomeSkipped, nil
	}

	active, err := s.repo.QueryEvents(ctx, repository.EventFilter{
		ActiveOnly:       true,
		ExcludeTemplates: true,
		EventType:        domain.EventTypeWeather,
		StartUntil:       &now,
		EndFrom:          &now,
		Limit:            1,
	}, repository.OrderStart)
	if err != nil {
		return OutcomeSkipped, err
	}
	if len(active) > 0 {
		log.Debug(LogMsgWeatherActive, "event_id", active[0].ID)
		return OutcomeSkipped, nil
	}

	cfg := s.catalog.Weather
	block := timewindow.Block(now, cfg.Duration)
	start := now.Truncate(time.Second)
	rewards, ok := cfg.Rewards[condType]
	if !ok {
		rewards = cfg.Rewards[WeatherRewardDefault]
	}

	return s.create(ctx, ClassWeather, domain.EventSpec{
		Title:        titleCase(condType) + " Weather Event",
		Description:  weatherDescription(cond),
		EventType:    domain.EventTypeWeather,
		StartTime:    start,
		EndTime:      start.Add(cfg.Duration),
		Timezone:     "UTC",
		Priority:     cfg.Priority,
		Requirements: copyRequirements(cfg.Requirements),
		Rewards:      domain.FlatRewards(rewards),
		WindowStart:  &block.Start,
		Metadata: withSource(map[string]any{
			MetaWeather: map[string]any{
				"type":               condType,
				"description":        cond.Description,
				"temperature_c":      cond.TemperatureC,
				"gameplay_modifiers": cond.GameplayModifiers,
			},
		}, ClassWeather),
	})
}

func weatherDescription(cond domain.WeatherCondition) string {
	if cond.Description != "" {
		return "Current conditions: " + cond.Description + "."
	}
	return "Current conditions: " + cond.Type + "."
}
