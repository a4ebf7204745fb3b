package recurring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/logger"
	"github.com/osse101/liveops/internal/repository"
	"github.com/osse101/liveops/internal/timewindow"
)

// runPatterns materializes the current occurrence of every active recurring
// template. An occurrence is current when now lies in
// [occurrence, occurrence+OccurrenceDuration).
func (s *service) runPatterns(ctx context.Context, now time.Time) (Outcome, error) {
	log := logger.FromContext(ctx)

	templates, err := s.repo.QueryEvents(ctx, repository.EventFilter{
		ActiveOnly:    true,
		RecurringOnly: true,
		StartUntil:    &now,
		EndFrom:       &now,
	}, repository.OrderStart)
	if err != nil {
		return OutcomeSkipped, err
	}

	outcome := OutcomeSkipped
	for _, tpl := range templates {
		if tpl.RecurrencePattern == "" {
			continue
		}
		occ, err := currentOccurrence(tpl, now, s.catalog.Pattern.OccurrenceDuration)
		if err != nil {
			log.Warn(LogMsgPatternInvalid, "event_id", tpl.ID, "pattern", tpl.RecurrencePattern, "error", err)
			continue
		}
		if occ.IsZero() {
			log.Debug(LogMsgPatternNoCurrent, "event_id", tpl.ID)
			continue
		}

		res, err := s.create(ctx, ClassPattern, occurrenceSpec(tpl, occ, s.catalog.Pattern.OccurrenceDuration))
		if err != nil {
			return outcome, err
		}
		if res == OutcomeCreated {
			log.Info(LogMsgPatternOccurrence, "event_id", tpl.ID, "occurrence", occ)
			outcome = OutcomeCreated
		}
	}
	return outcome, nil
}

// currentOccurrence returns the UTC start of the occurrence covering now, or
// the zero time. The rule is evaluated in the template's zone so that
// BYHOUR and BYDAY follow its wall clock across DST changes.
func currentOccurrence(tpl domain.Event, now time.Time, d time.Duration) (time.Time, error) {
	opt, err := rrule.StrToROption(strings.TrimPrefix(tpl.RecurrencePattern, "RRULE:"))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", ErrMsgBadPattern, err)
	}
	loc, err := timewindow.LoadLocation(tpl.Timezone)
	if err != nil {
		loc = time.UTC
	}
	opt.Dtstart = tpl.StartTime.In(loc)

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", ErrMsgBadPattern, err)
	}

	occ := rule.Before(now.In(loc), true)
	if occ.IsZero() {
		return time.Time{}, nil
	}
	occ = occ.UTC()
	if !now.Before(occ.Add(d)) {
		return time.Time{}, nil
	}
	return occ, nil
}

func occurrenceSpec(tpl domain.Event, occ time.Time, d time.Duration) domain.EventSpec {
	end := occ.Add(d)
	if end.After(tpl.EndTime) {
		end = tpl.EndTime
	}
	ws := occ

	return domain.EventSpec{
		Title:        tpl.Title,
		Description:  tpl.Description,
		EventType:    tpl.EventType,
		StartTime:    occ,
		EndTime:      end,
		Timezone:     "UTC",
		Priority:     tpl.Priority,
		Requirements: copyRequirements(tpl.Requirements),
		Rewards:      tpl.Rewards,
		WindowStart:  &ws,
		WindowKey:    domain.NewWindowKey(tpl.ID, occ),
		Metadata: withSource(map[string]any{
			MetaTemplateID:      tpl.ID,
			MetaOccurrenceStart: occ.Format(time.RFC3339),
			MetaOccurrenceMins:  int64(d / time.Minute),
		}, ClassPattern),
	}
}
