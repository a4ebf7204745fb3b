package bootstrap

import (
	"context"
	"fmt"

	"github.com/osse101/liveops/internal/config"
	"github.com/osse101/liveops/internal/lifecycle"
	"github.com/osse101/liveops/internal/logger"
	"github.com/osse101/liveops/internal/recurring"
	"github.com/osse101/liveops/internal/worker"
)

// Scheduler is the part of *scheduler.Scheduler the background jobs need
type Scheduler interface {
	Schedule(ctx context.Context, spec string, job worker.Job) error
}

// SweepJob deactivates expired events
func SweepJob(lc lifecycle.Service) worker.Job {
	return worker.JobFunc{
		JobName: JobNameSweep,
		Fn: func(ctx context.Context) error {
			n, err := lc.SweepExpiredEvents(ctx)
			if err != nil {
				logger.FromContext(ctx).Error(LogMsgSweepFailed, "error", err)
				return err
			}
			logger.FromContext(ctx).Debug(LogMsgSweepFinished, "deactivated", n)
			return nil
		},
	}
}

// RecurringJob evaluates one recurring class. Tick logs its own failures.
func RecurringJob(rec recurring.Service, class recurring.Class) worker.Job {
	return worker.JobFunc{
		JobName: JobNameRecurringPrefix + string(class),
		Fn: func(ctx context.Context) error {
			rec.Tick(ctx, class)
			return nil
		},
	}
}

// ClassSchedules maps each recurring class to its configured schedule
func ClassSchedules(cfg *config.Config) map[recurring.Class]string {
	return map[recurring.Class]string{
		recurring.ClassDaily:    cfg.DailySchedule,
		recurring.ClassWeekly:   cfg.WeeklySchedule,
		recurring.ClassSeasonal: cfg.SeasonalSchedule,
		recurring.ClassWeather:  cfg.WeatherSchedule,
		recurring.ClassSpecial:  cfg.SpecialSchedule,
		recurring.ClassPattern:  cfg.PatternSchedule,
	}
}

// StartBackgroundJobs registers the expiry sweep and every recurring class.
// An empty schedule disables that job.
func StartBackgroundJobs(ctx context.Context, cfg *config.Config, sched Scheduler, lc lifecycle.Service, rec recurring.Service) error {
	if cfg.SweepSchedule != "" {
		if err := sched.Schedule(ctx, cfg.SweepSchedule, SweepJob(lc)); err != nil {
			return fmt.Errorf("%s %s: %w", ErrMsgFailedSchedule, JobNameSweep, err)
		}
	}

	schedules := ClassSchedules(cfg)
	for _, class := range recurring.Classes {
		spec := schedules[class]
		if spec == "" {
			continue
		}
		if err := sched.Schedule(ctx, spec, RecurringJob(rec, class)); err != nil {
			return fmt.Errorf("%s %s: %w", ErrMsgFailedSchedule, class, err)
		}
	}

	logger.FromContext(ctx).Info(LogMsgBackgroundStarted)
	return nil
}
