package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/homecare-visit-scheduling/internal/holiday"
	redisclient "github.com/hackgods/homecare-visit-scheduling/internal/redis"
)

// LockName is the Redis lock shared by every holiday worker replica.
const LockName = "holiday-sync"

type HolidaySyncer interface {
	SyncNationalHolidays(ctx context.Context, year int) (holiday.SyncResult, error)
	GenerateRecurringHolidays(ctx context.Context, year int) (int, error)
}

// HolidaySync refreshes the calendar for the current and the next year.
type HolidaySync struct {
	svc     HolidaySyncer
	locker  redisclient.Locker
	timeout time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

func NewHolidaySync(svc HolidaySyncer, locker redisclient.Locker, timeout time.Duration, logger zerolog.Logger) *HolidaySync {
	return &HolidaySync{
		svc:     svc,
		locker:  locker,
		timeout: timeout,
		logger:  logger.With().Str("component", "holiday_worker").Logger(),
		now:     time.Now,
	}
}

// Run executes one pass at startup and then one per interval until ctx is done.
func (j *HolidaySync) Run(ctx context.Context, interval time.Duration) {
	j.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("shutdown signal received, stopping holiday worker")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *HolidaySync) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	err := j.RunOnce(runCtx)
	switch {
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		j.logger.Info().Msg("another replica holds the holiday sync lock, skipping run")
	case err != nil:
		j.logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("holiday sync run failed")
	default:
		j.logger.Info().Dur("elapsed", time.Since(start)).Msg("holiday sync run complete")
	}
}

// RunOnce syncs the national feed and materialises recurring holidays for
// this year and next, under the distributed lock. A failing year does not
// stop the other; the first error is returned.
func (j *HolidaySync) RunOnce(ctx context.Context) error {
	return j.locker.WithLock(ctx, LockName, func(lockCtx context.Context) error {
		year := j.now().Year()
		var firstErr error
		for _, y := range []int{year, year + 1} {
			if err := j.syncYear(lockCtx, y); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})
}

func (j *HolidaySync) syncYear(ctx context.Context, year int) error {
	res, syncErr := j.svc.SyncNationalHolidays(ctx, year)
	if syncErr != nil {
		j.logger.Warn().Err(syncErr).Int("year", year).Msg("national holiday sync failed, generating recurring holidays only")
	} else if len(res.Errors) > 0 {
		j.logger.Warn().Int("year", year).Strs("errors", res.Errors).Msg("holiday sync finished with item errors")
	}

	created, err := j.svc.GenerateRecurringHolidays(ctx, year)
	if err != nil {
		return err
	}
	j.logger.Debug().Int("year", year).Int("generated", created).Msg("recurring holidays generated")
	return syncErr
}
