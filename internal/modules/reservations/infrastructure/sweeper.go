package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"mesaYaPos/internal/shared"
)

// DefaultSweepSchedule runs the stale-booking sweep every five minutes.
const DefaultSweepSchedule = "*/5 * * * *"

// StaleSweeper cancels pending reservations that were never confirmed.
type StaleSweeper interface {
	SweepStale(ctx context.Context) (int, error)
}

// StartSweeper schedules sweeper on schedule and stops it when ctx is done.
func StartSweeper(ctx context.Context, schedule string, sweeper StaleSweeper) (*cron.Cron, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	logger := shared.CronLogger{}
	scheduler := cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	_, err := scheduler.AddFunc(schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		count, err := sweeper.SweepStale(runCtx)
		if err != nil {
			slog.Error("stale reservation sweep failed", slog.Int("cancelled", count), slog.Any("error", err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule sweeper %q: %w", schedule, err)
	}

	scheduler.Start()
	slog.Info("stale reservation sweeper started", slog.String("schedule", schedule))

	go func() {
		<-ctx.Done()
		<-scheduler.Stop().Done()
		slog.Info("stale reservation sweeper stopped")
	}()
	return scheduler, nil
}
