package infrastructure

import (
	"context"
	"testing"
	"time"
)

type countingSweeper struct {
	calls chan struct{}
}

func (s *countingSweeper) SweepStale(context.Context) (int, error) {
	select {
	case s.calls <- struct{}{}:
	default:
	}
	return 0, nil
}

func TestStartSweeperRejectsBadSchedule(t *testing.T) {
	if _, err := StartSweeper(context.Background(), "every tuesday", &countingSweeper{}); err == nil {
		t.Fatal("expected invalid cron schedule to fail")
	}
}

func TestStartSweeperRunsJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := &countingSweeper{calls: make(chan struct{}, 1)}
	if _, err := StartSweeper(ctx, "@every 1s", sweeper); err != nil {
		t.Fatalf("start sweeper: %v", err)
	}

	select {
	case <-sweeper.calls:
	case <-time.After(3 * time.Second):
		t.Fatal("sweeper job did not run")
	}
}
