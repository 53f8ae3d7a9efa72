package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mesaYaPos/internal/config"
	"mesaYaPos/internal/modules/reservations/domain"
	"mesaYaPos/internal/modules/reservations/infrastructure"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNotesEncode(t *testing.T) {
	out, err := run(t, "notes", "encode", "--adults", "2", "--children", "1", "--child-chair", "--type", "Celebration", "--occasion", "birthday")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `{"adults":2,"children":1,"childChairNeeded":true,"reservationType":"celebration","occasion":"birthday"}`
	if strings.TrimSpace(out) != expected {
		t.Fatalf("expected %s, got %s", expected, out)
	}
}

func TestNotesEncodeRejectsUnknownType(t *testing.T) {
	if _, err := run(t, "notes", "encode", "--type", "brunch"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestNotesDecode(t *testing.T) {
	out, err := run(t, "notes", "decode", `{"adults":3,"children":0,"childChairNeeded":false,"reservationType":"business"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"guests": 3`) || !strings.Contains(out, `"reservationType": "business"`) {
		t.Fatalf("unexpected output %s", out)
	}

	if _, err := run(t, "notes", "decode", "{}"); !errors.Is(err, domain.ErrDecodeFailure) {
		t.Fatalf("expected decode failure, got %v", err)
	}
}

func TestMigrateMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	out, err := run(t, "migrate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "no migration") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSweepMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("RABBITMQ_URL", "")
	out, err := run(t, "sweep", "--grace", "10m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "cancelled 0 stale reservation(s)") {
		t.Fatalf("unexpected output %q", out)
	}
}

type recordingCache struct {
	items map[string]domain.Reservation
}

func (c *recordingCache) Get(_ context.Context, id string) (*domain.Reservation, bool) {
	r, ok := c.items[id]
	return &r, ok
}

func (c *recordingCache) Set(_ context.Context, r *domain.Reservation) { c.items[r.ID] = *r }

func (c *recordingCache) Invalidate(_ context.Context, id string) { delete(c.items, id) }

type recordingPublisher struct {
	events []domain.ReservationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.ReservationEvent) error {
	p.events = append(p.events, event)
	return nil
}

func TestSweepWritesThroughCacheAndPublisher(t *testing.T) {
	ctx := context.Background()
	repo := infrastructure.NewMemoryRepository()
	overdue := domain.Reservation{
		ID:              "res-1",
		RestaurantID:    "rest-a",
		TableID:         "t1",
		Status:          domain.ReservationStatusPending,
		ReservationTime: time.Now().UTC().Add(-2 * time.Hour),
	}
	if err := repo.Create(ctx, &overdue); err != nil {
		t.Fatalf("seed: %v", err)
	}

	pending := overdue
	cache := &recordingCache{items: map[string]domain.Reservation{"res-1": pending}}
	publisher := &recordingPublisher{}
	outbound := &infrastructure.Outbound{Cache: cache, Publisher: publisher, Publishers: 1}

	count, err := newSweepService(repo, outbound, &config.Config{}, 30*time.Minute).SweepStale(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected one cancellation, got %d (%v)", count, err)
	}
	if cached := cache.items["res-1"]; cached.Status != domain.ReservationStatusCancelled {
		t.Fatalf("expected cancelled copy in cache, got %s", cached.Status)
	}
	if len(publisher.events) != 1 || publisher.events[0].Status != domain.ReservationStatusCancelled {
		t.Fatalf("expected one cancellation event, got %+v", publisher.events)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil || strings.TrimSpace(out) != "posctl dev" {
		t.Fatalf("unexpected version output %q (%v)", out, err)
	}
}
