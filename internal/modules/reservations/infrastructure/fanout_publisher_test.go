package infrastructure

import (
	"context"
	"errors"
	"testing"

	"mesaYaPos/internal/modules/reservations/domain"
)

type recordingPublisher struct {
	events []domain.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.ReservationEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func TestFanoutPublisherDeliversToAll(t *testing.T) {
	boom := errors.New("broker down")
	first := &recordingPublisher{err: boom}
	second := &recordingPublisher{}
	fanout := NewFanoutPublisher(first, nil, second)

	if fanout.Len() != 2 {
		t.Fatalf("expected nil publishers to be skipped, got %d", fanout.Len())
	}

	event := domain.ReservationEvent{Entity: domain.EntityName, Action: domain.EventActionCreated, ResourceID: "r1"}
	err := fanout.Publish(context.Background(), event)
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain broker failure, got %v", err)
	}
	if len(first.events) != 1 || len(second.events) != 1 {
		t.Fatal("every publisher must receive the event even when one fails")
	}
}
