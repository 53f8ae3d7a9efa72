package infrastructure

import (
	"context"
	"errors"

	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/modules/reservations/domain"
)

// FanoutPublisher delivers every event to all publishers and joins their errors.
type FanoutPublisher struct {
	publishers []port.EventPublisher
}

func NewFanoutPublisher(publishers ...port.EventPublisher) *FanoutPublisher {
	active := make([]port.EventPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &FanoutPublisher{publishers: active}
}

func (f *FanoutPublisher) Publish(ctx context.Context, event domain.ReservationEvent) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len reports how many publishers are attached.
func (f *FanoutPublisher) Len() int { return len(f.publishers) }

var _ port.EventPublisher = (*FanoutPublisher)(nil)
