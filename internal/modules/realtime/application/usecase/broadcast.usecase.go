package usecase

import (
	"context"

	"mesaYaPos/internal/modules/realtime/application/port"
	"mesaYaPos/internal/modules/realtime/domain"
	reservations "mesaYaPos/internal/modules/reservations/domain"
)

type BroadcastUseCase struct {
	broadcaster port.Broadcaster
}

func NewBroadcastUseCase(b port.Broadcaster) *BroadcastUseCase {
	return &BroadcastUseCase{broadcaster: b}
}

func (uc *BroadcastUseCase) Execute(ctx context.Context, msg *domain.Message) {
	if msg == nil {
		return
	}
	uc.broadcaster.Broadcast(ctx, msg)
}

// Publish lets the reservation service push events straight to websocket clients
// when no broker sits in between.
func (uc *BroadcastUseCase) Publish(ctx context.Context, event reservations.ReservationEvent) error {
	uc.Execute(ctx, domain.BuildReservationMessage(event))
	return nil
}
