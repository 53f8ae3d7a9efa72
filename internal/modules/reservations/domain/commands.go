package domain

import "time"

// CreateReservationCommand is the payload accepted when booking a table.
type CreateReservationCommand struct {
	TableID         string       `json:"tableId" validate:"omitempty,max=64"`
	CustomerName    string       `json:"customerName" validate:"required,max=120"`
	CustomerPhone   string       `json:"customerPhone" validate:"required,min=5,max=32"`
	CustomerEmail   string       `json:"customerEmail" validate:"omitempty,email"`
	ReservationTime time.Time    `json:"reservationTime" validate:"required"`
	DurationMinutes *int         `json:"durationMinutes" validate:"omitempty,gt=0,lte=720"`
	DepositCents    *int64       `json:"depositCents" validate:"omitempty,gte=0"`
	PaymentMethod   string       `json:"paymentMethod" validate:"omitempty,max=32"`
	Party           PartyCommand `json:"party"`
}

// PartyCommand carries the guest makeup with semantic range checks the codec does not make.
type PartyCommand struct {
	Adults           int    `json:"adults" validate:"gte=0,lte=100"`
	Children         int    `json:"children" validate:"gte=0,lte=100"`
	ChildChairNeeded bool   `json:"childChairNeeded"`
	ReservationType  string `json:"reservationType" validate:"required,oneof=dining business family celebration romantic family_reunion"`
	Occasion         string `json:"occasion" validate:"omitempty,max=120"`
}

// Composition converts the command into the stored party composition.
func (p PartyCommand) Composition() PartyComposition {
	return PartyComposition{
		Adults:           p.Adults,
		Children:         p.Children,
		ChildChairNeeded: p.ChildChairNeeded,
		ReservationType:  ReservationType(p.ReservationType),
		Occasion:         p.Occasion,
	}
}

// ListReservationsCommand represents the query parameters for listing reservations.
type ListReservationsCommand struct {
	Status  string `query:"status"`
	TableID string `query:"tableId"`
	From    string `query:"from"`
	To      string `query:"to"`
	Page    int    `query:"page"`
	Limit   int    `query:"limit"`
}

// AssignTableCommand moves a reservation to another table.
type AssignTableCommand struct {
	TableID string `json:"tableId" validate:"required,max=64"`
}
