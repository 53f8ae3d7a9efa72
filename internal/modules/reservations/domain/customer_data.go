package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ReservationType tags the purpose of a visit.
type ReservationType string

const (
	ReservationTypeDining        ReservationType = "dining"
	ReservationTypeBusiness      ReservationType = "business"
	ReservationTypeFamily        ReservationType = "family"
	ReservationTypeCelebration   ReservationType = "celebration"
	ReservationTypeRomantic      ReservationType = "romantic"
	ReservationTypeFamilyReunion ReservationType = "family_reunion"
)

// ErrDecodeFailure is returned when notes text does not hold a party composition.
var ErrDecodeFailure = errors.New("customer data decode failure")

var reservationTypes = map[ReservationType]struct{}{
	ReservationTypeDining:        {},
	ReservationTypeBusiness:      {},
	ReservationTypeFamily:        {},
	ReservationTypeCelebration:   {},
	ReservationTypeRomantic:      {},
	ReservationTypeFamilyReunion: {},
}

// IsValid reports whether t is one of the known reservation types.
func (t ReservationType) IsValid() bool {
	_, ok := reservationTypes[t]
	return ok
}

// ReservationTypes lists the accepted tags in display order.
func ReservationTypes() []ReservationType {
	return []ReservationType{
		ReservationTypeDining,
		ReservationTypeBusiness,
		ReservationTypeFamily,
		ReservationTypeCelebration,
		ReservationTypeRomantic,
		ReservationTypeFamilyReunion,
	}
}

// PartyComposition describes who is coming. It is stored as JSON inside the reservation notes.
type PartyComposition struct {
	Adults           int             `json:"adults"`
	Children         int             `json:"children"`
	ChildChairNeeded bool            `json:"childChairNeeded"`
	ReservationType  ReservationType `json:"reservationType"`
	Occasion         string          `json:"occasion,omitempty"`
}

// Guests returns the total party size.
func (p PartyComposition) Guests() int {
	return p.Adults + p.Children
}

// EncodeCustomerData serializes the party composition for the notes field.
func EncodeCustomerData(data PartyComposition) string {
	// Only ints, bools and strings: json.Marshal cannot fail here.
	raw, _ := json.Marshal(data)
	return string(raw)
}

// ParseCustomerData decodes notes text into a PartyComposition.
// Every failure wraps ErrDecodeFailure. Semantic ranges are not checked.
func ParseCustomerData(text string) (PartyComposition, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return PartyComposition{}, fmt.Errorf("%w: empty text", ErrDecodeFailure)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return PartyComposition{}, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}

	var data PartyComposition
	var kind string
	var missing []string
	for _, field := range []struct {
		key    string
		target any
	}{
		{"adults", &data.Adults},
		{"children", &data.Children},
		{"childChairNeeded", &data.ChildChairNeeded},
		{"reservationType", &kind},
	} {
		raw, ok := fields[field.key]
		if !ok || string(raw) == "null" {
			missing = append(missing, field.key)
			continue
		}
		if err := json.Unmarshal(raw, field.target); err != nil {
			return PartyComposition{}, fmt.Errorf("%w: %s: %v", ErrDecodeFailure, field.key, err)
		}
	}
	if len(missing) > 0 {
		return PartyComposition{}, fmt.Errorf("%w: missing %s", ErrDecodeFailure, strings.Join(missing, ", "))
	}

	data.ReservationType = ReservationType(kind)
	if !data.ReservationType.IsValid() {
		return PartyComposition{}, fmt.Errorf("%w: unknown reservationType %q", ErrDecodeFailure, kind)
	}
	if raw, ok := fields["occasion"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &data.Occasion); err != nil {
			return PartyComposition{}, fmt.Errorf("%w: occasion: %v", ErrDecodeFailure, err)
		}
	}
	return data, nil
}

// DecodeCustomerData returns the party composition and true, or the zero value and false
// when text does not hold one.
func DecodeCustomerData(text string) (PartyComposition, bool) {
	data, err := ParseCustomerData(text)
	if err != nil {
		return PartyComposition{}, false
	}
	return data, true
}
