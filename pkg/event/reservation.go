package event

import "time"

const (
	ReservationsTopic             = "reservations"
	EventReservationCreated       = "reservation.created"
	EventReservationStatusChanged = "reservation.status_changed"
)

type ReservationEvent struct {
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	ReservationID  string    `json:"reservation_id"`
	CustomerName   string    `json:"customer_name,omitempty"`
	PartySize      int       `json:"party_size,omitempty"`
	TableNumber    string    `json:"table_number,omitempty"`
	ReservedFor    time.Time `json:"reserved_for"`
	NewStatus      string    `json:"new_status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
}
