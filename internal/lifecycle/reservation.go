package lifecycle

import (
	"time"

	"github.com/google/uuid"
)

type ReservationID = uuid.UUID

type Reservation struct {
	ID           ReservationID `json:"id"`
	CustomerName string        `json:"customer_name"`
	ReservedFor  time.Time     `json:"reserved_for"`
	PartySize    int           `json:"party_size"`
	TableNumber  string        `json:"table_number,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Version      int64         `json:"version"`
}
