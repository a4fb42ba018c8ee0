package event

import "time"

const (
	OrdersLifecycleTopic = "orders.lifecycle"
	OrderStatusTopic     = "orders.status"

	EventOrderPlaced         = "order.placed"
	EventOrderCancelled      = "order.cancelled"
	EventItemStatusRequested = "kitchen.item.status_requested"
	EventOrderStatusChanged  = "order.status_changed"
)

// OrderLine is a line item as carried on the wire. Prices travel as
// decimal strings.
type OrderLine struct {
	LineItemID string `json:"line_item_id,omitempty"`
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name,omitempty"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// OrderLifecycleEvent is published on orders.lifecycle by front of house
// and consumed by this service. Fields are populated per event type.
type OrderLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id,omitempty"`

	// order.placed
	TableNumber         string      `json:"table_number,omitempty"`
	ServerName          string      `json:"server_name,omitempty"`
	GuestCount          int         `json:"guest_count,omitempty"`
	SpecialInstructions string      `json:"special_instructions,omitempty"`
	Items               []OrderLine `json:"items,omitempty"`

	// kitchen.item.status_requested
	TicketID string `json:"ticket_id,omitempty"`
	ItemID   string `json:"item_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Chef     string `json:"chef,omitempty"`
}

// OrderStatusChangedEvent is emitted whenever this service moves an order.
type OrderStatusChangedEvent struct {
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	OrderID        string    `json:"order_id"`
	TableNumber    string    `json:"table_number,omitempty"`
	NewStatus      string    `json:"new_status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Archived       bool      `json:"archived,omitempty"`
	Total          string    `json:"total,omitempty"`
}
