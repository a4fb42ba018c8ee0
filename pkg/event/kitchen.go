package event

import "time"

const (
	KitchenTicketsTopic            = "kitchen.tickets"
	EventKitchenTicketCreated      = "kitchen.ticket.created"
	EventKitchenTicketStatusChange = "kitchen.ticket.status_changed"
)

type KitchenTicketEventMetadata struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	TicketID    string    `json:"ticket_id"`
	OrderID     string    `json:"order_id"`
	TableNumber string    `json:"table_number,omitempty"`
	Priority    string    `json:"priority,omitempty"`
}

// KitchenTicketItem is the denormalized view of one ticket item used by
// kanban boards.
type KitchenTicketItem struct {
	ItemID        string     `json:"item_id"`
	LineItemID    string     `json:"line_item_id,omitempty"`
	MenuItemID    string     `json:"menu_item_id"`
	MenuItemName  string     `json:"menu_item_name,omitempty"`
	Quantity      int        `json:"quantity"`
	Status        string     `json:"status"`
	Station       string     `json:"station"`
	Chef          string     `json:"chef,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	AllergenAlert bool       `json:"allergen_alert,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
}

type KitchenTicketCreatedEvent struct {
	KitchenTicketEventMetadata
	Status                string              `json:"status"`
	ServerName            string              `json:"server_name,omitempty"`
	Notes                 string              `json:"notes,omitempty"`
	EstimatedDeliveryTime time.Time           `json:"estimated_delivery_time"`
	Items                 []KitchenTicketItem `json:"items"`
}

// KitchenTicketStatusChangedEvent reports one item change and the ticket
// aggregate that resulted from it.
type KitchenTicketStatusChangedEvent struct {
	KitchenTicketEventMetadata
	NewStatus      string            `json:"new_status"`
	PreviousStatus string            `json:"previous_status"`
	Item           KitchenTicketItem `json:"item"`
	PreviousItem   string            `json:"previous_item_status,omitempty"`
}
