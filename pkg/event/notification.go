package event

import "time"

const NotificationsTopic = "notifications"

// NotificationEvent carries a notification intent to delivery channels.
// EventType is the intent kind (order.ready, order.delayed, order.new).
type NotificationEvent struct {
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	OrderID        string    `json:"order_id"`
	KitchenOrderID string    `json:"kitchen_order_id,omitempty"`
	TableNumber    string    `json:"table_number,omitempty"`
}
