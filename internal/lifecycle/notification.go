package lifecycle

import (
	"context"
	"time"
)

type NotificationKind string

const (
	NotificationOrderReady   NotificationKind = "order.ready"
	NotificationOrderDelayed NotificationKind = "order.delayed"
	NotificationNewOrder     NotificationKind = "order.new"
)

// NotificationIntent is a side effect the caller is expected to deliver.
// The core never delivers it itself.
type NotificationIntent struct {
	Kind           NotificationKind `json:"kind"`
	OrderID        OrderID          `json:"order_id"`
	KitchenOrderID KitchenOrderID   `json:"kitchen_order_id,omitempty"`
	TableNumber    string           `json:"table_number,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// Notifier delivers notification intents.
type Notifier interface {
	Emit(ctx context.Context, n NotificationIntent) error
}

func OrderReady(ticket KitchenOrder, at time.Time) NotificationIntent {
	return NotificationIntent{
		Kind:           NotificationOrderReady,
		OrderID:        ticket.OrderID,
		KitchenOrderID: ticket.ID,
		TableNumber:    ticket.TableNumber,
		OccurredAt:     at,
	}
}

func OrderDelayed(ticket KitchenOrder, at time.Time) NotificationIntent {
	return NotificationIntent{
		Kind:           NotificationOrderDelayed,
		OrderID:        ticket.OrderID,
		KitchenOrderID: ticket.ID,
		TableNumber:    ticket.TableNumber,
		OccurredAt:     at,
	}
}

func NewOrder(ticket KitchenOrder, at time.Time) NotificationIntent {
	return NotificationIntent{
		Kind:           NotificationNewOrder,
		OrderID:        ticket.OrderID,
		KitchenOrderID: ticket.ID,
		TableNumber:    ticket.TableNumber,
		OccurredAt:     at,
	}
}
