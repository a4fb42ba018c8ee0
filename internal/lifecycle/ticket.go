package lifecycle

import (
	"time"

	"github.com/appetiteclub/lifecycle/pkg/enums/itemstatus"
	"github.com/google/uuid"
)

type KitchenOrderID = uuid.UUID
type KitchenOrderItemID = uuid.UUID

const (
	CoursingNone       = "none"
	CoursingSequential = "sequential"
)

// KitchenOrder is the kitchen's view of one Order (a ticket). Status is
// derived from the items and is never set independently.
type KitchenOrder struct {
	ID                    KitchenOrderID     `json:"id"`
	OrderID               OrderID            `json:"order_id"`
	TableNumber           string             `json:"table_number"`
	ServerName            string             `json:"server_name,omitempty"`
	Items                 []KitchenOrderItem `json:"items"`
	Status                string             `json:"status"`
	Priority              string             `json:"priority"`
	Coursing              string             `json:"coursing"`
	Notes                 string             `json:"notes,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
	EstimatedDeliveryTime time.Time          `json:"estimated_delivery_time"`
	Version               int64              `json:"version"`
}

// KitchenOrderItem is one preparation unit on a ticket.
type KitchenOrderItem struct {
	ID                KitchenOrderItemID `json:"id"`
	LineItemID        LineItemID         `json:"line_item_id"`
	MenuItemID        MenuItemID         `json:"menu_item_id"`
	Name              string             `json:"name,omitempty"`
	Quantity          int                `json:"quantity"`
	Status            string             `json:"status"`
	Station           string             `json:"station"`
	Chef              string             `json:"chef,omitempty"`
	StartTime         *time.Time         `json:"start_time,omitempty"`
	CompletionTime    *time.Time         `json:"completion_time,omitempty"`
	DeliveredAt       *time.Time         `json:"delivered_at,omitempty"`
	ModificationNotes string             `json:"modification_notes,omitempty"`
	AllergenAlert     bool               `json:"allergen_alert"`
}

// Item returns the index of the item with the given id, or -1.
func (k *KitchenOrder) Item(id KitchenOrderItemID) int {
	for idx := range k.Items {
		if k.Items[idx].ID == id {
			return idx
		}
	}
	return -1
}

// Active reports whether the kitchen still has work on this ticket.
func (k *KitchenOrder) Active() bool {
	s := itemstatus.Statuses
	return k.Status == s.Pending.Code() || k.Status == s.Preparing.Code()
}

// Clone returns a copy whose item slice can be modified independently.
func (k KitchenOrder) Clone() KitchenOrder {
	c := k
	c.Items = make([]KitchenOrderItem, len(k.Items))
	copy(c.Items, k.Items)
	return c
}
