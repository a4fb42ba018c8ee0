package lifecycle

import (
	"time"

	"github.com/appetiteclub/lifecycle/pkg/enums/orderstatus"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderID = uuid.UUID
type LineItemID = uuid.UUID
type MenuItemID = uuid.UUID

// LineItem is one entry of a front-of-house order.
type LineItem struct {
	ID         LineItemID      `json:"id"`
	MenuItemID MenuItemID      `json:"menu_item_id"`
	Name       string          `json:"name,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Notes      string          `json:"notes,omitempty"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is a front-of-house ticket. Total is always the sum of line
// subtotals; tax and tip are not part of it.
type Order struct {
	ID                   OrderID         `json:"id"`
	TableNumber          string          `json:"table_number"`
	Items                []LineItem      `json:"items"`
	Status               string          `json:"status"`
	Total                decimal.Decimal `json:"total"`
	ServerName           string          `json:"server_name,omitempty"`
	GuestCount           int             `json:"guest_count"`
	EstimatedPrepMinutes int             `json:"estimated_prep_minutes"`
	SpecialInstructions  string          `json:"special_instructions,omitempty"`
	Archived             bool            `json:"archived"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Version              int64           `json:"version"`
}

// ComputeTotal sums price x quantity over every line item.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}

func (o *Order) IsTerminal() bool {
	return OrderMachine.Terminal(o.Status)
}

func (o *Order) IsCancelled() bool {
	return o.Status == orderstatus.Statuses.Cancelled.Code()
}

func (o Order) Clone() Order {
	c := o
	c.Items = make([]LineItem, len(o.Items))
	copy(c.Items, o.Items)
	return c
}
