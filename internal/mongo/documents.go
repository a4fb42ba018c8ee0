package mongo

import (
	"time"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/internal/menu"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ordersCollection       = "orders"
	ticketsCollection      = "kitchen_orders"
	reservationsCollection = "reservations"
	menuItemsCollection    = "menu_items"
	staffCollection        = "staff"
)

var (
	errNotFound = lifecycle.ErrNotFound
	errConflict = lifecycle.ErrConcurrencyConflict
)

// Money is stored as decimal strings so totals round-trip exactly.

type lineItemDoc struct {
	ID         uuid.UUID `bson:"id"`
	MenuItemID uuid.UUID `bson:"menu_item_id"`
	Name       string    `bson:"name,omitempty"`
	Quantity   int       `bson:"quantity"`
	UnitPrice  string    `bson:"unit_price"`
	Notes      string    `bson:"notes,omitempty"`
}

type orderDoc struct {
	ID                   uuid.UUID     `bson:"_id"`
	TableNumber          string        `bson:"table_number"`
	Items                []lineItemDoc `bson:"items"`
	Status               string        `bson:"status"`
	Total                string        `bson:"total"`
	ServerName           string        `bson:"server_name,omitempty"`
	GuestCount           int           `bson:"guest_count,omitempty"`
	EstimatedPrepMinutes int           `bson:"estimated_prep_minutes"`
	SpecialInstructions  string        `bson:"special_instructions,omitempty"`
	Archived             bool          `bson:"archived"`
	CreatedAt            time.Time     `bson:"created_at"`
	UpdatedAt            time.Time     `bson:"updated_at"`
	Version              int64         `bson:"version"`
}

func toOrderDoc(o *lifecycle.Order) orderDoc {
	items := make([]lineItemDoc, 0, len(o.Items))
	for _, li := range o.Items {
		items = append(items, lineItemDoc{
			ID:         li.ID,
			MenuItemID: li.MenuItemID,
			Name:       li.Name,
			Quantity:   li.Quantity,
			UnitPrice:  li.UnitPrice.String(),
			Notes:      li.Notes,
		})
	}
	return orderDoc{
		ID:                   o.ID,
		TableNumber:          o.TableNumber,
		Items:                items,
		Status:               o.Status,
		Total:                o.Total.String(),
		ServerName:           o.ServerName,
		GuestCount:           o.GuestCount,
		EstimatedPrepMinutes: o.EstimatedPrepMinutes,
		SpecialInstructions:  o.SpecialInstructions,
		Archived:             o.Archived,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		Version:              o.Version,
	}
}

func (d orderDoc) toOrder() (*lifecycle.Order, error) {
	total, err := parseDecimal(d.Total)
	if err != nil {
		return nil, err
	}
	o := &lifecycle.Order{
		ID:                   d.ID,
		TableNumber:          d.TableNumber,
		Items:                make([]lifecycle.LineItem, 0, len(d.Items)),
		Status:               d.Status,
		Total:                total,
		ServerName:           d.ServerName,
		GuestCount:           d.GuestCount,
		EstimatedPrepMinutes: d.EstimatedPrepMinutes,
		SpecialInstructions:  d.SpecialInstructions,
		Archived:             d.Archived,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
		Version:              d.Version,
	}
	for _, li := range d.Items {
		price, err := parseDecimal(li.UnitPrice)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, lifecycle.LineItem{
			ID:         li.ID,
			MenuItemID: li.MenuItemID,
			Name:       li.Name,
			Quantity:   li.Quantity,
			UnitPrice:  price,
			Notes:      li.Notes,
		})
	}
	return o, nil
}

type ticketItemDoc struct {
	ID                uuid.UUID  `bson:"id"`
	LineItemID        uuid.UUID  `bson:"line_item_id"`
	MenuItemID        uuid.UUID  `bson:"menu_item_id"`
	Name              string     `bson:"name,omitempty"`
	Quantity          int        `bson:"quantity"`
	Status            string     `bson:"status"`
	Station           string     `bson:"station"`
	Chef              string     `bson:"chef,omitempty"`
	StartTime         *time.Time `bson:"start_time,omitempty"`
	CompletionTime    *time.Time `bson:"completion_time,omitempty"`
	DeliveredAt       *time.Time `bson:"delivered_at,omitempty"`
	ModificationNotes string     `bson:"modification_notes,omitempty"`
	AllergenAlert     bool       `bson:"allergen_alert"`
}

type ticketDoc struct {
	ID                    uuid.UUID       `bson:"_id"`
	OrderID               uuid.UUID       `bson:"order_id"`
	TableNumber           string          `bson:"table_number"`
	ServerName            string          `bson:"server_name,omitempty"`
	Items                 []ticketItemDoc `bson:"items"`
	Status                string          `bson:"status"`
	Priority              string          `bson:"priority"`
	Coursing              string          `bson:"coursing"`
	Notes                 string          `bson:"notes,omitempty"`
	CreatedAt             time.Time       `bson:"created_at"`
	UpdatedAt             time.Time       `bson:"updated_at"`
	EstimatedDeliveryTime time.Time       `bson:"estimated_delivery_time"`
	Version               int64           `bson:"version"`
}

func toTicketDoc(t *lifecycle.KitchenOrder) ticketDoc {
	items := make([]ticketItemDoc, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, ticketItemDoc{
			ID:                it.ID,
			LineItemID:        it.LineItemID,
			MenuItemID:        it.MenuItemID,
			Name:              it.Name,
			Quantity:          it.Quantity,
			Status:            it.Status,
			Station:           it.Station,
			Chef:              it.Chef,
			StartTime:         it.StartTime,
			CompletionTime:    it.CompletionTime,
			DeliveredAt:       it.DeliveredAt,
			ModificationNotes: it.ModificationNotes,
			AllergenAlert:     it.AllergenAlert,
		})
	}
	return ticketDoc{
		ID:                    t.ID,
		OrderID:               t.OrderID,
		TableNumber:           t.TableNumber,
		ServerName:            t.ServerName,
		Items:                 items,
		Status:                t.Status,
		Priority:              t.Priority,
		Coursing:              t.Coursing,
		Notes:                 t.Notes,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
		EstimatedDeliveryTime: t.EstimatedDeliveryTime,
		Version:               t.Version,
	}
}

func (d ticketDoc) toTicket() *lifecycle.KitchenOrder {
	t := &lifecycle.KitchenOrder{
		ID:                    d.ID,
		OrderID:               d.OrderID,
		TableNumber:           d.TableNumber,
		ServerName:            d.ServerName,
		Items:                 make([]lifecycle.KitchenOrderItem, 0, len(d.Items)),
		Status:                d.Status,
		Priority:              d.Priority,
		Coursing:              d.Coursing,
		Notes:                 d.Notes,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
		EstimatedDeliveryTime: d.EstimatedDeliveryTime,
		Version:               d.Version,
	}
	for _, it := range d.Items {
		t.Items = append(t.Items, lifecycle.KitchenOrderItem{
			ID:                it.ID,
			LineItemID:        it.LineItemID,
			MenuItemID:        it.MenuItemID,
			Name:              it.Name,
			Quantity:          it.Quantity,
			Status:            it.Status,
			Station:           it.Station,
			Chef:              it.Chef,
			StartTime:         it.StartTime,
			CompletionTime:    it.CompletionTime,
			DeliveredAt:       it.DeliveredAt,
			ModificationNotes: it.ModificationNotes,
			AllergenAlert:     it.AllergenAlert,
		})
	}
	return t
}

type reservationDoc struct {
	ID           uuid.UUID `bson:"_id"`
	CustomerName string    `bson:"customer_name"`
	ReservedFor  time.Time `bson:"reserved_for"`
	PartySize    int       `bson:"party_size"`
	TableNumber  string    `bson:"table_number,omitempty"`
	Notes        string    `bson:"notes,omitempty"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	Version      int64     `bson:"version"`
}

func toReservationDoc(r *lifecycle.Reservation) reservationDoc {
	return reservationDoc{
		ID:           r.ID,
		CustomerName: r.CustomerName,
		ReservedFor:  r.ReservedFor,
		PartySize:    r.PartySize,
		TableNumber:  r.TableNumber,
		Notes:        r.Notes,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Version:      r.Version,
	}
}

func (d reservationDoc) toReservation() *lifecycle.Reservation {
	return &lifecycle.Reservation{
		ID:           d.ID,
		CustomerName: d.CustomerName,
		ReservedFor:  d.ReservedFor,
		PartySize:    d.PartySize,
		TableNumber:  d.TableNumber,
		Notes:        d.Notes,
		Status:       d.Status,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		Version:      d.Version,
	}
}

type menuItemDoc struct {
	ID          uuid.UUID `bson:"_id"`
	ShortCode   string    `bson:"short_code"`
	Name        string    `bson:"name"`
	Station     string    `bson:"station"`
	PrepMinutes int       `bson:"prep_minutes"`
	Allergens   []string  `bson:"allergens,omitempty"`
	Price       string    `bson:"price"`
	Active      bool      `bson:"active"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toMenuItemDoc(m *menu.MenuItem) menuItemDoc {
	return menuItemDoc{
		ID:          m.ID,
		ShortCode:   m.ShortCode,
		Name:        m.Name,
		Station:     m.Station,
		PrepMinutes: m.PrepMinutes,
		Allergens:   m.Allergens,
		Price:       m.Price.String(),
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (d menuItemDoc) toMenuItem() (menu.MenuItem, error) {
	price, err := parseDecimal(d.Price)
	if err != nil {
		return menu.MenuItem{}, err
	}
	return menu.MenuItem{
		ID:          d.ID,
		ShortCode:   d.ShortCode,
		Name:        d.Name,
		Station:     d.Station,
		PrepMinutes: d.PrepMinutes,
		Allergens:   d.Allergens,
		Price:       price,
		Active:      d.Active,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

type staffDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Role      string    `bson:"role"`
	Active    bool      `bson:"active"`
	CreatedAt time.Time `bson:"created_at"`
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
