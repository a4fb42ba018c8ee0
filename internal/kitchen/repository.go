package kitchen

import (
	"context"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/internal/menu"
)

type TicketFilter struct {
	Station *string
	Status  *string
	OrderID *lifecycle.OrderID
	Limit   int
	Offset  int
}

type OrderFilter struct {
	Status          *string
	TableNumber     *string
	IncludeArchived bool
	Limit           int
}

// Save methods persist with compare-and-swap on Version and return
// lifecycle.ErrConcurrencyConflict when the stored version moved on.
// Lookups return lifecycle.ErrNotFound on a miss.

type OrderRepository interface {
	Create(ctx context.Context, o *lifecycle.Order) error
	Save(ctx context.Context, o *lifecycle.Order) error
	Get(ctx context.Context, id lifecycle.OrderID) (*lifecycle.Order, error)
	Delete(ctx context.Context, id lifecycle.OrderID) error
	List(ctx context.Context, filter OrderFilter) ([]lifecycle.Order, error)
}

type TicketRepository interface {
	Create(ctx context.Context, t *lifecycle.KitchenOrder) error
	Save(ctx context.Context, t *lifecycle.KitchenOrder) error
	FindByID(ctx context.Context, id lifecycle.KitchenOrderID) (*lifecycle.KitchenOrder, error)
	FindByOrderID(ctx context.Context, id lifecycle.OrderID) (*lifecycle.KitchenOrder, error)
	List(ctx context.Context, filter TicketFilter) ([]lifecycle.KitchenOrder, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, r *lifecycle.Reservation) error
	Save(ctx context.Context, r *lifecycle.Reservation) error
	Get(ctx context.Context, id lifecycle.ReservationID) (*lifecycle.Reservation, error)
}

// Snapshotter provides the menu catalog and staff roster for one operation.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*menu.Catalog, *menu.Roster)
}
