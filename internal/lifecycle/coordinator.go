package lifecycle

import (
	"fmt"
	"time"

	"github.com/appetiteclub/lifecycle/pkg/enums/itemstatus"
	"github.com/appetiteclub/lifecycle/pkg/enums/orderstatus"
	"github.com/google/uuid"
)

// Coordinator applies the state machines, composer, estimator and
// aggregator to the entities it is given and returns the next entities
// plus notification intents. It holds no entity state and never persists
// or delivers anything.
type Coordinator struct {
	composer *Composer
	catalog  MenuCatalog
	now      func() time.Time
	newID    func() uuid.UUID
}

type Option func(*Coordinator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithIDGenerator overrides how new identifiers are created.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(c *Coordinator) {
		c.newID = newID
		c.composer.newID = newID
	}
}

func NewCoordinator(catalog MenuCatalog, roster StaffRoster, opts ...Option) *Coordinator {
	c := &Coordinator{
		composer: NewComposer(catalog, roster),
		catalog:  catalog,
		now:      time.Now,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PlaceResult is the outcome of PlaceOrder.
type PlaceResult struct {
	Order         Order
	KitchenOrder  KitchenOrder
	Notifications []NotificationIntent
	Warnings      []error
}

// MaxLineQuantity bounds the quantity of a single line item.
const MaxLineQuantity = 999

// PlaceOrder accepts a new order: it is reset to pending, its total is
// recomputed, and a prioritised ticket with an ETA is composed for it.
func (c *Coordinator) PlaceOrder(order Order) (PlaceResult, error) {
	if len(order.Items) == 0 {
		return PlaceResult{}, ErrEmptyOrder
	}
	for _, li := range order.Items {
		if li.Quantity <= 0 || li.Quantity > MaxLineQuantity {
			return PlaceResult{}, fmt.Errorf("line item %s quantity %d: %w", li.ID, li.Quantity, ErrInvalidLineItem)
		}
	}

	now := c.now()
	placed := order.Clone()
	if placed.ID == uuid.Nil {
		placed.ID = c.newID()
	}
	for idx := range placed.Items {
		if placed.Items[idx].ID == uuid.Nil {
			placed.Items[idx].ID = c.newID()
		}
	}
	placed.Status = orderstatus.Statuses.Pending.Code()
	placed.Total = placed.ComputeTotal()
	placed.Archived = false
	if placed.CreatedAt.IsZero() {
		placed.CreatedAt = now
	}
	placed.UpdatedAt = now

	comp, err := c.composer.Compose(placed, now)
	if err != nil {
		return PlaceResult{}, err
	}

	ticket := comp.Ticket
	ticket.Priority = Priority(placed.SpecialInstructions, len(ticket.Items))
	est := EstimateDelivery(ticket.Items, c.catalog, now)
	ticket.EstimatedDeliveryTime = est.DeliverAt
	placed.EstimatedPrepMinutes = int(est.Bottleneck / time.Minute)

	return PlaceResult{
		Order:         placed,
		KitchenOrder:  ticket,
		Notifications: []NotificationIntent{NewOrder(ticket, now)},
		Warnings:      append(comp.Warnings, est.Warnings...),
	}, nil
}

// ItemTransition requests a status change for one ticket item. Chef, when
// set, reassigns the item.
type ItemTransition struct {
	ItemID KitchenOrderItemID
	Status string
	Chef   string
}

// TransitionResult is the outcome of TransitionItem. CascadeErr is set when
// the item change was applied but the linked order could not follow; the
// change is not rolled back and the caller must reconcile.
type TransitionResult struct {
	Order         Order
	KitchenOrder  KitchenOrder
	OrderChanged  bool
	Notifications []NotificationIntent
	CascadeErr    error
}

// Partial reports whether the order-side cascade failed.
func (r TransitionResult) Partial() bool {
	return r.CascadeErr != nil
}

// TransitionItem moves one ticket item forward, stamps its timestamps,
// recomputes the ticket aggregate and cascades aggregate changes to the
// linked order.
func (c *Coordinator) TransitionItem(order Order, ticket KitchenOrder, req ItemTransition) (TransitionResult, error) {
	if ticket.OrderID != order.ID {
		return TransitionResult{}, fmt.Errorf("ticket %s, order %s: %w", ticket.ID, order.ID, ErrTicketMismatch)
	}

	idx := ticket.Item(req.ItemID)
	if idx < 0 {
		return TransitionResult{}, fmt.Errorf("item %s on ticket %s: %w", req.ItemID, ticket.ID, ErrItemNotFound)
	}

	next := ticket.Clone()
	item := &next.Items[idx]
	if err := ItemMachine.Validate(item.ID, item.Status, req.Status); err != nil {
		return TransitionResult{}, err
	}

	now := c.now()
	stampItem(item, req.Status, now)
	if req.Chef != "" {
		item.Chef = req.Chef
	}

	previous := next.Status
	agg, err := NextAggregate(previous, next.Items)
	if err != nil {
		return TransitionResult{}, fmt.Errorf("ticket %s: %w", ticket.ID, err)
	}
	next.Status = agg
	next.UpdatedAt = now

	result := TransitionResult{Order: order.Clone(), KitchenOrder: next}
	if agg == previous {
		return result, nil
	}

	s := itemstatus.Statuses
	ord := orderstatus.Statuses
	switch agg {
	case s.Preparing.Code():
		if order.Status == ord.Pending.Code() {
			c.cascade(&result, ord.Preparing.Code(), now)
		}
	case s.Ready.Code():
		result.Notifications = append(result.Notifications, OrderReady(next, now))
		c.cascade(&result, ord.Ready.Code(), now)
	case s.Delivered.Code():
		// An order that missed its ready cascade cannot follow and is
		// reported instead of left behind silently.
		if order.Status != ord.Delivered.Code() {
			c.cascade(&result, ord.Delivered.Code(), now)
		}
	}

	return result, nil
}

func (c *Coordinator) cascade(result *TransitionResult, to string, now time.Time) {
	next, err := c.applyOrder(result.Order, to, now)
	if err != nil {
		result.CascadeErr = &CascadeError{OrderID: result.Order.ID, Err: err}
		return
	}
	result.Order = next
	result.OrderChanged = true
}

func stampItem(item *KitchenOrderItem, to string, now time.Time) {
	s := itemstatus.Statuses
	at := now
	switch to {
	case s.Preparing.Code():
		item.StartTime = &at
	case s.Ready.Code():
		item.CompletionTime = &at
	case s.Delivered.Code():
		item.DeliveredAt = &at
	}
	item.Status = to
}

// TransitionOrder applies a front-of-house order change. Delivered orders
// are archived, never deleted.
func (c *Coordinator) TransitionOrder(order Order, to string) (Order, error) {
	return c.applyOrder(order, to, c.now())
}

// CancelOrder cancels the order. The linked ticket keeps whatever the
// kitchen already did.
func (c *Coordinator) CancelOrder(order Order) (Order, error) {
	return c.applyOrder(order, orderstatus.Statuses.Cancelled.Code(), c.now())
}

func (c *Coordinator) applyOrder(order Order, to string, now time.Time) (Order, error) {
	if err := OrderMachine.Validate(order.ID, order.Status, to); err != nil {
		return Order{}, err
	}
	next := order.Clone()
	next.Status = to
	next.UpdatedAt = now
	if to == orderstatus.Statuses.Delivered.Code() {
		next.Archived = true
	}
	return next, nil
}

// TransitionReservation validates and applies a reservation change.
func (c *Coordinator) TransitionReservation(res Reservation, to string) (Reservation, error) {
	if err := ReservationMachine.Validate(res.ID, res.Status, to); err != nil {
		return Reservation{}, err
	}
	next := res
	next.Status = to
	next.UpdatedAt = c.now()
	return next, nil
}

// CheckOverdue returns an OrderDelayed intent when the ticket is still
// being worked past its estimated delivery time.
func (c *Coordinator) CheckOverdue(ticket KitchenOrder) (NotificationIntent, bool) {
	now := c.now()
	if !IsOverdue(ticket, now) {
		return NotificationIntent{}, false
	}
	return OrderDelayed(ticket, now), true
}
