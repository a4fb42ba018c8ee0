package kitchen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/internal/menu"
	"github.com/appetiteclub/lifecycle/pkg/enums/itemstatus"
	"github.com/appetiteclub/lifecycle/pkg/enums/reservationstatus"
	"github.com/appetiteclub/lifecycle/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
)

const defaultMaxRetries = 3

var ErrInvalidReservation = errors.New("invalid reservation")

// ServiceDeps groups the collaborators of Service. Only the repositories
// are required.
type ServiceDeps struct {
	Orders       OrderRepository
	Tickets      TicketRepository
	Reservations ReservationRepository
	Snapshots    Snapshotter
	Cache        *TicketStateCache
	Publisher    events.Publisher
	Notifier     lifecycle.Notifier
	Clock        func() time.Time
	NewID        func() uuid.UUID
	MaxRetries   int
	Logger       aqm.Logger
}

// Service runs lifecycle operations against stored entities: load, apply
// the coordinator, save with the expected version, then publish and
// notify. Version conflicts are retried from a fresh read.
type Service struct {
	orders       OrderRepository
	tickets      TicketRepository
	reservations ReservationRepository
	snapshots    Snapshotter
	cache        *TicketStateCache
	publisher    events.Publisher
	notifier     lifecycle.Notifier
	now          func() time.Time
	newID        func() uuid.UUID
	maxRetries   int
	logger       aqm.Logger
}

func NewService(deps ServiceDeps) *Service {
	s := &Service{
		orders:       deps.Orders,
		tickets:      deps.Tickets,
		reservations: deps.Reservations,
		snapshots:    deps.Snapshots,
		cache:        deps.Cache,
		publisher:    deps.Publisher,
		notifier:     deps.Notifier,
		now:          deps.Clock,
		newID:        deps.NewID,
		maxRetries:   deps.MaxRetries,
		logger:       deps.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.New
	}
	if s.maxRetries <= 0 {
		s.maxRetries = defaultMaxRetries
	}
	if s.logger == nil {
		s.logger = aqm.NewNoopLogger()
	}
	return s
}

func (s *Service) coordinator(catalog lifecycle.MenuCatalog, roster lifecycle.StaffRoster) *lifecycle.Coordinator {
	return lifecycle.NewCoordinator(catalog, roster,
		lifecycle.WithClock(s.now),
		lifecycle.WithIDGenerator(s.newID),
	)
}

// withRetry runs fn again while it fails with a version conflict, up to
// maxRetries extra attempts.
func (s *Service) withRetry(op string, fn func() error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err = fn()
		if !errors.Is(err, lifecycle.ErrConcurrencyConflict) {
			return err
		}
		s.logger.Debug("version conflict, retrying", "op", op, "attempt", attempt+1)
	}
	return err
}

// PlaceOrder accepts a new order, stores it with its kitchen ticket and
// announces both. Line items without a name or price take them from the
// menu.
func (s *Service) PlaceOrder(ctx context.Context, order lifecycle.Order) (lifecycle.PlaceResult, error) {
	var (
		catalog lifecycle.MenuCatalog
		roster  lifecycle.StaffRoster
	)
	if s.snapshots != nil {
		cat, ros := s.snapshots.Snapshot(ctx)
		fillFromMenu(&order, cat)
		catalog, roster = cat, ros
	}

	res, err := s.coordinator(catalog, roster).PlaceOrder(order)
	if err != nil {
		return lifecycle.PlaceResult{}, err
	}

	for _, w := range res.Warnings {
		s.logger.Info("order placed with degraded lookup", "order_id", res.Order.ID, "warning", w)
	}

	if err := s.orders.Create(ctx, &res.Order); err != nil {
		return lifecycle.PlaceResult{}, fmt.Errorf("cannot store order: %w", err)
	}
	if err := s.tickets.Create(ctx, &res.KitchenOrder); err != nil {
		if derr := s.orders.Delete(ctx, res.Order.ID); derr != nil {
			s.logger.Error("cannot roll back order after ticket failure", "order_id", res.Order.ID, "error", derr)
		}
		return lifecycle.PlaceResult{}, fmt.Errorf("cannot store kitchen ticket: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(&res.KitchenOrder)
	}
	s.publish(ctx, event.KitchenTicketsTopic, ticketCreatedEvent(&res.KitchenOrder))
	s.publish(ctx, event.OrderStatusTopic, orderStatusEvent(&res.Order, "", res.Order.UpdatedAt))
	s.emit(ctx, res.Notifications)

	s.logger.Info("order placed", "order_id", res.Order.ID, "ticket_id", res.KitchenOrder.ID, "priority", res.KitchenOrder.Priority)
	return res, nil
}

func fillFromMenu(order *lifecycle.Order, catalog *menu.Catalog) {
	if catalog == nil {
		return
	}
	items := make([]lifecycle.LineItem, len(order.Items))
	copy(items, order.Items)
	for idx := range items {
		li := &items[idx]
		if li.Name != "" && !li.UnitPrice.IsZero() {
			continue
		}
		m, err := catalog.Lookup(li.MenuItemID)
		if err != nil {
			continue
		}
		if li.Name == "" {
			li.Name = m.Name
		}
		if li.UnitPrice.IsZero() {
			li.UnitPrice = m.Price
		}
	}
	order.Items = items
}

func (s *Service) GetOrder(ctx context.Context, id lifecycle.OrderID) (*lifecycle.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, filter OrderFilter) ([]lifecycle.Order, error) {
	return s.orders.List(ctx, filter)
}

// TransitionOrder moves an order directly, as front of house does for
// delivery.
func (s *Service) TransitionOrder(ctx context.Context, id lifecycle.OrderID, to string) (lifecycle.Order, error) {
	return s.updateOrder(ctx, "transition_order", id, func(c *lifecycle.Coordinator, o lifecycle.Order) (lifecycle.Order, error) {
		return c.TransitionOrder(o, to)
	})
}

// CancelOrder cancels an order. Its ticket is left as the kitchen has it.
func (s *Service) CancelOrder(ctx context.Context, id lifecycle.OrderID) (lifecycle.Order, error) {
	return s.updateOrder(ctx, "cancel_order", id, func(c *lifecycle.Coordinator, o lifecycle.Order) (lifecycle.Order, error) {
		return c.CancelOrder(o)
	})
}

func (s *Service) updateOrder(ctx context.Context, op string, id lifecycle.OrderID, apply func(*lifecycle.Coordinator, lifecycle.Order) (lifecycle.Order, error)) (lifecycle.Order, error) {
	coord := s.coordinator(nil, nil)

	var (
		next     lifecycle.Order
		previous string
	)
	err := s.withRetry(op, func() error {
		current, err := s.orders.Get(ctx, id)
		if err != nil {
			return err
		}
		previous = current.Status
		next, err = apply(coord, *current)
		if err != nil {
			return err
		}
		return s.orders.Save(ctx, &next)
	})
	if err != nil {
		return lifecycle.Order{}, err
	}

	s.publish(ctx, event.OrderStatusTopic, orderStatusEvent(&next, previous, next.UpdatedAt))
	s.logger.Info("order status changed", "order_id", id, "from", previous, "to", next.Status)
	return next, nil
}

// GetTicket returns the ticket from the state cache when it is there and
// from the repository otherwise.
func (s *Service) GetTicket(ctx context.Context, id lifecycle.KitchenOrderID) (*lifecycle.KitchenOrder, error) {
	if s.cache != nil {
		if t, ok := s.cache.Get(id); ok {
			return &t, nil
		}
	}
	return s.tickets.FindByID(ctx, id)
}

// ListTickets lists tickets by station and aggregate status. Delivered
// tickets only live in the repository.
func (s *Service) ListTickets(ctx context.Context, station, status string) ([]lifecycle.KitchenOrder, error) {
	if s.cache != nil && status != itemstatus.Statuses.Delivered.Code() {
		return s.cache.List(station, status), nil
	}

	filter := TicketFilter{}
	if station != "" {
		filter.Station = &station
	}
	if status != "" {
		filter.Status = &status
	}
	return s.tickets.List(ctx, filter)
}

// OverdueTickets lists active tickets past their estimated delivery time.
func (s *Service) OverdueTickets(ctx context.Context) ([]lifecycle.KitchenOrder, error) {
	now := s.now()
	if s.cache != nil {
		return s.cache.Overdue(now), nil
	}

	all, err := s.tickets.List(ctx, TicketFilter{})
	if err != nil {
		return nil, err
	}
	var overdue []lifecycle.KitchenOrder
	for _, t := range all {
		if lifecycle.IsOverdue(t, now) {
			overdue = append(overdue, t)
		}
	}
	return overdue, nil
}

// TransitionItem moves one ticket item and cascades the aggregate to the
// order. A failed cascade does not undo the item change; it comes back in
// CascadeErr.
func (s *Service) TransitionItem(ctx context.Context, ticketID lifecycle.KitchenOrderID, req lifecycle.ItemTransition) (lifecycle.TransitionResult, error) {
	coord := s.coordinator(nil, nil)

	var (
		res            lifecycle.TransitionResult
		previousItem   string
		previousStatus string
		previousOrder  string
	)
	err := s.withRetry("transition_item", func() error {
		ticket, err := s.tickets.FindByID(ctx, ticketID)
		if err != nil {
			return err
		}
		order, err := s.orders.Get(ctx, ticket.OrderID)
		if err != nil {
			return err
		}

		res, err = coord.TransitionItem(*order, *ticket, req)
		if err != nil {
			return err
		}
		if idx := ticket.Item(req.ItemID); idx >= 0 {
			previousItem = ticket.Items[idx].Status
		}
		previousStatus = ticket.Status
		previousOrder = order.Status

		return s.tickets.Save(ctx, &res.KitchenOrder)
	})
	if err != nil {
		return lifecycle.TransitionResult{}, err
	}

	if res.OrderChanged {
		s.saveCascade(ctx, coord, &res)
	}
	if res.CascadeErr != nil {
		s.logger.Error("item change applied but order did not follow",
			"ticket_id", ticketID, "order_id", res.Order.ID, "error", res.CascadeErr)
	}

	if s.cache != nil {
		s.cache.Set(&res.KitchenOrder)
	}
	idx := res.KitchenOrder.Item(req.ItemID)
	s.publish(ctx, event.KitchenTicketsTopic, itemChangedEvent(&res.KitchenOrder, idx, previousItem, previousStatus))
	if res.OrderChanged {
		s.publish(ctx, event.OrderStatusTopic, orderStatusEvent(&res.Order, previousOrder, res.Order.UpdatedAt))
	}
	s.emit(ctx, res.Notifications)

	s.logger.Info("ticket item changed", "ticket_id", ticketID, "item_id", req.ItemID,
		"from", previousItem, "to", req.Status, "aggregate", res.KitchenOrder.Status)
	return res, nil
}

// saveCascade stores the cascaded order. On a version conflict the order is
// re-read and the same target applied to it; if the fresh order cannot take
// it the result becomes a partial success.
func (s *Service) saveCascade(ctx context.Context, coord *lifecycle.Coordinator, res *lifecycle.TransitionResult) {
	target := res.Order.Status
	candidate := res.Order

	err := s.withRetry("cascade_order", func() error {
		err := s.orders.Save(ctx, &candidate)
		if !errors.Is(err, lifecycle.ErrConcurrencyConflict) {
			return err
		}

		fresh, gerr := s.orders.Get(ctx, candidate.ID)
		if gerr != nil {
			return gerr
		}
		if fresh.Status == target {
			candidate = *fresh
			return nil
		}
		next, terr := coord.TransitionOrder(*fresh, target)
		if terr != nil {
			candidate = *fresh
			return terr
		}
		candidate = next
		return err
	})

	switch {
	case err == nil:
		res.Order = candidate
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		res.Order = candidate
		res.OrderChanged = false
		res.CascadeErr = &lifecycle.CascadeError{OrderID: candidate.ID, Err: err}
	default:
		res.OrderChanged = false
		res.CascadeErr = &lifecycle.CascadeError{OrderID: candidate.ID, Err: err}
	}
}

// CreateReservation stores a new pending reservation.
func (s *Service) CreateReservation(ctx context.Context, r lifecycle.Reservation) (lifecycle.Reservation, error) {
	if strings.TrimSpace(r.CustomerName) == "" {
		return lifecycle.Reservation{}, fmt.Errorf("customer name is required: %w", ErrInvalidReservation)
	}
	if r.PartySize <= 0 {
		return lifecycle.Reservation{}, fmt.Errorf("party size must be > 0: %w", ErrInvalidReservation)
	}
	if r.ReservedFor.IsZero() {
		return lifecycle.Reservation{}, fmt.Errorf("reservation time is required: %w", ErrInvalidReservation)
	}

	now := s.now()
	if r.ID == uuid.Nil {
		r.ID = s.newID()
	}
	r.Status = reservationstatus.Statuses.Pending.Code()
	r.CreatedAt = now
	r.UpdatedAt = now

	if err := s.reservations.Create(ctx, &r); err != nil {
		return lifecycle.Reservation{}, fmt.Errorf("cannot store reservation: %w", err)
	}

	s.publish(ctx, event.ReservationsTopic, reservationEvent(event.EventReservationCreated, &r, ""))
	s.logger.Info("reservation created", "reservation_id", r.ID, "party_size", r.PartySize)
	return r, nil
}

func (s *Service) GetReservation(ctx context.Context, id lifecycle.ReservationID) (*lifecycle.Reservation, error) {
	return s.reservations.Get(ctx, id)
}

func (s *Service) TransitionReservation(ctx context.Context, id lifecycle.ReservationID, to string) (lifecycle.Reservation, error) {
	coord := s.coordinator(nil, nil)

	var (
		next     lifecycle.Reservation
		previous string
	)
	err := s.withRetry("transition_reservation", func() error {
		current, err := s.reservations.Get(ctx, id)
		if err != nil {
			return err
		}
		previous = current.Status
		next, err = coord.TransitionReservation(*current, to)
		if err != nil {
			return err
		}
		return s.reservations.Save(ctx, &next)
	})
	if err != nil {
		return lifecycle.Reservation{}, err
	}

	s.publish(ctx, event.ReservationsTopic, reservationEvent(event.EventReservationStatusChanged, &next, previous))
	s.logger.Info("reservation status changed", "reservation_id", id, "from", previous, "to", next.Status)
	return next, nil
}

// NextReservationStatuses lists the statuses the reservation may move to.
func (s *Service) NextReservationStatuses(ctx context.Context, id lifecycle.ReservationID) ([]string, error) {
	r, err := s.reservations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return lifecycle.ReservationMachine.Next(r.Status), nil
}

// Emit delivers intents raised outside the coordinator, such as overdue
// alerts.
func (s *Service) Emit(ctx context.Context, intents ...lifecycle.NotificationIntent) {
	s.emit(ctx, intents)
}

func (s *Service) emit(ctx context.Context, intents []lifecycle.NotificationIntent) {
	if s.notifier == nil {
		return
	}
	for _, n := range intents {
		if err := s.notifier.Emit(ctx, n); err != nil {
			s.logger.Error("cannot deliver notification", "kind", n.Kind, "order_id", n.OrderID, "error", err)
		}
	}
}

func (s *Service) publish(ctx context.Context, topic string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, marshal(payload)); err != nil {
		s.logger.Error("cannot publish event", "topic", topic, "error", err)
	}
}
