package kitchen

import (
	"context"
	"fmt"
	"sync"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/internal/menu"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
)

// MockOrderRepository stores copies and enforces versions like the Mongo repo.
type MockOrderRepository struct {
	mu         sync.Mutex
	orders     map[uuid.UUID]lifecycle.Order
	CreateFunc func(ctx context.Context, o *lifecycle.Order) error
	SaveFunc   func(ctx context.Context, o *lifecycle.Order) error
	GetFunc    func(ctx context.Context, id lifecycle.OrderID) (*lifecycle.Order, error)
	ListFunc   func(ctx context.Context, filter OrderFilter) ([]lifecycle.Order, error)
	deleted    []uuid.UUID
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[uuid.UUID]lifecycle.Order)}
}

func (m *MockOrderRepository) Create(ctx context.Context, o *lifecycle.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o.Version = 1
	m.orders[o.ID] = o.Clone()
	return nil
}

func (m *MockOrderRepository) Save(ctx context.Context, o *lifecycle.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, o)
	}
	return m.save(o)
}

func (m *MockOrderRepository) save(o *lifecycle.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[o.ID]
	if !ok {
		return fmt.Errorf("order %s: %w", o.ID, lifecycle.ErrNotFound)
	}
	if stored.Version != o.Version {
		return fmt.Errorf("order %s: %w", o.ID, lifecycle.ErrConcurrencyConflict)
	}
	o.Version++
	m.orders[o.ID] = o.Clone()
	return nil
}

func (m *MockOrderRepository) Get(ctx context.Context, id lifecycle.OrderID) (*lifecycle.Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, lifecycle.ErrNotFound)
	}
	c := o.Clone()
	return &c, nil
}

func (m *MockOrderRepository) Delete(ctx context.Context, id lifecycle.OrderID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *MockOrderRepository) List(ctx context.Context, filter OrderFilter) ([]lifecycle.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []lifecycle.Order
	for _, o := range m.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if !filter.IncludeArchived && o.Archived {
			continue
		}
		result = append(result, o.Clone())
	}
	return result, nil
}

// put stores an order as-is, bypassing version handling.
func (m *MockOrderRepository) put(o lifecycle.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o.Clone()
}

type MockTicketRepository struct {
	mu           sync.Mutex
	tickets      map[uuid.UUID]lifecycle.KitchenOrder
	CreateFunc   func(ctx context.Context, t *lifecycle.KitchenOrder) error
	SaveFunc     func(ctx context.Context, t *lifecycle.KitchenOrder) error
	FindByIDFunc func(ctx context.Context, id lifecycle.KitchenOrderID) (*lifecycle.KitchenOrder, error)
	ListFunc     func(ctx context.Context, filter TicketFilter) ([]lifecycle.KitchenOrder, error)
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{tickets: make(map[uuid.UUID]lifecycle.KitchenOrder)}
}

func (m *MockTicketRepository) Create(ctx context.Context, t *lifecycle.KitchenOrder) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t.Version = 1
	m.tickets[t.ID] = t.Clone()
	return nil
}

func (m *MockTicketRepository) Save(ctx context.Context, t *lifecycle.KitchenOrder) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, t)
	}
	return m.save(t)
}

func (m *MockTicketRepository) save(t *lifecycle.KitchenOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tickets[t.ID]
	if !ok {
		return fmt.Errorf("ticket %s: %w", t.ID, lifecycle.ErrNotFound)
	}
	if stored.Version != t.Version {
		return fmt.Errorf("ticket %s: %w", t.ID, lifecycle.ErrConcurrencyConflict)
	}
	t.Version++
	m.tickets[t.ID] = t.Clone()
	return nil
}

func (m *MockTicketRepository) FindByID(ctx context.Context, id lifecycle.KitchenOrderID) (*lifecycle.KitchenOrder, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, fmt.Errorf("ticket %s: %w", id, lifecycle.ErrNotFound)
	}
	c := t.Clone()
	return &c, nil
}

func (m *MockTicketRepository) FindByOrderID(ctx context.Context, id lifecycle.OrderID) (*lifecycle.KitchenOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.OrderID == id {
			c := t.Clone()
			return &c, nil
		}
	}
	return nil, fmt.Errorf("ticket for order %s: %w", id, lifecycle.ErrNotFound)
}

func (m *MockTicketRepository) List(ctx context.Context, filter TicketFilter) ([]lifecycle.KitchenOrder, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []lifecycle.KitchenOrder
	for _, t := range m.tickets {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.OrderID != nil && t.OrderID != *filter.OrderID {
			continue
		}
		if filter.Station != nil && !hasStation(t, *filter.Station) {
			continue
		}
		result = append(result, t.Clone())
	}
	return result, nil
}

func (m *MockTicketRepository) put(t lifecycle.KitchenOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[t.ID] = t.Clone()
}

func hasStation(t lifecycle.KitchenOrder, station string) bool {
	for _, it := range t.Items {
		if it.Station == station {
			return true
		}
	}
	return false
}

type MockReservationRepository struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]lifecycle.Reservation
	CreateFunc   func(ctx context.Context, r *lifecycle.Reservation) error
	SaveFunc     func(ctx context.Context, r *lifecycle.Reservation) error
}

func NewMockReservationRepository() *MockReservationRepository {
	return &MockReservationRepository{reservations: make(map[uuid.UUID]lifecycle.Reservation)}
}

func (m *MockReservationRepository) Create(ctx context.Context, r *lifecycle.Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r.Version = 1
	m.reservations[r.ID] = *r
	return nil
}

func (m *MockReservationRepository) Save(ctx context.Context, r *lifecycle.Reservation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reservations[r.ID]
	if !ok {
		return fmt.Errorf("reservation %s: %w", r.ID, lifecycle.ErrNotFound)
	}
	if stored.Version != r.Version {
		return fmt.Errorf("reservation %s: %w", r.ID, lifecycle.ErrConcurrencyConflict)
	}
	r.Version++
	m.reservations[r.ID] = *r
	return nil
}

func (m *MockReservationRepository) Get(ctx context.Context, id lifecycle.ReservationID) (*lifecycle.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %s: %w", id, lifecycle.ErrNotFound)
	}
	return &r, nil
}

type publishedMessage struct {
	Topic string
	Data  []byte
}

type MockPublisher struct {
	mu          sync.Mutex
	messages    []publishedMessage
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, publishedMessage{Topic: topic, Data: msg})
	return nil
}

func (m *MockPublisher) topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		out = append(out, msg.Topic)
	}
	return out
}

type MockStreamConsumer struct {
	messages  []events.StreamMessage
	FetchFunc func(ctx context.Context, limit int) ([]events.StreamMessage, error)
}

func (m *MockStreamConsumer) Fetch(ctx context.Context, limit int) ([]events.StreamMessage, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, limit)
	}
	return m.messages, nil
}

func (m *MockStreamConsumer) SubscribeStream(ctx context.Context, handler events.HandlerFunc) error {
	return nil
}

type MockNotifier struct {
	mu       sync.Mutex
	intents  []lifecycle.NotificationIntent
	EmitFunc func(ctx context.Context, n lifecycle.NotificationIntent) error
}

func (m *MockNotifier) Emit(ctx context.Context, n lifecycle.NotificationIntent) error {
	m.mu.Lock()
	m.intents = append(m.intents, n)
	m.mu.Unlock()
	if m.EmitFunc != nil {
		return m.EmitFunc(ctx, n)
	}
	return nil
}

func (m *MockNotifier) kinds() []lifecycle.NotificationKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]lifecycle.NotificationKind, 0, len(m.intents))
	for _, n := range m.intents {
		out = append(out, n.Kind)
	}
	return out
}

type staticSnapshotter struct {
	catalog *menu.Catalog
	roster  *menu.Roster
}

func (s staticSnapshotter) Snapshot(ctx context.Context) (*menu.Catalog, *menu.Roster) {
	return s.catalog, s.roster
}
