package kitchen

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/internal/menu"
	"github.com/appetiteclub/lifecycle/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	burgerID = uuid.MustParse("6f1c2b9e-0000-4000-8000-0000000000a1")
	friesID  = uuid.MustParse("6f1c2b9e-0000-4000-8000-0000000000a2")
)

type serviceFixture struct {
	svc          *Service
	orders       *MockOrderRepository
	tickets      *MockTicketRepository
	reservations *MockReservationRepository
	publisher    *MockPublisher
	notifier     *MockNotifier
	cache        *TicketStateCache
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	catalog := menu.NewCatalog([]menu.MenuItem{
		{ID: burgerID, Name: "Burger", Station: "grill", PrepMinutes: 10, Price: decimal.RequireFromString("12.50"), Active: true},
		{ID: friesID, Name: "Fries", Station: "fry", PrepMinutes: 20, Price: decimal.RequireFromString("4.25"), Active: true},
	})
	roster := menu.NewRoster([]menu.Staff{
		{ID: "s1", Name: "Ana", Role: menu.RoleChef, Active: true},
	}, nil)

	f := &serviceFixture{
		orders:       NewMockOrderRepository(),
		tickets:      NewMockTicketRepository(),
		reservations: NewMockReservationRepository(),
		publisher:    &MockPublisher{},
		notifier:     &MockNotifier{},
		cache:        NewTicketStateCache(nil, nil, nil),
	}
	f.svc = NewService(ServiceDeps{
		Orders:       f.orders,
		Tickets:      f.tickets,
		Reservations: f.reservations,
		Snapshots:    staticSnapshotter{catalog: catalog, roster: roster},
		Cache:        f.cache,
		Publisher:    f.publisher,
		Notifier:     f.notifier,
		Clock:        func() time.Time { return fixtureTime },
		MaxRetries:   2,
		Logger:       aqm.NewNoopLogger(),
	})
	return f
}

func burgerAndFries() lifecycle.Order {
	return lifecycle.Order{
		TableNumber: "T7",
		ServerName:  "Sam",
		GuestCount:  2,
		Items: []lifecycle.LineItem{
			{MenuItemID: burgerID, Quantity: 1},
			{MenuItemID: friesID, Quantity: 1},
		},
	}
}

func (f *serviceFixture) place(t *testing.T) lifecycle.PlaceResult {
	t.Helper()
	res, err := f.svc.PlaceOrder(context.Background(), burgerAndFries())
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	return res
}

func (f *serviceFixture) move(t *testing.T, ticket lifecycle.KitchenOrder, idx int, to string) lifecycle.TransitionResult {
	t.Helper()
	res, err := f.svc.TransitionItem(context.Background(), ticket.ID, lifecycle.ItemTransition{
		ItemID: ticket.Items[idx].ID,
		Status: to,
	})
	if err != nil {
		t.Fatalf("TransitionItem(%d -> %s) error = %v", idx, to, err)
	}
	return res
}

func TestServicePlaceOrder(t *testing.T) {
	f := newServiceFixture(t)

	res := f.place(t)

	if !res.Order.Total.Equal(decimal.RequireFromString("16.75")) {
		t.Errorf("Total = %s, want 16.75", res.Order.Total)
	}
	if res.Order.Items[0].Name != "Burger" {
		t.Errorf("line name = %q, want filled from menu", res.Order.Items[0].Name)
	}
	if res.Order.Status != "pending" || res.Order.Version != 1 {
		t.Errorf("order status/version = %s/%d, want pending/1", res.Order.Status, res.Order.Version)
	}
	if want := fixtureTime.Add(20 * time.Minute); !res.KitchenOrder.EstimatedDeliveryTime.Equal(want) {
		t.Errorf("ETA = %v, want %v", res.KitchenOrder.EstimatedDeliveryTime, want)
	}
	for _, it := range res.KitchenOrder.Items {
		if it.Chef != "Ana" {
			t.Errorf("item %s chef = %q, want Ana", it.Name, it.Chef)
		}
	}

	if _, err := f.orders.Get(context.Background(), res.Order.ID); err != nil {
		t.Errorf("order not stored: %v", err)
	}
	if _, err := f.tickets.FindByID(context.Background(), res.KitchenOrder.ID); err != nil {
		t.Errorf("ticket not stored: %v", err)
	}
	if _, ok := f.cache.Get(res.KitchenOrder.ID); !ok {
		t.Error("ticket not cached")
	}

	wantTopics := []string{event.KitchenTicketsTopic, event.OrderStatusTopic}
	if got := f.publisher.topics(); !reflect.DeepEqual(got, wantTopics) {
		t.Errorf("published topics = %v, want %v", got, wantTopics)
	}
	if got := f.notifier.kinds(); !reflect.DeepEqual(got, []lifecycle.NotificationKind{lifecycle.NotificationNewOrder}) {
		t.Errorf("notifications = %v, want [order.new]", got)
	}
}

func TestServicePlaceOrderKeepsClientPrices(t *testing.T) {
	f := newServiceFixture(t)

	order := burgerAndFries()
	order.Items[0].Name = "Smash burger"
	order.Items[0].UnitPrice = decimal.RequireFromString("10.00")

	res, err := f.svc.PlaceOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if res.Order.Items[0].Name != "Smash burger" {
		t.Errorf("name = %q, want client value", res.Order.Items[0].Name)
	}
	if !res.Order.Total.Equal(decimal.RequireFromString("14.25")) {
		t.Errorf("Total = %s, want 14.25", res.Order.Total)
	}
	if order.Items[1].Name != "" {
		t.Error("PlaceOrder() mutated the caller's line items")
	}
}

func TestServicePlaceOrderValidation(t *testing.T) {
	tests := []struct {
		name  string
		order lifecycle.Order
		want  error
	}{
		{name: "emptyOrder", order: lifecycle.Order{TableNumber: "T1"}, want: lifecycle.ErrEmptyOrder},
		{
			name: "zeroQuantity",
			order: lifecycle.Order{Items: []lifecycle.LineItem{
				{MenuItemID: burgerID, Quantity: 0},
			}},
			want: lifecycle.ErrInvalidLineItem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			_, err := f.svc.PlaceOrder(context.Background(), tt.order)
			if !errors.Is(err, tt.want) {
				t.Fatalf("PlaceOrder() error = %v, want %v", err, tt.want)
			}
			if len(f.orders.orders) != 0 || len(f.tickets.tickets) != 0 {
				t.Error("rejected order was stored")
			}
			if len(f.publisher.topics()) != 0 {
				t.Error("rejected order was published")
			}
		})
	}
}

func TestServicePlaceOrderRollsBackOnTicketFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.tickets.CreateFunc = func(ctx context.Context, tk *lifecycle.KitchenOrder) error {
		return errors.New("insert failed")
	}

	_, err := f.svc.PlaceOrder(context.Background(), burgerAndFries())
	if err == nil {
		t.Fatal("PlaceOrder() error = nil, want ticket failure")
	}
	if len(f.orders.orders) != 0 || len(f.orders.deleted) != 1 {
		t.Errorf("order not rolled back: stored=%d deleted=%d", len(f.orders.orders), len(f.orders.deleted))
	}
	if len(f.notifier.kinds()) != 0 {
		t.Error("notification emitted for a failed placement")
	}
}

func TestServiceTransitionItemLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	placed := f.place(t)
	ticket := placed.KitchenOrder
	ctx := context.Background()

	res := f.move(t, ticket, 0, "preparing")
	if !res.OrderChanged || res.Order.Status != "preparing" {
		t.Fatalf("order = %s (changed %v), want preparing", res.Order.Status, res.OrderChanged)
	}
	if res.KitchenOrder.Items[0].StartTime == nil {
		t.Error("StartTime not stamped")
	}

	res = f.move(t, ticket, 1, "preparing")
	if res.OrderChanged {
		t.Error("order changed while aggregate stayed preparing")
	}

	f.move(t, ticket, 0, "ready")
	res = f.move(t, ticket, 1, "ready")
	if res.KitchenOrder.Status != "ready" || res.Order.Status != "ready" {
		t.Fatalf("ticket/order = %s/%s, want ready/ready", res.KitchenOrder.Status, res.Order.Status)
	}
	if len(res.Notifications) != 1 || res.Notifications[0].Kind != lifecycle.NotificationOrderReady {
		t.Errorf("notifications = %+v, want one order.ready", res.Notifications)
	}

	f.move(t, ticket, 0, "delivered")
	res = f.move(t, ticket, 1, "delivered")
	if res.Order.Status != "delivered" || !res.Order.Archived {
		t.Errorf("order = %s archived=%v, want delivered and archived", res.Order.Status, res.Order.Archived)
	}
	if _, ok := f.cache.Get(ticket.ID); ok {
		t.Error("delivered ticket still cached")
	}

	stored, _ := f.orders.Get(ctx, placed.Order.ID)
	if stored.Status != "delivered" {
		t.Errorf("stored order = %s, want delivered", stored.Status)
	}

	want := []lifecycle.NotificationKind{lifecycle.NotificationNewOrder, lifecycle.NotificationOrderReady}
	if got := f.notifier.kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("notifications = %v, want %v", got, want)
	}
}

func TestServiceTransitionItemErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *serviceFixture, ticket lifecycle.KitchenOrder) (lifecycle.KitchenOrderID, lifecycle.ItemTransition)
		want  error
	}{
		{
			name: "skipsState",
			setup: func(f *serviceFixture, tk lifecycle.KitchenOrder) (lifecycle.KitchenOrderID, lifecycle.ItemTransition) {
				return tk.ID, lifecycle.ItemTransition{ItemID: tk.Items[0].ID, Status: "ready"}
			},
			want: lifecycle.ErrInvalidTransition,
		},
		{
			name: "unknownTicket",
			setup: func(f *serviceFixture, tk lifecycle.KitchenOrder) (lifecycle.KitchenOrderID, lifecycle.ItemTransition) {
				return uuid.New(), lifecycle.ItemTransition{ItemID: tk.Items[0].ID, Status: "preparing"}
			},
			want: lifecycle.ErrNotFound,
		},
		{
			name: "unknownItem",
			setup: func(f *serviceFixture, tk lifecycle.KitchenOrder) (lifecycle.KitchenOrderID, lifecycle.ItemTransition) {
				return tk.ID, lifecycle.ItemTransition{ItemID: uuid.New(), Status: "preparing"}
			},
			want: lifecycle.ErrItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			ticket := f.place(t).KitchenOrder
			before := len(f.publisher.topics())

			id, req := tt.setup(f, ticket)
			_, err := f.svc.TransitionItem(context.Background(), id, req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("TransitionItem() error = %v, want %v", err, tt.want)
			}
			if len(f.publisher.topics()) != before {
				t.Error("failed transition was published")
			}
		})
	}
}

func TestServiceTransitionItemRetriesOnConflict(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.place(t).KitchenOrder

	var saves int
	f.tickets.SaveFunc = func(ctx context.Context, tk *lifecycle.KitchenOrder) error {
		saves++
		if saves == 1 {
			return lifecycle.ErrConcurrencyConflict
		}
		return f.tickets.save(tk)
	}

	res := f.move(t, ticket, 0, "preparing")
	if saves != 2 {
		t.Errorf("saves = %d, want 2", saves)
	}
	if res.KitchenOrder.Version != 2 {
		t.Errorf("Version = %d, want 2", res.KitchenOrder.Version)
	}
}

func TestServiceTransitionItemConflictExhausted(t *testing.T) {
	f := newServiceFixture(t)
	ticket := f.place(t).KitchenOrder

	var saves int
	f.tickets.SaveFunc = func(ctx context.Context, tk *lifecycle.KitchenOrder) error {
		saves++
		return lifecycle.ErrConcurrencyConflict
	}

	_, err := f.svc.TransitionItem(context.Background(), ticket.ID, lifecycle.ItemTransition{
		ItemID: ticket.Items[0].ID,
		Status: "preparing",
	})
	if !errors.Is(err, lifecycle.ErrConcurrencyConflict) {
		t.Fatalf("error = %v, want ErrConcurrencyConflict", err)
	}
	if saves != 3 {
		t.Errorf("saves = %d, want 3 (one attempt plus two retries)", saves)
	}
}

func TestServiceCascadeConflict(t *testing.T) {
	tests := []struct {
		name        string
		concurrent  func(o lifecycle.Order) lifecycle.Order
		wantStatus  string
		wantPartial bool
		wantGuests  int
	}{
		{
			name: "reappliedOnFreshOrder",
			concurrent: func(o lifecycle.Order) lifecycle.Order {
				o.GuestCount = 5
				return o
			},
			wantStatus: "preparing",
			wantGuests: 5,
		},
		{
			name: "alreadyMovedByOtherWriter",
			concurrent: func(o lifecycle.Order) lifecycle.Order {
				o.Status = "preparing"
				return o
			},
			wantStatus: "preparing",
			wantGuests: 2,
		},
		{
			name: "orderCancelledMeanwhile",
			concurrent: func(o lifecycle.Order) lifecycle.Order {
				o.Status = "cancelled"
				return o
			},
			wantStatus:  "cancelled",
			wantPartial: true,
			wantGuests:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			placed := f.place(t)

			var saves int
			f.orders.SaveFunc = func(ctx context.Context, o *lifecycle.Order) error {
				saves++
				if saves == 1 {
					current, _ := f.orders.Get(ctx, o.ID)
					other := tt.concurrent(*current)
					other.Version++
					f.orders.put(other)
				}
				return f.orders.save(o)
			}

			res := f.move(t, placed.KitchenOrder, 0, "preparing")

			if res.Partial() != tt.wantPartial {
				t.Fatalf("Partial() = %v (%v), want %v", res.Partial(), res.CascadeErr, tt.wantPartial)
			}
			if tt.wantPartial && !errors.Is(res.CascadeErr, lifecycle.ErrInvalidTransition) {
				t.Errorf("CascadeErr = %v, want invalid transition", res.CascadeErr)
			}
			if res.KitchenOrder.Items[0].Status != "preparing" {
				t.Error("item change was rolled back")
			}

			stored, _ := f.orders.Get(context.Background(), placed.Order.ID)
			if stored.Status != tt.wantStatus {
				t.Errorf("stored order = %s, want %s", stored.Status, tt.wantStatus)
			}
			if stored.GuestCount != tt.wantGuests {
				t.Errorf("GuestCount = %d, want %d", stored.GuestCount, tt.wantGuests)
			}
			if res.Order.Status != tt.wantStatus {
				t.Errorf("result order = %s, want %s", res.Order.Status, tt.wantStatus)
			}
		})
	}
}

func TestServiceCascadeOnCancelledOrderIsPartial(t *testing.T) {
	f := newServiceFixture(t)
	placed := f.place(t)

	if _, err := f.svc.CancelOrder(context.Background(), placed.Order.ID); err != nil {
		t.Fatalf("CancelOrder() error = %v", err)
	}

	res := f.move(t, placed.KitchenOrder, 0, "preparing")
	if res.Partial() {
		t.Fatalf("preparing cascade should be skipped for a cancelled order, got %v", res.CascadeErr)
	}
	f.move(t, placed.KitchenOrder, 1, "preparing")
	f.move(t, placed.KitchenOrder, 0, "ready")
	res = f.move(t, placed.KitchenOrder, 1, "ready")

	if !res.Partial() || !errors.Is(res.CascadeErr, lifecycle.ErrInvalidTransition) {
		t.Fatalf("CascadeErr = %v, want invalid transition", res.CascadeErr)
	}
	if res.KitchenOrder.Status != "ready" {
		t.Errorf("ticket = %s, want ready", res.KitchenOrder.Status)
	}
	stored, _ := f.orders.Get(context.Background(), placed.Order.ID)
	if stored.Status != "cancelled" {
		t.Errorf("order = %s, want cancelled", stored.Status)
	}
}

func TestServiceTransitionOrder(t *testing.T) {
	tests := []struct {
		name    string
		to      string
		wantErr error
	}{
		{name: "cancelPending", to: "cancelled"},
		{name: "pendingToReady", to: "ready", wantErr: lifecycle.ErrInvalidTransition},
		{name: "unknownStatus", to: "eaten", wantErr: lifecycle.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			placed := f.place(t)

			got, err := f.svc.TransitionOrder(context.Background(), placed.Order.ID, tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("TransitionOrder() error = %v", err)
			}
			if got.Status != tt.to || got.Version != 2 {
				t.Errorf("order = %s v%d, want %s v2", got.Status, got.Version, tt.to)
			}
		})
	}
}

func TestServiceTransitionOrderNotFound(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.CancelOrder(context.Background(), uuid.New())
	if !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestServiceCreateReservation(t *testing.T) {
	valid := lifecycle.Reservation{CustomerName: "Lee", PartySize: 4, ReservedFor: fixtureTime.Add(24 * time.Hour)}

	tests := []struct {
		name    string
		mutate  func(r *lifecycle.Reservation)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *lifecycle.Reservation) {}},
		{name: "missingName", mutate: func(r *lifecycle.Reservation) { r.CustomerName = "  " }, wantErr: true},
		{name: "zeroPartySize", mutate: func(r *lifecycle.Reservation) { r.PartySize = 0 }, wantErr: true},
		{name: "missingTime", mutate: func(r *lifecycle.Reservation) { r.ReservedFor = time.Time{} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			in := valid
			tt.mutate(&in)

			got, err := f.svc.CreateReservation(context.Background(), in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidReservation) {
					t.Errorf("error = %v, want ErrInvalidReservation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateReservation() error = %v", err)
			}
			if got.Status != "pending" || got.ID == uuid.Nil {
				t.Errorf("reservation = %+v, want pending with id", got)
			}
			if topics := f.publisher.topics(); len(topics) != 1 || topics[0] != event.ReservationsTopic {
				t.Errorf("published = %v", topics)
			}
		})
	}
}

func TestServiceTransitionReservation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateReservation(ctx, lifecycle.Reservation{CustomerName: "Lee", PartySize: 2, ReservedFor: fixtureTime})
	if err != nil {
		t.Fatalf("CreateReservation() error = %v", err)
	}

	if _, err := f.svc.TransitionReservation(ctx, r.ID, "seated"); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("pending -> seated error = %v, want invalid transition", err)
	}

	for _, to := range []string{"confirmed", "seated", "completed"} {
		got, err := f.svc.TransitionReservation(ctx, r.ID, to)
		if err != nil {
			t.Fatalf("-> %s error = %v", to, err)
		}
		if got.Status != to {
			t.Errorf("status = %s, want %s", got.Status, to)
		}
	}

	next, err := f.svc.NextReservationStatuses(ctx, r.ID)
	if err != nil {
		t.Fatalf("NextReservationStatuses() error = %v", err)
	}
	if len(next) != 0 {
		t.Errorf("next after completed = %v, want none", next)
	}
}

func TestServiceNextReservationStatuses(t *testing.T) {
	f := newServiceFixture(t)
	r, _ := f.svc.CreateReservation(context.Background(), lifecycle.Reservation{CustomerName: "Lee", PartySize: 2, ReservedFor: fixtureTime})

	got, err := f.svc.NextReservationStatuses(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("NextReservationStatuses() error = %v", err)
	}
	if want := []string{"confirmed", "cancelled"}; !reflect.DeepEqual(got, want) {
		t.Errorf("next = %v, want %v", got, want)
	}
}

func TestServiceOverdueTickets(t *testing.T) {
	late := newTestTicket("grill")
	fresh := newTestTicket("fry")
	fresh.EstimatedDeliveryTime = fixtureTime.Add(2 * time.Hour)

	tests := []struct {
		name      string
		withCache bool
	}{
		{name: "fromCache", withCache: true},
		{name: "fromRepository"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tickets := NewMockTicketRepository()
			tickets.put(late)
			tickets.put(fresh)

			deps := ServiceDeps{
				Orders:  NewMockOrderRepository(),
				Tickets: tickets,
				Clock:   func() time.Time { return fixtureTime.Add(time.Hour) },
			}
			if tt.withCache {
				deps.Cache = NewTicketStateCache(nil, tickets, nil)
				if err := deps.Cache.Warm(context.Background()); err != nil {
					t.Fatalf("Warm() error = %v", err)
				}
			}

			got, err := NewService(deps).OverdueTickets(context.Background())
			if err != nil {
				t.Fatalf("OverdueTickets() error = %v", err)
			}
			if len(got) != 1 || got[0].ID != late.ID {
				t.Errorf("OverdueTickets() = %d tickets, want only the late one", len(got))
			}
		})
	}
}

func TestServiceNotifierErrorDoesNotFail(t *testing.T) {
	f := newServiceFixture(t)
	f.notifier.EmitFunc = func(ctx context.Context, n lifecycle.NotificationIntent) error {
		return errors.New("hub offline")
	}
	f.publisher.PublishFunc = func(ctx context.Context, topic string, msg []byte) error {
		return errors.New("nats offline")
	}

	if _, err := f.svc.PlaceOrder(context.Background(), burgerAndFries()); err != nil {
		t.Errorf("PlaceOrder() error = %v, want delivery failures to be logged only", err)
	}
}
