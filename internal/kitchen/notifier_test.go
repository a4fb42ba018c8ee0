package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/pkg/event"
	"github.com/google/uuid"
)

func TestEventNotifierEmit(t *testing.T) {
	publisher := &MockPublisher{}
	notifier := NewEventNotifier(publisher)

	ticket := newTestTicket("grill")
	intent := lifecycle.OrderReady(ticket, fixtureTime)

	if err := notifier.Emit(context.Background(), intent); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if len(publisher.messages) != 1 || publisher.messages[0].Topic != event.NotificationsTopic {
		t.Fatalf("published = %+v, want one message on %s", publisher.messages, event.NotificationsTopic)
	}

	var got event.NotificationEvent
	if err := json.Unmarshal(publisher.messages[0].Data, &got); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if got.EventType != "order.ready" || got.OrderID != ticket.OrderID.String() || got.KitchenOrderID != ticket.ID.String() {
		t.Errorf("payload = %+v", got)
	}
}

func TestEventNotifierEmitErrors(t *testing.T) {
	tests := []struct {
		name      string
		publisher *MockPublisher
		wantErr   bool
	}{
		{name: "nilPublisher"},
		{
			name: "publishFails",
			publisher: &MockPublisher{PublishFunc: func(ctx context.Context, topic string, msg []byte) error {
				return errors.New("nats down")
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &EventNotifier{}
			if tt.publisher != nil {
				n = NewEventNotifier(tt.publisher)
			}
			err := n.Emit(context.Background(), lifecycle.NotificationIntent{Kind: lifecycle.NotificationNewOrder, OrderID: uuid.New()})
			if (err != nil) != tt.wantErr {
				t.Errorf("Emit() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMultiNotifier(t *testing.T) {
	first := &MockNotifier{EmitFunc: func(ctx context.Context, n lifecycle.NotificationIntent) error {
		return errors.New("first failed")
	}}
	second := &MockNotifier{}

	multi := MultiNotifier{first, nil, second}
	err := multi.Emit(context.Background(), lifecycle.NotificationIntent{Kind: lifecycle.NotificationOrderDelayed})

	if err == nil || err.Error() != "first failed" {
		t.Errorf("Emit() error = %v, want first failed", err)
	}
	if len(second.kinds()) != 1 {
		t.Error("second notifier skipped after first failed")
	}
}
