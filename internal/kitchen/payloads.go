package kitchen

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/pkg/event"
	"github.com/google/uuid"
)

func ticketMetadata(eventType string, t *lifecycle.KitchenOrder, at time.Time) event.KitchenTicketEventMetadata {
	return event.KitchenTicketEventMetadata{
		EventType:   eventType,
		OccurredAt:  at,
		TicketID:    t.ID.String(),
		OrderID:     t.OrderID.String(),
		TableNumber: t.TableNumber,
		Priority:    t.Priority,
	}
}

func ticketItemPayload(it lifecycle.KitchenOrderItem) event.KitchenTicketItem {
	return event.KitchenTicketItem{
		ItemID:        it.ID.String(),
		LineItemID:    it.LineItemID.String(),
		MenuItemID:    it.MenuItemID.String(),
		MenuItemName:  it.Name,
		Quantity:      it.Quantity,
		Status:        it.Status,
		Station:       it.Station,
		Chef:          it.Chef,
		Notes:         it.ModificationNotes,
		AllergenAlert: it.AllergenAlert,
		StartedAt:     it.StartTime,
		FinishedAt:    it.CompletionTime,
		DeliveredAt:   it.DeliveredAt,
	}
}

func ticketCreatedEvent(t *lifecycle.KitchenOrder) event.KitchenTicketCreatedEvent {
	items := make([]event.KitchenTicketItem, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, ticketItemPayload(it))
	}
	return event.KitchenTicketCreatedEvent{
		KitchenTicketEventMetadata: ticketMetadata(event.EventKitchenTicketCreated, t, t.CreatedAt),
		Status:                     t.Status,
		ServerName:                 t.ServerName,
		Notes:                      t.Notes,
		EstimatedDeliveryTime:      t.EstimatedDeliveryTime,
		Items:                      items,
	}
}

func itemChangedEvent(t *lifecycle.KitchenOrder, idx int, previousItem, previousStatus string) event.KitchenTicketStatusChangedEvent {
	return event.KitchenTicketStatusChangedEvent{
		KitchenTicketEventMetadata: ticketMetadata(event.EventKitchenTicketStatusChange, t, t.UpdatedAt),
		NewStatus:                  t.Status,
		PreviousStatus:             previousStatus,
		Item:                       ticketItemPayload(t.Items[idx]),
		PreviousItem:               previousItem,
	}
}

func ticketFromCreatedEvent(evt event.KitchenTicketCreatedEvent) (*lifecycle.KitchenOrder, error) {
	id, err := uuid.Parse(evt.TicketID)
	if err != nil {
		return nil, fmt.Errorf("ticket_id: %w", err)
	}
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		return nil, fmt.Errorf("order_id: %w", err)
	}

	t := &lifecycle.KitchenOrder{
		ID:                    id,
		OrderID:               orderID,
		TableNumber:           evt.TableNumber,
		ServerName:            evt.ServerName,
		Status:                evt.Status,
		Priority:              evt.Priority,
		Coursing:              lifecycle.CoursingNone,
		Notes:                 evt.Notes,
		CreatedAt:             evt.OccurredAt,
		UpdatedAt:             evt.OccurredAt,
		EstimatedDeliveryTime: evt.EstimatedDeliveryTime,
	}
	for _, p := range evt.Items {
		it, err := itemFromPayload(p)
		if err != nil {
			return nil, err
		}
		t.Items = append(t.Items, it)
	}
	return t, nil
}

func itemFromPayload(p event.KitchenTicketItem) (lifecycle.KitchenOrderItem, error) {
	id, err := uuid.Parse(p.ItemID)
	if err != nil {
		return lifecycle.KitchenOrderItem{}, fmt.Errorf("item_id: %w", err)
	}
	lineID, _ := uuid.Parse(p.LineItemID)
	menuID, _ := uuid.Parse(p.MenuItemID)
	return lifecycle.KitchenOrderItem{
		ID:                id,
		LineItemID:        lineID,
		MenuItemID:        menuID,
		Name:              p.MenuItemName,
		Quantity:          p.Quantity,
		Status:            p.Status,
		Station:           p.Station,
		Chef:              p.Chef,
		StartTime:         p.StartedAt,
		CompletionTime:    p.FinishedAt,
		DeliveredAt:       p.DeliveredAt,
		ModificationNotes: p.Notes,
		AllergenAlert:     p.AllergenAlert,
	}, nil
}

func orderStatusEvent(o *lifecycle.Order, previous string, at time.Time) event.OrderStatusChangedEvent {
	return event.OrderStatusChangedEvent{
		EventType:      event.EventOrderStatusChanged,
		OccurredAt:     at,
		OrderID:        o.ID.String(),
		TableNumber:    o.TableNumber,
		NewStatus:      o.Status,
		PreviousStatus: previous,
		Archived:       o.Archived,
		Total:          o.Total.String(),
	}
}

func reservationEvent(eventType string, r *lifecycle.Reservation, previous string) event.ReservationEvent {
	return event.ReservationEvent{
		EventType:      eventType,
		OccurredAt:     r.UpdatedAt,
		ReservationID:  r.ID.String(),
		CustomerName:   r.CustomerName,
		PartySize:      r.PartySize,
		TableNumber:    r.TableNumber,
		ReservedFor:    r.ReservedFor,
		NewStatus:      r.Status,
		PreviousStatus: previous,
	}
}

func notificationEvent(n lifecycle.NotificationIntent) event.NotificationEvent {
	evt := event.NotificationEvent{
		EventType:   string(n.Kind),
		OccurredAt:  n.OccurredAt,
		OrderID:     n.OrderID.String(),
		TableNumber: n.TableNumber,
	}
	if n.KitchenOrderID != uuid.Nil {
		evt.KitchenOrderID = n.KitchenOrderID.String()
	}
	return evt
}

func marshal(v interface{}) []byte {
	b, _ := json.Marshal(v)
	return b
}
