package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LifecycleService is the part of kitchen.Service driven by inbound events.
type LifecycleService interface {
	PlaceOrder(ctx context.Context, order lifecycle.Order) (lifecycle.PlaceResult, error)
	GetOrder(ctx context.Context, id lifecycle.OrderID) (*lifecycle.Order, error)
	CancelOrder(ctx context.Context, id lifecycle.OrderID) (lifecycle.Order, error)
	TransitionItem(ctx context.Context, ticketID lifecycle.KitchenOrderID, req lifecycle.ItemTransition) (lifecycle.TransitionResult, error)
}

// OrderLifecycleSubscriber consumes front-of-house events on
// orders.lifecycle and applies them through the service. Malformed or
// rejected events are logged and acknowledged; infrastructure errors are
// returned so the transport can redeliver.
type OrderLifecycleSubscriber struct {
	subscriber events.Subscriber
	service    LifecycleService
	logger     aqm.Logger
}

func NewOrderLifecycleSubscriber(subscriber events.Subscriber, service LifecycleService, logger aqm.Logger) *OrderLifecycleSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &OrderLifecycleSubscriber{
		subscriber: subscriber,
		service:    service,
		logger:     logger,
	}
}

func (s *OrderLifecycleSubscriber) Start(ctx context.Context) error {
	s.logger.Info("Starting OrderLifecycleSubscriber", "topic", event.OrdersLifecycleTopic)

	if err := s.subscriber.Subscribe(ctx, event.OrdersLifecycleTopic, s.handleEvent); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", event.OrdersLifecycleTopic, err)
	}

	s.logger.Info("OrderLifecycleSubscriber started successfully")
	return nil
}

func (s *OrderLifecycleSubscriber) Stop(ctx context.Context) error {
	return nil
}

func (s *OrderLifecycleSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt event.OrderLifecycleEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Errorf("Failed to unmarshal event: %v", err)
		return nil
	}

	switch evt.EventType {
	case event.EventOrderPlaced:
		return s.handlePlaced(ctx, &evt)
	case event.EventOrderCancelled:
		return s.handleCancelled(ctx, &evt)
	case event.EventItemStatusRequested:
		return s.handleItemStatus(ctx, &evt)
	default:
		s.logger.Infof("Unknown event type: %s", evt.EventType)
	}
	return nil
}

func (s *OrderLifecycleSubscriber) handlePlaced(ctx context.Context, evt *event.OrderLifecycleEvent) error {
	order, err := orderFromEvent(evt)
	if err != nil {
		s.logger.Errorf("Invalid order.placed event: %v", err)
		return nil
	}

	if order.ID != uuid.Nil {
		if _, err := s.service.GetOrder(ctx, order.ID); err == nil {
			s.logger.Debug("order already placed, skipping", "order_id", order.ID)
			return nil
		} else if !errors.Is(err, lifecycle.ErrNotFound) {
			return err
		}
	}

	res, err := s.service.PlaceOrder(ctx, order)
	if err != nil {
		return s.resolve("order.placed", err)
	}

	s.logger.Infof("Placed order %s with ticket %s", res.Order.ID, res.KitchenOrder.ID)
	return nil
}

func (s *OrderLifecycleSubscriber) handleCancelled(ctx context.Context, evt *event.OrderLifecycleEvent) error {
	id, err := uuid.Parse(evt.OrderID)
	if err != nil {
		s.logger.Errorf("Invalid order_id: %v", err)
		return nil
	}

	if _, err := s.service.CancelOrder(ctx, id); err != nil {
		return s.resolve("order.cancelled", err)
	}
	return nil
}

func (s *OrderLifecycleSubscriber) handleItemStatus(ctx context.Context, evt *event.OrderLifecycleEvent) error {
	ticketID, err := uuid.Parse(evt.TicketID)
	if err != nil {
		s.logger.Errorf("Invalid ticket_id: %v", err)
		return nil
	}
	itemID, err := uuid.Parse(evt.ItemID)
	if err != nil {
		s.logger.Errorf("Invalid item_id: %v", err)
		return nil
	}

	res, err := s.service.TransitionItem(ctx, ticketID, lifecycle.ItemTransition{
		ItemID: itemID,
		Status: evt.Status,
		Chef:   evt.Chef,
	})
	if err != nil {
		return s.resolve(evt.EventType, err)
	}
	if res.Partial() {
		s.logger.Info("item status applied without order cascade", "ticket_id", ticketID, "error", res.CascadeErr)
	}
	return nil
}

// resolve drops domain rejections and passes the rest back for redelivery.
func (s *OrderLifecycleSubscriber) resolve(eventType string, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrEmptyOrder),
		errors.Is(err, lifecycle.ErrInvalidLineItem),
		errors.Is(err, lifecycle.ErrNotFound),
		errors.Is(err, lifecycle.ErrItemNotFound),
		errors.Is(err, lifecycle.ErrTicketMismatch),
		errors.Is(err, lifecycle.ErrAggregateRegression):
		s.logger.Info("event rejected", "event_type", eventType, "error", err)
		return nil
	default:
		s.logger.Error("event failed", "event_type", eventType, "error", err)
		return err
	}
}

func orderFromEvent(evt *event.OrderLifecycleEvent) (lifecycle.Order, error) {
	order := lifecycle.Order{
		TableNumber:         evt.TableNumber,
		ServerName:          evt.ServerName,
		GuestCount:          evt.GuestCount,
		SpecialInstructions: evt.SpecialInstructions,
	}
	if evt.OrderID != "" {
		id, err := uuid.Parse(evt.OrderID)
		if err != nil {
			return lifecycle.Order{}, fmt.Errorf("order_id: %w", err)
		}
		order.ID = id
	}

	for _, line := range evt.Items {
		menuID, err := uuid.Parse(line.MenuItemID)
		if err != nil {
			return lifecycle.Order{}, fmt.Errorf("menu_item_id: %w", err)
		}
		li := lifecycle.LineItem{
			MenuItemID: menuID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			Notes:      line.Notes,
		}
		if line.LineItemID != "" {
			if li.ID, err = uuid.Parse(line.LineItemID); err != nil {
				return lifecycle.Order{}, fmt.Errorf("line_item_id: %w", err)
			}
		}
		if line.UnitPrice != "" {
			if li.UnitPrice, err = decimal.NewFromString(line.UnitPrice); err != nil {
				return lifecycle.Order{}, fmt.Errorf("unit_price: %w", err)
			}
		}
		order.Items = append(order.Items, li)
	}
	return order, nil
}
