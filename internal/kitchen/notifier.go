package kitchen

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/pkg/event"
	"github.com/aquamarinepk/aqm/events"
)

// EventNotifier delivers notification intents on the notifications topic.
type EventNotifier struct {
	publisher events.Publisher
}

func NewEventNotifier(publisher events.Publisher) *EventNotifier {
	return &EventNotifier{publisher: publisher}
}

func (n *EventNotifier) Emit(ctx context.Context, intent lifecycle.NotificationIntent) error {
	if n.publisher == nil {
		return nil
	}
	if err := n.publisher.Publish(ctx, event.NotificationsTopic, marshal(notificationEvent(intent))); err != nil {
		return fmt.Errorf("publish %s notification: %w", intent.Kind, err)
	}
	return nil
}

// MultiNotifier fans an intent out to every notifier. All notifiers are
// tried; their errors are joined.
type MultiNotifier []lifecycle.Notifier

func (m MultiNotifier) Emit(ctx context.Context, intent lifecycle.NotificationIntent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Emit(ctx, intent); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
