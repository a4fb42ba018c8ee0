package pkg

import (
	"context"
	"errors"

	"github.com/aquamarinepk/aqm/events"
)

var ErrNoPublisher = errors.New("no publisher for topic")

// TopicRouter sends each topic to its own publisher, falling back to
// Default. It lets persistent topics go to a stream while the rest stay on
// core NATS.
type TopicRouter struct {
	Default events.Publisher
	Routes  map[string]events.Publisher
}

func (r *TopicRouter) Publish(ctx context.Context, topic string, msg []byte) error {
	if p, ok := r.Routes[topic]; ok && p != nil {
		return p.Publish(ctx, topic, msg)
	}
	if r.Default == nil {
		return ErrNoPublisher
	}
	return r.Default.Publish(ctx, topic, msg)
}
