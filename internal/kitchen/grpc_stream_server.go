package kitchen

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/pkg/event"
	"github.com/aquamarinepk/aqm"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	eventStreamServiceName = "lifecycle.kitchen.v1.EventStream"
	streamKitchenEvents    = "StreamKitchenEvents"
	subscriberBuffer       = 100
)

// TicketStreamEvent is one message on the kitchen event stream. Ticket
// always carries the full ticket after the change.
type TicketStreamEvent struct {
	EventType      string                          `json:"event_type"`
	PreviousStatus string                          `json:"previous_status,omitempty"`
	Ticket         event.KitchenTicketCreatedEvent `json:"ticket"`
}

type eventStreamService interface {
	StreamKitchenEvents(req *structpb.Struct, stream grpc.ServerStream) error
}

var eventStreamServiceDesc = grpc.ServiceDesc{
	ServiceName: eventStreamServiceName,
	HandlerType: (*eventStreamService)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    streamKitchenEvents,
			Handler:       streamKitchenEventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "lifecycle/kitchen/v1/events.proto",
}

func streamKitchenEventsHandler(srv interface{}, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(eventStreamService).StreamKitchenEvents(req, stream)
}

// EventStreamServer pushes ticket changes to gRPC subscribers such as
// kitchen display screens.
type EventStreamServer struct {
	cache  *TicketStateCache
	logger aqm.Logger

	mu          sync.RWMutex
	subscribers map[string]chan *structpb.Struct
}

// RegisterGRPCService registers this service with the gRPC server (aqm.GRPCServiceRegistrar interface)
func (s *EventStreamServer) RegisterGRPCService(server *grpc.Server) {
	server.RegisterService(&eventStreamServiceDesc, s)
}

func NewEventStreamServer(cache *TicketStateCache, logger aqm.Logger) *EventStreamServer {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &EventStreamServer{
		cache:       cache,
		logger:      logger,
		subscribers: make(map[string]chan *structpb.Struct),
	}
}

// StreamKitchenEvents sends the current tickets and then every change.
// The optional "station" request field restricts both to tickets with an
// item at that station.
func (s *EventStreamServer) StreamKitchenEvents(req *structpb.Struct, stream grpc.ServerStream) error {
	ctx := stream.Context()
	subscriberID := generateSubscriberID()
	station := req.GetFields()["station"].GetStringValue()

	s.logger.Info("new kitchen events subscriber", "subscriber_id", subscriberID, "station_filter", station)

	eventChan := make(chan *structpb.Struct, subscriberBuffer)

	s.mu.Lock()
	s.subscribers[subscriberID] = eventChan
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subscribers, subscriberID)
		s.mu.Unlock()
		close(eventChan)
		s.logger.Info("kitchen events subscriber disconnected", "subscriber_id", subscriberID)
	}()

	if s.cache != nil {
		for _, ticket := range s.cache.List(station, "") {
			msg, err := streamMessage(event.EventKitchenTicketCreated, &ticket, "")
			if err != nil {
				return err
			}
			if err := stream.SendMsg(msg); err != nil {
				s.logger.Errorf("failed to send initial ticket: %v", err)
				return err
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-eventChan:
			if station != "" && !messageHasStation(msg, station) {
				continue
			}
			if err := stream.SendMsg(msg); err != nil {
				s.logger.Errorf("failed to send event: %v", err)
				return err
			}
		}
	}
}

// BroadcastTicket sends a ticket change to all connected subscribers. Slow
// subscribers lose the event instead of blocking the caller.
func (s *EventStreamServer) BroadcastTicket(eventType string, ticket *lifecycle.KitchenOrder, previousStatus string) {
	msg, err := streamMessage(eventType, ticket, previousStatus)
	if err != nil {
		s.logger.Error("cannot encode stream event", "ticket_id", ticket.ID, "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for subscriberID, ch := range s.subscribers {
		select {
		case ch <- msg:
		default:
			s.logger.Info("subscriber channel full, dropping event", "subscriber_id", subscriberID)
		}
	}
}

// SubscriberCount returns the number of connected stream subscribers.
func (s *EventStreamServer) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

func streamMessage(eventType string, ticket *lifecycle.KitchenOrder, previousStatus string) (*structpb.Struct, error) {
	payload := ticketCreatedEvent(ticket)
	payload.EventType = eventType
	payload.OccurredAt = ticket.UpdatedAt

	data, err := json.Marshal(TicketStreamEvent{
		EventType:      eventType,
		PreviousStatus: previousStatus,
		Ticket:         payload,
	})
	if err != nil {
		return nil, err
	}

	msg := new(structpb.Struct)
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func messageHasStation(msg *structpb.Struct, station string) bool {
	ticket := msg.GetFields()["ticket"].GetStructValue()
	for _, v := range ticket.GetFields()["items"].GetListValue().GetValues() {
		if v.GetStructValue().GetFields()["station"].GetStringValue() == station {
			return true
		}
	}
	return false
}

var subscriberSeq atomic.Uint64

func generateSubscriberID() string {
	return fmt.Sprintf("%s.%d", time.Now().Format("20060102150405.000000"), subscriberSeq.Add(1))
}

// TicketStreamClient reads kitchen events from a remote EventStreamServer.
type TicketStreamClient struct {
	stream grpc.ClientStream
}

// SubscribeKitchenEvents opens a kitchen event stream. An empty station
// subscribes to every ticket.
func SubscribeKitchenEvents(ctx context.Context, conn grpc.ClientConnInterface, station string) (*TicketStreamClient, error) {
	desc := &eventStreamServiceDesc.Streams[0]
	method := "/" + eventStreamServiceName + "/" + streamKitchenEvents

	stream, err := conn.NewStream(ctx, desc, method)
	if err != nil {
		return nil, err
	}

	req, err := structpb.NewStruct(map[string]interface{}{"station": station})
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &TicketStreamClient{stream: stream}, nil
}

// Recv blocks until the next event arrives or the stream ends.
func (c *TicketStreamClient) Recv() (TicketStreamEvent, error) {
	msg := new(structpb.Struct)
	if err := c.stream.RecvMsg(msg); err != nil {
		return TicketStreamEvent{}, err
	}

	data, err := protojson.Marshal(msg)
	if err != nil {
		return TicketStreamEvent{}, err
	}

	var evt TicketStreamEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return TicketStreamEvent{}, err
	}
	return evt, nil
}
