package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// allTables is the room of clients that did not filter by table.
const allTables = ""

var ErrHubBusy = errors.New("notification hub buffer full")

// Event is one WebSocket message.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type tableEvent struct {
	table string
	event Event
}

// Hub keeps the connected dashboard clients, grouped by table filter, and
// pushes notification intents to them. It implements lifecycle.Notifier.
type Hub struct {
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *tableEvent

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool

	mu     sync.RWMutex
	logger aqm.Logger
}

func NewHub(logger aqm.Logger) *Hub {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *tableEvent, 256),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return nil
	}
	h.started = true
	go h.Run()
	h.logger.Info("notification hub started")
	return nil
}

func (h *Hub) Stop(ctx context.Context) error {
	h.mu.RLock()
	started := h.started
	h.mu.RUnlock()

	h.stopOnce.Do(func() { close(h.quit) })
	if !started {
		return nil
	}

	select {
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	h.logger.Info("notification hub stopped")
	return nil
}

// Run is the hub's main loop. Start runs it in its own goroutine.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.table] == nil {
				h.rooms[client.table] = make(map[*Client]bool)
			}
			h.rooms[client.table][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case evt := <-h.broadcast:
			message, err := json.Marshal(evt.event)
			if err != nil {
				h.logger.Error("cannot encode notification", "error", err)
				continue
			}

			h.mu.Lock()
			h.sendLocked(evt.table, message)
			if evt.table != allTables {
				h.sendLocked(allTables, message)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) sendLocked(table string, message []byte) {
	for client := range h.rooms[table] {
		select {
		case client.send <- message:
		default:
			h.logger.Info("dashboard client too slow, disconnecting", "table", table)
			h.removeLocked(client)
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.table]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.table)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var n int
	for _, clients := range h.rooms {
		n += len(clients)
	}
	return n
}

// Emit queues a notification for the clients watching its table and for
// the clients watching every table.
func (h *Hub) Emit(ctx context.Context, n lifecycle.NotificationIntent) error {
	payload := event.NotificationEvent{
		EventType:   string(n.Kind),
		OccurredAt:  n.OccurredAt,
		OrderID:     n.OrderID.String(),
		TableNumber: n.TableNumber,
	}
	if n.KitchenOrderID != uuid.Nil {
		payload.KitchenOrderID = n.KitchenOrderID.String()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- &tableEvent{table: n.TableNumber, event: Event{Type: string(n.Kind), Payload: data}}:
		return nil
	default:
		return ErrHubBusy
	}
}

func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}
