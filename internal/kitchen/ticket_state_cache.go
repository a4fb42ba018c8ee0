package kitchen

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/pkg/enums/itemstatus"
	"github.com/appetiteclub/lifecycle/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
)

// TicketStateCache maintains an in-memory copy of the kitchen orders still
// being worked, indexed by station and aggregate status for kanban queries.
type TicketStateCache struct {
	mu sync.RWMutex
	// tickets indexed by ticket id
	tickets map[uuid.UUID]*lifecycle.KitchenOrder
	// station code -> ticket ids with at least one item at that station
	byStation map[string][]uuid.UUID
	// aggregate status -> ticket ids
	byStatus map[string][]uuid.UUID

	stream events.StreamConsumer // replay source on startup
	repo   TicketRepository      // fallback when the stream is unavailable
	logger aqm.Logger

	streamServer *EventStreamServer
}

// SetStreamServer sets the gRPC stream server reference (called after initialization)
func (c *TicketStateCache) SetStreamServer(server *EventStreamServer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.streamServer = server
}

func NewTicketStateCache(stream events.StreamConsumer, repo TicketRepository, logger aqm.Logger) *TicketStateCache {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &TicketStateCache{
		tickets:   make(map[uuid.UUID]*lifecycle.KitchenOrder),
		byStation: make(map[string][]uuid.UUID),
		byStatus:  make(map[string][]uuid.UUID),
		stream:    stream,
		repo:      repo,
		logger:    logger,
	}
}

// Warm replays the stream, then reconciles with the repository, which is
// authoritative: tickets the replay missed, or holds older state for, are
// taken from the repository. Without a stream it loads the repository only.
func (c *TicketStateCache) Warm(ctx context.Context) error {
	if c.stream != nil {
		if err := c.warmFromStream(ctx); err != nil {
			c.logger.Info("stream replay failed, falling back to MongoDB", "error", err)
		}
	}

	if c.repo == nil {
		if c.stream == nil {
			c.logger.Info("neither stream nor repo configured, cache remains empty")
		}
		c.removeCompletedTickets()
		return nil
	}

	return c.WarmFromRepo(ctx)
}

func (c *TicketStateCache) warmFromStream(ctx context.Context) error {
	c.logger.Info("warming cache from event stream")

	messages, err := c.stream.Fetch(ctx, 10000)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, msg := range messages {
		c.applyEventLocked(msg.Data)
	}

	c.logger.Info("cache warmed from stream", "events", len(messages), "tickets", len(c.tickets))
	return nil
}

// WarmFromRepo merges the repository into the cache. A stored ticket
// replaces a cached one unless the cached copy is newer.
func (c *TicketStateCache) WarmFromRepo(ctx context.Context) error {
	if c.repo == nil {
		return nil
	}

	c.logger.Info("warming cache from MongoDB")

	tickets, err := c.repo.List(ctx, TicketFilter{})
	if err != nil {
		c.logger.Info("failed to warm ticket cache from MongoDB", "error", err)
		c.removeCompletedTickets()
		return nil
	}

	var merged int
	c.mu.Lock()
	for i := range tickets {
		stored := &tickets[i]
		if cached, ok := c.tickets[stored.ID]; ok && cached.UpdatedAt.After(stored.UpdatedAt) {
			continue
		}
		c.putLocked(stored)
		merged++
	}
	c.mu.Unlock()

	c.removeCompletedTickets()
	c.logger.Info("cache warmed from MongoDB", "merged", merged, "count", c.Count())
	return nil
}

// Apply folds one kitchen.tickets event into the cache.
func (c *TicketStateCache) Apply(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyEventLocked(data)
	return nil
}

func (c *TicketStateCache) applyEventLocked(data []byte) {
	var base struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		c.logger.Error("failed to unmarshal event type", "error", err)
		return
	}

	switch base.EventType {
	case event.EventKitchenTicketCreated:
		var evt event.KitchenTicketCreatedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			c.logger.Error("failed to unmarshal ticket.created event", "error", err)
			return
		}
		t, err := ticketFromCreatedEvent(evt)
		if err != nil {
			c.logger.Error("invalid ticket.created event", "error", err)
			return
		}
		c.putLocked(t)

	case event.EventKitchenTicketStatusChange:
		var evt event.KitchenTicketStatusChangedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			c.logger.Error("failed to unmarshal ticket.status_changed event", "error", err)
			return
		}
		c.applyItemChangeLocked(evt)
	}
}

func (c *TicketStateCache) applyItemChangeLocked(evt event.KitchenTicketStatusChangedEvent) {
	id, err := uuid.Parse(evt.TicketID)
	if err != nil {
		return
	}
	current := c.tickets[id]
	if current == nil {
		return
	}

	item, err := itemFromPayload(evt.Item)
	if err != nil {
		c.logger.Error("invalid ticket.status_changed item", "error", err)
		return
	}

	next := current.Clone()
	if idx := next.Item(item.ID); idx >= 0 {
		next.Items[idx] = item
	}
	next.Status = evt.NewStatus
	next.UpdatedAt = evt.OccurredAt
	c.putLocked(&next)
}

func (c *TicketStateCache) removeCompletedTickets() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for id, t := range c.tickets {
		if t.Status == itemstatus.Statuses.Delivered.Code() {
			c.removeLocked(id)
			removed++
		}
	}

	c.logger.Debug("removed completed tickets from cache", "count", removed)
}

// Set stores a copy of the ticket and broadcasts it to stream subscribers.
// Delivered tickets are broadcast once and then dropped.
func (c *TicketStateCache) Set(ticket *lifecycle.KitchenOrder) {
	if ticket == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var previous string
	eventType := event.EventKitchenTicketCreated
	if old, ok := c.tickets[ticket.ID]; ok {
		previous = old.Status
		eventType = event.EventKitchenTicketStatusChange
	}

	t := ticket.Clone()
	if t.Status == itemstatus.Statuses.Delivered.Code() {
		c.removeLocked(t.ID)
	} else {
		c.putLocked(&t)
	}

	if c.streamServer != nil {
		c.streamServer.BroadcastTicket(eventType, &t, previous)
	}
}

func (c *TicketStateCache) putLocked(t *lifecycle.KitchenOrder) {
	if t == nil {
		return
	}
	c.removeLocked(t.ID)
	c.tickets[t.ID] = t
	for _, st := range stationsOf(t) {
		c.byStation[st] = append(c.byStation[st], t.ID)
	}
	c.byStatus[t.Status] = append(c.byStatus[t.Status], t.ID)
}

func (c *TicketStateCache) removeLocked(id uuid.UUID) {
	old, ok := c.tickets[id]
	if !ok {
		return
	}
	for _, st := range stationsOf(old) {
		removeFromIndex(c.byStation, st, id)
	}
	removeFromIndex(c.byStatus, old.Status, id)
	delete(c.tickets, id)
}

// Get returns a copy of the cached ticket.
func (c *TicketStateCache) Get(id uuid.UUID) (lifecycle.KitchenOrder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tickets[id]
	if !ok {
		return lifecycle.KitchenOrder{}, false
	}
	return t.Clone(), true
}

// List returns copies of cached tickets, optionally filtered by station and
// aggregate status, oldest first.
func (c *TicketStateCache) List(station, status string) []lifecycle.KitchenOrder {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ids []uuid.UUID
	switch {
	case station != "":
		ids = c.byStation[station]
	case status != "":
		ids = c.byStatus[status]
	default:
		ids = make([]uuid.UUID, 0, len(c.tickets))
		for id := range c.tickets {
			ids = append(ids, id)
		}
	}

	result := make([]lifecycle.KitchenOrder, 0, len(ids))
	for _, id := range ids {
		t := c.tickets[id]
		if t == nil || (status != "" && t.Status != status) {
			continue
		}
		result = append(result, t.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Active returns tickets the kitchen is still working on.
func (c *TicketStateCache) Active() []lifecycle.KitchenOrder {
	all := c.List("", "")
	active := all[:0]
	for _, t := range all {
		if t.Active() {
			active = append(active, t)
		}
	}
	return active
}

// Overdue returns active tickets past their estimated delivery time.
func (c *TicketStateCache) Overdue(now time.Time) []lifecycle.KitchenOrder {
	var result []lifecycle.KitchenOrder
	for _, t := range c.Active() {
		if lifecycle.IsOverdue(t, now) {
			result = append(result, t)
		}
	}
	return result
}

// ChefLoads counts pending and preparing items per assigned chef.
func (c *TicketStateCache) ChefLoads() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := itemstatus.Statuses
	loads := make(map[string]int)
	for _, t := range c.tickets {
		for _, it := range t.Items {
			if it.Chef == "" {
				continue
			}
			if it.Status == s.Pending.Code() || it.Status == s.Preparing.Code() {
				loads[it.Chef]++
			}
		}
	}
	return loads
}

// Remove deletes a ticket from the cache.
func (c *TicketStateCache) Remove(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}

// Count returns the number of tickets in the cache
func (c *TicketStateCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tickets)
}

func stationsOf(t *lifecycle.KitchenOrder) []string {
	seen := make(map[string]struct{}, len(t.Items))
	var out []string
	for _, it := range t.Items {
		if _, ok := seen[it.Station]; ok {
			continue
		}
		seen[it.Station] = struct{}{}
		out = append(out, it.Station)
	}
	return out
}

func removeFromIndex(index map[string][]uuid.UUID, key string, id uuid.UUID) {
	ids := index[key]
	for i, v := range ids {
		if v == id {
			index[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(index[key]) == 0 {
		delete(index, key)
	}
}
