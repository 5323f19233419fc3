package gateway

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/tcgarena/internal/model"
)

type actionKind int

const (
	actionRegister actionKind = iota
	actionUnregister
	actionSubscribe
	actionCloseGroup
	actionSendDirect
	actionSendGroup
	actionSendAll
)

// action is one unit of hub work. Everything that touches client or group
// membership or delivers a message goes through the same queue, so the
// hub applies them in the order they were issued.
type action struct {
	kind   actionKind
	client *Client
	group  string
	data   []byte
}

// Hub owns every connected client and the named groups they belong to
type Hub struct {
	clients map[*Client]bool
	groups  map[string]map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	actions chan action
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewHub creates a new Hub. Call Run to start it.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		groups:  make(map[string]map[*Client]bool),
		logger:  logger.With(slog.String("component", "gateway-hub")),
		actions: make(chan action, 256),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// RoomGroup names the group of clients attached to a room
func RoomGroup(id model.RoomID) string {
	return "room-" + id.String()
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	defer close(h.stopped)
	h.logger.Info("gateway hub started")
	for {
		select {
		case a := <-h.actions:
			h.apply(a)

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.groups = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			h.logger.Info("gateway hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

func (h *Hub) apply(a action) {
	switch a.kind {
	case actionRegister:
		h.mu.Lock()
		h.clients[a.client] = true
		clientCount := len(h.clients)
		h.mu.Unlock()
		h.logger.Info("client registered",
			slog.String("client_id", a.client.id),
			slog.Int64("user_id", int64(a.client.userID)),
			slog.Int("total_clients", clientCount))

	case actionUnregister:
		if h.drop(a.client) {
			h.logger.Info("client unregistered",
				slog.String("client_id", a.client.id),
				slog.Int64("user_id", int64(a.client.userID)),
				slog.Duration("connection_duration", time.Since(a.client.connectedAt)),
				slog.Int("total_clients", h.ClientCount()))
		}

	case actionSubscribe:
		h.mu.Lock()
		if h.clients[a.client] {
			members, ok := h.groups[a.group]
			if !ok {
				members = make(map[*Client]bool)
				h.groups[a.group] = members
			}
			members[a.client] = true
		}
		h.mu.Unlock()

	case actionCloseGroup:
		h.mu.Lock()
		members := len(h.groups[a.group])
		delete(h.groups, a.group)
		h.mu.Unlock()
		if members > 0 {
			h.logger.Debug("group closed",
				slog.String("group", a.group),
				slog.Int("members", members))
		}

	case actionSendDirect:
		h.mu.RLock()
		known := h.clients[a.client]
		h.mu.RUnlock()
		if known {
			h.deliver([]*Client{a.client}, a.data)
		}

	case actionSendGroup:
		h.mu.RLock()
		targets := make([]*Client, 0, len(h.groups[a.group]))
		for client := range h.groups[a.group] {
			targets = append(targets, client)
		}
		h.mu.RUnlock()
		h.deliver(targets, a.data)

	case actionSendAll:
		h.mu.RLock()
		targets := make([]*Client, 0, len(h.clients))
		for client := range h.clients {
			targets = append(targets, client)
		}
		h.mu.RUnlock()
		h.deliver(targets, a.data)
	}
}

// deliver never blocks the loop. A client whose buffer is full cannot keep
// up with the ordered stream, so it is disconnected instead of silently
// missing a message.
func (h *Hub) deliver(targets []*Client, data []byte) {
	for _, client := range targets {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client buffer full, disconnecting",
				slog.String("client_id", client.id),
				slog.Int64("user_id", int64(client.userID)))
			h.drop(client)
		}
	}
}

// drop removes the client from the hub and every group. Reports whether
// the client was still registered.
func (h *Hub) drop(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	for name, members := range h.groups {
		delete(members, client)
		if len(members) == 0 {
			delete(h.groups, name)
		}
	}
	close(client.send)
	return true
}

func (h *Hub) enqueue(a action) {
	select {
	case h.actions <- a:
	case <-h.done:
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.enqueue(action{kind: actionRegister, client: client})
}

// Unregister removes a client from the hub and all its groups
func (h *Hub) Unregister(client *Client) {
	h.enqueue(action{kind: actionUnregister, client: client})
}

// Subscribe attaches a client to a group
func (h *Hub) Subscribe(client *Client, group string) {
	h.enqueue(action{kind: actionSubscribe, client: client, group: group})
}

// CloseGroup forgets a group. Its members stay connected.
func (h *Hub) CloseGroup(group string) {
	h.enqueue(action{kind: actionCloseGroup, group: group})
}

// SendTo queues a message for one client
func (h *Hub) SendTo(client *Client, message []byte) {
	h.enqueue(action{kind: actionSendDirect, client: client, data: message})
}

// SendToGroup queues a message for every member of a group
func (h *Hub) SendToGroup(group string, message []byte) {
	h.enqueue(action{kind: actionSendGroup, group: group, data: message})
}

// Broadcast queues a message for every connected client
func (h *Hub) Broadcast(message []byte) {
	h.enqueue(action{kind: actionSendAll, data: message})
}

// Close shuts down the hub. Safe to call more than once.
func (h *Hub) Close() {
	h.once.Do(func() { close(h.done) })
}

// Done is closed once the hub loop has exited
func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GroupSize returns the number of clients in a group
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
