package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/concernrise/concern-backend/internal/core/domain"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

// Hub maintains the set of active Clients and fans events out to them.
// It is constructed explicitly and injected into services; there is no
// package-level instance.
type Hub struct {
	// Clients maps user IDs to their active connections
	// A single user can have multiple connections (multiple tabs/devices)
	clients map[uuid.UUID]map[*Client]bool

	// Rooms maps concern IDs to subscribed clients
	rooms map[uuid.UUID]map[*Client]bool

	// Broadcast channel for concern-room events
	broadcast chan domain.Event

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// mu protects the clients and rooms maps
	mu sync.RWMutex

	// logger for the hub
	logger *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan domain.Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// BroadcastToConcern queues an event for everyone in the concern's room.
// Delivery is at-most-once: if the hub's buffer is full the event is dropped.
func (h *Hub) BroadcastToConcern(concernID uuid.UUID, event domain.Event) {
	event.ConcernID = concernID
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"concern_id", concernID,
		)
	}
}

// NotifyUser sends an event to every connection a user currently holds.
// Users who are offline simply miss the event; there is no replay.
func (h *Hub) NotifyUser(userID uuid.UUID, event domain.Event) {
	h.mu.RLock()
	clients, ok := h.clients[userID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	for _, client := range clientList {
		select {
		case client.Send <- event:
		default:
			// Buffer full, skip this connection
		}
	}
}

// Run starts the hub's event loop. This MUST be run as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event, nil)
		}
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true

	h.logger.Info("client registered",
		"user_id", client.UserID,
		"total_connections", len(h.clients[client.UserID]),
	)
}

// unregisterClient removes a client from the hub and all rooms
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscriptions := client.GetSubscriptions()

	// 1. Remove from the global user map
	if userClients, ok := h.clients[client.UserID]; ok {
		if _, exists := userClients[client]; exists {
			delete(userClients, client)
			if len(userClients) == 0 {
				delete(h.clients, client.UserID)
			}
		}
	}

	// 2. Remove from all subscribed rooms
	for _, concernID := range subscriptions {
		if room, ok := h.rooms[concernID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, concernID)
			}
		}
	}

	// 3. Safely close the send channel
	client.CloseSend()

	h.logger.Info("client unregistered",
		"user_id", client.UserID,
	)
}

// broadcastEvent sends an event to all clients subscribed to the concern,
// except the optional sender.
func (h *Hub) broadcastEvent(event domain.Event, except *Client) {
	h.mu.RLock()
	room, ok := h.rooms[event.ConcernID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy the client list to avoid holding the lock while sending
	clients := make([]*Client, 0, len(room))
	for client := range room {
		if client == except {
			continue
		}
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"concern_id", event.ConcernID,
		"client_count", len(clients),
	)

	var slow []*Client
	for _, client := range clients {
		select {
		case client.Send <- event:
			// Successfully queued
		default:
			slow = append(slow, client)
		}
	}

	// Drop slow clients directly. Sending to the Unregister channel here
	// would deadlock the Run loop, which is the caller on the broadcast
	// path and the channel's only receiver.
	for _, client := range slow {
		h.logger.Warn("client send buffer full, unregistering",
			"user_id", client.UserID,
		)
		h.unregisterClient(client)
	}
}

// joinConcern adds a client to a concern's room. The room only controls
// fan-out; read access was already authenticated at connection time.
func (h *Hub) joinConcern(client *Client, concernID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[concernID] == nil {
		h.rooms[concernID] = make(map[*Client]bool)
	}
	h.rooms[concernID][client] = true
	client.AddSubscription(concernID)

	h.logger.Debug("client joined concern room",
		"user_id", client.UserID,
		"concern_id", concernID,
	)
}

// leaveConcern removes a client from a concern's room
func (h *Hub) leaveConcern(client *Client, concernID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[concernID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, concernID)
		}
	}
	client.RemoveSubscription(concernID)

	h.logger.Debug("client left concern room",
		"user_id", client.UserID,
		"concern_id", concernID,
	)
}

// broadcastTyping fans a typing indicator out to the concern room,
// skipping the client who is typing.
func (h *Hub) broadcastTyping(client *Client, concernID uuid.UUID, eventType domain.EventType) {
	h.broadcastEvent(domain.Event{
		Type:      eventType,
		ConcernID: concernID,
		Payload: domain.TypingPayload{
			ConcernID: concernID,
			UserID:    client.UserID,
			UserName:  client.UserName,
		},
	}, client)
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, userClients := range h.clients {
		count += len(userClients)
	}
	return count
}

// GetRoomCount returns the number of active rooms
func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// GetClientsInRoom returns the number of clients in a concern's room
func (h *Hub) GetClientsInRoom(concernID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.rooms[concernID]; ok {
		return len(room)
	}
	return 0
}

// IsUserConnected checks if a user has any active connections
func (h *Hub) IsUserConnected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.clients[userID]
	return ok && len(clients) > 0
}
