package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is the frame pushed to a user's open sockets
type Event struct {
	// Type of event, e.g. "notification"
	Type string `json:"type"`

	// Payload of the event
	Data interface{} `json:"data"`

	// Timestamp when the event was produced
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time
func NewEvent(eventType string, data interface{}) Event {
	return Event{Type: eventType, Data: data, Timestamp: time.Now().UTC()}
}

type delivery struct {
	userID  int64
	payload []byte
}

// Hub maintains the set of active clients per user and delivers events to them
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	deliveries chan delivery
	register   chan *Client
	unregister chan *Client

	// closed once Run has returned
	done     chan struct{}
	stopOnce sync.Once

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		deliveries: make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// ErrHubStopped is returned for deliveries after Run has returned
var ErrHubStopped = errors.New("realtime hub stopped")

// Run handles registrations and deliveries until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.stopOnce.Do(func() { close(h.done) })
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

// join hands the client to Run; false once the hub has stopped
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave hands the client back; after the hub stopped there is nothing to do
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Debug().Int64("userID", client.userID).Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	h.logger.Debug().Int64("userID", client.userID).Msg("Client unregistered")
}

// deliver writes the payload to every socket of the user; slow clients are dropped
func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[d.userID] {
		select {
		case client.send <- d.payload:
		default:
			h.logger.Warn().Int64("userID", d.userID).Msg("Dropping slow websocket client")
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Deliver queues a raw payload for the user's local sockets
func (h *Hub) Deliver(ctx context.Context, userID int64, payload []byte) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}
	select {
	case h.deliveries <- delivery{userID: userID, payload: payload}:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish delivers an event to the user's sockets connected to this process
func (h *Hub) Publish(ctx context.Context, userID int64, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.Deliver(ctx, userID, payload)
}

// ClientCount returns the number of sockets open for a user
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
