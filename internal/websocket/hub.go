package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/pkg/resolver"

	"github.com/redis/go-redis/v9"
)

// Redis channel for cross-instance activity fanout.
const activityChannel = "activity_events"

// activityFrame is the wire shape of one event on the activity feed.
type activityFrame struct {
	Type      string    `json:"type"`
	RequestId string    `json:"request_id"`
	Stage     string    `json:"stage,omitempty"`
	Source    string    `json:"source,omitempty"`
	Query     string    `json:"query,omitempty"`
	ElapsedMs int64     `json:"elapsed_ms,omitempty"`
	At        time.Time `json:"at"`
}

// Hub fans resolution activity out to every connected websocket client.
// It satisfies resolver.ActivitySink; Emit never blocks the query path.
type Hub struct {
	// Connected clients.
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Marshaled frames waiting for delivery.
	broadcast chan []byte

	// Lock for safe map access
	mu sync.Mutex

	// Redis connection for cross-instance fanout, nil for single instance
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// With Redis the local delivery happens in the subscriber loop, so
	// every instance (this one included) sees published frames exactly once.
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Hub", "Activity client connected", map[string]interface{}{"clients": count})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Hub", "Activity client disconnected", map[string]interface{}{"clients": count})

		case data := <-h.broadcast:
			if h.rdb != nil {
				h.rdb.Publish(context.Background(), activityChannel, data)
				continue
			}
			h.broadcastLocal(data)
		}
	}
}

// Emit queues a resolution event for delivery. Frames are dropped when the
// buffer is full rather than stalling the resolver.
func (h *Hub) Emit(evt resolver.ActivityEvent) {
	frame := activityFrame{
		Type:      evt.Kind,
		RequestId: evt.RequestId.String(),
		Stage:     evt.Stage,
		Source:    string(evt.Source),
		Query:     evt.Query,
		At:        evt.At,
	}
	if evt.Elapsed > 0 {
		frame.ElapsedMs = evt.Elapsed.Milliseconds()
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- data:
	default:
	}
}

func (h *Hub) broadcastLocal(data []byte) {
	h.mu.Lock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow reader, drop it. The deferred unregister from its
			// readPump will find the client already gone.
			close(client.Send)
			delete(h.clients, client)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, activityChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.broadcastLocal([]byte(msg.Payload))
	}
}
