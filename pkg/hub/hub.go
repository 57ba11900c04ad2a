// Package hub fans messages out to websocket viewers using the channel-based
// broadcast pattern: one goroutine owns the client set, each client owns
// its connection writes.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-swarmshow/internal/log"
	"github.com/teslashibe/go-swarmshow/pkg/protocol"
)

// sendBuffer is the per-client queue depth. A viewer that falls this far
// behind is dropped.
const sendBuffer = 256

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	name   string
	logger *slog.Logger

	// Registered clients
	clients map[*Client]bool

	// Inbound messages to broadcast
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Guards clients for ClientCount
	mu sync.RWMutex

	running   atomic.Bool
	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// New creates a new Hub
func New(name string) *Hub {
	return &Hub{
		name:       name,
		logger:     log.With("component", "hub", "hub", name),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled, then disconnects every
// client. Call it in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client disconnected", "clients", count)

		case data := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
					h.delivered.Add(1)
				default:
					// Too slow to keep up with the show
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("dropped slow client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues pre-encoded data for every client. It never blocks:
// when the queue is full the data is dropped.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		if h.dropped.Add(1)%100 == 1 {
			h.logger.Warn("broadcast queue full, dropping", "dropped", h.dropped.Load())
		}
	}
}

// BroadcastJSON encodes and broadcasts v.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// BroadcastMessage encodes and broadcasts a protocol message.
func (h *Hub) BroadcastMessage(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// BroadcastFrame wraps a playback frame and broadcasts it. Suitable as a
// playback frame listener.
func (h *Hub) BroadcastFrame(frame *protocol.FrameData) {
	msg, err := protocol.NewFrameMessage(*frame)
	if err != nil {
		h.logger.Error("encode frame", "seq", frame.Seq, "error", err)
		return
	}
	h.publish(msg, "seq", frame.Seq)
}

// BroadcastState wraps a playback state and broadcasts it. Suitable as a
// playback state listener.
func (h *Hub) BroadcastState(state protocol.StateData) {
	msg, err := protocol.NewStateMessage(state)
	if err != nil {
		h.logger.Error("encode state", "error", err)
		return
	}
	h.publish(msg, "state", state.State)
}

// publish broadcasts msg from a listener, which has no caller to return an
// error to, so failures are logged.
func (h *Hub) publish(msg *protocol.Message, args ...any) {
	if err := h.BroadcastMessage(msg); err != nil {
		h.logger.Error("broadcast message", append(args, "type", msg.Type, "error", err)...)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Delivered returns how many messages were queued to clients.
func (h *Hub) Delivered() uint64 {
	return h.delivered.Load()
}

// Dropped returns how many broadcasts were lost to a full queue.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// IsRunning returns whether the hub is running
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}
