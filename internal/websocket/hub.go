package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/metrics"
	"go.uber.org/zap"
)

// Hub fans change events out to every connected client.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan events.ChangeEvent
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	stopOnce   sync.Once
	log        *zap.Logger
	mu         sync.RWMutex
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan events.ChangeEvent, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log.Named("hub"),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			metrics.SetWebsocketClients(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			count := len(h.clients)
			h.mu.Unlock()
			metrics.SetWebsocketClients(count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()
			metrics.SetWebsocketClients(count)

		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

// deliver sends ev to every interested client. A client whose buffer is full
// is dropped rather than stalling the hub.
func (h *Hub) deliver(ev events.ChangeEvent) {
	msg, err := NewMessage(MessageTypeChange, ev)
	if err != nil {
		h.log.Error("encode change message", zap.Error(err))
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal change message", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if !client.Wants(string(ev.Kind)) {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.log.Warn("dropping slow change feed client")
			delete(h.clients, client)
			client.Close()
		}
	}
	metrics.SetWebsocketClients(len(h.clients))
}

// Forward pumps events from a bus subscription into the hub until the
// subscription closes or ctx is done.
func (h *Hub) Forward(ctx context.Context, feed <-chan events.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case ev, ok := <-feed:
			if !ok {
				return
			}
			select {
			case h.broadcast <- ev:
			case <-h.done:
				return
			}
		}
	}
}

// Stop gracefully shuts down the hub and closes every client.
// It blocks until Run has exited.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister safely unregisters a client, handling the case where the hub may be stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
