// Package stream fans recorded event batches out to WebSocket
// spectators. The hub never blocks the simulation: a subscriber that
// cannot keep up is dropped, not waited for.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/luarena/luarena/internal/arena/event"
)

const sendBuffer = 64

// Hub owns the live spectator connections.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	closed      bool

	upgrader websocket.Upgrader
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Run consumes batches until in is closed, then closes every
// subscriber. The closed channel is the game-over signal.
func (h *Hub) Run(in <-chan event.StepEvents) {
	for batch := range in {
		h.Broadcast(batch)
	}
	h.Close()
}

// Broadcast serializes one batch and queues it on every subscriber.
// Subscribers with a full queue are disconnected.
func (h *Hub) Broadcast(batch event.StepEvents) {
	data, err := json.Marshal(batch)
	if err != nil {
		log.Printf("stream: encode batch: %v", err)
		return
	}

	h.mu.Lock()
	var stale []*subscriber
	for sub := range h.subscribers {
		select {
		case sub.send <- data:
		default:
			stale = append(stale, sub)
			delete(h.subscribers, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range stale {
		log.Printf("stream: dropping slow subscriber %s", sub.conn.RemoteAddr())
		close(sub.send)
	}
}

// Close disconnects every subscriber and rejects future ones.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.subscribers = make(map[*subscriber]struct{})
	h.closed = true
	h.mu.Unlock()

	for _, sub := range subs {
		close(sub.send)
	}
}

// ServeHTTP upgrades a spectator connection and streams batches to it
// until either side goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream: upgrade: %v", err)
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	go h.readLoop(sub)
	h.writeLoop(sub)
}

// readLoop drains incoming frames; its only job is noticing the
// client closed the socket.
func (h *Hub) readLoop(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			h.remove(sub)
			return
		}
	}
}

func (h *Hub) writeLoop(sub *subscriber) {
	defer sub.conn.Close()
	for data := range sub.send {
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(sub)
			return
		}
	}
	_ = sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
}

// remove detaches a subscriber if it is still attached. The send
// channel is closed exactly once, by whoever wins the delete.
func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	if ok {
		delete(h.subscribers, sub)
	}
	h.mu.Unlock()
	if ok {
		close(sub.send)
	}
}
