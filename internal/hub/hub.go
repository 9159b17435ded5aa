// Package hub fans room events out to websocket and in-process
// subscribers. It implements table.EventSink.
package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-rooms/internal/table"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only send control frames.
	maxMessageSize = 512

	// DefaultBuffer is the number of undelivered events a subscriber may
	// hold before it is dropped.
	DefaultBuffer = 256
)

// Hub routes published events to the subscribers of each topic. A
// subscriber that falls behind is disconnected rather than slowing the
// publisher down.
type Hub struct {
	logger   *log.Logger
	clock    quartz.Clock
	upgrader websocket.Upgrader
	buffer   int

	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	closed bool
}

var _ table.EventSink = (*Hub)(nil)

// Option configures a Hub.
type Option func(*Hub)

// WithClock sets the clock driving websocket keepalive pings. Socket
// deadlines always use wall time.
func WithClock(clock quartz.Clock) Option {
	return func(h *Hub) { h.clock = clock }
}

// WithBuffer sets the per-subscriber queue length.
func WithBuffer(n int) Option {
	return func(h *Hub) { h.buffer = n }
}

// New returns an empty hub.
func New(logger *log.Logger, opts ...Option) *Hub {
	h := &Hub{
		logger: logger.WithPrefix("hub"),
		clock:  quartz.NewReal(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		buffer: DefaultBuffer,
		topics: make(map[string]map[*Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscription receives the encoded events of one topic.
type Subscription struct {
	hub   *Hub
	topic string
	ch    chan []byte
}

// C delivers each event as a JSON document. It is closed when the
// subscription ends.
func (s *Subscription) C() <-chan []byte {
	return s.ch
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string {
	return s.topic
}

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.removeLocked(s)
}

// Subscribe registers a subscriber for topic.
func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{hub: h, topic: topic, ch: make(chan []byte, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	h.logger.Debug("Subscriber added", "topic", topic, "total", len(subs))
	return sub
}

func (h *Hub) removeLocked(sub *Subscription) {
	subs, ok := h.topics[sub.topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(h.topics, sub.topic)
	}
	h.logger.Debug("Subscriber removed", "topic", sub.topic, "total", len(subs))
}

// Publish encodes event once and queues it for every subscriber of topic.
func (h *Hub) Publish(topic string, event table.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode event", "topic", topic, "type", event.EventType(), "error", err)
		return
	}

	var slow []*Subscription
	h.mu.RLock()
	for sub := range h.topics[topic] {
		select {
		case sub.ch <- data:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	for _, sub := range slow {
		h.logger.Warn("Subscriber buffer full, disconnecting", "topic", topic)
		h.removeLocked(sub)
	}
	h.mu.Unlock()
}

// Count returns the number of subscribers of topic.
func (h *Hub) Count(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, subs := range h.topics {
		for sub := range subs {
			h.removeLocked(sub)
		}
	}
}

// ServeTopic upgrades the request to a websocket and streams every event
// published on topic to it until either side hangs up.
func (h *Hub) ServeTopic(w http.ResponseWriter, r *http.Request, topic string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}
	sub := h.Subscribe(topic)
	h.logger.Info("Client connected", "topic", topic, "remote", r.RemoteAddr)

	go h.writePump(conn, sub)
	go h.readPump(conn, sub)
}

// readPump discards client frames and keeps the read deadline moving on
// pongs. It ends the subscription when the peer goes away.
func (h *Hub) readPump(conn *websocket.Conn, sub *Subscription) {
	defer func() {
		sub.Close()
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", "topic", sub.topic, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, sub *Subscription) {
	ticker := h.clock.NewTicker(pingPeriod, "hub", "ping")
	defer func() {
		ticker.Stop()
		sub.Close()
		_ = conn.Close()
		h.logger.Info("Client disconnected", "topic", sub.topic)
	}()

	for {
		select {
		case data, ok := <-sub.ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscription ended"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("Failed to write message", "topic", sub.topic, "error", err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
