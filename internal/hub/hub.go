// Package hub is the in-process publish/subscribe fan-out. Topics are
// plain hierarchical strings ("srv.sess.info"); subscribers are buffered
// channels owned by their transport connection.
package hub

import (
	"sync"

	"go.uber.org/zap"
)

// Envelope is one delivered broadcast.
type Envelope struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

type Subscriber chan Envelope

type Hub struct {
	mu     sync.Mutex
	topics map[string]map[Subscriber]struct{}
	subs   map[Subscriber]map[string]struct{}
	log    *zap.Logger
}

func New(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		topics: make(map[string]map[Subscriber]struct{}),
		subs:   make(map[Subscriber]map[string]struct{}),
		log:    logger,
	}
}

// Register creates a subscriber channel. The caller reads from it until
// Remove closes it.
func (h *Hub) Register(buffer int) Subscriber {
	sub := make(Subscriber, buffer)
	h.mu.Lock()
	h.subs[sub] = make(map[string]struct{})
	h.mu.Unlock()
	return sub
}

// Subscribe adds the subscriber to each topic. Removed subscribers are
// ignored.
func (h *Hub) Subscribe(sub Subscriber, topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	owned, ok := h.subs[sub]
	if !ok {
		return
	}
	for _, topic := range topics {
		if h.topics[topic] == nil {
			h.topics[topic] = make(map[Subscriber]struct{})
		}
		h.topics[topic][sub] = struct{}{}
		owned[topic] = struct{}{}
	}
}

// Unsubscribe detaches the subscriber from the given topics.
func (h *Hub) Unsubscribe(sub Subscriber, topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		h.detach(sub, topic)
	}
}

// Remove detaches the subscriber from every topic and closes its channel.
func (h *Hub) Remove(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	owned, ok := h.subs[sub]
	if !ok {
		return
	}
	for topic := range owned {
		if set := h.topics[topic]; set != nil {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	delete(h.subs, sub)
	close(sub)
}

func (h *Hub) detach(sub Subscriber, topic string) {
	if set := h.topics[topic]; set != nil {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.topics, topic)
		}
	}
	if owned := h.subs[sub]; owned != nil {
		delete(owned, topic)
	}
}

// Publish delivers to every subscriber of the topic without blocking.
// A subscriber with a full buffer misses the message; clients that care
// resynchronize from their next reply.
func (h *Hub) Publish(topic string, payload any) {
	env := Envelope{Topic: topic, Payload: payload}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.topics[topic] {
		select {
		case sub <- env:
		default:
			h.log.Warn("dropping broadcast for slow subscriber", zap.String("topic", topic))
		}
	}
}
