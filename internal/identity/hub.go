package identity

import (
	"sync"

	"proedualt/internal/errors"
)

// subscriberQueue bounds how many events may wait for a slow subscriber
const subscriberQueue = 32

type subscriber struct {
	handler Handler
	events  chan Event
	quit    chan struct{}
}

// Hub fans session events out to subscribers. Each subscriber has its own
// goroutine, so events reach one subscriber in publish order without
// blocking the publisher on handler work.
type Hub struct {
	mu          sync.Mutex
	subscribers map[int]*subscriber
	nextID      int
	logger      *errors.Logger
}

// NewHub creates an empty hub
func NewHub(logger *errors.Logger) *Hub {
	return &Hub{
		subscribers: make(map[int]*subscriber),
		logger:      logger,
	}
}

// Subscribe adds h and returns a function that removes it. Events still
// queued for h when it is removed are dropped.
func (h *Hub) Subscribe(handler Handler) func() {
	sub := &subscriber{
		handler: handler,
		events:  make(chan Event, subscriberQueue),
		quit:    make(chan struct{}),
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subscribers[id] = sub
	h.mu.Unlock()

	go h.deliver(sub)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			h.mu.Unlock()
			close(sub.quit)
		})
	}
}

// Publish queues evt for every subscriber
func (h *Hub) Publish(evt Event) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	h.logger.Debug("Publishing session event", "kind", evt.Kind.String(), "subscribers", len(subs))

	for _, sub := range subs {
		select {
		case sub.events <- evt:
		case <-sub.quit:
		}
	}
}

// Len returns the number of subscribers
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *Hub) deliver(sub *subscriber) {
	for {
		select {
		case evt := <-sub.events:
			h.invoke(sub, evt)
		case <-sub.quit:
			return
		}
	}
}

func (h *Hub) invoke(sub *subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("Panic in session event handler", "event", evt.Kind.String(), "panic", r)
		}
	}()
	sub.handler(evt)
}
