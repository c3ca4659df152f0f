package events

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"evalgrid/internal/model"
	"evalgrid/pkg/logger"
)

// Broker fans out task events to live subscribers (websocket clients).
// Persistence of the audit trail happens elsewhere; the broker only carries
// the live feed.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[chan []byte]struct{}
}

// NewBroker creates an event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded task events.
// The caller must call Unsubscribe when done.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64) // Buffer to avoid blocking the publish loop
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	_, ok := b.subscribers[ch]
	delete(b.subscribers, ch)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Publish sends an event to all subscribers. A subscriber with a full
// buffer is skipped so one slow client cannot block the others.
func (b *Broker) Publish(event *model.TaskEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn("failed to marshal task event", zap.Error(err))
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- data:
		default:
			// Subscriber buffer full, drop the event for them
		}
	}
}
