package api

import (
	"sync"
)

// Event is one solution lifecycle notification fanned out to subscribers.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Broker is the in-process event fanout used when no REDIS_URL is set.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{} // solutionId -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan Event]struct{}{}}
}

func (b *Broker) Subscribe(solutionID string) chan Event {
	ch := make(chan Event, 8)
	b.mu.Lock()
	if b.subs[solutionID] == nil {
		b.subs[solutionID] = map[chan Event]struct{}{}
	}
	b.subs[solutionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(solutionID string, ch chan Event) {
	b.mu.Lock()
	if m := b.subs[solutionID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, solutionID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

// Publish delivers evt to current subscribers; slow consumers are skipped
// rather than blocking the publisher.
func (b *Broker) Publish(solutionID string, evt Event) {
	b.mu.Lock()
	for ch := range b.subs[solutionID] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
