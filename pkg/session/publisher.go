package session

import (
	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
)

// Publisher fans a Snapshot out to every subscriber. Each subscriber
// gets a capacity-1 channel; a slow subscriber simply misses
// intermediate snapshots rather than blocking the writer (spec.md §5:
// "bounded per-subscriber queue of >= 1 with latest-wins").
type Publisher struct {
	mu   deadlock.Mutex
	subs map[uuid.UUID]chan Snapshot
}

// NewPublisher returns an empty fan-out.
func NewPublisher() *Publisher {
	return &Publisher{subs: map[uuid.UUID]chan Snapshot{}}
}

// Subscribe registers a new listener and returns its id and channel.
// Callers must Unsubscribe when done to free the slot.
func (p *Publisher) Subscribe() (uuid.UUID, <-chan Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := uuid.New()
	ch := make(chan Snapshot, 1)
	p.subs[id] = ch
	return id, ch
}

// Unsubscribe cancels a subscriber's fan-out slot.
func (p *Publisher) Unsubscribe(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ch, ok := p.subs[id]; ok {
		close(ch)
		delete(p.subs, id)
	}
}

// Broadcast delivers snap to every current subscriber, draining and
// refilling any channel that is still holding an undelivered snapshot
// so the latest value always wins.
func (p *Publisher) Broadcast(snap Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, ch := range p.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// SubscriberCount reports how many listeners are currently attached.
func (p *Publisher) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}
