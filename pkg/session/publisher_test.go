package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeUnsubscribeCount(t *testing.T) {
	p := NewPublisher()
	assert.Equal(t, 0, p.SubscriberCount())

	id, _ := p.Subscribe()
	assert.Equal(t, 1, p.SubscriberCount())

	p.Unsubscribe(id)
	assert.Equal(t, 0, p.SubscriberCount())
}

func TestBroadcastDeliversToAllSubscribers(t *testing.T) {
	p := NewPublisher()
	_, chA := p.Subscribe()
	_, chB := p.Subscribe()

	snap := Snapshot{Time: 1}
	p.Broadcast(snap)

	require.Equal(t, 1, len(chA))
	require.Equal(t, 1, len(chB))
	assert.Equal(t, 1, (<-chA).Time)
	assert.Equal(t, 1, (<-chB).Time)
}

func TestBroadcastIsLatestWinsUnderBackpressure(t *testing.T) {
	p := NewPublisher()
	_, ch := p.Subscribe()

	p.Broadcast(Snapshot{Time: 1})
	p.Broadcast(Snapshot{Time: 2})
	p.Broadcast(Snapshot{Time: 3})

	assert.Equal(t, 1, len(ch))
	assert.Equal(t, 3, (<-ch).Time)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	p := NewPublisher()
	id, ch := p.Subscribe()
	p.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)
}
