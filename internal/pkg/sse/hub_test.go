package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicOnly(t *testing.T) {
	hub := NewHub()

	hr, stopHR := hub.Subscribe(TopicHR)
	defer stopHR()
	team, stopTeam := hub.Subscribe(TeamTopic("team-a"))
	defer stopTeam()

	hub.Publish(TopicHR, Event{Event: "case.received", Data: "c-1"})

	select {
	case e := <-hr:
		assert.Equal(t, TopicHR, e.Topic)
		assert.Equal(t, "case.received", e.Event)
	default:
		t.Fatal("hr subscriber got nothing")
	}
	assert.Len(t, team, 0)
	assert.Equal(t, 2, hub.TotalSubscribers())
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("team:x")
	assert.Equal(t, 1, hub.SubscriberCount("team:x"))

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe(TopicHR)
	defer cleanup()

	for i := 0; i < hub.bufferSize+5; i++ {
		hub.Publish(TopicHR, Event{Event: "tick"})
	}
	require.Len(t, ch, hub.bufferSize)
}
