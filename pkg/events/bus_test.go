package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscriberOnlyReceivesEventsAfterSubscribing(t *testing.T) {
	b := New(8)
	b.Publish(Event{Type: TypeNewEvidence, ProjectID: "proj1"})

	sub := b.Subscribe("proj1")
	defer sub.Close()

	b.Publish(Event{Type: TypeNewProposition, ProjectID: "proj1"})

	select {
	case ev := <-sub.Events:
		assert.Equal(t, TypeNewProposition, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("expected to receive the post-subscribe event")
	}

	select {
	case ev := <-sub.Events:
		t.Fatalf("unexpected extra event: %+v", ev)
	default:
	}
}

func TestBus_EventsAreNotCrossDeliveredAcrossProjects(t *testing.T) {
	b := New(8)
	sub := b.Subscribe("proj1")
	defer sub.Close()

	b.Publish(Event{Type: TypeNewEvidence, ProjectID: "proj2"})

	select {
	case ev := <-sub.Events:
		t.Fatalf("unexpected cross-project delivery: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_OverflowDropsOldestEvent(t *testing.T) {
	b := New(2)
	sub := b.Subscribe("proj1")
	defer sub.Close()

	for i := 0; i < 5; i++ {
		b.Publish(Event{Type: TypeNewEvidence, ProjectID: "proj1", Payload: i})
	}

	// Backlog of 2: only the two most recent survive.
	first := <-sub.Events
	second := <-sub.Events
	assert.Equal(t, 3, first.Payload)
	assert.Equal(t, 4, second.Payload)
}

func TestBus_CloseStopsDelivery(t *testing.T) {
	b := New(8)
	sub := b.Subscribe("proj1")
	sub.Close()

	b.Publish(Event{Type: TypeNewEvidence, ProjectID: "proj1"})

	_, ok := <-sub.Events
	require.False(t, ok, "channel should be closed after Close")
}
