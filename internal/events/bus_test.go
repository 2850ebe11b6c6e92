package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/codenerd/reasonkit/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishSubscribeFilter(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	asserted := bus.Subscribe(Asserted)
	all := bus.Subscribe()

	bus.Publish(Event{Type: Asserted, AssertionID: model.AssertionID("a1"), KB: "global"})
	bus.Publish(Event{Type: Retracted, AssertionID: model.AssertionID("a1"), KB: "global"})

	select {
	case e := <-asserted:
		assert.Equal(t, Asserted, e.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for filtered event")
	}

	select {
	case e := <-asserted:
		t.Fatalf("unexpected second event on filtered subscriber: %+v", e)
	case <-time.After(20 * time.Millisecond):
	}

	received := 0
	for i := 0; i < 2; i++ {
		select {
		case <-all:
			received++
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for unfiltered event")
		}
	}
	assert.Equal(t, 2, received)
}

func TestSequenceNumbersMonotonic(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()
	ch := bus.Subscribe()

	bus.Publish(Event{Type: Asserted})
	bus.Publish(Event{Type: Asserted})

	first := <-ch
	second := <-ch
	assert.Less(t, first.Seq, second.Seq)
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()
	_ = bus.Subscribe(Asserted) // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+10; i++ {
			bus.Publish(Event{Type: Asserted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber channel")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(nil)
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	_, open := <-ch
	require.False(t, open)
	bus.Close()
}
