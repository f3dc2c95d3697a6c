package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("search.", 10)
	defer unsub()

	b.Publish(Event{Kind: SearchChanged, Payload: "snapshot"})

	select {
	case evt := <-ch:
		if evt.Kind != SearchChanged {
			t.Errorf("got kind %q, want %s", evt.Kind, SearchChanged)
		}
		if evt.Timestamp.IsZero() {
			t.Error("Publish should stamp a zero Timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("auth.", 10)
	defer unsub()

	b.Publish(Event{Kind: SearchFailed})
	b.Publish(Event{Kind: AuthChanged})

	select {
	case evt := <-ch:
		if evt.Kind != AuthChanged {
			t.Errorf("got kind %q, want %s", evt.Kind, AuthChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeTwice(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("search.", 10)
	unsub()
	unsub()

	b.Publish(Event{Kind: SearchChanged})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("search.", 1)
	defer unsub()

	b.Publish(Event{Kind: "search.one"})
	b.Publish(Event{Kind: "search.two"})

	evt := <-ch
	if evt.Kind != "search.one" {
		t.Errorf("got %q, want search.one", evt.Kind)
	}
	if got := b.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}
}
