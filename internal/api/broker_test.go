package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	id := "sol-1"
	ch := b.Subscribe(id)

	evt := Event{Type: "solution.created", Data: map[string]any{"solutionId": id}}
	b.Publish(id, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["solutionId"].(string) != id {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(id, ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(50 * time.Millisecond):
		// acceptable if already drained and closed
	}
}

func TestBrokerIsolatesSolutions(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("sol-a")
	defer b.Unsubscribe("sol-a", ch)

	b.Publish("sol-b", Event{Type: "solution.created"})
	select {
	case evt := <-ch:
		t.Fatalf("leaked event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}
