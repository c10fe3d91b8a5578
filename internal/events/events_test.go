package events

import (
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan ProgressEvent, 1)

	unsub := bus.Subscribe(func(e ProgressEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(ProgressEvent{FramesEmitted: 10, FramesTotal: 60})

	got := <-received
	if got.FramesEmitted != 10 || got.FramesTotal != 60 {
		t.Errorf("got %+v, want {10 60}", got)
	}
}

func TestBusTypeSelectivity(t *testing.T) {
	bus := New()
	progress := make(chan bool, 1)
	failed := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ ProgressEvent) { progress <- true })
	defer unsub1()
	unsub2 := bus.Subscribe(func(_ RunFailedEvent) { failed <- true })
	defer unsub2()

	bus.Publish(ProgressEvent{FramesEmitted: 1})
	<-progress

	select {
	case <-failed:
		t.Fatal("RunFailed subscriber should not receive ProgressEvent")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := New()
	received := make(chan PhaseChangedEvent, 2)

	unsub := bus.Subscribe(func(e PhaseChangedEvent) { received <- e })

	bus.Publish(PhaseChangedEvent{Phase: "rendering"})
	<-received

	unsub()

	bus.Publish(PhaseChangedEvent{Phase: "done"})
	select {
	case <-received:
		t.Fatal("should not receive events after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBusUnknownHandlerIsNoop(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(_ int) {})
	unsub()
}
