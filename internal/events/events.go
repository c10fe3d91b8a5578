// Package events provides a typed in-process event bus for pipeline
// progress, built on kelindar/event.
package events

import "github.com/kelindar/event"

// Event type constants for kelindar/event.
const (
	TypePhaseChanged uint32 = iota + 1
	TypeProgress
	TypeRunCompleted
	TypeRunFailed
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// PhaseChangedEvent is published on every pipeline phase transition.
type PhaseChangedEvent struct {
	Phase string `json:"phase"`
}

// Type returns the event type identifier for PhaseChangedEvent.
func (e PhaseChangedEvent) Type() uint32 { return TypePhaseChanged }

// ProgressEvent reports rendering progress, throttled by the publisher.
type ProgressEvent struct {
	FramesEmitted int `json:"frames_emitted"`
	FramesTotal   int `json:"frames_total"`
}

// Type returns the event type identifier for ProgressEvent.
func (e ProgressEvent) Type() uint32 { return TypeProgress }

// RunCompletedEvent is published once the output container is finalized.
type RunCompletedEvent struct {
	Frames int    `json:"frames"`
	Output string `json:"output"`
}

// Type returns the event type identifier for RunCompletedEvent.
func (e RunCompletedEvent) Type() uint32 { return TypeRunCompleted }

// RunFailedEvent carries the first error of a failed run.
type RunFailedEvent struct {
	Phase string `json:"phase"`
	Error string `json:"error"`
}

// Type returns the event type identifier for RunFailedEvent.
func (e RunFailedEvent) Type() uint32 { return TypeRunFailed }

// Bus wraps a kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{dispatcher: event.NewDispatcher()}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(ProgressEvent{...})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case PhaseChangedEvent:
		event.Publish(b.dispatcher, e)
	case ProgressEvent:
		event.Publish(b.dispatcher, e)
	case RunCompletedEvent:
		event.Publish(b.dispatcher, e)
	case RunFailedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function; the handler's
// parameter type selects which events it receives. Returns an unsubscribe
// function.
// Usage: unsub := bus.Subscribe(func(e ProgressEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(PhaseChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ProgressEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RunCompletedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RunFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
