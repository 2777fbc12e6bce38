package session

import (
	"context"
	"time"

	"github.com/cwbudde/algo-eeg/eeg/stream"
)

// EventKind names a monitor event.
type EventKind string

const (
	EventTick  EventKind = "tick"
	EventEnd   EventKind = "end"
	EventError EventKind = "error"
)

// Event is delivered to every [Sink] of a monitor.
type Event struct {
	Session string        `json:"session_id"`
	Kind    EventKind     `json:"event"`
	At      time.Time     `json:"at"`
	Status  stream.Status `json:"status"`
	Tick    *stream.Tick  `json:"tick,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Sink receives monitor events. Publish is called from the monitor loop and
// should not block for long. A sink that wants to end the session calls
// Cancel; Stop and Reset wait on the loop that is publishing.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(ctx context.Context, ev Event) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// ChannelSink forwards events to a buffered channel and drops them when the
// buffer is full.
type ChannelSink struct {
	C chan Event
}

// NewChannelSink returns a sink with a buffer of size events.
func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{C: make(chan Event, max(size, 1))}
}

// Publish enqueues ev without blocking.
func (s *ChannelSink) Publish(_ context.Context, ev Event) error {
	select {
	case s.C <- ev:
	default:
		// buffer full, skip
	}
	return nil
}
