// Package session drives a streaming analyzer on a timer, keeps a bounded
// tick history and fans events out to sinks.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-eeg/eeg"
	"github.com/cwbudde/algo-eeg/eeg/stream"
)

const publishTimeout = 5 * time.Second

// Option configures a [Monitor].
type Option func(*Monitor)

// WithID sets the session identifier carried by events.
func WithID(id string) Option {
	return func(m *Monitor) {
		m.id = id
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithHistorySize bounds the tick history.
func WithHistorySize(n int) Option {
	return func(m *Monitor) {
		m.history = NewHistory(n)
	}
}

// WithSpeed scales playback: the tick interval is chunk duration / speed.
func WithSpeed(speed float64) Option {
	return func(m *Monitor) {
		m.speed = speed
	}
}

// WithInterval overrides the tick interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.interval = d
	}
}

// WithSink adds an event sink.
func WithSink(s Sink) Option {
	return func(m *Monitor) {
		if s != nil {
			m.sinks[m.nextSink] = s
			m.nextSink++
		}
	}
}

// Monitor owns one analyzer and ticks it on a timer. All analyzer access is
// serialized by the monitor.
type Monitor struct {
	id       string
	logger   *zap.Logger
	history  *History
	speed    float64
	interval time.Duration

	mu       sync.Mutex
	analyzer *stream.Analyzer

	sinkMu   sync.RWMutex
	sinks    map[int]Sink
	nextSink int

	// runMu serializes Start and Stop; loopMu guards loop alone so Cancel,
	// Running and Done never wait on a stopping loop.
	runMu  sync.Mutex
	loopMu sync.Mutex
	loop   *loop
}

// loop is one run of the tick goroutine.
type loop struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func (l *loop) finished() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// New returns a stopped monitor over an initialized analyzer.
func New(a *stream.Analyzer, opts ...Option) (*Monitor, error) {
	if a == nil || a.State() == stream.Uninitialized {
		return nil, eeg.ErrNotInitialized
	}

	m := &Monitor{
		logger: zap.NewNop(),
		speed:  1,
		sinks:  map[int]Sink{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.history == nil {
		m.history = NewHistory(DefaultHistorySize)
	}
	if m.interval <= 0 {
		if !(m.speed > 0) {
			return nil, fmt.Errorf("%w: speed must be > 0: %f", eeg.ErrParameter, m.speed)
		}
		m.interval = time.Duration(a.Config().ChunkSeconds / m.speed * float64(time.Second))
	}
	if m.interval <= 0 {
		return nil, fmt.Errorf("%w: tick interval must be > 0: %s", eeg.ErrParameter, m.interval)
	}
	m.analyzer = a
	return m, nil
}

// ID returns the session identifier.
func (m *Monitor) ID() string {
	return m.id
}

// Interval returns the tick interval.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Subscribe adds a sink and returns a function that removes it.
func (m *Monitor) Subscribe(s Sink) (unsubscribe func()) {
	m.sinkMu.Lock()
	key := m.nextSink
	m.sinks[key] = s
	m.nextSink++
	m.sinkMu.Unlock()

	return func() {
		m.sinkMu.Lock()
		delete(m.sinks, key)
		m.sinkMu.Unlock()
	}
}

// Start begins ticking. It is a no-op while running and returns
// [eeg.ErrEndOfStream] when the analyzer is exhausted; replay with Reset.
// The loop stops when ctx is done, on Stop or Cancel, at end of stream, or
// on the first analysis error.
func (m *Monitor) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.Running() {
		return nil
	}

	m.mu.Lock()
	exhausted := m.analyzer.State() == stream.Exhausted
	m.mu.Unlock()
	if exhausted {
		return eeg.ErrEndOfStream
	}

	ctx, cancel := context.WithCancel(ctx)
	l := &loop{ctx: ctx, cancel: cancel, done: make(chan struct{})}

	m.loopMu.Lock()
	if prev := m.loop; prev != nil {
		prev.cancel()
	}
	m.loop = l
	m.loopMu.Unlock()

	go m.run(l)

	m.logger.Info("session started", zap.String("session_id", m.id), zap.Duration("interval", m.interval))
	return nil
}

// Stop halts the loop and waits for it to exit. It must not be called from
// a [Sink]; sinks use Cancel.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	l := m.current()
	if l == nil || l.finished() {
		return
	}
	l.cancel()
	<-l.done
	m.logger.Info("session stopped", zap.String("session_id", m.id))
}

// Cancel asks the loop to stop without waiting for it. It is safe to call
// from a [Sink].
func (m *Monitor) Cancel() {
	if l := m.current(); l != nil {
		l.cancel()
	}
}

// Running reports whether the loop is active.
func (m *Monitor) Running() bool {
	l := m.current()
	return l != nil && !l.finished()
}

// Done returns a channel closed when the current loop exits, or nil if the
// monitor was never started.
func (m *Monitor) Done() <-chan struct{} {
	l := m.current()
	if l == nil {
		return nil
	}
	return l.done
}

func (m *Monitor) current() *loop {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()
	return m.loop
}

func (m *Monitor) run(l *loop) {
	defer close(l.done)
	// release the context when the loop ends on its own
	defer l.cancel()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Step(l.ctx); err != nil {
				return
			}
		}
	}
}

// Step runs one tick, records it and publishes the resulting event.
// End of stream publishes an end event and returns [eeg.ErrEndOfStream].
func (m *Monitor) Step(ctx context.Context) (stream.Tick, error) {
	m.mu.Lock()
	tick, err := m.analyzer.Advance()
	status := m.analyzer.Status()
	m.mu.Unlock()

	now := time.Now()
	switch {
	case errors.Is(err, eeg.ErrEndOfStream):
		m.logger.Info("session reached end of stream", zap.String("session_id", m.id), zap.Int("ticks", status.Ticks))
		m.publish(ctx, Event{Session: m.id, Kind: EventEnd, At: now, Status: status})
		return stream.Tick{}, err
	case err != nil:
		m.logger.Error("session tick failed", zap.String("session_id", m.id), zap.Error(err))
		m.publish(ctx, Event{Session: m.id, Kind: EventError, At: now, Status: status, Error: err.Error()})
		return stream.Tick{}, err
	}

	m.history.Add(EntryOf(tick, now))
	m.logger.Debug("session tick",
		zap.String("session_id", m.id),
		zap.Int("index", tick.Index),
		zap.Float64("time", tick.Time),
		zap.Stringer("dominant", tick.Dominant),
		zap.Stringer("label", tick.Label),
	)
	m.publish(ctx, Event{Session: m.id, Kind: EventTick, At: now, Status: status, Tick: &tick})
	return tick, nil
}

func (m *Monitor) publish(ctx context.Context, ev Event) {
	m.sinkMu.RLock()
	sinks := make([]Sink, 0, len(m.sinks))
	for _, s := range m.sinks {
		sinks = append(sinks, s)
	}
	m.sinkMu.RUnlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	for _, s := range sinks {
		if err := s.Publish(ctx, ev); err != nil {
			m.logger.Warn("session publish failed", zap.String("session_id", m.id), zap.String("event", string(ev.Kind)), zap.Error(err))
		}
	}
}

// Reset stops the loop, rewinds the analyzer and clears the history.
func (m *Monitor) Reset() error {
	m.Stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.analyzer.Reset(); err != nil {
		return err
	}
	m.history.Clear()
	return nil
}

// Seek moves the analyzer cursor. A running loop keeps running from the
// new position.
func (m *Monitor) Seek(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analyzer.Seek(seconds)
}

// Status is a snapshot of a monitor.
type Status struct {
	ID       string        `json:"id"`
	Running  bool          `json:"running"`
	Interval float64       `json:"interval_seconds"`
	History  int           `json:"history"`
	Config   stream.Config `json:"config"`
	Channels []string      `json:"channels"`
	Cursor   stream.Status `json:"cursor"`
}

// Status returns a snapshot of the monitor.
func (m *Monitor) Status() Status {
	running := m.Running()

	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{
		ID:       m.id,
		Running:  running,
		Interval: m.interval.Seconds(),
		History:  m.history.Len(),
		Config:   m.analyzer.Config(),
		Cursor:   m.analyzer.Status(),
	}
	if sig := m.analyzer.Signal(); sig != nil {
		st.Channels = append([]string(nil), sig.Channels...)
	}
	return st
}

// History returns the recorded entries, oldest first.
func (m *Monitor) History() []Entry {
	return m.history.Snapshot()
}
