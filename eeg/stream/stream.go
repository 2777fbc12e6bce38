// Package stream implements the windowed streaming analyzer: a cursor over
// a prepared signal that, on every tick, analyzes a trailing window ending
// at the next chunk boundary and returns the chunk for display.
//
// An Analyzer is driven by a single consumer. Its methods are not safe for
// concurrent use.
package stream

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-eeg/dsp/core"
	"github.com/cwbudde/algo-eeg/eeg"
	"github.com/cwbudde/algo-eeg/eeg/attention"
	"github.com/cwbudde/algo-eeg/eeg/band"
	"github.com/cwbudde/algo-eeg/eeg/prepare"
	"github.com/cwbudde/algo-eeg/eeg/recording"
	timestats "github.com/cwbudde/algo-eeg/stats/time"
)

// State is the analyzer lifecycle state.
type State int

const (
	Uninitialized State = iota
	Ready
	Exhausted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{Uninitialized, Ready, Exhausted} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("stream: unknown state %q", text)
}

// Config holds the durations and cutoffs fixed at initialization.
type Config struct {
	ChunkSeconds  float64 `json:"chunk_seconds"`
	WindowSeconds float64 `json:"window_seconds"`
	LowHz         float64 `json:"low_hz"`
	HighHz        float64 `json:"high_hz"`
}

// Validate checks that the durations are positive and finite and that the
// cutoffs are ordered. The Nyquist bound is checked during preparation.
func (c Config) Validate() error {
	if !positive(c.ChunkSeconds) {
		return fmt.Errorf("%w: chunk duration must be > 0: %f", eeg.ErrParameter, c.ChunkSeconds)
	}
	if !positive(c.WindowSeconds) {
		return fmt.Errorf("%w: window duration must be > 0: %f", eeg.ErrParameter, c.WindowSeconds)
	}
	if !positive(c.LowHz) || !positive(c.HighHz) || c.LowHz >= c.HighHz {
		return fmt.Errorf("%w: cutoffs must satisfy 0 < low < high: %f, %f", eeg.ErrParameter, c.LowHz, c.HighHz)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Segment is a channel-labeled block of samples with its time axis.
type Segment struct {
	Channels []string    `json:"channels"`
	Start    int         `json:"start"`
	End      int         `json:"end"`
	Times    []float64   `json:"times"`
	Data     [][]float64 `json:"data"`
}

// Tick is the result of one [Analyzer.Advance].
type Tick struct {
	Index int `json:"index"`
	// Start and End bound the analysis window in samples, [Start, End).
	Start int `json:"start"`
	End   int `json:"end"`
	// Time is the cursor position in seconds after the tick.
	Time float64 `json:"time"`

	Powers   band.Powers        `json:"band_powers"`
	Relative band.Powers        `json:"relative_powers"`
	Dominant band.Band          `json:"dominant_band"`
	Label    attention.Label    `json:"attention_label"`
	Ratios   map[string]float64 `json:"ratios"`
	Spectral band.Spectral      `json:"spectral"`

	// Amplitude summarizes all channels of the visualization chunk.
	Amplitude timestats.Stats `json:"amplitude"`
	Viz       Segment         `json:"viz"`
}

// Analyzer is the stateful cursor. The zero value is uninitialized.
type Analyzer struct {
	state State
	cfg   Config

	sig *prepare.Signal
	ext *band.Extractor

	chunk  int
	window int
	total  int
	offset int
	ticks  int
}

// New returns an initialized analyzer over rec.
func New(rec *recording.Recording, cfg Config, opts ...prepare.Option) (*Analyzer, error) {
	a := &Analyzer{}
	if err := a.Initialize(context.Background(), rec, cfg, opts...); err != nil {
		return nil, err
	}
	return a, nil
}

// Initialize prepares rec and resets the cursor to 0. On error the analyzer
// keeps its previous state.
func (a *Analyzer) Initialize(ctx context.Context, rec *recording.Recording, cfg Config, opts ...prepare.Option) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: nil recording", eeg.ErrDecode)
	}

	chunk := core.SecondsToSamples(cfg.ChunkSeconds, rec.SampleRate)
	if chunk < 1 {
		return fmt.Errorf("%w: chunk of %f s is shorter than one sample", eeg.ErrParameter, cfg.ChunkSeconds)
	}
	window := core.SecondsToSamples(cfg.WindowSeconds, rec.SampleRate)
	if window < 1 {
		return fmt.Errorf("%w: window of %f s is shorter than one sample", eeg.ErrParameter, cfg.WindowSeconds)
	}

	sig, err := prepare.PrepareContext(ctx, rec, cfg.LowHz, cfg.HighHz, opts...)
	if err != nil {
		return err
	}
	ext, err := band.NewExtractor(sig.SampleRate)
	if err != nil {
		return fmt.Errorf("%w: %v", eeg.ErrParameter, err)
	}

	*a = Analyzer{
		state:  Ready,
		cfg:    cfg,
		sig:    sig,
		ext:    ext,
		chunk:  chunk,
		window: window,
		total:  sig.Len(),
	}
	return nil
}

// Advance analyzes the next window and moves the cursor one chunk forward.
// It returns [eeg.ErrEndOfStream] once the cursor cannot fit another full
// window, and keeps returning it until Reset or Seek.
func (a *Analyzer) Advance() (Tick, error) {
	switch a.state {
	case Uninitialized:
		return Tick{}, eeg.ErrNotInitialized
	case Exhausted:
		return Tick{}, eeg.ErrEndOfStream
	}
	if a.offset >= a.total-a.window {
		a.state = Exhausted
		return Tick{}, eeg.ErrEndOfStream
	}

	end := min(a.offset+a.chunk, a.total)
	start := max(0, a.offset-a.window+a.chunk)
	if start > end-a.window {
		// chunks longer than the window clamp at the end of the signal
		start = max(0, end-a.window)
	}

	res, err := a.ext.Extract(a.sig.Segment(start, end))
	if err != nil {
		return Tick{}, fmt.Errorf("stream: analysis window [%d, %d): %w", start, end, err)
	}

	powers := res.Powers.Map()
	tick := Tick{
		Index:    a.ticks,
		Start:    start,
		End:      end,
		Powers:   res.Powers,
		Relative: res.Powers.Relative(),
		Dominant: res.Dominant,
		Label:    attention.FromBand(res.Dominant),
		Ratios:   band.Ratios(powers),
		Spectral: res.Spectral,
	}
	tick.Viz, tick.Amplitude = a.viz(max(0, end-a.chunk), end)

	a.offset += a.chunk
	a.ticks++
	tick.Time = a.CurrentTime()
	return tick, nil
}

func (a *Analyzer) viz(start, end int) (Segment, timestats.Stats) {
	seg := Segment{
		Channels: append([]string(nil), a.sig.Channels...),
		Start:    start,
		End:      end,
		Times:    make([]float64, end-start),
		Data:     make([][]float64, len(a.sig.Data)),
	}
	for i := range seg.Times {
		seg.Times[i] = float64(start+i) / a.sig.SampleRate
	}

	amp := timestats.NewStreamingStats()
	for ch, view := range a.sig.Segment(start, end) {
		seg.Data[ch] = append([]float64(nil), view...)
		amp.Update(view)
	}
	return seg, amp.Result()
}

// Reset moves the cursor back to 0.
func (a *Analyzer) Reset() error {
	if a.state == Uninitialized {
		return eeg.ErrNotInitialized
	}
	a.offset = 0
	a.ticks = 0
	a.state = Ready
	return nil
}

// Seek moves the cursor to seconds, clamped to the signal.
func (a *Analyzer) Seek(seconds float64) error {
	if a.state == Uninitialized {
		return eeg.ErrNotInitialized
	}
	if math.IsNaN(seconds) {
		return fmt.Errorf("%w: seek to NaN", eeg.ErrParameter)
	}

	off := int(math.Round(core.Clamp(seconds*a.sig.SampleRate, 0, float64(a.total))))
	a.offset = off
	a.ticks = off / a.chunk
	a.state = Ready
	return nil
}

// State returns the lifecycle state.
func (a *Analyzer) State() State {
	return a.state
}

// Config returns the configuration given to Initialize.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Signal returns the prepared signal, or nil before Initialize.
func (a *Analyzer) Signal() *prepare.Signal {
	return a.sig
}

// Offset returns the cursor position in samples.
func (a *Analyzer) Offset() int {
	return a.offset
}

// ChunkSamples returns the chunk length in samples.
func (a *Analyzer) ChunkSamples() int {
	return a.chunk
}

// WindowSamples returns the analysis window length in samples.
func (a *Analyzer) WindowSamples() int {
	return a.window
}

// TotalSamples returns the number of samples per channel.
func (a *Analyzer) TotalSamples() int {
	return a.total
}

// Progress returns offset/total clamped to [0, 1].
func (a *Analyzer) Progress() float64 {
	if a.total == 0 {
		return 0
	}
	return core.Clamp(float64(a.offset)/float64(a.total), 0, 1)
}

// CurrentTime returns the cursor position in seconds.
func (a *Analyzer) CurrentTime() float64 {
	if a.sig == nil {
		return 0
	}
	return float64(a.offset) / a.sig.SampleRate
}

// TotalDuration returns the signal length in seconds.
func (a *Analyzer) TotalDuration() float64 {
	if a.sig == nil {
		return 0
	}
	return a.sig.Duration()
}

// Status is a snapshot of the cursor.
type Status struct {
	State         State   `json:"state"`
	Offset        int     `json:"offset"`
	Ticks         int     `json:"ticks"`
	Progress      float64 `json:"progress"`
	CurrentTime   float64 `json:"current_time"`
	TotalDuration float64 `json:"total_duration"`
}

// Status returns a snapshot of the cursor.
func (a *Analyzer) Status() Status {
	return Status{
		State:         a.state,
		Offset:        a.offset,
		Ticks:         a.ticks,
		Progress:      a.Progress(),
		CurrentTime:   a.CurrentTime(),
		TotalDuration: a.TotalDuration(),
	}
}
