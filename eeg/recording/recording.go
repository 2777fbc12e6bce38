package recording

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-eeg/eeg"
)

// Kind classifies a channel by the signal it carries.
type Kind int

const (
	KindEEG Kind = iota
	KindEOG
	KindECG
	KindEMG
	KindStim
	KindMisc
)

var kindNames = [...]string{"eeg", "eog", "ecg", "emg", "stim", "misc"}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Channel describes one signal of a recording.
type Channel struct {
	Name string
	Kind Kind
	Unit string
	// Bad marks a channel excluded from analysis.
	Bad bool
}

// Recording is a multichannel time series with a single sample rate.
type Recording struct {
	Channels   []Channel
	SampleRate float64
	// Data holds one sample slice per channel, in channel order.
	Data      [][]float64
	StartTime time.Time
	// Source is the file the recording was read from, if any.
	Source string
	// Skipped lists signals dropped while decoding because their sample
	// rate differs from the recording's.
	Skipped []string
}

// New builds a validated recording. Data is used as is, not copied.
func New(channels []Channel, sampleRate float64, data [][]float64) (*Recording, error) {
	rec := &Recording{
		Channels:   channels,
		SampleRate: sampleRate,
		Data:       data,
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate checks the structural invariants: at least one channel, unique
// names, a positive finite sample rate and equal channel lengths.
func (r *Recording) Validate() error {
	if len(r.Channels) == 0 {
		return fmt.Errorf("%w: recording has no channels", eeg.ErrDecode)
	}
	if len(r.Data) != len(r.Channels) {
		return fmt.Errorf("%w: %d channels but %d data rows", eeg.ErrDecode, len(r.Channels), len(r.Data))
	}
	if !(r.SampleRate > 0) || math.IsInf(r.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %f", eeg.ErrDecode, r.SampleRate)
	}

	seen := make(map[string]struct{}, len(r.Channels))
	for i, ch := range r.Channels {
		if ch.Name == "" {
			return fmt.Errorf("%w: channel %d has no name", eeg.ErrDecode, i)
		}
		if _, dup := seen[ch.Name]; dup {
			return fmt.Errorf("%w: duplicate channel name %q", eeg.ErrDecode, ch.Name)
		}
		seen[ch.Name] = struct{}{}

		if len(r.Data[i]) != len(r.Data[0]) {
			return fmt.Errorf("%w: channel %q has %d samples, want %d", eeg.ErrDecode, ch.Name, len(r.Data[i]), len(r.Data[0]))
		}
	}

	return nil
}

// Len returns the number of samples per channel.
func (r *Recording) Len() int {
	if len(r.Data) == 0 {
		return 0
	}
	return len(r.Data[0])
}

// Duration returns the recording length in seconds.
func (r *Recording) Duration() float64 {
	if r.SampleRate <= 0 {
		return 0
	}
	return float64(r.Len()) / r.SampleRate
}

// Names returns the channel names in order.
func (r *Recording) Names() []string {
	names := make([]string, len(r.Channels))
	for i, ch := range r.Channels {
		names[i] = ch.Name
	}
	return names
}

// Index returns the position of the named channel, or -1.
func (r *Recording) Index(name string) int {
	for i, ch := range r.Channels {
		if ch.Name == name {
			return i
		}
	}
	return -1
}

// MarkBad flags the named channels as bad. Unknown names are reported as
// an error and leave the recording unchanged.
func (r *Recording) MarkBad(names ...string) error {
	idx := make([]int, 0, len(names))
	for _, name := range names {
		i := r.Index(name)
		if i < 0 {
			return fmt.Errorf("recording: unknown channel %q", name)
		}
		idx = append(idx, i)
	}
	for _, i := range idx {
		r.Channels[i].Bad = true
	}
	return nil
}
