// Package prepare turns a raw recording into a referenced, band-limited
// signal ready for repeated windowed analysis.
//
// Preparation keeps the good EEG channels, applies a common-average
// reference when at least two channels remain, optionally notches out mains
// interference, and band-pass filters every channel with a linear-phase FIR
// applied without net delay. Sample rate and
// sample count are unchanged, so sample i of the output is aligned with
// sample i of the input.
package prepare

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-eeg/dsp/filter/biquad"
	"github.com/cwbudde/algo-eeg/dsp/filter/fir"
	"github.com/cwbudde/algo-eeg/dsp/window"
	"github.com/cwbudde/algo-eeg/eeg"
	"github.com/cwbudde/algo-eeg/eeg/recording"
)

// Signal is a prepared multichannel signal. It must not be modified after
// Prepare returns.
type Signal struct {
	Channels   []string
	SampleRate float64
	Data       [][]float64

	LowHz  float64
	HighHz float64
	// Taps is the band-pass kernel length.
	Taps int
	// Referenced reports whether the common-average reference was applied.
	Referenced bool
	// NotchHz lists the line-noise frequencies removed before band-passing.
	NotchHz []float64
}

// Len returns the number of samples per channel.
func (s *Signal) Len() int {
	if len(s.Data) == 0 {
		return 0
	}
	return len(s.Data[0])
}

// Duration returns the signal length in seconds.
func (s *Signal) Duration() float64 {
	return float64(s.Len()) / s.SampleRate
}

// Segment returns views of samples [start, end) of every channel. The
// views share memory with the signal and must be treated as read-only.
func (s *Signal) Segment(start, end int) [][]float64 {
	out := make([][]float64, len(s.Data))
	for i, ch := range s.Data {
		out[i] = ch[start:end:end]
	}
	return out
}

// Option configures [Prepare].
type Option func(*config)

type config struct {
	workers   int
	window    window.Type
	reference bool
	notches   []float64
}

// WithWorkers bounds the number of channels filtered concurrently.
// The default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithFilterWindow selects the FIR design window (default Hamming).
func WithFilterWindow(t window.Type) Option {
	return func(c *config) {
		c.window = t
	}
}

// WithoutReference skips the common-average reference.
func WithoutReference() Option {
	return func(c *config) {
		c.reference = false
	}
}

// WithNotch removes mains interference at each frequency (typically 50 or
// 60 Hz) with a zero-phase notch. Non-positive entries are ignored.
func WithNotch(hz ...float64) Option {
	return func(c *config) {
		for _, f := range hz {
			if f > 0 {
				c.notches = append(c.notches, f)
			}
		}
	}
}

// Prepare is [PrepareContext] with a background context.
func Prepare(rec *recording.Recording, lowHz, highHz float64, opts ...Option) (*Signal, error) {
	return PrepareContext(context.Background(), rec, lowHz, highHz, opts...)
}

// PrepareContext selects, references and band-pass filters rec. Cutoffs
// must satisfy 0 < lowHz < highHz < nyquist. The recording is not modified.
func PrepareContext(ctx context.Context, rec *recording.Recording, lowHz, highHz float64, opts ...Option) (*Signal, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil recording", eeg.ErrDecode)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if err := CheckCutoffs(lowHz, highHz, rec.SampleRate); err != nil {
		return nil, err
	}

	cfg := config{
		workers:   runtime.GOMAXPROCS(0),
		window:    window.TypeHamming,
		reference: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	sig := &Signal{
		SampleRate: rec.SampleRate,
		LowHz:      lowHz,
		HighHz:     highHz,
	}
	for i, ch := range rec.Channels {
		if ch.Kind != recording.KindEEG || ch.Bad {
			continue
		}
		sig.Channels = append(sig.Channels, ch.Name)
		sig.Data = append(sig.Data, append([]float64(nil), rec.Data[i]...))
	}
	if len(sig.Data) == 0 {
		return nil, fmt.Errorf("%w: %d channels, none usable", eeg.ErrNoUsableChannels, len(rec.Channels))
	}
	if sig.Len() == 0 {
		return sig, nil
	}

	if cfg.reference && len(sig.Data) >= 2 {
		CommonAverage(sig.Data)
		sig.Referenced = true
	}

	notches := make([]biquad.Coefficients, 0, len(cfg.notches))
	for _, f := range cfg.notches {
		c, err := biquad.Notch(f, biquad.LineNoiseQ, sig.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w: notch: %v", eeg.ErrParameter, err)
		}
		notches = append(notches, c)
	}
	sig.NotchHz = append([]float64(nil), cfg.notches...)

	kernel, err := fir.BandPass(sig.SampleRate, lowHz, highHz, fir.WithWindow(cfg.window))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", eeg.ErrParameter, err)
	}
	sig.Taps = len(kernel)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for _, ch := range sig.Data {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, c := range notches {
				biquad.FiltFilt(ch, ch, c)
			}
			zp, err := fir.NewZeroPhase(kernel)
			if err != nil {
				return err
			}
			return zp.Apply(ch, ch)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("prepare: filtering: %w", err)
	}

	return sig, nil
}

// CheckCutoffs validates band-pass edges against a sample rate.
func CheckCutoffs(lowHz, highHz, sampleRate float64) error {
	if math.IsNaN(lowHz) || math.IsNaN(highHz) || !(lowHz > 0) || !(highHz > lowHz) {
		return fmt.Errorf("%w: cutoffs must satisfy 0 < low < high, got low=%g high=%g", eeg.ErrParameter, lowHz, highHz)
	}
	if nyquist := sampleRate / 2; highHz >= nyquist {
		return fmt.Errorf("%w: high cutoff %g Hz must be below nyquist %g Hz", eeg.ErrParameter, highHz, nyquist)
	}
	return nil
}

// CommonAverage subtracts the instantaneous mean across channels from every
// channel in place. All channels must have equal length.
func CommonAverage(data [][]float64) {
	if len(data) == 0 {
		return
	}
	inv := 1 / float64(len(data))
	for i := range data[0] {
		var mean float64
		for _, ch := range data {
			mean += ch[i]
		}
		mean *= inv
		for _, ch := range data {
			ch[i] -= mean
		}
	}
}
