package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-eeg/dsp/window"
)

// Errors returned by spectral estimation.
var (
	ErrEmptyInput        = errors.New("spectrum: empty input")
	ErrInvalidSampleRate = errors.New("spectrum: sample rate must be > 0")
	ErrInvalidSegment    = errors.New("spectrum: invalid segment configuration")
)

// DefaultSegmentLength is used when no segment length is configured.
const DefaultSegmentLength = 256

// PSD is a one-sided power spectral density.
type PSD struct {
	SampleRate float64
	// Freqs holds the bin center frequencies in Hz, from 0 to Nyquist.
	Freqs []float64
	// Density holds the power per bin in units²/Hz.
	Density []float64
	// Segments is the number of averaged periodograms.
	Segments int
}

// Resolution returns the bin spacing in Hz.
func (p *PSD) Resolution() float64 {
	if p == nil || len(p.Freqs) < 2 {
		return 0
	}
	return p.Freqs[1] - p.Freqs[0]
}

// BandMean returns the mean density over bins with low <= f <= high.
// ok is false when no bin falls in the range.
func (p *PSD) BandMean(low, high float64) (mean float64, ok bool) {
	if p == nil {
		return 0, false
	}

	var (
		sum   float64
		count int
	)
	for i, f := range p.Freqs {
		if f >= low && f <= high {
			sum += p.Density[i]
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// Option configures an [Estimator].
type Option func(*config)

type config struct {
	segment  int
	overlap  int
	fftSize  int
	pow2     bool
	window   window.Type
	detrend  bool
	overlapS bool
}

// WithSegmentLength sets the segment length in samples. Segments longer
// than the input are shortened to the input length.
func WithSegmentLength(n int) Option {
	return func(c *config) {
		c.segment = n
	}
}

// WithOverlap sets the overlap between segments in samples. The default is
// half the segment length.
func WithOverlap(n int) Option {
	return func(c *config) {
		c.overlap = n
		c.overlapS = true
	}
}

// WithFFTSize zero-pads every segment to n samples. Sizes shorter than the
// segment are ignored. By default the transform length equals the segment
// length, so bins sit at multiples of sampleRate/segment.
func WithFFTSize(n int) Option {
	return func(c *config) {
		c.fftSize = n
	}
}

// WithPowerOfTwoFFT rounds the transform length up to a power of two.
func WithPowerOfTwoFFT() Option {
	return func(c *config) {
		c.pow2 = true
	}
}

// WithWindow selects the segment window (default periodic Hann).
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.window = t
	}
}

// WithoutDetrend disables per-segment mean removal.
func WithoutDetrend() Option {
	return func(c *config) {
		c.detrend = false
	}
}

// Estimator computes Welch densities at a fixed sample rate. It reuses its
// FFT plan across calls with the same transform length and is not safe for
// concurrent use.
type Estimator struct {
	sampleRate float64
	cfg        config

	plan    *algofft.Plan[complex128]
	planLen int
	buf     []complex128
	power   []float64
	coeffs  []float64
}

// NewEstimator returns an estimator for signals sampled at sampleRate.
func NewEstimator(sampleRate float64, opts ...Option) (*Estimator, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}

	cfg := config{
		segment: DefaultSegmentLength,
		window:  window.TypeHann,
		detrend: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.segment <= 0 {
		return nil, fmt.Errorf("%w: segment length %d", ErrInvalidSegment, cfg.segment)
	}
	if cfg.overlapS && (cfg.overlap < 0 || cfg.overlap >= cfg.segment) {
		return nil, fmt.Errorf("%w: overlap %d with segment %d", ErrInvalidSegment, cfg.overlap, cfg.segment)
	}

	return &Estimator{sampleRate: sampleRate, cfg: cfg}, nil
}

// Welch is a convenience wrapper around a one-shot [Estimator].
func Welch(x []float64, sampleRate float64, opts ...Option) (*PSD, error) {
	e, err := NewEstimator(sampleRate, opts...)
	if err != nil {
		return nil, err
	}
	return e.Estimate(x)
}

// Estimate returns the Welch density of x.
func (e *Estimator) Estimate(x []float64) (*PSD, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}

	seg, overlap, nfft := e.layout(len(x))
	if err := e.prepare(seg, nfft); err != nil {
		return nil, err
	}

	psd := e.newPSD(nfft)
	step := seg - overlap
	count := (len(x)-seg)/step + 1
	for s := 0; s < count; s++ {
		if err := e.accumulate(psd.Density, x[s*step:s*step+seg]); err != nil {
			return nil, err
		}
	}

	e.finish(psd, nfft, count)
	return psd, nil
}

// EstimateMean returns the Welch density averaged across channels. All
// channels must have the same non-zero length.
func (e *Estimator) EstimateMean(channels [][]float64) (*PSD, error) {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil, ErrEmptyInput
	}

	n := len(channels[0])
	for i, ch := range channels {
		if len(ch) != n {
			return nil, fmt.Errorf("%w: channel %d has %d samples, want %d", ErrInvalidSegment, i, len(ch), n)
		}
	}

	seg, overlap, nfft := e.layout(n)
	if err := e.prepare(seg, nfft); err != nil {
		return nil, err
	}

	psd := e.newPSD(nfft)
	step := seg - overlap
	count := (n-seg)/step + 1
	for _, ch := range channels {
		for s := 0; s < count; s++ {
			if err := e.accumulate(psd.Density, ch[s*step:s*step+seg]); err != nil {
				return nil, err
			}
		}
	}

	e.finish(psd, nfft, count*len(channels))
	psd.Segments = count
	return psd, nil
}

func (e *Estimator) layout(n int) (seg, overlap, nfft int) {
	seg = min(e.cfg.segment, n)

	overlap = seg / 2
	if e.cfg.overlapS {
		overlap = min(e.cfg.overlap, seg-1)
	}

	nfft = max(seg, e.cfg.fftSize)
	if e.cfg.pow2 {
		nfft = nextPowerOf2(nfft)
	}
	return seg, overlap, nfft
}

func (e *Estimator) prepare(seg, nfft int) error {
	if e.planLen != nfft {
		// a one-point transform is the identity
		e.plan = nil
		if nfft > 1 {
			plan, err := algofft.NewPlan64(nfft)
			if err != nil {
				return fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
			}
			e.plan = plan
		}
		e.planLen = nfft
		e.buf = make([]complex128, nfft)
		e.power = make([]float64, nfft/2+1)
	}
	if len(e.coeffs) != seg {
		e.coeffs = window.Generate(e.cfg.window, seg, window.WithPeriodic())
	}
	return nil
}

func (e *Estimator) newPSD(nfft int) *PSD {
	bins := nfft/2 + 1
	psd := &PSD{
		SampleRate: e.sampleRate,
		Freqs:      make([]float64, bins),
		Density:    make([]float64, bins),
	}
	for k := range psd.Freqs {
		psd.Freqs[k] = float64(k) * e.sampleRate / float64(nfft)
	}
	return psd
}

func (e *Estimator) accumulate(acc, segment []float64) error {
	var mean float64
	if e.cfg.detrend {
		for _, v := range segment {
			mean += v
		}
		mean /= float64(len(segment))
	}

	for i := range e.buf {
		e.buf[i] = 0
	}
	for i, v := range segment {
		e.buf[i] = complex((v-mean)*e.coeffs[i], 0)
	}

	if e.plan != nil {
		if err := e.plan.Forward(e.buf, e.buf); err != nil {
			return fmt.Errorf("spectrum: forward FFT failed: %w", err)
		}
	}

	PowerTo(e.power, e.buf)
	for k, p := range e.power {
		acc[k] += p
	}
	return nil
}

// finish applies density scaling and doubles every bin that has a negative
// frequency twin. DC has none; Nyquist has none only for even nfft.
func (e *Estimator) finish(psd *PSD, nfft, periodograms int) {
	_, sumSquares := window.Sums(e.coeffs)
	scale := 1.0
	if sumSquares > 0 {
		scale = 1 / (e.sampleRate * sumSquares * float64(periodograms))
	}

	last := len(psd.Density)
	if nfft%2 == 0 {
		last--
	}
	for k := range psd.Density {
		psd.Density[k] *= scale
		if k > 0 && k < last {
			psd.Density[k] *= 2
		}
	}
	psd.Segments = periodograms
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
