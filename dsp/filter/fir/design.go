package fir

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-eeg/dsp/window"
)

// Errors returned by filter design.
var (
	ErrInvalidSampleRate = errors.New("fir: sample rate must be > 0")
	ErrInvalidCutoff     = errors.New("fir: invalid cutoff")
)

// DesignOption configures windowed-sinc design.
type DesignOption func(*designConfig)

type designConfig struct {
	window    window.Type
	lowTrans  float64
	highTrans float64
	maxTaps   int
}

// WithWindow selects the design window (default Hamming).
func WithWindow(t window.Type) DesignOption {
	return func(c *designConfig) {
		c.window = t
	}
}

// WithTransitions overrides the automatic transition bandwidths in Hz.
// Non-positive values keep the automatic choice.
func WithTransitions(lowHz, highHz float64) DesignOption {
	return func(c *designConfig) {
		if lowHz > 0 {
			c.lowTrans = lowHz
		}
		if highHz > 0 {
			c.highTrans = highHz
		}
	}
}

// WithMaxTaps caps the kernel length. Zero means no cap.
func WithMaxTaps(n int) DesignOption {
	return func(c *designConfig) {
		if n > 0 {
			c.maxTaps = n
		}
	}
}

// AutoTransitions returns the default transition bandwidths for a band-pass
// with the given edges:
//
//	low  = min(max(0.25*lowHz, 2), lowHz)
//	high = min(max(0.25*highHz, 2), nyquist-highHz)
func AutoTransitions(sampleRate, lowHz, highHz float64) (lowTrans, highTrans float64) {
	lowTrans = math.Min(math.Max(0.25*lowHz, 2), lowHz)
	highTrans = math.Min(math.Max(0.25*highHz, 2), sampleRate/2-highHz)
	return lowTrans, highTrans
}

// BandPass designs an odd-length linear-phase band-pass kernel with
// passband [lowHz, highHz]. The -6 dB points sit half a transition band
// outside the passband; the kernel is normalized to unity gain at the
// passband center.
func BandPass(sampleRate, lowHz, highHz float64, opts ...DesignOption) ([]float64, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}
	nyquist := sampleRate / 2
	if !(lowHz > 0) || !(highHz > lowHz) {
		return nil, fmt.Errorf("%w: need 0 < low < high, got low=%f high=%f", ErrInvalidCutoff, lowHz, highHz)
	}
	if highHz >= nyquist {
		return nil, fmt.Errorf("%w: high cutoff %f must be below nyquist %f", ErrInvalidCutoff, highHz, nyquist)
	}

	cfg := designConfig{window: window.TypeHamming}
	cfg.lowTrans, cfg.highTrans = AutoTransitions(sampleRate, lowHz, highHz)
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	taps := Length(sampleRate, math.Min(cfg.lowTrans, cfg.highTrans), cfg.window)
	if cfg.maxTaps > 0 && taps > cfg.maxTaps {
		taps = cfg.maxTaps
		if taps%2 == 0 {
			taps--
		}
	}

	fl := (lowHz - cfg.lowTrans/2) / sampleRate
	fh := math.Min(highHz+cfg.highTrans/2, nyquist) / sampleRate

	w := window.Generate(cfg.window, taps)
	mid := float64(taps-1) / 2
	h := make([]float64, taps)
	for i := range h {
		x := float64(i) - mid
		h[i] = w[i] * (2*fh*sinc(2*fh*x) - 2*fl*sinc(2*fl*x))
	}

	g := cmplx.Abs(Response(h, (lowHz+highHz)/2, sampleRate))
	if g > 0 {
		for i := range h {
			h[i] /= g
		}
	}

	return h, nil
}

// Length returns the odd kernel length for a transition bandwidth using
// the window's FIR length factor.
func Length(sampleRate, transitionHz float64, t window.Type) int {
	factor := window.Info(t).FIRFactor
	if factor <= 0 {
		factor = window.Info(window.TypeHamming).FIRFactor
	}

	n := int(math.Ceil(factor * sampleRate / transitionHz))
	if n < 3 {
		n = 3
	}
	if n%2 == 0 {
		n++
	}
	return n
}

// Response computes the complex frequency response of coeffs at freqHz.
func Response(coeffs []float64, freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	var h complex128
	for k, c := range coeffs {
		h += complex(c, 0) * cmplx.Exp(complex(0, -w*float64(k)))
	}
	return h
}

// MagnitudeDB returns the magnitude response of coeffs in dB at freqHz.
func MagnitudeDB(coeffs []float64, freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(Response(coeffs, freqHz, sampleRate)))
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}

	px := math.Pi * x

	return math.Sin(px) / px
}
