package biquad

import (
	"errors"
	"fmt"
	"math"
)

// LineNoiseQ is the default notch quality factor. At 50 Hz it removes a
// band about 1.7 Hz wide.
const LineNoiseQ = 30.0

// ErrInvalidFrequency is returned when a design frequency is not inside
// (0, nyquist).
var ErrInvalidFrequency = errors.New("biquad: frequency must be in (0, nyquist)")

// Notch designs an RBJ notch centered at freqHz. Q values <= 0 use
// [LineNoiseQ].
func Notch(freqHz, q, sampleRate float64) (Coefficients, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return Coefficients{}, fmt.Errorf("biquad: sample rate must be > 0: %f", sampleRate)
	}
	if !(freqHz > 0 && freqHz < sampleRate/2) {
		return Coefficients{}, fmt.Errorf("%w: %g Hz at %g Hz", ErrInvalidFrequency, freqHz, sampleRate)
	}
	if !(q > 0) || math.IsInf(q, 0) {
		q = LineNoiseQ
	}

	w0 := 2 * math.Pi * freqHz / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	return Coefficients{
		B0: 1 / a0,
		B1: -2 * cw / a0,
		B2: 1 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}, nil
}
