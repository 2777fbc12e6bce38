// Package testutil holds deterministic signal generators and tolerance
// assertions shared by package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	return PhasedSine(freqHz, sampleRate, amplitude, 0, length)
}

// PhasedSine generates a sine wave with the given initial phase in radians.
func PhasedSine(freqHz, sampleRate, amplitude, phase float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i)+phase)
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// StaggeredChannels returns channels copies of a sine whose phases are spread
// evenly over one period. Their instantaneous mean is zero, so the tone
// survives a common-average reference at full amplitude.
func StaggeredChannels(channels int, freqHz, sampleRate, amplitude float64, length int) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		phase := 2 * math.Pi * float64(ch) / float64(channels)
		out[ch] = PhasedSine(freqHz, sampleRate, amplitude, phase, length)
	}
	return out
}

// AddInPlace adds src to dst sample by sample over the shorter length.
func AddInPlace(dst, src []float64) {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] += src[i]
	}
}

// Zeros returns a channels x length matrix of zeros.
func Zeros(channels, length int) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, length)
	}
	return out
}
