// Package signal generates deterministic test and synthetic signals.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-eeg/dsp/core"
)

// Generator creates reproducible signals from a shared configuration. Its
// random source advances with every call, so a fixed seed and call order
// always reproduce the same output. A Generator is not safe for concurrent
// use.
type Generator struct {
	cfg core.ProcessorConfig
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the deterministic random seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// NewGenerator creates a configured signal generator with seed 1.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg: core.ApplyProcessorOptions(coreOpts...),
		rng: rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Sine generates amplitude*sin(2*pi*f*t + phase).
func (g *Generator) Sine(freqHz, amplitude, phase float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i)+phase)
	}
	return out, nil
}

// AddSine adds amplitude*sin(2*pi*f*t + phase) to dst in place.
func (g *Generator) AddSine(dst []float64, freqHz, amplitude, phase float64) {
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range dst {
		dst[i] += amplitude * math.Sin(step*float64(i)+phase)
	}
}

// GaussianNoise generates zero-mean normal noise with standard deviation sigma.
func (g *Generator) GaussianNoise(sigma float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if sigma < 0 {
		return nil, fmt.Errorf("noise sigma must be >= 0: %f", sigma)
	}
	out := make([]float64, samples)
	for i := range out {
		out[i] = g.rng.NormFloat64() * sigma
	}
	return out, nil
}

// Uniform draws a value from [lo, hi).
func (g *Generator) Uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// Phase draws a random phase from [0, 2*pi).
func (g *Generator) Phase() float64 {
	return g.Uniform(0, 2*math.Pi)
}
