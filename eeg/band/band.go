// Package band computes EEG band powers from Welch spectra.
//
// The band catalog is fixed and ordered by frequency. Declaration order is
// the tie-break for the dominant band.
package band

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/cwbudde/algo-eeg/dsp/spectrum"
	freqstats "github.com/cwbudde/algo-eeg/stats/frequency"
)

// Band is one entry of the frequency band catalog.
type Band int

const (
	Delta Band = iota
	Theta
	Alpha
	Beta
	Gamma
)

// Count is the number of catalog bands.
const Count = 5

// Range is an inclusive frequency interval in Hz.
type Range struct {
	Low  float64
	High float64
}

var catalog = [Count]struct {
	name string
	rng  Range
}{
	Delta: {"Delta", Range{0.5, 4}},
	Theta: {"Theta", Range{4, 8}},
	Alpha: {"Alpha", Range{8, 13}},
	Beta:  {"Beta", Range{13, 30}},
	Gamma: {"Gamma", Range{30, 50}},
}

// All returns the catalog in declaration order.
func All() []Band {
	return []Band{Delta, Theta, Alpha, Beta, Gamma}
}

// Valid reports whether b is a catalog band.
func (b Band) Valid() bool {
	return b >= 0 && b < Count
}

// String returns the band name, such as "Alpha".
func (b Band) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Band(%d)", int(b))
	}
	return catalog[b].name
}

// Range returns the band's frequency interval.
func (b Band) Range() Range {
	if !b.Valid() {
		return Range{}
	}
	return catalog[b].rng
}

// Parse returns the band with the given name.
func Parse(name string) (Band, bool) {
	for b := range catalog {
		if catalog[b].name == name {
			return Band(b), true
		}
	}
	return -1, false
}

// MarshalText encodes the band name.
func (b Band) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("band: invalid band %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText decodes a band name.
func (b *Band) UnmarshalText(text []byte) error {
	v, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("band: unknown band %q", text)
	}
	*b = v
	return nil
}

// Powers holds one power value per catalog band, in catalog order.
type Powers [Count]float64

// Get returns the power of b.
func (p Powers) Get(b Band) float64 {
	if !b.Valid() {
		return 0
	}
	return p[b]
}

// Map returns the powers keyed by band name.
func (p Powers) Map() map[string]float64 {
	m := make(map[string]float64, Count)
	for b := range p {
		m[catalog[b].name] = p[b]
	}
	return m
}

// MarshalJSON encodes the powers as an object keyed by band name.
func (p Powers) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Map())
}

// UnmarshalJSON decodes an object keyed by band name. Missing bands are 0.
func (p *Powers) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*p = FromMap(m)
	return nil
}

// FromMap builds Powers from a name-keyed map, ignoring unknown names.
func FromMap(m map[string]float64) Powers {
	var p Powers
	for name, v := range m {
		if b, ok := Parse(name); ok {
			p[b] = v
		}
	}
	return p
}

// Total returns the summed power of all bands.
func (p Powers) Total() float64 {
	var t float64
	for _, v := range p {
		t += v
	}
	return t
}

// Dominant returns the band with the strictly largest power. Ties go to the
// band declared first, so an all-zero map yields Delta.
func (p Powers) Dominant() Band {
	best := Delta
	for b := Theta; b < Count; b++ {
		if p[b] > p[best] {
			best = b
		}
	}
	return best
}

// Relative returns each band's share of the total band power. All shares
// are 0 when the total is 0.
func (p Powers) Relative() Powers {
	var out Powers
	total := p.Total()
	if total <= 0 {
		return out
	}
	for b := range p {
		out[b] = p[b] / total
	}
	return out
}

// DominantName is the map form of [Powers.Dominant]: it scans the catalog
// in order over the bands present in m. An empty map yields "Alpha".
func DominantName(m map[string]float64) string {
	best, found := "", false
	var bestPower float64
	for _, b := range All() {
		v, ok := m[b.String()]
		if !ok {
			continue
		}
		if !found || v > bestPower {
			best, bestPower, found = b.String(), v, true
		}
	}
	if !found {
		return Alpha.String()
	}
	return best
}

// Ratio names.
const (
	AlphaBeta  = "Alpha/Beta"
	ThetaBeta  = "Theta/Beta"
	DeltaAlpha = "Delta/Alpha"
)

var ratioDefs = []struct {
	name     string
	num, den string
}{
	{AlphaBeta, "Alpha", "Beta"},
	{ThetaBeta, "Theta", "Beta"},
	{DeltaAlpha, "Delta", "Alpha"},
}

// Ratios returns Alpha/Beta, Theta/Beta and Delta/Alpha. A ratio is present
// only when both operands are present and the denominator is > 0.
func Ratios(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(ratioDefs))
	for _, r := range ratioDefs {
		num, okNum := m[r.num]
		den, okDen := m[r.den]
		if okNum && okDen && den > 0 {
			out[r.name] = num / den
		}
	}
	return out
}

// Spectral summarizes the averaged spectrum over the catalog range.
type Spectral struct {
	PeakHz     float64 `json:"peak_hz"`
	CentroidHz float64 `json:"centroid_hz"`
	EdgeHz     float64 `json:"edge_hz"`
	Resolution float64 `json:"resolution_hz"`
}

// Result is the outcome of [Extract].
type Result struct {
	Powers   Powers
	Dominant Band
	Spectral Spectral
	// PSD is the channel-averaged density the powers were taken from.
	PSD *spectrum.PSD
}

// SegmentSeconds caps the Welch segment length.
const SegmentSeconds = 4

// Extractor computes band powers at a fixed sample rate. It reuses FFT
// plans across calls and is not safe for concurrent use.
type Extractor struct {
	sampleRate float64
	est        map[int]*spectrum.Estimator
}

// NewExtractor returns an extractor for segments sampled at sampleRate.
func NewExtractor(sampleRate float64) (*Extractor, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("band: sample rate must be > 0: %f", sampleRate)
	}
	return &Extractor{sampleRate: sampleRate, est: map[int]*spectrum.Estimator{}}, nil
}

// Extract averages the Welch density of every channel in segment and
// returns the mean density per band over bins with low <= f <= high. A band
// without bins has power 0. All channels must have the same length.
func (e *Extractor) Extract(segment [][]float64) (Result, error) {
	if len(segment) == 0 || len(segment[0]) == 0 {
		return Result{}, spectrum.ErrEmptyInput
	}

	seg := min(int(SegmentSeconds*e.sampleRate), len(segment[0]))
	est, ok := e.est[seg]
	if !ok {
		var err error
		est, err = spectrum.NewEstimator(e.sampleRate, spectrum.WithSegmentLength(max(seg, 1)))
		if err != nil {
			return Result{}, err
		}
		e.est[seg] = est
	}

	psd, err := est.EstimateMean(segment)
	if err != nil {
		return Result{}, err
	}

	var res Result
	res.PSD = psd
	for _, b := range All() {
		r := b.Range()
		if v, ok := psd.BandMean(r.Low, r.High); ok {
			res.Powers[b] = v
		}
	}
	res.Dominant = res.Powers.Dominant()

	lo, hi := Delta.Range().Low, Gamma.Range().High
	res.Spectral = Spectral{
		PeakHz:     freqstats.PeakFrequency(psd.Freqs, psd.Density, lo, hi),
		CentroidHz: freqstats.Centroid(psd.Freqs, psd.Density, lo, hi),
		EdgeHz:     freqstats.Edge(psd.Freqs, psd.Density, lo, hi, freqstats.DefaultEdgeFraction),
		Resolution: psd.Resolution(),
	}
	return res, nil
}

// Extract is a one-shot [Extractor.Extract].
func Extract(segment [][]float64, sampleRate float64) (Result, error) {
	e, err := NewExtractor(sampleRate)
	if err != nil {
		return Result{}, err
	}
	return e.Extract(segment)
}
