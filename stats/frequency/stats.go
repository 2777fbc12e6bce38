// Package frequency computes shape descriptors of one-sided power spectra.
//
// All functions take parallel slices of bin frequencies (Hz) and power
// values, such as the Freqs and Density fields of a Welch estimate, and an
// inclusive analysis range. Bins outside [low, high] are ignored.
package frequency

import "math"

// Stats holds spectral descriptors over an analysis range.
type Stats struct {
	// Peak is the frequency of the largest power bin.
	Peak float64
	// Centroid is the power-weighted mean frequency.
	Centroid float64
	// Spread is the power-weighted standard deviation around Centroid.
	Spread float64
	// Edge is the frequency below which 95% of the power lies.
	Edge float64
	// Flatness is the geometric over arithmetic mean power, 0..1.
	Flatness float64
	// Total is the summed power over the range.
	Total float64
}

// DefaultEdgeFraction is the power fraction used for the spectral edge.
const DefaultEdgeFraction = 0.95

// Calculate computes all descriptors for bins with low <= f <= high.
func Calculate(freqs, power []float64, low, high float64) Stats {
	lo, hi := span(freqs, low, high)
	if lo >= hi {
		return Stats{}
	}

	f, p := freqs[lo:hi], power[lo:hi]

	var s Stats
	s.Total = sum(p)
	s.Peak = f[argmax(p)]
	s.Centroid = centroid(f, p, s.Total)
	s.Spread = spread(f, p, s.Centroid, s.Total)
	s.Edge = edge(f, p, DefaultEdgeFraction, s.Total)
	s.Flatness = flatness(p)

	return s
}

// PeakFrequency returns the frequency of the largest power bin in range.
func PeakFrequency(freqs, power []float64, low, high float64) float64 {
	lo, hi := span(freqs, low, high)
	if lo >= hi {
		return 0
	}
	return freqs[lo+argmax(power[lo:hi])]
}

// Centroid returns the power-weighted mean frequency in range.
func Centroid(freqs, power []float64, low, high float64) float64 {
	lo, hi := span(freqs, low, high)
	if lo >= hi {
		return 0
	}
	p := power[lo:hi]
	return centroid(freqs[lo:hi], p, sum(p))
}

// Edge returns the frequency below which fraction (0..1) of the in-range
// power lies.
func Edge(freqs, power []float64, low, high, fraction float64) float64 {
	lo, hi := span(freqs, low, high)
	if lo >= hi {
		return 0
	}
	p := power[lo:hi]
	return edge(freqs[lo:hi], p, fraction, sum(p))
}

// Flatness returns the spectral flatness of the in-range bins. Any zero bin
// makes the geometric mean, and so the flatness, zero.
func Flatness(freqs, power []float64, low, high float64) float64 {
	lo, hi := span(freqs, low, high)
	if lo >= hi {
		return 0
	}
	return flatness(power[lo:hi])
}

func span(freqs []float64, low, high float64) (lo, hi int) {
	lo = len(freqs)
	for i, f := range freqs {
		if f >= low {
			lo = i
			break
		}
	}
	hi = lo
	for hi < len(freqs) && freqs[hi] <= high {
		hi++
	}
	return lo, hi
}

func sum(p []float64) float64 {
	var s float64
	for _, v := range p {
		s += v
	}
	return s
}

func argmax(p []float64) int {
	best := 0
	for i, v := range p {
		if v > p[best] {
			best = i
		}
	}
	return best
}

func centroid(f, p []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	var weighted float64
	for i, v := range p {
		weighted += f[i] * v
	}
	return weighted / total
}

func spread(f, p []float64, cent, total float64) float64 {
	if total == 0 {
		return 0
	}
	var weighted float64
	for i, v := range p {
		d := f[i] - cent
		weighted += d * d * v
	}
	return math.Sqrt(weighted / total)
}

func edge(f, p []float64, fraction, total float64) float64 {
	if total == 0 {
		return 0
	}
	threshold := fraction * total
	var cum float64
	for i, v := range p {
		cum += v
		if cum >= threshold {
			return f[i]
		}
	}
	return f[len(f)-1]
}

func flatness(p []float64) float64 {
	var sumLin, sumLog float64
	for _, v := range p {
		if v <= 0 {
			return 0
		}
		sumLin += v
		sumLog += math.Log(v)
	}

	n := float64(len(p))
	return math.Exp(sumLog/n) / (sumLin / n)
}
