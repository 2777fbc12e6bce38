// Package time computes amplitude statistics of sampled signals.
package time

import "math"

// Stats holds amplitude statistics of one channel.
type Stats struct {
	Length     int
	Mean       float64
	RMS        float64
	Min        float64
	Max        float64
	Peak       float64 // max(|Min|, |Max|)
	PeakToPeak float64
	Variance   float64
	StdDev     float64
}

// Calculate computes all statistics in a single pass. Mean and variance use
// Welford's update.
func Calculate(signal []float64) Stats {
	s := NewStreamingStats()
	s.Update(signal)
	return s.Result()
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Mean returns the arithmetic mean of the signal using Kahan summation.
func Mean(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sum, c float64
	for _, x := range signal {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(signal))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	var peak float64
	for _, x := range signal {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}

	return peak
}

// StreamingStats accumulates [Stats] across blocks. Feeding the blocks of a
// signal in order gives the same result as [Calculate] on the whole signal.
type StreamingStats struct {
	n      int
	mean   float64
	m2     float64
	sumSq  float64
	minVal float64
	maxVal float64
}

// NewStreamingStats creates an empty accumulator.
func NewStreamingStats() *StreamingStats {
	return &StreamingStats{}
}

// Update adds a block of samples.
func (s *StreamingStats) Update(samples []float64) {
	for _, x := range samples {
		if s.n == 0 {
			s.minVal, s.maxVal = x, x
		} else {
			s.minVal = math.Min(s.minVal, x)
			s.maxVal = math.Max(s.maxVal, x)
		}

		s.n++
		delta := x - s.mean
		s.mean += delta / float64(s.n)
		s.m2 += delta * (x - s.mean)
		s.sumSq += x * x
	}
}

// Count returns the number of samples seen.
func (s *StreamingStats) Count() int {
	return s.n
}

// Result returns the statistics over everything seen so far.
func (s *StreamingStats) Result() Stats {
	if s.n == 0 {
		return Stats{}
	}

	nf := float64(s.n)
	variance := s.m2 / nf

	return Stats{
		Length:     s.n,
		Mean:       s.mean,
		RMS:        math.Sqrt(s.sumSq / nf),
		Min:        s.minVal,
		Max:        s.maxVal,
		Peak:       math.Max(math.Abs(s.minVal), math.Abs(s.maxVal)),
		PeakToPeak: s.maxVal - s.minVal,
		Variance:   variance,
		StdDev:     math.Sqrt(variance),
	}
}

// Reset clears all accumulated data.
func (s *StreamingStats) Reset() {
	*s = StreamingStats{}
}
