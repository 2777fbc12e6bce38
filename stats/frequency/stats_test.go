package frequency

import (
	"math"
	"testing"
)

const tolerance = 1e-12

func grid(n int, step float64) []float64 {
	f := make([]float64, n)
	for i := range f {
		f[i] = float64(i) * step
	}
	return f
}

func TestCalculateSingleTone(t *testing.T) {
	freqs := grid(11, 1)
	power := make([]float64, 11)
	power[4] = 2

	s := Calculate(freqs, power, 0, 10)
	if s.Peak != 4 || s.Centroid != 4 || s.Edge != 4 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.Spread != 0 || s.Flatness != 0 || s.Total != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestCalculateFlatSpectrum(t *testing.T) {
	freqs := grid(21, 0.5)
	power := make([]float64, 21)
	for i := range power {
		power[i] = 3
	}

	s := Calculate(freqs, power, 1, 9)
	if math.Abs(s.Flatness-1) > tolerance {
		t.Fatalf("Flatness = %g, want 1", s.Flatness)
	}
	if math.Abs(s.Centroid-5) > tolerance {
		t.Fatalf("Centroid = %g, want 5", s.Centroid)
	}
	if s.Peak != 1 {
		t.Fatalf("Peak = %g, want first bin on ties", s.Peak)
	}
	if s.Total != 51 {
		t.Fatalf("Total = %g, want 17 bins x 3", s.Total)
	}
}

func TestRangeIsInclusive(t *testing.T) {
	freqs := grid(6, 1)
	power := []float64{100, 1, 2, 3, 4, 100}

	if got := PeakFrequency(freqs, power, 1, 4); got != 4 {
		t.Fatalf("PeakFrequency = %g, want 4", got)
	}
	if got := Centroid(freqs, power, 1, 4); math.Abs(got-3) > tolerance {
		t.Fatalf("Centroid = %g, want 3", got)
	}
}

func TestEdge(t *testing.T) {
	freqs := grid(5, 10)
	power := []float64{0, 50, 40, 5, 5}

	if got := Edge(freqs, power, 0, 40, 0.5); got != 10 {
		t.Fatalf("Edge(0.5) = %g, want 10", got)
	}
	if got := Edge(freqs, power, 0, 40, 0.95); got != 30 {
		t.Fatalf("Edge(0.95) = %g, want 30", got)
	}
	if got := Edge(freqs, power, 0, 40, 1); got != 40 {
		t.Fatalf("Edge(1) = %g, want 40", got)
	}
}

func TestEmptyRange(t *testing.T) {
	freqs := grid(4, 1)
	power := []float64{1, 2, 3, 4}

	if s := Calculate(freqs, power, 1.2, 1.8); s != (Stats{}) {
		t.Fatalf("Calculate = %+v, want zero", s)
	}
	if PeakFrequency(freqs, power, 10, 20) != 0 || Flatness(freqs, power, 5, 6) != 0 {
		t.Fatal("expected zero for empty range")
	}
}
