package time

import (
	"math"
	"testing"
)

const tolerance = 1e-10

func generateSine(amplitude, freq, sampleRate float64, numCycles int) []float64 {
	samplesPerCycle := int(sampleRate / freq)
	out := make([]float64, samplesPerCycle*numCycles)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return out
}

func TestCalculateEmpty(t *testing.T) {
	if s := Calculate(nil); s != (Stats{}) {
		t.Fatalf("Calculate(nil) = %+v, want zero", s)
	}
}

func TestCalculateSine(t *testing.T) {
	s := Calculate(generateSine(2, 10, 1000, 10))

	if s.Length != 1000 {
		t.Fatalf("Length = %d", s.Length)
	}
	if math.Abs(s.Mean) > tolerance {
		t.Fatalf("Mean = %g, want 0", s.Mean)
	}
	if math.Abs(s.RMS-2/math.Sqrt2) > 1e-9 {
		t.Fatalf("RMS = %g, want %g", s.RMS, 2/math.Sqrt2)
	}
	if math.Abs(s.Peak-2) > 1e-9 || math.Abs(s.PeakToPeak-4) > 1e-9 {
		t.Fatalf("Peak = %g, PeakToPeak = %g", s.Peak, s.PeakToPeak)
	}
	if math.Abs(s.StdDev-s.RMS) > 1e-9 {
		t.Fatalf("StdDev = %g, want RMS for zero-mean signal", s.StdDev)
	}
}

func TestCalculateOffset(t *testing.T) {
	s := Calculate([]float64{1, 2, 3, 4})

	if s.Mean != 2.5 || s.Min != 1 || s.Max != 4 || s.Peak != 4 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if math.Abs(s.Variance-1.25) > tolerance {
		t.Fatalf("Variance = %g, want 1.25", s.Variance)
	}
}

func TestHelpers(t *testing.T) {
	x := []float64{-3, 1, 2}

	if got := Peak(x); got != 3 {
		t.Fatalf("Peak = %g", got)
	}
	if got := Mean(x); got != 0 {
		t.Fatalf("Mean = %g", got)
	}
	if got := RMS(x); math.Abs(got-math.Sqrt(14.0/3)) > tolerance {
		t.Fatalf("RMS = %g", got)
	}
	if RMS(nil) != 0 || Mean(nil) != 0 || Peak(nil) != 0 {
		t.Fatal("empty helpers must return 0")
	}
}

func TestStreamingMatchesCalculate(t *testing.T) {
	x := generateSine(1.5, 7, 500, 6)
	for i := range x {
		x[i] += 0.25
	}

	s := NewStreamingStats()
	for start := 0; start < len(x); start += 97 {
		s.Update(x[start:min(start+97, len(x))])
	}

	got, want := s.Result(), Calculate(x)
	if got.Length != want.Length || got.Min != want.Min || got.Max != want.Max {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if math.Abs(got.Mean-want.Mean) > tolerance || math.Abs(got.Variance-want.Variance) > tolerance {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	s.Reset()
	if s.Count() != 0 || s.Result() != (Stats{}) {
		t.Fatal("Reset did not clear accumulator")
	}
}
