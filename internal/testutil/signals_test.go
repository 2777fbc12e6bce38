package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(10, 256, 1.0, 256)
	if len(s) != 256 {
		t.Fatalf("len = %d, want 256", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic at index %d", i)
		}
		if a[i] < -1 || a[i] > 1 {
			t.Fatalf("a[%d] = %v out of range", i, a[i])
		}
	}
}

func TestStaggeredChannelsHaveZeroMean(t *testing.T) {
	chans := StaggeredChannels(4, 20, 256, 3, 512)
	for i := 0; i < 512; i++ {
		sum := 0.0
		for ch := range chans {
			sum += chans[ch][i]
		}
		if math.Abs(sum) > 1e-9 {
			t.Fatalf("sample %d: channel sum = %v, want 0", i, sum)
		}
	}
	if got := RMS(chans[1]); math.Abs(got-3/math.Sqrt2) > 1e-6 {
		t.Fatalf("RMS = %v, want %v", got, 3/math.Sqrt2)
	}
}

func TestAddInPlaceAndZeros(t *testing.T) {
	z := Zeros(2, 3)
	AddInPlace(z[1], []float64{1, 2, 3, 4})
	RequireSliceNearlyEqual(t, z[1], []float64{1, 2, 3}, 0)
	RequireSliceNearlyEqual(t, z[0], []float64{0, 0, 0}, 0)
}
