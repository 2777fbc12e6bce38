package fir

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-eeg/dsp/conv"
	"github.com/cwbudde/algo-eeg/internal/testutil"
)

func TestZeroPhaseImpulseStaysCentered(t *testing.T) {
	h, err := BandPass(256, 1, 50)
	if err != nil {
		t.Fatal(err)
	}

	z, err := NewZeroPhase(h)
	if err != nil {
		t.Fatal(err)
	}
	if z.Delay() != (len(h)-1)/2 {
		t.Fatalf("Delay = %d", z.Delay())
	}

	const n, at = 4096, 2000
	x := make([]float64, n)
	x[at] = 1

	y := make([]float64, n)
	if err := z.Apply(y, x); err != nil {
		t.Fatal(err)
	}

	peak := 0
	for i := range y {
		if math.Abs(y[i]) > math.Abs(y[peak]) {
			peak = i
		}
	}
	if peak != at {
		t.Fatalf("peak at %d, want %d", peak, at)
	}
}

func TestZeroPhasePreservesPassbandSine(t *testing.T) {
	const fs = 256.0

	h, err := BandPass(fs, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	z, err := NewZeroPhase(h)
	if err != nil {
		t.Fatal(err)
	}

	x := testutil.DeterministicSine(10, fs, 20, 60*int(fs))
	y := make([]float64, len(x))
	if err := z.Apply(y, x); err != nil {
		t.Fatal(err)
	}
	testutil.RequireFinite(t, y)

	mid := len(x) / 4
	diff, err := testutil.MaxAbsDiff(y[mid:len(x)-mid], x[mid:len(x)-mid])
	if err != nil {
		t.Fatal(err)
	}
	if diff > 0.5 {
		t.Fatalf("max diff = %g, want < 0.5 on amplitude 20", diff)
	}
}

func TestZeroPhaseRemovesOffset(t *testing.T) {
	const fs = 256.0

	h, err := BandPass(fs, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	z, err := NewZeroPhase(h)
	if err != nil {
		t.Fatal(err)
	}

	x := testutil.DeterministicSine(10, fs, 1, 30*int(fs))
	for i := range x {
		x[i] += 10
	}

	y := make([]float64, len(x))
	if err := z.Apply(y, x); err != nil {
		t.Fatal(err)
	}

	mid := y[len(y)/4 : 3*len(y)/4]
	var mean float64
	for _, v := range mid {
		mean += v
	}
	mean /= float64(len(mid))
	if math.Abs(mean) > 0.5 {
		t.Fatalf("mean after filter = %g, want ~0", mean)
	}
}

func TestZeroPhaseShortKernelDirectPath(t *testing.T) {
	z, err := NewZeroPhase([]float64{0.25, 0.5, 0.25})
	if err != nil {
		t.Fatal(err)
	}

	x := []float64{0, 0, 4, 0, 0}
	y := make([]float64, len(x))
	if err := z.Apply(y, x); err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, y, []float64{0, 1, 2, 1, 0}, 1e-12)
}

func TestZeroPhaseShorterThanDelay(t *testing.T) {
	h, err := BandPass(256, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	z, err := NewZeroPhase(h)
	if err != nil {
		t.Fatal(err)
	}

	x := testutil.DeterministicNoise(7, 1, 100)
	y := make([]float64, len(x))
	if err := z.Apply(y, x); err != nil {
		t.Fatal(err)
	}
	testutil.RequireFinite(t, y)
}

func TestZeroPhaseErrors(t *testing.T) {
	if _, err := NewZeroPhase(nil); !errors.Is(err, conv.ErrEmptyKernel) {
		t.Fatalf("nil kernel err = %v", err)
	}
	if _, err := NewZeroPhase([]float64{1, 1}); err == nil {
		t.Fatal("expected error for even kernel")
	}

	z, err := NewZeroPhase([]float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if err := z.Apply(nil, nil); !errors.Is(err, conv.ErrEmptyInput) {
		t.Fatalf("empty err = %v", err)
	}
	if err := z.Apply(make([]float64, 2), make([]float64, 3)); !errors.Is(err, conv.ErrLengthMismatch) {
		t.Fatalf("mismatch err = %v", err)
	}
}
