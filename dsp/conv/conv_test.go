package conv

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-eeg/internal/testutil"
)

func TestDirect(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected []float64
	}{
		{"simple 3x3", []float64{1, 2, 3}, []float64{1, 1, 1}, []float64{1, 3, 6, 5, 3}},
		{"impulse", []float64{1, 2, 3, 4, 5}, []float64{1}, []float64{1, 2, 3, 4, 5}},
		{"delayed impulse", []float64{1, 2, 3, 4, 5}, []float64{0, 0, 1}, []float64{0, 0, 1, 2, 3, 4, 5}},
		{"symmetric", []float64{1, 2, 1}, []float64{1, 2, 1}, []float64{1, 4, 6, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Direct(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.RequireSliceNearlyEqual(t, result, tt.expected, 1e-12)
		})
	}
}

func TestDirectErrors(t *testing.T) {
	if _, err := Direct(nil, []float64{1}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err=%v want ErrEmptyInput", err)
	}
	if _, err := Direct([]float64{1}, nil); !errors.Is(err, ErrEmptyKernel) {
		t.Fatalf("err=%v want ErrEmptyKernel", err)
	}
}

func TestOverlapAddMatchesDirect(t *testing.T) {
	signal := testutil.DeterministicNoise(7, 1, 3000)
	kernel := testutil.DeterministicNoise(11, 1, 301)

	want, err := Direct(signal, kernel)
	if err != nil {
		t.Fatal(err)
	}

	for _, block := range []int{0, 64, 500, 4096} {
		oa, err := NewOverlapAdd(kernel, block)
		if err != nil {
			t.Fatalf("NewOverlapAdd(%d): %v", block, err)
		}

		got, err := oa.Process(signal)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)

		// Reuse must not leak state from the previous call.
		again := make([]float64, len(want))
		if err := oa.ProcessTo(again, signal); err != nil {
			t.Fatalf("ProcessTo: %v", err)
		}
		testutil.RequireSliceNearlyEqual(t, again, want, 1e-9)
	}
}

func TestOverlapAddSizes(t *testing.T) {
	oa, err := NewOverlapAdd(make([]float64, 100), 0)
	if err != nil {
		t.Fatal(err)
	}
	if oa.BlockSize() != 256 {
		t.Fatalf("BlockSize=%d want=256", oa.BlockSize())
	}
	if oa.FFTSize() != 512 {
		t.Fatalf("FFTSize=%d want=512", oa.FFTSize())
	}
	if oa.KernelLen() != 100 {
		t.Fatalf("KernelLen=%d want=100", oa.KernelLen())
	}

	if err := oa.ProcessTo(make([]float64, 3), []float64{1, 2}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err=%v want ErrLengthMismatch", err)
	}
	if _, err := oa.Process(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err=%v want ErrEmptyInput", err)
	}
	if _, err := NewOverlapAdd(nil, 0); !errors.Is(err, ErrEmptyKernel) {
		t.Fatalf("err=%v want ErrEmptyKernel", err)
	}
}

func TestConvolveModes(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{1, 1, 1}

	same, err := ConvolveMode(a, b, ModeSame)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, same, []float64{3, 6, 9, 12, 9}, 1e-12)

	valid, err := ConvolveMode(a, b, ModeValid)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, valid, []float64{6, 9, 12}, 1e-12)

	full, err := ConvolveMode(a, b, ModeFull)
	if err != nil {
		t.Fatal(err)
	}
	if len(full) != 7 {
		t.Fatalf("len(full)=%d want=7", len(full))
	}
}

func TestConvolveLongKernelUsesFFTPath(t *testing.T) {
	signal := testutil.DeterministicSine(5, 100, 1, 800)
	kernel := testutil.DeterministicNoise(3, 0.1, 200)

	got, err := Convolve(kernel, signal) // swapped on purpose
	if err != nil {
		t.Fatal(err)
	}
	want, err := Direct(signal, kernel)
	if err != nil {
		t.Fatal(err)
	}

	maxDiff, err := testutil.MaxAbsDiff(got, want)
	if err != nil {
		t.Fatal(err)
	}
	if maxDiff > 1e-9 || math.IsNaN(maxDiff) {
		t.Fatalf("max diff=%g", maxDiff)
	}
}
