package fir

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-eeg/dsp/window"
)

func TestAutoTransitions(t *testing.T) {
	tests := []struct {
		name           string
		fs, low, high  float64
		wantLo, wantHi float64
	}{
		{name: "eeg default", fs: 256, low: 1, high: 50, wantLo: 1, wantHi: 12.5},
		{name: "wide low edge", fs: 256, low: 12, high: 30, wantLo: 3, wantHi: 7.5},
		{name: "near nyquist", fs: 256, low: 1, high: 125, wantLo: 1, wantHi: 3},
		{name: "minimum two hertz", fs: 1000, low: 4, high: 6, wantLo: 2, wantHi: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := AutoTransitions(tt.fs, tt.low, tt.high)
			if math.Abs(lo-tt.wantLo) > 1e-12 || math.Abs(hi-tt.wantHi) > 1e-12 {
				t.Fatalf("AutoTransitions = (%g, %g), want (%g, %g)", lo, hi, tt.wantLo, tt.wantHi)
			}
		})
	}
}

func TestLengthIsOdd(t *testing.T) {
	if got := Length(256, 1, window.TypeHamming); got != 845 {
		t.Fatalf("Length(256, 1) = %d, want 845", got)
	}
	for _, tr := range []float64{0.5, 1, 2, 3.7, 12.5} {
		if n := Length(256, tr, window.TypeHamming); n%2 != 1 {
			t.Fatalf("Length(256, %g) = %d, want odd", tr, n)
		}
	}
}

func TestBandPassResponse(t *testing.T) {
	const fs = 256.0

	h, err := BandPass(fs, 1, 50)
	if err != nil {
		t.Fatalf("BandPass: %v", err)
	}
	if len(h)%2 != 1 {
		t.Fatalf("len = %d, want odd", len(h))
	}

	for i := 0; i < len(h)/2; i++ {
		if math.Abs(h[i]-h[len(h)-1-i]) > 1e-12 {
			t.Fatalf("kernel not symmetric at %d", i)
		}
	}

	for _, f := range []float64{5, 10, 20, 40} {
		if db := MagnitudeDB(h, f, fs); math.Abs(db) > 0.1 {
			t.Fatalf("passband %g Hz = %.3f dB", f, db)
		}
	}
	if db := MagnitudeDB(h, 0, fs); db > -30 {
		t.Fatalf("DC = %.2f dB, want strong attenuation", db)
	}
	if db := MagnitudeDB(h, 80, fs); db > -40 {
		t.Fatalf("80 Hz = %.2f dB, want strong attenuation", db)
	}
}

func TestBandPassMaxTaps(t *testing.T) {
	h, err := BandPass(256, 1, 50, WithMaxTaps(100))
	if err != nil {
		t.Fatalf("BandPass: %v", err)
	}
	if len(h) != 99 {
		t.Fatalf("len = %d, want 99", len(h))
	}
}

func TestBandPassErrors(t *testing.T) {
	tests := []struct {
		name          string
		fs, low, high float64
		want          error
	}{
		{name: "zero rate", fs: 0, low: 1, high: 50, want: ErrInvalidSampleRate},
		{name: "nan rate", fs: math.NaN(), low: 1, high: 50, want: ErrInvalidSampleRate},
		{name: "inverted", fs: 256, low: 50, high: 1, want: ErrInvalidCutoff},
		{name: "zero low", fs: 256, low: 0, high: 50, want: ErrInvalidCutoff},
		{name: "at nyquist", fs: 256, low: 1, high: 128, want: ErrInvalidCutoff},
		{name: "above nyquist", fs: 100, low: 1, high: 60, want: ErrInvalidCutoff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BandPass(tt.fs, tt.low, tt.high)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
