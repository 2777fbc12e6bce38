package biquad

import (
	"errors"
	"math"
	"testing"
)

const sampleRate = 256.0

func sine(freq float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func rms(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func TestProcessBlockMatchesProcessSample(t *testing.T) {
	c, err := Notch(50, LineNoiseQ, sampleRate)
	if err != nil {
		t.Fatal(err)
	}
	x := sine(13, 300)

	a := NewSection(c)
	want := make([]float64, len(x))
	for i, v := range x {
		want[i] = a.ProcessSample(v)
	}

	b := NewSection(c)
	got := append([]float64(nil), x...)
	b.ProcessBlock(got[:100])
	b.ProcessBlock(got[100:])

	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d: got %g want %g", i, got[i], want[i])
		}
	}
	if a.State() != b.State() {
		t.Fatalf("state mismatch: %v vs %v", a.State(), b.State())
	}

	b.Reset()
	if b.State() != [2]float64{} {
		t.Fatalf("reset state = %v", b.State())
	}
}

func TestNotchResponse(t *testing.T) {
	c, err := Notch(50, LineNoiseQ, sampleRate)
	if err != nil {
		t.Fatal(err)
	}
	if db := c.MagnitudeDB(50, sampleRate); db > -100 {
		t.Fatalf("center attenuation %g dB", db)
	}
	if db := c.MagnitudeDB(10, sampleRate); math.Abs(db) > 0.05 {
		t.Fatalf("passband gain at 10 Hz %g dB", db)
	}
	if g := c.DCGain(); math.Abs(g-1) > 1e-12 {
		t.Fatalf("dc gain %g", g)
	}
}

func TestNotchInvalid(t *testing.T) {
	for _, f := range []float64{0, -1, 128, 200, math.NaN()} {
		if _, err := Notch(f, LineNoiseQ, sampleRate); !errors.Is(err, ErrInvalidFrequency) {
			t.Fatalf("freq %g: err = %v", f, err)
		}
	}
	if _, err := Notch(50, LineNoiseQ, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestFiltFiltRemovesTone(t *testing.T) {
	c, err := Notch(50, LineNoiseQ, sampleRate)
	if err != nil {
		t.Fatal(err)
	}
	n := 10 * int(sampleRate)
	x := sine(50, n)
	y := make([]float64, n)
	FiltFilt(y, x, c)

	mid := y[n/4 : 3*n/4]
	if ratio := rms(mid) / rms(x[n/4:3*n/4]); ratio > 0.01 {
		t.Fatalf("50 Hz residual ratio %g", ratio)
	}
}

func TestFiltFiltPassesTone(t *testing.T) {
	c, err := Notch(50, LineNoiseQ, sampleRate)
	if err != nil {
		t.Fatal(err)
	}
	n := 10 * int(sampleRate)
	x := sine(10, n)
	y := append([]float64(nil), x...)
	FiltFilt(y, y, c)

	for i := n / 4; i < 3*n/4; i++ {
		if math.Abs(y[i]-x[i]) > 0.01 {
			t.Fatalf("sample %d: got %g want %g", i, y[i], x[i])
		}
	}
}

func TestFiltFiltConstant(t *testing.T) {
	c, err := Notch(60, LineNoiseQ, sampleRate)
	if err != nil {
		t.Fatal(err)
	}
	x := make([]float64, 64)
	for i := range x {
		x[i] = 7.5
	}
	y := make([]float64, len(x))
	FiltFilt(y, x, c)
	for i, v := range y {
		if math.Abs(v-7.5) > 1e-9 {
			t.Fatalf("sample %d: got %g", i, v)
		}
	}
}

func TestFiltFiltShortInput(t *testing.T) {
	c, err := Notch(50, LineNoiseQ, sampleRate)
	if err != nil {
		t.Fatal(err)
	}
	FiltFilt(nil, nil, c)

	y := []float64{3}
	FiltFilt(y, y, c)
	if math.Abs(y[0]-3) > 1e-9 {
		t.Fatalf("single sample: got %g", y[0])
	}
}
