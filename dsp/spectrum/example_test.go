package spectrum_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-eeg/dsp/spectrum"
)

func ExampleWelch() {
	const fs = 128.0
	x := make([]float64, 8*int(fs))
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 16 * float64(i) / fs)
	}

	psd, err := spectrum.Welch(x, fs, spectrum.WithSegmentLength(256))
	if err != nil {
		panic(err)
	}

	peak := 0
	for i, d := range psd.Density {
		if d > psd.Density[peak] {
			peak = i
		}
	}

	fmt.Printf("%.1f Hz, %d segments\n", psd.Freqs[peak], psd.Segments)
	// Output: 16.0 Hz, 7 segments
}
