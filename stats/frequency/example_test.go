package frequency_test

import (
	"fmt"

	freqstats "github.com/cwbudde/algo-eeg/stats/frequency"
)

func ExampleCalculate() {
	freqs := []float64{0, 1, 2, 3, 4, 5}
	power := []float64{0, 1, 4, 1, 0, 0}

	s := freqstats.Calculate(freqs, power, 1, 5)
	fmt.Printf("peak=%.0f centroid=%.1f edge=%.0f\n", s.Peak, s.Centroid, s.Edge)

	// Output:
	// peak=2 centroid=2.0 edge=3
}
