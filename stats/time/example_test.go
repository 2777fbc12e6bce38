package time_test

import (
	"fmt"

	timestats "github.com/cwbudde/algo-eeg/stats/time"
)

func ExampleCalculate() {
	s := timestats.Calculate([]float64{1, -1, 1, -1})
	fmt.Printf("rms=%.1f p2p=%.1f\n", s.RMS, s.PeakToPeak)

	// Output:
	// rms=1.0 p2p=2.0
}

func ExampleStreamingStats() {
	s := timestats.NewStreamingStats()
	s.Update([]float64{1, -1})
	s.Update([]float64{1, -1})
	m := s.Result()
	fmt.Printf("len=%d mean=%.1f\n", m.Length, m.Mean)

	// Output:
	// len=4 mean=0.0
}
