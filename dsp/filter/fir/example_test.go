package fir_test

import (
	"fmt"

	"github.com/cwbudde/algo-eeg/dsp/filter/fir"
)

func ExampleBandPass() {
	h, err := fir.BandPass(256, 1, 50)
	if err != nil {
		panic(err)
	}

	fmt.Println(len(h))
	// Output: 845
}
