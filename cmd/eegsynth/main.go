// Command eegsynth writes synthetic EEG sessions for demos.
//
// Usage:
//
//	eegsynth [-out ./sample_data] [-duration 60] [-channels 32] [-seed 1]
//
// It writes focused (beta), relaxed (alpha) and sleepy (delta) sessions as
// EDF files under <out>/subject_01/.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-eeg/eeg/synth"
)

func main() {
	out := flag.String("out", "./sample_data", "output directory")
	duration := flag.Float64("duration", 60, "session length in seconds")
	channels := flag.Int("channels", len(synth.Montage1020), "number of 10-20 channels (1-32)")
	rate := flag.Float64("rate", 256, "sample rate in Hz (whole number)")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if *channels < 1 || *channels > len(synth.Montage1020) {
		fmt.Fprintf(os.Stderr, "error: -channels must be in [1, %d]\n", len(synth.Montage1020))
		os.Exit(2)
	}

	cfg := synth.Config{
		Channels:   synth.Montage1020[:*channels],
		SampleRate: *rate,
		Duration:   *duration,
		Seed:       *seed,
	}
	paths, err := synth.WriteScenarios(*out, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for i, sc := range synth.Scenarios() {
		fmt.Printf("%s\n  %s\n", paths[i], sc.Description)
	}
	fmt.Printf("\nsample data written to %s\n", *out)
}
