// Package synth generates synthetic EEG recordings with a chosen dominant
// band, for demos and end-to-end tests.
//
// Every channel is Gaussian noise plus three sinusoids per catalog band.
// Tones of the dominant band get amplitudes from [15, 25) µV, all others
// from [3, 8) µV, each with a random phase. Each channel is then scaled by
// a factor from [0.8, 1.2).
package synth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-eeg/dsp/core"
	"github.com/cwbudde/algo-eeg/dsp/signal"
	"github.com/cwbudde/algo-eeg/eeg"
	"github.com/cwbudde/algo-eeg/eeg/band"
	"github.com/cwbudde/algo-eeg/eeg/recording"
)

// Montage1020 lists the 32 channels of the 10-20 montage used by default.
var Montage1020 = []string{
	"Fp1", "Fp2", "F7", "F3", "Fz", "F4", "F8", "FC5", "FC1", "FC2", "FC6",
	"T7", "C3", "Cz", "C4", "T8", "TP9", "CP5", "CP1", "CP2", "CP6", "TP10",
	"P7", "P3", "Pz", "P4", "P8", "PO9", "O1", "Oz", "O2", "PO10",
}

var tones = [band.Count][3]float64{
	band.Delta: {1, 2, 3},
	band.Theta: {5, 6, 7},
	band.Alpha: {9, 10, 11},
	band.Beta:  {15, 20, 25},
	band.Gamma: {35, 40, 45},
}

const (
	noiseSigma = 5.0

	dominantLow  = 15.0
	dominantHigh = 25.0
	otherLow     = 3.0
	otherHigh    = 8.0

	factorLow  = 0.8
	factorHigh = 1.2
)

// Config describes the generated recordings.
type Config struct {
	Channels   []string
	SampleRate float64
	// Duration is the length in seconds.
	Duration float64
	Seed     int64
}

// DefaultConfig is 60 s of the 32-channel montage at 256 Hz.
func DefaultConfig() Config {
	return Config{
		Channels:   Montage1020,
		SampleRate: 256,
		Duration:   60,
		Seed:       1,
	}
}

// Generate returns a recording whose dominant band is dominant.
func Generate(cfg Config, dominant band.Band) (*recording.Recording, error) {
	if !dominant.Valid() {
		return nil, fmt.Errorf("%w: dominant band %d", eeg.ErrParameter, int(dominant))
	}
	if len(cfg.Channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", eeg.ErrParameter)
	}
	n := core.SecondsToSamples(cfg.Duration, cfg.SampleRate)
	if !(cfg.SampleRate > 0) || n < 1 {
		return nil, fmt.Errorf("%w: %f s at %f Hz is empty", eeg.ErrParameter, cfg.Duration, cfg.SampleRate)
	}

	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(cfg.SampleRate)},
		signal.WithSeed(cfg.Seed),
	)

	channels := make([]recording.Channel, len(cfg.Channels))
	data := make([][]float64, len(cfg.Channels))
	for ch, name := range cfg.Channels {
		x, err := gen.GaussianNoise(noiseSigma, n)
		if err != nil {
			return nil, err
		}
		for b, freqs := range tones {
			lo, hi := otherLow, otherHigh
			if band.Band(b) == dominant {
				lo, hi = dominantLow, dominantHigh
			}
			for _, f := range freqs {
				gen.AddSine(x, f, gen.Uniform(lo, hi), gen.Phase())
			}
		}

		factor := gen.Uniform(factorLow, factorHigh)
		for i := range x {
			x[i] *= factor
		}

		channels[ch] = recording.Channel{Name: name, Kind: recording.KindEEG, Unit: "uV"}
		data[ch] = x
	}

	rec, err := recording.New(channels, cfg.SampleRate, data)
	if err != nil {
		return nil, err
	}
	rec.Source = "synthetic:" + dominant.String()
	return rec, nil
}

// Scenario is one named synthetic session.
type Scenario struct {
	Name        string
	Dominant    band.Band
	Description string
}

// Scenarios returns the demo sessions.
func Scenarios() []Scenario {
	return []Scenario{
		{"focused_session", band.Beta, "High beta activity - focused state"},
		{"relaxed_session", band.Alpha, "High alpha activity - calm state"},
		{"sleepy_session", band.Delta, "High delta activity - sleepy state"},
	}
}

// SubjectDir is the directory under the output root that receives the files.
const SubjectDir = "subject_01"

// WriteScenarios writes every scenario as <dir>/subject_01/<name>.edf and
// returns the written paths. Each scenario is seeded from cfg.Seed plus its
// position.
func WriteScenarios(dir string, cfg Config) ([]string, error) {
	subject := filepath.Join(dir, SubjectDir)
	if err := os.MkdirAll(subject, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	for i, sc := range Scenarios() {
		c := cfg
		c.Seed = cfg.Seed + int64(i)
		rec, err := Generate(c, sc.Dominant)
		if err != nil {
			return paths, fmt.Errorf("synth: %s: %w", sc.Name, err)
		}

		path := filepath.Join(subject, sc.Name+".edf")
		if err := writeFile(path, rec, sc); err != nil {
			return paths, fmt.Errorf("synth: %s: %w", sc.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, rec *recording.Recording, sc Scenario) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = recording.WriteEDF(f, rec,
		recording.WithPatientID("X X X synthetic"),
		recording.WithRecordingID("Startdate X X X "+sc.Name),
	)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
