package recording

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/OpenPSG/edf"

	"github.com/cwbudde/algo-eeg/eeg"
)

const (
	edfDigitalMin = -32768
	edfDigitalMax = 32767
	// maxWriteRecordBytes is the data record size limit recommended by the EDF standard.
	maxWriteRecordBytes = 61440
	labelWidth          = 16
	unitWidth           = 8
)

// WriteOption configures [WriteEDF].
type WriteOption func(*writeConfig)

type writeConfig struct {
	patientID   string
	recordingID string
	physMin     float64
	physMax     float64
	fixedRange  bool
}

// WithPatientID sets the patient identification field.
func WithPatientID(id string) WriteOption {
	return func(c *writeConfig) {
		c.patientID = id
	}
}

// WithRecordingID sets the recording identification field.
func WithRecordingID(id string) WriteOption {
	return func(c *writeConfig) {
		c.recordingID = id
	}
}

// WithPhysicalRange fixes the physical range of every signal. Samples
// outside the range are clipped. By default each signal uses its own data
// range.
func WithPhysicalRange(min, max float64) WriteOption {
	return func(c *writeConfig) {
		if max > min {
			c.physMin, c.physMax = min, max
			c.fixedRange = true
		}
	}
}

var transducerByKind = map[Kind]string{
	KindEEG:  "EEG electrode",
	KindEOG:  "EOG electrode",
	KindECG:  "ECG electrode",
	KindEMG:  "EMG electrode",
	KindStim: "Trigger",
	KindMisc: "Misc",
}

// WriteEDF stores rec as a 16-bit EDF file with one-second data records.
// The sample rate must be a whole number of Hz. A trailing partial second
// is padded with zeros.
func WriteEDF(w io.WriteSeeker, rec *Recording, opts ...WriteOption) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	cfg := writeConfig{patientID: "X", recordingID: "X"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	spr := int(math.Round(rec.SampleRate))
	if math.Abs(float64(spr)-rec.SampleRate) > 1e-9 {
		return fmt.Errorf("%w: edf records need an integer sample rate, got %f", eeg.ErrParameter, rec.SampleRate)
	}
	if bytes := spr * len(rec.Channels) * 2; bytes > maxWriteRecordBytes {
		return fmt.Errorf("%w: data record of %d bytes exceeds %d", eeg.ErrParameter, bytes, maxWriteRecordBytes)
	}

	signals := make([]edf.Signal, len(rec.Channels))
	for i, ch := range rec.Channels {
		lo, hi := cfg.physMin, cfg.physMax
		if !cfg.fixedRange {
			lo, hi = physicalRange(rec.Data[i])
		}
		signals[i] = edf.Signal{
			Label:             truncate(ch.Name, labelWidth),
			TransducerType:    transducerByKind[ch.Kind],
			PhysicalDimension: truncate(ch.Unit, unitWidth),
			PhysicalMin:       lo,
			PhysicalMax:       hi,
			DigitalMin:        edfDigitalMin,
			DigitalMax:        edfDigitalMax,
			SamplesPerRecord:  spr,
		}
	}

	start := rec.StartTime
	if start.IsZero() {
		start = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	ew, err := edf.Create(w, edf.Header{
		Version:            edf.Version0,
		PatientID:          cfg.patientID,
		RecordingID:        cfg.recordingID,
		StartTime:          start,
		DataRecordDuration: time.Second,
		SignalCount:        len(signals),
		Signals:            signals,
	})
	if err != nil {
		return fmt.Errorf("recording: creating edf: %w", err)
	}

	n := rec.Len()
	block := make([][]float64, len(signals))
	for i := range block {
		block[i] = make([]float64, spr)
	}
	for start := 0; start < n; start += spr {
		for i, s := range signals {
			for j := range block[i] {
				v := 0.0
				if start+j < n {
					v = rec.Data[i][start+j]
				}
				block[i][j] = math.Max(s.PhysicalMin, math.Min(v, s.PhysicalMax))
			}
		}
		if err := ew.WriteRecord(block); err != nil {
			return fmt.Errorf("recording: writing record %d: %w", start/spr, err)
		}
	}

	if err := ew.Close(); err != nil {
		return fmt.Errorf("recording: finalizing edf: %w", err)
	}
	return nil
}

// physicalRange returns the data range widened outward to two decimals, the
// precision of the EDF header field. The range always contains zero so that
// zero padding is representable.
func physicalRange(x []float64) (lo, hi float64) {
	for _, v := range x {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	lo = math.Floor(lo*100) / 100
	hi = math.Ceil(hi*100) / 100
	if hi-lo < 0.02 {
		lo, hi = -1, 1
	}
	return lo, hi
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
