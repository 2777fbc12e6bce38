// Package attention maps a dominant EEG band to an attention label.
package attention

import (
	"fmt"

	"github.com/cwbudde/algo-eeg/eeg/band"
)

// Label is an attention state.
type Label int

const (
	Unknown Label = iota
	Sleepy
	Relaxed
	Calm
	Focused
	HighlyEngaged
)

var labelNames = [...]string{
	Unknown:       "Unknown",
	Sleepy:        "Sleepy",
	Relaxed:       "Relaxed",
	Calm:          "Calm",
	Focused:       "Focused",
	HighlyEngaged: "Highly engaged",
}

var byBand = [band.Count]Label{
	band.Delta: Sleepy,
	band.Theta: Relaxed,
	band.Alpha: Calm,
	band.Beta:  Focused,
	band.Gamma: HighlyEngaged,
}

// FromBand returns the label for a dominant band, or Unknown outside the
// catalog.
func FromBand(b band.Band) Label {
	if !b.Valid() {
		return Unknown
	}
	return byBand[b]
}

// FromName returns the label for a band name, or Unknown.
func FromName(name string) Label {
	b, ok := band.Parse(name)
	if !ok {
		return Unknown
	}
	return FromBand(b)
}

// String returns the display name, such as "Highly engaged".
func (l Label) String() string {
	if l < 0 || int(l) >= len(labelNames) {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

// MarshalText encodes the display name.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a display name. Unrecognized names decode to Unknown.
func (l *Label) UnmarshalText(text []byte) error {
	for i, name := range labelNames {
		if name == string(text) {
			*l = Label(i)
			return nil
		}
	}
	*l = Unknown
	return nil
}
