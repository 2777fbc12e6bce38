// Package eeg estimates momentary attention states from multichannel EEG
// recordings.
//
// The work is split across sub-packages:
//
//   - [github.com/cwbudde/algo-eeg/eeg/recording] holds the decoded
//     multichannel time series and reads EDF/BDF files.
//   - [github.com/cwbudde/algo-eeg/eeg/prepare] selects EEG channels, applies
//     a common-average reference and a zero-phase band-pass filter.
//   - [github.com/cwbudde/algo-eeg/eeg/band] computes Welch band powers and
//     the dominant band over a segment.
//   - [github.com/cwbudde/algo-eeg/eeg/attention] maps a dominant band to an
//     attention label.
//   - [github.com/cwbudde/algo-eeg/eeg/stream] is the stateful cursor that
//     emits one analysis result per tick.
//   - [github.com/cwbudde/algo-eeg/eeg/session] drives a cursor from a ticker
//     and keeps a bounded history for presentation layers.
//
// This package only declares the error values shared by all of them.
package eeg
