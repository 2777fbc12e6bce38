package eeg

import "errors"

// Errors shared by the eeg packages. Call sites wrap them with context;
// test with [errors.Is].
var (
	// ErrDecode reports an unreadable, corrupt, or structurally invalid recording.
	ErrDecode = errors.New("eeg: cannot decode recording")

	// ErrParameter reports invalid durations or filter cutoffs.
	ErrParameter = errors.New("eeg: invalid parameter")

	// ErrNoUsableChannels reports a recording without any good EEG channel.
	ErrNoUsableChannels = errors.New("eeg: no usable EEG channels")

	// ErrNotInitialized reports use of an analyzer before Initialize.
	ErrNotInitialized = errors.New("eeg: analyzer not initialized")

	// ErrEndOfStream is returned by Advance when the cursor cannot emit
	// another full analysis window. It is a terminal signal, not a failure.
	ErrEndOfStream = errors.New("eeg: end of stream")
)
