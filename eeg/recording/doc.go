// Package recording holds decoded multichannel EEG recordings and reads
// them from EDF and BDF files.
//
// A [Recording] is immutable after construction: every channel shares one
// sample rate and one length. [Decode] and [Open] parse EDF (16-bit) and
// BDF (24-bit) files; [Discover] and [Summarize] scan directories for them;
// [WriteEDF] stores a recording as EDF.
package recording
