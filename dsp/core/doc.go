// Package core holds small numeric helpers and processor options shared by
// the dsp and eeg packages.
package core
