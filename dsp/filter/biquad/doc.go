// Package biquad provides second-order IIR sections and the notch designs
// used to remove mains interference from EEG channels.
//
// A [Section] runs Direct Form II Transposed. [FiltFilt] applies a section
// forward and backward, squaring the magnitude response and cancelling its
// phase.
package biquad
