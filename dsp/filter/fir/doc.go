// Package fir designs linear-phase windowed-sinc FIR filters and applies
// them without a net time shift.
//
// [BandPass] sizes the kernel from automatic transition bandwidths the way
// common EEG toolboxes do: narrow transitions for low cutoffs, wider ones at
// high cutoffs. [ZeroPhase] applies an odd-length kernel with reflection
// padding and (N-1)/2 delay compensation, so output sample i stays aligned
// with input sample i.
package fir
