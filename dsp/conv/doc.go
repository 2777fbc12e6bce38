// Package conv provides linear convolution routines.
//
// Two strategies are offered:
//
//   - Direct convolution: O(N*M) time-domain convolution, best for short kernels
//   - Overlap-add (OLA): FFT-based block convolution, efficient for long signals
//     with medium and long kernels such as EEG band-pass filters
//
// # Usage
//
// For one-shot convolution:
//
//	result, err := conv.Convolve(signal, kernel)  // Auto-selects algorithm
//	result, err := conv.Direct(signal, kernel)    // Force direct convolution
//
// For repeated convolution with the same kernel, create a reusable convolver:
//
//	c, err := conv.NewOverlapAdd(kernel, blockSize)
//	result, err := c.Process(signal)
//
// An [OverlapAdd] owns scratch buffers and an FFT plan; use one per goroutine.
//
// # Algorithm Selection
//
// [Convolve] uses direct convolution for kernels up to 64 taps and
// overlap-add above that.
package conv
