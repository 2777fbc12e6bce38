// Package spectrum estimates power spectral densities from real signals.
//
// [Welch] averages modified periodograms over overlapping, detrended and
// windowed segments. The result is a one-sided density in units²/Hz that
// matches the conventional SciPy/MATLAB scaling, so band powers computed
// from it are comparable across tools.
//
// An [Estimator] caches its FFT plan and scratch memory for repeated use at
// a fixed segment length.
package spectrum
