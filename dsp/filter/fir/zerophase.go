package fir

import (
	"fmt"

	"github.com/cwbudde/algo-eeg/dsp/conv"
)

const directTaps = 64

// ZeroPhase applies a linear-phase kernel with its group delay removed.
//
// A ZeroPhase owns convolution scratch memory and is not safe for
// concurrent use; create one per goroutine.
type ZeroPhase struct {
	kernel []float64
	delay  int
	oa     *conv.OverlapAdd
}

// NewZeroPhase prepares kernel for zero-phase application. The kernel must
// have odd length so that its delay is a whole number of samples.
func NewZeroPhase(kernel []float64) (*ZeroPhase, error) {
	if len(kernel) == 0 {
		return nil, conv.ErrEmptyKernel
	}
	if len(kernel)%2 == 0 {
		return nil, fmt.Errorf("fir: zero-phase kernel length must be odd: %d", len(kernel))
	}

	z := &ZeroPhase{
		kernel: append([]float64(nil), kernel...),
		delay:  (len(kernel) - 1) / 2,
	}

	if len(kernel) > directTaps {
		oa, err := conv.NewOverlapAdd(z.kernel, 0)
		if err != nil {
			return nil, err
		}
		z.oa = oa
	}

	return z, nil
}

// Delay returns the group delay in samples that Apply compensates.
func (z *ZeroPhase) Delay() int {
	return z.delay
}

// Taps returns the kernel length.
func (z *ZeroPhase) Taps() int {
	return len(z.kernel)
}

// Apply filters src into dst. Both slices must have the same length; they
// may alias. Edges are extended by reflection about the first and last
// sample, falling back to zeros when the signal is shorter than the delay.
func (z *ZeroPhase) Apply(dst, src []float64) error {
	n := len(src)
	if n == 0 {
		return conv.ErrEmptyInput
	}
	if len(dst) != n {
		return fmt.Errorf("%w: dst %d, src %d", conv.ErrLengthMismatch, len(dst), n)
	}

	pad := z.delay
	padded := make([]float64, n+2*pad)
	copy(padded[pad:], src)
	for k := 1; k <= pad; k++ {
		if k < n {
			padded[pad-k] = src[k]
			padded[pad+n-1+k] = src[n-1-k]
		}
	}

	var (
		full []float64
		err  error
	)
	if z.oa != nil {
		full, err = z.oa.Process(padded)
	} else {
		full, err = conv.Direct(padded, z.kernel)
	}
	if err != nil {
		return err
	}

	copy(dst, full[pad+z.delay:pad+z.delay+n])
	return nil
}
