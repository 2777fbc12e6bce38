package biquad

// padLength is the odd-extension length on each side, three times the
// number of coefficients per polynomial.
const padLength = 9

// FiltFilt filters src forward and then backward through c and writes the
// result to dst. dst may alias src. Both ends are extended by odd
// reflection and the delay line starts at steady state, so a constant
// input passes through unchanged.
func FiltFilt(dst, src []float64, c Coefficients) {
	n := len(src)
	if n == 0 {
		return
	}
	pad := min(padLength, n-1)

	ext := make([]float64, n+2*pad)
	first, last := src[0], src[n-1]
	for i := 0; i < pad; i++ {
		ext[i] = 2*first - src[pad-i]
		ext[pad+n+i] = 2*last - src[n-2-i]
	}
	copy(ext[pad:], src)

	s := NewSection(c)
	s.Settle(ext[0])
	s.ProcessBlock(ext)

	reverse(ext)
	s.Reset()
	s.Settle(ext[0])
	s.ProcessBlock(ext)
	reverse(ext)

	copy(dst[:n], ext[pad:pad+n])
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
