// SPDX-License-Identifier: MIT
package vis

import "math"

// Bucketizer partitions the magnitude spectrum into one contiguous bin range
// per output channel and reduces each range to its peak magnitude.
//
// Bin allocation is exponential: channel i of n ends at bin 2^(i*9/(n-1)),
// so low channels get single bins and high channels get wide ranges, roughly
// matching perceived pitch. The exponent is 9 rather than the arithmetically
// expected 10; with 10 the last bucket rarely saw any action.
type Bucketizer struct{}

// Reduce fills dst with one peak magnitude per channel from spectrum.
// len(dst) is the channel count. Bin 0 (DC) is skipped; the consulted ranges
// cover bins [1, len(spectrum)) contiguously with no gaps or overlaps, and
// every channel consumes at least one bin even when the spectrum is shorter
// than the channel count.
func (Bucketizer) Reduce(spectrum []float64, dst []float64) {
	n := len(dst)
	if n == 0 || len(spectrum) < 2 {
		return
	}
	top := len(spectrum) - 1

	b0 := 0
	for i := 0; i < n; i++ {
		b1 := top
		if n > 1 {
			b1 = int(math.Pow(2, float64(i)*9.0/float64(n-1)))
			if b1 > top {
				b1 = top
			}
		}
		if b1 <= b0 {
			b1 = b0 + 1 // every channel uses at least one bin
		}

		peak := 0.0
		for ; b0 < b1; b0++ {
			// Forced-width ranges can run past the spectrum when there
			// are more channels than bins; those channels read nothing.
			if 1+b0 < len(spectrum) {
				if v := spectrum[1+b0]; v > peak {
					peak = v
				}
			}
		}
		dst[i] = peak
	}
}

// Ranges returns the exclusive upper bin boundary of every channel for a
// spectrum of length speclen. Exposed for inspection and testing; Reduce
// walks the same boundaries without allocating.
func (Bucketizer) Ranges(speclen, channels int) []int {
	if channels <= 0 || speclen < 2 {
		return nil
	}
	bounds := make([]int, channels)
	b0 := 0
	top := speclen - 1
	for i := 0; i < channels; i++ {
		b1 := top
		if channels > 1 {
			b1 = int(math.Pow(2, float64(i)*9.0/float64(channels-1)))
			if b1 > top {
				b1 = top
			}
		}
		if b1 <= b0 {
			b1 = b0 + 1
		}
		bounds[i] = b1
		b0 = b1
	}
	return bounds
}
