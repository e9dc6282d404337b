// SPDX-License-Identifier: MIT
package vis

import "math"

// PeakTracker keeps one decaying maximum per output channel and normalizes
// raw bucket magnitudes against it. The decaying peak acts as a perceptual
// AGC: values trailing the recent peak are stretched upward so a single
// transient does not dwarf the rest of the visualization.
type PeakTracker struct {
	peaks []int
}

// Resize resets the tracker to n channels with all peaks at zero.
func (t *PeakTracker) Resize(n int) {
	if n < 0 {
		n = 0
	}
	t.peaks = make([]int, n)
}

// Len returns the number of tracked channels.
func (t *PeakTracker) Len() int {
	return len(t.peaks)
}

// Peak returns the stored peak for channel ch, in [0, specHeight].
func (t *PeakTracker) Peak(ch int) int {
	return t.peaks[ch]
}

// Track converts the raw bucket magnitude of channel ch to a display
// intensity in [0, specHeight] and updates the channel's peak. decay is true
// on every 5th engine tick and lowers the stored peak by one step before the
// new value is considered.
//
// The sqrt compresses dynamic range so quiet detail stays visible; the -4
// offset is a calibration constant carried over from hardware tuning.
func (t *PeakTracker) Track(ch int, raw float64, decay bool) int {
	val := int(math.Sqrt(raw)*specHeight - 4)
	if val > specHeight {
		val = specHeight
	}
	if val < 0 {
		val = 0
	}

	if decay && t.peaks[ch] > 0 {
		t.peaks[ch]--
	}
	if val > t.peaks[ch] {
		// Rising edge tracks immediately, no smoothing.
		t.peaks[ch] = val
	}
	if val < t.peaks[ch]-5 && t.peaks[ch] > 0 {
		// peaks[ch] > 0 guards the division
		val = val * specHeight / t.peaks[ch]
	}
	return val
}
