// SPDX-License-Identifier: MIT
package capture

import "math"

// EnableGate turns the noise gate on.
func (b *Backend) EnableGate() {
	b.gateEnabled = true
}

// DisableGate turns the noise gate off; every buffer reaches the analyzer.
func (b *Backend) DisableGate() {
	b.gateEnabled = false
}

// SetGateThreshold adjusts the noise gate threshold.
// The value is in the range 0.0-1.0 where 0=always open, 1=always closed.
func (b *Backend) SetGateThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	b.gateThreshold = int32(threshold * float64(math.MaxInt32))
}

// GetGateThreshold returns the current noise gate threshold as a float64
// in the range 0.0-1.0.
func (b *Backend) GetGateThreshold() float64 {
	return float64(b.gateThreshold) / float64(math.MaxInt32)
}

// gateOpen reports whether the buffer's peak amplitude clears the gate.
// Branchless scan, runs inside the audio callback.
func (b *Backend) gateOpen(buffer []int32) bool {
	if !b.gateEnabled {
		return true
	}

	var maxAmplitude int32
	for i := range buffer {
		sample := buffer[i]
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		diff := amplitude - maxAmplitude
		maxAmplitude += (diff & (diff >> 31)) ^ diff
	}
	return maxAmplitude > b.gateThreshold
}
