// SPDX-License-Identifier: MIT
package vis

import "testing"

func TestTrackDisplayScale(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want int
	}{
		{"silence clamps to zero", 0.0, 0},   // sqrt(0)*1000-4 = -4
		{"full scale", 1.0, 996},             // sqrt(1)*1000-4
		{"quarter amplitude", 0.25, 496},     // sqrt(0.25)*1000-4
		{"overdrive clamps to top", 4.0, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr PeakTracker
			tr.Resize(1)
			if got := tr.Track(0, tt.raw, false); got != tt.want {
				t.Errorf("Track(%v) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTrackRisingEdgeRaisesPeakImmediately(t *testing.T) {
	var tr PeakTracker
	tr.Resize(1)

	tr.Track(0, 0.25, false)
	if got := tr.Peak(0); got != 496 {
		t.Fatalf("peak after first sample = %d, want 496", got)
	}

	tr.Track(0, 1.0, false)
	if got := tr.Peak(0); got != 996 {
		t.Errorf("peak after louder sample = %d, want 996", got)
	}
}

func TestTrackDecayToZero(t *testing.T) {
	var tr PeakTracker
	tr.Resize(2)

	tr.Track(0, 1.0, false)
	tr.Track(1, 1.0, false)

	// Zero input with a decay step every 5th tick: peaks drift down one
	// step at a time and bottom out at zero.
	for tick := 1; tick <= 996*5+10; tick++ {
		decay := tick%5 == 0
		for ch := 0; ch < 2; ch++ {
			if got := tr.Track(ch, 0, decay); got != 0 {
				t.Fatalf("tick %d channel %d: output %d, want 0", tick, ch, got)
			}
		}
	}

	for ch := 0; ch < 2; ch++ {
		if got := tr.Peak(ch); got != 0 {
			t.Errorf("channel %d peak = %d, want fully decayed 0", ch, got)
		}
	}
}

func TestTrackPeakNeverRisesWithoutInput(t *testing.T) {
	var tr PeakTracker
	tr.Resize(1)
	tr.Track(0, 1.0, false)

	prev := tr.Peak(0)
	for tick := 1; tick <= 50; tick++ {
		tr.Track(0, 0.001, tick%5 == 0)
		if p := tr.Peak(0); p > prev {
			t.Fatalf("tick %d: peak rose from %d to %d on quiet input", tick, prev, p)
		} else {
			prev = p
		}
	}
}

func TestTrackRenormalizesAgainstPeak(t *testing.T) {
	var tr PeakTracker
	tr.Resize(1)

	tr.Track(0, 1.0, false) // peak 996

	// 496 is more than 5 below the peak, so it gets stretched:
	// 496 * 1000 / 996 = 497.
	if got := tr.Track(0, 0.25, false); got != 497 {
		t.Errorf("renormalized value = %d, want 497", got)
	}
}

func TestTrackZeroPeakSkipsRenormalization(t *testing.T) {
	var tr PeakTracker
	tr.Resize(1)

	// Fresh tracker, zero input: peak stays 0 and the renormalization
	// division must not run.
	if got := tr.Track(0, 0, true); got != 0 {
		t.Errorf("Track on zero state = %d, want 0", got)
	}
}

func TestResizeClearsState(t *testing.T) {
	var tr PeakTracker
	tr.Resize(3)
	for ch := 0; ch < 3; ch++ {
		tr.Track(ch, 1.0, false)
	}

	tr.Resize(5)
	if tr.Len() != 5 {
		t.Fatalf("Len = %d, want 5", tr.Len())
	}
	for ch := 0; ch < 5; ch++ {
		if got := tr.Peak(ch); got != 0 {
			t.Errorf("channel %d peak after resize = %d, want 0", ch, got)
		}
	}
}
