// SPDX-License-Identifier: MIT
/*
Package vis turns a stream of frequency-magnitude samples into one color per
output channel, suitable for driving LED hardware in sync with sound.

The pipeline per update tick:
  - Bucketizer reduces the magnitude spectrum to one peak value per channel
    using a power-law frequency allocation.
  - PeakTracker smooths each value against a decaying per-channel peak so the
    output does not flicker.
  - Mapper converts the smoothed value into an RGB color, either as a static
    two-color gradient or against the animated liquid color generator.
  - Engine orchestrates the above, compares the result to the previous frame
    and hands changed frames to the output sink.

The capture side (device handling, FFT) and the delivery side (LED hardware,
network) live behind the Backend and Sink interfaces.
*/
package vis

const (
	// FFTSize is the number of points of the capture-side FFT.
	// Must be a power of two; the backend produces FFTSize/2 + 1 magnitudes.
	FFTSize = 1024

	// SpectrumLen is the length of a magnitude spectrum as delivered by a
	// Backend. Bin 0 is DC and is never consulted.
	SpectrumLen = FFTSize/2 + 1

	// specHeight is the display scale all channel intensities live on.
	specHeight = 1000
)

// Device identifies one capture source exposed by a Backend.
type Device struct {
	ID   int
	Name string
}

// Backend is the audio capture side of the pipeline. Init may be slow
// (device open) and is invoked out-of-band from Start/QueryDevices, never
// from the per-tick hot path. Spectrum returns the most recent magnitude
// array; stale spectra are never queued, only the latest one is meaningful.
type Backend interface {
	Init() error
	Devices() (devices []Device, recommended int, err error)
	SelectDevice(id int) error
	Start() error
	Stop() error
	Spectrum() []float64
	Shutdown() error
}

// Sink receives the per-channel color sequence whenever the engine decides a
// frame changed (or change gating is disabled). Implementations must not
// retain the slice past the call.
type Sink interface {
	Emit(colors []uint32) error
}

// Settings is the configuration snapshot applied to an Engine at
// construction and on reload. The engine never reaches into process-wide
// state for any of these.
type Settings struct {
	Device           int    // Capture device id, -1 for the backend default
	MinColor         RGB    // Gradient color at zero intensity
	MaxColor         RGB    // Gradient color at full intensity
	LiquidMode       bool   // Animated hue instead of the static gradient
	LiquidSpeed      int    // Hue walk speed for the liquid generator
	SendOnlyOnChange bool   // Suppress frames identical to the previous one
	Channels         int    // Number of output color channels (LEDs)
	ChannelEnabled   []bool // Per-channel enable flags; nil enables all
}

// RGB is an 8-bit-per-component color.
type RGB struct {
	R, G, B uint8
}

// Pack returns the color as 0xRRGGBB. Black packs to 0, matching the value
// written for disabled channels.
func (c RGB) Pack() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Unpack returns the RGB components of a packed 0xRRGGBB value.
func Unpack(v uint32) RGB {
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}
