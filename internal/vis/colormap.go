// SPDX-License-Identifier: MIT
package vis

// Mode selects how channel intensity becomes color.
type Mode int

const (
	// ModeGradient interpolates between two configured colors.
	ModeGradient Mode = iota
	// ModeLiquid interpolates between black and the animated generator color,
	// so brightness comes from intensity and hue from the generator.
	ModeLiquid
)

// Mapper converts a normalized intensity into one packed RGB color.
type Mapper struct {
	Mode Mode
	Min  RGB
	Max  RGB
	Gen  *LiquidGenerator
}

// Map returns the packed color for intensity val in [0, specHeight].
// Disabled channels are always black regardless of intensity.
func (m *Mapper) Map(val int, enabled bool) uint32 {
	if !enabled {
		return 0
	}

	from, to := m.Min, m.Max
	if m.Mode == ModeLiquid {
		from, to = RGB{}, m.Gen.Current()
	}

	t := float64(val) / specHeight
	return RGB{
		R: lerp8(from.R, to.R, t),
		G: lerp8(from.G, to.G, t),
		B: lerp8(from.B, to.B, t),
	}.Pack()
}

// lerp8 interpolates one color component. Upstream clamping keeps t in
// [0, 1] already; the clamp here is against rounding drift at the edges.
func lerp8(from, to uint8, t float64) uint8 {
	v := float64(from) + (float64(to)-float64(from))*t
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
