// SPDX-License-Identifier: MIT
package vis

import (
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultLiquidSpeed is the generator speed used when the configured value
// is zero or negative.
const DefaultLiquidSpeed = 100

// liquidDegreesPerUnit converts a speed setting into hue degrees per second.
// Speed 100 walks the full hue circle in 10 seconds.
const liquidDegreesPerUnit = 0.36

// LiquidGenerator produces a slowly rotating hue at full saturation. It owns
// its own progression state: the hue advances only between Start and Stop,
// and position accumulated before a Stop is kept until Reset.
type LiquidGenerator struct {
	speed   int
	running bool
	started time.Time
	elapsed time.Duration // accumulated across previous run periods
	now     func() time.Time
}

// NewLiquidGenerator returns a stopped generator at hue zero.
func NewLiquidGenerator(speed int) *LiquidGenerator {
	g := &LiquidGenerator{now: time.Now}
	g.SetSpeed(speed)
	return g
}

// SetSpeed adjusts how fast the hue advances. Non-positive values fall back
// to DefaultLiquidSpeed.
func (g *LiquidGenerator) SetSpeed(speed int) {
	if speed <= 0 {
		speed = DefaultLiquidSpeed
	}
	g.speed = speed
}

// Speed returns the current speed setting.
func (g *LiquidGenerator) Speed() int {
	return g.speed
}

// Start begins advancing the hue. Calling Start while running is a no-op.
func (g *LiquidGenerator) Start() {
	if g.running {
		return
	}
	g.running = true
	g.started = g.now()
}

// Stop freezes the hue at its current position. Calling Stop while stopped
// is a no-op.
func (g *LiquidGenerator) Stop() {
	if !g.running {
		return
	}
	g.elapsed += g.now().Sub(g.started)
	g.running = false
}

// Reset rewinds the hue to zero. A running generator keeps running.
func (g *LiquidGenerator) Reset() {
	g.elapsed = 0
	g.started = g.now()
}

// Current returns the generator color at this instant. Pure read: the
// progression state is not modified.
func (g *LiquidGenerator) Current() RGB {
	elapsed := g.elapsed
	if g.running {
		elapsed += g.now().Sub(g.started)
	}

	hue := math.Mod(elapsed.Seconds()*float64(g.speed)*liquidDegreesPerUnit, 360)
	if hue < 0 {
		hue += 360
	}

	r, gg, b := colorful.Hsv(hue, 1, 1).RGB255()
	return RGB{R: r, G: gg, B: b}
}
