// SPDX-License-Identifier: MIT
package vis

import (
	applog "lightwave/internal/log"
)

// Engine drives the spectrum-to-color pipeline. One external tick source
// calls Update; all mutable state (peaks, colors, frame counter, mode) is
// owned by the single Engine instance and is not safe for concurrent use.
//
// Lifecycle: an Engine starts disabled. Start(true) acquires the backend
// once and transitions to running; Start(false) stops capture and returns to
// disabled. Channel-count and mode changes are in-place reconfigurations and
// never leave the running state.
type Engine struct {
	backend Backend
	sink    Sink

	bucketizer Bucketizer
	peaks      PeakTracker
	mapper     Mapper
	gen        *LiquidGenerator

	device           int
	sendOnlyOnChange bool
	channelEnabled   []bool

	colors  []uint32  // last emitted frame, for change detection
	buckets []float64 // reusable per-channel raw magnitudes

	frames  uint64
	inited  bool
	enabled bool
}

// NewEngine creates an engine over the given backend and sink and applies
// the configuration snapshot. The engine starts disabled.
func NewEngine(backend Backend, sink Sink, s Settings) *Engine {
	e := &Engine{
		backend: backend,
		sink:    sink,
		gen:     NewLiquidGenerator(s.LiquidSpeed),
	}
	e.mapper.Gen = e.gen
	e.ApplySettings(s)
	return e
}

// ApplySettings applies a fresh configuration snapshot. Color endpoints,
// gating, the device id and the per-channel enable flags take effect on the
// next update; a changed channel count resets all per-channel state.
func (e *Engine) ApplySettings(s Settings) {
	e.device = s.Device
	e.mapper.Min = s.MinColor
	e.mapper.Max = s.MaxColor
	e.sendOnlyOnChange = s.SendOnlyOnChange
	e.channelEnabled = s.ChannelEnabled
	e.gen.SetSpeed(s.LiquidSpeed)

	if s.LiquidMode {
		e.mapper.Mode = ModeLiquid
	} else {
		e.mapper.Mode = ModeGradient
	}

	e.SetChannelCount(s.Channels)
}

// Start enables or disables the pipeline. The first enable performs the
// one-time backend acquisition, which may fail; on failure the engine stays
// disabled and the error is returned. Enabling while running and disabling
// while disabled are no-ops.
func (e *Engine) Start(enable bool) error {
	if enable == e.enabled {
		return nil
	}

	if !enable {
		e.enabled = false
		e.gen.Stop()
		if err := e.backend.Stop(); err != nil {
			applog.Warnf("vis: stopping capture: %v", err)
		}
		return nil
	}

	if !e.inited {
		if err := e.backend.Init(); err != nil {
			e.enabled = false
			return err
		}
		e.inited = true
		if err := e.backend.SelectDevice(e.device); err != nil {
			applog.Warnf("vis: selecting device %d: %v", e.device, err)
		}
	}

	if err := e.backend.Start(); err != nil {
		e.enabled = false
		return err
	}
	e.enabled = true
	if e.mapper.Mode == ModeLiquid {
		e.gen.Start()
	}
	return nil
}

// Running reports whether the engine is currently enabled.
func (e *Engine) Running() bool {
	return e.enabled
}

// SetChannelCount reinitializes all per-channel state to n zeroed channels.
// Safe to call at any time, including while running; the next Update starts
// from fresh peaks.
func (e *Engine) SetChannelCount(n int) {
	if n < 0 {
		n = 0
	}
	e.colors = make([]uint32, n)
	e.buckets = make([]float64, n)
	e.peaks.Resize(n)
}

// ChannelCount returns the number of output channels.
func (e *Engine) ChannelCount() int {
	return len(e.colors)
}

// SetLiquidMode switches between the gradient and liquid color modes.
// Entering liquid mode while running starts the generator; leaving it stops
// the generator and forces one immediate recompute so a residual animated
// color is not left on the outputs. Peaks are not reset by a mode switch.
func (e *Engine) SetLiquidMode(on bool) {
	if on {
		e.mapper.Mode = ModeLiquid
		if e.enabled {
			e.gen.Start()
		}
		return
	}
	e.mapper.Mode = ModeGradient
	e.gen.Stop()
	if e.enabled && len(e.colors) > 0 {
		// One forced recompute so a residual animated color is not left
		// on the outputs, even if nothing else changed.
		e.step(true)
	}
}

// SetLiquidSpeed adjusts the liquid generator speed.
func (e *Engine) SetLiquidSpeed(speed int) {
	e.gen.SetSpeed(speed)
}

// SetMinColor sets the gradient color at zero intensity.
func (e *Engine) SetMinColor(c RGB) {
	e.mapper.Min = c
}

// SetMaxColor sets the gradient color at full intensity.
func (e *Engine) SetMaxColor(c RGB) {
	e.mapper.Max = c
}

// SetSendOnlyOnChange toggles suppression of unchanged frames.
func (e *Engine) SetSendOnlyOnChange(on bool) {
	e.sendOnlyOnChange = on
}

// SetDevice switches the capture device, restarting capture when running.
func (e *Engine) SetDevice(id int) error {
	wasEnabled := e.enabled
	if wasEnabled {
		if err := e.Start(false); err != nil {
			return err
		}
	}
	e.device = id
	if e.inited {
		if err := e.backend.SelectDevice(id); err != nil {
			return err
		}
	}
	if wasEnabled {
		return e.Start(true)
	}
	return nil
}

// Reset zeroes all per-channel state and rewinds the liquid generator.
func (e *Engine) Reset() {
	e.SetChannelCount(len(e.colors))
	e.gen.Reset()
}

// QueryDevices enumerates the backend's capture devices, initializing the
// backend first if needed. On initialization failure the engine disables
// itself and reports an empty list with no recommended index.
func (e *Engine) QueryDevices() ([]Device, int) {
	if !e.inited {
		if err := e.backend.Init(); err != nil {
			applog.Errorf("vis: backend init failed: %v", err)
			e.enabled = false
			return nil, -1
		}
		e.inited = true
	}

	devices, recommended, err := e.backend.Devices()
	if err != nil {
		applog.Errorf("vis: enumerating devices: %v", err)
		return nil, -1
	}
	return devices, recommended
}

// Update runs one tick of the pipeline: fetch the current spectrum, reduce
// it to per-channel intensities, map to colors and emit if anything visibly
// changed. No-op while disabled or with zero channels.
func (e *Engine) Update() {
	if !e.enabled || len(e.colors) == 0 {
		return
	}
	e.step(false)
}

// step runs one pipeline tick. force bypasses change gating.
func (e *Engine) step(force bool) {
	e.frames++

	e.bucketizer.Reduce(e.backend.Spectrum(), e.buckets)

	decay := e.frames%5 == 0
	changed := false
	for i := range e.colors {
		val := e.peaks.Track(i, e.buckets[i], decay)
		c := e.mapper.Map(val, e.channelOn(i))
		if c != e.colors[i] {
			changed = true
		}
		e.colors[i] = c
	}

	if changed || force || !e.sendOnlyOnChange {
		e.emit()
	}
}

// Colors returns the last computed frame. The slice is owned by the engine.
func (e *Engine) Colors() []uint32 {
	return e.colors
}

func (e *Engine) emit() {
	if e.sink == nil {
		return
	}
	if err := e.sink.Emit(e.colors); err != nil {
		applog.Errorf("vis: emitting %d colors: %v", len(e.colors), err)
	}
}

func (e *Engine) channelOn(i int) bool {
	if i >= len(e.channelEnabled) {
		return true
	}
	return e.channelEnabled[i]
}
