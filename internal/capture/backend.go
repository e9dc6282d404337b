// SPDX-License-Identifier: MIT
/*
Package capture implements the PortAudio capture backend for the
visualization engine. It owns the input stream, reduces incoming buffers to
a rolling mono analysis frame, runs FFT analysis on it and keeps the latest
magnitude spectrum for the engine to pull.

Thread safety: the PortAudio callback is the only writer of the analysis
state; the engine's update loop is the only reader. The handoff is a
mailbox holding the most recent spectrum, nothing is queued.
*/
package capture

import (
	"fmt"
	"runtime"

	"github.com/gordonklaus/portaudio"

	applog "lightwave/internal/log"
	"lightwave/internal/vis"
)

// Config holds the capture-side settings.
type Config struct {
	SampleRate      float64
	FramesPerBuffer int
	Channels        int
	LowLatency      bool
	Window          string  // FFT window function name, default Hann
	GateThreshold   float64 // 0.0-1.0 noise gate, 0 disables
}

// Backend is a PortAudio implementation of vis.Backend.
type Backend struct {
	cfg      Config
	deviceID int

	device *portaudio.DeviceInfo
	stream *portaudio.Stream

	analyzer *Analyzer

	mono  []int32 // channel-0 samples of the current buffer
	frame []int32 // rolling analysis frame of vis.FFTSize samples

	gateEnabled   bool
	gateThreshold int32

	out []float64 // spectrum handed to the engine, sized once

	rec recorder

	inited  bool
	running bool
}

var _ vis.Backend = (*Backend)(nil)

// NewBackend creates a backend for the given device id. Nothing is acquired
// until Init.
func NewBackend(deviceID int, cfg Config) *Backend {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = 512
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}

	b := &Backend{
		cfg:      cfg,
		deviceID: deviceID,
		mono:     make([]int32, cfg.FramesPerBuffer),
		frame:    make([]int32, vis.FFTSize),
		out:      make([]float64, vis.SpectrumLen),
	}
	b.SetGateThreshold(cfg.GateThreshold)
	b.gateEnabled = cfg.GateThreshold > 0
	return b
}

// Init acquires the PortAudio subsystem and builds the FFT analyzer.
// Idempotent; a second call is a no-op. Failure leaves the backend
// unacquired and is non-fatal to the caller.
func (b *Backend) Init() error {
	if b.inited {
		return nil
	}

	if err := Initialize(); err != nil {
		return err
	}

	windowType, err := ParseWindowFunc(b.cfg.Window)
	if err != nil {
		applog.Warnf("capture: %v, using Hann", err)
	}
	analyzer, err := NewAnalyzer(vis.FFTSize, windowType)
	if err != nil {
		if terr := Terminate(); terr != nil {
			applog.Warnf("capture: terminating after failed init: %v", terr)
		}
		return err
	}
	b.analyzer = analyzer
	b.inited = true

	applog.Infof("capture: initialized (fft=%d, window=%q, rate=%.0f Hz)",
		vis.FFTSize, b.cfg.Window, b.cfg.SampleRate)
	return nil
}

// Devices enumerates input-capable devices and the recommended default
// index within the returned list.
func (b *Backend) Devices() ([]vis.Device, int, error) {
	hosts, err := HostDevices()
	if err != nil {
		return nil, -1, err
	}

	defaultID := defaultInputIndex()
	recommended := -1
	var devices []vis.Device
	for _, d := range hosts {
		if d.MaxInputChannels == 0 {
			continue
		}
		if d.ID == defaultID {
			recommended = len(devices)
		}
		devices = append(devices, vis.Device{ID: d.ID, Name: d.Name})
	}
	return devices, recommended, nil
}

// SelectDevice switches the capture device, restarting the stream when one
// is running.
func (b *Backend) SelectDevice(id int) error {
	wasRunning := b.running
	if wasRunning {
		if err := b.Stop(); err != nil {
			return err
		}
	}

	b.deviceID = id
	b.device = nil

	if wasRunning {
		return b.Start()
	}
	return nil
}

// Start opens the input stream and begins capture. No-op while running.
func (b *Backend) Start() error {
	if b.running {
		return nil
	}
	if !b.inited {
		return fmt.Errorf("capture backend not initialized")
	}

	if b.device == nil {
		device, err := inputDevice(b.deviceID)
		if err != nil {
			return err
		}
		b.device = device
	}

	latency := b.device.DefaultHighInputLatency
	if b.cfg.LowLatency {
		latency = b.device.DefaultLowInputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: b.cfg.Channels,
			Device:   b.device,
			Latency:  latency,
		},
		FramesPerBuffer: b.cfg.FramesPerBuffer,
		SampleRate:      b.cfg.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, b.onInput)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	b.stream = stream
	b.running = true
	applog.Infof("capture: stream started on %q", b.device.Name)
	return nil
}

// Stop halts capture and closes the stream. No-op while stopped.
func (b *Backend) Stop() error {
	if !b.running {
		return nil
	}
	b.running = false

	if b.stream != nil {
		if err := b.stream.Stop(); err != nil {
			return err
		}
		if err := b.stream.Close(); err != nil {
			return err
		}
		b.stream = nil
	}
	applog.Infof("capture: stream stopped")
	return nil
}

// Spectrum returns the most recent magnitude spectrum. The returned slice
// is owned by the backend and reused across calls; it always has length
// vis.SpectrumLen, zeroed before any audio arrived.
func (b *Backend) Spectrum() []float64 {
	if b.analyzer != nil {
		if err := b.analyzer.MagnitudesInto(b.out); err != nil {
			applog.Errorf("capture: reading spectrum: %v", err)
		}
	}
	return b.out
}

// Shutdown stops capture, finishes any recording and releases PortAudio.
func (b *Backend) Shutdown() error {
	if err := b.StopRecording(); err != nil {
		applog.Warnf("capture: stopping recording: %v", err)
	}
	if err := b.Stop(); err != nil {
		return err
	}
	if !b.inited {
		return nil
	}
	b.inited = false
	b.analyzer = nil
	return Terminate()
}

// onInput is the PortAudio callback.
// Performance critical: pre-allocated buffers only, no allocations.
func (b *Backend) onInput(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// Take channel 0 as the analysis signal.
	frames := len(in) / b.cfg.Channels
	if frames > len(b.mono) {
		frames = len(b.mono)
	}
	if b.cfg.Channels == 1 {
		copy(b.mono[:frames], in[:frames])
	} else {
		for i := 0; i < frames; i++ {
			b.mono[i] = in[i*b.cfg.Channels]
		}
	}

	// Slide the rolling analysis frame.
	if frames >= len(b.frame) {
		copy(b.frame, b.mono[frames-len(b.frame):frames])
	} else {
		copy(b.frame, b.frame[frames:])
		copy(b.frame[len(b.frame)-frames:], b.mono[:frames])
	}

	if b.gateOpen(b.mono[:frames]) {
		b.analyzer.Process(b.frame)
	}

	b.rec.write(in)
}
