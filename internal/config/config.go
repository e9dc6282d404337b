// SPDX-License-Identifier: MIT
// Package config loads the driver configuration from YAML with environment
// overrides, validates it and builds the engine settings snapshot from it.
package config

import (
	"time"

	"lightwave/internal/vis"
)

// Defaults and limits for the driver configuration.
const (
	DefaultDeviceID    = -1 // system default input device
	DefaultLeds        = 10
	DefaultMinColor    = "#000000"
	DefaultMaxColor    = "#ffffff"
	DefaultLiquidSpeed = 100

	DefaultSampleRate      = 44100
	DefaultFramesPerBuffer = 512
	DefaultChannels        = 1

	DefaultUpdateInterval = 33 * time.Millisecond // ~30 Hz

	MinSampleRate   = 8000
	MaxSampleRate   = 192000
	MaxBufferFrames = 8192
	MaxLeds         = 4096
)

// Config is the main configuration structure, loaded from YAML.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	Device         int           `yaml:"device"`           // capture device index, -1 for default
	Leds           int           `yaml:"leds"`             // number of output color channels
	MinColor       string        `yaml:"min_color"`        // gradient color at silence, hex
	MaxColor       string        `yaml:"max_color"`        // gradient color at full intensity, hex
	LiquidMode     bool          `yaml:"liquid_mode"`      // animated hue instead of the gradient
	LiquidSpeed    int           `yaml:"liquid_speed"`     // hue walk speed
	OnlyOnChange   bool          `yaml:"only_on_change"`   // suppress unchanged frames
	LedEnabled     []bool        `yaml:"led_enabled"`      // per-channel enable flags, empty enables all
	UpdateInterval time.Duration `yaml:"update_interval"` // tick period of the update loop

	Capture   CaptureConfig   `yaml:"capture"`
	Sinks     SinkConfig      `yaml:"sinks"`
	Recording RecordingConfig `yaml:"recording"`

	minColor vis.RGB // parsed by Validate
	maxColor vis.RGB
}

// CaptureConfig holds the audio input settings.
type CaptureConfig struct {
	SampleRate      float64 `yaml:"sample_rate"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"`
	Channels        int     `yaml:"channels"`
	LowLatency      bool    `yaml:"low_latency"`
	Window          string  `yaml:"fft_window"`     // e.g. "Hann", "Hamming"
	GateThreshold   float64 `yaml:"gate_threshold"` // 0.0-1.0, 0 disables the noise gate
}

// SinkConfig selects where color frames are delivered.
type SinkConfig struct {
	UDPEnabled bool   `yaml:"udp_enabled"`
	UDPAddress string `yaml:"udp_address"` // e.g. "127.0.0.1:9123"
	WSEnabled  bool   `yaml:"ws_enabled"`
	WSAddress  string `yaml:"ws_address"` // e.g. ":8123"
}

// RecordingConfig enables debug WAV recording of the raw capture stream.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"`
}

// Settings builds the engine configuration snapshot. Call after Validate.
func (c *Config) Settings() vis.Settings {
	return vis.Settings{
		Device:           c.Device,
		MinColor:         c.minColor,
		MaxColor:         c.maxColor,
		LiquidMode:       c.LiquidMode,
		LiquidSpeed:      c.LiquidSpeed,
		SendOnlyOnChange: c.OnlyOnChange,
		Channels:         c.Leds,
		ChannelEnabled:   c.LedEnabled,
	}
}
