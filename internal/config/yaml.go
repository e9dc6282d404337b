// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"lightwave/internal/vis"
)

// NewConfig returns a Config with built-in defaults.
func NewConfig() *Config {
	return &Config{
		Debug:          false,
		LogLevel:       "info",
		Device:         DefaultDeviceID,
		Leds:           DefaultLeds,
		MinColor:       DefaultMinColor,
		MaxColor:       DefaultMaxColor,
		LiquidMode:     false,
		LiquidSpeed:    DefaultLiquidSpeed,
		OnlyOnChange:   true,
		UpdateInterval: DefaultUpdateInterval,
		Capture: CaptureConfig{
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			Channels:        DefaultChannels,
			LowLatency:      false,
			Window:          "Hann",
			GateThreshold:   0.001,
		},
		Sinks: SinkConfig{
			UDPEnabled: false,
			UDPAddress: "127.0.0.1:9123",
			WSEnabled:  false,
			WSAddress:  ":8123",
		},
		Recording: RecordingConfig{
			Enabled:    false,
			OutputFile: "",
		},
	}
}

// Load reads configuration from the YAML file at path. An empty path
// searches the default locations; when no file is found the built-in
// defaults are used. Environment overrides apply after the file, then the
// result is validated.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range []string{"lightwave.yaml", "config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and parses the color endpoints. A non-positive LED
// count is tolerated: the engine degrades to a no-op update.
func (c *Config) Validate() error {
	if c.Leds > MaxLeds {
		return fmt.Errorf("leds %d exceeds maximum %d", c.Leds, MaxLeds)
	}
	if c.Capture.SampleRate < MinSampleRate || c.Capture.SampleRate > MaxSampleRate {
		return fmt.Errorf("sample_rate %.0f outside %d-%d Hz", c.Capture.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Capture.FramesPerBuffer <= 0 || c.Capture.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("frames_per_buffer %d outside 1-%d", c.Capture.FramesPerBuffer, MaxBufferFrames)
	}
	if c.Capture.GateThreshold < 0 || c.Capture.GateThreshold > 1 {
		return fmt.Errorf("gate_threshold %f outside 0.0-1.0", c.Capture.GateThreshold)
	}
	if c.UpdateInterval <= 0 {
		c.UpdateInterval = DefaultUpdateInterval
	}

	var err error
	if c.minColor, err = parseHexColor(c.MinColor); err != nil {
		return fmt.Errorf("min_color: %w", err)
	}
	if c.maxColor, err = parseHexColor(c.MaxColor); err != nil {
		return fmt.Errorf("max_color: %w", err)
	}
	return nil
}

func parseHexColor(s string) (vis.RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return vis.RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return vis.RGB{R: r, G: g, B: b}, nil
}

// applyEnvOverrides applies LIGHTWAVE_* environment variables on top of the
// loaded file.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("LIGHTWAVE_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("LIGHTWAVE_DEVICE"); ok {
		if d, err := strconv.Atoi(val); err == nil {
			c.Device = d
		}
	}
	if val, ok := os.LookupEnv("LIGHTWAVE_LEDS"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Leds = n
		}
	}
	if val, ok := os.LookupEnv("LIGHTWAVE_UDP_ADDRESS"); ok {
		c.Sinks.UDPAddress = val
		c.Sinks.UDPEnabled = true
	}
	if val, ok := os.LookupEnv("LIGHTWAVE_WS_ADDRESS"); ok {
		c.Sinks.WSAddress = val
		c.Sinks.WSEnabled = true
	}
	if val, ok := os.LookupEnv("LIGHTWAVE_UPDATE_INTERVAL"); ok {
		if d, err := time.ParseDuration(val); err == nil {
			c.UpdateInterval = d
		}
	}
}
