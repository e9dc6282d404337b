// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"strings"
	"testing"
	"time"
)

func parseWith(t *testing.T, args ...string) (*Options, error) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"lightwave"}, args...)
	t.Cleanup(func() { os.Args = orig })
	return ParseArgs()
}

func TestParseArgsDefaults(t *testing.T) {
	opts, err := parseWith(t)
	if err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}
	if opts.Command != "" {
		t.Errorf("Command = %q, want run", opts.Command)
	}
	cfg := opts.Config
	if cfg.Device != -1 || cfg.Leds != 10 {
		t.Errorf("defaults: device=%d leds=%d, want -1/10", cfg.Device, cfg.Leds)
	}
	if !cfg.OnlyOnChange {
		t.Error("OnlyOnChange default = false, want true")
	}
}

func TestParseArgsFlagOverrides(t *testing.T) {
	opts, err := parseWith(t,
		"--leds", "16",
		"--liquid",
		"--liquid-speed", "300",
		"--max-color", "#ff8800",
		"--interval", "20ms",
		"--only-on-change=false",
	)
	if err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}

	cfg := opts.Config
	if cfg.Leds != 16 {
		t.Errorf("Leds = %d, want 16", cfg.Leds)
	}
	if !cfg.LiquidMode || cfg.LiquidSpeed != 300 {
		t.Errorf("liquid = %v/%d, want true/300", cfg.LiquidMode, cfg.LiquidSpeed)
	}
	if cfg.MaxColor != "#ff8800" {
		t.Errorf("MaxColor = %q, want #ff8800", cfg.MaxColor)
	}
	if cfg.UpdateInterval != 20*time.Millisecond {
		t.Errorf("UpdateInterval = %v, want 20ms", cfg.UpdateInterval)
	}
	if cfg.OnlyOnChange {
		t.Error("OnlyOnChange = true, want false")
	}
}

func TestParseArgsSinkFlagsEnableSinks(t *testing.T) {
	opts, err := parseWith(t, "--udp", "10.1.2.3:9123")
	if err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}
	if !opts.Config.Sinks.UDPEnabled || opts.Config.Sinks.UDPAddress != "10.1.2.3:9123" {
		t.Errorf("sinks = %+v, want UDP enabled at 10.1.2.3:9123", opts.Config.Sinks)
	}
	if opts.Config.Sinks.WSEnabled {
		t.Error("WS sink enabled without its flag")
	}
}

func TestParseArgsDevicesCommand(t *testing.T) {
	opts, err := parseWith(t, "devices", "-i")
	if err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}
	if opts.Command != "devices" {
		t.Errorf("Command = %q, want devices", opts.Command)
	}
	if !opts.Interactive {
		t.Error("Interactive = false, want true")
	}
}

func TestParseArgsRecordingDefaultFilename(t *testing.T) {
	opts, err := parseWith(t, "--record")
	if err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}
	name := opts.Config.Recording.OutputFile
	if !strings.HasPrefix(name, "capture-") || !strings.HasSuffix(name, ".wav") {
		t.Errorf("default recording name = %q, want capture-*.wav", name)
	}
}

func TestParseArgsInvalidFlagValue(t *testing.T) {
	if _, err := parseWith(t, "--leds", "10000"); err == nil {
		t.Error("out-of-range led count accepted")
	}
	if _, err := parseWith(t, "--max-color", "chartreuse"); err == nil {
		t.Error("invalid color accepted")
	}
}
