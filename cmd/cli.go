// SPDX-License-Identifier: MIT
// Package cmd parses command line arguments into the driver configuration.
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"lightwave/internal/config"
	"lightwave/pkg/build"
)

// Options is the outcome of argument parsing: the effective configuration
// plus the requested one-off command, if any.
type Options struct {
	Config      *config.Config
	Command     string // "" runs the driver; "devices" lists capture devices
	Interactive bool   // devices: open the interactive picker
}

// ParseArgs parses os.Args, loads the configuration file and applies flag
// overrides on top of it. Flags win over the file; the file wins over
// built-in defaults.
func ParseArgs() (*Options, error) {
	defaults := config.NewConfig()
	flagVals := *defaults

	opts := &Options{}
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "lightwave",
		Short:         "Audio-reactive LED color driver",
		Version:       build.Version(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List available capture devices",
		Run: func(cmd *cobra.Command, args []string) {
			opts.Command = "devices"
		},
	}
	devicesCmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false,
		"Pick a device interactively")
	rootCmd.AddCommand(devicesCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to the YAML configuration file")

	// Capture
	pf.IntVarP(&flagVals.Device, "device", "d", defaults.Device,
		"Capture device ID, -1 for the system default. See 'devices'.")

	// Output channels and colors
	pf.IntVarP(&flagVals.Leds, "leds", "n", defaults.Leds,
		"Number of output color channels")
	pf.StringVar(&flagVals.MinColor, "min-color", defaults.MinColor,
		"Gradient color at silence (hex)")
	pf.StringVar(&flagVals.MaxColor, "max-color", defaults.MaxColor,
		"Gradient color at full intensity (hex)")
	pf.BoolVar(&flagVals.LiquidMode, "liquid", defaults.LiquidMode,
		"Animated hue instead of the static gradient")
	pf.IntVar(&flagVals.LiquidSpeed, "liquid-speed", defaults.LiquidSpeed,
		"Hue walk speed in liquid mode")
	pf.BoolVar(&flagVals.OnlyOnChange, "only-on-change", defaults.OnlyOnChange,
		"Suppress frames identical to the previous one")
	pf.DurationVar(&flagVals.UpdateInterval, "interval", defaults.UpdateInterval,
		"Update tick period")

	// Sinks
	pf.StringVar(&flagVals.Sinks.UDPAddress, "udp", defaults.Sinks.UDPAddress,
		"Send color frames to this UDP address")
	pf.StringVar(&flagVals.Sinks.WSAddress, "ws", defaults.Sinks.WSAddress,
		"Serve color frames over WebSocket on this address")

	// Recording
	pf.BoolVarP(&flagVals.Recording.Enabled, "record", "r", defaults.Recording.Enabled,
		"Record the raw capture stream to a WAV file")
	pf.StringVarP(&flagVals.Recording.OutputFile, "output", "o", defaults.Recording.OutputFile,
		"Recording file name. Default is capture-DD-MM-YYYY-HHMMSS.wav")

	// Debug
	pf.BoolVarP(&flagVals.Debug, "verbose", "v", defaults.Debug,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// Flags that were set explicitly win over the file.
	for flag, apply := range map[string]func(){
		"device":         func() { cfg.Device = flagVals.Device },
		"leds":           func() { cfg.Leds = flagVals.Leds },
		"min-color":      func() { cfg.MinColor = flagVals.MinColor },
		"max-color":      func() { cfg.MaxColor = flagVals.MaxColor },
		"liquid":         func() { cfg.LiquidMode = flagVals.LiquidMode },
		"liquid-speed":   func() { cfg.LiquidSpeed = flagVals.LiquidSpeed },
		"only-on-change": func() { cfg.OnlyOnChange = flagVals.OnlyOnChange },
		"interval":       func() { cfg.UpdateInterval = flagVals.UpdateInterval },
		"udp":            func() { cfg.Sinks.UDPAddress = flagVals.Sinks.UDPAddress; cfg.Sinks.UDPEnabled = true },
		"ws":             func() { cfg.Sinks.WSAddress = flagVals.Sinks.WSAddress; cfg.Sinks.WSEnabled = true },
		"record":         func() { cfg.Recording.Enabled = flagVals.Recording.Enabled },
		"output":         func() { cfg.Recording.OutputFile = flagVals.Recording.OutputFile },
		"verbose":        func() { cfg.Debug = flagVals.Debug },
	} {
		if pf.Changed(flag) {
			apply()
		}
	}

	if cfg.Recording.Enabled && cfg.Recording.OutputFile == "" {
		cfg.Recording.OutputFile = "capture-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts.Config = cfg
	return opts, nil
}
