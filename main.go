// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lightwave/cmd"
	"lightwave/internal/capture"
	"lightwave/internal/config"
	applog "lightwave/internal/log"
	"lightwave/internal/sink"
	"lightwave/internal/tui"
	"lightwave/internal/vis"
)

// main runs in three phases:
//
// 1. Startup (cold path): parse arguments, load configuration, handle
// one-off commands, build backend, sinks and engine.
//
// 2. Update loop (hot path): a ticker drives Engine.Update, which pulls the
// latest spectrum from the capture callback and pushes changed color frames
// to the sinks.
//
// 3. Shutdown (cold path): on SIGINT/SIGTERM stop the engine and release
// capture and sink resources.
func main() {
	opts, err := cmd.ParseArgs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := opts.Config

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	if opts.Command == "devices" {
		if err := listDevices(opts.Interactive); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	run(cfg)
}

func run(cfg *config.Config) {
	backend := capture.NewBackend(cfg.Device, capture.Config{
		SampleRate:      cfg.Capture.SampleRate,
		FramesPerBuffer: cfg.Capture.FramesPerBuffer,
		Channels:        cfg.Capture.Channels,
		LowLatency:      cfg.Capture.LowLatency,
		Window:          cfg.Capture.Window,
		GateThreshold:   cfg.Capture.GateThreshold,
	})

	sinks := buildSinks(cfg)
	defer func() {
		if err := sinks.Close(); err != nil {
			applog.Errorf("closing sinks: %v", err)
		}
	}()

	engine := vis.NewEngine(backend, sinks, cfg.Settings())
	if err := engine.Start(true); err != nil {
		applog.Fatalf("starting engine: %v", err)
	}
	defer func() {
		if err := backend.Shutdown(); err != nil {
			applog.Errorf("shutting down capture: %v", err)
		}
	}()

	if cfg.Recording.Enabled {
		if err := backend.StartRecording(cfg.Recording.OutputFile); err != nil {
			applog.Fatalf("starting recording: %v", err)
		}
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.UpdateInterval)
	defer ticker.Stop()

	applog.Infof("running: %d channels at %s per tick", engine.ChannelCount(), cfg.UpdateInterval)
	for {
		select {
		case <-ticker.C:
			engine.Update()
		case <-done:
			applog.Infof("shutting down")
			if cfg.Recording.Enabled {
				if err := backend.StopRecording(); err != nil {
					applog.Errorf("stopping recording: %v", err)
				} else {
					applog.Infof("recording saved to %s", cfg.Recording.OutputFile)
				}
			}
			if err := engine.Start(false); err != nil {
				applog.Errorf("stopping engine: %v", err)
			}
			return
		}
	}
}

func buildSinks(cfg *config.Config) sink.Multi {
	var sinks sink.Multi

	if cfg.Sinks.UDPEnabled {
		udp, err := sink.NewUDP(cfg.Sinks.UDPAddress)
		if err != nil {
			applog.Fatalf("creating UDP sink: %v", err)
		}
		sinks = append(sinks, udp)
	}
	if cfg.Sinks.WSEnabled {
		sinks = append(sinks, sink.NewWebSocket(cfg.Sinks.WSAddress))
	}
	if len(sinks) == 0 {
		sinks = append(sinks, sink.NewLogging())
	}
	return sinks
}

func listDevices(interactive bool) error {
	if interactive {
		id, err := tui.PickDevice()
		if err != nil {
			return err
		}
		if id >= 0 {
			fmt.Printf("Selected device %d. Run with --device %d.\n", id, id)
		}
		return nil
	}

	if err := capture.Initialize(); err != nil {
		return err
	}
	defer capture.Terminate()

	devices, err := capture.HostDevices()
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailable Audio Devices\n\n")
	for _, d := range devices {
		deviceType := ""
		switch {
		case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
			deviceType = "Input/Output"
		case d.MaxInputChannels > 0:
			deviceType = "Input"
		case d.MaxOutputChannels > 0:
			deviceType = "Output"
		}
		fmt.Printf("[%d] %s (%s)\n", d.ID, d.Name, deviceType)
		fmt.Printf("    Input channels: %d, Output channels: %d\n", d.MaxInputChannels, d.MaxOutputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n\n", d.DefaultSampleRate)
	}
	return nil
}
