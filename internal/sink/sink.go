// SPDX-License-Identifier: MIT
// Package sink delivers per-channel color frames to their consumers: LED
// controllers listening on UDP, browsers over WebSocket, or the log for
// debugging. Every sink implements vis.Sink plus Close.
package sink

import (
	applog "lightwave/internal/log"
	"lightwave/internal/vis"
)

// Sink extends vis.Sink with resource release.
type Sink interface {
	vis.Sink
	Close() error
}

// Multi fans one frame out to several sinks. Emit returns the first error
// but still delivers to the remaining sinks.
type Multi []Sink

func (m Multi) Emit(colors []uint32) error {
	var first error
	for _, s := range m {
		if err := s.Emit(colors); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Logging is a sink that logs frames at debug level. Never fails.
type Logging struct{}

func NewLogging() *Logging {
	applog.Infof("sink: using logging sink")
	return &Logging{}
}

func (*Logging) Emit(colors []uint32) error {
	applog.Debugf("sink: frame %v", colors)
	return nil
}

func (*Logging) Close() error {
	return nil
}

var _ Sink = (*Logging)(nil)
var _ Sink = (Multi)(nil)
