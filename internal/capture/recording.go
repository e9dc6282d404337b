// SPDX-License-Identifier: MIT
package capture

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "lightwave/internal/log"
)

// recorder writes the raw capture stream to a WAV file for offline
// inspection. State transitions are atomic so the audio callback can check
// cheaply whether to write.
type recorder struct {
	active  int32 // atomic flag
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
}

// StartRecording begins writing raw input to filename.
func (b *Backend) StartRecording(filename string) error {
	if atomic.LoadInt32(&b.rec.active) == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	b.rec.file = file
	b.rec.encoder = wav.NewEncoder(file, int(b.cfg.SampleRate), 32, b.cfg.Channels, 1)
	b.rec.buf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: b.cfg.Channels,
			SampleRate:  int(b.cfg.SampleRate),
		},
		Data: make([]int, b.cfg.FramesPerBuffer*b.cfg.Channels),
	}

	atomic.StoreInt32(&b.rec.active, 1)
	applog.Infof("capture: recording to %s", filename)
	return nil
}

// StopRecording finishes and closes the WAV file. No-op when not recording.
func (b *Backend) StopRecording() error {
	if atomic.LoadInt32(&b.rec.active) == 0 {
		return nil
	}
	atomic.StoreInt32(&b.rec.active, 0)

	if b.rec.encoder != nil {
		if err := b.rec.encoder.Close(); err != nil {
			return err
		}
		b.rec.encoder = nil
	}
	if b.rec.file != nil {
		if err := b.rec.file.Close(); err != nil {
			return err
		}
		b.rec.file = nil
	}
	return nil
}

// write appends one raw buffer to the recording, if one is active.
// Called from the audio callback.
func (r *recorder) write(in []int32) {
	if atomic.LoadInt32(&r.active) == 0 || r.encoder == nil {
		return
	}

	r.buf.Data = r.buf.Data[:cap(r.buf.Data)]
	n := len(in)
	if n > len(r.buf.Data) {
		n = len(r.buf.Data)
	}
	for i := 0; i < n; i++ {
		r.buf.Data[i] = int(in[i])
	}
	r.buf.Data = r.buf.Data[:n]

	if err := r.encoder.Write(r.buf); err != nil {
		applog.Errorf("capture: writing WAV: %v", err)
	}
}
