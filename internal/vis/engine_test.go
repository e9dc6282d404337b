// SPDX-License-Identifier: MIT
package vis

import (
	"errors"
	"testing"
)

// fakeBackend is an in-memory vis.Backend with a scriptable spectrum.
type fakeBackend struct {
	initErr     error
	inits       int
	starts      int
	stops       int
	shutdowns   int
	selected    []int
	running     bool
	devices     []Device
	recommended int
	spectrum    []float64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		devices:     []Device{{ID: 0, Name: "Loopback"}, {ID: 2, Name: "Mic"}},
		recommended: 1,
		spectrum:    make([]float64, SpectrumLen),
	}
}

func (b *fakeBackend) Init() error {
	b.inits++
	return b.initErr
}

func (b *fakeBackend) Devices() ([]Device, int, error) {
	return b.devices, b.recommended, nil
}

func (b *fakeBackend) SelectDevice(id int) error {
	b.selected = append(b.selected, id)
	return nil
}

func (b *fakeBackend) Start() error {
	b.starts++
	b.running = true
	return nil
}

func (b *fakeBackend) Stop() error {
	b.stops++
	b.running = false
	return nil
}

func (b *fakeBackend) Spectrum() []float64 {
	return b.spectrum
}

func (b *fakeBackend) Shutdown() error {
	b.shutdowns++
	return nil
}

// setFlat fills every non-DC bin with level.
func (b *fakeBackend) setFlat(level float64) {
	for i := 1; i < len(b.spectrum); i++ {
		b.spectrum[i] = level
	}
}

// fakeSink records every emitted frame.
type fakeSink struct {
	frames [][]uint32
}

func (s *fakeSink) Emit(colors []uint32) error {
	frame := make([]uint32, len(colors))
	copy(frame, colors)
	s.frames = append(s.frames, frame)
	return nil
}

func gradientSettings(channels int) Settings {
	return Settings{
		Device:           -1,
		MinColor:         RGB{},
		MaxColor:         RGB{R: 255, G: 255, B: 255},
		LiquidSpeed:      DefaultLiquidSpeed,
		SendOnlyOnChange: true,
		Channels:         channels,
	}
}

func startedEngine(t *testing.T, backend Backend, sink Sink, s Settings) *Engine {
	t.Helper()
	e := NewEngine(backend, sink, s)
	if err := e.Start(true); err != nil {
		t.Fatalf("Start(true) failed: %v", err)
	}
	return e
}

func TestStartLifecycle(t *testing.T) {
	backend := newFakeBackend()
	e := NewEngine(backend, &fakeSink{}, gradientSettings(3))

	if e.Running() {
		t.Fatal("engine must start disabled")
	}

	if err := e.Start(true); err != nil {
		t.Fatalf("Start(true) failed: %v", err)
	}
	if !e.Running() || !backend.running {
		t.Error("engine not running after Start(true)")
	}

	// Already running: no second acquisition.
	if err := e.Start(true); err != nil {
		t.Fatalf("repeated Start(true) failed: %v", err)
	}
	if backend.inits != 1 || backend.starts != 1 {
		t.Errorf("repeated Start(true): inits=%d starts=%d, want 1/1", backend.inits, backend.starts)
	}

	if err := e.Start(false); err != nil {
		t.Fatalf("Start(false) failed: %v", err)
	}
	if e.Running() || backend.running {
		t.Error("engine still running after Start(false)")
	}

	// Already disabled: no-op.
	if err := e.Start(false); err != nil {
		t.Fatalf("repeated Start(false) failed: %v", err)
	}
	if backend.stops != 1 {
		t.Errorf("repeated Start(false): stops=%d, want 1", backend.stops)
	}

	// Re-enable: backend already acquired, only the stream restarts.
	if err := e.Start(true); err != nil {
		t.Fatalf("re-enable failed: %v", err)
	}
	if backend.inits != 1 || backend.starts != 2 {
		t.Errorf("re-enable: inits=%d starts=%d, want 1/2", backend.inits, backend.starts)
	}
}

func TestStartInitFailureStaysDisabled(t *testing.T) {
	backend := newFakeBackend()
	backend.initErr = errors.New("device open failed")
	sink := &fakeSink{}
	e := NewEngine(backend, sink, gradientSettings(3))

	if err := e.Start(true); err == nil {
		t.Fatal("expected init failure, got nil")
	}
	if e.Running() {
		t.Error("engine running after failed init")
	}

	e.Update()
	if len(sink.frames) != 0 {
		t.Error("disabled engine emitted a frame")
	}

	// An explicit retry after the backend recovers succeeds.
	backend.initErr = nil
	if err := e.Start(true); err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
	if !e.Running() {
		t.Error("engine not running after recovered Start")
	}
}

func TestUpdateChangeGating(t *testing.T) {
	backend := newFakeBackend()
	backend.setFlat(0.5)
	sink := &fakeSink{}
	e := startedEngine(t, backend, sink, gradientSettings(3))

	// Identical spectrum twice: gating allows at most one emission.
	e.Update()
	e.Update()
	if len(sink.frames) != 1 {
		t.Errorf("emissions with gating = %d, want 1", len(sink.frames))
	}
}

func TestUpdateGatingDisabledEmitsEveryTick(t *testing.T) {
	backend := newFakeBackend()
	backend.setFlat(0.5)
	sink := &fakeSink{}
	s := gradientSettings(3)
	s.SendOnlyOnChange = false
	e := startedEngine(t, backend, sink, s)

	for i := 0; i < 5; i++ {
		e.Update()
	}
	if len(sink.frames) != 5 {
		t.Errorf("emissions without gating = %d, want 5", len(sink.frames))
	}
}

func TestUpdateNoopWithZeroChannels(t *testing.T) {
	backend := newFakeBackend()
	backend.setFlat(0.5)
	sink := &fakeSink{}
	e := startedEngine(t, backend, sink, gradientSettings(0))

	e.Update()
	if len(sink.frames) != 0 {
		t.Error("zero-channel engine emitted a frame")
	}
}

func TestUpdateFlatSpectrumGradient(t *testing.T) {
	backend := newFakeBackend()
	backend.setFlat(1.0)
	sink := &fakeSink{}
	s := gradientSettings(3)
	s.SendOnlyOnChange = false
	e := startedEngine(t, backend, sink, s)

	e.Update()
	if len(sink.frames) != 1 {
		t.Fatalf("emissions after tick 1 = %d, want 1", len(sink.frames))
	}

	// Flat unit spectrum: every channel at sqrt(1)*1000-4 = 996, so all
	// three colors are equal, near-white and non-black.
	frame := sink.frames[0]
	if len(frame) != 3 {
		t.Fatalf("frame length = %d, want 3", len(frame))
	}
	for i, c := range frame {
		if c == 0 {
			t.Errorf("channel %d black on full spectrum", i)
		}
		if c != frame[0] {
			t.Errorf("channel %d = %#x differs from channel 0 = %#x", i, c, frame[0])
		}
	}
	want := Mapper{
		Mode: ModeGradient,
		Max:  RGB{R: 255, G: 255, B: 255},
	}
	if got := want.Map(996, true); frame[0] != got {
		t.Errorf("channel color = %#x, want %#x", frame[0], got)
	}

	// Spectrum drops out: renormalization pulls everything to black well
	// within five more ticks.
	backend.setFlat(0)
	for tick := 2; tick <= 6; tick++ {
		e.Update()
	}
	last := sink.frames[len(sink.frames)-1]
	for i, c := range last {
		if c != 0 {
			t.Errorf("channel %d = %#x after dropout, want black", i, c)
		}
	}
}

func TestSetChannelCountResetsState(t *testing.T) {
	backend := newFakeBackend()
	backend.setFlat(1.0)
	sink := &fakeSink{}
	e := startedEngine(t, backend, sink, gradientSettings(3))

	e.Update()
	if e.peaks.Peak(0) == 0 {
		t.Fatal("expected nonzero peak after loud tick")
	}

	e.SetChannelCount(5)
	if e.ChannelCount() != 5 {
		t.Fatalf("ChannelCount = %d, want 5", e.ChannelCount())
	}
	for ch := 0; ch < 5; ch++ {
		if e.peaks.Peak(ch) != 0 {
			t.Errorf("channel %d peak survived resize", ch)
		}
	}
	for i, c := range e.Colors() {
		if c != 0 {
			t.Errorf("channel %d color survived resize: %#x", i, c)
		}
	}

	// The next tick emits a frame of the new length.
	e.Update()
	last := sink.frames[len(sink.frames)-1]
	if len(last) != 5 {
		t.Errorf("frame length after resize = %d, want 5", len(last))
	}
}

func TestSetLiquidModeLeavingForcesOneEmission(t *testing.T) {
	backend := newFakeBackend()
	backend.setFlat(0.5)
	sink := &fakeSink{}
	s := gradientSettings(3)
	s.LiquidMode = true
	e := startedEngine(t, backend, sink, s)

	if !e.gen.running {
		t.Fatal("liquid generator not started with the engine")
	}

	e.Update()
	emitted := len(sink.frames)

	e.SetLiquidMode(false)
	if e.gen.running {
		t.Error("generator still running after leaving liquid mode")
	}
	if len(sink.frames) != emitted+1 {
		t.Errorf("emissions after mode switch = %d, want %d", len(sink.frames), emitted+1)
	}

	// The forced frame is gradient-colored, not a residual animated hue.
	e.Update()
	if len(sink.frames) != emitted+1 {
		t.Errorf("extra emission after forced recompute: %d, want %d", len(sink.frames), emitted+1)
	}
}

func TestSetLiquidModeEnteringStartsGenerator(t *testing.T) {
	backend := newFakeBackend()
	e := startedEngine(t, backend, &fakeSink{}, gradientSettings(3))

	if e.gen.running {
		t.Fatal("generator running in gradient mode")
	}
	e.SetLiquidMode(true)
	if !e.gen.running {
		t.Error("generator not running after entering liquid mode")
	}

	// While disabled, entering liquid mode must not start the generator.
	if err := e.Start(false); err != nil {
		t.Fatalf("Start(false) failed: %v", err)
	}
	if e.gen.running {
		t.Error("generator survived engine stop")
	}
	e.SetLiquidMode(true)
	if e.gen.running {
		t.Error("generator started while engine disabled")
	}
}

func TestDisabledChannelsStayBlack(t *testing.T) {
	backend := newFakeBackend()
	backend.setFlat(1.0)
	sink := &fakeSink{}
	s := gradientSettings(3)
	s.SendOnlyOnChange = false
	s.ChannelEnabled = []bool{true, false, true}
	e := startedEngine(t, backend, sink, s)

	e.Update()
	frame := sink.frames[0]
	if frame[1] != 0 {
		t.Errorf("disabled channel 1 = %#x, want black", frame[1])
	}
	if frame[0] == 0 || frame[2] == 0 {
		t.Error("enabled channels black on full spectrum")
	}
}

func TestQueryDevices(t *testing.T) {
	backend := newFakeBackend()
	e := NewEngine(backend, &fakeSink{}, gradientSettings(3))

	devices, recommended := e.QueryDevices()
	if len(devices) != 2 || recommended != 1 {
		t.Errorf("QueryDevices = %d devices, recommended %d; want 2, 1", len(devices), recommended)
	}
	if backend.inits != 1 {
		t.Errorf("inits = %d, want lazy init exactly once", backend.inits)
	}

	// Second query reuses the acquired backend.
	e.QueryDevices()
	if backend.inits != 1 {
		t.Errorf("inits after second query = %d, want 1", backend.inits)
	}
}

func TestQueryDevicesInitFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.initErr = errors.New("no devices")
	e := NewEngine(backend, &fakeSink{}, gradientSettings(3))

	devices, recommended := e.QueryDevices()
	if devices != nil || recommended != -1 {
		t.Errorf("QueryDevices on failure = %v, %d; want nil, -1", devices, recommended)
	}
	if e.Running() {
		t.Error("engine running after failed device query")
	}
}

func TestSetDeviceRestartsWhileRunning(t *testing.T) {
	backend := newFakeBackend()
	e := startedEngine(t, backend, &fakeSink{}, gradientSettings(3))

	if err := e.SetDevice(2); err != nil {
		t.Fatalf("SetDevice failed: %v", err)
	}
	if !e.Running() {
		t.Error("engine stopped after device switch")
	}
	if backend.stops != 1 || backend.starts != 2 {
		t.Errorf("device switch: stops=%d starts=%d, want 1/2", backend.stops, backend.starts)
	}
	found := false
	for _, id := range backend.selected {
		if id == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("backend never saw device 2, selections: %v", backend.selected)
	}
}

func TestResetClearsPeaksAndGenerator(t *testing.T) {
	backend := newFakeBackend()
	backend.setFlat(1.0)
	e := startedEngine(t, backend, &fakeSink{}, gradientSettings(3))

	e.Update()
	e.Reset()

	if e.ChannelCount() != 3 {
		t.Errorf("ChannelCount after reset = %d, want 3", e.ChannelCount())
	}
	for ch := 0; ch < 3; ch++ {
		if e.peaks.Peak(ch) != 0 {
			t.Errorf("channel %d peak survived reset", ch)
		}
	}
}
