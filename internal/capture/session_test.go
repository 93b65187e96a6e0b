package capture

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/SwartzMss/AudioTransVox/internal/audio"
	"github.com/rs/zerolog"
)

// Mock implementations for testing

type fakeStream struct {
	cfg      audio.StreamConfig
	cb       audio.Callbacks
	startErr error
	started  bool
	closed   bool
}

func (f *fakeStream) Config() audio.StreamConfig { return f.cfg }

func (f *fakeStream) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

func (f *fakeStream) Stop() error {
	f.started = false
	return nil
}

func (f *fakeStream) Close() {
	f.closed = true
}

type fakeBackend struct {
	cfg      audio.StreamConfig
	startErr error
	openErr  error
	stream   *fakeStream
}

func (f *fakeBackend) Devices() ([]audio.Device, error) {
	return []audio.Device{{ID: "default", Name: "Default", Default: true}}, nil
}

func (f *fakeBackend) OpenLoopback(deviceID string, cb audio.Callbacks) (audio.Stream, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.stream = &fakeStream{cfg: f.cfg, cb: cb, startErr: f.startErr}
	return f.stream, nil
}

func (f *fakeBackend) Close() error { return nil }

func stereoF32(pairs ...float32) []byte {
	buf := make([]byte, 4*len(pairs))
	for i, v := range pairs {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func TestStopBeforeStartIsNoOp(t *testing.T) {
	s := New(&fakeBackend{}, zerolog.Nop())

	if err := s.Stop(); err != nil {
		t.Errorf("Stop() before Start() error = %v, want nil", err)
	}
	if s.State() != Idle {
		t.Errorf("State() = %v, want Idle", s.State())
	}
}

func TestSessionCapturesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	backend := &fakeBackend{cfg: audio.StreamConfig{Channels: 2, SampleRate: 48000, Kind: audio.KindF32}}
	s := New(backend, zerolog.Nop())

	if err := s.Start(path, ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.State() != Running {
		t.Fatalf("State() = %v, want Running", s.State())
	}
	if !backend.stream.started {
		t.Fatal("stream was not started")
	}

	// Two stereo frames: (0.5, 0.5) and (1.0, -1.0).
	backend.stream.cb.Data(stereoF32(0.5, 0.5, 1.0, -1.0), 2)

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.State() != Stopped {
		t.Errorf("State() = %v, want Stopped", s.State())
	}
	if !backend.stream.closed {
		t.Error("stream was not closed")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(data) != 48 {
		t.Fatalf("file size = %d, want 48", len(data))
	}
	if got := binary.LittleEndian.Uint32(data[24:]); got != 48000 {
		t.Errorf("header sample rate = %d, want 48000", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:]); got != 4 {
		t.Errorf("header data size = %d, want 4", got)
	}
	if got := int16(binary.LittleEndian.Uint16(data[44:])); got != 16384 {
		t.Errorf("first sample = %d, want 16384", got)
	}
	if got := int16(binary.LittleEndian.Uint16(data[46:])); got != 0 {
		t.Errorf("second sample = %d, want 0", got)
	}
}

func TestDoubleStartRejected(t *testing.T) {
	dir := t.TempDir()
	backend := &fakeBackend{cfg: audio.StreamConfig{Channels: 1, SampleRate: 44100, Kind: audio.KindS16}}
	s := New(backend, zerolog.Nop())

	if err := s.Start(filepath.Join(dir, "a.wav"), ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	err := s.Start(filepath.Join(dir, "b.wav"), "")
	if !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestStartRejectsUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	backend := &fakeBackend{cfg: audio.StreamConfig{Channels: 1, SampleRate: 44100, Kind: audio.KindS32}}
	s := New(backend, zerolog.Nop())

	err := s.Start(path, "")
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Fatalf("Start() error = %v, want ErrUnsupportedFormat", err)
	}
	if s.State() != Idle {
		t.Errorf("State() = %v, want Idle", s.State())
	}
	if !backend.stream.closed {
		t.Error("stream should be closed after rejected config")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no output file should exist after rejected config")
	}
}

func TestStartRejectsUnsupportedChannels(t *testing.T) {
	backend := &fakeBackend{cfg: audio.StreamConfig{Channels: 6, SampleRate: 44100, Kind: audio.KindS16}}
	s := New(backend, zerolog.Nop())

	err := s.Start(filepath.Join(t.TempDir(), "out.wav"), "")
	if !errors.Is(err, audio.ErrUnsupportedChannels) {
		t.Fatalf("Start() error = %v, want ErrUnsupportedChannels", err)
	}
}

func TestStartSurfacesFileCreateFailure(t *testing.T) {
	backend := &fakeBackend{cfg: audio.StreamConfig{Channels: 1, SampleRate: 44100, Kind: audio.KindS16}}
	s := New(backend, zerolog.Nop())

	err := s.Start(filepath.Join(t.TempDir(), "missing", "out.wav"), "")
	if err == nil {
		t.Fatal("Start() with an uncreatable path should fail")
	}
	if s.State() != Idle {
		t.Errorf("State() = %v, want Idle", s.State())
	}
	if !backend.stream.closed {
		t.Error("stream should be closed after file create failure")
	}
}

func TestStartSurfacesStreamStartFailure(t *testing.T) {
	backend := &fakeBackend{
		cfg:      audio.StreamConfig{Channels: 1, SampleRate: 44100, Kind: audio.KindS16},
		startErr: errors.New("device busy"),
	}
	s := New(backend, zerolog.Nop())

	err := s.Start(filepath.Join(t.TempDir(), "out.wav"), "")
	if err == nil {
		t.Fatal("Start() should surface the stream start failure")
	}
	if s.State() != Idle {
		t.Errorf("State() = %v, want Idle", s.State())
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() after failed Start() error = %v, want nil", err)
	}
}

func TestWriteFailureIsTerminal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	backend := &fakeBackend{cfg: audio.StreamConfig{Channels: 1, SampleRate: 16000, Kind: audio.KindS16}}
	s := New(backend, zerolog.Nop())

	if err := s.Start(path, ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Force every following append to fail.
	s.mu.Lock()
	s.writer.Finalize()
	s.mu.Unlock()

	backend.stream.cb.Data([]byte{0x01, 0x00, 0x02, 0x00}, 2)

	err := s.Stop()
	if err == nil {
		t.Fatal("Stop() should surface the write failure")
	}
	if s.State() != Stopped {
		t.Errorf("State() = %v, want Stopped", s.State())
	}

	// A second Stop reports the same terminal failure.
	if err := s.Stop(); err == nil {
		t.Error("second Stop() should still report the failure")
	}
}

func TestStopTwiceAfterCleanCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	backend := &fakeBackend{cfg: audio.StreamConfig{Channels: 1, SampleRate: 16000, Kind: audio.KindS16}}
	s := New(backend, zerolog.Nop())

	if err := s.Start(path, ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() error = %v, want nil", err)
	}
}

func TestStartFailsWhenDeviceMissing(t *testing.T) {
	backend := &fakeBackend{openErr: audio.ErrNoDevice}
	s := New(backend, zerolog.Nop())

	err := s.Start(filepath.Join(t.TempDir(), "out.wav"), "gone")
	if !errors.Is(err, audio.ErrNoDevice) {
		t.Errorf("Start() error = %v, want ErrNoDevice", err)
	}
}
