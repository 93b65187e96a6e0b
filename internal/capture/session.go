package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SwartzMss/AudioTransVox/internal/audio"
	"github.com/SwartzMss/AudioTransVox/internal/wav"
	"github.com/rs/zerolog"
)

// drainDelay is how long Stop waits after halting the device before the
// file is finalized, so a callback already holding device data can land
// its bytes.
const drainDelay = 100 * time.Millisecond

// ErrAlreadyStarted is returned by Start on a session that is not idle.
// Sessions are single-use; record again with a fresh one.
var ErrAlreadyStarted = errors.New("capture session already started")

type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "invalid"
	}
}

// Session records one loopback capture into one WAV file. It moves
// Idle -> Running -> Stopped exactly once. The device thread appends
// converted PCM through the data callback while the controller thread
// owns Start and Stop; the session mutex is the only thing both sides
// share, held just long enough for each append or the final patch.
type Session struct {
	backend audio.Backend
	log     zerolog.Logger

	mu       sync.Mutex
	state    State
	cfg      audio.StreamConfig
	stream   audio.Stream
	writer   *wav.Writer
	scratch  []byte
	writeErr error
}

// New creates an idle capture session on top of backend.
func New(backend audio.Backend, log zerolog.Logger) *Session {
	return &Session{backend: backend, log: log}
}

// Start opens the loopback stream, discovers the device's native shape,
// creates the output file and begins appending converted PCM. deviceID
// empty selects the default playback device. Any failure here is final:
// the session stays idle and nothing is retried.
func (s *Session) Start(path, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return ErrAlreadyStarted
	}

	stream, err := s.backend.OpenLoopback(deviceID, audio.Callbacks{
		Data:    s.onData,
		Stopped: s.onDeviceStopped,
	})
	if err != nil {
		return fmt.Errorf("failed to open loopback stream: %w", err)
	}

	cfg := stream.Config()
	if err := cfg.Validate(); err != nil {
		stream.Close()
		return fmt.Errorf("device stream is unusable: %w", err)
	}

	s.log.Info().
		Int("channels", cfg.Channels).
		Int("sample_rate", cfg.SampleRate).
		Str("format", cfg.Kind.String()).
		Str("file", path).
		Msg("Starting capture")

	writer, err := wav.NewWriter(path, cfg.SampleRate)
	if err != nil {
		stream.Close()
		return fmt.Errorf("failed to create output file: %w", err)
	}

	s.cfg = cfg
	s.stream = stream
	s.writer = writer

	if err := stream.Start(); err != nil {
		stream.Close()
		if ferr := writer.Finalize(); ferr != nil {
			s.log.Warn().Err(ferr).Msg("Failed to close aborted capture file")
		}
		s.stream = nil
		s.writer = nil
		return fmt.Errorf("failed to start loopback stream: %w", err)
	}

	s.state = Running
	return nil
}

// onData runs on the device's real-time thread. It converts the delivered
// frames in place into the scratch buffer and appends them; past the first
// delivery the steady state does no allocation.
func (s *Session) onData(raw []byte, frames uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer == nil || s.writeErr != nil {
		return
	}

	need := 2 * int(frames)
	if cap(s.scratch) < need {
		s.scratch = make([]byte, need)
	}

	n := audio.ConvertBuffer(s.cfg, raw, s.scratch[:need])
	if n == 0 {
		return
	}

	if err := s.writer.Append(s.scratch[:n]); err != nil {
		// First failure is terminal for the session; later deliveries
		// are dropped so a broken file does not keep growing.
		s.writeErr = err
		s.log.Error().Err(err).Msg("Write failed, capture halted")
	}
}

func (s *Session) onDeviceStopped() {
	s.mu.Lock()
	running := s.state == Running
	s.mu.Unlock()

	if running {
		s.log.Warn().Msg("Device stopped while capture is running")
	}
}

// Stop halts the stream, waits briefly for an in-flight callback to drain,
// finalizes the file and moves the session to Stopped. Calling it on an
// idle session is a no-op; calling it again returns whatever terminal
// error the first call recorded.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state == Idle {
		s.mu.Unlock()
		return nil
	}
	if s.state == Stopped {
		err := s.writeErr
		s.mu.Unlock()
		return err
	}
	s.state = Stopped
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()

	s.log.Info().Msg("Stopping capture")

	if err := stream.Stop(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to stop loopback stream")
	}
	stream.Close()

	time.Sleep(drainDelay)

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.writer.Path()
	ferr := s.writer.Finalize()
	s.writer = nil

	if s.writeErr != nil {
		return s.writeErr
	}
	if ferr != nil {
		err := fmt.Errorf("failed to finalize output file: %w", ferr)
		s.writeErr = err
		return err
	}

	s.log.Info().Str("file", path).Msg("Capture finished")
	return nil
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
