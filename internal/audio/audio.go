package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevice is returned when no loopback-capable playback device matches.
	ErrNoDevice = errors.New("no matching playback device")
	// ErrUnsupportedFormat is returned for sample kinds the converter rejects.
	ErrUnsupportedFormat = errors.New("unsupported sample format")
	// ErrUnsupportedChannels is returned for channel counts other than mono and stereo.
	ErrUnsupportedChannels = errors.New("unsupported channel count")
)

// SampleKind identifies the in-memory encoding of one sample as delivered
// by the capture device.
type SampleKind int

const (
	KindUnknown SampleKind = iota
	KindU8
	KindS16
	KindS24
	KindS32
	KindF32
	KindF64
)

// Bytes returns the width of one sample in bytes.
func (k SampleKind) Bytes() int {
	switch k {
	case KindU8:
		return 1
	case KindS16:
		return 2
	case KindS24:
		return 3
	case KindS32, KindF32:
		return 4
	case KindF64:
		return 8
	default:
		return 0
	}
}

func (k SampleKind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindS16:
		return "s16"
	case KindS24:
		return "s24"
	case KindS32:
		return "s32"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	default:
		return "unknown"
	}
}

// Supported reports whether the conversion path accepts this kind. Every
// other kind is rejected at stream setup, never reinterpreted.
func (k SampleKind) Supported() bool {
	switch k {
	case KindS16, KindF32, KindF64:
		return true
	}
	return false
}

// StreamConfig describes the native shape of a capture stream. It is
// discovered from the device once the stream is open and never changes
// while the stream runs.
type StreamConfig struct {
	Channels   int
	SampleRate int
	Kind       SampleKind
}

// Validate rejects configurations the conversion path cannot handle.
func (c StreamConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("%w: %d (want mono or stereo)", ErrUnsupportedChannels, c.Channels)
	}
	if !c.Kind.Supported() {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, c.Kind)
	}
	return nil
}

// FrameBytes returns the size of one interleaved frame in bytes.
func (c StreamConfig) FrameBytes() int {
	return c.Channels * c.Kind.Bytes()
}

// Device describes a playback endpoint whose output signal can be tapped
// in loopback mode.
type Device struct {
	ID      string
	Name    string
	Default bool
}

// Callbacks receive data from the device's real-time thread. Data must not
// block; Stopped fires when the device halts on its own.
type Callbacks struct {
	Data    func(raw []byte, frames uint32)
	Stopped func()
}

// Backend opens loopback streams against the platform audio API.
type Backend interface {
	Devices() ([]Device, error)
	OpenLoopback(deviceID string, cb Callbacks) (Stream, error)
	Close() error
}

// Stream is an open loopback stream. Config is fixed from open until Close.
type Stream interface {
	Config() StreamConfig
	Start() error
	Stop() error
	Close()
}
