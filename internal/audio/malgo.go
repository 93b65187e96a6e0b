package audio

import (
	"fmt"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

type malgoBackend struct {
	ctx *malgo.AllocatedContext
	log zerolog.Logger
}

// NewBackend creates a miniaudio-based backend. Driver diagnostics are
// routed into the logger; mid-stream device errors arrive there too.
func NewBackend(log zerolog.Logger) (Backend, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Debug().Str("source", "miniaudio").Msg(strings.TrimSpace(message))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	return &malgoBackend{ctx: ctx, log: log}, nil
}

func (b *malgoBackend) Devices() ([]Device, error) {
	infos, err := b.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	result := make([]Device, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		result = append(result, Device{
			ID:      name,
			Name:    name,
			Default: info.IsDefault != 0,
		})
	}

	return result, nil
}

// OpenLoopback opens a loopback stream against the playback device named
// deviceID, or the default one when deviceID is empty. Format, channels
// and rate are left to the device so its native shape is preserved; the
// negotiated values are reported through Stream.Config.
func (b *malgoBackend) OpenLoopback(deviceID string, cb Callbacks) (Stream, error) {
	cfg := malgo.DefaultDeviceConfig(malgo.Loopback)
	cfg.Alsa.NoMMap = 1

	if deviceID != "" {
		infos, err := b.ctx.Devices(malgo.Playback)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate devices: %w", err)
		}
		found := false
		for i := range infos {
			if infos[i].Name() == deviceID {
				cfg.Capture.DeviceID = infos[i].ID.Pointer()
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrNoDevice, deviceID)
		}
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frames uint32) {
			cb.Data(input, frames)
		},
	}
	if cb.Stopped != nil {
		callbacks.Stop = cb.Stopped
	}

	dev, err := malgo.InitDevice(b.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("failed to open loopback device: %w", err)
	}

	sc := StreamConfig{
		Channels:   int(dev.CaptureChannels()),
		SampleRate: int(dev.SampleRate()),
		Kind:       kindFromFormat(dev.CaptureFormat()),
	}
	return &malgoStream{dev: dev, cfg: sc}, nil
}

func (b *malgoBackend) Close() error {
	if b.ctx == nil {
		return nil
	}
	err := b.ctx.Uninit()
	b.ctx.Free()
	b.ctx = nil
	if err != nil {
		return fmt.Errorf("failed to release audio context: %w", err)
	}
	return nil
}

func kindFromFormat(f malgo.FormatType) SampleKind {
	switch f {
	case malgo.FormatU8:
		return KindU8
	case malgo.FormatS16:
		return KindS16
	case malgo.FormatS24:
		return KindS24
	case malgo.FormatS32:
		return KindS32
	case malgo.FormatF32:
		return KindF32
	}
	return KindUnknown
}

type malgoStream struct {
	dev *malgo.Device
	cfg StreamConfig
}

func (s *malgoStream) Config() StreamConfig {
	return s.cfg
}

func (s *malgoStream) Start() error {
	if err := s.dev.Start(); err != nil {
		return fmt.Errorf("failed to start loopback stream: %w", err)
	}
	return nil
}

func (s *malgoStream) Stop() error {
	if err := s.dev.Stop(); err != nil {
		return fmt.Errorf("failed to stop loopback stream: %w", err)
	}
	return nil
}

func (s *malgoStream) Close() {
	s.dev.Uninit()
}
