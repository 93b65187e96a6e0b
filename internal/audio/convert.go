package audio

import (
	"encoding/binary"
	"math"
)

// Capture always produces mono 16-bit signed little-endian PCM regardless
// of what the device delivers. Each native frame collapses to exactly one
// output sample: mono converts directly, stereo averages the two channels
// after normalizing them to [-1, 1].

const (
	pcmMax = 32767
	pcmMin = -32768
)

// ConvertFrame converts one interleaved native frame to a single mono PCM
// sample. kind and channels must already have passed StreamConfig.Validate;
// frame holds exactly channels*kind.Bytes() bytes. Runs on the audio
// callback path, so it never blocks or allocates.
func ConvertFrame(kind SampleKind, channels int, frame []byte) int16 {
	if channels == 1 {
		if kind == KindS16 {
			return int16(binary.LittleEndian.Uint16(frame))
		}
		return scaleClamp(normalize(kind, frame))
	}
	w := kind.Bytes()
	l := normalize(kind, frame[:w])
	r := normalize(kind, frame[w:2*w])
	return scaleClamp((l + r) / 2)
}

// normalize maps one sample to the nominal [-1, 1] range. Integer input is
// divided by 32768; float input is used as-is (it may exceed the range,
// scaleClamp saturates it later).
func normalize(kind SampleKind, sample []byte) float64 {
	switch kind {
	case KindS16:
		return float64(int16(binary.LittleEndian.Uint16(sample))) / 32768.0
	case KindF32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(sample)))
	case KindF64:
		return math.Float64frombits(binary.LittleEndian.Uint64(sample))
	}
	return 0
}

func scaleClamp(v float64) int16 {
	s := math.Round(v * pcmMax)
	if s > pcmMax {
		return pcmMax
	}
	if s < pcmMin {
		return pcmMin
	}
	return int16(s)
}

// ConvertBuffer converts every whole frame in src, writing little-endian
// PCM bytes into dst, and returns the number of bytes written. dst must
// hold at least two bytes per frame; a trailing partial frame is ignored.
func ConvertBuffer(cfg StreamConfig, src, dst []byte) int {
	fb := cfg.FrameBytes()
	if fb == 0 {
		return 0
	}
	n := 0
	for off := 0; off+fb <= len(src); off += fb {
		s := ConvertFrame(cfg.Kind, cfg.Channels, src[off:off+fb])
		binary.LittleEndian.PutUint16(dst[n:], uint16(s))
		n += 2
	}
	return n
}
