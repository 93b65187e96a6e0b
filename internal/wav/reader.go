package wav

import (
	"fmt"
	"os"

	gowav "github.com/go-audio/wav"
)

// ReadMonoFloat32 decodes a mono PCM WAV file into float32 samples
// normalized to [-1, 1] and returns them with the file's sample rate.
// Multi-channel files are rejected; the capture side only ever produces
// mono, and transcription expects mono input.
func ReadMonoFloat32(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	dec := gowav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid wav file: %s", path)
	}
	if dec.NumChans != 1 {
		return nil, 0, fmt.Errorf("expected mono audio, got %d channels", dec.NumChans)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode wav file: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	div := float32(int(1) << (bitDepth - 1))

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / div
	}

	return samples, int(dec.SampleRate), nil
}
