package wav

import (
	"encoding/binary"
	"fmt"
	"os"
)

// HeaderSize is the fixed size of the RIFF/fmt/data preamble. Sample data
// starts at this offset.
const HeaderSize = 44

const (
	riffSizeOffset = 4
	dataSizeOffset = 40
)

// Writer streams 16-bit mono PCM into a WAV file. The header goes out up
// front with zeroed size fields; Finalize patches the real sizes in once
// the data length is known and closes the file.
type Writer struct {
	f          *os.File
	path       string
	sampleRate int
	closed     bool
}

// NewWriter creates (or truncates) path and writes the 44-byte header for
// a mono 16-bit PCM stream at sampleRate, leaving the cursor at the start
// of the data chunk.
func NewWriter(path string, sampleRate int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create wav file: %w", err)
	}

	w := &Writer{f: f, path: path, sampleRate: sampleRate}
	if err := w.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// Path returns the file path the writer was created with.
func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) writeHeader() error {
	hdr := struct {
		RiffID        [4]byte
		RiffSize      uint32
		WaveID        [4]byte
		FmtID         [4]byte
		FmtSize       uint32
		AudioFormat   uint16
		NumChannels   uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		DataID        [4]byte
		DataSize      uint32
	}{
		RiffID:        [4]byte{'R', 'I', 'F', 'F'},
		RiffSize:      0, // patched by Finalize
		WaveID:        [4]byte{'W', 'A', 'V', 'E'},
		FmtID:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1, // PCM
		NumChannels:   1,
		SampleRate:    uint32(w.sampleRate),
		ByteRate:      uint32(w.sampleRate) * 2,
		BlockAlign:    2,
		BitsPerSample: 16,
		DataID:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:      0, // patched by Finalize
	}

	if err := binary.Write(w.f, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("failed to write wav header: %w", err)
	}
	return nil
}

// Append writes raw PCM bytes at the current end of the file. The caller
// serializes Append against Finalize; the writer itself does not lock.
func (w *Writer) Append(p []byte) error {
	if w.closed {
		return fmt.Errorf("wav file already finalized")
	}
	if _, err := w.f.Write(p); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// Finalize patches the RIFF and data chunk sizes from the final file
// length, flushes and closes the file. The writer is unusable afterwards.
func (w *Writer) Finalize() error {
	if w.closed {
		return fmt.Errorf("wav file already finalized")
	}
	w.closed = true

	info, err := w.f.Stat()
	if err != nil {
		w.f.Close()
		return fmt.Errorf("failed to stat wav file: %w", err)
	}
	size := info.Size()

	if err := w.patchSize(riffSizeOffset, uint32(size-8)); err != nil {
		w.f.Close()
		return err
	}
	if err := w.patchSize(dataSizeOffset, uint32(size-HeaderSize)); err != nil {
		w.f.Close()
		return err
	}

	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fmt.Errorf("failed to sync wav file: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("failed to close wav file: %w", err)
	}
	return nil
}

func (w *Writer) patchSize(offset int64, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	if _, err := w.f.WriteAt(buf[:], offset); err != nil {
		return fmt.Errorf("failed to patch wav header: %w", err)
	}
	return nil
}
