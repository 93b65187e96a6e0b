package whisper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/SwartzMss/AudioTransVox/internal/audio"
	"github.com/SwartzMss/AudioTransVox/internal/config"
	"github.com/SwartzMss/AudioTransVox/internal/wav"
)

// Transcriber interface for speech-to-text over finalized WAV files
type Transcriber interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
	Close() error
}

type whisperTranscriber struct {
	model whisper.Model
	cfg   config.WhisperConfig
	mu    sync.Mutex
}

// New creates a new Whisper transcriber, downloading the model file on
// first use.
func New(cfg config.WhisperConfig) (Transcriber, error) {
	modelPath := filepath.Join(config.ModelsPath(), cfg.Model+".bin")

	// Check if model exists, download if needed
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := downloadModel(cfg.Model, modelPath); err != nil {
			return nil, fmt.Errorf("failed to download model: %w", err)
		}
	}

	// Load model using official bindings
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	return &whisperTranscriber{model: model, cfg: cfg}, nil
}

// TranscribeFile decodes a mono PCM WAV file, resamples it to whisper's
// 16 kHz rate when needed, and returns the recognized text with one
// segment per line.
func (w *whisperTranscriber) TranscribeFile(ctx context.Context, path string) (string, error) {
	samples, rate, err := wav.ReadMonoFloat32(path)
	if err != nil {
		return "", err
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("no audio data in %s", path)
	}

	if rate != whisper.SampleRate {
		samples = audio.Resample(samples, rate, whisper.SampleRate)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model == nil {
		return "", fmt.Errorf("transcriber is closed")
	}

	// Create context
	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create context: %w", err)
	}

	// Set parameters
	if w.cfg.Threads > 0 {
		wctx.SetThreads(uint(w.cfg.Threads))
	}
	if w.cfg.Language != "auto" && w.cfg.Language != "" {
		wctx.SetLanguage(w.cfg.Language)
	}
	wctx.SetTranslate(false)

	// Process the audio
	if err := wctx.Process(samples, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process failed: %w", err)
	}

	// Collect transcription segments
	var sb strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if err != nil {
			break // EOF or error
		}
		sb.WriteString(strings.TrimSpace(segment.Text))
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}

func (w *whisperTranscriber) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model != nil {
		w.model.Close()
		w.model = nil
	}
	return nil
}
