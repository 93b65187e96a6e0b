package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SwartzMss/AudioTransVox/internal/config"
)

// Translator converts plain text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

type httpTranslator struct {
	endpoint   string
	apiKey     string
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	log        zerolog.Logger
}

// New creates a Translator backed by a LibreTranslate-compatible HTTP
// endpoint.
func New(cfg config.TranslateConfig, log zerolog.Logger) Translator {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &httpTranslator{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: timeout},
		maxRetries: 3,
		backoff:    time.Second,
		log:        log,
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate sends text to the endpoint with source language detection left
// to the service. Transport failures and 5xx/429 responses are retried
// with exponential backoff; API-level rejections are not.
func (t *httpTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if t.endpoint == "" {
		return "", fmt.Errorf("no translation endpoint configured")
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("nothing to translate")
	}

	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: "auto",
		Target: targetLang,
		Format: "text",
		APIKey: t.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			wait := t.backoff * time.Duration(1<<uint(attempt-1))
			t.log.Warn().Err(lastErr).Int("attempt", attempt).Dur("backoff", wait).Msg("Retrying translation")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		result, retryable, err := t.doRequest(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return "", fmt.Errorf("translation failed: %w", lastErr)
}

// doRequest performs one POST. The second return value reports whether the
// failure is worth retrying.
func (t *httpTranslator) doRequest(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out translateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", false, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Error != "" {
		return "", false, fmt.Errorf("translation API error: %s", out.Error)
	}

	return out.TranslatedText, false, nil
}
