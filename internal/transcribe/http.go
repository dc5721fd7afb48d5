package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Static errors for the HTTP transcription client.
var (
	// ErrBaseURLRequired is returned when the service base URL is not provided.
	ErrBaseURLRequired = errors.New("transcribe: base URL is required")
	// ErrServerError is returned when the service returns a 5xx status code.
	ErrServerError = errors.New("transcribe: server error")
	// ErrRateLimited is returned when the service returns a 429 status code.
	ErrRateLimited = errors.New("transcribe: rate limited")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("transcribe: request failed")
)

// Compile-time check that HTTPTranscriber implements Transcriber.
var _ Transcriber = (*HTTPTranscriber)(nil)

// HTTPTranscriber sends audio files to a speech-to-text HTTP service
// and returns the recognized text.
type HTTPTranscriber struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// Option is a function that configures an HTTPTranscriber.
type Option func(*HTTPTranscriber)

// WithAPIKey sets the bearer token for authentication.
func WithAPIKey(key string) Option {
	return func(t *HTTPTranscriber) {
		t.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTranscriber) {
		t.httpClient = c
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) Option {
	return func(t *HTTPTranscriber) {
		t.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) Option {
	return func(t *HTTPTranscriber) {
		t.baseBackoff = d
	}
}

// NewHTTPTranscriber creates a client for a speech-to-text service
// exposing a multipart POST /transcribe endpoint.
func NewHTTPTranscriber(baseURL string, opts ...Option) (*HTTPTranscriber, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	t := &HTTPTranscriber{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 10 * time.Minute},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// transcribeResponse is the service's JSON response payload.
type transcribeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Transcribe uploads the audio file and returns the recognized text.
func (t *HTTPTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if audioPath == "" {
		return "", ErrAudioPathRequired
	}

	var lastErr error
	backoff := t.baseBackoff

	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("transcribe: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}

		text, err := t.transcribeOnce(ctx, audioPath)
		if err == nil {
			return text, nil
		}
		if !isRetryable(err) {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("transcribe: max retries exceeded: %w", lastErr)
}

func (t *HTTPTranscriber) transcribeOnce(ctx context.Context, audioPath string) (string, error) {
	body, contentType, err := multipartFile(audioPath)
	if err != nil {
		return "", err
	}

	url := t.baseURL + "/transcribe"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("transcribe: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", &retryableError{err: fmt.Errorf("transcribe: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &retryableError{err: fmt.Errorf("transcribe: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return "", &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))}
		}
		return "", fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	var result transcribeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("transcribe: unmarshal response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrRequestFailed, result.Error)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

// multipartFile builds a multipart body containing the audio file under
// the "audio" form field.
func multipartFile(audioPath string) (io.Reader, string, error) {
	f, err := os.Open(audioPath) // #nosec G304 - path is derived by trusted internal code
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: open audio: %w", err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("transcribe: copy audio: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("transcribe: close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
