// Package gemini provides a client for the Google generative-language
// API that turns a video transcript into a PDF-ready HTML document.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Static errors for the Gemini client.
var (
	// ErrAPIKeyRequired is returned when no API key is provided.
	ErrAPIKeyRequired = errors.New("gemini: API key is required")
	// ErrTranscriptRequired is returned when the transcript is empty.
	ErrTranscriptRequired = errors.New("gemini: transcript text is required")
	// ErrNoCandidates is returned when the response contains no candidates.
	ErrNoCandidates = errors.New("gemini: no candidates in response")
	// ErrEmptyDocument is returned when the model produced no usable HTML.
	ErrEmptyDocument = errors.New("gemini: empty document in response")
	// ErrRequestFailed is returned when the API responds with a non-2xx status.
	ErrRequestFailed = errors.New("gemini: request failed")
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash-latest"

	// requestTimeout bounds the generateContent call.
	requestTimeout = 90 * time.Second

	maxOutputTokens = 4000
	temperature     = 0.2
)

// Generator produces a structured HTML document from a transcript.
type Generator interface {
	// GenerateDocument returns a complete HTML document built from the
	// transcript of the named video.
	GenerateDocument(ctx context.Context, transcript, videoName string) (string, error)
}

// Compile-time check that Client implements Generator.
var _ Generator = (*Client)(nil)

// Client is the HTTP implementation of Generator backed by the
// generativelanguage generateContent endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Gemini client. The API key must be provided.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &Client{
		apiKey:     apiKey,
		model:      defaultModel,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// generateContent request/response payloads.

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

// GenerateDocument asks the model for a complete, PDF-ready HTML
// document structuring the transcript, then normalizes the output:
// fenced code-block markers are stripped, and a minimal document shell
// is added when the model returned a fragment.
func (c *Client) GenerateDocument(ctx context.Context, transcript, videoName string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrTranscriptRequired
	}

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{{Text: buildPrompt(transcript, videoName)}},
		}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxOutputTokens,
			Temperature:     temperature,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("gemini: unmarshal response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoCandidates
	}

	html := stripCodeFences(result.Candidates[0].Content.Parts[0].Text)
	if strings.TrimSpace(html) == "" {
		return "", ErrEmptyDocument
	}

	return ensureDocumentShell(html, videoName), nil
}

// buildPrompt renders the instruction block sent to the model.
func buildPrompt(transcript, videoName string) string {
	return fmt.Sprintf(`You are an expert at creating professional documents. Create a COMPLETE, professional HTML document from the transcript of this video: %q.

IMPORTANT: Output ONLY clean HTML, with no explanatory text before or after. The HTML must be ready to convert to PDF.

Requirements for the HTML:
1. Complete structure with <!DOCTYPE html>, <head>, and <body>
2. CSS embedded in <style> for a professional design
3. Professional colors (dark blue, gray, white)
4. Clear, readable typography
5. Well-organized sections with headings and subheadings
6. Executive summary at the top
7. Key points highlighted
8. Clear conclusion
9. Clean, responsive design
10. Margins and spacing appropriate for PDF printing

Suggested structure:
- Header with the main title and video information
- Executive summary (colored box)
- Main content sections
- Key points (numbered or bulleted list)
- Conclusion
- Footer with the generation date

Transcript to analyze and structure:
%s

Now generate the complete HTML:`, videoName, transcript)
}

// stripCodeFences removes a surrounding markdown code block, if present.
func stripCodeFences(text string) string {
	if idx := strings.Index(text, "```html"); idx != -1 {
		start := idx + len("```html")
		end := strings.LastIndex(text, "```")
		if end > start {
			return strings.TrimSpace(text[start:end])
		}
		return text
	}
	if start := strings.Index(text, "```"); start != -1 {
		end := strings.Index(text[start+3:], "```")
		if end != -1 {
			return strings.TrimSpace(text[start+3 : start+3+end])
		}
	}
	return text
}

// ensureDocumentShell wraps an HTML fragment in a minimal valid
// document when the model omitted the document root.
func ensureDocumentShell(html, videoName string) string {
	trimmed := strings.TrimSpace(html)
	if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html") {
		return html
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Analysis - %s</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; line-height: 1.6; }
        .header { text-align: center; margin-bottom: 30px; }
        .content { max-width: 800px; margin: 0 auto; }
    </style>
</head>
<body>
    <div class="content">
        %s
    </div>
</body>
</html>`, videoName, html)
}
