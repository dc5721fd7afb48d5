// Package render converts generated HTML documents to PDF files.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrHTMLRequired is returned when no HTML content is provided.
var ErrHTMLRequired = errors.New("render: HTML content is required")

// Renderer converts an HTML document to a PDF file.
// Rendering is environment-dependent and may be unavailable; callers
// treat failure as non-fatal and keep the HTML artifact.
type Renderer interface {
	// Render writes htmlContent to outputPath as a PDF.
	Render(ctx context.Context, htmlContent, outputPath string) error

	// Available reports whether the rendering backend can run.
	Available() bool
}

// Compile-time check that WKHTMLToPDF implements Renderer.
var _ Renderer = (*WKHTMLToPDF)(nil)

// WKHTMLToPDF implements Renderer using the wkhtmltopdf CLI.
type WKHTMLToPDF struct {
	// binPath is the path to the wkhtmltopdf binary. Defaults to "wkhtmltopdf".
	binPath string
}

// NewWKHTMLToPDF creates a new WKHTMLToPDF renderer.
// If binPath is empty, it defaults to "wkhtmltopdf" (found via PATH).
func NewWKHTMLToPDF(binPath string) *WKHTMLToPDF {
	if binPath == "" {
		binPath = "wkhtmltopdf"
	}
	return &WKHTMLToPDF{binPath: binPath}
}

// Available reports whether the wkhtmltopdf binary can be found.
func (r *WKHTMLToPDF) Available() bool {
	_, err := exec.LookPath(r.binPath)
	return err == nil
}

// renderArgs is the fixed option set for PDF output: A4 paper, 0.75in
// margins, UTF-8, and local file access for inline assets.
func renderArgs(outputPath string) []string {
	return []string{
		"--page-size", "A4",
		"--margin-top", "0.75in",
		"--margin-right", "0.75in",
		"--margin-bottom", "0.75in",
		"--margin-left", "0.75in",
		"--encoding", "UTF-8",
		"--no-outline",
		"--enable-local-file-access",
		"-", // Read HTML from stdin
		outputPath,
	}
}

// Render pipes the HTML into wkhtmltopdf and writes the PDF to outputPath.
func (r *WKHTMLToPDF) Render(ctx context.Context, htmlContent, outputPath string) error {
	if strings.TrimSpace(htmlContent) == "" {
		return ErrHTMLRequired
	}

	// #nosec G204 - binPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, r.binPath, renderArgs(outputPath)...)
	cmd.Stdin = strings.NewReader(htmlContent)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("render cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("render: wkhtmltopdf: %w, stderr: %s", err, stderr.String())
	}

	return nil
}
