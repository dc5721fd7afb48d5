package render

import (
	"context"
	"errors"
	"testing"
)

func TestRenderArgs(t *testing.T) {
	args := renderArgs("/docs/out.pdf")

	if args[len(args)-1] != "/docs/out.pdf" {
		t.Errorf("expected output path as last arg, got %q", args[len(args)-1])
	}
	if args[len(args)-2] != "-" {
		t.Errorf("expected stdin marker before output path, got %q", args[len(args)-2])
	}

	want := map[string]string{
		"--page-size":     "A4",
		"--margin-top":    "0.75in",
		"--margin-right":  "0.75in",
		"--margin-bottom": "0.75in",
		"--margin-left":   "0.75in",
		"--encoding":      "UTF-8",
	}
	for i := 0; i < len(args)-1; i++ {
		if expected, ok := want[args[i]]; ok {
			if args[i+1] != expected {
				t.Errorf("%s: expected %q, got %q", args[i], expected, args[i+1])
			}
			delete(want, args[i])
		}
	}
	if len(want) != 0 {
		t.Errorf("missing options: %v", want)
	}

	flags := map[string]bool{}
	for _, a := range args {
		flags[a] = true
	}
	if !flags["--no-outline"] || !flags["--enable-local-file-access"] {
		t.Error("expected --no-outline and --enable-local-file-access")
	}
}

func TestRender_EmptyHTML(t *testing.T) {
	r := NewWKHTMLToPDF("wkhtmltopdf")
	err := r.Render(context.Background(), "   \n ", "out.pdf")
	if !errors.Is(err, ErrHTMLRequired) {
		t.Errorf("expected ErrHTMLRequired, got %v", err)
	}
}

func TestRender_MissingBinary(t *testing.T) {
	r := NewWKHTMLToPDF("/nonexistent/wkhtmltopdf")
	err := r.Render(context.Background(), "<html></html>", "out.pdf")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewWKHTMLToPDF("/nonexistent/wkhtmltopdf")
	err := r.Render(ctx, "<html></html>", "out.pdf")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAvailable(t *testing.T) {
	r := NewWKHTMLToPDF("/nonexistent/wkhtmltopdf")
	if r.Available() {
		t.Error("expected Available to be false for a bogus path")
	}
}

func TestNewWKHTMLToPDF_DefaultPath(t *testing.T) {
	r := NewWKHTMLToPDF("")
	if r.binPath != "wkhtmltopdf" {
		t.Errorf("expected default binary name, got %q", r.binPath)
	}
}
