package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout derives deterministic local artifact paths from an item name.
// Names from the source are not filesystem-safe and are sanitized first.
type Layout struct {
	// DownloadDir holds fetched video files.
	DownloadDir string
	// AudioDir holds extracted audio files.
	AudioDir string
	// DocumentDir holds generated HTML and PDF documents.
	DocumentDir string
}

// EnsureDirs creates the artifact directories if they do not exist.
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{l.DownloadDir, l.AudioDir, l.DocumentDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create artifact directory %s: %w", dir, err)
		}
	}
	return nil
}

// VideoPath returns the local path for the downloaded video.
func (l Layout) VideoPath(name string) string {
	return filepath.Join(l.DownloadDir, sanitizeName(name))
}

// AudioPath returns the local path for the extracted audio, with the
// extension normalized to .wav.
func (l Layout) AudioPath(name string) string {
	return filepath.Join(l.AudioDir, baseName(name)+".wav")
}

// HTMLPath returns the local path for the generated HTML document.
func (l Layout) HTMLPath(name string) string {
	return filepath.Join(l.DocumentDir, baseName(name)+"_generated.html")
}

// PDFPath returns the local path for the rendered PDF document.
func (l Layout) PDFPath(name string) string {
	return filepath.Join(l.DocumentDir, baseName(name)+"_analysis.pdf")
}

// baseName returns the sanitized item name without its extension.
func baseName(name string) string {
	s := sanitizeName(name)
	return strings.TrimSuffix(s, filepath.Ext(s))
}

// sanitizeName makes a display name safe to use as a file name.
// Path separators and control characters are replaced, and a fallback
// is used when nothing printable remains.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteRune('_')
		case r < 0x20:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	s := strings.TrimSpace(b.String())
	s = strings.Trim(s, ".")
	if s == "" {
		return "unnamed"
	}
	return s
}

// fileNonEmpty reports whether path exists as a regular file with a
// non-zero size.
func fileNonEmpty(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}
