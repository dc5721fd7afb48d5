package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLayout_PathDerivation(t *testing.T) {
	layout := Layout{
		DownloadDir: "/data/downloads",
		AudioDir:    "/data/audios",
		DocumentDir: "/data/generated_documents",
	}

	tests := []struct {
		name      string
		wantVideo string
		wantAudio string
		wantHTML  string
		wantPDF   string
	}{
		{
			name:      "meeting.mp4",
			wantVideo: "/data/downloads/meeting.mp4",
			wantAudio: "/data/audios/meeting.wav",
			wantHTML:  "/data/generated_documents/meeting_generated.html",
			wantPDF:   "/data/generated_documents/meeting_analysis.pdf",
		},
		{
			name:      "Q3 Review: Final.mov",
			wantVideo: "/data/downloads/Q3 Review_ Final.mov",
			wantAudio: "/data/audios/Q3 Review_ Final.wav",
			wantHTML:  "/data/generated_documents/Q3 Review_ Final_generated.html",
			wantPDF:   "/data/generated_documents/Q3 Review_ Final_analysis.pdf",
		},
		{
			name:      "no-extension",
			wantVideo: "/data/downloads/no-extension",
			wantAudio: "/data/audios/no-extension.wav",
			wantHTML:  "/data/generated_documents/no-extension_generated.html",
			wantPDF:   "/data/generated_documents/no-extension_analysis.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := layout.VideoPath(tt.name); got != tt.wantVideo {
				t.Errorf("VideoPath = %q, want %q", got, tt.wantVideo)
			}
			if got := layout.AudioPath(tt.name); got != tt.wantAudio {
				t.Errorf("AudioPath = %q, want %q", got, tt.wantAudio)
			}
			if got := layout.HTMLPath(tt.name); got != tt.wantHTML {
				t.Errorf("HTMLPath = %q, want %q", got, tt.wantHTML)
			}
			if got := layout.PDFPath(tt.name); got != tt.wantPDF {
				t.Errorf("PDFPath = %q, want %q", got, tt.wantPDF)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"meeting.mp4", "meeting.mp4"},
		{"a/b\\c.mp4", "a_b_c.mp4"},
		{"video*?<>|.mp4", "video_____.mp4"},
		{"  trimmed.mp4  ", "trimmed.mp4"},
		{"...", "unnamed"},
		{"", "unnamed"},
		{"tab\tname.mp4", "tab_name.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitizeName(tt.in); got != tt.want {
				t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLayout_EnsureDirs(t *testing.T) {
	dir := t.TempDir()
	layout := Layout{
		DownloadDir: filepath.Join(dir, "downloads"),
		AudioDir:    filepath.Join(dir, "audios"),
		DocumentDir: filepath.Join(dir, "docs"),
	}

	if err := layout.EnsureDirs(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range []string{layout.DownloadDir, layout.AudioDir, layout.DocumentDir} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", d)
		}
	}

	// Second call is a no-op.
	if err := layout.EnsureDirs(); err != nil {
		t.Fatalf("repeat call: %v", err)
	}
}

func TestFileNonEmpty(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing")
	if fileNonEmpty(missing) {
		t.Error("missing file reported non-empty")
	}

	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if fileNonEmpty(empty) {
		t.Error("empty file reported non-empty")
	}

	full := filepath.Join(dir, "full")
	if err := os.WriteFile(full, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if !fileNonEmpty(full) {
		t.Error("non-empty file reported empty")
	}

	if fileNonEmpty(dir) {
		t.Error("directory reported as non-empty file")
	}
}
