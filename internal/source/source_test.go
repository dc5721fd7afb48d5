package source

import "testing"

func TestIsVideoKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"meetings/standup.mp4", true},
		{"clip.MOV", true},
		{"archive/talk.mkv", true},
		{"old/recording.avi", true},
		{"screencast.webm", true},
		{"phone/video.m4v", true},
		{"notes.txt", false},
		{"audio.wav", false},
		{"video", false},
		{"", false},
		{"backup/talk.mp4.bak", false},
	}

	for _, tt := range tests {
		if got := IsVideoKey(tt.key); got != tt.want {
			t.Errorf("IsVideoKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
