// Package transcribe provides speech-to-text for extracted audio files.
package transcribe

import (
	"context"
	"errors"
)

// Static errors for transcription.
var (
	// ErrAudioPathRequired is returned when no audio path is provided.
	ErrAudioPathRequired = errors.New("transcribe: audio path is required")
	// ErrEmptyTranscript is returned when the service produced no usable text.
	ErrEmptyTranscript = errors.New("transcribe: empty transcript")
)

// Transcriber converts a local audio file to text.
type Transcriber interface {
	// Transcribe reads the audio file and returns the recognized text.
	// An empty or whitespace-only result is an error.
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
