// Package media provides audio extraction from video files.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoAudioStream is returned when the input video has no audio track.
var ErrNoAudioStream = errors.New("media: no audio stream in input")

// Extractor extracts the audio track of a video file.
type Extractor interface {
	// ExtractAudio decodes the audio track of videoPath and writes it
	// to audioPath as 16 kHz mono PCM WAV.
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
}

// FFmpegExtractor implements Extractor using the ffmpeg CLI.
type FFmpegExtractor struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

// NewFFmpegExtractor creates a new FFmpegExtractor.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegExtractor(ffmpegPath string) *FFmpegExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegExtractor{ffmpegPath: ffmpegPath}
}

// ExtractAudio extracts the audio track to a WAV file suitable for
// speech recognition (16 kHz, mono, signed 16-bit PCM).
func (e *FFmpegExtractor) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	args := extractArgs(videoPath, audioPath)

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		if isNoAudioStream(stderr.String()) {
			return ErrNoAudioStream
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// extractArgs builds the ffmpeg argument list for audio extraction.
func extractArgs(videoPath, audioPath string) []string {
	return []string{
		"-y",            // Overwrite output file without asking
		"-i", videoPath, // Input file
		"-vn",                 // Drop the video stream
		"-acodec", "pcm_s16le", // Signed 16-bit PCM
		"-ar", "16000", // 16 kHz sample rate
		"-ac", "1", // Mono
		audioPath, // Output file
	}
}

// isNoAudioStream reports whether ffmpeg stderr indicates the input has
// no audio track.
func isNoAudioStream(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "does not contain any stream") ||
		strings.Contains(lower, "output file does not contain any stream") ||
		strings.Contains(lower, "stream map 'a' matches no streams")
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
