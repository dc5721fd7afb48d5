package pipeline

import (
	"errors"
	"fmt"
)

// Stage tags identify which pipeline stage failed.
type Stage string

const (
	// StageFetch covers downloading the video from the item source.
	StageFetch Stage = "fetch_failed"
	// StageExtract covers audio extraction from the local video.
	StageExtract Stage = "extraction_failed"
	// StageTranscribe covers speech-to-text of the extracted audio.
	StageTranscribe Stage = "transcription_failed"
	// StageGenerate covers HTML document generation.
	StageGenerate Stage = "generation_failed"
	// StageRender covers PDF rendering of the generated HTML.
	StageRender Stage = "render_failed"
)

// Static errors for artifact verification.
var (
	// ErrArtifactMissing is returned when an expected local artifact is
	// missing or empty after an operation reported success.
	ErrArtifactMissing = errors.New("pipeline: artifact missing or empty")
	// ErrTranscriptMissing is returned when document generation is
	// attempted without transcript text.
	ErrTranscriptMissing = errors.New("pipeline: transcript text missing")
)

// StageError is the tagged failure of one pipeline stage for one item.
// The poll loop logs and swallows these; they never abort a batch.
type StageError struct {
	Stage  Stage
	ItemID string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: item %s: %v", e.Stage, e.ItemID, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
