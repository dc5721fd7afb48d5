// Package pipeline drives each video through the fixed stage sequence:
// download, extract audio, transcribe, generate document. Stage
// completion is persisted per item so every pass is idempotent and a
// restart resumes at the first unmet stage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"drivescribe/internal/gemini"
	"drivescribe/internal/media"
	"drivescribe/internal/render"
	"drivescribe/internal/source"
	"drivescribe/internal/store"
	"drivescribe/internal/transcribe"
)

// Fetcher downloads an item's bytes to a local path.
// source.Source satisfies this.
type Fetcher interface {
	Fetch(ctx context.Context, item source.Item, destPath string) error
}

// Orchestrator walks one item through the stages it has not yet
// completed. Every failure is converted into a tagged StageError for
// that item; no failure aborts sibling items in the same batch.
type Orchestrator struct {
	store       store.Store
	fetcher     Fetcher
	extractor   media.Extractor
	transcriber transcribe.Transcriber
	generator   gemini.Generator
	renderer    render.Renderer
	layout      Layout
	logger      *slog.Logger

	// settleDelay absorbs storage-layer write latency between a fetch
	// reporting success and the size check.
	settleDelay time.Duration
	sleep       func(ctx context.Context, d time.Duration)
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithSettleDelay overrides the post-fetch settle delay.
func WithSettleDelay(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.settleDelay = d
		}
	}
}

// WithSleep overrides the sleep function. Used by tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) OrchestratorOption {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// NewOrchestrator creates an Orchestrator with the given collaborators.
func NewOrchestrator(
	st store.Store,
	fetcher Fetcher,
	extractor media.Extractor,
	transcriber transcribe.Transcriber,
	generator gemini.Generator,
	renderer render.Renderer,
	layout Layout,
	logger *slog.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		store:       st,
		fetcher:     fetcher,
		extractor:   extractor,
		transcriber: transcriber,
		generator:   generator,
		renderer:    renderer,
		layout:      layout,
		logger:      logger,
		settleDelay: 2 * time.Second,
		sleep: func(ctx context.Context, d time.Duration) {
			if d <= 0 {
				return
			}
			select {
			case <-ctx.Done():
			case <-time.After(d):
			}
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Process drives one item forward through exactly the stages not yet
// marked complete, then returns. Stage failures come back as tagged
// StageErrors; the caller logs them and moves on to the next item.
func (o *Orchestrator) Process(ctx context.Context, item source.Item) error {
	rec, err := o.store.Get(ctx, item.ID)
	if errors.Is(err, store.ErrNotFound) {
		// Registration happens before processing; treat a missing
		// record as nothing done for this pass.
		rec = &store.Record{ID: item.ID, Name: item.Name}
	} else if err != nil {
		return fmt.Errorf("resolve record for %s: %w", item.Name, err)
	}

	if rec.DocumentGenerated {
		o.logger.Debug("item already fully processed",
			slog.String("name", item.Name),
		)
		return nil
	}

	videoPath, err := o.runDownload(ctx, item)
	if err != nil {
		return err
	}

	audioPath, err := o.runExtraction(ctx, item, rec, videoPath)
	if err != nil {
		return err
	}

	transcript, err := o.runTranscription(ctx, item, rec, audioPath)
	if err != nil {
		return err
	}

	return o.runGeneration(ctx, item, rec, transcript)
}

// runDownload ensures the local video artifact exists and is non-empty,
// fetching it when needed. Fetch failure aborts the pass with no state
// mutation.
func (o *Orchestrator) runDownload(ctx context.Context, item source.Item) (string, error) {
	videoPath := o.layout.VideoPath(item.Name)
	if fileNonEmpty(videoPath) {
		return videoPath, nil
	}

	o.logger.Info("fetching video",
		slog.String("name", item.Name),
		slog.String("dest", videoPath),
	)
	if err := o.fetcher.Fetch(ctx, item, videoPath); err != nil {
		return "", o.fail(StageFetch, item, err)
	}

	// Give the storage layer a moment before verifying the write.
	o.sleep(ctx, o.settleDelay)

	if !fileNonEmpty(videoPath) {
		return "", o.fail(StageFetch, item, ErrArtifactMissing)
	}
	return videoPath, nil
}

// runExtraction produces the audio artifact unless the stage is already
// complete. On success the downloaded and audio_extracted flags are
// persisted together with the audio path as one atomic update.
func (o *Orchestrator) runExtraction(ctx context.Context, item source.Item, rec *store.Record, videoPath string) (string, error) {
	if rec.AudioExtracted {
		if rec.AudioPath != "" {
			return rec.AudioPath, nil
		}
		return o.layout.AudioPath(item.Name), nil
	}

	audioPath := o.layout.AudioPath(item.Name)
	o.logger.Info("extracting audio",
		slog.String("name", item.Name),
		slog.String("dest", audioPath),
	)

	err := o.extractor.ExtractAudio(ctx, videoPath, audioPath)
	switch {
	case errors.Is(err, media.ErrNoAudioStream):
		// The extractor's own warning; verification below decides the
		// stage outcome.
		o.logger.Warn("no audio track detected",
			slog.String("name", item.Name),
		)
	case err != nil:
		return "", o.fail(StageExtract, item, err)
	}

	if !fileNonEmpty(audioPath) {
		return "", o.fail(StageExtract, item, ErrArtifactMissing)
	}

	if err := o.store.MarkAudioExtracted(ctx, item.ID, audioPath); err != nil {
		return "", fmt.Errorf("persist extraction for %s: %w", item.Name, err)
	}
	rec.Downloaded = true
	rec.AudioExtracted = true
	rec.AudioPath = audioPath

	o.logger.Info("audio extracted",
		slog.String("name", item.Name),
		slog.String("audio", audioPath),
	)
	return audioPath, nil
}

// runTranscription returns the transcript for the item, transcribing
// the audio artifact unless the stage is already complete. A completed
// stage reuses the stored text as-is, even when it is empty: the
// generation stage rejects empty input rather than re-transcribing.
func (o *Orchestrator) runTranscription(ctx context.Context, item source.Item, rec *store.Record, audioPath string) (string, error) {
	if rec.Transcribed {
		o.logger.Info("reusing stored transcript",
			slog.String("name", item.Name),
		)
		return rec.TranscriptionText, nil
	}

	if !fileNonEmpty(audioPath) {
		return "", o.fail(StageTranscribe, item, ErrArtifactMissing)
	}

	o.logger.Info("transcribing audio",
		slog.String("name", item.Name),
	)
	text, err := o.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return "", o.fail(StageTranscribe, item, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", o.fail(StageTranscribe, item, transcribe.ErrEmptyTranscript)
	}

	if err := o.store.MarkTranscribed(ctx, item.ID, text); err != nil {
		return "", fmt.Errorf("persist transcript for %s: %w", item.Name, err)
	}
	rec.Transcribed = true
	rec.TranscriptionText = text

	o.logger.Info("transcription complete",
		slog.String("name", item.Name),
		slog.Int("chars", len(text)),
	)
	return text, nil
}

// runGeneration generates the HTML document and renders it to PDF. The
// stage completes only when rendering succeeded; on render failure the
// HTML artifact is persisted and kept so a later pass retries.
func (o *Orchestrator) runGeneration(ctx context.Context, item source.Item, rec *store.Record, transcript string) error {
	if rec.DocumentGenerated {
		return nil
	}
	if strings.TrimSpace(transcript) == "" {
		return o.fail(StageGenerate, item, ErrTranscriptMissing)
	}

	o.logger.Info("generating document",
		slog.String("name", item.Name),
	)
	html, err := o.generator.GenerateDocument(ctx, transcript, item.Name)
	if err != nil {
		return o.fail(StageGenerate, item, err)
	}

	htmlPath := o.layout.HTMLPath(item.Name)
	if err := os.WriteFile(htmlPath, []byte(html), 0600); err != nil {
		return o.fail(StageGenerate, item, fmt.Errorf("write html: %w", err))
	}

	pdfPath := o.layout.PDFPath(item.Name)
	if err := o.renderer.Render(ctx, html, pdfPath); err != nil {
		// HTML is still useful; keep it and leave the stage incomplete
		// so rendering is retried on the next pass.
		if saveErr := o.store.SaveGeneratedHTML(ctx, item.ID, html, htmlPath); saveErr != nil {
			o.logger.Error("persist generated html",
				slog.String("name", item.Name),
				slog.String("error", saveErr.Error()),
			)
		}
		return o.fail(StageRender, item, err)
	}

	if err := o.store.MarkDocumentGenerated(ctx, item.ID, html, htmlPath, pdfPath); err != nil {
		return fmt.Errorf("persist document for %s: %w", item.Name, err)
	}

	o.logger.Info("document generated",
		slog.String("name", item.Name),
		slog.String("html", htmlPath),
		slog.String("pdf", pdfPath),
	)
	return nil
}

// fail logs a stage failure and wraps it in a tagged StageError.
func (o *Orchestrator) fail(stage Stage, item source.Item, err error) error {
	o.logger.Error("stage failed",
		slog.String("stage", string(stage)),
		slog.String("name", item.Name),
		slog.String("error", err.Error()),
	)
	return &StageError{Stage: stage, ItemID: item.ID, Err: err}
}
