// Package bootstrap provides dependency initialization for the daemon.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"drivescribe/internal/config"
	"drivescribe/internal/gemini"
	"drivescribe/internal/media"
	"drivescribe/internal/pipeline"
	"drivescribe/internal/poller"
	"drivescribe/internal/render"
	"drivescribe/internal/source"
	"drivescribe/internal/store"
	"drivescribe/internal/transcribe"
)

// Dependencies holds all initialized dependencies for the daemon.
type Dependencies struct {
	Store  *store.SQLiteStore
	Poller *poller.Poller
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	layout := pipeline.Layout{
		DownloadDir: cfg.DownloadDir(),
		AudioDir:    cfg.AudioDir(),
		DocumentDir: cfg.DocumentDir(),
	}
	if err := layout.EnsureDirs(); err != nil {
		return nil, err
	}

	src, err := initSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLiteStore(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}

	transcriber, err := transcribe.NewHTTPTranscriber(
		cfg.TranscriberURL,
		transcribe.WithAPIKey(cfg.TranscriberAPIKey),
	)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("create transcriber: %w", err)
	}

	generator, err := gemini.NewClient(cfg.GeminiAPIKey, gemini.WithModel(cfg.GeminiModel))
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("create document generator: %w", err)
	}

	renderer := render.NewWKHTMLToPDF(cfg.WKHTMLToPDFPath)
	if !renderer.Available() {
		logger.Warn("wkhtmltopdf not found; PDF rendering will fail until it is installed")
	}

	orchestrator := pipeline.NewOrchestrator(
		st,
		src,
		media.NewFFmpegExtractor(cfg.FFmpegPath),
		transcriber,
		generator,
		renderer,
		layout,
		logger,
		pipeline.WithSettleDelay(cfg.SettleDelay),
	)

	p := poller.New(src, st, orchestrator, cfg.PollInterval, cfg.ErrorCooldown, logger)

	return &Dependencies{
		Store:  st,
		Poller: p,
	}, nil
}

// initSource creates the item source backend based on configuration.
func initSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (source.Source, error) {
	if cfg.S3Enabled() {
		s3Cfg := source.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Src, err := source.NewS3Source(ctx, s3Cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create S3 source: %w", err)
		}
		logger.Info("S3 source configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Src, nil
	}

	driveSrc, err := source.NewDriveSource(
		ctx,
		cfg.DriveCredentialsFile,
		logger,
		source.WithFolderID(cfg.DriveFolderID),
	)
	if err != nil {
		return nil, fmt.Errorf("create Drive source: %w", err)
	}
	logger.Info("Drive source configured",
		slog.String("folder_id", cfg.DriveFolderID),
	)
	return driveSrc, nil
}
