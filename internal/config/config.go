// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrGeminiAPIKeyRequired is returned when GEMINI_API_KEY is not set.
	ErrGeminiAPIKeyRequired = errors.New("config: GEMINI_API_KEY is required")
)

// Config holds all configuration for the daemon.
type Config struct {
	// Document generator settings
	GeminiAPIKey string `env:"GEMINI_API_KEY, required" json:"-"` // Masked in JSON
	GeminiModel  string `env:"GEMINI_MODEL, default=gemini-1.5-flash-latest" json:"gemini_model"`

	// Transcription service settings
	TranscriberURL    string `env:"TRANSCRIBER_URL, default=http://localhost:9000" json:"transcriber_url" validate:"url"`
	TranscriberAPIKey string `env:"TRANSCRIBER_API_KEY" json:"-"` // Masked in JSON

	// Google Drive source settings
	DriveCredentialsFile string `env:"DRIVE_CREDENTIALS_FILE" json:"drive_credentials_file,omitempty"`
	DriveFolderID        string `env:"DRIVE_FOLDER_ID" json:"drive_folder_id,omitempty"`

	// Optional S3 source settings (used instead of Drive when set)
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	S3Prefix           string `env:"S3_PREFIX" json:"s3_prefix,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Local artifact and metadata storage
	DataDir string `env:"DATA_DIR, default=./data" json:"data_dir"`
	DBPath  string `env:"DB_PATH" json:"db_path,omitempty"`

	// Polling settings
	PollInterval  time.Duration `env:"POLL_INTERVAL, default=60s" json:"poll_interval" validate:"min=1s"`
	ErrorCooldown time.Duration `env:"ERROR_COOLDOWN, default=10s" json:"error_cooldown" validate:"min=100ms"`
	SettleDelay   time.Duration `env:"SETTLE_DELAY, default=2s" json:"settle_delay" validate:"min=0"`

	// External tool paths (found via PATH when empty)
	FFmpegPath      string `env:"FFMPEG_PATH" json:"ffmpeg_path,omitempty"`
	WKHTMLToPDFPath string `env:"WKHTMLTOPDF_PATH" json:"wkhtmltopdf_path,omitempty"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format" validate:"oneof=text json"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`                              // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 source configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// DownloadDir returns the directory for downloaded video artifacts.
func (c *Config) DownloadDir() string {
	return filepath.Join(c.DataDir, "downloads")
}

// AudioDir returns the directory for extracted audio artifacts.
func (c *Config) AudioDir() string {
	return filepath.Join(c.DataDir, "audios")
}

// DocumentDir returns the directory for generated HTML and PDF documents.
func (c *Config) DocumentDir() string {
	return filepath.Join(c.DataDir, "generated_documents")
}

// DatabasePath returns the metadata database path, defaulting to a file
// inside DataDir when DB_PATH is not set.
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "drivescribe.db")
}

// Load reads configuration from environment variables using go-envconfig
// and validates it. It returns an error if required variables are not set
// or values are out of range.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "GEMINI_API_KEY") {
			return nil, ErrGeminiAPIKeyRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and in range.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrGeminiAPIKeyRequired
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{GeminiModel: %s, TranscriberURL: %s, DriveFolderID: %s, S3Bucket: %s, DataDir: %s, PollInterval: %s, ErrorCooldown: %s, LogFormat: %s, LogLevel: %s}",
		c.GeminiModel,
		c.TranscriberURL,
		c.DriveFolderID,
		c.S3Bucket,
		c.DataDir,
		c.PollInterval,
		c.ErrorCooldown,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
