package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// configEnvVars lists every variable Load reads, so tests start clean.
var configEnvVars = []string{
	"GEMINI_API_KEY", "GEMINI_MODEL",
	"TRANSCRIBER_URL", "TRANSCRIBER_API_KEY",
	"DRIVE_CREDENTIALS_FILE", "DRIVE_FOLDER_ID",
	"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_PREFIX",
	"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	"DATA_DIR", "DB_PATH",
	"POLL_INTERVAL", "ERROR_COOLDOWN", "SETTLE_DELAY",
	"FFMPEG_PATH", "WKHTMLTOPDF_PATH",
	"LOG_FORMAT", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		if value, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { _ = os.Setenv(key, value) })
			require.NoError(t, os.Unsetenv(key))
		}
	}
}

func TestLoad_RequiresGeminiAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeminiAPIKeyRequired)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.GeminiModel)
	assert.Equal(t, "http://localhost:9000", cfg.TranscriberURL)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 60*time.Second, cfg.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.ErrorCooldown)
	assert.Equal(t, 2*time.Second, cfg.SettleDelay)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.S3Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("TRANSCRIBER_URL", "https://stt.internal:8443")
	t.Setenv("DRIVE_FOLDER_ID", "folder-123")
	t.Setenv("DATA_DIR", "/var/lib/drivescribe")
	t.Setenv("POLL_INTERVAL", "5m")
	t.Setenv("ERROR_COOLDOWN", "30s")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-pro", cfg.GeminiModel)
	assert.Equal(t, "https://stt.internal:8443", cfg.TranscriberURL)
	assert.Equal(t, "folder-123", cfg.DriveFolderID)
	assert.Equal(t, "/var/lib/drivescribe", cfg.DataDir)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.ErrorCooldown)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidTranscriberURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("TRANSCRIBER_URL", "not a url")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TranscriberURL")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogFormat")
}

func TestLoad_PollIntervalTooShort(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("POLL_INTERVAL", "100ms")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PollInterval")
}

func TestConfig_S3Enabled(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.S3Enabled())

	cfg.S3Bucket = "videos"
	assert.False(t, cfg.S3Enabled(), "bucket without region is not enough")

	cfg.S3Region = "eu-west-1"
	assert.True(t, cfg.S3Enabled())
}

func TestConfig_PathHelpers(t *testing.T) {
	cfg := &Config{DataDir: "/srv/drivescribe"}

	assert.Equal(t, filepath.Join("/srv/drivescribe", "downloads"), cfg.DownloadDir())
	assert.Equal(t, filepath.Join("/srv/drivescribe", "audios"), cfg.AudioDir())
	assert.Equal(t, filepath.Join("/srv/drivescribe", "generated_documents"), cfg.DocumentDir())
	assert.Equal(t, filepath.Join("/srv/drivescribe", "drivescribe.db"), cfg.DatabasePath())

	cfg.DBPath = "/mnt/state/videos.db"
	assert.Equal(t, "/mnt/state/videos.db", cfg.DatabasePath())
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	cfg := &Config{
		GeminiAPIKey:       "super-secret",
		TranscriberAPIKey:  "also-secret",
		AWSSecretAccessKey: "aws-secret",
		GeminiModel:        "gemini-1.5-flash-latest",
		DataDir:            "./data",
	}

	s := cfg.String()
	assert.NotContains(t, s, "super-secret")
	assert.NotContains(t, s, "also-secret")
	assert.NotContains(t, s, "aws-secret")
	assert.Contains(t, s, "gemini-1.5-flash-latest")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.input), "input %q", tt.input)
	}
}

func TestConfig_NewLogger(t *testing.T) {
	cfg := &Config{LogFormat: "json", LogLevel: "debug"}
	logger := cfg.NewLogger()
	require.NotNil(t, logger)

	cfg = &Config{LogFormat: "text", LogLevel: "info"}
	logger = cfg.NewLogger()
	require.NotNil(t, logger)
}
