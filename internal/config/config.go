package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	ListenAddr  string
	TempDir     string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3UseSSL    bool

	URLExpiry      time.Duration
	PreviewFormat  string
	PreviewQuality int
	PreviewMaxSize int
	ImportWorkers  int
	MaxUploadBytes int64
	CORSOrigins    []string

	LogLevel  slog.Level
	LogFormat string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honoured when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("S3_ENDPOINT is required")
	}
	cfg.S3AccessKey = os.Getenv("S3_ACCESS_KEY")
	if cfg.S3AccessKey == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY is required")
	}
	cfg.S3SecretKey = os.Getenv("S3_SECRET_KEY")
	if cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("S3_SECRET_KEY is required")
	}
	cfg.S3Bucket = getEnvDefault("S3_BUCKET", "photo-gallery")
	cfg.S3Region = getEnvDefault("S3_REGION", "us-east-1")
	if cfg.S3UseSSL, err = getEnvBool("S3_USE_SSL", false); err != nil {
		return nil, fmt.Errorf("S3_USE_SSL: %w", err)
	}

	cfg.ListenAddr = getEnvDefault("LISTEN_ADDR", ":8080")

	tempDir := getEnvDefault("TEMP_DIR", filepath.Join(os.TempDir(), "photogallery"))
	if cfg.TempDir, err = filepath.Abs(tempDir); err != nil {
		return nil, fmt.Errorf("TEMP_DIR: %w", err)
	}

	if cfg.URLExpiry, err = getEnvDuration("URL_EXPIRY", time.Hour); err != nil {
		return nil, fmt.Errorf("URL_EXPIRY: %w", err)
	}
	if cfg.URLExpiry <= 0 || cfg.URLExpiry > 7*24*time.Hour {
		return nil, fmt.Errorf("URL_EXPIRY: must be between 1s and 168h, got %s", cfg.URLExpiry)
	}

	cfg.PreviewFormat = strings.ToLower(getEnvDefault("PREVIEW_FORMAT", "webp"))
	if cfg.PreviewFormat != "webp" && cfg.PreviewFormat != "jpeg" {
		return nil, fmt.Errorf("PREVIEW_FORMAT: unsupported format %q, expected webp or jpeg", cfg.PreviewFormat)
	}
	if cfg.PreviewQuality, err = getEnvInt("PREVIEW_QUALITY", 80); err != nil {
		return nil, fmt.Errorf("PREVIEW_QUALITY: %w", err)
	}
	if cfg.PreviewQuality < 1 || cfg.PreviewQuality > 100 {
		return nil, fmt.Errorf("PREVIEW_QUALITY: must be in 1..100, got %d", cfg.PreviewQuality)
	}
	if cfg.PreviewMaxSize, err = getEnvInt("PREVIEW_MAX_SIZE", 0); err != nil {
		return nil, fmt.Errorf("PREVIEW_MAX_SIZE: %w", err)
	}
	if cfg.PreviewMaxSize < 0 {
		return nil, fmt.Errorf("PREVIEW_MAX_SIZE: must not be negative")
	}

	if cfg.ImportWorkers, err = getEnvInt("IMPORT_WORKERS", 8); err != nil {
		return nil, fmt.Errorf("IMPORT_WORKERS: %w", err)
	}
	if cfg.ImportWorkers < 1 {
		return nil, fmt.Errorf("IMPORT_WORKERS: must be at least 1")
	}

	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", 64<<20)
	if err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	for _, origin := range strings.Split(getEnvDefault("CORS_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if cfg.LogLevel, err = parseLogLevel(getEnvDefault("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogFormat = getEnvDefault("LOG_FORMAT", "text")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT: unsupported format %q, expected json or text", cfg.LogFormat)
	}

	return cfg, nil
}

// IsPostgres reports whether DatabaseURL points at PostgreSQL rather than a
// SQLite file.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// SetupLogger installs the process-wide slog logger.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", v)
	}
	return b, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
}
