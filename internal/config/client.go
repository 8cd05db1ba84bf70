package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ClientConfig holds the terminal client's settings.
type ClientConfig struct {
	APIBaseURL string
	SessionDir string
	SessionTTL time.Duration
	LogLevel   slog.Level
}

// LoadClient reads .env (optional) and the environment, then lets args
// override them. args excludes the program name.
func LoadClient(args []string) (*ClientConfig, error) {
	_ = godotenv.Load()

	defaultTTL, err := getEnvAsDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	apiBaseURL := fs.String("api", getEnv("API_BASE_URL", "http://localhost:8080/api"), "backend base URL")
	sessionDir := fs.String("session-dir", getEnv("SESSION_DIR", defaultSessionDir()), "directory holding the saved session")
	sessionTTL := fs.Duration("session-ttl", defaultTTL, "how long a saved session stays valid")
	logLevel := fs.String("log-level", getEnv("CLIENT_LOG_LEVEL", "info"), "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := &ClientConfig{
		APIBaseURL: strings.TrimRight(strings.TrimSpace(*apiBaseURL), "/"),
		SessionDir: *sessionDir,
		SessionTTL: *sessionTTL,
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API base URL must not be empty")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", *logLevel, err)
	}

	return cfg, nil
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".workplace-booking"
	}
	return filepath.Join(home, ".workplace-booking")
}
