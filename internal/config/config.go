// Package config provides configuration management for the StoryCrafter Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort     = 8790
	DefaultLogLevel = "info"
	DefaultDataDir  = ".storycrafter"

	// Environment variable names
	EnvPort     = "STORYCRAFTER_PORT"
	EnvLogLevel = "STORYCRAFTER_LOG_LEVEL"
	EnvDataDir  = "STORYCRAFTER_DATA_DIR"
	EnvHeadless = "STORYCRAFTER_HEADLESS"

	// Model environment variable names
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGeminiBaseURL  = "STORYCRAFTER_GEMINI_BASE_URL"
	EnvGeminiModel    = "STORYCRAFTER_GEMINI_MODEL"
	EnvGeminiTimeoutS = "STORYCRAFTER_GEMINI_TIMEOUT_S"

	// Database filename
	DBFilename = "storycrafter.db"

	// Model defaults
	DefaultGeminiBaseURL  = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultGeminiTimeoutS = 180
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	Headless() bool
	GeminiAPIKey() string
	GeminiBaseURL() string
	GeminiModel() string
	GeminiTimeout() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string
	headless bool

	geminiAPIKey   string
	geminiBaseURL  string
	geminiModel    string
	geminiTimeoutS int
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:           DefaultPort,
		logLevel:       DefaultLogLevel,
		dataDir:        defaultDataDir(),
		geminiBaseURL:  DefaultGeminiBaseURL,
		geminiModel:    DefaultGeminiModel,
		geminiTimeoutS: DefaultGeminiTimeoutS,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	cfg.geminiAPIKey = os.Getenv(EnvGeminiAPIKey)

	if bu := os.Getenv(EnvGeminiBaseURL); bu != "" {
		cfg.geminiBaseURL = bu
	}

	if m := os.Getenv(EnvGeminiModel); m != "" {
		cfg.geminiModel = m
	}

	if ts := os.Getenv(EnvGeminiTimeoutS); ts != "" {
		timeout, err := strconv.Atoi(ts)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvGeminiTimeoutS, err)
		}
		if timeout < 1 {
			return nil, fmt.Errorf("invalid %s: timeout must be positive", EnvGeminiTimeoutS)
		}
		cfg.geminiTimeoutS = timeout
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// Headless reports whether the system tray should be disabled
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// GeminiAPIKey returns the API key for the generative model
func (c *EnvConfig) GeminiAPIKey() string {
	return c.geminiAPIKey
}

// GeminiBaseURL returns the base URL of the generative model API
func (c *EnvConfig) GeminiBaseURL() string {
	return c.geminiBaseURL
}

// GeminiModel returns the model identifier used for all generation calls
func (c *EnvConfig) GeminiModel() string {
	return c.geminiModel
}

// GeminiTimeout returns the per-call HTTP timeout for generation requests
func (c *EnvConfig) GeminiTimeout() time.Duration {
	return time.Duration(c.geminiTimeoutS) * time.Second
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
