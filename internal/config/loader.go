package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Platform and legacy variable names read when the prefixed ones are unset.
const (
	envServerPort = "SERVER_PORT"
	envPort       = "PORT"

	envCloudCubeURL       = "CLOUDCUBE_URL"
	envCloudCubeAccessKey = "CLOUDCUBE_ACCESS_KEY_ID"
	envCloudCubeSecretKey = "CLOUDCUBE_SECRET_ACCESS_KEY"
)

// MaxBatchSize bounds INGEST_BATCH_SIZE. The engine lowers it further for
// wide tables so one INSERT stays under PostgreSQL's bind parameter limit.
const MaxBatchSize = 10000

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.applyFallbacks(); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads environment variables from a .env file.
// If path is empty, it loads from ".env" in the current directory.
// A missing file is not an error. Existing variables are not overridden.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func (c *Config) applyFallbacks() error {
	if _, ok := os.LookupEnv(envServerPort); !ok {
		if raw, ok := os.LookupEnv(envPort); ok && raw != "" {
			port, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%s: invalid port %q", envPort, raw)
			}
			c.Server.Port = port
		}
	}

	s := &c.Snapshot
	if s.URL == "" {
		s.URL = os.Getenv(envCloudCubeURL)
	}
	if s.AccessKeyID == "" {
		s.AccessKeyID = os.Getenv(envCloudCubeAccessKey)
	}
	if s.SecretAccessKey == "" {
		s.SecretAccessKey = os.Getenv(envCloudCubeSecretKey)
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DATABASE_MAX_CONNS (%d) must be >= DATABASE_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DATABASE_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DATABASE_MIN_CONNS must be non-negative")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Ingest validation
	if c.Ingest.BatchSize <= 0 || c.Ingest.BatchSize > MaxBatchSize {
		errs = append(errs, fmt.Sprintf("INGEST_BATCH_SIZE (%d) must be 1-%d", c.Ingest.BatchSize, MaxBatchSize))
	}
	if c.Ingest.Interval < 0 {
		errs = append(errs, "INGEST_INTERVAL must be non-negative")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Validate checks that a snapshot source can be built.
// Only commands that ingest call it; serving queries needs no bucket.
func (c *SnapshotConfig) Validate() error {
	if c.Local() {
		return nil
	}

	var errs []string
	if c.URL == "" && (c.Endpoint == "" || c.Bucket == "") {
		errs = append(errs, "SNAPSHOT_URL (or CLOUDCUBE_URL) or SNAPSHOT_ENDPOINT with SNAPSHOT_BUCKET is required, or set SNAPSHOT_DIR")
	}
	if c.AccessKeyID == "" {
		errs = append(errs, "SNAPSHOT_ACCESS_KEY_ID (or CLOUDCUBE_ACCESS_KEY_ID) is required")
	}
	if c.SecretAccessKey == "" {
		errs = append(errs, "SNAPSHOT_SECRET_ACCESS_KEY (or CLOUDCUBE_SECRET_ACCESS_KEY) is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("snapshot validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs and bucket credentials are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
		c.Database.MaxConns, c.Database.MinConns))
	if c.Snapshot.Local() {
		b.WriteString(fmt.Sprintf("Snapshot: {Dir: %q}, ", c.Snapshot.Dir))
	} else {
		b.WriteString(fmt.Sprintf("Snapshot: {Endpoint: %q, Bucket: %q, Prefix: %q, Credentials: [MASKED]}, ",
			c.Snapshot.Endpoint, c.Snapshot.Bucket, c.Snapshot.Prefix))
	}
	b.WriteString(fmt.Sprintf("Ingest: {BatchSize: %d, OnStart: %v, Interval: %s}, ",
		c.Ingest.BatchSize, c.Ingest.OnStart, c.Ingest.Interval))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
