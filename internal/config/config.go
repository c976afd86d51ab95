// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// Nested structs add their tag as an env prefix and split field names into
// words, so Server.ReadTimeout is SERVER_READ_TIMEOUT. Bare names like URL or
// PORT are never read by envconfig; PORT is handled in applyFallbacks.
type Config struct {
	Server   ServerConfig    `envconfig:"SERVER"`
	Database DatabaseConfig  `envconfig:"DATABASE"`
	Snapshot SnapshotConfig  `envconfig:"SNAPSHOT"`
	Ingest   IngestConfig    `envconfig:"INGEST"`
	Rate     RateLimitConfig `envconfig:"RATE_LIMIT"`
	CORS     CORSConfig      `envconfig:"CORS"`
	Logging  LoggingConfig   `envconfig:"LOG"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `split_words:"true" default:"0.0.0.0"`

	// Port is the port to listen on. SERVER_PORT, then PORT (default: 8080)
	Port int `split_words:"true" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `split_words:"true" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `split_words:"true" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `split_words:"true" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `split_words:"true" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `split_words:"true" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the database connection string (required).
	// postgres://, postgresql:// and sqlite:///path are accepted.
	URL string `split_words:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `split_words:"true" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `split_words:"true" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `split_words:"true" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `split_words:"true" default:"30m"`
}

// SnapshotConfig locates the CSV snapshots consumed by ingestion.
// Either Dir (local files) or a bucket (URL, or Endpoint + Bucket) must be set.
type SnapshotConfig struct {
	// URL is a bucket URL such as https://bucket.s3.amazonaws.com/prefix.
	// Falls back to CLOUDCUBE_URL.
	URL string `split_words:"true"`

	// Endpoint is the S3-compatible endpoint host[:port]; overrides URL.
	Endpoint string `split_words:"true"`

	// Bucket overrides the bucket derived from URL.
	Bucket string `split_words:"true"`

	// Prefix overrides the key prefix derived from URL.
	Prefix string `split_words:"true"`

	// Region is passed to the S3 client when set.
	Region string `split_words:"true"`

	// UseSSL selects https for the endpoint (default: true)
	UseSSL bool `split_words:"true" default:"true"`

	// AccessKeyID falls back to CLOUDCUBE_ACCESS_KEY_ID.
	AccessKeyID string `split_words:"true"`

	// SecretAccessKey falls back to CLOUDCUBE_SECRET_ACCESS_KEY.
	SecretAccessKey string `split_words:"true"`

	// Dir reads snapshots from a local directory instead of a bucket.
	Dir string `split_words:"true"`
}

// IngestConfig holds ingestion settings.
type IngestConfig struct {
	// BatchSize is the number of staged rows per INSERT statement (default: 500)
	BatchSize int `split_words:"true" default:"500"`

	// OnStart runs one ingestion when the server starts (default: false)
	OnStart bool `split_words:"true" default:"false"`

	// Interval runs ingestion periodically while serving; 0 disables (default: 0)
	Interval time.Duration `split_words:"true" default:"0s"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `split_words:"true" default:"true"`

	// RequestsPerMinute is the limit per client IP (default: 100)
	RequestsPerMinute int `split_words:"true" default:"100"`
}

// CORSConfig holds cross-origin settings for the presentation layer.
type CORSConfig struct {
	// AllowedOrigins is a comma-separated list; empty disables CORS headers.
	AllowedOrigins []string `split_words:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `split_words:"true" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `split_words:"true" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Local reports whether snapshots are read from a local directory.
func (c *SnapshotConfig) Local() bool {
	return c.Dir != ""
}
