// Package snapshot provides the CSV snapshot sources used by ingestion: an
// S3-compatible bucket and a local directory.
package snapshot

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/JonMunkholm/marvel-explorer/internal/config"
	"github.com/JonMunkholm/marvel-explorer/internal/core"
)

// DefaultEndpoint is used for s3:// URLs that carry no endpoint.
const DefaultEndpoint = "s3.amazonaws.com"

// Location is a bucket address split into its parts.
type Location struct {
	Endpoint string // host[:port], no scheme
	Bucket   string
	Prefix   string
	UseSSL   bool
}

// Key returns the object key of a table's snapshot: <prefix>/<table>.csv.
func Key(prefix, table string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return table + ".csv"
	}
	return path.Join(prefix, table+".csv")
}

// ParseBucketURL splits a bucket URL into a Location.
//
// Virtual-hosted URLs name the bucket in the first host label:
// https://cloud-cube-us2.s3.amazonaws.com/abc123 is bucket cloud-cube-us2 on
// s3.amazonaws.com with prefix abc123. s3://bucket/prefix uses DefaultEndpoint.
func ParseBucketURL(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse bucket url: %w", err)
	}
	if u.Host == "" {
		return Location{}, fmt.Errorf("parse bucket url %q: missing host", raw)
	}

	prefix := strings.Trim(u.Path, "/")

	switch strings.ToLower(u.Scheme) {
	case "s3":
		return Location{Endpoint: DefaultEndpoint, Bucket: u.Host, Prefix: prefix, UseSSL: true}, nil
	case "http", "https":
		bucket, endpoint, ok := strings.Cut(u.Host, ".")
		if !ok || bucket == "" || endpoint == "" {
			return Location{}, fmt.Errorf("parse bucket url %q: host does not name a bucket", raw)
		}
		return Location{
			Endpoint: endpoint,
			Bucket:   bucket,
			Prefix:   prefix,
			UseSSL:   strings.EqualFold(u.Scheme, "https"),
		}, nil
	default:
		return Location{}, fmt.Errorf("parse bucket url %q: unsupported scheme %q", raw, u.Scheme)
	}
}

// splitEndpoint strips an optional scheme from endpoint. A scheme overrides useSSL.
func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
	default:
		return endpoint, useSSL
	}
}

// FromConfig builds the source described by cfg. SNAPSHOT_DIR wins over a
// bucket; explicit endpoint, bucket and prefix override the URL's parts.
func FromConfig(cfg config.SnapshotConfig) (core.SnapshotSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Local() {
		return NewDirSource(cfg.Dir, cfg.Prefix), nil
	}

	loc := Location{UseSSL: cfg.UseSSL}
	if cfg.URL != "" {
		parsed, err := ParseBucketURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		loc = parsed
	}
	if cfg.Endpoint != "" {
		loc.Endpoint, loc.UseSSL = splitEndpoint(cfg.Endpoint, cfg.UseSSL)
	}
	if cfg.Bucket != "" {
		loc.Bucket = cfg.Bucket
	}
	if cfg.Prefix != "" {
		loc.Prefix = strings.Trim(cfg.Prefix, "/")
	}

	return NewS3Source(S3Config{
		Location:        loc,
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	})
}
