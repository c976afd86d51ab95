package snapshot

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/marvel-explorer/internal/config"
	"github.com/JonMunkholm/marvel-explorer/internal/core"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "Characters.csv", Key("", "Characters"))
	assert.Equal(t, "abc123/Characters.csv", Key("abc123", "Characters"))
	assert.Equal(t, "abc123/public/Comics.csv", Key("/abc123/public/", "Comics"))
}

func TestParseBucketURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Location
		wantErr bool
	}{
		{
			name: "virtual hosted https",
			raw:  "https://cloud-cube-us2.s3.amazonaws.com/abc123",
			want: Location{Endpoint: "s3.amazonaws.com", Bucket: "cloud-cube-us2", Prefix: "abc123", UseSSL: true},
		},
		{
			name: "http with port",
			raw:  "http://snapshots.localhost:9000/marvel/",
			want: Location{Endpoint: "localhost:9000", Bucket: "snapshots", Prefix: "marvel", UseSSL: false},
		},
		{
			name: "no prefix",
			raw:  "https://cube.s3.amazonaws.com",
			want: Location{Endpoint: "s3.amazonaws.com", Bucket: "cube", UseSSL: true},
		},
		{
			name: "s3 scheme",
			raw:  "s3://cube/abc123",
			want: Location{Endpoint: DefaultEndpoint, Bucket: "cube", Prefix: "abc123", UseSSL: true},
		},
		{name: "single label host", raw: "https://localhost/abc", wantErr: true},
		{name: "no host", raw: "/just/a/path", wantErr: true},
		{name: "ftp", raw: "ftp://cube.example.com/x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBucketURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitEndpoint(t *testing.T) {
	host, ssl := splitEndpoint("http://localhost:9000/", true)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, ssl)

	host, ssl = splitEndpoint("https://minio.internal", false)
	assert.Equal(t, "minio.internal", host)
	assert.True(t, ssl)

	host, ssl = splitEndpoint("minio.internal:9000", false)
	assert.Equal(t, "minio.internal:9000", host)
	assert.False(t, ssl)
}

func TestDirSource(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "marvel"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "marvel", "Comics.csv"), []byte("character_id,comic_name\n1,X\n"), 0o600))

	src := NewDirSource(root, "marvel")
	assert.Equal(t, "marvel/Comics.csv", src.Key("Comics"))

	rc, err := src.Open(ctx, src.Key("Comics"))
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "character_id,comic_name\n1,X\n", string(body))

	_, err = src.Open(ctx, src.Key("Stories"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSnapshotNotFound)
	assert.Equal(t, "SNAP001", core.MapError(err).Code)
}

func TestDirSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDirSource(t.TempDir(), "").Open(ctx, "Characters.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromConfig(t *testing.T) {
	src, err := FromConfig(config.SnapshotConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &DirSource{}, src)

	src, err = FromConfig(config.SnapshotConfig{
		URL:             "https://cube.s3.amazonaws.com/abc123",
		AccessKeyID:     "a",
		SecretAccessKey: "s",
	})
	require.NoError(t, err)
	require.IsType(t, &S3Source{}, src)
	s3 := src.(*S3Source)
	assert.Equal(t, "cube", s3.bucket)
	assert.Equal(t, "abc123/Characters.csv", s3.Key("Characters"))

	src, err = FromConfig(config.SnapshotConfig{
		URL:             "https://cube.s3.amazonaws.com/abc123",
		Endpoint:        "http://localhost:9000",
		Bucket:          "local",
		Prefix:          "dev",
		AccessKeyID:     "a",
		SecretAccessKey: "s",
	})
	require.NoError(t, err)
	s3 = src.(*S3Source)
	assert.Equal(t, "local", s3.bucket)
	assert.Equal(t, "dev/Series.csv", s3.Key("Series"))

	_, err = FromConfig(config.SnapshotConfig{})
	assert.Error(t, err)
}

// fakeS3 serves objects from a map and answers S3 XML errors otherwise.
func fakeS3(t *testing.T, objects map[string]string, denied bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		if denied {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
			return
		}
		body, ok := objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = io.WriteString(w, body)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestS3Source(t *testing.T, srv *httptest.Server) *S3Source {
	t.Helper()
	src, err := NewS3Source(S3Config{
		Location:        Location{Endpoint: strings.TrimPrefix(srv.URL, "http://"), Bucket: "cube", Prefix: "abc123"},
		Region:          "us-east-1",
		AccessKeyID:     "access",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	return src
}

func TestS3Source_Open(t *testing.T) {
	srv := fakeS3(t, map[string]string{
		"/cube/abc123/Characters.csv": "character_id,name\n1,Spider-Man\n",
	}, false)
	src := newTestS3Source(t, srv)

	rc, err := src.Open(context.Background(), src.Key("Characters"))
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "character_id,name\n1,Spider-Man\n", string(body))
}

func TestS3Source_Missing(t *testing.T) {
	src := newTestS3Source(t, fakeS3(t, nil, false))

	_, err := src.Open(context.Background(), src.Key("Comics"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSnapshotNotFound)
	assert.Contains(t, err.Error(), "s3://cube/abc123/Comics.csv")
}

func TestS3Source_AccessDenied(t *testing.T) {
	src := newTestS3Source(t, fakeS3(t, nil, true))

	_, err := src.Open(context.Background(), src.Key("Comics"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSnapshotAccessDenied)
	assert.Equal(t, "SNAP002", core.MapError(err).Code)
}
