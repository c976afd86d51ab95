package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/marvel-explorer/internal/core"
)

// DirSource reads snapshots from a local directory laid out like the bucket.
type DirSource struct {
	root   string
	prefix string
}

// NewDirSource creates a source rooted at root.
func NewDirSource(root, prefix string) *DirSource {
	return &DirSource{root: root, prefix: prefix}
}

// Key implements core.SnapshotSource.
func (d *DirSource) Key(table string) string {
	return Key(d.prefix, table)
}

// Open implements core.SnapshotSource.
func (d *DirSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrSnapshotNotFound, key, err)
	}
	if errors.Is(err, fs.ErrPermission) {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrSnapshotAccessDenied, key, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrSnapshotUnavailable, key, err)
	}
	return f, nil
}
