package core

import "errors"

// Snapshot source failures. Sources wrap their errors in one of these so
// the classification does not depend on the storage backend.
var (
	ErrSnapshotNotFound     = errors.New("snapshot not found")
	ErrSnapshotAccessDenied = errors.New("snapshot access denied")
	ErrSnapshotUnavailable  = errors.New("snapshot storage unavailable")
)

// ErrMissingKeyColumn is returned when a snapshot header lacks the key column.
var ErrMissingKeyColumn = errors.New("missing key column")

// ErrRunInProgress is returned by Engine.Run while another run is active.
var ErrRunInProgress = errors.New("ingestion run already in progress")
