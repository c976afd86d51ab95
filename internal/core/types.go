package core

import (
	"context"
	"fmt"
	"io"
	"time"
)

// SnapshotSource locates and opens the CSV snapshot for a logical table.
type SnapshotSource interface {
	// Key returns the object key for table, e.g. "marvel/Characters.csv".
	Key(table string) string
	// Open returns a reader over the object at key. Callers close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// FieldType represents the expected data type for a CSV column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldTimestamp
)

func (t FieldType) String() string {
	switch t {
	case FieldInteger:
		return "integer"
	case FieldTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// FieldSpec describes a known column of a relation.
type FieldSpec struct {
	Name string    // Column name, identical in the CSV header and the relation
	Type FieldType // Conversion applied to non-empty cells
}

// TableInfo identifies a table and where its rows go.
type TableInfo struct {
	Key       string   // Logical name and snapshot file stem: "Characters"
	Relation  string   // Target relation: "characters"
	KeyColumn string   // Primary key column used for existence checks
	Order     int      // Position in the ingestion sequence
	Columns   []string // Known column names, from FieldSpecs
}

// TableDefinition contains everything needed to ingest one table.
type TableDefinition struct {
	Info       TableInfo
	FieldSpecs []FieldSpec
}

// Spec returns the field spec for column, if the column is known.
func (d TableDefinition) Spec(column string) (FieldSpec, bool) {
	for _, s := range d.FieldSpecs {
		if s.Name == column {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// Record is one CSV row keyed by header column name. Cells missing from a
// short row are present with an empty value.
type Record map[string]string

// Stage names the step of table ingestion where a failure happened.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageParse    Stage = "parse"
	StageCheck    Stage = "existence_check"
	StageValidate Stage = "validate"
	StageInsert   Stage = "insert"
	StageCommit   Stage = "commit"
)

// TableStatus is the outcome of ingesting one table.
type TableStatus string

const (
	StatusSucceeded TableStatus = "succeeded"
	StatusFailed    TableStatus = "failed"
)

// TableError wraps a failure with the table and stage it happened in.
type TableError struct {
	Table string
	Stage Stage
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Table, e.Stage, e.Err)
}

func (e *TableError) Unwrap() error { return e.Err }

// TableResult is the outcome of one table within a run.
type TableResult struct {
	Table    string        `json:"table"`
	Relation string        `json:"relation"`
	Key      string        `json:"key"`
	Status   TableStatus   `json:"status"`
	Stage    Stage         `json:"stage,omitempty"` // Set when Status is failed
	Rows     int           `json:"rows"`            // Data rows read from the snapshot
	Inserted int           `json:"inserted"`
	Skipped  int           `json:"skipped"` // Rows whose key already existed
	Code     string        `json:"code,omitempty"`
	Error    string        `json:"error,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Failed reports whether the table was rolled back.
func (r TableResult) Failed() bool {
	return r.Status == StatusFailed
}

// RunReport summarizes one ingestion run.
type RunReport struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Tables    []TableResult `json:"tables"`
}

// Succeeded returns the tables that committed.
func (r RunReport) Succeeded() []TableResult {
	var out []TableResult
	for _, t := range r.Tables {
		if !t.Failed() {
			out = append(out, t)
		}
	}
	return out
}

// Failed returns the tables that were rolled back.
func (r RunReport) Failed() []TableResult {
	var out []TableResult
	for _, t := range r.Tables {
		if t.Failed() {
			out = append(out, t)
		}
	}
	return out
}

// Inserted returns the rows inserted across all committed tables.
func (r RunReport) Inserted() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Inserted
	}
	return n
}

// Skipped returns the rows skipped as already present across committed tables.
func (r RunReport) Skipped() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Skipped
	}
	return n
}
