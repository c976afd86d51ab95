package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptySnapshot is returned when a snapshot has no header row.
var ErrEmptySnapshot = errors.New("empty snapshot")

// Snapshot is a parsed CSV file: the header in file order and the data rows.
type Snapshot struct {
	Header  []string
	Records []Record
	Bytes   int64 // Bytes read from the source after BOM removal
}

// HasColumn reports whether the header names column.
func (s Snapshot) HasColumn(column string) bool {
	for _, h := range s.Header {
		if h == column {
			return true
		}
	}
	return false
}

// ParseSnapshot reads a whole CSV snapshot. The reader is wrapped with BOM
// skipping and UTF-8 sanitizing. Blank lines are skipped, short rows are
// padded with empty cells, and rows wider than the header are rejected.
func ParseSnapshot(r io.Reader) (Snapshot, error) {
	counter := WrapForStreaming(r)
	cr := csv.NewReader(counter)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Snapshot{}, ErrEmptySnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("malformed csv: %w", err)
	}

	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			return Snapshot{}, fmt.Errorf("malformed csv: header column %d is blank", i+1)
		}
		if seen[h] {
			return Snapshot{}, fmt.Errorf("malformed csv: duplicate header column %q", h)
		}
		seen[h] = true
		header[i] = h
	}

	snap := Snapshot{Header: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("malformed csv: %w", err)
		}
		if isEmptyRow(row) {
			continue
		}
		if len(row) > len(header) {
			line, _ := cr.FieldPos(0)
			return Snapshot{}, fmt.Errorf("malformed csv: line %d has %d fields, header has %d", line, len(row), len(header))
		}

		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		snap.Records = append(snap.Records, rec)
	}

	snap.Bytes = counter.BytesRead
	return snap, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
