package core

// convert.go turns raw CSV cells into pgtype values.
//
// An empty cell is NULL for every type. pgtype values implement
// driver.Valuer, so the same values bind on PostgreSQL and SQLite.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// timestampLayouts are tried in order. Zoned layouts keep the wall clock and
// drop the offset, matching how a TIMESTAMP column stores zoned input.
var timestampLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToPgText converts a string to pgtype.Text. Empty means NULL; other values
// are kept verbatim.
func ToPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgInt8 converts a string to pgtype.Int8.
// Integral floats such as "1011334.0" are accepted; snapshot exports write
// integer columns that way when the column has gaps.
func ToPgInt8(s string) (pgtype.Int8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Int8{Valid: false}, nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return pgtype.Int8{Int64: i, Valid: true}, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) ||
		f > math.MaxInt64 || f < math.MinInt64 {
		return pgtype.Int8{}, fmt.Errorf("invalid integer %q", s)
	}
	return pgtype.Int8{Int64: int64(f), Valid: true}, nil
}

// ToPgTimestamp converts a string to pgtype.Timestamp.
func ToPgTimestamp(s string) (pgtype.Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Timestamp{Valid: false}, nil
	}

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
			return pgtype.Timestamp{Time: wall, Valid: true}, nil
		}
	}
	return pgtype.Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// ConvertCell converts raw according to spec.
func ConvertCell(spec FieldSpec, raw string) (any, error) {
	switch spec.Type {
	case FieldInteger:
		v, err := ToPgInt8(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", spec.Name, err)
		}
		return v, nil
	case FieldTimestamp:
		v, err := ToPgTimestamp(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", spec.Name, err)
		}
		return v, nil
	default:
		return ToPgText(raw), nil
	}
}

// BuildRow converts a record into column values for insertion.
// Known columns are typed by their spec. Unknown columns are passed through
// as text so the insert rejects them the way the relation would.
func BuildRow(def TableDefinition, header []string, rec Record) (map[string]any, error) {
	row := make(map[string]any, len(header))
	for _, col := range header {
		raw := rec[col]
		spec, ok := def.Spec(col)
		if !ok {
			row[col] = ToPgText(raw)
			continue
		}
		v, err := ConvertCell(spec, raw)
		if err != nil {
			return nil, err
		}
		row[col] = v
	}
	return row, nil
}
