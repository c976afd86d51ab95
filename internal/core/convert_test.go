package core

import (
	"database/sql/driver"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ToPgText Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantValid  bool
		wantString string
	}{
		{name: "simple string", input: "Spider-Man", wantValid: true, wantString: "Spider-Man"},
		{name: "whitespace kept verbatim", input: "  Hulk ", wantValid: true, wantString: "  Hulk "},
		{name: "unicode", input: "Mjølnir", wantValid: true, wantString: "Mjølnir"},
		{name: "only spaces is a value", input: "   ", wantValid: true, wantString: "   "},
		{name: "empty is null", input: "", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgText(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgText(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.String != tt.wantString {
				t.Errorf("ToPgText(%q) = %q, want %q", tt.input, got.String, tt.wantString)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgInt8 Tests
// ----------------------------------------------------------------------------

func TestToPgInt8(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue int64
		wantErr   bool
	}{
		{name: "integer", input: "1011334", wantValid: true, wantValue: 1011334},
		{name: "negative", input: "-5", wantValid: true, wantValue: -5},
		{name: "surrounding spaces", input: " 42 ", wantValid: true, wantValue: 42},
		{name: "integral float", input: "1011334.0", wantValid: true, wantValue: 1011334},
		{name: "exponent", input: "1e3", wantValid: true, wantValue: 1000},
		{name: "empty is null", input: "", wantValid: false},
		{name: "spaces are null", input: "   ", wantValid: false},
		{name: "fractional", input: "1.5", wantErr: true},
		{name: "text", input: "abc", wantErr: true},
		{name: "infinity", input: "Inf", wantErr: true},
		{name: "nan", input: "NaN", wantErr: true},
		{name: "overflow", input: "1e30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToPgInt8(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToPgInt8(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToPgInt8(%q) unexpected error: %v", tt.input, err)
			}
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgInt8(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.Int64 != tt.wantValue {
				t.Errorf("ToPgInt8(%q) = %d, want %d", tt.input, got.Int64, tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgTimestamp Tests
// ----------------------------------------------------------------------------

func TestToPgTimestamp(t *testing.T) {
	wall := time.Date(2014, 4, 29, 14, 18, 17, 0, time.UTC)

	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      time.Time
		wantErr   bool
	}{
		{name: "marvel api offset", input: "2014-04-29T14:18:17-0400", wantValid: true, want: wall},
		{name: "rfc3339", input: "2014-04-29T14:18:17Z", wantValid: true, want: wall},
		{name: "rfc3339 with offset keeps wall clock", input: "2014-04-29T14:18:17+02:00", wantValid: true, want: wall},
		{name: "space separated offset", input: "2014-04-29 14:18:17-04:00", wantValid: true, want: wall},
		{name: "space separated", input: "2014-04-29 14:18:17", wantValid: true, want: wall},
		{name: "fractional seconds", input: "2014-04-29 14:18:17.5", wantValid: true, want: wall.Add(500 * time.Millisecond)},
		{name: "date only", input: "2014-04-29", wantValid: true, want: time.Date(2014, 4, 29, 0, 0, 0, 0, time.UTC)},
		{name: "empty is null", input: "", wantValid: false},
		{name: "garbage", input: "last tuesday", wantErr: true},
		{name: "us date", input: "04/29/2014", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToPgTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToPgTimestamp(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToPgTimestamp(%q) unexpected error: %v", tt.input, err)
			}
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgTimestamp(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && !got.Time.Equal(tt.want) {
				t.Errorf("ToPgTimestamp(%q) = %v, want %v", tt.input, got.Time, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// BuildRow Tests
// ----------------------------------------------------------------------------

func testCharacterDef() TableDefinition {
	return TableDefinition{
		Info: TableInfo{Key: "Characters", Relation: "characters", KeyColumn: "character_id"},
		FieldSpecs: []FieldSpec{
			{Name: "character_id", Type: FieldInteger},
			{Name: "name", Type: FieldText},
			{Name: "modified", Type: FieldTimestamp},
		},
	}
}

func TestBuildRow(t *testing.T) {
	def := testCharacterDef()
	header := []string{"character_id", "name", "modified", "extra"}

	row, err := BuildRow(def, header, Record{
		"character_id": "1009610",
		"name":         "Spider-Man",
		"modified":     "",
		"extra":        "x",
	})
	if err != nil {
		t.Fatalf("BuildRow: %v", err)
	}
	if len(row) != len(header) {
		t.Fatalf("BuildRow returned %d columns, want %d", len(row), len(header))
	}

	if id, ok := row["character_id"].(driver.Valuer); !ok {
		t.Errorf("character_id is %T, want a driver.Valuer", row["character_id"])
	} else if v, _ := id.Value(); v != int64(1009610) {
		t.Errorf("character_id = %v, want 1009610", v)
	}

	mod := row["modified"]
	if v, err := mod.(driver.Valuer).Value(); err != nil || v != nil {
		t.Errorf("empty modified = %v (err %v), want NULL", v, err)
	}

	extra := ToPgText("x")
	if row["extra"] != extra {
		t.Errorf("unknown column = %v, want text passthrough", row["extra"])
	}
}

func TestBuildRow_InvalidValue(t *testing.T) {
	def := testCharacterDef()

	_, err := BuildRow(def, []string{"character_id", "modified"}, Record{
		"character_id": "1",
		"modified":     "yesterday",
	})
	if err == nil {
		t.Fatal("expected error for invalid timestamp")
	}
	if got := MapError(err).Code; got != "CSV003" {
		t.Errorf("MapError code = %q, want CSV003", got)
	}
}
