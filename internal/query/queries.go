// Package query is the read-only query layer over the ingested relations.
//
// Every operation takes its own session for the duration of the call and
// binds all filters as parameters. Results are never nil: an unknown
// character name yields an empty slice.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/JonMunkholm/marvel-explorer/internal/core"
	"github.com/JonMunkholm/marvel-explorer/internal/database"
	"github.com/JonMunkholm/marvel-explorer/internal/metrics"
)

// ErrMissingCharacterName is returned by operations that require a name filter.
var ErrMissingCharacterName = errors.New("missing character_name parameter")

// ErrDatabase matches every *DatabaseError.
var ErrDatabase = errors.New("database error")

// DatabaseError reports a failed query.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDatabase.
func (e *DatabaseError) Is(target error) bool { return target == ErrDatabase }

// CharacterComic is one comic linked to a character.
type CharacterComic struct {
	CharacterName string  `json:"character_name"`
	ComicName     *string `json:"comic_name"`
	Thumbnail     *string `json:"thumbnail"`
}

// CharacterSeriesEvent is one series/event combination for a character.
// Series and event are independent, so either side may be null.
type CharacterSeriesEvent struct {
	CharacterName string  `json:"character_name"`
	SeriesName    *string `json:"series_name"`
	EventName     *string `json:"event_name"`
}

// ComicCount is the number of comics joined to a character.
type ComicCount struct {
	CharacterName *string `json:"character_name"`
	ComicCount    int64   `json:"comic_count"`
}

// CharacterSummary holds per-character totals.
type CharacterSummary struct {
	CharacterName *string `json:"character_name"`
	TotalComics   int64   `json:"total_comics"`
	TotalSeries   int64   `json:"total_series"`
	TotalEvents   int64   `json:"total_events"`
}

// TableCount is the row count of one registered relation, with the columns
// its snapshot is expected to carry.
type TableCount struct {
	Table    string   `json:"table"`
	Relation string   `json:"relation"`
	Columns  []string `json:"columns"`
	RowCount int64    `json:"row_count"`
}

// Queries runs the explorer's read queries.
type Queries struct {
	db database.Database
}

// New creates a query layer over db.
func New(db database.Database) *Queries {
	return &Queries{db: db}
}

const comicsForCharacterSQL = `
SELECT c.name AS character_name, cm.comic_name AS comic_name, c.thumbnail AS thumbnail
FROM characters c
JOIN comics cm ON c.character_id = cm.character_id
WHERE c.name = ?`

const seriesAndEventsSQL = `
SELECT c.name AS character_name, s.series_name AS series_name, e.event_name AS event_name
FROM characters c
LEFT JOIN series s ON c.character_id = s.character_id
LEFT JOIN events e ON c.character_id = e.character_id
WHERE c.name = ?`

const comicCountsSQL = `
SELECT c.name AS character_name, COUNT(cm.character_id) AS comic_count
FROM characters c
JOIN comics cm ON c.character_id = cm.character_id
%s
GROUP BY c.character_id, c.name
ORDER BY comic_count DESC, c.name ASC`

// Each relation is counted before joining so one character's comics,
// series and events never multiply each other.
const summarySQL = `
SELECT
	c.name AS character_name,
	COALESCE(cm.n, 0) AS total_comics,
	COALESCE(s.n, 0) AS total_series,
	COALESCE(e.n, 0) AS total_events
FROM characters c
LEFT JOIN (SELECT character_id, COUNT(*) AS n FROM comics GROUP BY character_id) cm
	ON cm.character_id = c.character_id
LEFT JOIN (SELECT character_id, COUNT(*) AS n FROM series GROUP BY character_id) s
	ON s.character_id = c.character_id
LEFT JOIN (SELECT character_id, COUNT(*) AS n FROM events GROUP BY character_id) e
	ON e.character_id = c.character_id
%s
ORDER BY total_comics DESC, c.name ASC`

// CharacterNames returns every non-null character name, ascending.
func (q *Queries) CharacterNames(ctx context.Context) ([]string, error) {
	names := []string{}
	err := q.db.Session(ctx).
		Table("characters").
		Where("name IS NOT NULL").
		Order("name ASC").
		Pluck("name", &names).Error
	if err != nil {
		return nil, q.fail("character_names", err)
	}
	return nonNil(names), nil
}

// ComicsForCharacter returns the comics joined to the named character.
func (q *Queries) ComicsForCharacter(ctx context.Context, name string) ([]CharacterComic, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingCharacterName
	}
	rows := []CharacterComic{}
	if err := q.db.Session(ctx).Raw(comicsForCharacterSQL, name).Scan(&rows).Error; err != nil {
		return nil, q.fail("comics_for_character", err)
	}
	return nonNil(rows), nil
}

// SeriesAndEventsForCharacter returns every series/event pairing of the
// named character. A character with no series and no events still yields one
// row with both sides null.
func (q *Queries) SeriesAndEventsForCharacter(ctx context.Context, name string) ([]CharacterSeriesEvent, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingCharacterName
	}
	rows := []CharacterSeriesEvent{}
	if err := q.db.Session(ctx).Raw(seriesAndEventsSQL, name).Scan(&rows).Error; err != nil {
		return nil, q.fail("series_and_events", err)
	}
	return nonNil(rows), nil
}

// ComicCounts returns comic counts per character, highest first. An empty
// name means all characters.
func (q *Queries) ComicCounts(ctx context.Context, name string) ([]ComicCount, error) {
	rows := []ComicCount{}
	if err := q.raw(ctx, comicCountsSQL, name).Scan(&rows).Error; err != nil {
		return nil, q.fail("comic_counts", err)
	}
	return nonNil(rows), nil
}

// CharacterSummary returns comic, series and event totals per character,
// ordered by total comics descending. An empty name means all characters.
func (q *Queries) CharacterSummary(ctx context.Context, name string) ([]CharacterSummary, error) {
	rows := []CharacterSummary{}
	if err := q.raw(ctx, summarySQL, name).Scan(&rows).Error; err != nil {
		return nil, q.fail("character_summary", err)
	}
	return nonNil(rows), nil
}

// TableCounts returns the row count of each table in one UNION ALL query,
// in the order given.
func (q *Queries) TableCounts(ctx context.Context, tables []core.TableInfo) ([]TableCount, error) {
	out := make([]TableCount, len(tables))
	if len(tables) == 0 {
		return out, nil
	}

	session := q.db.Session(ctx)
	parts := make([]string, len(tables))
	for i, t := range tables {
		out[i] = TableCount{Table: t.Key, Relation: t.Relation, Columns: t.Columns}
		parts[i] = fmt.Sprintf("SELECT %d AS idx, COUNT(*) AS row_count FROM %s", i, session.Statement.Quote(t.Relation))
	}

	var counts []struct {
		Idx      int
		RowCount int64
	}
	if err := session.Raw(strings.Join(parts, " UNION ALL ")).Scan(&counts).Error; err != nil {
		return nil, q.fail("table_counts", err)
	}
	for _, c := range counts {
		if c.Idx >= 0 && c.Idx < len(out) {
			out[c.Idx].RowCount = c.RowCount
		}
	}
	return out, nil
}

// raw formats query with an optional character name filter. A blank name
// means no filter; any other name is matched exactly, spaces included.
func (q *Queries) raw(ctx context.Context, query, name string) *gorm.DB {
	session := q.db.Session(ctx)
	if strings.TrimSpace(name) == "" {
		return session.Raw(fmt.Sprintf(query, ""))
	}
	return session.Raw(fmt.Sprintf(query, "WHERE c.name = ?"), name)
}

func (q *Queries) fail(op string, err error) error {
	metrics.RecordQueryError(op)
	return &DatabaseError{Op: op, Err: err}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
