package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/marvel-explorer/internal/schema"
	"github.com/JonMunkholm/marvel-explorer/internal/testdb"
)

func TestEnsureTables_CreatesMissingOnly(t *testing.T) {
	ctx := context.Background()
	db := testdb.WithSchema(t, "CREATE TABLE comics (character_id INTEGER PRIMARY KEY, legacy TEXT)")

	created, err := schema.EnsureTables(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"characters", "events", "series", "stories"}, created)

	// The pre-existing relation keeps its shape.
	assert.True(t, db.Session(ctx).Migrator().HasColumn("comics", "legacy"))
	assert.False(t, db.Session(ctx).Migrator().HasColumn("comics", "comic_name"))

	created, err = schema.EnsureTables(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestEnsureTables_Columns(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	m := db.Session(ctx).Migrator()

	want := map[string][]string{
		"characters": {"character_id", "name", "description", "thumbnail", "modified"},
		"comics":     {"character_id", "comic_name", "comic_resourceURI"},
		"events":     {"character_id", "event_name", "event_resourceURI"},
		"series":     {"character_id", "series_name", "series_resourceURI"},
		"stories":    {"character_id", "story_name", "story_type", "story_resourceURI"},
	}
	for table, cols := range want {
		for _, col := range cols {
			assert.True(t, m.HasColumn(table, col), "%s.%s", table, col)
		}
	}
	assert.True(t, m.HasIndex(&schema.Character{}, "Name"))
}
