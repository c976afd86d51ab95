package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/marvel-explorer/internal/core"
)

func TestWriteReport_Text(t *testing.T) {
	report := core.RunReport{
		RunID:    "run-1",
		Duration: 1500 * time.Millisecond,
		Tables: []core.TableResult{
			{Table: "Characters", Status: core.StatusSucceeded, Rows: 3, Inserted: 2, Skipped: 1},
			{Table: "Comics", Status: core.StatusFailed, Stage: core.StageFetch, Code: "SNAP001", Error: "Comics: fetch: snapshot not found"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, false))
	out := buf.String()
	assert.Contains(t, out, "TABLE")
	assert.Contains(t, out, "Characters")
	assert.Contains(t, out, "SNAP001 Comics: fetch: snapshot not found")
	assert.Contains(t, out, "run run-1: 2 inserted, 1 skipped, 1 of 2 tables failed in 1.5s")

	assert.ErrorIs(t, reportError(report), errSilent)
	assert.NoError(t, reportError(core.RunReport{Tables: report.Tables[:1]}))
}

// snapshotDir writes the five snapshots, leaving out any table in skip.
func snapshotDir(t *testing.T, skip ...string) string {
	t.Helper()
	files := map[string]string{
		"Characters": "character_id,name,description,thumbnail,modified\n1,Spider-Man,,spider.jpg,2020-01-01 00:00:00\n2,Hulk,,hulk.jpg,\n",
		"Comics":     "character_id,comic_name,comic_resourceURI\n1,Amazing Fantasy #15,http://example.com/c/1\n",
		"Events":     "character_id,event_name,event_resourceURI\n1,Civil War,http://example.com/e/1\n",
		"Series":     "character_id,series_name,series_resourceURI\n2,Incredible Hulk,http://example.com/s/2\n",
		"Stories":    "character_id,story_name,story_type,story_resourceURI\n1,Origin,story,http://example.com/st/1\n",
	}
	for _, s := range skip {
		delete(files, s)
	}

	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".csv"), []byte(body), 0o600))
	}
	return dir
}

func runIngest(t *testing.T, args ...string) (core.RunReport, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"ingest", "--json", "--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()

	var report core.RunReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report), out.String())
	return report, err
}

func TestIngestCommand(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:///"+filepath.Join(t.TempDir(), "explorer.db"))
	t.Setenv("SNAPSHOT_DIR", snapshotDir(t))
	t.Setenv("LOG_LEVEL", "error")

	report, err := runIngest(t)
	require.NoError(t, err)
	require.Len(t, report.Tables, 5)
	assert.Empty(t, report.Failed())
	assert.Equal(t, 6, report.Inserted())

	// Unchanged snapshots insert nothing the second time.
	report, err = runIngest(t, "--batch-size", "1")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Inserted())
	assert.Equal(t, 6, report.Skipped())
}

func TestIngestCommand_TableFailure(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:///"+filepath.Join(t.TempDir(), "explorer.db"))
	t.Setenv("SNAPSHOT_DIR", snapshotDir(t, "Events"))
	t.Setenv("LOG_LEVEL", "error")

	report, err := runIngest(t)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errSilent))

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "Events", failed[0].Table)
	assert.Equal(t, core.StageFetch, failed[0].Stage)
	assert.Equal(t, "SNAP001", failed[0].Code)
	assert.Equal(t, 5, report.Inserted())
}
