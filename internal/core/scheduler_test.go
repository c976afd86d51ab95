package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/marvel-explorer/internal/testdb"
)

func (m *memSource) openCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.opened)
}

func TestStartScheduler_RunNowOnly(t *testing.T) {
	db := testdb.New(t)
	src := newMemSource(allSnapshots())
	engine := NewEngine(db, src, marvelDefs())

	// No interval: one run, then return.
	engine.StartScheduler(context.Background(), 0, true)

	assert.Equal(t, 5, src.openCount())
	assert.Equal(t, int64(2), countRows(t, db, "characters"))
}

func TestStartScheduler_NothingToDo(t *testing.T) {
	src := newMemSource(allSnapshots())
	engine := NewEngine(testdb.New(t), src, marvelDefs())

	engine.StartScheduler(context.Background(), 0, false)
	assert.Zero(t, src.openCount())
}

func TestStartScheduler_TicksUntilCancelled(t *testing.T) {
	db := testdb.New(t)
	src := newMemSource(allSnapshots())
	engine := NewEngine(db, src, marvelDefs())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.StartScheduler(ctx, 10*time.Millisecond, false)
	}()

	require.Eventually(t, func() bool { return src.openCount() >= 10 }, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	// Later runs skip what the first inserted.
	assert.Equal(t, int64(2), countRows(t, db, "characters"))
}
