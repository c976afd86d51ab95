package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/JonMunkholm/marvel-explorer/internal/database"
	"github.com/JonMunkholm/marvel-explorer/internal/logging"
	"github.com/JonMunkholm/marvel-explorer/internal/metrics"
)

// DefaultBatchSize is the number of staged rows per INSERT statement.
const DefaultBatchSize = 500

// maxBindParams is PostgreSQL's limit on parameters in one statement.
const maxBindParams = 65535

// batchRows returns how many rows of width columns fit in one INSERT.
func batchRows(batchSize, width int) int {
	if width > 0 && batchSize*width > maxBindParams {
		return max(maxBindParams/width, 1)
	}
	return batchSize
}

// Engine loads snapshots into the database one table at a time.
type Engine struct {
	db        database.Database
	source    SnapshotSource
	defs      []TableDefinition
	batchSize int
	limiter   *RunLimiter
}

// Option configures an Engine.
type Option func(*Engine)

// WithBatchSize sets the number of rows per INSERT statement.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithRunLimiter shares a limiter between engines, or with shutdown code
// that waits on it.
func WithRunLimiter(l *RunLimiter) Option {
	return func(e *Engine) {
		if l != nil {
			e.limiter = l
		}
	}
}

// NewEngine creates an engine that ingests defs, in order, from source into db.
func NewEngine(db database.Database, source SnapshotSource, defs []TableDefinition, opts ...Option) *Engine {
	e := &Engine{
		db:        db,
		source:    source,
		defs:      defs,
		batchSize: DefaultBatchSize,
		limiter:   NewRunLimiter(1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Limiter returns the limiter guarding Run.
func (e *Engine) Limiter() *RunLimiter {
	return e.limiter
}

// Run ingests every table sequentially. A failing table is rolled back and
// recorded in the report; later tables still run. The returned error is
// ErrRunInProgress when another run is active, or the context error when
// the run was cancelled part way.
func (e *Engine) Run(ctx context.Context) (RunReport, error) {
	if !e.limiter.TryAcquire() {
		metrics.RecordRun("rejected")
		return RunReport{}, ErrRunInProgress
	}
	defer e.limiter.Release()

	metrics.TrackIngest(true)
	defer metrics.TrackIngest(false)

	report := RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	ctx = logging.WithRunID(ctx, report.RunID)
	logger := logging.FromContext(ctx)
	logger.Info("ingestion started", "tables", len(e.defs))

	for _, def := range e.defs {
		report.Tables = append(report.Tables, e.ingestTable(ctx, def))
	}
	report.Duration = time.Since(report.StartedAt)

	failed := len(report.Failed())
	outcome := "completed"
	if failed > 0 {
		outcome = "partial"
	}
	metrics.RecordRun(outcome)

	logger.Info("ingestion finished",
		"inserted", report.Inserted(),
		"skipped", report.Skipped(),
		"failed_tables", failed,
		"duration_ms", report.Duration.Milliseconds(),
	)

	return report, ctx.Err()
}

// ingestTable runs fetch, parse, existence check, insert and commit for one
// table inside a single transaction. It never returns an error: failures,
// including panics, become a failed result.
func (e *Engine) ingestTable(ctx context.Context, def TableDefinition) (res TableResult) {
	start := time.Now()
	key := e.source.Key(def.Info.Key)
	logger := logging.WithFields(ctx, "table", def.Info.Key, "key", key)

	res = TableResult{
		Table:    def.Info.Key,
		Relation: def.Info.Relation,
		Key:      key,
		Status:   StatusSucceeded,
	}
	stage := StageFetch
	var snapBytes int64

	fail := func(err error) {
		res.Status = StatusFailed
		res.Stage = stage
		res.Err = &TableError{Table: def.Info.Key, Stage: stage, Err: err}
		res.Error = res.Err.Error()
		res.Code = MapError(err).Code
		if database.IsUniqueViolation(err) {
			res.Code = "DB001"
		}
		res.Inserted = 0
		res.Skipped = 0
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("panic: %v", r))
		}
		res.Duration = time.Since(start)
		metrics.RecordTableRun(def.Info.Key, string(res.Status), string(res.Stage), res.Inserted, res.Skipped, snapBytes, res.Duration)
		if res.Failed() {
			logger.Error("table ingestion failed",
				"stage", res.Stage,
				"code", res.Code,
				"error", res.Err,
			)
			return
		}
		logger.Info("table ingested",
			"rows", res.Rows,
			"inserted", res.Inserted,
			"skipped", res.Skipped,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}()

	if err := ctx.Err(); err != nil {
		fail(err)
		return res
	}

	// Fetch
	body, err := e.source.Open(ctx, key)
	if err != nil {
		fail(err)
		return res
	}
	defer body.Close()

	// Parse
	stage = StageParse
	snap, err := ParseSnapshot(body)
	if err != nil {
		fail(err)
		return res
	}
	snapBytes = snap.Bytes
	res.Rows = len(snap.Records)

	keyCol := def.Info.KeyColumn
	if !snap.HasColumn(keyCol) {
		fail(fmt.Errorf("%w %q", ErrMissingKeyColumn, keyCol))
		return res
	}

	txn, err := e.db.Begin(ctx)
	if err != nil {
		stage = StageCheck
		fail(err)
		return res
	}
	defer func() { _ = txn.Rollback() }()
	tx := txn.Session()

	// Existence check and staging. staged covers keys repeated within the
	// file, which the database cannot see until the insert.
	staged := make(map[int64]struct{}, len(snap.Records))
	rows := make([]map[string]any, 0, len(snap.Records))
	skipped := 0

	for i, rec := range snap.Records {
		stage = StageValidate
		id, err := ToPgInt8(rec[keyCol])
		if err == nil && !id.Valid {
			err = errors.New("empty")
		}
		if err != nil {
			fail(fmt.Errorf("row %d: invalid value for %s: %w", i+1, keyCol, err))
			return res
		}

		if _, dup := staged[id.Int64]; dup {
			skipped++
			continue
		}

		stage = StageCheck
		var n int64
		err = tx.Table(def.Info.Relation).
			Where(clause.Eq{Column: clause.Column{Name: keyCol}, Value: id.Int64}).
			Count(&n).Error
		if err != nil {
			fail(err)
			return res
		}
		if n > 0 {
			logger.Debug("row already present", "character_id", id.Int64)
			skipped++
			continue
		}

		stage = StageValidate
		row, err := BuildRow(def, snap.Header, rec)
		if err != nil {
			fail(fmt.Errorf("row %d: %w", i+1, err))
			return res
		}
		staged[id.Int64] = struct{}{}
		rows = append(rows, row)
	}

	// Insert
	stage = StageInsert
	batch := batchRows(e.batchSize, len(snap.Header))
	for startIdx := 0; startIdx < len(rows); startIdx += batch {
		end := min(startIdx+batch, len(rows))
		if err := tx.Table(def.Info.Relation).Create(rows[startIdx:end]).Error; err != nil {
			fail(err)
			return res
		}
	}

	// Commit
	stage = StageCommit
	if err := txn.Commit(); err != nil {
		fail(err)
		return res
	}

	res.Inserted = len(rows)
	res.Skipped = skipped
	return res
}
