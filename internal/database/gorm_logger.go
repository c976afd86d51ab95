package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JonMunkholm/marvel-explorer/internal/logging"
)

// maxSQLLength bounds SQL text in log entries.
const maxSQLLength = 200

// slogGormLogger routes GORM output through the context logger so SQL lines
// carry request_id and run_id. Level filtering is left to slog.
type slogGormLogger struct{}

func (l slogGormLogger) LogMode(logger.LogLevel) logger.Interface { return l }

func (l slogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	logging.FromContext(ctx).Info(fmt.Sprintf(msg, args...))
}

func (l slogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	logging.FromContext(ctx).Warn(fmt.Sprintf(msg, args...))
}

func (l slogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	logging.FromContext(ctx).Error(fmt.Sprintf(msg, args...))
}

// Trace logs every statement at debug level. Failed statements are logged
// at warn: the caller decides whether the failure matters and logs it again.
func (l slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		sql, rows := fc()
		logging.FromContext(ctx).Warn("sql statement failed",
			"sql", truncateSQL(sql),
			"rows", rows,
			"duration", time.Since(begin),
			"error", err,
		)
		return
	}

	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		return
	}

	sql, rows := fc()
	logging.FromContext(ctx).Debug("sql statement",
		"sql", truncateSQL(sql),
		"rows", rows,
		"duration", time.Since(begin),
	)
}

func truncateSQL(sql string) string {
	if len(sql) <= maxSQLLength {
		return sql
	}
	half := (maxSQLLength - 3) / 2
	return sql[:half] + "..." + sql[len(sql)-half:]
}
