// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/JonMunkholm/marvel-explorer/internal/database"
	"github.com/JonMunkholm/marvel-explorer/internal/logging"
)

// ResetTimeout is the maximum duration for database reset operations.
const ResetTimeout = 30 * time.Second

// ResetResult is the number of rows removed from one relation.
type ResetResult struct {
	Relation string
	Deleted  int64
}

// Reset deletes every row of relations in a single transaction, so either
// all of them are emptied or none are. Relations themselves are kept.
// This is a destructive operation - use with caution.
func Reset(ctx context.Context, db database.Database, relations []string) ([]ResetResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	results := make([]ResetResult, 0, len(relations))
	err := database.WithTransaction(ctx, db, func(tx *gorm.DB) error {
		for _, rel := range relations {
			res := tx.Exec("DELETE FROM " + tx.Statement.Quote(rel))
			if res.Error != nil {
				return fmt.Errorf("reset %s: %w", rel, res.Error)
			}
			results = append(results, ResetResult{Relation: rel, Deleted: res.RowsAffected})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	for _, r := range results {
		logger.Info("relation reset", "relation", r.Relation, "deleted", r.Deleted)
	}
	return results, nil
}
