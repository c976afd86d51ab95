package schema

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/marvel-explorer/internal/database"
	"github.com/JonMunkholm/marvel-explorer/internal/logging"
)

// EnsureTables creates every relation that does not exist yet.
// Existing relations are left untouched; there are no migrations.
func EnsureTables(ctx context.Context, db database.Database) ([]string, error) {
	migrator := db.Session(ctx).Migrator()

	var created []string
	for _, model := range Models() {
		name := model.(interface{ TableName() string }).TableName()
		if migrator.HasTable(model) {
			continue
		}
		if err := migrator.CreateTable(model); err != nil {
			return created, fmt.Errorf("create table %s: %w", name, err)
		}
		logging.FromContext(ctx).Info("created table", "table", name)
		created = append(created, name)
	}
	return created, nil
}
