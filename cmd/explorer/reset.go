package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/marvel-explorer/internal/admin"
	"github.com/JonMunkholm/marvel-explorer/internal/core"
)

func resetCmd(envFile *string) *cobra.Command {
	var (
		yes    bool
		tables []string
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all ingested rows",
		Long: `Delete every row from the explorer's relations so the next ingestion
reloads them. Use --table to limit the reset to some tables (by snapshot
name, e.g. Comics). Requires --yes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes data; pass --yes to confirm")
			}
			relations, err := resetRelations(tables)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			ctx := context.Background()
			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			results, err := admin.Reset(ctx, db, relations)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows deleted\n", r.Relation, r.Deleted)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	cmd.Flags().StringSliceVar(&tables, "table", nil, "Tables to reset (default: all)")

	return cmd
}

// resetRelations maps table names to relations; none means every table.
func resetRelations(tables []string) ([]string, error) {
	if len(tables) == 0 {
		return core.Relations(), nil
	}
	relations := make([]string, 0, len(tables))
	for _, t := range tables {
		def, ok := core.Get(t)
		if !ok {
			return nil, fmt.Errorf("unknown table %q", t)
		}
		relations = append(relations, def.Info.Relation)
	}
	return relations, nil
}
