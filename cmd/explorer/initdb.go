package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/marvel-explorer/internal/schema"
)

func initDBCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create missing relations",
		Long:  `Create the characters, comics, events, series and stories relations if they do not exist. Existing relations are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			created, err := schema.EnsureTables(ctx, db)
			if err != nil {
				return fmt.Errorf("ensure tables: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(created) == 0 {
				fmt.Fprintln(out, "all tables already exist")
				return nil
			}
			for _, name := range created {
				fmt.Fprintf(out, "created %s\n", name)
			}
			return nil
		},
	}
}
