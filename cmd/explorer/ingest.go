package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/marvel-explorer/internal/config"
	"github.com/JonMunkholm/marvel-explorer/internal/core"
	"github.com/JonMunkholm/marvel-explorer/internal/schema"
)

func ingestCmd(envFile *string) *cobra.Command {
	var (
		asJSON    bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load every table's snapshot into the database",
		Long: `Load every table's snapshot into the database.

Tables are processed one after another. A failing table is rolled back and
reported; the remaining tables still run. Rows whose character_id already
exists are skipped. Exits with status 1 when any table failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			if batchSize > 0 {
				cfg.Ingest.BatchSize = min(batchSize, config.MaxBatchSize)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := schema.EnsureTables(ctx, db); err != nil {
				return fmt.Errorf("ensure tables: %w", err)
			}

			engine, err := newEngine(cfg, db)
			if err != nil {
				return err
			}

			report, runErr := engine.Run(ctx)
			if err := writeReport(cmd.OutOrStdout(), report, asJSON); err != nil {
				return err
			}
			if runErr != nil {
				return fmt.Errorf("ingestion: %w", runErr)
			}
			return reportError(report)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run report as JSON")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Rows per INSERT statement (overrides INGEST_BATCH_SIZE)")

	return cmd
}

// writeReport prints one line per table, or the whole report as JSON.
func writeReport(w io.Writer, report core.RunReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tSTATUS\tROWS\tINSERTED\tSKIPPED\tDETAIL")
	for _, t := range report.Tables {
		detail := ""
		if t.Failed() {
			detail = t.Code + " " + t.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", t.Table, t.Status, t.Rows, t.Inserted, t.Skipped, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "run %s: %d inserted, %d skipped, %d of %d tables failed in %s\n",
		report.RunID, report.Inserted(), report.Skipped(), len(report.Failed()), len(report.Tables), report.Duration.Round(time.Millisecond))
	return err
}

// reportError returns errSilent when any table failed; the report already
// says which.
func reportError(report core.RunReport) error {
	if len(report.Failed()) > 0 {
		return errSilent
	}
	return nil
}
