package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pocket-migrate/internal/audit"
	"github.com/mrlokans/pocket-migrate/internal/config"
	"github.com/mrlokans/pocket-migrate/internal/database"
	"github.com/mrlokans/pocket-migrate/internal/database/runs"
	"github.com/mrlokans/pocket-migrate/internal/importers"
	"github.com/mrlokans/pocket-migrate/internal/logger"
	"github.com/mrlokans/pocket-migrate/internal/report"
	"github.com/mrlokans/pocket-migrate/internal/supabase"
)

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Send extracted unread links to Supabase",
		Long: `Checks that the Supabase table is reachable, loads the unread links written by
"extract", shows a sample of the converted rows and asks for confirmation.

Links are sent in batches. A rejected batch is retried once, one link per
request, so a single bad row costs only itself. Per-link failures are listed in
the final report and kept in the run journal.`,
		Example: `  SUPABASE_URL=https://xyz.supabase.co SUPABASE_ANON_KEY=... IMPORT_USER_ID=... pocket-migrate import
  pocket-migrate import --file unread.csv --batch-size 25 --yes
  pocket-migrate import --supabase-url http://127.0.0.1:54321 --api-key local --user-id me`,
		Args: cobra.NoArgs,
		RunE: runImport,
	}

	cmd.Flags().StringP("file", "f", config.DefaultUnreadOutput, "Unread links CSV written by extract")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().String("supabase-url", "", "Supabase project URL (overrides SUPABASE_URL)")
	cmd.Flags().String("api-key", "", "Supabase anon key (overrides SUPABASE_ANON_KEY)")
	cmd.Flags().String("table", config.DefaultTable, "Destination table")
	cmd.Flags().String("user-id", "", "Owner of the imported links (overrides IMPORT_USER_ID)")
	cmd.Flags().Int("batch-size", config.DefaultBatchSize, "Links per batch request")
	cmd.Flags().Duration("batch-delay", config.DefaultBatchDelay, "Pause after every batch request")
	cmd.Flags().Duration("retry-delay", config.DefaultRetryDelay, "Pause after every individual fallback request")
	cmd.Flags().Duration("http-timeout", config.DefaultHTTPTimeout, "Timeout of a single request")
	cmd.Flags().String("status", config.DefaultStatus, "Status value a link must have to be imported")
	cmd.Flags().String("target-status", config.DefaultTargetStatus, "Status written into every created row")
	cmd.Flags().String("report-dir", "", "Write a snapshot of the result into this directory")
	cmd.Flags().String("report-format", audit.FormatJSON, "Snapshot format (json or yaml)")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := report.NewPrinter(out)

	fmt.Fprintln(out, "🚀 Import Starting...")
	fmt.Fprintln(out, strings.Repeat("=", 50))

	client := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.Table, cfg.Import.HTTPTimeout)
	converter := importers.NewConverter(importers.LinkDefaults{
		UserID: cfg.Import.UserID,
		List:   cfg.Import.ListName,
		Status: cfg.Import.TargetStatus,
		Device: cfg.Import.Device,
	})

	confirm := consoleConfirm(cmd.InOrStdin(), out)
	if yes {
		confirm = autoConfirm(out)
	}

	importer := importers.NewImporter(client, converter, confirm, importers.Options{
		BatchSize:  cfg.Import.BatchSize,
		BatchDelay: cfg.Import.BatchDelay,
		RetryDelay: cfg.Import.RetryDelay,
		Status:     cfg.Import.Status,
	})
	importer.SetLogger(log)

	if cfg.Journal.Path != "" {
		db, err := database.NewDatabase(cfg.Journal.Path)
		if err != nil {
			log.Warn("run journal unavailable, continuing without it", logger.Error(err))
		} else {
			defer db.Close()
			importer.SetJournal(runs.NewRepository(db.DB))
		}
	}

	log.Info("starting import",
		logger.String("file", cfg.Pocket.Output),
		logger.String("endpoint", client.Endpoint()),
		logger.Int("batch_size", cfg.Import.BatchSize),
	)
	result, runErr := importer.Run(cmd.Context(), cfg.Pocket.Output)

	if errors.Is(runErr, importers.ErrConnectionUnavailable) || errors.Is(runErr, importers.ErrLoadFailure) {
		printer.Aborted(runErr)
	} else {
		// An interrupted send still reports what was done before it stopped.
		printer.Results(result)
	}

	if cfg.Report.Dir != "" {
		auditor := audit.NewAuditor(cfg.Report.Dir, cfg.Report.Format)
		if name, err := auditor.Save(audit.NewSnapshot(result, runErr)); err != nil {
			log.Warn("failed to write run snapshot", logger.Error(err))
		} else {
			log.Info("run snapshot written", logger.String("file", name), logger.String("dir", cfg.Report.Dir))
		}
	}

	return runErr
}
