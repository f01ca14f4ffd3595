package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pocket-migrate/internal/database"
	"github.com/mrlokans/pocket-migrate/internal/database/runs"
	"github.com/mrlokans/pocket-migrate/internal/entities"
)

func newRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "List journaled import runs, or show the failures of one run",
		Example: `  pocket-migrate runs
  pocket-migrate runs --limit 5
  pocket-migrate runs 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRuns,
	}

	cmd.Flags().Int("limit", 20, "Number of runs to list")

	return cmd
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Journal.Path == "" {
		return fmt.Errorf("run journal is disabled")
	}
	db, err := database.NewDatabase(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	repo := runs.NewRepository(db.DB)

	if len(args) == 1 {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		run, err := repo.GetRun(uint(id))
		if err != nil {
			return fmt.Errorf("failed to load run %d: %w", id, err)
		}
		printRun(cmd, run)
		return nil
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	list, err := repo.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No import runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tLOADED\tSUCCEEDED\tFAILED\tFILE")
	for _, r := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format(time.DateTime), r.Status, r.Loaded, r.Succeeded, r.Failed, r.SourceFile)
	}
	return w.Flush()
}

func printRun(cmd *cobra.Command, run *entities.ImportRun) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %d (%s)\n", run.ID, run.Status)
	fmt.Fprintf(out, "  File:      %s\n", run.SourceFile)
	fmt.Fprintf(out, "  Started:   %s\n", run.StartedAt.Format(time.DateTime))
	if run.FinishedAt != nil {
		fmt.Fprintf(out, "  Finished:  %s\n", run.FinishedAt.Format(time.DateTime))
	}
	fmt.Fprintf(out, "  Stage:     %s\n", run.Stage)
	if run.AbortReason != "" {
		fmt.Fprintf(out, "  Aborted:   %s\n", run.AbortReason)
	}
	fmt.Fprintf(out, "  Loaded:    %d\n", run.Loaded)
	fmt.Fprintf(out, "  Succeeded: %d\n", run.Succeeded)
	fmt.Fprintf(out, "  Failed:    %d\n", run.Failed)
	if run.TimestampFallbacks > 0 {
		fmt.Fprintf(out, "  Timestamp fallbacks: %d\n", run.TimestampFallbacks)
	}
	if len(run.Failures) == 0 {
		return
	}
	fmt.Fprintln(out, "\nFailed links:")
	for _, f := range run.Failures {
		fmt.Fprintf(out, "  %d\t%s\n", f.Index, f.RawURL)
		fmt.Fprintf(out, "  \t%s\n", f.Message)
	}
}
