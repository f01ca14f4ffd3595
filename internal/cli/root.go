package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pocket-migrate/internal/config"
	"github.com/mrlokans/pocket-migrate/internal/logger"
)

// NewRootCommand builds the pocket-migrate command tree.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "pocket-migrate",
		Short: "Move unread Pocket links into a Supabase table",
		Long: `pocket-migrate copies the unread part of a Pocket export into a Supabase
(PostgREST) table in two steps:

  pocket-migrate extract   filter the export CSVs down to unread links
  pocket-migrate import    send the unread links in batches, falling back to
                           one request per link when a batch is rejected

Settings come from environment variables (SUPABASE_URL, SUPABASE_ANON_KEY,
IMPORT_USER_ID, ...) and can be overridden with flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-pretty", true, "Human readable logs instead of JSON lines")
	root.PersistentFlags().String("journal", config.DefaultJournalPath, "Path to the SQLite run journal (empty disables it)")

	root.AddCommand(
		newExtractCommand(),
		newImportCommand(),
		newStubStoreCommand(),
		newRunsCommand(),
		newVersionCommand(version),
	)

	return root
}

// Execute runs the command tree until it finishes or the process is interrupted.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(version)
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return err
	}
	return nil
}

// loadConfig reads the environment with the command's explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pocket-migrate %s\n", version)
		},
	}
}
