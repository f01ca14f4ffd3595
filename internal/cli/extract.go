package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/pocket-migrate/internal/config"
	"github.com/mrlokans/pocket-migrate/internal/logger"
	"github.com/mrlokans/pocket-migrate/internal/pocket"
	"github.com/mrlokans/pocket-migrate/internal/report"
)

func newExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Filter Pocket export files down to unread links",
		Long: `Reads the Pocket export CSVs, keeps the rows whose status is "unread" and
writes them to a normalized CSV (title,url,time_added,tags,status,source_file).

Missing files are skipped. Rows with fewer than five fields are skipped with a
warning. No output file is written when nothing matched.`,
		Example: `  pocket-migrate extract
  pocket-migrate extract --dir ~/Downloads/pocket --files part_000000.csv,part_000001.csv
  pocket-migrate extract --output unread.csv`,
		Args: cobra.NoArgs,
		RunE: runExtract,
	}

	cmd.Flags().String("dir", config.DefaultPocketDir, "Directory holding the Pocket export files")
	cmd.Flags().String("files", config.DefaultPocketFiles, "Comma-separated export file names, in processing order")
	cmd.Flags().StringP("output", "o", config.DefaultUnreadOutput, "Where to write the unread links")
	cmd.Flags().String("status", config.DefaultStatus, "Status value a row must have to be kept")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Extracting unread links from Pocket exports...")
	fmt.Fprintln(out, strings.Repeat("=", 50))

	extractor := pocket.NewExtractor(cfg.Import.Status, log)
	result := extractor.Extract(cfg.PocketPaths())

	if result.Total() > 0 {
		if err := pocket.WriteUnreadFile(cfg.Pocket.Output, result.Links); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfg.Pocket.Output, err)
		}
		log.Info("unread links written",
			logger.String("file", cfg.Pocket.Output),
			logger.Int("count", result.Total()),
		)
	}

	report.NewPrinter(out).Extraction(result, cfg.Pocket.Output)
	fmt.Fprintf(out, "\n🎯 Summary: %d unread links extracted\n", result.Total())
	return nil
}
