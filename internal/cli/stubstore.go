package cli

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mrlokans/pocket-migrate/internal/config"
	"github.com/mrlokans/pocket-migrate/internal/logger"
	"github.com/mrlokans/pocket-migrate/internal/stubstore"
)

func newStubStoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub-store",
		Short: "Serve an in-memory stand-in for the Supabase REST API",
		Long: `Starts a local server answering the two requests the importer makes, so an
import can be rehearsed without touching a real project. Rows live in memory
and are gone when the server stops.

Failures can be injected to watch the individual fallback at work.`,
		Example: `  pocket-migrate stub-store --api-key local
  pocket-migrate stub-store --reject-batch-over 1
  pocket-migrate stub-store --reject-url-containing example.org`,
		Args: cobra.NoArgs,
		RunE: runStubStore,
	}

	cmd.Flags().String("host", config.DefaultStubHost, "Host to listen on")
	cmd.Flags().IntP("port", "p", config.DefaultStubPort, "Port to listen on")
	cmd.Flags().String("api-key", "", "Require this apikey header (overrides SUPABASE_ANON_KEY)")
	cmd.Flags().Int("reject-batch-over", 0, "Answer 500 to requests with more rows than this (0 disables)")
	cmd.Flags().String("reject-url-containing", "", "Answer 400 to requests with a raw_url containing this")

	return cmd
}

func runStubStore(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	rejectOver, err := cmd.Flags().GetInt("reject-batch-over")
	if err != nil {
		return err
	}
	rejectURL, err := cmd.Flags().GetString("reject-url-containing")
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	controller := stubstore.NewController(stubstore.NewMemory(), stubstore.Options{
		APIKey:              cfg.Supabase.AnonKey,
		RejectBatchOver:     rejectOver,
		RejectURLContaining: rejectURL,
	}, log)

	addr := fmt.Sprintf("%s:%d", cfg.Stub.Host, cfg.Stub.Port)
	log.Info("starting stub store",
		logger.String("addr", addr),
		logger.Int("reject_batch_over", rejectOver),
		logger.String("reject_url_containing", rejectURL),
	)
	return stubstore.Serve(cmd.Context(), addr, stubstore.NewRouter(controller), log)
}
