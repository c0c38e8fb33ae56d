package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/codeshield-io/codeshield/internal/model"
	"github.com/codeshield-io/codeshield/internal/review"
	"github.com/codeshield-io/codeshield/internal/server"
	"github.com/codeshield-io/codeshield/pkg/shared/config"
	"github.com/codeshield-io/codeshield/pkg/shared/errors"
	"github.com/codeshield-io/codeshield/pkg/shared/logger"
)

// RunOptionsServe holds the arguments for the serve command.
type RunOptionsServe struct {
	Address string
}

var (
	AppConfig         *config.Config
	serveOptions      RunOptionsServe
	exampleServeUsage = `  # Serving on the configured address (":8080" by default)
  CODESHIELD_API_KEY=... codeshield serve

  # Serving on a specific address
  codeshield serve --address 127.0.0.1:9090`
)

// ServeCmd represents the serve command.
var ServeCmd = &cobra.Command{
	Use:                   "serve [--address/-a ADDR]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleServeUsage,
	Short:                 "Serves the analysis endpoint over HTTP",
	Long: `Serves POST /analyze (and /functions/v1/analyze-code) with CORS enabled.

When the model API key is missing the server still starts and answers every
analysis request with "AI service not configured".`,
	RunE: runServeCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	lg := logger.NewLogger(AppConfig, "core-serve")

	settings := config.ServerSettings(AppConfig)
	if serveOptions.Address != "" {
		settings.Address = serveOptions.Address
	}

	srv := server.New(lg, settings, newAnalyzer(lg, AppConfig))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		lg.Error("server stopped with an error", "error", err)
		return errors.NewCommandError(err, 1)
	}
	lg.Info("server stopped")
	return nil
}

// newAnalyzer returns the model client, or a nil interface when it cannot be configured.
func newAnalyzer(lg hclog.Logger, cfg *config.Config) review.Analyzer {
	client, err := model.New(lg, cfg)
	if err != nil {
		lg.Warn("model client is not configured, analysis requests will fail", "error", err)
		return nil
	}
	return client
}

func init() {
	ServeCmd.Flags().StringVarP(&serveOptions.Address, "address", "a", "", "Address to listen on, overrides server.address from the config.")
	ServeCmd.Flags().BoolP("help", "h", false, "Show help for the serve command.")
}
