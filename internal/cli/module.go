package cli

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hyperfolio/wallet-tracker/internal/config"
	"github.com/hyperfolio/wallet-tracker/internal/hyperliquid"
	"github.com/hyperfolio/wallet-tracker/internal/temporal"
)

// Module provides the CLI commands and the client they run against
var Module = fx.Module("cli",
	fx.Provide(
		config.LoadConfig,
		NewCLILogger,
		temporal.NewClock,
		NewHyperliquidClient,
	),
	fx.Invoke(RunCLI),
)

// NewCLILogger builds a quiet logger for command-line use. Client
// internals still log, but at error level only so command output stays
// parseable.
func NewCLILogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// NewHyperliquidClient builds the API client from configuration
func NewHyperliquidClient(cfg *config.Config, clock temporal.Clock, logger *zap.Logger) *hyperliquid.Client {
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Hyperliquid.RequestTimeout) * time.Second,
	}
	return hyperliquid.NewClient(cfg.Hyperliquid, httpClient, clock, logger)
}

// RunCLI executes the cobra CLI with fx dependencies
func RunCLI(client *hyperliquid.Client, shutdowner fx.Shutdowner) {
	rootCmd := &cobra.Command{
		Use:          "walletctl",
		Short:        "Query Hyperliquid wallet data from the command line",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newSummaryCmd(client),
		newStatsCmd(client),
		newEquityCmd(client),
		newFillsCmd(client),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		shutdowner.Shutdown(fx.ExitCode(1))
		return
	}

	shutdowner.Shutdown()
}
