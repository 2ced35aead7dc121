package commands

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"slc-balance/internal/components/telemetry"
	"slc-balance/pkg/serviceutil"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	dumpDir    string
)

var otelProviders telemetry.Otel

var rootCmd = &cobra.Command{
	Use:   "slc-cli",
	Short: "slc-cli signs in to the Student Loans Company portal and reads your loan balance.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		var err error
		otelProviders, err = telemetry.SetupFromEnv(cmd.Context(), "slc-cli")
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no telemetry.json5 found, tracing disabled")
			return
		}
		if err != nil {
			slog.Warn("failed to set up telemetry", "err", err)
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func shutdownTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	err := otelProviders.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to shut down telemetry", "err", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "The config file holding credentials.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	rootCmd.PersistentFlags().StringVar(&dumpDir, "dump", "", "Write every http exchange (credentials redacted) under this directory, ex. <dev_state>/resty (only <dev_state> paths are cleared).")
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	shutdownTelemetry()
	if err != nil {
		serviceutil.Fatal("slc-cli", err)
	}
}
