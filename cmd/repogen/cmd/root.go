package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dangerouslaser/repogen/internal/config"
	"github.com/dangerouslaser/repogen/internal/logger"
	"github.com/dangerouslaser/repogen/internal/service/generator"
	"github.com/dangerouslaser/repogen/internal/version"
)

var (
	// outputDir overrides the configured publish directory.
	outputDir string

	// addonDir overrides the configured repository addon directory.
	addonDir string

	// concurrency overrides the configured worker count.
	concurrency int

	// logLevel sets the minimum level for console output.
	logLevel string

	// rootCmd represents the base command for generating the repository.
	rootCmd = &cobra.Command{
		Use:   "repogen [config-file]",
		Short: "Generate a Kodi addon repository from upstream releases",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			configPath := config.DefaultConfigFilename
			if len(args) == 1 {
				configPath = args[0]
			}

			options := &generator.Options{
				ConfigPath:  configPath,
				OutputDir:   outputDir,
				AddonDir:    addonDir,
				Concurrency: concurrency,
			}

			return generator.Run(ctx, options)
		},
	}
)

// Execute runs the repogen CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "publish directory (overrides configuration)")
	rootCmd.Flags().StringVarP(&addonDir, "addon-dir", "a", "", "repository addon directory (overrides configuration)")
	rootCmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "number of addons acquired in parallel")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "minimum log level (debug, info, warn, error)")
}
