// Package main provides the req2test CLI: requirement text in, executed Go tests out.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/req2test/internal/config"
	"github.com/jonathan/req2test/internal/logging"
)

var (
	configPath string
	verbose    bool

	// baseConfig holds file and environment values; commands layer their flags on top
	baseConfig config.Config
	logger     = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "req2test",
	Short: "Turn natural-language requirements into runnable Go tests",
	Long: `req2test parses plain-English requirement sentences into structured records,
synthesizes Go test stubs from them and runs the result with go test, producing
console, HTML, JSON or Allure reports.

Configuration is read from --config (JSON or YAML), then REQ2TEST_* environment
variables, then command-line flags. Later sources win.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Config{}
		if configPath != "" {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = *loaded
		}
		if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
			return err
		}
		baseConfig = cfg

		l, err := logging.New(verbose || cfg.Verbose)
		if err != nil {
			return err
		}
		logger = l
		if configPath != "" {
			logger.Debug("loaded config", zap.String("path", configPath))
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
