package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/req2test/internal/config"
	"github.com/jonathan/req2test/internal/server"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the test results HTTP API",
	Long: `Serves the latest run, run history and trends read from the JSON reports in the reports
directory. Stops gracefully on interrupt.`,
	RunE: runServe,
}

var (
	servePort       int
	serveReportsDir string
)

func init() {
	serveCommand.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on")
	serveCommand.Flags().StringVar(&serveReportsDir, "reports-dir", "", "Directory holding JSON report artifacts")

	rootCmd.AddCommand(serveCommand)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, func(c *config.Config) {
		override(cmd, "port", &c.Port, servePort)
		override(cmd, "reports-dir", &c.ReportsDir, serveReportsDir)
	})
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Port:       cfg.Port,
		ReportsDir: cfg.ReportsDir,
		Logger:     logger,
	})
	return srv.Start(cmd.Context())
}
