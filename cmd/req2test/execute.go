package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/req2test/internal/config"
	"github.com/jonathan/req2test/internal/execution"
	"github.com/jonathan/req2test/internal/observability"
	"github.com/jonathan/req2test/internal/reporting"
	"github.com/jonathan/req2test/internal/types"
)

var executeCommand = &cobra.Command{
	Use:   "execute [test-file...]",
	Short: "Run generated tests and write a report",
	Long: `Runs go test -json over the generated test directory, or only over the packages holding
the given test files, and writes the requested report (console, html, json or allure).

The command fails when the run did not pass.`,
	RunE: runExecute,
}

var (
	executeTestDir      string
	executeReportType   string
	executeReportsDir   string
	executeTimeout      int
	executeGoBinary     string
	executeAllureBinary string
)

func init() {
	executeCommand.Flags().StringVarP(&executeTestDir, "test-dir", "d", "", "Directory holding generated test packages")
	executeCommand.Flags().StringVarP(&executeReportType, "report-type", "t", "", "Report type: console, html, json or allure")
	executeCommand.Flags().StringVar(&executeReportsDir, "reports-dir", "", "Directory for report artifacts")
	executeCommand.Flags().IntVar(&executeTimeout, "timeout", 0, "Test run timeout in seconds")
	executeCommand.Flags().StringVar(&executeGoBinary, "go-binary", "", "Go toolchain binary")
	executeCommand.Flags().StringVar(&executeAllureBinary, "allure-binary", "", "Allure CLI binary")

	rootCmd.AddCommand(executeCommand)
}

func runExecute(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, func(c *config.Config) {
		override(cmd, "test-dir", &c.OutputDir, executeTestDir)
		override(cmd, "report-type", &c.ReportType, executeReportType)
		override(cmd, "reports-dir", &c.ReportsDir, executeReportsDir)
		override(cmd, "timeout", &c.TimeoutSeconds, executeTimeout)
		override(cmd, "go-binary", &c.GoBinary, executeGoBinary)
		override(cmd, "allure-binary", &c.AllureBinary, executeAllureBinary)
	})
	if err != nil {
		return err
	}

	runner, err := execution.New(execution.Config{
		TestDir:      cfg.OutputDir,
		ReportsDir:   cfg.ReportsDir,
		GoBinary:     cfg.GoBinary,
		AllureBinary: cfg.AllureBinary,
		Timeout:      cfg.Timeout(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	result := runner.Run(cmd.Context(), reportType(cfg), args)
	return printRunResult(cmd.OutOrStdout(), result)
}

// printRunResult prints the console report, failures and suggestions for a run and turns an
// unsuccessful run into an error.
func printRunResult(out io.Writer, result types.RunResult) error {
	_, _ = fmt.Fprintln(out, reporting.GenerateConsoleReport(result))

	printer := observability.NewPrinter(out)
	if result.JSONData != nil && result.JSONData.Summary.Failed > 0 {
		printer.PrintFailures(result.JSONData.Tests)
	}
	printer.PrintSuggestions(reporting.SuggestImprovements(result))

	if !result.Success {
		if result.Error != "" {
			return fmt.Errorf("test run failed: %s", result.Error)
		}
		return fmt.Errorf("test run failed: %s", result.Message)
	}
	return nil
}
