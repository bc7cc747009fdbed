package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/req2test/internal/config"
	"github.com/jonathan/req2test/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run [requirement...]",
	Short: "Run the full pipeline: parse, save, synthesize and execute",
	Long: `Orchestrates the whole flow: requirement lines -> structured JSON -> Go tests -> go test run
-> report.

Requirement sentences come from the arguments or from --input. Configuration can be loaded from
a file using --config; command-line flags override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runInput        string
	runRequirements string
	runOutputDir    string
	runName         string
	runPerFeature   bool
	runLenient      bool
	runNoExecute    bool
	runReportType   string
	runReportsDir   string
	runTimeout      int
	runGoBinary     string
)

func init() {
	runCommand.Flags().StringVarP(&runInput, "input", "i", "", "Text file with one requirement per line")
	runCommand.Flags().StringVarP(&runRequirements, "requirements", "r", "", "Where to save structured requirements JSON")
	runCommand.Flags().StringVarP(&runOutputDir, "output-dir", "o", "", "Directory for generated test packages")
	runCommand.Flags().StringVarP(&runName, "name", "n", "", "Batch file name (defaults to a timestamp)")
	runCommand.Flags().BoolVar(&runPerFeature, "per-feature", false, "Write one test file per feature")
	runCommand.Flags().BoolVar(&runLenient, "lenient", false, "Fill missing requirement fields with defaults")
	runCommand.Flags().BoolVar(&runNoExecute, "no-execute", false, "Stop after generating tests")
	runCommand.Flags().StringVarP(&runReportType, "report-type", "t", "", "Report type: console, html, json or allure")
	runCommand.Flags().StringVar(&runReportsDir, "reports-dir", "", "Directory for report artifacts")
	runCommand.Flags().IntVar(&runTimeout, "timeout", 0, "Test run timeout in seconds")
	runCommand.Flags().StringVar(&runGoBinary, "go-binary", "", "Go toolchain binary")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, func(c *config.Config) {
		override(cmd, "input", &c.Input, runInput)
		override(cmd, "requirements", &c.RequirementsJSON, runRequirements)
		override(cmd, "output-dir", &c.OutputDir, runOutputDir)
		override(cmd, "per-feature", &c.PerFeature, runPerFeature)
		override(cmd, "lenient", &c.Lenient, runLenient)
		override(cmd, "report-type", &c.ReportType, runReportType)
		override(cmd, "reports-dir", &c.ReportsDir, runReportsDir)
		override(cmd, "timeout", &c.TimeoutSeconds, runTimeout)
		override(cmd, "go-binary", &c.GoBinary, runGoBinary)
	})
	if err != nil {
		return err
	}
	if len(args) == 0 && cfg.Input == "" {
		return fmt.Errorf("provide requirement sentences as arguments or via --input")
	}

	out := cmd.OutOrStdout()
	opts := pipeline.RunOptions{
		InputPath:      cfg.Input,
		Texts:          args,
		StructuredPath: cfg.RequirementsJSON,
		OutputDir:      cfg.OutputDir,
		ModulePath:     cfg.ModulePath,
		FileName:       runName,
		PerFeature:     cfg.PerFeature,
		Lenient:        cfg.Lenient,
		Execute:        !runNoExecute,
		ReportType:     reportType(cfg),
		ReportsDir:     cfg.ReportsDir,
		Timeout:        cfg.Timeout(),
		GoBinary:       cfg.GoBinary,
		AllureBinary:   cfg.AllureBinary,
		Verbose:        cfg.Verbose,
		Out:            out,
		Logger:         logger,
		OnProgress: func(e pipeline.ProgressEvent) {
			logger.Info(e.Message, zap.String("step", e.Step), zap.String("category", e.Category))
		},
	}

	result, err := pipeline.RunPipeline(cmd.Context(), opts)
	if err != nil {
		if len(result.Blocked) > 0 {
			logger.Warn("pipeline stopped early", zap.Strings("not_run", result.Blocked))
		}
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if result.Run == nil {
		_, _ = fmt.Fprintf(out, "Generated %d test file(s) under %s\n", len(result.Files), cfg.OutputDir)
		return nil
	}
	return printRunResult(out, *result.Run)
}
