package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/req2test/internal/config"
	"github.com/jonathan/req2test/internal/pipeline"
	"github.com/jonathan/req2test/internal/watch"
)

var watchCommand = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate per-feature tests whenever the requirements file changes",
	Long: `Watches the --input requirements file. Each time it is saved the file is parsed again,
the structured JSON is rewritten and one test file per feature is regenerated. With --execute
the tests are also run after every change.`,
	RunE: runWatch,
}

var (
	watchInput     string
	watchOutputDir string
	watchExecute   bool
	watchDebounce  time.Duration
)

func init() {
	watchCommand.Flags().StringVarP(&watchInput, "input", "i", "", "Text file with one requirement per line")
	watchCommand.Flags().StringVarP(&watchOutputDir, "output-dir", "o", "", "Directory for generated test packages")
	watchCommand.Flags().BoolVar(&watchExecute, "execute", false, "Run the tests after each regeneration")
	watchCommand.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before regenerating")

	rootCmd.AddCommand(watchCommand)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, func(c *config.Config) {
		override(cmd, "input", &c.Input, watchInput)
		override(cmd, "output-dir", &c.OutputDir, watchOutputDir)
	})
	if err != nil {
		return err
	}
	if cfg.Input == "" {
		return fmt.Errorf("--input is required")
	}

	handler := regenerate(cfg, watchExecute, cmd)
	w, err := watch.New(cfg.Input, handler, watch.WithDebounce(watchDebounce), watch.WithLogger(logger))
	if err != nil {
		return err
	}

	// initial generation so the output reflects the file before the first edit
	if err := handler(cmd.Context(), w.Path()); err != nil {
		logger.Warn("initial generation failed", zap.Error(err))
	}
	return w.Run(cmd.Context())
}

// regenerate builds the handler that re-runs the pipeline for a changed requirements file.
func regenerate(cfg config.Config, execute bool, cmd *cobra.Command) watch.Handler {
	return func(ctx context.Context, path string) error {
		result, err := pipeline.RunPipeline(ctx, pipeline.RunOptions{
			InputPath:      path,
			StructuredPath: cfg.RequirementsJSON,
			OutputDir:      cfg.OutputDir,
			ModulePath:     cfg.ModulePath,
			PerFeature:     true,
			Lenient:        cfg.Lenient,
			Execute:        execute,
			ReportType:     reportType(cfg),
			ReportsDir:     cfg.ReportsDir,
			Timeout:        cfg.Timeout(),
			GoBinary:       cfg.GoBinary,
			AllureBinary:   cfg.AllureBinary,
			Out:            cmd.OutOrStdout(),
			Logger:         logger,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "[%s] regenerated %d test file(s) from %d requirements\n",
			time.Now().Format(time.TimeOnly), len(result.Files), len(result.Requirements))
		if result.Run != nil {
			_, _ = fmt.Fprintf(out, "  %s (exit code %d)\n", result.Run.Message, result.Run.ExitCode)
		}
		return nil
	}
}
