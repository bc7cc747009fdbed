package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/req2test/internal/config"
	"github.com/jonathan/req2test/internal/observability"
	"github.com/jonathan/req2test/internal/parsing"
	"github.com/jonathan/req2test/internal/synthesis"
)

var generateCommand = &cobra.Command{
	Use:   "generate",
	Short: "Synthesize Go tests from structured requirements JSON",
	Long: `Reads a structured requirements JSON file and writes Go test stubs under the output
directory: one file for the whole batch, or one per feature with --per-feature.

Records with missing fields are skipped and reported unless --lenient fills them with defaults.`,
	RunE: runGenerate,
}

var (
	generateRequirements string
	generateOutputDir    string
	generateName         string
	generatePerFeature   bool
	generateLenient      bool
)

func init() {
	generateCommand.Flags().StringVarP(&generateRequirements, "requirements", "r", "", "Structured requirements JSON file")
	generateCommand.Flags().StringVarP(&generateOutputDir, "output-dir", "o", "", "Directory for generated test packages")
	generateCommand.Flags().StringVarP(&generateName, "name", "n", "", "Batch file name (defaults to a timestamp)")
	generateCommand.Flags().BoolVar(&generatePerFeature, "per-feature", false, "Write one test file per feature")
	generateCommand.Flags().BoolVar(&generateLenient, "lenient", false, "Fill missing requirement fields with defaults")

	rootCmd.AddCommand(generateCommand)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, func(c *config.Config) {
		override(cmd, "requirements", &c.RequirementsJSON, generateRequirements)
		override(cmd, "output-dir", &c.OutputDir, generateOutputDir)
		override(cmd, "per-feature", &c.PerFeature, generatePerFeature)
		override(cmd, "lenient", &c.Lenient, generateLenient)
	})
	if err != nil {
		return err
	}

	reqs, err := parsing.LoadRequirements(cfg.RequirementsJSON)
	if err != nil {
		return err
	}

	synth, err := synthesis.New(synthesis.Config{
		OutputDir:  cfg.OutputDir,
		Lenient:    cfg.Lenient,
		ModulePath: cfg.ModulePath,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	var paths []string
	var synthErr error
	if cfg.PerFeature {
		paths, synthErr = synth.SynthesizeByFeature(reqs)
	} else {
		name := generateName
		if name == "" {
			name = synth.DefaultFileName()
		}
		_, synthErr = synth.SynthesizeFile(reqs, name)
		paths = []string{synth.FilePath(name)}
	}

	var batchErr *synthesis.BatchError
	if synthErr != nil && !errors.As(synthErr, &batchErr) {
		return synthErr
	}
	if synthErr != nil {
		logger.Warn("some requirements were skipped", zap.Error(synthErr))
	}

	out := cmd.OutOrStdout()
	observability.NewPrinter(out).PrintGeneratedFiles(cfg.OutputDir, paths)
	_, _ = fmt.Fprintf(out, "Run them with: cd %s && go test ./...\n", cfg.OutputDir)
	return nil
}
