package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/req2test/internal/config"
	"github.com/jonathan/req2test/internal/observability"
	"github.com/jonathan/req2test/internal/parsing"
)

var parseCommand = &cobra.Command{
	Use:   "parse [requirement...]",
	Short: "Parse requirement sentences into structured JSON",
	Long: `Parses each requirement sentence into a {feature, conditions, expected, original_text}
record and writes the array as JSON.

Sentences are taken from the arguments, or from --input (one per line, blank lines skipped).
Use --output - to print the JSON instead of writing a file.`,
	RunE: runParse,
}

var (
	parseInput  string
	parseOutput string
)

func init() {
	parseCommand.Flags().StringVarP(&parseInput, "input", "i", "", "Text file with one requirement per line")
	parseCommand.Flags().StringVarP(&parseOutput, "output", "o", "", "Structured requirements JSON path (- for stdout)")

	rootCmd.AddCommand(parseCommand)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, func(c *config.Config) {
		override(cmd, "input", &c.Input, parseInput)
		override(cmd, "output", &c.RequirementsJSON, parseOutput)
	})
	if err != nil {
		return err
	}

	texts := args
	if len(texts) == 0 {
		if cfg.Input == "" {
			return fmt.Errorf("provide requirement sentences as arguments or via --input")
		}
		texts, err = parsing.LoadRequirementLines(cfg.Input)
		if err != nil {
			return err
		}
	}

	reqs := parsing.ParseMany(texts)
	logger.Debug("parsed requirements", zap.Int("count", len(reqs)))

	out := cmd.OutOrStdout()
	if cfg.RequirementsJSON == "-" {
		data, err := parsing.MarshalRequirements(reqs)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	if err := parsing.SaveRequirements(cfg.RequirementsJSON, reqs); err != nil {
		return err
	}
	if cfg.Verbose {
		observability.NewPrinter(out).PrintRequirements(reqs)
	}
	_, _ = fmt.Fprintf(out, "Saved %d structured requirements to %s\n", len(reqs), cfg.RequirementsJSON)
	return nil
}
