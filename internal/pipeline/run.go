// Package pipeline provides the high-level orchestration from requirement text to an executed
// test run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/req2test/internal/execution"
	"github.com/jonathan/req2test/internal/observability"
	"github.com/jonathan/req2test/internal/parsing"
	"github.com/jonathan/req2test/internal/pipeline/steps"
	"github.com/jonathan/req2test/internal/synthesis"
	"github.com/jonathan/req2test/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	InputPath      string   // Text file with one requirement per line
	Texts          []string // Used instead of InputPath when set
	StructuredPath string   // Where structured requirements are saved; empty skips saving
	OutputDir      string
	ModulePath     string
	FileName       string // Batch file name; empty means timestamped
	PerFeature     bool
	Lenient        bool

	Execute      bool
	ReportType   types.ReportType
	ReportsDir   string
	Timeout      time.Duration
	GoBinary     string
	AllureBinary string

	Verbose    bool
	Out        io.Writer // Verbose output; defaults to stdout
	Logger     *zap.Logger
	OnProgress ProgressCallback
}

// Result holds everything the pipeline produced
type Result struct {
	Requirements   []types.Requirement
	StructuredPath string
	Files          []string
	Run            *types.RunResult
	Steps          []steps.StepResult
	// Blocked lists steps that never ran because a step they depend on did not complete
	Blocked []string
	// SkipErr lists requirements that were not synthesized; the run continues without them
	SkipErr error
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: steps.StepRegistry[step].Category,
			Message:  message,
			Content:  content,
		})
	}
}

// RunPipeline loads requirement text, parses it, writes the structured records, synthesizes
// tests and, when requested, executes them.
func RunPipeline(ctx context.Context, opts RunOptions) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	printer := observability.NewPrinter(out)
	tracker := steps.NewTracker()
	result := &Result{}

	run := func(step string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := tracker.Start(step); err != nil {
			return err
		}
		err := fn()
		res := tracker.Finish(step, err)
		logger.Debug("pipeline step finished",
			zap.String("step", step),
			zap.String("status", string(res.Status)),
			zap.Int64("duration_ms", res.Duration),
			zap.Strings("available", steps.GetAvailableSteps(tracker)))
		if err != nil {
			return fmt.Errorf("%s failed: %w", step, err)
		}
		return nil
	}
	defer func() {
		result.Steps = tracker.Results()
		result.Blocked = steps.GetBlockedSteps(tracker)
	}()

	// Step 1: Load requirement lines
	var texts []string
	err := run(steps.LoadRequirements, func() error {
		if len(opts.Texts) > 0 {
			texts = opts.Texts
			return nil
		}
		if opts.InputPath == "" {
			return errors.New("no requirements given: set an input file or texts")
		}
		var err error
		texts, err = parsing.LoadRequirementLines(opts.InputPath)
		return err
	})
	if err != nil {
		return result, err
	}
	emitProgress(&opts, steps.LoadRequirements, fmt.Sprintf("Loaded %d requirement lines", len(texts)), nil)

	// Step 2: Parse
	err = run(steps.ParseRequirements, func() error {
		result.Requirements = parsing.ParseMany(texts)
		return nil
	})
	if err != nil {
		return result, err
	}
	emitProgress(&opts, steps.ParseRequirements, fmt.Sprintf("Parsed %d requirements", len(result.Requirements)), result.Requirements)
	if opts.Verbose {
		printer.PrintRequirements(result.Requirements)
	}

	// Step 3: Save structured records
	if opts.StructuredPath != "" {
		err := run(steps.SaveStructured, func() error {
			return parsing.SaveRequirements(opts.StructuredPath, result.Requirements)
		})
		if err != nil {
			return result, err
		}
		result.StructuredPath = opts.StructuredPath
		emitProgress(&opts, steps.SaveStructured, "Saved structured requirements to "+opts.StructuredPath, nil)
	} else {
		tracker.Skip(steps.SaveStructured)
	}

	// Step 4: Synthesize
	err = run(steps.SynthesizeTests, func() error {
		synth, err := synthesis.New(synthesis.Config{
			OutputDir:  opts.OutputDir,
			Lenient:    opts.Lenient,
			ModulePath: opts.ModulePath,
			Logger:     logger,
		})
		if err != nil {
			return err
		}

		var synthErr error
		if opts.PerFeature {
			result.Files, synthErr = synth.SynthesizeByFeature(result.Requirements)
		} else {
			name := opts.FileName
			if name == "" {
				name = synth.DefaultFileName()
			}
			_, synthErr = synth.SynthesizeFile(result.Requirements, name)
			if synthErr == nil || isSkip(synthErr) {
				result.Files = []string{synth.FilePath(name)}
			}
		}
		if isSkip(synthErr) {
			result.SkipErr = synthErr
			logger.Warn("some requirements were skipped", zap.Error(synthErr))
			return nil
		}
		return synthErr
	})
	if err != nil {
		return result, err
	}
	emitProgress(&opts, steps.SynthesizeTests, fmt.Sprintf("Generated %d test file(s)", len(result.Files)), result.Files)
	if opts.Verbose {
		printer.PrintGeneratedFiles(opts.OutputDir, result.Files)
	}

	// Step 5: Execute
	if !opts.Execute {
		tracker.Skip(steps.ExecuteTests)
		return result, nil
	}
	err = run(steps.ExecuteTests, func() error {
		runner, err := execution.New(execution.Config{
			TestDir:      opts.OutputDir,
			ReportsDir:   opts.ReportsDir,
			GoBinary:     opts.GoBinary,
			AllureBinary: opts.AllureBinary,
			Timeout:      opts.Timeout,
			Logger:       logger,
		})
		if err != nil {
			return err
		}
		runResult := runner.Run(ctx, opts.ReportType, result.Files)
		result.Run = &runResult
		return nil
	})
	if err != nil {
		return result, err
	}
	emitProgress(&opts, steps.ExecuteTests, result.Run.Message, result.Run)

	return result, nil
}

// isSkip reports whether err only lists skipped records.
func isSkip(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(*synthesis.BatchError); ok {
		return true
	}
	// errors.Join of several batch errors from per-feature synthesis
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return false
	}
	for _, e := range joined.Unwrap() {
		if _, ok := e.(*synthesis.BatchError); !ok {
			return false
		}
	}
	return true
}
