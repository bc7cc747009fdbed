// Package execution runs generated tests with `go test -json` and turns the outcome into a
// run result plus the requested report artifact.
package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/req2test/internal/reporting"
	"github.com/jonathan/req2test/internal/types"
)

const (
	// DefaultTimeout bounds a single `go test` run
	DefaultTimeout = 300 * time.Second
	// DefaultWaitDelay is how long output pipes stay open after the process is killed
	DefaultWaitDelay = 5 * time.Second
	// AllureTimeout bounds report generation by the allure CLI
	AllureTimeout = 120 * time.Second

	// ErrTimedOut is the error text recorded on a run that exceeded its timeout
	ErrTimedOut = "test execution timed out"
)

// Config configures a Runner.
type Config struct {
	TestDir      string
	ReportsDir   string
	GoBinary     string
	AllureBinary string
	Timeout      time.Duration
	WaitDelay    time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
}

// Runner executes generated test packages.
type Runner struct {
	cfg    Config
	logger *zap.Logger
}

// outcome is what one `go test` invocation produced.
type outcome struct {
	exitCode int
	stdout   string
	stderr   string
	parsed   ParsedRun
}

// New creates a Runner and makes sure the test and reports directories exist.
func New(cfg Config) (*Runner, error) {
	if cfg.TestDir == "" {
		cfg.TestDir = "generated_tests"
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "reports"
	}
	if cfg.GoBinary == "" {
		cfg.GoBinary = "go"
	}
	if cfg.AllureBinary == "" {
		cfg.AllureBinary = "allure"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.WaitDelay <= 0 {
		cfg.WaitDelay = DefaultWaitDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	for _, dir := range []string{cfg.TestDir, cfg.ReportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return &Runner{cfg: cfg, logger: cfg.Logger}, nil
}

// Run executes the tests in files, or every package under the test directory when files is
// empty, and writes the artifact for reportType. Failures of any kind are reported in the
// returned result; Run never panics on a bad environment and has no error return.
func (r *Runner) Run(ctx context.Context, reportType types.ReportType, files []string) types.RunResult {
	start := r.cfg.Now()
	stamp := reporting.Stamp(start)
	result := types.RunResult{
		Timestamp:  start.Format(time.RFC3339),
		ReportType: reportType,
	}

	targets, err := r.targets(files)
	if err != nil {
		return failed(result, err)
	}

	out, err := r.goTest(ctx, targets)
	if err != nil {
		return failed(result, err)
	}

	result.ExitCode = out.exitCode
	result.Success = out.exitCode == types.ExitAllPassed
	result.Stdout = out.stdout
	result.Stderr = out.stderr
	result.Message = StatusMessage(out.exitCode)
	summary := out.parsed.Summary
	result.Summary = &summary

	r.logger.Info("test run finished",
		zap.Int("exit_code", out.exitCode),
		zap.Int("total", summary.Total),
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Float64("duration", summary.Duration))

	switch reportType {
	case types.ReportHTML:
		r.writeHTML(&result, stamp, out)
	case types.ReportJSON:
		r.writeJSON(&result, stamp, out)
	case types.ReportAllure:
		r.writeAllure(ctx, &result, stamp, start, out)
	}
	return result
}

// goTest runs `go test -json` over targets under the configured timeout.
func (r *Runner) goTest(ctx context.Context, targets []string) (*outcome, error) {
	if _, err := exec.LookPath(r.cfg.GoBinary); err != nil {
		return nil, &ToolNotFoundError{Tool: r.cfg.GoBinary, Cause: err}
	}

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	args := append([]string{"test", "-json", "-count=1"}, targets...)
	cmd := exec.CommandContext(runCtx, r.cfg.GoBinary, args...)
	cmd.Dir = r.cfg.TestDir
	cmd.WaitDelay = r.cfg.WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running tests",
		zap.String("dir", r.cfg.TestDir),
		zap.Strings("args", args),
		zap.Duration("timeout", r.cfg.Timeout))

	runErr := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		r.logger.Warn("test run timed out", zap.Duration("timeout", r.cfg.Timeout))
		return nil, errors.New(ErrTimedOut)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("failed to run %s: %w", r.cfg.GoBinary, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	parsed, err := ParseEvents(&stdout)
	if err != nil {
		r.logger.Warn("test output could not be fully decoded", zap.Error(err))
	}
	if exitCode == types.ExitAllPassed && parsed.Summary.Total == 0 {
		exitCode = types.ExitNoTestsCollected
	}

	text := parsed.Output
	if text == "" {
		text = stdout.String()
	}
	return &outcome{
		exitCode: exitCode,
		stdout:   text,
		stderr:   stderr.String(),
		parsed:   parsed,
	}, nil
}

// targets maps test files to the package patterns passed to `go test`.
func (r *Runner) targets(files []string) ([]string, error) {
	if len(files) == 0 {
		return []string{"./..."}, nil
	}

	root, err := filepath.Abs(r.cfg.TestDir)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var targets []string
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		if !strings.HasSuffix(abs, "_test.go") {
			return nil, &TargetError{Path: f, Message: "not a Go test file"}
		}

		rel, err := filepath.Rel(root, filepath.Dir(abs))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, &TargetError{Path: f, Message: "outside the test directory " + r.cfg.TestDir}
		}

		target := "./" + filepath.ToSlash(rel)
		if rel == "." {
			target = "."
		}
		if !seen[target] {
			seen[target] = true
			targets = append(targets, target)
		}
	}
	return targets, nil
}

func (r *Runner) writeHTML(result *types.RunResult, stamp string, out *outcome) {
	path := reporting.HTMLReportPath(r.cfg.ReportsDir, stamp)
	page := reporting.Page{
		Title:     "Test Report",
		Timestamp: result.Timestamp,
		ExitCode:  out.exitCode,
		Message:   result.Message,
		Summary:   out.parsed.Summary,
		Tests:     out.parsed.Tests,
	}
	if err := reporting.WriteHTML(path, page); err != nil {
		r.logger.Warn("failed to write HTML report", zap.Error(err))
		return
	}
	result.HTMLReportPath = path
}

func (r *Runner) writeJSON(result *types.RunResult, stamp string, out *outcome) {
	path := reporting.JSONReportPath(r.cfg.ReportsDir, stamp)
	report := types.JSONReport{
		Created:  result.Timestamp,
		ExitCode: out.exitCode,
		Summary:  out.parsed.Summary,
		Tests:    out.parsed.Tests,
	}
	if err := reporting.WriteJSON(path, report); err != nil {
		r.logger.Warn("failed to write JSON report", zap.Error(err))
		return
	}
	result.JSONReportPath = path
	result.JSONData = &report
}

func (r *Runner) writeAllure(ctx context.Context, result *types.RunResult, stamp string, start time.Time, out *outcome) {
	resultsDir := reporting.AllureResultsDir(r.cfg.ReportsDir, stamp)
	if _, err := reporting.WriteAllureResults(resultsDir, out.parsed.Tests, start); err != nil {
		r.logger.Warn("failed to write Allure results", zap.Error(err))
		return
	}
	result.AllureResultsDir = resultsDir

	genCtx, cancel := context.WithTimeout(ctx, AllureTimeout)
	defer cancel()

	reportDir := reporting.AllureReportDir(r.cfg.ReportsDir, stamp)
	if _, err := reporting.GenerateAllure(genCtx, r.cfg.AllureBinary, resultsDir, reportDir); err != nil {
		r.logger.Warn("allure report generation failed", zap.Error(err))
		return
	}
	result.AllureReportDir = reportDir
	result.AllureGenerationSuccess = true
}

func failed(result types.RunResult, err error) types.RunResult {
	result.Success = false
	result.ExitCode = -1
	result.Error = err.Error()
	return result
}
