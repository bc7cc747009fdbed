package reporting

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/req2test/internal/types"
)

// AllureResult is the subset of the Allure result file format written per test.
type AllureResult struct {
	UUID          string         `json:"uuid"`
	HistoryID     string         `json:"historyId"`
	Name          string         `json:"name"`
	FullName      string         `json:"fullName"`
	Status        string         `json:"status"`
	Stage         string         `json:"stage"`
	Start         int64          `json:"start"`
	Stop          int64          `json:"stop"`
	Labels        []AllureLabel  `json:"labels"`
	StatusDetails *StatusDetails `json:"statusDetails,omitempty"`
}

// AllureLabel is a name/value label on an Allure result.
type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StatusDetails carries failure output.
type StatusDetails struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

var allureStatus = map[string]string{
	"passed":  "passed",
	"failed":  "failed",
	"skipped": "skipped",
}

// NewAllureResult converts a test case into an Allure result. Tests are laid out back to back
// starting at start. The history ID is stable across runs so Allure can track a test over time.
func NewAllureResult(tc types.TestCaseResult, start time.Time) AllureResult {
	fullName := tc.Package + "." + tc.Name
	stop := start.Add(time.Duration(tc.Duration * float64(time.Second)))

	status, ok := allureStatus[tc.Outcome]
	if !ok {
		status = "unknown"
	}

	res := AllureResult{
		UUID:      uuid.NewString(),
		HistoryID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(fullName)).String(),
		Name:      tc.Name,
		FullName:  fullName,
		Status:    status,
		Stage:     "finished",
		Start:     start.UnixMilli(),
		Stop:      stop.UnixMilli(),
		Labels: []AllureLabel{
			{Name: "package", Value: tc.Package},
			{Name: "suite", Value: tc.Package},
			{Name: "framework", Value: "gotest"},
			{Name: "language", Value: "go"},
		},
	}
	if tc.Outcome == "failed" && tc.Output != "" {
		res.StatusDetails = &StatusDetails{
			Message: firstLine(tc.Output),
			Trace:   tc.Output,
		}
	}
	return res
}

// WriteAllureResults writes one <uuid>-result.json file per test into dir and returns the paths.
func WriteAllureResults(dir string, tests []types.TestCaseResult, start time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &ReportError{Path: dir, Message: "failed to create Allure results directory", Cause: err}
	}

	paths := make([]string, 0, len(tests))
	at := start
	for _, tc := range tests {
		res := NewAllureResult(tc, at)
		at = time.UnixMilli(res.Stop)

		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return paths, &ReportError{Message: "failed to encode Allure result", Cause: err}
		}
		path := filepath.Join(dir, res.UUID+"-result.json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, &ReportError{Path: path, Message: "failed to write Allure result", Cause: err}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// GenerateAllure runs `allure generate <resultsDir> -o <reportDir> --clean`.
func GenerateAllure(ctx context.Context, binary, resultsDir, reportDir string) (string, error) {
	if binary == "" {
		binary = "allure"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return "", &AllureError{Message: binary + " not found in PATH", Cause: err}
	}

	cmd := exec.CommandContext(ctx, binary, "generate", resultsDir, "-o", reportDir, "--clean")
	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), &AllureError{Message: "report generation failed", Output: out.String(), Cause: err}
	}
	return out.String(), nil
}

// firstLine returns the first output line that is not a go test RUN/PASS/FAIL marker.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "=== ") || strings.HasPrefix(t, "--- ") {
			continue
		}
		return t
	}
	return ""
}
