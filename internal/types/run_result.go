package types

// ReportType identifies the artifact produced by a test execution.
type ReportType string

const (
	ReportConsole ReportType = "console"
	ReportHTML    ReportType = "html"
	ReportJSON    ReportType = "json"
	ReportAllure  ReportType = "allure"
)

// Label returns the display name of the report type.
func (r ReportType) Label() string {
	switch r {
	case ReportHTML:
		return "HTML"
	case ReportJSON:
		return "JSON"
	case ReportAllure:
		return "Allure"
	default:
		return "Console"
	}
}

// Exit codes reported by the execution collaborator.
const (
	ExitAllPassed        = 0
	ExitSomeFailed       = 1
	ExitNoTestsCollected = 5
)

// TestSummary aggregates the outcome of one test run.
type TestSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Skipped  int     `json:"skipped"`
	Duration float64 `json:"duration"` // seconds
}

// TestCaseResult is the outcome of a single test function.
type TestCaseResult struct {
	Package  string  `json:"package"`
	Name     string  `json:"name"`
	Outcome  string  `json:"outcome"` // passed, failed, skipped
	Duration float64 `json:"duration"`
	Output   string  `json:"output,omitempty"`
}

// JSONReport is the JSON summary artifact written for ReportJSON runs.
type JSONReport struct {
	Created  string           `json:"created"`
	ExitCode int              `json:"exit_code"`
	Summary  TestSummary      `json:"summary"`
	Tests    []TestCaseResult `json:"tests"`
}

// RunResult is the record returned for every test execution, successful or not.
type RunResult struct {
	Timestamp  string     `json:"timestamp,omitempty"`
	ExitCode   int        `json:"exit_code"`
	Success    bool       `json:"success"`
	Stdout     string     `json:"stdout,omitempty"`
	Stderr     string     `json:"stderr,omitempty"`
	ReportType ReportType `json:"report_type,omitempty"`
	Message    string     `json:"message,omitempty"`
	Error      string     `json:"error,omitempty"`

	Summary *TestSummary `json:"summary,omitempty"`

	HTMLReportPath          string      `json:"html_report_path,omitempty"`
	JSONReportPath          string      `json:"json_report_path,omitempty"`
	JSONData                *JSONReport `json:"json_data,omitempty"`
	AllureResultsDir        string      `json:"allure_results_dir,omitempty"`
	AllureReportDir         string      `json:"allure_report_dir,omitempty"`
	AllureGenerationSuccess bool        `json:"allure_generation_success,omitempty"`
}
