package reporting

import (
	"errors"
	"fmt"
)

// ErrNoReports is returned when the reports directory holds no JSON reports.
var ErrNoReports = errors.New("no test reports found")

// ReportError represents a failure rendering or writing a report artifact
type ReportError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ReportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("report %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("report %s: %s", e.Path, e.Message)
}

func (e *ReportError) Unwrap() error {
	return e.Cause
}

// AllureError represents a failure running the allure command line
type AllureError struct {
	Message string
	Output  string
	Cause   error
}

func (e *AllureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("allure: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("allure: %s", e.Message)
}

func (e *AllureError) Unwrap() error {
	return e.Cause
}
