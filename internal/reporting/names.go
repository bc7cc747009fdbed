// Package reporting renders test run results into the report artifacts written to the reports
// directory, and reads JSON reports back for the results API.
package reporting

import (
	"fmt"
	"path/filepath"
	"time"
)

// StampFormat is the timestamp layout embedded in artifact names.
const StampFormat = "20060102_150405"

// Stamp formats t for use in artifact names.
func Stamp(t time.Time) string {
	return t.Format(StampFormat)
}

// HTMLReportPath returns the HTML artifact path for a run stamp.
func HTMLReportPath(dir, stamp string) string {
	return filepath.Join(dir, fmt.Sprintf("test_report_%s.html", stamp))
}

// JSONReportPath returns the JSON artifact path for a run stamp.
func JSONReportPath(dir, stamp string) string {
	return filepath.Join(dir, fmt.Sprintf("test_report_%s.json", stamp))
}

// AllureResultsDir returns the directory holding per-test Allure result files for a run stamp.
func AllureResultsDir(dir, stamp string) string {
	return filepath.Join(dir, "allure-results-"+stamp)
}

// AllureReportDir returns the directory the Allure CLI generates its report into.
func AllureReportDir(dir, stamp string) string {
	return filepath.Join(dir, "allure-report-"+stamp)
}
