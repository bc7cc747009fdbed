package reporting

import (
	"encoding/json"
	"os"

	"github.com/jonathan/req2test/internal/schemas"
	"github.com/jonathan/req2test/internal/types"
)

// MarshalReport encodes a JSON report and checks it against the report schema.
func MarshalReport(report types.JSONReport) ([]byte, error) {
	if report.Tests == nil {
		report.Tests = []types.TestCaseResult{}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, &ReportError{Message: "failed to encode JSON report", Cause: err}
	}
	if err := schemas.ValidateReport(data); err != nil {
		return nil, &ReportError{Message: "JSON report does not match schema", Cause: err}
	}
	return append(data, '\n'), nil
}

// WriteJSON writes a JSON report to path.
func WriteJSON(path string, report types.JSONReport) error {
	data, err := MarshalReport(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &ReportError{Path: path, Message: "failed to write JSON report", Cause: err}
	}
	return nil
}

// ReadJSON reads and validates a JSON report.
func ReadJSON(path string) (*types.JSONReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReportError{Path: path, Message: "failed to read JSON report", Cause: err}
	}
	if err := schemas.ValidateReport(data); err != nil {
		return nil, &ReportError{Path: path, Message: "invalid JSON report", Cause: err}
	}

	var report types.JSONReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, &ReportError{Path: path, Message: "failed to decode JSON report", Cause: err}
	}
	return &report, nil
}
