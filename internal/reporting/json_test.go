package reporting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/req2test/internal/types"
)

func sampleReport(created string, passed, failed int) types.JSONReport {
	exit := types.ExitAllPassed
	if failed > 0 {
		exit = types.ExitSomeFailed
	}
	return types.JSONReport{
		Created:  created,
		ExitCode: exit,
		Summary: types.TestSummary{
			Total:    passed + failed,
			Passed:   passed,
			Failed:   failed,
			Duration: float64(passed+failed) / 10,
		},
	}
}

func TestMarshalReport(t *testing.T) {
	data, err := MarshalReport(sampleReport("2026-10-17T12:00:00Z", 2, 0))
	require.NoError(t, err)

	assert.Contains(t, string(data), `"tests": []`)
	assert.Contains(t, string(data), `"total": 2`)
}

func TestMarshalReport_RejectsInvalid(t *testing.T) {
	report := sampleReport("x", 1, 0)
	report.Tests = []types.TestCaseResult{{Package: "p", Name: "TestX", Outcome: "exploded"}}

	_, err := MarshalReport(report)
	var reportErr *ReportError
	require.ErrorAs(t, err, &reportErr)
	assert.Contains(t, err.Error(), "does not match schema")
}

func TestWriteReadJSON(t *testing.T) {
	path := JSONReportPath(t.TempDir(), "20261017_120000")
	report := sampleReport("2026-10-17T12:00:00Z", 1, 1)
	report.Tests = []types.TestCaseResult{
		{Package: "generatedtests/login", Name: "TestLogin", Outcome: "passed", Duration: 0.1},
		{Package: "generatedtests/login", Name: "TestLogin_2", Outcome: "failed", Duration: 0.1, Output: "boom\n"},
	}

	require.NoError(t, WriteJSON(path, report))

	got, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, report, *got)
}

func TestReadJSON_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_report_bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"created": "x"}`), 0644))

	_, err := ReadJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON report")

	_, err = ReadJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
