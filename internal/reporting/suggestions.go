package reporting

import "github.com/jonathan/req2test/internal/types"

// SuggestImprovements returns follow-up suggestions for a run result.
func SuggestImprovements(result types.RunResult) []string {
	var suggestions []string

	if result.Success {
		suggestions = append(suggestions,
			"All tests are passing",
			"Consider adding more edge cases",
			"Review code coverage with go test -cover",
			"Monitor test performance trends",
		)
	} else {
		suggestions = append(suggestions,
			"Review failed tests and fix issues",
			"Check test data and assertions",
			"Look for common patterns in failures",
			"Consider t.Parallel() for faster feedback",
		)
	}

	switch result.ReportType {
	case types.ReportHTML:
		suggestions = append(suggestions, "Share the HTML report with team members")
	case types.ReportAllure:
		suggestions = append(suggestions, "Use Allure's test history to track flaky tests")
	}
	return suggestions
}
