package reporting

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/req2test/internal/types"
)

var (
	colorSuccess = lipgloss.Color("#8BC34A")
	colorFailure = lipgloss.Color("#e53935")
	colorMuted   = lipgloss.Color("#6a737d")

	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(colorFailure).Bold(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// GenerateConsoleReport formats a run result for the terminal.
func GenerateConsoleReport(result types.RunResult) string {
	var lines []string
	field := func(label, value string) {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-14s", label+":"))+" "+value)
	}

	lines = append(lines, titleStyle.Render("TEST EXECUTION REPORT"), "")

	timestamp := result.Timestamp
	if timestamp == "" {
		timestamp = "N/A"
	}
	field("Timestamp", timestamp)
	field("Report Type", result.ReportType.Label())
	if result.Success {
		field("Success", successStyle.Render("Yes"))
	} else {
		field("Success", failureStyle.Render("No"))
	}
	field("Exit Code", fmt.Sprintf("%d", result.ExitCode))

	var artifacts []string
	if result.HTMLReportPath != "" {
		artifacts = append(artifacts, "HTML Report:   "+result.HTMLReportPath)
	}
	if result.AllureReportDir != "" {
		artifacts = append(artifacts, "Allure Report: "+result.AllureReportDir+"/index.html")
	} else if result.AllureResultsDir != "" {
		artifacts = append(artifacts, "Allure Results: "+result.AllureResultsDir)
	}
	if result.JSONReportPath != "" {
		artifacts = append(artifacts, "JSON Report:   "+result.JSONReportPath)
	}
	if len(artifacts) > 0 {
		lines = append(lines, "")
		lines = append(lines, artifacts...)
	}

	summary := result.Summary
	if summary == nil && result.JSONData != nil {
		summary = &result.JSONData.Summary
	}
	if summary != nil {
		lines = append(lines,
			"",
			titleStyle.Render("TEST SUMMARY"),
			fmt.Sprintf("  Total:    %d", summary.Total),
			fmt.Sprintf("  Passed:   %d", summary.Passed),
			fmt.Sprintf("  Failed:   %d", summary.Failed),
			fmt.Sprintf("  Skipped:  %d", summary.Skipped),
			fmt.Sprintf("  Duration: %.2fs", summary.Duration),
		)
	}

	if result.Message != "" {
		style := successStyle
		if !result.Success {
			style = failureStyle
		}
		lines = append(lines, "", "Status: "+style.Render(result.Message))
	}
	if result.Error != "" {
		lines = append(lines, "", "Error: "+failureStyle.Render(result.Error))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}
