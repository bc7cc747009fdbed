package reporting

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jonathan/req2test/internal/types"
)

// Page is the content of an HTML report.
type Page struct {
	Title     string
	Timestamp string
	ExitCode  int
	Message   string
	Summary   types.TestSummary
	Tests     []types.TestCaseResult
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 960px; color: #101f38; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; }
th, td { border: 1px solid #dce0e5; padding: 0.4rem 0.6rem; text-align: left; }
th { background: #f4f5f6; }
pre { background: #f4f5f6; padding: 0.75rem; overflow-x: auto; }
.status { padding: 0.5rem 0.75rem; border-radius: 4px; font-weight: 600; }
.status.passed { background: #e8f5e9; color: #2e7d32; }
.status.failed { background: #ffebee; color: #c62828; }
</style>
</head>
<body>
<p class="status {{.StatusClass}}">{{.Message}}</p>
{{.Body}}
</body>
</html>
`))

// RenderHTML renders a self-contained HTML report.
func RenderHTML(page Page) (string, error) {
	if page.Title == "" {
		page.Title = "Test Report"
	}

	var body bytes.Buffer
	if err := markdown.Convert([]byte(reportMarkdown(page)), &body); err != nil {
		return "", &ReportError{Message: "failed to render markdown", Cause: err}
	}

	statusClass := "passed"
	if page.ExitCode != types.ExitAllPassed {
		statusClass = "failed"
	}

	var out bytes.Buffer
	err := pageTemplate.Execute(&out, struct {
		Title       string
		Message     string
		StatusClass string
		Body        template.HTML
	}{
		Title:       page.Title,
		Message:     page.Message,
		StatusClass: statusClass,
		Body:        template.HTML(body.String()), //nolint:gosec // goldmark escapes raw HTML by default
	})
	if err != nil {
		return "", &ReportError{Message: "failed to render page", Cause: err}
	}
	return out.String(), nil
}

// WriteHTML renders page and writes it to path.
func WriteHTML(path string, page Page) error {
	content, err := RenderHTML(page)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return &ReportError{Path: path, Message: "failed to write HTML report", Cause: err}
	}
	return nil
}

func reportMarkdown(page Page) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeCell(page.Title)))
	if page.Timestamp != "" {
		sb.WriteString(fmt.Sprintf("Generated %s\n\n", escapeCell(page.Timestamp)))
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Total | Passed | Failed | Skipped | Duration | Exit Code |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	s := page.Summary
	sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %.2fs | %d |\n\n",
		s.Total, s.Passed, s.Failed, s.Skipped, s.Duration, page.ExitCode))

	sb.WriteString("## Tests\n\n")
	if len(page.Tests) == 0 {
		sb.WriteString("No tests were collected.\n\n")
	} else {
		sb.WriteString("| Package | Test | Outcome | Duration |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, tc := range page.Tests {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2fs |\n",
				escapeCell(tc.Package), escapeCell(tc.Name), tc.Outcome, tc.Duration))
		}
		sb.WriteString("\n")
	}

	var failures []types.TestCaseResult
	for _, tc := range page.Tests {
		if tc.Outcome == "failed" && tc.Output != "" {
			failures = append(failures, tc)
		}
	}
	if len(failures) > 0 {
		sb.WriteString("## Failures\n\n")
		for _, tc := range failures {
			sb.WriteString(fmt.Sprintf("### %s\n\n", escapeCell(tc.Package+"."+tc.Name)))
			sb.WriteString(fenced(tc.Output))
		}
	}
	return sb.String()
}

// escapeCell escapes characters that would break a table cell or be read as markup.
func escapeCell(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"|", `\|`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"<", `\<`,
		"\n", " ",
	)
	return r.Replace(s)
}

// fenced wraps text in a code fence longer than any backtick run it contains.
func fenced(text string) string {
	fence := "```"
	for strings.Contains(text, fence) {
		fence += "`"
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return fence + "\n" + text + fence + "\n\n"
}
