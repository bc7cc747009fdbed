package reporting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/req2test/internal/types"
)

func samplePage() Page {
	return Page{
		Timestamp: "2026-10-17T12:00:00Z",
		ExitCode:  1,
		Message:   "some tests failed",
		Summary:   types.TestSummary{Total: 2, Passed: 1, Failed: 1, Duration: 0.42},
		Tests: []types.TestCaseResult{
			{Package: "generatedtests/login", Name: "TestLogin_Username_Password", Outcome: "passed", Duration: 0.01},
			{
				Package: "generatedtests/search", Name: "TestSearch", Outcome: "failed", Duration: 0.02,
				Output: "search_gen_test.go:12: got <script>alert(1)</script> | ``` fence\n",
			},
		},
	}
}

func parseHTML(t *testing.T, content string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	require.NoError(t, err)
	return doc
}

func TestRenderHTML(t *testing.T) {
	content, err := RenderHTML(samplePage())
	require.NoError(t, err)

	doc := parseHTML(t, content)
	assert.Equal(t, "Test Report", doc.Find("title").Text())
	assert.Equal(t, "Test Report", doc.Find("h1").Text())
	assert.True(t, doc.Find("p.status").HasClass("failed"))
	assert.Equal(t, "some tests failed", strings.TrimSpace(doc.Find("p.status").Text()))

	tables := doc.Find("table")
	require.Equal(t, 2, tables.Length())

	summaryCells := tables.Eq(0).Find("tbody td")
	require.Equal(t, 6, summaryCells.Length())
	assert.Equal(t, "2", summaryCells.Eq(0).Text())
	assert.Equal(t, "0.42s", summaryCells.Eq(4).Text())

	rows := tables.Eq(1).Find("tbody tr")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, "TestLogin_Username_Password", rows.Eq(0).Find("td").Eq(1).Text())
	assert.Equal(t, "failed", rows.Eq(1).Find("td").Eq(2).Text())

	assert.Equal(t, "generatedtests/search.TestSearch", doc.Find("h3").Text())
	assert.Contains(t, doc.Find("pre code").Text(), "<script>alert(1)</script> | ``` fence")
	assert.Zero(t, doc.Find("body script").Length(), "test output must not inject markup")
}

func TestRenderHTML_Passed(t *testing.T) {
	content, err := RenderHTML(Page{Title: "Nightly", Message: "all tests passed"})
	require.NoError(t, err)

	doc := parseHTML(t, content)
	assert.Equal(t, "Nightly", doc.Find("title").Text())
	assert.True(t, doc.Find("p.status").HasClass("passed"))
	assert.Contains(t, doc.Text(), "No tests were collected.")
	assert.Zero(t, doc.Find("h3").Length())
}

func TestWriteHTML(t *testing.T) {
	path := HTMLReportPath(t.TempDir(), "20261017_120000")

	require.NoError(t, WriteHTML(path, samplePage()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
	assert.NotContains(t, string(data), "<link", "report should be self-contained")
}

func TestWriteHTML_BadPath(t *testing.T) {
	err := WriteHTML(filepath.Join(t.TempDir(), "missing", "report.html"), samplePage())

	var reportErr *ReportError
	require.ErrorAs(t, err, &reportErr)
}

func TestEscapeCell(t *testing.T) {
	assert.Equal(t, `a\|b`, escapeCell("a|b"))
	assert.Equal(t, `Test\_A`, escapeCell("Test_A"))
	assert.Equal(t, "one two", escapeCell("one\ntwo"))
}

func TestFenced(t *testing.T) {
	assert.Equal(t, "```\nplain\n```\n\n", fenced("plain"))
	assert.Equal(t, "````\nhas ``` inside\n````\n\n", fenced("has ``` inside\n"))
}

func TestArtifactNames(t *testing.T) {
	assert.Equal(t, filepath.Join("r", "test_report_x.html"), HTMLReportPath("r", "x"))
	assert.Equal(t, filepath.Join("r", "test_report_x.json"), JSONReportPath("r", "x"))
	assert.Equal(t, filepath.Join("r", "allure-results-x"), AllureResultsDir("r", "x"))
	assert.Equal(t, filepath.Join("r", "allure-report-x"), AllureReportDir("r", "x"))
}
