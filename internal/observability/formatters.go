// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/req2test/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// PrintRequirements outputs a summary of parsed requirements.
func (p *Printer) PrintRequirements(reqs []types.Requirement) {
	if len(reqs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Parsed %d requirements:\n\n", len(reqs)))

	features := map[string]int{}
	count := min(len(reqs), maxItemsToShow)
	for i, req := range reqs {
		features[req.Feature]++
		if i >= count {
			continue
		}
		sb.WriteString(fmt.Sprintf("• %s\n", req.Feature))
		if req.HasConditions() {
			sb.WriteString(fmt.Sprintf("  with: %s\n", strings.Join(req.Conditions, "; ")))
		}
		sb.WriteString(fmt.Sprintf("  expect: %s\n", req.Expected))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(reqs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more requirements\n", len(reqs)-maxItemsToShow))
	}
	sb.WriteString(fmt.Sprintf("\nDistinct features: %d", len(features)))

	p.printBox("PARSED REQUIREMENTS", sb.String())
}

// PrintGeneratedFiles outputs the test files written by the synthesizer.
func (p *Printer) PrintGeneratedFiles(outputDir string, paths []string) {
	if len(paths) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Wrote %d file(s) under %s:\n\n", len(paths), outputDir))
	for i, path := range paths {
		if i == maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more files\n", len(paths)-maxItemsToShow))
			break
		}
		if rel, err := filepath.Rel(outputDir, path); err == nil {
			path = rel
		}
		sb.WriteString(fmt.Sprintf("• %s\n", path))
	}

	p.printBox("GENERATED TEST FILES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSuggestions outputs follow-up suggestions for a test run.
func (p *Printer) PrintSuggestions(suggestions []string) {
	if len(suggestions) == 0 {
		return
	}

	var sb strings.Builder
	for _, s := range suggestions {
		sb.WriteString(fmt.Sprintf("• %s\n", s))
	}
	p.printBox("SUGGESTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFailures lists the failed tests of a run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFailures(tests []types.TestCaseResult) {
	var failed []types.TestCaseResult
	for _, tc := range tests {
		if tc.Outcome == "failed" {
			failed = append(failed, tc)
		}
	}
	if len(failed) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("NO FAILED TESTS", boxWidth-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d failed tests:\n\n", len(failed)))
	for i, tc := range failed {
		sb.WriteString(fmt.Sprintf("✗ %s\n", tc.Name))
		sb.WriteString(fmt.Sprintf("  %s\n", tc.Package))
		if msg := firstOutputLine(tc.Output); msg != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", truncate(msg, boxWidth-8)))
		}
		if i < len(failed)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("FAILED TESTS", strings.TrimSuffix(sb.String(), "\n"))
}

// firstOutputLine returns the first line of test output that is not go test's own framing.
func firstOutputLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "=== ") || strings.HasPrefix(line, "--- ") {
			continue
		}
		return line
	}
	return ""
}
