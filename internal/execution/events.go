package execution

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/jonathan/req2test/internal/types"
)

// TestEvent is one record of the `go test -json` stream.
type TestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

// Outcome values recorded on test case results.
const (
	OutcomePassed  = "passed"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

var actionOutcomes = map[string]string{
	"pass": OutcomePassed,
	"fail": OutcomeFailed,
	"skip": OutcomeSkipped,
}

// ParsedRun is the decoded content of a `go test -json` stream.
type ParsedRun struct {
	Summary types.TestSummary
	Tests   []types.TestCaseResult
	Output  string // human-readable output reassembled from the stream
}

// ParseEvents decodes a `go test -json` stream. Lines that are not JSON events, such as build
// errors printed before the stream starts, are kept in Output verbatim.
func ParseEvents(r io.Reader) (ParsedRun, error) {
	var run ParsedRun
	var text strings.Builder
	outputs := map[string]*strings.Builder{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()

		var evt TestEvent
		if len(line) == 0 || line[0] != '{' || json.Unmarshal(line, &evt) != nil {
			text.Write(line)
			text.WriteByte('\n')
			continue
		}

		if evt.Output != "" {
			text.WriteString(evt.Output)
		}

		if evt.Test == "" {
			if evt.Action == "pass" || evt.Action == "fail" {
				run.Summary.Duration += evt.Elapsed
			}
			continue
		}

		key := evt.Package + "\x00" + evt.Test
		switch evt.Action {
		case "output":
			b, ok := outputs[key]
			if !ok {
				b = &strings.Builder{}
				outputs[key] = b
			}
			b.WriteString(evt.Output)
		case "pass", "fail", "skip":
			outcome := actionOutcomes[evt.Action]
			tc := types.TestCaseResult{
				Package:  evt.Package,
				Name:     evt.Test,
				Outcome:  outcome,
				Duration: evt.Elapsed,
			}
			if b, ok := outputs[key]; ok {
				tc.Output = b.String()
				delete(outputs, key)
			}
			run.Tests = append(run.Tests, tc)
			run.Summary.Total++
			switch outcome {
			case OutcomePassed:
				run.Summary.Passed++
			case OutcomeFailed:
				run.Summary.Failed++
			case OutcomeSkipped:
				run.Summary.Skipped++
			}
		}
	}

	run.Output = text.String()
	return run, scanner.Err()
}
