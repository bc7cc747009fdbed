// Package parsing converts plain-language requirement sentences into structured requirement
// records using fixed keyword rules and regular-expression extraction.
package parsing

import (
	"strings"

	"github.com/jonathan/req2test/internal/types"
)

// Parse converts one requirement sentence into a structured record.
// It never fails: unrecognized input yields the fallback feature, the sentinel condition and the
// fallback expectation. OriginalText always echoes the input unchanged.
func Parse(text string) types.Requirement {
	normalized := strings.ToLower(strings.TrimSpace(text))

	feature := extractFeature(normalized)

	return types.Requirement{
		Feature:      feature,
		Conditions:   extractConditions(normalized),
		Expected:     extractExpected(normalized, feature),
		OriginalText: text,
	}
}

// ParseMany parses each text in order.
func ParseMany(texts []string) []types.Requirement {
	reqs := make([]types.Requirement, 0, len(texts))
	for _, text := range texts {
		reqs = append(reqs, Parse(text))
	}
	return reqs
}
