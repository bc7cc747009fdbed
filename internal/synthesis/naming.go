package synthesis

import (
	"go/token"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/req2test/internal/types"
)

// nonIdentRun matches runs of characters that cannot appear in a Go identifier.
var nonIdentRun = regexp.MustCompile(`[^\p{L}\p{Nd}]+`)

// nameStopWords are dropped from the condition part of a test name.
var nameStopWords = map[string]bool{
	"and":   true,
	"or":    true,
	"with":  true,
	"using": true,
}

// Sanitize lower-cases s and replaces every run of non-alphanumeric characters with a single
// underscore, trimming leading and trailing separators.
func Sanitize(s string) string {
	return strings.Trim(nonIdentRun.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

func tokens(s string) []string {
	sanitized := Sanitize(s)
	if sanitized == "" {
		return nil
	}
	return strings.Split(sanitized, "_")
}

// NameTokens returns the tokens a test name is built from: the sanitized feature followed by up
// to two meaningful tokens of the first condition.
func NameTokens(feature string, conditions []string) []string {
	parts := tokens(feature)
	if len(parts) == 0 {
		parts = []string{"unknown"}
	}

	req := types.Requirement{Conditions: conditions}
	if !req.HasConditions() {
		return parts
	}

	var meaningful []string
	for _, word := range tokens(conditions[0]) {
		if nameStopWords[word] {
			continue
		}
		meaningful = append(meaningful, word)
		if len(meaningful) == 2 {
			break
		}
	}
	return append(parts, meaningful...)
}

// TestName derives the Go test function name for a feature and its conditions,
// e.g. "login" + ["username and password"] gives TestLogin_Username_Password.
// Names are not deduplicated.
func TestName(feature string, conditions []string) string {
	parts := NameTokens(feature, conditions)
	for i, p := range parts {
		parts[i] = upperFirst(p)
	}
	return "Test" + strings.Join(parts, "_")
}

// helperName derives the placeholder operation name for the generic template,
// e.g. "unknown_feature" gives unknownFeatureFunction.
func helperName(feature string) string {
	parts := tokens(feature)
	if len(parts) == 0 {
		parts = []string{"unknown"}
	}

	var sb strings.Builder
	for i, p := range parts {
		if i == 0 {
			sb.WriteString(p)
			continue
		}
		sb.WriteString(upperFirst(p))
	}
	name := sb.String()
	if r, _ := utf8.DecodeRuneInString(name); !unicode.IsLetter(r) {
		name = "op" + upperFirst(name)
	}
	return name + "Function"
}

// PackageName derives a Go package name from a feature tag or file stem.
func PackageName(s string) string {
	name := Sanitize(s)
	if name == "" {
		return "generated"
	}
	if r, _ := utf8.DecodeRuneInString(name); !unicode.IsLetter(r) {
		name = "pkg_" + name
	}
	if token.IsKeyword(name) {
		name += "_tests"
	}
	return name
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// uniqueNames tracks names already emitted into one file and suffixes repeats with _2, _3, ...
type uniqueNames map[string]bool

func (u uniqueNames) claim(name string) string {
	candidate := name
	for n := 2; u[candidate]; n++ {
		candidate = name + "_" + strconv.Itoa(n)
	}
	u[candidate] = true
	return candidate
}
