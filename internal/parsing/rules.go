package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/req2test/internal/types"
)

// featureVocabulary is scanned in order; the first word found anywhere in the text wins.
var featureVocabulary = []string{
	"login",
	"register",
	"validate",
	"authenticate",
	"create",
	"delete",
	"update",
	"view",
	"display",
	"search",
}

const (
	expectedFailure  = "failure or error message"
	expectedFallback = "system responds appropriately"
)

var (
	shouldWordPattern   = regexp.MustCompile(`should\s+([\p{L}\p{N}_]+)`)
	shouldClausePattern = regexp.MustCompile(`should\s+(.+?)(?:\s*\.|\s*$)`)
	withClausePattern   = regexp.MustCompile(`with\s+`)
	usingClausePattern  = regexp.MustCompile(`using\s+`)
	validPattern        = regexp.MustCompile(`valid\s+[\p{L}\p{N}_]+`)
	invalidPattern      = regexp.MustCompile(`invalid\s+[\p{L}\p{N}_]+`)
)

// predicateStarters are words that open a new clause when they follow "and" inside a
// with/using phrase. "with username and password" is one phrase; "with a token and display
// the dashboard" ends at "a token".
var predicateStarters = map[string]bool{
	"should": true, "must": true, "will": true, "can": true, "then": true,
	"with": true, "using": true, "when": true, "if": true, "unless": true,
	"is": true, "are": true, "be": true, "get": true, "gets": true,
	"see": true, "sees": true, "go": true, "goes": true, "navigate": true,
	"display": true, "displays": true, "show": true, "shows": true,
	"return": true, "returns": true, "redirect": true, "redirects": true,
	"send": true, "sends": true, "receive": true, "receives": true,
	"allow": true, "allows": true, "log": true, "logs": true,
}

func init() {
	for _, word := range featureVocabulary {
		predicateStarters[word] = true
	}
}

// input is the normalized text a rule is evaluated against, plus anything already derived.
type input struct {
	text    string
	feature string
}

// rule is one entry of an ordered classifier: the first rule that matches supplies the tag.
type rule struct {
	name  string
	match func(in input) (string, bool)
}

// firstMatch evaluates rules in priority order and returns the first tag, or fallback.
func firstMatch(rules []rule, in input, fallback string) string {
	for _, r := range rules {
		if tag, ok := r.match(in); ok {
			return tag
		}
	}
	return fallback
}

// containsRule tags the text with word when word appears anywhere as a substring.
func containsRule(word string) rule {
	return rule{
		name: "contains:" + word,
		match: func(in input) (string, bool) {
			return word, strings.Contains(in.text, word)
		},
	}
}

// captureRule tags the text with the first capture group of pattern.
func captureRule(name string, pattern *regexp.Regexp) rule {
	return rule{
		name: name,
		match: func(in input) (string, bool) {
			m := pattern.FindStringSubmatch(in.text)
			if m == nil {
				return "", false
			}
			captured := strings.TrimSpace(m[1])
			return captured, captured != ""
		},
	}
}

var featureRules = buildFeatureRules()

func buildFeatureRules() []rule {
	rules := make([]rule, 0, len(featureVocabulary)+1)
	for _, word := range featureVocabulary {
		rules = append(rules, containsRule(word))
	}
	return append(rules, captureRule("should-word", shouldWordPattern))
}

var expectationRules = []rule{
	{
		name: "successful",
		match: func(in input) (string, bool) {
			return "successful " + in.feature, strings.Contains(in.text, "successful")
		},
	},
	{
		name: "failure-or-error",
		match: func(in input) (string, bool) {
			return expectedFailure, strings.Contains(in.text, "failure") || strings.Contains(in.text, "error")
		},
	},
	captureRule("should-clause", shouldClausePattern),
}

// conditionExtractors run independently; their results are concatenated in this order.
var conditionExtractors = []func(text string) []string{
	clauseExtractor(withClausePattern),
	clauseExtractor(usingClausePattern),
	matchExtractor(validPattern),
	matchExtractor(invalidPattern),
}

// clauseExtractor returns one phrase per occurrence of the introducing keyword. Each phrase
// runs to the next period or the end of the text and is then cut by cutAtPredicate, so a
// second keyword after "and" starts a phrase of its own.
func clauseExtractor(keyword *regexp.Regexp) func(string) []string {
	return func(text string) []string {
		var phrases []string
		for _, loc := range keyword.FindAllStringIndex(text, -1) {
			clause := text[loc[1]:]
			if i := strings.IndexByte(clause, '.'); i >= 0 {
				clause = clause[:i]
			}
			if phrase := cutAtPredicate(clause); phrase != "" {
				phrases = append(phrases, phrase)
			}
		}
		return phrases
	}
}

// matchExtractor returns every non-overlapping match of pattern.
func matchExtractor(pattern *regexp.Regexp) func(string) []string {
	return func(text string) []string {
		return pattern.FindAllString(text, -1)
	}
}

// cutAtPredicate trims a clause at the first "and" that opens a new predicate. A clause
// joins at most two terms, so a second "and" always ends it, as does a dangling one.
func cutAtPredicate(clause string) string {
	words := strings.Fields(clause)
	joined := false
	for i := 0; i < len(words); i++ {
		if words[i] != "and" {
			continue
		}
		if joined || i == len(words)-1 || predicateStarters[words[i+1]] {
			words = words[:i]
			break
		}
		joined = true
	}
	return strings.Join(words, " ")
}

func extractFeature(text string) string {
	return firstMatch(featureRules, input{text: text}, types.UnknownFeature)
}

func extractConditions(text string) []string {
	var conditions []string
	for _, extract := range conditionExtractors {
		conditions = append(conditions, extract(text)...)
	}
	if len(conditions) == 0 {
		return []string{types.NoConditions}
	}
	return conditions
}

func extractExpected(text, feature string) string {
	return firstMatch(expectationRules, input{text: text, feature: feature}, expectedFallback)
}
