package synthesis

import (
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

// Template identifies the skeleton used to synthesize a test for a feature tag.
type Template int

const (
	TemplateGeneric Template = iota
	TemplateLogin
	TemplateRegister
	TemplateValidate
	TemplateSearch
)

func (t Template) String() string {
	switch t {
	case TemplateLogin:
		return "login"
	case TemplateRegister:
		return "register"
	case TemplateValidate:
		return "validate"
	case TemplateSearch:
		return "search"
	default:
		return "generic"
	}
}

// featureTemplates maps feature tags to templates. Anything absent uses TemplateGeneric.
var featureTemplates = map[string]Template{
	"login":        TemplateLogin,
	"register":     TemplateRegister,
	"registration": TemplateRegister,
	"validate":     TemplateValidate,
	"validation":   TemplateValidate,
	"search":       TemplateSearch,
}

// TemplateFor returns the template for a feature tag by exact match.
func TemplateFor(feature string) Template {
	if t, ok := featureTemplates[feature]; ok {
		return t
	}
	return TemplateGeneric
}

// templateSpec describes how a template kind is rendered.
type templateSpec struct {
	file   string
	label  string // Feature line in the doc comment; empty means the literal feature
	helper string // Placeholder operation name; empty means derived from the feature
}

var templateTable = map[Template]templateSpec{
	TemplateLogin:    {file: "login.tmpl", label: "login", helper: "loginSystem"},
	TemplateRegister: {file: "register.tmpl", label: "register/registration", helper: "registerUser"},
	TemplateValidate: {file: "validate.tmpl", label: "validate/validation", helper: "validateInput"},
	TemplateSearch:   {file: "search.tmpl", label: "search", helper: "searchFunction"},
	TemplateGeneric:  {file: "generic.tmpl"},
}

var templateFuncs = template.FuncMap{
	"comment": commentLines,
	"line":    singleLine,
	"quote":   strconv.Quote,
	"literal": literal,
}

// loadTemplates parses every template kind together with the shared doc block.
func loadTemplates() (map[Template]*template.Template, *template.Template, error) {
	sets := make(map[Template]*template.Template, len(templateTable))
	for kind, spec := range templateTable {
		tmpl, err := template.New(spec.file).Funcs(templateFuncs).
			ParseFS(templateFiles, "templates/doc.tmpl", "templates/"+spec.file)
		if err != nil {
			return nil, nil, &TemplateError{
				Message: fmt.Sprintf("failed to parse %s template", kind),
				Cause:   err,
			}
		}
		sets[kind] = tmpl
	}

	file, err := template.New("file.tmpl").Funcs(templateFuncs).ParseFS(templateFiles, "templates/file.tmpl")
	if err != nil {
		return nil, nil, &TemplateError{Message: "failed to parse file template", Cause: err}
	}
	return sets, file, nil
}

// commentLines renders text as comment lines, each starting with prefix.
func commentLines(prefix, text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			lines[i] = strings.TrimRight(prefix, " \t")
			continue
		}
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// literal renders text as a Go string literal. A raw literal keeps multi-line text verbatim;
// text containing a backquote falls back to an interpreted literal.
func literal(text string) string {
	if strings.ContainsRune(text, '`') || strings.ContainsRune(text, '\r') {
		return strconv.Quote(text)
	}
	return "`" + text + "`"
}

// singleLine collapses text onto one line so it can sit inside a line comment.
func singleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
