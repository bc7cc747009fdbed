package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateFor(t *testing.T) {
	tests := []struct {
		feature string
		want    Template
	}{
		{"login", TemplateLogin},
		{"register", TemplateRegister},
		{"registration", TemplateRegister},
		{"validate", TemplateValidate},
		{"validation", TemplateValidate},
		{"search", TemplateSearch},
		{"delete", TemplateGeneric},
		{"unknown_feature", TemplateGeneric},
		{"Login", TemplateGeneric},
		{"", TemplateGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.feature, func(t *testing.T) {
			assert.Equal(t, tt.want, TemplateFor(tt.feature))
		})
	}
}

func TestTemplate_String(t *testing.T) {
	assert.Equal(t, "login", TemplateLogin.String())
	assert.Equal(t, "generic", TemplateGeneric.String())
	assert.Equal(t, "generic", Template(99).String())
}

func TestLoadTemplates(t *testing.T) {
	units, file, err := loadTemplates()
	require.NoError(t, err)
	require.NotNil(t, file)
	require.Len(t, units, len(templateTable))

	for kind, tmpl := range units {
		assert.NotNil(t, tmpl.Lookup("test"), "%s should define test", kind)
		assert.NotNil(t, tmpl.Lookup("helper"), "%s should define helper", kind)
		assert.NotNil(t, tmpl.Lookup("doc"), "%s should include doc", kind)
	}
	assert.NotNil(t, file.Lookup("file"))
}

func TestCommentLines(t *testing.T) {
	assert.Equal(t, "//\tone line", commentLines("//\t", "one line"))
	assert.Equal(t, "//\tfirst\n//\n//\tthird", commentLines("//\t", "first\n\nthird"))
	assert.Equal(t, "//\ta\n//\tb", commentLines("//\t", "a\r\nb"))
	assert.Equal(t, "//\ttrailing  ", commentLines("//\t", "trailing  "))
}

func TestSingleLine(t *testing.T) {
	assert.Equal(t, "a b c", singleLine("a\n b\t\tc "))
	assert.Equal(t, "", singleLine(""))
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "``"},
		{"one line", "`one line`"},
		{"two\nlines", "`two\nlines`"},
		{"has `ticks`", `"has ` + "`ticks`" + `"`},
		{"crlf\r\nline", `"crlf\r\nline"`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, literal(tt.in), "literal(%q)", tt.in)
	}
}
