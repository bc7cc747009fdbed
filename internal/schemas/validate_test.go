package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemas_ValidJSON(t *testing.T) {
	for _, name := range []string{Requirements, TestReport} {
		t.Run(name, func(t *testing.T) {
			src, ok := Named(name)
			require.True(t, ok)

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(src), &schemaObj))

			_, hasSchema := schemaObj["$schema"]
			_, hasType := schemaObj["type"]
			assert.True(t, hasSchema && hasType, "schema should declare $schema and type")
		})
	}
}

func TestNamed_Unknown(t *testing.T) {
	_, ok := Named("nope")
	assert.False(t, ok)
}

func TestValidateRequirements_Valid(t *testing.T) {
	doc := `[
		{
			"feature": "login",
			"conditions": ["username and password"],
			"expected": "successful login",
			"original_text": "The system should allow login with username and password."
		}
	]`

	assert.NoError(t, ValidateRequirements([]byte(doc)))
}

func TestValidateRequirements_MissingKeysTolerated(t *testing.T) {
	doc := `[{"feature": "search"}]`

	assert.NoError(t, ValidateRequirements([]byte(doc)))
}

func TestValidateRequirements_WrongType(t *testing.T) {
	doc := `[{"feature": "login", "conditions": "username"}]`

	err := ValidateRequirements([]byte(doc))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
	assert.Equal(t, Requirements, validationErr.Schema)
	assert.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, err.Error(), "conditions")
}

func TestValidateRequirements_UnknownKey(t *testing.T) {
	doc := `[{"feature": "login", "priority": "high"}]`

	err := ValidateRequirements([]byte(doc))
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestValidateRequirements_NotArray(t *testing.T) {
	err := ValidateRequirements([]byte(`{"feature": "login"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(root)")
}

func TestValidateRequirements_MalformedJSON(t *testing.T) {
	err := ValidateRequirements([]byte(`[{ invalid`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr), "malformed documents surface as SchemaLoadError")
}

func TestValidateReport(t *testing.T) {
	valid := `{
		"created": "2026-10-17T12:00:00Z",
		"exit_code": 1,
		"summary": {"total": 3, "passed": 2, "failed": 1, "skipped": 0, "duration": 0.42},
		"tests": [{"package": "login", "name": "TestLogin", "outcome": "passed", "duration": 0.01}]
	}`
	assert.NoError(t, ValidateReport([]byte(valid)))

	missingSummary := `{"created": "2026-10-17T12:00:00Z", "exit_code": 0}`
	assert.Error(t, ValidateReport([]byte(missingSummary)))

	badOutcome := `{
		"created": "x", "exit_code": 0,
		"summary": {"total": 1, "passed": 1, "failed": 0, "skipped": 0, "duration": 0},
		"tests": [{"package": "p", "name": "TestX", "outcome": "exploded"}]
	}`
	assert.Error(t, ValidateReport([]byte(badOutcome)))
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "x"}`))

	err := ValidateJSONString(schema, `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
