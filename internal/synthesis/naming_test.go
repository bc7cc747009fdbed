package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/req2test/internal/types"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"login", "login"},
		{"Unknown Feature", "unknown_feature"},
		{"  --user/data!! ", "user_data"},
		{"valid email address", "valid_email_address"},
		{"café au lait", "café_au_lait"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestTestName(t *testing.T) {
	tests := []struct {
		name       string
		feature    string
		conditions []string
		want       string
	}{
		{
			name:       "feature with condition",
			feature:    "login",
			conditions: []string{"username and password"},
			want:       "TestLogin_Username_Password",
		},
		{
			name:       "stop words dropped and two tokens kept",
			feature:    "register",
			conditions: []string{"using a valid email address"},
			want:       "TestRegister_A_Valid",
		},
		{
			name:       "only first condition used",
			feature:    "validate",
			conditions: []string{"valid data", "invalid data"},
			want:       "TestValidate_Valid_Data",
		},
		{
			name:       "sentinel ignored",
			feature:    "search",
			conditions: []string{types.NoConditions},
			want:       "TestSearch",
		},
		{
			name:    "no conditions",
			feature: "unknown_feature",
			want:    "TestUnknown_Feature",
		},
		{
			name:    "empty feature",
			feature: "",
			want:    "TestUnknown",
		},
		{
			name:       "condition of only stop words",
			feature:    "create",
			conditions: []string{"with and or"},
			want:       "TestCreate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TestName(tt.feature, tt.conditions))
		})
	}
}

func TestTestName_Deterministic(t *testing.T) {
	a := TestName("login", []string{"username and password"})
	b := TestName("login", []string{"username and password"})
	assert.Equal(t, a, b)
}

func TestHelperName(t *testing.T) {
	assert.Equal(t, "unknownFeatureFunction", helperName("unknown_feature"))
	assert.Equal(t, "notifyFunction", helperName("notify"))
	assert.Equal(t, "op2faFunction", helperName("2fa"))
	assert.Equal(t, "unknownFunction", helperName(""))
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "login", PackageName("login"))
	assert.Equal(t, "generated_20261017_120000", PackageName("generated_20261017_120000"))
	assert.Equal(t, "generated", PackageName("???"))
	assert.Equal(t, "pkg_2fa", PackageName("2fa"))
	assert.Equal(t, "func_tests", PackageName("func"))
	assert.Equal(t, "unknown_feature", PackageName("Unknown Feature"))
}

func TestUniqueNames(t *testing.T) {
	names := uniqueNames{}

	assert.Equal(t, "TestLogin", names.claim("TestLogin"))
	assert.Equal(t, "TestLogin_2", names.claim("TestLogin"))
	assert.Equal(t, "TestLogin_3", names.claim("TestLogin"))
	assert.Equal(t, "TestSearch", names.claim("TestSearch"))
}
