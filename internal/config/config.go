// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "REQ2TEST_"

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Input            string `json:"input,omitempty" yaml:"input,omitempty"`                         // Text file with one requirement per line
	RequirementsJSON string `json:"requirements_json,omitempty" yaml:"requirements_json,omitempty"` // Structured requirements output
	OutputDir        string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`               // Root of generated test packages
	ReportsDir       string `json:"reports_dir,omitempty" yaml:"reports_dir,omitempty"`             // Where report artifacts are written
	ModulePath       string `json:"module_path,omitempty" yaml:"module_path,omitempty"`             // Module path for the generated go.mod

	// Execution
	ReportType     string `json:"report_type,omitempty" yaml:"report_type,omitempty" validate:"omitempty,oneof=console html json allure"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"gte=0"`
	GoBinary       string `json:"go_binary,omitempty" yaml:"go_binary,omitempty"`
	AllureBinary   string `json:"allure_binary,omitempty" yaml:"allure_binary,omitempty"`

	// Server
	Port int `json:"port,omitempty" yaml:"port,omitempty" validate:"gte=0,lte=65535"`

	// Behavior
	PerFeature bool `json:"per_feature,omitempty" yaml:"per_feature,omitempty"` // One test file per feature
	Lenient    bool `json:"lenient,omitempty" yaml:"lenient,omitempty"`         // Fill missing requirement fields with defaults
	Verbose    bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`         // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		RequirementsJSON: "structured_requirements.json",
		OutputDir:        "generated_tests",
		ReportsDir:       "reports",
		ModulePath:       "generatedtests",
		ReportType:       "console",
		TimeoutSeconds:   300,
		GoBinary:         "go",
		AllureBinary:     "allure",
		Port:             8080,
	}
}

// LoadConfig loads configuration from a JSON file, or a YAML file when the extension is
// .yaml or .yml. Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed %s validation (got %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.Input != "" {
		if _, err := os.Stat(c.Input); os.IsNotExist(err) {
			return fmt.Errorf("config error: input file not found: %s", c.Input)
		}
	}

	return nil
}

// Timeout returns the configured test timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.Input, defaults.Input)
	fill(&result.RequirementsJSON, defaults.RequirementsJSON)
	fill(&result.OutputDir, defaults.OutputDir)
	fill(&result.ReportsDir, defaults.ReportsDir)
	fill(&result.ModulePath, defaults.ModulePath)
	fill(&result.ReportType, defaults.ReportType)
	fill(&result.GoBinary, defaults.GoBinary)
	fill(&result.AllureBinary, defaults.AllureBinary)

	// Int fields: use default if zero
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv overrides fields from REQ2TEST_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("INPUT", &c.Input)
	str("REQUIREMENTS_JSON", &c.RequirementsJSON)
	str("OUTPUT_DIR", &c.OutputDir)
	str("REPORTS_DIR", &c.ReportsDir)
	str("MODULE_PATH", &c.ModulePath)
	str("REPORT_TYPE", &c.ReportType)
	str("GO_BINARY", &c.GoBinary)
	str("ALLURE_BINARY", &c.AllureBinary)

	ints := []struct {
		name string
		dst  *int
	}{
		{"TIMEOUT_SECONDS", &c.TimeoutSeconds},
		{"PORT", &c.Port},
	}
	for _, f := range ints {
		v, ok := lookup(EnvPrefix + f.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, f.name, err)
		}
		*f.dst = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"PER_FEATURE", &c.PerFeature},
		{"LENIENT", &c.Lenient},
		{"VERBOSE", &c.Verbose},
	}
	for _, f := range bools {
		v, ok := lookup(EnvPrefix + f.name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, f.name, err)
		}
		*f.dst = b
	}
	return nil
}
