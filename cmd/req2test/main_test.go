package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/req2test/internal/config"
	"github.com/jonathan/req2test/internal/parsing"
	"github.com/jonathan/req2test/internal/types"
)

const (
	loginText    = "The system should allow login with username and password."
	searchText   = "Search functionality should return relevant results when user enters keywords."
	passedStream = `{"Action":"run","Package":"generatedtests/login","Test":"TestLogin"}
{"Action":"pass","Package":"generatedtests/login","Test":"TestLogin","Elapsed":0.01}
{"Action":"pass","Package":"generatedtests/login","Elapsed":0.02}
`
	failedStream = `{"Action":"run","Package":"generatedtests/login","Test":"TestLogin"}
{"Action":"output","Package":"generatedtests/login","Test":"TestLogin","Output":"login_gen_test.go:12: wrong password\n"}
{"Action":"fail","Package":"generatedtests/login","Test":"TestLogin","Elapsed":0.01}
{"Action":"fail","Package":"generatedtests/login","Elapsed":0.02}
`
)

// resetFlags restores every flag to its default so commands do not leak state between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the CLI with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// fakeGo writes a go binary that prints stream and exits with code.
func fakeGo(t *testing.T, stream string, code string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts require a POSIX shell")
	}
	dir := t.TempDir()
	streamPath := filepath.Join(dir, "stream.json")
	require.NoError(t, os.WriteFile(streamPath, []byte(stream), 0644))

	bin := filepath.Join(dir, "go")
	script := "#!/bin/sh\ncat '" + streamPath + "'\nexit " + code + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	return bin
}

func TestParse_ArgsToStdout(t *testing.T) {
	out, err := execute(t, "parse", "--output", "-", loginText)
	require.NoError(t, err)

	var reqs []types.Requirement
	require.NoError(t, json.Unmarshal([]byte(out), &reqs))
	require.Len(t, reqs, 1)
	assert.Equal(t, "login", reqs[0].Feature)
	assert.Equal(t, loginText, reqs[0].OriginalText)
}

func TestParse_InputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "requirements.txt")
	require.NoError(t, os.WriteFile(input, []byte(loginText+"\n\n"+searchText+"\n"), 0644))
	output := filepath.Join(dir, "structured.json")

	out, err := execute(t, "parse", "-i", input, "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 2 structured requirements")

	reqs, err := parsing.LoadRequirements(output)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "search", reqs[1].Feature)
}

func TestParse_NoInput(t *testing.T) {
	_, err := execute(t, "parse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--input")
}

func TestGenerate_PerFeature(t *testing.T) {
	dir := t.TempDir()
	structured := filepath.Join(dir, "structured.json")
	require.NoError(t, parsing.SaveRequirements(structured, parsing.ParseMany([]string{loginText, searchText})))
	outDir := filepath.Join(dir, "generated")

	out, err := execute(t, "generate", "-r", structured, "-o", outDir, "--per-feature")
	require.NoError(t, err)
	assert.Contains(t, out, "GENERATED TEST FILES")

	assert.FileExists(t, filepath.Join(outDir, "go.mod"))
	assert.FileExists(t, filepath.Join(outDir, "login", "login_gen_test.go"))
	assert.FileExists(t, filepath.Join(outDir, "search", "search_gen_test.go"))
}

func TestGenerate_SkipsIncompleteRecords(t *testing.T) {
	dir := t.TempDir()
	structured := filepath.Join(dir, "structured.json")
	doc := `[
		{"feature": "login", "conditions": ["username and password"], "expected": "successful login", "original_text": "a"},
		{"feature": "search", "original_text": "b"}
	]`
	require.NoError(t, os.WriteFile(structured, []byte(doc), 0644))
	outDir := filepath.Join(dir, "generated")

	_, err := execute(t, "generate", "-r", structured, "-o", outDir, "-n", "suite")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(outDir, "suite", "suite_gen_test.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "func TestLogin_Username_Password(")
	assert.NotContains(t, string(content), "func TestSearch")
}

func TestRun_NoExecute(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "generated")

	out, err := execute(t, "run", "--no-execute", "--per-feature",
		"-o", outDir, "-r", filepath.Join(dir, "structured.json"),
		loginText, searchText)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 2 test file(s)")
	assert.FileExists(t, filepath.Join(dir, "structured.json"))
	assert.FileExists(t, filepath.Join(outDir, "search", "search_gen_test.go"))
}

func TestRun_ExecuteJSONReport(t *testing.T) {
	dir := t.TempDir()
	goBin := fakeGo(t, passedStream, "0")

	out, err := execute(t, "run", loginText,
		"-o", filepath.Join(dir, "generated"),
		"-r", filepath.Join(dir, "structured.json"),
		"--report-type", "json",
		"--reports-dir", filepath.Join(dir, "reports"),
		"--go-binary", goBin)
	require.NoError(t, err)

	assert.Contains(t, out, "TEST EXECUTION REPORT")
	assert.Contains(t, out, "JSON Report:")
	assert.Contains(t, out, "SUGGESTIONS")

	matches, err := filepath.Glob(filepath.Join(dir, "reports", "test_report_*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRun_NoRequirements(t *testing.T) {
	_, err := execute(t, "run", "-o", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provide requirement sentences")
}

func TestExecute_FailedRun(t *testing.T) {
	dir := t.TempDir()
	goBin := fakeGo(t, failedStream, "1")

	out, err := execute(t, "execute",
		"-d", filepath.Join(dir, "generated"),
		"--reports-dir", filepath.Join(dir, "reports"),
		"-t", "json",
		"--go-binary", goBin)
	require.Error(t, err)
	assert.Equal(t, "test run failed: some tests failed", err.Error())
	assert.Contains(t, out, "FAILED TESTS")
	assert.Contains(t, out, "wrong password")
}

func TestExecute_InvalidReportType(t *testing.T) {
	_, err := execute(t, "execute", "-d", t.TempDir(), "-t", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report_type")
}

func TestConfigFile_YAML(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "from-config")
	cfgPath := filepath.Join(dir, "req2test.yaml")
	yaml := "output_dir: " + outDir + "\nrequirements_json: " + filepath.Join(dir, "s.json") + "\nper_feature: true\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0644))

	_, err := execute(t, "--config", cfgPath, "run", "--no-execute", loginText)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "login", "login_gen_test.go"))
}

func TestConfigFile_FlagsWin(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "req2test.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"output_dir": "`+filepath.Join(dir, "ignored")+`"}`), 0644))
	outDir := filepath.Join(dir, "flag")

	_, err := execute(t, "--config", cfgPath, "run", "--no-execute", "--per-feature",
		"-o", outDir, "-r", filepath.Join(dir, "s.json"), loginText)
	require.NoError(t, err)
	assert.DirExists(t, outDir)
	assert.NoDirExists(t, filepath.Join(dir, "ignored"))
}

func TestEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "from-env")
	t.Setenv(config.EnvPrefix+"OUTPUT_DIR", outDir)
	t.Setenv(config.EnvPrefix+"PER_FEATURE", "true")

	_, err := execute(t, "run", "--no-execute", "-r", filepath.Join(dir, "s.json"), loginText)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "login", "login_gen_test.go"))
}

func TestRegenerate(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "requirements.txt")
	require.NoError(t, os.WriteFile(input, []byte(loginText+"\n"+searchText+"\n"), 0644))

	cfg := config.Config{
		RequirementsJSON: filepath.Join(dir, "structured.json"),
		OutputDir:        filepath.Join(dir, "generated"),
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	handler := regenerate(cfg, false, cmd)
	require.NoError(t, handler(context.Background(), input))

	assert.Contains(t, out.String(), "regenerated 2 test file(s) from 2 requirements")
	assert.FileExists(t, filepath.Join(dir, "generated", "login", "login_gen_test.go"))
	assert.FileExists(t, cfg.RequirementsJSON)
}

func TestWatch_RequiresInput(t *testing.T) {
	_, err := execute(t, "watch", "-o", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--input is required")
}
