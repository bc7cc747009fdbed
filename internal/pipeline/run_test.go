package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/req2test/internal/parsing"
	"github.com/jonathan/req2test/internal/pipeline/steps"
	"github.com/jonathan/req2test/internal/synthesis"
	"github.com/jonathan/req2test/internal/types"
)

var sampleTexts = []string{
	"The system should allow login with username and password.",
	"Search functionality should return relevant results when user enters keywords.",
	"Users must be able to register using valid email address.",
}

func TestRunPipeline_PerFeature(t *testing.T) {
	dir := t.TempDir()
	var events []ProgressEvent
	var out bytes.Buffer

	res, err := RunPipeline(context.Background(), RunOptions{
		Texts:          sampleTexts,
		StructuredPath: filepath.Join(dir, "structured.json"),
		OutputDir:      filepath.Join(dir, "generated"),
		PerFeature:     true,
		Verbose:        true,
		Out:            &out,
		OnProgress:     func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	require.Len(t, res.Requirements, 3)
	assert.Equal(t, "login", res.Requirements[0].Feature)
	require.Len(t, res.Files, 3)
	for _, f := range res.Files {
		assert.FileExists(t, f)
	}
	assert.FileExists(t, filepath.Join(dir, "generated", "go.mod"))
	assert.Nil(t, res.Run)
	assert.NoError(t, res.SkipErr)

	saved, err := parsing.LoadRequirements(res.StructuredPath)
	require.NoError(t, err)
	assert.Equal(t, res.Requirements, saved)

	require.Len(t, events, 4)
	assert.Equal(t, steps.LoadRequirements, events[0].Step)
	assert.Equal(t, steps.CategorySynthesis, events[3].Category)

	assert.Contains(t, out.String(), "PARSED REQUIREMENTS")
	assert.Contains(t, out.String(), "GENERATED TEST FILES")

	statuses := map[string]steps.Status{}
	for _, s := range res.Steps {
		statuses[s.Step] = s.Status
	}
	assert.Equal(t, steps.StatusCompleted, statuses[steps.SynthesizeTests])
	assert.Equal(t, steps.StatusSkipped, statuses[steps.ExecuteTests])
}

func TestRunPipeline_BatchFromFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "requirements.txt")
	require.NoError(t, os.WriteFile(input, []byte("\nThe system should allow login with username and password.\n\n"), 0644))

	res, err := RunPipeline(context.Background(), RunOptions{
		InputPath: input,
		OutputDir: filepath.Join(dir, "generated"),
		FileName:  "suite",
	})
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	assert.Equal(t, filepath.Join(dir, "generated", "suite", "suite_gen_test.go"), res.Files[0])
	assert.Empty(t, res.StructuredPath)

	content, err := os.ReadFile(res.Files[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "func TestLogin_Username_Password(")
}

func TestRunPipeline_NoInput(t *testing.T) {
	res, err := RunPipeline(context.Background(), RunOptions{OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load_requirements failed")
	require.Len(t, res.Steps, 1)
	assert.Equal(t, steps.StatusFailed, res.Steps[0].Status)
	assert.Equal(t, []string{steps.ExecuteTests, steps.ParseRequirements, steps.SaveStructured, steps.SynthesizeTests}, res.Blocked)
}

func TestRunPipeline_MissingInputFile(t *testing.T) {
	_, err := RunPipeline(context.Background(), RunOptions{
		InputPath: filepath.Join(t.TempDir(), "missing.txt"),
		OutputDir: t.TempDir(),
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunPipeline_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunPipeline(ctx, RunOptions{Texts: sampleTexts, OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunPipeline_CanceledBeforeParse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	outDir := filepath.Join(t.TempDir(), "generated")

	res, err := RunPipeline(ctx, RunOptions{
		Texts:     sampleTexts,
		OutputDir: outDir,
		OnProgress: func(e ProgressEvent) {
			if e.Step == steps.LoadRequirements {
				cancel()
			}
		},
	})
	require.ErrorIs(t, err, context.Canceled)

	assert.Nil(t, res.Requirements)
	assert.Empty(t, res.Files)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, steps.LoadRequirements, res.Steps[0].Step)
	assert.Equal(t, []string{steps.ExecuteTests, steps.SaveStructured, steps.SynthesizeTests}, res.Blocked)
	assert.NoDirExists(t, outDir)
}

func TestRunPipeline_Execute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts require a POSIX shell")
	}
	dir := t.TempDir()
	goBin := filepath.Join(dir, "go")
	stream := `{"Action":"run","Package":"generatedtests/login","Test":"TestLogin_Username_Password"}
{"Action":"pass","Package":"generatedtests/login","Test":"TestLogin_Username_Password","Elapsed":0.01}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stream.json"), []byte(stream), 0644))
	script := "#!/bin/sh\ncat '" + filepath.Join(dir, "stream.json") + "'\n"
	require.NoError(t, os.WriteFile(goBin, []byte(script), 0755))

	res, err := RunPipeline(context.Background(), RunOptions{
		Texts:      sampleTexts[:1],
		OutputDir:  filepath.Join(dir, "generated"),
		PerFeature: true,
		Execute:    true,
		ReportType: types.ReportJSON,
		ReportsDir: filepath.Join(dir, "reports"),
		GoBinary:   goBin,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Run)

	assert.True(t, res.Run.Success)
	assert.Equal(t, "all tests passed", res.Run.Message)
	assert.FileExists(t, res.Run.JSONReportPath)
}

func TestIsSkip(t *testing.T) {
	batch := &synthesis.BatchError{Path: "x"}

	assert.False(t, isSkip(nil))
	assert.True(t, isSkip(batch))
	assert.True(t, isSkip(errors.Join(batch, &synthesis.BatchError{Path: "y"})))
	assert.False(t, isSkip(errors.Join(batch, errors.New("disk full"))))
	assert.False(t, isSkip(&synthesis.WriteError{Path: "x", Cause: errors.New("disk full")}))
}
