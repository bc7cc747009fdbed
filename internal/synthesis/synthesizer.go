// Package synthesis renders structured requirements into Go test stubs.
//
// Each requirement becomes one test function plus a placeholder operation the test calls. Files
// are written one package per directory under the output directory, so generated files never
// share a namespace and can be run together with `go test ./...`.
package synthesis

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/req2test/internal/types"
)

const (
	// DefaultModulePath is the module path written to the output directory's go.mod.
	DefaultModulePath = "generatedtests"

	generatedSuffix = "_gen_test.go"
	headerTimeFmt   = "2006-01-02 15:04:05"
	fileNameTimeFmt = "20060102_150405"
)

// Lenient-mode defaults for missing fields.
const (
	defaultFeature  = "unknown"
	defaultExpected = "success"
)

// Config configures a Synthesizer.
type Config struct {
	OutputDir  string
	Lenient    bool // fill missing fields with defaults instead of failing
	ModulePath string
	Logger     *zap.Logger
	Now        func() time.Time
}

// Synthesizer turns structured requirements into Go test source.
// It holds no mutable state and is safe for concurrent use.
type Synthesizer struct {
	outputDir  string
	lenient    bool
	modulePath string
	logger     *zap.Logger
	now        func() time.Time

	units map[Template]*template.Template
	file  *template.Template
}

// unitData is the data passed to the per-feature templates.
type unitData struct {
	TestName       string
	Feature        string
	FeatureLabel   string
	ConditionsText string
	Expected       string
	OriginalText   string
	HelperName     string
	ExpectValid    bool
	ExpectRelevant bool
}

// fileData is the data passed to file.tmpl.
type fileData struct {
	Created string
	Count   int
	Package string
	Tests   []string
	Helpers []string
}

// New parses the templates and prepares the output directory.
func New(cfg Config) (*Synthesizer, error) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "generated_tests"
	}
	if cfg.ModulePath == "" {
		cfg.ModulePath = DefaultModulePath
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	units, file, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Synthesizer{
		outputDir:  cfg.OutputDir,
		lenient:    cfg.Lenient,
		modulePath: cfg.ModulePath,
		logger:     cfg.Logger,
		now:        cfg.Now,
		units:      units,
		file:       file,
	}
	if err := s.EnsureOutputDirectory(); err != nil {
		return nil, err
	}
	return s, nil
}

// OutputDir returns the directory generated files are written under.
func (s *Synthesizer) OutputDir() string {
	return s.outputDir
}

// EnsureOutputDirectory creates the output directory and, when missing, a go.mod that makes
// the generated packages runnable on their own.
func (s *Synthesizer) EnsureOutputDirectory() error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return &WriteError{Path: s.outputDir, Cause: err}
	}

	modPath := filepath.Join(s.outputDir, "go.mod")
	if _, err := os.Stat(modPath); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return &WriteError{Path: modPath, Cause: err}
	}

	content := fmt.Sprintf("module %s\n\ngo 1.24\n", s.modulePath)
	if err := os.WriteFile(modPath, []byte(content), 0644); err != nil {
		return &WriteError{Path: modPath, Cause: err}
	}
	s.logger.Debug("created go.mod for generated tests", zap.String("path", modPath))
	return nil
}

// Synthesize renders the test function and placeholder operation for one requirement.
// The requirement is not modified. Test names are not deduplicated. The original text appears
// in the doc comment and, verbatim even across lines, in a t.Log literal at the top of the test.
func (s *Synthesizer) Synthesize(req types.Requirement) (types.TestUnit, error) {
	if err := req.Validate(); err != nil {
		if !s.lenient {
			return types.TestUnit{}, missingFields(req, err)
		}
		req = withDefaults(req)
	}

	kind := TemplateFor(req.Feature)
	data := s.unitData(kind, req)

	tmpl := s.units[kind]
	test, err := execute(tmpl, "test", data)
	if err != nil {
		return types.TestUnit{}, &TemplateError{
			Message: fmt.Sprintf("failed to render %s test for %q", kind, req.Feature),
			Cause:   err,
		}
	}
	helper, err := execute(tmpl, "helper", data)
	if err != nil {
		return types.TestUnit{}, &TemplateError{
			Message: fmt.Sprintf("failed to render %s helper for %q", kind, req.Feature),
			Cause:   err,
		}
	}

	return types.TestUnit{
		Name:         data.TestName,
		Source:       test,
		HelperName:   data.HelperName,
		HelperSource: helper,
		Feature:      req.Feature,
	}, nil
}

func (s *Synthesizer) unitData(kind Template, req types.Requirement) unitData {
	spec := templateTable[kind]

	label := spec.label
	if label == "" {
		label = req.Feature
	}
	helper := spec.helper
	if helper == "" {
		helper = helperName(req.Feature)
	}
	expected := strings.ToLower(req.Expected)

	return unitData{
		TestName:       TestName(req.Feature, req.Conditions),
		Feature:        req.Feature,
		FeatureLabel:   label,
		ConditionsText: strings.Join(req.Conditions, ", "),
		Expected:       req.Expected,
		OriginalText:   req.OriginalText,
		HelperName:     helper,
		ExpectValid:    strings.Contains(expected, "valid"),
		ExpectRelevant: strings.Contains(expected, "relevant"),
	}
}

// SynthesizeFile renders every requirement into one test file and writes it under the output
// directory. An empty name defaults to a timestamp. Records that fail are skipped and reported
// in a *BatchError alongside the content that was written.
func (s *Synthesizer) SynthesizeFile(reqs []types.Requirement, name string) (string, error) {
	if name == "" {
		name = s.DefaultFileName()
	}
	return s.writeFile(PackageName(fileStem(name)), reqs)
}

// DefaultFileName returns the timestamped name used when SynthesizeFile is given none.
func (s *Synthesizer) DefaultFileName() string {
	return "generated_" + s.now().Format(fileNameTimeFmt)
}

// FilePath returns the path SynthesizeFile writes for name.
func (s *Synthesizer) FilePath(name string) string {
	return s.packagePath(PackageName(fileStem(name)))
}

func (s *Synthesizer) packagePath(pkg string) string {
	return filepath.Join(s.outputDir, pkg, pkg+generatedSuffix)
}

func (s *Synthesizer) writeFile(pkg string, reqs []types.Requirement) (string, error) {
	path := s.packagePath(pkg)

	names := uniqueNames{}
	seenHelpers := map[string]bool{}
	data := fileData{
		Created: s.now().Format(headerTimeFmt),
		Package: pkg,
	}

	var skipped []*RecordError
	for i, req := range reqs {
		unit, err := s.Synthesize(req)
		if err != nil {
			var tmplErr *TemplateError
			if errors.As(err, &tmplErr) {
				return "", err
			}
			skipped = append(skipped, &RecordError{Index: i, Err: err})
			continue
		}

		source := unit.Source
		if unique := names.claim(unit.Name); unique != unit.Name {
			source = renameTest(source, unit.Name, unique)
		}
		data.Tests = append(data.Tests, source)

		if !seenHelpers[unit.HelperName] {
			seenHelpers[unit.HelperName] = true
			data.Helpers = append(data.Helpers, unit.HelperSource)
		}
	}
	data.Count = len(data.Tests)

	content, err := execute(s.file, "file", data)
	if err != nil {
		return "", &TemplateError{Message: "failed to render test file", Cause: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", &WriteError{Path: path, Cause: err}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", &WriteError{Path: path, Cause: err}
	}

	s.logger.Info("wrote generated tests",
		zap.String("path", path),
		zap.Int("tests", data.Count),
		zap.Int("skipped", len(skipped)))

	if len(skipped) > 0 {
		return content, &BatchError{Path: path, Skipped: skipped}
	}
	return content, nil
}

// SynthesizeByFeature groups requirements by their literal feature tag and writes one file per
// group, concurrently. Paths are returned in the order groups are first encountered.
func (s *Synthesizer) SynthesizeByFeature(reqs []types.Requirement) ([]string, error) {
	type group struct {
		pkg  string
		reqs []types.Requirement
	}

	var groups []*group
	byFeature := map[string]*group{}
	packages := uniqueNames{}
	for _, req := range reqs {
		g, ok := byFeature[req.Feature]
		if !ok {
			stem := req.Feature
			if strings.TrimSpace(stem) == "" {
				stem = defaultFeature
			}
			g = &group{pkg: packages.claim(PackageName(stem))}
			byFeature[req.Feature] = g
			groups = append(groups, g)
		}
		g.reqs = append(g.reqs, req)
	}

	paths := make([]string, len(groups))
	batchErrs := make([]error, len(groups))

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			_, err := s.writeFile(g.pkg, g.reqs)
			var batchErr *BatchError
			if err != nil && !errors.As(err, &batchErr) {
				return err
			}
			paths[i] = s.packagePath(g.pkg)
			batchErrs[i] = err
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("wrote per-feature test files", zap.Int("files", len(paths)))
	return paths, errors.Join(batchErrs...)
}

// missingFields converts validator errors into a MissingFieldError naming the JSON keys.
func missingFields(req types.Requirement, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &MissingFieldError{OriginalText: req.OriginalText, Cause: err}
	}

	seen := map[string]bool{}
	var fields []string
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if !seen[field] {
			seen[field] = true
			fields = append(fields, field)
		}
	}
	return &MissingFieldError{Fields: fields, OriginalText: req.OriginalText, Cause: err}
}

// withDefaults fills the fields a template needs.
func withDefaults(req types.Requirement) types.Requirement {
	if strings.TrimSpace(req.Feature) == "" {
		req.Feature = defaultFeature
	}
	if strings.TrimSpace(req.Expected) == "" {
		req.Expected = defaultExpected
	}

	var conditions []string
	for _, c := range req.Conditions {
		if c != "" {
			conditions = append(conditions, c)
		}
	}
	req.Conditions = conditions
	return req
}

// fileStem strips directories, extensions and a _test suffix from a file name.
func fileStem(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, "_test")
}

// renameTest rewrites the function declaration and doc line of a rendered test.
func renameTest(source, from, to string) string {
	source = strings.Replace(source, "// "+from+" was generated", "// "+to+" was generated", 1)
	return strings.Replace(source, "func "+from+"(", "func "+to+"(", 1)
}

func execute(tmpl *template.Template, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
