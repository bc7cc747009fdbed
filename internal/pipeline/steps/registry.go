// Package steps provides step definitions, dependency validation, and status tracking
// for the requirements-to-tests pipeline.
package steps

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Step categories
const (
	CategoryInput     = "input"
	CategorySynthesis = "synthesis"
	CategoryExecution = "execution"
)

// Step names
const (
	LoadRequirements  = "load_requirements"
	ParseRequirements = "parse_requirements"
	SaveStructured    = "save_structured"
	SynthesizeTests   = "synthesize_tests"
	ExecuteTests      = "execute_tests"
)

// Status is the state of a step within one run
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	Optional     []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	LoadRequirements: {
		Name:         LoadRequirements,
		Category:     CategoryInput,
		Dependencies: []string{},
		Optional:     []string{},
	},
	ParseRequirements: {
		Name:         ParseRequirements,
		Category:     CategoryInput,
		Dependencies: []string{LoadRequirements},
		Optional:     []string{},
	},
	SaveStructured: {
		Name:         SaveStructured,
		Category:     CategoryInput,
		Dependencies: []string{ParseRequirements},
		Optional:     []string{},
	},
	SynthesizeTests: {
		Name:         SynthesizeTests,
		Category:     CategorySynthesis,
		Dependencies: []string{ParseRequirements},
		Optional:     []string{SaveStructured},
	},
	ExecuteTests: {
		Name:         ExecuteTests,
		Category:     CategoryExecution,
		Dependencies: []string{SynthesizeTests},
		Optional:     []string{},
	},
}

// StepResult represents the result of executing a step
type StepResult struct {
	Step     string
	Status   Status
	Duration int64 // milliseconds
	Error    error
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies: %v", e.MissingDependencies)
}

// Tracker records step status for a single run. It is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	status  map[string]Status
	started map[string]time.Time
	results []StepResult
}

// NewTracker creates a Tracker with every registered step pending.
func NewTracker() *Tracker {
	t := &Tracker{
		status:  make(map[string]Status, len(StepRegistry)),
		started: map[string]time.Time{},
	}
	for name := range StepRegistry {
		t.status[name] = StatusPending
	}
	return t
}

// Status returns the status of a step.
func (t *Tracker) Status(step string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.status[step]; ok {
		return s
	}
	return StatusPending
}

// Start validates dependencies and marks step in progress.
func (t *Tracker) Start(step string) error {
	if err := ValidateDependencies(t, step); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[step] = StatusInProgress
	t.started[step] = time.Now()
	return nil
}

// Finish records the outcome of a started step.
func (t *Tracker) Finish(step string, err error) StepResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := StepResult{Step: step, Status: StatusCompleted, Error: err}
	if err != nil {
		res.Status = StatusFailed
	}
	if start, ok := t.started[step]; ok {
		res.Duration = time.Since(start).Milliseconds()
	}
	t.status[step] = res.Status
	t.results = append(t.results, res)
	return res
}

// Skip marks a step as intentionally not run.
func (t *Tracker) Skip(step string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[step] = StatusSkipped
	t.results = append(t.results, StepResult{Step: step, Status: StatusSkipped})
}

// Results returns step results in completion order.
func (t *Tracker) Results() []StepResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]StepResult(nil), t.results...)
}

// ValidateDependencies checks if all required dependencies for a step are completed
func ValidateDependencies(t *Tracker, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if t.Status(dep) != StatusCompleted {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}

	return nil
}

// GetAvailableSteps returns pending steps whose dependencies are met, sorted by name
func GetAvailableSteps(t *Tracker) []string {
	var available []string
	for stepName := range StepRegistry {
		if t.Status(stepName) != StatusPending {
			continue
		}
		if err := ValidateDependencies(t, stepName); err != nil {
			continue // Dependencies not met
		}
		available = append(available, stepName)
	}
	sort.Strings(available)
	return available
}

// GetBlockedSteps returns pending steps whose dependencies are not met, sorted by name
func GetBlockedSteps(t *Tracker) []string {
	var blocked []string
	for stepName := range StepRegistry {
		if t.Status(stepName) != StatusPending {
			continue
		}
		if err := ValidateDependencies(t, stepName); err != nil {
			blocked = append(blocked, stepName)
		}
	}
	sort.Strings(blocked)
	return blocked
}
