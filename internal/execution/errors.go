package execution

import "fmt"

// ToolNotFoundError represents an external binary missing from PATH
type ToolNotFoundError struct {
	Tool  string
	Cause error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s not found in PATH: %v", e.Tool, e.Cause)
}

func (e *ToolNotFoundError) Unwrap() error {
	return e.Cause
}

// TargetError represents a test file that cannot be mapped to a package under the test directory
type TargetError struct {
	Path    string
	Message string
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("invalid test target %s: %s", e.Path, e.Message)
}
