package execution

import (
	"fmt"

	"github.com/jonathan/req2test/internal/types"
)

// StatusMessage describes a test run exit code.
func StatusMessage(exitCode int) string {
	switch exitCode {
	case types.ExitAllPassed:
		return "all tests passed"
	case types.ExitSomeFailed:
		return "some tests failed"
	case types.ExitNoTestsCollected:
		return "no tests collected"
	default:
		return fmt.Sprintf("unknown exit code: %d", exitCode)
	}
}
