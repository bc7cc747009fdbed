package watch

import "fmt"

// WatchError represents a failure setting up the file watcher
type WatchError struct {
	Path    string
	Message string
	Cause   error
}

func (e *WatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("watch %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("watch %s: %s", e.Path, e.Message)
}

func (e *WatchError) Unwrap() error {
	return e.Cause
}
