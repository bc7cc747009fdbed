package parsing

import "fmt"

// FileError represents a failure reading or writing a requirements file
type FileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *FileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("requirements file %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("requirements file %s: %s", e.Path, e.Message)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}

// ParseError represents structured requirements JSON that could not be decoded
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
