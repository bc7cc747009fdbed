package synthesis

import (
	"fmt"
	"strings"
)

// TemplateError represents an error parsing or executing a test template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// MissingFieldError represents a structured requirement lacking fields a template needs
type MissingFieldError struct {
	Fields       []string
	OriginalText string
	Cause        error
}

func (e *MissingFieldError) Error() string {
	msg := fmt.Sprintf("requirement is missing required fields: %s", strings.Join(e.Fields, ", "))
	if e.OriginalText != "" {
		msg += fmt.Sprintf(" (%q)", e.OriginalText)
	}
	return msg
}

func (e *MissingFieldError) Unwrap() error {
	return e.Cause
}

// WriteError represents a failure writing generated output
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// RecordError ties a synthesis failure to the position of the record in its batch
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("requirement %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// BatchError lists the records skipped while synthesizing a file. The file is still written
// with every record that succeeded.
type BatchError struct {
	Path    string
	Skipped []*RecordError
}

func (e *BatchError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d requirement(s) skipped while writing %s:", len(e.Skipped), e.Path))
	for _, r := range e.Skipped {
		sb.WriteString("\n  ")
		sb.WriteString(r.Error())
	}
	return sb.String()
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Skipped))
	for i, r := range e.Skipped {
		errs[i] = r
	}
	return errs
}
