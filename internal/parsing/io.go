package parsing

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/jonathan/req2test/internal/schemas"
	"github.com/jonathan/req2test/internal/types"
)

// maxLineBytes bounds a single requirement line.
const maxLineBytes = 1 << 20

// ReadRequirementLines reads one requirement per line, trimming whitespace and skipping blanks.
func ReadRequirementLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// LoadRequirementLines reads requirement sentences from a text file (one per line).
func LoadRequirementLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Message: "failed to open", Cause: err}
	}
	defer func() { _ = f.Close() }()

	lines, err := ReadRequirementLines(f)
	if err != nil {
		return nil, &FileError{Path: path, Message: "failed to read lines", Cause: err}
	}
	return lines, nil
}

// MarshalRequirements encodes records as a pretty-printed UTF-8 JSON array.
func MarshalRequirements(reqs []types.Requirement) ([]byte, error) {
	if reqs == nil {
		reqs = []types.Requirement{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(reqs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveRequirements writes records to path as a pretty-printed JSON array.
func SaveRequirements(path string, reqs []types.Requirement) error {
	data, err := MarshalRequirements(reqs)
	if err != nil {
		return &ParseError{Message: "failed to encode requirements", Cause: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &FileError{Path: path, Message: "failed to write", Cause: err}
	}
	return nil
}

// DecodeRequirements validates data against the requirements schema and decodes it.
func DecodeRequirements(data []byte) ([]types.Requirement, error) {
	if err := schemas.ValidateRequirements(data); err != nil {
		return nil, err
	}

	var reqs []types.Requirement
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, &ParseError{Message: "failed to decode requirements JSON", Cause: err}
	}
	return reqs, nil
}

// LoadRequirements reads a JSON array of structured requirements written by SaveRequirements.
func LoadRequirements(path string) ([]types.Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Message: "failed to read", Cause: err}
	}

	reqs, err := DecodeRequirements(data)
	if err != nil {
		return nil, &FileError{Path: path, Message: "invalid structured requirements", Cause: err}
	}
	return reqs, nil
}
