// Package server provides the HTTP API over stored test reports.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/req2test/internal/reporting"
)

// ErrInvalidParam indicates a malformed query parameter
type ErrInvalidParam struct {
	Param   string
	Value   string
	Message string
}

func (e *ErrInvalidParam) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var paramErr *ErrInvalidParam
	switch {
	case errors.As(err, &paramErr):
		return http.StatusBadRequest
	case reporting.IsNoReports(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
