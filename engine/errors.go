package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prftrack/prf-app-excel/config"
)

// ConfigurationError is a missing or invalid setting, reported before any remote call.
type ConfigurationError = config.ConfigurationError

var (
	ErrEmptyWorksheet     = errors.New("worksheet is empty")
	ErrNoIdentifierColumn = errors.New("no PRF number column")
	ErrNoWorksheet        = errors.New("no candidate worksheets")
	ErrMissingKey         = errors.New("record has no PRF number")

	errRequiresDelegated = errors.New("requires delegated authorization")
)

// ResolutionError is a failure to find the workbook, a worksheet, a header row or the
// identifier column.
type ResolutionError struct {
	Op    string
	Sheet string
	Err   error
}

func (e *ResolutionError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%v: worksheet '%v': %v", e.Op, e.Sheet, e.Err)
	}

	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// AuthorizationError is returned when every authorization strategy was rejected. Attempts
// holds the error from each strategy in the order tried.
type AuthorizationError struct {
	Op       string
	Attempts []error
}

func (e *AuthorizationError) Error() string {
	attempts := []string{}
	for _, err := range e.Attempts {
		attempts = append(attempts, err.Error())
	}

	return fmt.Sprintf("%v: not authorized (%v)", e.Op, strings.Join(attempts, "; "))
}

func (e *AuthorizationError) Unwrap() []error {
	return e.Attempts
}

// NotFoundError is returned when a PRF number is not in any of the worksheets searched, or when
// the workbook could not be found.
type NotFoundError struct {
	Op     string
	Key    string
	Sheets []string
	Err    error
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%v: '%v' not found", e.Op, e.Key)
	if len(e.Sheets) > 0 {
		msg += fmt.Sprintf(" in worksheets %v", strings.Join(quoted(e.Sheets), ", "))
	}

	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}

	return msg
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func quoted(list []string) []string {
	q := make([]string, len(list))
	for i, s := range list {
		q[i] = "'" + s + "'"
	}

	return q
}
