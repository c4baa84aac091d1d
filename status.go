package codebench

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrNoUpdates       = Statusf(400, "No updates specified")
	ErrMissingRequired = Statusf(400, "Missing required fields")

	ErrNotFound     = Statusf(404, "Not found")
	ErrUnknownError = Statusf(500, "Unknown error occurred")

	// ErrSuiteExists is returned when creating a unit-test suite for an
	// activity that already owns one.
	ErrSuiteExists = Statusf(409, "Activity already has a unit-test suite")
)

var _ error = &StatusError{}

type StatusError struct {
	Code int
	Text string

	WrappedError error
}

func (s *StatusError) LogValue() slog.Value {
	if s == nil {
		return slog.Value{}
	}
	return slog.StringValue(s.Text)
}

func (s *StatusError) Error() string {
	return s.Text
}

func (s *StatusError) Unwrap() error {
	return s.WrappedError
}

func (s *StatusError) Is(target error) bool {
	if err, ok := target.(*StatusError); ok {
		return err.Text == s.Text
	}
	return false
}

func Statusf(status int, format string, args ...any) *StatusError {
	return &StatusError{Code: status, Text: fmt.Sprintf(format, args...)}
}

// WrapError attaches a user-facing message to an internal error, carrying
// over the status code if the wrapped error has one.
func WrapError(err error, text string) *StatusError {
	code := 500
	var serr *StatusError
	if errors.As(err, &serr) {
		code = serr.Code
	}
	return &StatusError{Code: code, Text: text, WrappedError: err}
}

func ErrorCode(err error) int {
	if err == nil {
		return 200
	}
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Code
	}
	return 500
}
