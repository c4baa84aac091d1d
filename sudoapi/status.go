package sudoapi

import (
	"github.com/codebench-edu/codebench"
)

var (
	ErrNoUpdates       = codebench.ErrNoUpdates
	ErrMissingRequired = codebench.ErrMissingRequired

	ErrNotFound     = codebench.ErrNotFound
	ErrUnknownError = codebench.ErrUnknownError
)

type StatusError = codebench.StatusError

// Reimplement Statusf and WrapError functions here for faster reference

func Statusf(status int, format string, args ...any) *StatusError {
	return codebench.Statusf(status, format, args...)
}

func WrapError(err error, text string) *StatusError {
	return codebench.WrapError(err, text)
}
