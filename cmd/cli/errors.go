package cli

import (
	"errors"

	"github.com/arnavsurve/browser-agent/pkg/core"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitInvalid = 2
)

// exitError pins the process exit code for errors that carry no type of
// their own, such as an unreadable script file.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func invalidInput(err error) error {
	return &exitError{code: ExitInvalid, err: err}
}

// ExitCode maps a command error to the process exit status: 2 for anything
// rejected before the browser starts, 1 for runtime failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return ExitInvalid
	}
	return ExitFailure
}
