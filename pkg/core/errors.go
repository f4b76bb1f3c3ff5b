package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ValidationError describes one step that does not conform to the action
// schema. Index is 1-based; zero means the problem concerns the whole script.
type ValidationError struct {
	Index  int
	Name   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Index == 0 {
		b.WriteString("script")
	} else {
		fmt.Fprintf(&b, "step %d", e.Index)
		if e.Name != "" {
			fmt.Fprintf(&b, " (%s)", e.Name)
		}
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	return b.String()
}

// ValidationErrors collects every failing step in declaration order.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	switch len(v) {
	case 0:
		return "no validation errors"
	case 1:
		return v[0].Error()
	}
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(v), strings.Join(msgs, "; "))
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, e := range v {
		errs[i] = e
	}
	return errs
}

// ForStep returns the errors reported against the 1-based step index.
func (v ValidationErrors) ForStep(index int) []*ValidationError {
	var out []*ValidationError
	for _, e := range v {
		if e.Index == index {
			out = append(out, e)
		}
	}
	return out
}

// errOrNil keeps a typed nil slice from becoming a non-nil error.
func (v ValidationErrors) errOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ExecutionError reports a step that failed against the live browser.
type ExecutionError struct {
	Index    int
	Name     string
	Attempts int
	TimedOut bool
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Index, e.Name, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the step ran out of time waiting for the page.
func (e *ExecutionError) Timeout() bool {
	return e.TimedOut || errors.Is(e.Err, context.DeadlineExceeded)
}
