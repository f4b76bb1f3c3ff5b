package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

// ValidateOptions carries the settings that affect argument checks.
type ValidateOptions struct {
	// ScriptDir anchors relative upload paths.
	ScriptDir      string
	AllowedDomains []string
}

// ValidateScript checks every step against the registered action vocabulary
// and its argument schema. It never touches a browser.
func ValidateScript(script types.Script, opts ValidateOptions) error {
	var errs ValidationErrors
	for i, spec := range script {
		if err := validateStep(i+1, spec, opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errs.errOrNil()
}

func validateStep(index int, spec types.ActionSpec, opts ValidateOptions) *ValidationError {
	if !steprunner.IsRegistered(spec.Name) {
		return &ValidationError{
			Index:  index,
			Name:   spec.Name,
			Field:  "name",
			Reason: fmt.Sprintf("unknown action %q (expected one of: %s)", spec.Name, strings.Join(steprunner.RegisteredActions(), ", ")),
		}
	}

	runner, err := steprunner.GetRunner(types.ExecutionContext{
		Step:           spec,
		Index:          index,
		ScriptDir:      opts.ScriptDir,
		AllowedDomains: opts.AllowedDomains,
	})
	if err == nil {
		err = runner.Validate()
	}
	if err == nil {
		return nil
	}

	var fe *steprunner.FieldError
	if errors.As(err, &fe) {
		return &ValidationError{Index: index, Name: spec.Name, Field: fe.Field, Reason: fe.Reason}
	}
	return &ValidationError{Index: index, Name: spec.Name, Reason: err.Error()}
}
