package runners

import (
	"context"
	"fmt"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/driver"
	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

type SelectOptionRunner struct {
	StepCtx types.ExecutionContext

	selector string
	value    string
	by       driver.SelectBy
	timeout  time.Duration
}

func init() {
	steprunner.RegisterRunnerFactory("select_option", func(ctx types.ExecutionContext) (steprunner.StepRunner, error) {
		return &SelectOptionRunner{StepCtx: ctx}, nil
	})
	steprunner.Describe("select_option", "selector value [by=value|label] [timeout_ms]")
}

func (r *SelectOptionRunner) Validate() error {
	args := steprunner.NewArgs(r.StepCtx.Step.Args)
	r.selector = args.Selector("selector")
	r.value = args.String("value")
	by := args.OptionalString("by", string(driver.SelectByValue))
	r.timeout = args.Timeout(0)
	if err := args.Err(); err != nil {
		return err
	}

	switch driver.SelectBy(by) {
	case driver.SelectByValue, driver.SelectByLabel:
		r.by = driver.SelectBy(by)
	default:
		return &steprunner.FieldError{Field: "by", Reason: fmt.Sprintf("must be %q or %q, got %q", driver.SelectByValue, driver.SelectByLabel, by)}
	}
	return nil
}

func (r *SelectOptionRunner) Timeout() time.Duration {
	return r.timeout
}

func (r *SelectOptionRunner) Run(ctx context.Context) (*types.StepResult, error) {
	session, err := sessionOf(r.StepCtx)
	if err != nil {
		return nil, err
	}
	if err := session.SelectOption(ctx, r.selector, r.value, r.by); err != nil {
		return nil, err
	}

	result := selectorResult(r.selector)
	result.Meta["value"] = r.value
	result.Meta["by"] = string(r.by)
	return result, nil
}
