package runners

import (
	"context"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

type CheckRunner struct {
	StepCtx types.ExecutionContext

	selector string
	timeout  time.Duration
}

func init() {
	steprunner.RegisterRunnerFactory("check", func(ctx types.ExecutionContext) (steprunner.StepRunner, error) {
		return &CheckRunner{StepCtx: ctx}, nil
	})
	steprunner.Describe("check", "selector [timeout_ms]")
}

func (r *CheckRunner) Validate() error {
	args := steprunner.NewArgs(r.StepCtx.Step.Args)
	r.selector = args.Selector("selector")
	r.timeout = args.Timeout(0)
	return args.Err()
}

func (r *CheckRunner) Timeout() time.Duration {
	return r.timeout
}

func (r *CheckRunner) Run(ctx context.Context) (*types.StepResult, error) {
	session, err := sessionOf(r.StepCtx)
	if err != nil {
		return nil, err
	}
	if err := session.Check(ctx, r.selector); err != nil {
		return nil, err
	}
	return selectorResult(r.selector), nil
}
