package runners

import (
	"context"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

type ClickRunner struct {
	StepCtx types.ExecutionContext

	selector string
	timeout  time.Duration
}

func init() {
	steprunner.RegisterRunnerFactory("click", func(ctx types.ExecutionContext) (steprunner.StepRunner, error) {
		return &ClickRunner{StepCtx: ctx}, nil
	})
	steprunner.Describe("click", "selector [timeout_ms]")
}

func (r *ClickRunner) Validate() error {
	args := steprunner.NewArgs(r.StepCtx.Step.Args)
	r.selector = args.Selector("selector")
	r.timeout = args.Timeout(0)
	return args.Err()
}

func (r *ClickRunner) Timeout() time.Duration {
	return r.timeout
}

func (r *ClickRunner) Run(ctx context.Context) (*types.StepResult, error) {
	session, err := sessionOf(r.StepCtx)
	if err != nil {
		return nil, err
	}
	if err := session.Click(ctx, r.selector); err != nil {
		return nil, err
	}
	return selectorResult(r.selector), nil
}
