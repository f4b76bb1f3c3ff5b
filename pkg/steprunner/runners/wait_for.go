package runners

import (
	"context"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

const defaultWaitTimeout = 10 * time.Second

type WaitForRunner struct {
	StepCtx types.ExecutionContext

	selector string
	timeout  time.Duration
}

func init() {
	steprunner.RegisterRunnerFactory("wait_for", func(ctx types.ExecutionContext) (steprunner.StepRunner, error) {
		return &WaitForRunner{StepCtx: ctx}, nil
	})
	steprunner.Describe("wait_for", "selector [timeout_ms=10000]")
}

func (r *WaitForRunner) Validate() error {
	args := steprunner.NewArgs(r.StepCtx.Step.Args)
	r.selector = args.Selector("selector")
	r.timeout = args.Timeout(defaultWaitTimeout)
	return args.Err()
}

func (r *WaitForRunner) Timeout() time.Duration {
	return r.timeout
}

func (r *WaitForRunner) Run(ctx context.Context) (*types.StepResult, error) {
	session, err := sessionOf(r.StepCtx)
	if err != nil {
		return nil, err
	}
	if err := session.WaitVisible(ctx, r.selector); err != nil {
		return nil, err
	}
	return selectorResult(r.selector), nil
}
