package runners

import (
	"context"
	"strings"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

type ExtractTextRunner struct {
	StepCtx types.ExecutionContext

	selector string
	trim     bool
	timeout  time.Duration
}

func init() {
	steprunner.RegisterRunnerFactory("extract_text", func(ctx types.ExecutionContext) (steprunner.StepRunner, error) {
		return &ExtractTextRunner{StepCtx: ctx}, nil
	})
	steprunner.Describe("extract_text", "selector [trim=false] [timeout_ms]")
}

func (r *ExtractTextRunner) Validate() error {
	args := steprunner.NewArgs(r.StepCtx.Step.Args)
	r.selector = args.Selector("selector")
	r.trim = args.Bool("trim", false)
	r.timeout = args.Timeout(0)
	return args.Err()
}

func (r *ExtractTextRunner) Timeout() time.Duration {
	return r.timeout
}

func (r *ExtractTextRunner) Run(ctx context.Context) (*types.StepResult, error) {
	session, err := sessionOf(r.StepCtx)
	if err != nil {
		return nil, err
	}
	text, err := session.Text(ctx, r.selector)
	if err != nil {
		return nil, err
	}
	if r.trim {
		text = strings.TrimSpace(text)
	}

	result := selectorResult(r.selector)
	result.Extracted = &text
	return result, nil
}
