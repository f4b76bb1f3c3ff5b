package runners

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

const maxTypeLength = 4000

type TypeRunner struct {
	StepCtx types.ExecutionContext

	selector   string
	text       string
	clearFirst bool
	secret     bool
	timeout    time.Duration
}

func init() {
	steprunner.RegisterRunnerFactory("type", func(ctx types.ExecutionContext) (steprunner.StepRunner, error) {
		return &TypeRunner{StepCtx: ctx}, nil
	})
	steprunner.Describe("type", "selector text [clear_first=true] [secret=false] [timeout_ms]")
}

func (r *TypeRunner) Validate() error {
	args := steprunner.NewArgs(r.StepCtx.Step.Args)
	r.selector = args.Selector("selector")
	r.text = args.String("text")
	r.clearFirst = args.Bool("clear_first", true)
	r.secret = args.Bool("secret", false)
	r.timeout = args.Timeout(0)
	if err := args.Err(); err != nil {
		return err
	}

	if n := utf8.RuneCountInString(r.text); n > maxTypeLength {
		return &steprunner.FieldError{Field: "text", Reason: fmt.Sprintf("must be at most %d characters, got %d", maxTypeLength, n)}
	}
	return nil
}

func (r *TypeRunner) Timeout() time.Duration {
	return r.timeout
}

func (r *TypeRunner) Run(ctx context.Context) (*types.StepResult, error) {
	session, err := sessionOf(r.StepCtx)
	if err != nil {
		return nil, err
	}
	if r.StepCtx.Logger != nil {
		r.StepCtx.Logger.Debug().Str("selector", r.selector).Str("text", r.text).Msg("Typing")
	}
	if err := session.Type(ctx, r.selector, r.text, r.clearFirst); err != nil {
		return nil, err
	}

	result := selectorResult(r.selector)
	result.Meta["chars"] = utf8.RuneCountInString(r.text)
	if r.secret {
		result.Meta["secret"] = true
	}
	return result, nil
}
