package runners

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/security"
	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

type OpenURLRunner struct {
	StepCtx types.ExecutionContext

	url     string
	timeout time.Duration
}

func init() {
	steprunner.RegisterRunnerFactory("open_url", func(ctx types.ExecutionContext) (steprunner.StepRunner, error) {
		return &OpenURLRunner{StepCtx: ctx}, nil
	})
	steprunner.Describe("open_url", "url (http/https) [timeout_ms]")
}

func (r *OpenURLRunner) Validate() error {
	args := steprunner.NewArgs(r.StepCtx.Step.Args)
	raw := args.String("url")
	r.timeout = args.Timeout(0)
	if err := args.Err(); err != nil {
		return err
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &steprunner.FieldError{Field: "url", Reason: fmt.Sprintf("must be an absolute http(s) URL, got %q", raw)}
	}
	if !security.HostAllowed(u.Hostname(), r.StepCtx.AllowedDomains) {
		return &steprunner.FieldError{Field: "url", Reason: fmt.Sprintf("host %q is not in the allowed domains", u.Hostname())}
	}

	r.url = raw
	return nil
}

func (r *OpenURLRunner) Timeout() time.Duration {
	return r.timeout
}

func (r *OpenURLRunner) Run(ctx context.Context) (*types.StepResult, error) {
	session, err := sessionOf(r.StepCtx)
	if err != nil {
		return nil, err
	}

	r.StepCtx.Logger.Debug().Str("url", r.url).Msg("Navigating")
	if err := session.Navigate(ctx, r.url); err != nil {
		return nil, err
	}

	meta := map[string]any{"url": r.url}
	if current, err := session.CurrentURL(ctx); err == nil && current != r.url {
		meta["final_url"] = current
	}
	return &types.StepResult{Meta: meta}, nil
}
