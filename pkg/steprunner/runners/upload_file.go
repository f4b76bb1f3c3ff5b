package runners

import (
	"context"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/fileutil"
	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

type UploadFileRunner struct {
	StepCtx types.ExecutionContext

	selector string
	path     string
	timeout  time.Duration
}

func init() {
	steprunner.RegisterRunnerFactory("upload_file", func(ctx types.ExecutionContext) (steprunner.StepRunner, error) {
		return &UploadFileRunner{StepCtx: ctx}, nil
	})
	steprunner.Describe("upload_file", "selector path (relative to the script) [timeout_ms]")
}

func (r *UploadFileRunner) Validate() error {
	args := steprunner.NewArgs(r.StepCtx.Step.Args)
	r.selector = args.Selector("selector")
	path := args.String("path")
	r.timeout = args.Timeout(0)
	if err := args.Err(); err != nil {
		return err
	}

	resolved, err := fileutil.ExistingFile(r.StepCtx.ScriptDir, path)
	if err != nil {
		return &steprunner.FieldError{Field: "path", Reason: err.Error()}
	}
	r.path = resolved
	return nil
}

func (r *UploadFileRunner) Timeout() time.Duration {
	return r.timeout
}

func (r *UploadFileRunner) Run(ctx context.Context) (*types.StepResult, error) {
	session, err := sessionOf(r.StepCtx)
	if err != nil {
		return nil, err
	}
	if err := session.Upload(ctx, r.selector, []string{r.path}); err != nil {
		return nil, err
	}

	result := selectorResult(r.selector)
	result.Meta["path"] = r.path
	return result, nil
}
