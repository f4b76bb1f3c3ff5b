package runners

import (
	"errors"

	"github.com/arnavsurve/browser-agent/pkg/driver"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

var errNoSession = errors.New("no browser session attached to step")

func sessionOf(ctx types.ExecutionContext) (driver.Session, error) {
	if ctx.Session == nil {
		return nil, errNoSession
	}
	return ctx.Session, nil
}

func selectorResult(selector string) *types.StepResult {
	return &types.StepResult{Meta: map[string]any{"selector": selector}}
}
