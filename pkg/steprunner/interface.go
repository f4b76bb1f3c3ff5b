package steprunner

import (
	"context"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/types"
)

// StepRunner executes one action. Validate is side-effect free and runs before
// any browser interaction; Run may only be called after Validate succeeded.
type StepRunner interface {
	Validate() error
	Run(ctx context.Context) (*types.StepResult, error)
}

// TimeoutAware is implemented by runners that carry their own deadline.
// A zero duration means the engine default applies.
type TimeoutAware interface {
	Timeout() time.Duration
}
