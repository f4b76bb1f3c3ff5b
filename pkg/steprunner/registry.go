package steprunner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arnavsurve/browser-agent/pkg/types"
)

type RunnerFactory func(ctx types.ExecutionContext) (StepRunner, error)

// ActionInfo describes one registered action for listings.
type ActionInfo struct {
	Name  string
	Usage string
}

// registry stores each action's factory function. GetRunner calls the appropriate
// factory to yield a new StepRunner instance.
var registry = map[string]RunnerFactory{}

var usages = map[string]string{}

// RegisterRunnerFactory is called from each runner's init() function.
func RegisterRunnerFactory(action string, factory RunnerFactory) {
	registry[action] = factory
}

// Describe attaches a one-line argument summary to a registered action.
func Describe(action, usage string) {
	usages[action] = usage
}

// IsRegistered reports whether a runner exists for action.
func IsRegistered(action string) bool {
	_, ok := registry[action]
	return ok
}

// GetRunner returns a new StepRunner for the step's action name.
func GetRunner(ctx types.ExecutionContext) (StepRunner, error) {
	action := ctx.Step.Name
	factory, ok := registry[action]
	if !ok {
		return nil, fmt.Errorf("unknown action %q (expected one of: %s)", action, strings.Join(RegisteredActions(), ", "))
	}

	return factory(ctx)
}

// RegisteredActions returns the action vocabulary in sorted order.
func RegisteredActions() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Actions returns the registered actions with their usage lines.
func Actions() []ActionInfo {
	names := RegisteredActions()
	infos := make([]ActionInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, ActionInfo{Name: name, Usage: usages[name]})
	}
	return infos
}
