package types

import "github.com/arnavsurve/browser-agent/pkg/driver"

// ExecutionContext contains the context needed for step execution
type ExecutionContext struct {
	Step           ActionSpec
	Index          int
	Session        driver.Session
	Logger         Logger
	ScriptDir      string
	AllowedDomains []string
}
