package core

import "github.com/arnavsurve/browser-agent/pkg/types"

type ActionSpec = types.ActionSpec

type Script = types.Script

type StepResult = types.StepResult

type ExecutionContext = types.ExecutionContext

type Logger = types.Logger
