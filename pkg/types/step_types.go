package types

// StepResult is the standardized output structure produced for every executed step.
// Runners fill Extracted and Meta; the engine fills the rest.
type StepResult struct {
	Index        int            `json:"index"`
	Name         string         `json:"name"`
	OK           bool           `json:"ok"`
	Extracted    *string        `json:"extracted,omitempty"`
	Detail       string         `json:"detail"`
	Error        string         `json:"error,omitempty"`
	Attempts     int            `json:"attempts"`
	DurationMs   int64          `json:"duration_ms"`
	ArtifactPath string         `json:"artifact_path,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
}
