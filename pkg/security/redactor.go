package security

import (
	"sort"
	"strings"

	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

type Redactor struct {
	Secrets []string
}

// NewRedactor collects the text of every type step marked secret, reading the
// flag the same way the type action does. The script must already have its
// variables injected so the resolved values are masked.
func NewRedactor(script types.Script) *Redactor {
	var secretValues []string
	for _, step := range script {
		if step.Name != "type" {
			continue
		}
		if secret, ok := steprunner.ParseBool(step.Args["secret"]); !ok || !secret {
			continue
		}
		if text, ok := step.Args["text"].(string); ok && text != "" {
			secretValues = append(secretValues, text)
		}
	}
	return &Redactor{
		Secrets: secretValues,
	}
}

func (r *Redactor) Redact(s string) string {
	if r == nil || len(r.Secrets) == 0 {
		return s
	}

	// Longer secrets first so a secret containing another is masked whole.
	secrets := make([]string, len(r.Secrets))
	copy(secrets, r.Secrets)
	sort.Slice(secrets, func(i, j int) bool {
		return len(secrets[i]) > len(secrets[j])
	})

	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, "********")
	}
	return s
}

// RedactResult masks secrets in the human-facing fields of a step result.
func (r *Redactor) RedactResult(res types.StepResult) types.StepResult {
	res.Detail = r.Redact(res.Detail)
	res.Error = r.Redact(res.Error)
	if res.Extracted != nil {
		extracted := r.Redact(*res.Extracted)
		res.Extracted = &extracted
	}
	return res
}

// RedactResults returns masked copies of results; the input is not modified.
func (r *Redactor) RedactResults(results []types.StepResult) []types.StepResult {
	if results == nil {
		return nil
	}
	out := make([]types.StepResult, len(results))
	for i, res := range results {
		out[i] = r.RedactResult(res)
	}
	return out
}
