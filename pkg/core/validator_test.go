package core_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arnavsurve/browser-agent/pkg/core"
	_ "github.com/arnavsurve/browser-agent/pkg/steprunner/runners"
	"github.com/arnavsurve/browser-agent/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScript_ReportsEveryFailingStep(t *testing.T) {
	script, err := core.LoadScriptFromFile("testdata/broken.json")
	require.NoError(t, err)

	err = core.ValidateScript(script, core.ValidateOptions{})
	require.Error(t, err)

	var verrs core.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)

	assert.Equal(t, 2, verrs[0].Index)
	assert.Equal(t, "hover", verrs[0].Name)
	assert.Equal(t, "name", verrs[0].Field)
	assert.Contains(t, verrs[0].Reason, `unknown action "hover"`)

	assert.Equal(t, 3, verrs[1].Index)
	assert.Equal(t, "text", verrs[1].Field)

	// errors.As on the aggregate finds the first step.
	var first *core.ValidationError
	require.True(t, errors.As(err, &first))
	assert.Equal(t, 2, first.Index)
	assert.Len(t, verrs.ForStep(3), 1)
}

func TestValidateScript_UnknownActionIndex(t *testing.T) {
	known := types.ActionSpec{Name: "click", Args: map[string]any{"selector": "#a"}}
	for pos := 0; pos < 4; pos++ {
		script := types.Script{known, known, known, known}
		script[pos] = types.ActionSpec{Name: "teleport", Args: map[string]any{}}

		var verr *core.ValidationError
		err := core.ValidateScript(script, core.ValidateOptions{})
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, pos+1, verr.Index)
	}
}

func TestValidateScript_Options(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cv.pdf"), []byte("%PDF"), 0644))

	script := types.Script{
		{Name: "open_url", Args: map[string]any{"url": "https://careers.example.com/apply"}},
		{Name: "upload_file", Args: map[string]any{"selector": "#cv", "path": "cv.pdf"}},
	}

	assert.NoError(t, core.ValidateScript(script, core.ValidateOptions{ScriptDir: dir, AllowedDomains: []string{"example.com"}}))

	err := core.ValidateScript(script, core.ValidateOptions{ScriptDir: dir, AllowedDomains: []string{"jobs.io"}})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 1, verr.Index)
	assert.Equal(t, "url", verr.Field)

	err = core.ValidateScript(script, core.ValidateOptions{ScriptDir: t.TempDir()})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 2, verr.Index)
	assert.Equal(t, "path", verr.Field)
}

func TestValidationError_Messages(t *testing.T) {
	assert.Equal(t, "step 2 (type): text: is required", (&core.ValidationError{Index: 2, Name: "type", Field: "text", Reason: "is required"}).Error())
	assert.Equal(t, "script: malformed JSON: EOF", (&core.ValidationError{Reason: "malformed JSON: EOF"}).Error())

	errs := core.ValidationErrors{
		{Index: 1, Name: "click", Field: "selector", Reason: "is required"},
		{Index: 3, Name: "x", Field: "name", Reason: "unknown action"},
	}
	assert.Equal(t, "2 validation errors: step 1 (click): selector: is required; step 3 (x): name: unknown action", errs.Error())
}
