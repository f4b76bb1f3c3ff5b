package cli

import (
	"fmt"
	"path/filepath"

	"github.com/arnavsurve/browser-agent/pkg/core"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

// loadScript reads the script, resolves the varfile and injects variables.
// The returned script is nil when the document itself could not be parsed.
func loadScript(path, varfile string, logger types.Logger) (types.Script, string, error) {
	scriptAbsPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", invalidInput(fmt.Errorf("determining absolute path for script file %q: %w", path, err))
	}
	scriptDir := filepath.Dir(scriptAbsPath)

	script, err := core.LoadScriptFromFile(scriptAbsPath)
	if err != nil {
		return nil, scriptDir, invalidInput(err)
	}
	logger.Debug().Int("steps", len(script)).Msgf("Loaded script %s", path)

	varCtx := core.VarContext{}
	if varfile != "" {
		varCtx, err = core.ResolveVarfile(varfile, logger)
		if err != nil {
			return script, scriptDir, invalidInput(err)
		}
		logger.Debug().Msgf("Loaded varfile %s", varfile)
	}

	injected, err := core.InjectVarsIntoScript(script, varCtx)
	if err != nil {
		return script, scriptDir, err
	}
	return injected, scriptDir, nil
}
