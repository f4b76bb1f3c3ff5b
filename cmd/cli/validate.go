package cli

import (
	"errors"
	"fmt"

	"github.com/arnavsurve/browser-agent/pkg/core"
	"github.com/fatih/color"
)

type ValidateCmd struct {
	Script         string   `arg:"" help:"JSON (or YAML) action script." type:"path"`
	Varfile        string   `help:"YAML varfile providing {{ name }} values." type:"path" env:"BA_VARFILE"`
	AllowedDomains []string `help:"Restrict open_url to these domains and their subdomains." sep:"," env:"BA_ALLOWED_DOMAINS"`
}

func (v *ValidateCmd) Run(g *Globals) error {
	logger, router := newLogger(g)
	defer closeLogger(g, router)

	script, scriptDir, err := loadScript(v.Script, v.Varfile, logger)
	if err == nil {
		err = core.ValidateScript(script, core.ValidateOptions{
			ScriptDir:      scriptDir,
			AllowedDomains: v.AllowedDomains,
		})
	}

	var verrs core.ValidationErrors
	switch {
	case err == nil:
		printValidation(g.Out, script, nil)
		fmt.Fprintln(g.Out, color.GreenString("%s: %d steps valid", v.Script, len(script)))
		return nil
	case errors.As(err, &verrs):
		printValidation(g.Out, script, verrs)
		return fmt.Errorf("validating %s: %w", v.Script, err)
	default:
		return err
	}
}
