package cli

import (
	"fmt"

	"github.com/arnavsurve/browser-agent/pkg/steprunner"
)

type ActionsCmd struct{}

func (a *ActionsCmd) Run(g *Globals) error {
	tw := newTable(g.Out)
	fmt.Fprintln(tw, "ACTION\tARGS")
	for _, info := range steprunner.Actions() {
		fmt.Fprintf(tw, "%s\t%s\n", info.Name, info.Usage)
	}
	return tw.Flush()
}
