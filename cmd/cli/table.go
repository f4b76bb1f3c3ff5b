package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/core"
	"github.com/arnavsurve/browser-agent/pkg/types"
	"github.com/fatih/color"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func status(ok bool) string {
	if ok {
		return color.GreenString("ok")
	}
	return color.RedString("FAIL")
}

func printResults(w io.Writer, results []types.StepResult, total int) {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tACTION\tSTATUS\tATTEMPTS\tDURATION\tDETAIL")
	for _, r := range results {
		dur := (time.Duration(r.DurationMs) * time.Millisecond).String()
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", r.Index, r.Name, status(r.OK), r.Attempts, dur, oneLine(r.Detail))
	}
	for i := len(results); i < total; i++ {
		fmt.Fprintf(tw, "%d\t-\t%s\t0\t-\t-\n", i+1, color.YellowString("skipped"))
	}
	tw.Flush()
}

func printValidation(w io.Writer, script types.Script, errs core.ValidationErrors) {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tACTION\tSTATUS\tPROBLEM")
	if script == nil {
		// The document did not parse; only structural errors exist.
		for _, e := range errs {
			index, name := "-", "-"
			if e.Index > 0 {
				index = fmt.Sprint(e.Index)
			}
			if e.Name != "" {
				name = e.Name
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", index, name, status(false), problemOf(e))
		}
		tw.Flush()
		return
	}
	for i, spec := range script {
		problems := errs.ForStep(i + 1)
		if len(problems) == 0 {
			fmt.Fprintf(tw, "%d\t%s\t%s\t-\n", i+1, spec.Name, status(true))
			continue
		}
		for _, p := range problems {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, spec.Name, status(false), problemOf(p))
		}
	}
	tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func problemOf(e *core.ValidationError) string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}
