package cli

import (
	"fmt"
	"io"

	"github.com/arnavsurve/browser-agent/pkg/log"
	"github.com/arnavsurve/browser-agent/pkg/log/sinks"
	"github.com/arnavsurve/browser-agent/pkg/types"
	"github.com/rs/zerolog"

	// Ensure all runner and driver implementations are initialized
	_ "github.com/arnavsurve/browser-agent/pkg/driver/cdp"
	_ "github.com/arnavsurve/browser-agent/pkg/driver/rod"
	_ "github.com/arnavsurve/browser-agent/pkg/steprunner/runners"
)

const envPrefix = "BA_"

// CLI is the kong command tree.
type CLI struct {
	LogLevel string `help:"Minimum level written to the console and the run log." enum:"debug,info,warn,error" default:"info" env:"BA_LOG_LEVEL"`

	Run      RunCmd      `cmd:"" help:"Execute a script against a live browser."`
	Validate ValidateCmd `cmd:"" help:"Check a script offline without launching a browser."`
	Actions  ActionsCmd  `cmd:"" help:"List the supported actions and their arguments."`
	Doctor   DoctorCmd   `cmd:"" help:"Show effective settings and check for a browser binary."`
}

// Globals is bound into every command's Run method.
type Globals struct {
	LogLevel string
	Out      io.Writer
}

// newLogger builds the zerolog pipeline used by a command. Extra sinks are
// added to the console sink.
func newLogger(g *Globals, extra ...log.Sink) (types.Logger, *log.Router) {
	level, err := zerolog.ParseLevel(g.LogLevel)
	if err != nil || g.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	router := log.NewRouter(sinks.NewConsoleSinkTo(g.Out))
	for _, s := range extra {
		router.AddSink(s)
	}

	base := zerolog.New(router).Level(level).With().Timestamp().Logger()
	return log.NewZerologAdapter(base), router
}

func closeLogger(g *Globals, router *log.Router) {
	if err := router.Close(); err != nil {
		fmt.Fprintf(g.Out, "Error during log shutdown: %v\n", err)
	}
}
