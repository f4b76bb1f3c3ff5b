package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/core"
	"github.com/arnavsurve/browser-agent/pkg/driver"
	"github.com/arnavsurve/browser-agent/pkg/log/sinks"
	"github.com/arnavsurve/browser-agent/pkg/report"
	"github.com/arnavsurve/browser-agent/pkg/security"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

type RunCmd struct {
	Script string `arg:"" help:"JSON (or YAML) action script." type:"path"`

	Headless        bool          `help:"Run the browser without a visible window." default:"true" negatable:"" env:"BA_HEADLESS"`
	SlowMo          int           `name:"slowmo" help:"Delay in milliseconds between steps." default:"0" env:"BA_SLOWMO"`
	InputSlowMo     int           `name:"input-slowmo" help:"Delay in milliseconds before each browser operation inside a step." default:"0" env:"BA_INPUT_SLOWMO"`
	RandomDelayMs   []int         `name:"random-delay-ms" help:"Extra random delay between steps, as LO,HI milliseconds." sep:"," placeholder:"LO,HI" env:"BA_RANDOM_DELAY_MS"`
	Retries         int           `help:"Extra attempts for a failing step." default:"0" env:"BA_RETRIES"`
	ContinueOnError bool          `help:"Keep running after a step fails." env:"BA_CONTINUE_ON_ERROR"`
	Timeout         time.Duration `help:"Default per-step timeout when a step sets no timeout_ms." default:"30s" env:"BA_TIMEOUT"`
	Driver          string        `help:"Browser backend." enum:"rod,cdp" default:"rod" env:"BA_DRIVER"`
	ArtifactsDir    string        `help:"Directory for failure screenshots. Empty disables them." default:"artifacts" type:"path" env:"BA_ARTIFACTS_DIR"`
	ReportDir       string        `help:"Write report.json and report.csv to this directory." type:"path" env:"BA_REPORT_DIR"`
	Varfile         string        `help:"YAML varfile providing {{ name }} values." type:"path" env:"BA_VARFILE"`
	AllowedDomains  []string      `help:"Restrict open_url to these domains and their subdomains." sep:"," env:"BA_ALLOWED_DOMAINS"`
	NoSandbox       bool          `help:"Disable the browser sandbox (needed in some containers)." env:"BA_NO_SANDBOX"`
	Stealth         bool          `help:"Mask headless browser fingerprints (rod driver only)." env:"BA_STEALTH"`
	BrowserBin      string        `help:"Browser executable to launch instead of the detected one." type:"path" env:"BA_BROWSER_BIN"`
	LogDir          string        `help:"Directory for JSON run logs." default:".browser-agent/logs" type:"path" env:"BA_LOG_DIR"`
}

// Validate is called by kong after flags are parsed.
func (r *RunCmd) Validate() error {
	if r.SlowMo < 0 {
		return fmt.Errorf("--slowmo must not be negative")
	}
	if r.InputSlowMo < 0 {
		return fmt.Errorf("--input-slowmo must not be negative")
	}
	if r.Retries < 0 {
		return fmt.Errorf("--retries must not be negative")
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("--timeout must be positive")
	}
	if len(r.RandomDelayMs) > 0 {
		if len(r.RandomDelayMs) != 2 {
			return fmt.Errorf("--random-delay-ms expects LO,HI")
		}
		if r.RandomDelayMs[0] < 0 || r.RandomDelayMs[1] < r.RandomDelayMs[0] {
			return fmt.Errorf("--random-delay-ms needs 0 <= LO <= HI, got %d,%d", r.RandomDelayMs[0], r.RandomDelayMs[1])
		}
	}
	return nil
}

func (r *RunCmd) Run(ctx context.Context, g *Globals) error {
	if err := r.Validate(); err != nil {
		return invalidInput(err)
	}
	runID := uuid.New().String()

	logFilePath := filepath.Join(r.LogDir, fmt.Sprintf("%s.json", runID))
	fileSink, err := sinks.NewFileSink(logFilePath)
	if err != nil {
		return fmt.Errorf("creating file log sink: %w", err)
	}
	cmdLogger, logRouter := newLogger(g, fileSink)
	defer closeLogger(g, logRouter)

	cmdLogger.Info().Msgf("Starting script run with ID: %s", runID)
	cmdLogger.Info().Msgf("Logs will be saved to %q", logFilePath)

	redactor := &security.Redactor{}
	script, scriptDir, err := loadScript(r.Script, r.Varfile, cmdLogger)
	if err == nil {
		redactor = security.NewRedactor(script)
		logRouter.SetRedactor(redactor)
		err = core.ValidateScript(script, core.ValidateOptions{
			ScriptDir:      scriptDir,
			AllowedDomains: r.AllowedDomains,
		})
	}
	if err != nil {
		var verrs core.ValidationErrors
		if errors.As(err, &verrs) {
			printValidation(g.Out, script, verrs)
		}
		cmdLogger.Error().Err(err).Msg("Script validation failed")
		return err
	}
	cmdLogger.Info().Int("steps", len(script)).Msg("Script validation passed")

	cmdLogger.Info().Str("driver", r.Driver).Msg("Launching browser")
	session, err := driver.Open(ctx, r.Driver, r.driverConfig())
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Could not start browser")
		return fmt.Errorf("starting browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			cmdLogger.Warn().Err(err).Msg("Closing browser")
		}
	}()

	engine := core.NewScriptEngine(cmdLogger, r.engineOptions(scriptDir))
	started := time.Now()
	results, runErr := engine.ExecuteScript(ctx, script, session)
	finished := time.Now()

	// Extracted text can echo a secret typed earlier.
	shown := redactor.RedactResults(results)
	printResults(g.Out, shown, len(script))

	if r.ReportDir != "" {
		rep := report.New(runID, r.Script, r.Driver, len(script), shown, runErr)
		rep.StartedAt, rep.FinishedAt = started, finished
		rep.Error = redactor.Redact(rep.Error)
		jsonPath, csvPath, err := report.Write(rep, r.ReportDir)
		if err != nil {
			cmdLogger.Error().Err(err).Msg("Could not write report")
		} else {
			cmdLogger.Info().Str("json", jsonPath).Str("csv", csvPath).Msg("Report written")
		}
	}

	if runErr != nil {
		cmdLogger.Error().Err(runErr).Msg("Script failed")
		return runErr
	}

	fmt.Fprintln(g.Out, color.GreenString("All %d steps passed", len(script)))
	cmdLogger.Info().Msgf("Script completed successfully. Logs can be found at %q", logFilePath)
	return nil
}

func (r *RunCmd) driverConfig() driver.Config {
	cfg := driver.DefaultConfig()
	cfg.Headless = r.Headless
	cfg.NoSandbox = r.NoSandbox
	cfg.BrowserBin = r.BrowserBin
	cfg.Stealth = r.Stealth
	cfg.SlowMotion = time.Duration(r.InputSlowMo) * time.Millisecond
	return cfg
}

func (r *RunCmd) engineOptions(scriptDir string) core.Options {
	opts := core.DefaultOptions()
	opts.ContinueOnError = r.ContinueOnError
	opts.StepDelay = time.Duration(r.SlowMo) * time.Millisecond
	if len(r.RandomDelayMs) == 2 {
		opts.MinJitter = time.Duration(r.RandomDelayMs[0]) * time.Millisecond
		opts.MaxJitter = time.Duration(r.RandomDelayMs[1]) * time.Millisecond
	}
	opts.Retries = r.Retries
	opts.ArtifactsDir = r.ArtifactsDir
	opts.DefaultTimeout = r.Timeout
	opts.AllowedDomains = r.AllowedDomains
	opts.ScriptDir = scriptDir
	return opts
}
