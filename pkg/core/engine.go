package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/arnavsurve/browser-agent/pkg/driver"
	"github.com/arnavsurve/browser-agent/pkg/fileutil"
	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
)

const (
	DefaultStepTimeout  = 30 * time.Second
	DefaultRetryBackoff = 500 * time.Millisecond

	artifactTimeout = 5 * time.Second
	maxDetailRunes  = 120
)

type Options struct {
	// ContinueOnError keeps running after a failed step.
	ContinueOnError bool
	// StepDelay is inserted between consecutive steps.
	StepDelay time.Duration
	// MinJitter and MaxJitter add a random delay on top of StepDelay.
	MinJitter time.Duration
	MaxJitter time.Duration
	// Retries is the number of extra attempts for a failing step.
	Retries      int
	RetryBackoff time.Duration
	// ArtifactsDir receives failure screenshots. Empty disables them.
	ArtifactsDir   string
	DefaultTimeout time.Duration
	AllowedDomains []string
	ScriptDir      string
}

func DefaultOptions() Options {
	return Options{
		RetryBackoff:   DefaultRetryBackoff,
		DefaultTimeout: DefaultStepTimeout,
	}
}

// ScriptEngine runs a script against one browser session, one step at a time.
// It is not safe to share a session between concurrent ExecuteScript calls.
type ScriptEngine struct {
	Logger  Logger
	Options Options
}

func NewScriptEngine(logger Logger, opts Options) *ScriptEngine {
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = DefaultStepTimeout
	}
	if opts.RetryBackoff < 0 {
		opts.RetryBackoff = 0
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &ScriptEngine{
		Logger:  logger,
		Options: opts,
	}
}

// ExecuteScript validates script and then runs each step in declaration
// order. It returns the results of every step that ran. A validation failure
// returns ValidationErrors before the session is touched; a failed step
// returns an *ExecutionError, wrapped with a failure count when
// ContinueOnError is set.
func (e *ScriptEngine) ExecuteScript(ctx context.Context, script Script, session driver.Session) ([]StepResult, error) {
	if err := ValidateScript(script, ValidateOptions{
		ScriptDir:      e.Options.ScriptDir,
		AllowedDomains: e.Options.AllowedDomains,
	}); err != nil {
		return nil, err
	}

	e.Logger.Info().Int("steps", len(script)).Msg("Starting script")

	results := make([]StepResult, 0, len(script))
	var firstFailure *ExecutionError
	failures := 0

	for i, spec := range script {
		if i > 0 {
			if err := sleepContext(ctx, e.delay()); err != nil {
				return results, fmt.Errorf("script interrupted before step %d: %w", i+1, err)
			}
		}

		result, execErr := e.runStep(ctx, i+1, spec, session)
		results = append(results, result)
		if execErr == nil {
			continue
		}

		if ctx.Err() != nil || !e.Options.ContinueOnError {
			return results, execErr
		}
		failures++
		if firstFailure == nil {
			firstFailure = execErr
		}
	}

	if failures > 0 {
		return results, fmt.Errorf("%d of %d steps failed: %w", failures, len(script), firstFailure)
	}

	e.Logger.Info().Int("steps", len(script)).Msg("Script completed")
	return results, nil
}

func (e *ScriptEngine) runStep(ctx context.Context, index int, spec ActionSpec, session driver.Session) (StepResult, *ExecutionError) {
	logger := e.Logger.With().Int("step_index", index).Str("action", spec.Name).Logger()
	result := StepResult{Index: index, Name: spec.Name}

	runner, err := steprunner.GetRunner(types.ExecutionContext{
		Step:           spec,
		Index:          index,
		Session:        session,
		Logger:         logger,
		ScriptDir:      e.Options.ScriptDir,
		AllowedDomains: e.Options.AllowedDomains,
	})
	if err == nil {
		err = runner.Validate()
	}
	if err != nil {
		return e.fail(ctx, logger, session, result, &ExecutionError{Index: index, Name: spec.Name, Err: err})
	}

	timeout := e.Options.DefaultTimeout
	if ta, ok := runner.(steprunner.TimeoutAware); ok && ta.Timeout() > 0 {
		timeout = ta.Timeout()
	}

	logger.Info().Msg("Running step")
	start := time.Now()
	var (
		out      *StepResult
		lastErr  error
		timedOut bool
	)
	for attempt := 1; attempt <= e.Options.Retries+1; attempt++ {
		result.Attempts = attempt

		stepCtx, cancel := context.WithTimeout(ctx, timeout)
		out, lastErr = runner.Run(stepCtx)
		timedOut = lastErr != nil && ctx.Err() == nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded)
		cancel()

		if lastErr == nil {
			break
		}
		if ctx.Err() != nil || attempt > e.Options.Retries {
			break
		}

		backoff := e.Options.RetryBackoff * time.Duration(attempt)
		logger.Warn().Err(lastErr).Int("attempt", attempt).Dur("backoff", backoff).Msg("Step failed, retrying")
		if err := sleepContext(ctx, backoff); err != nil {
			break
		}
	}
	result.DurationMs = time.Since(start).Milliseconds()

	if lastErr != nil {
		if timedOut {
			lastErr = fmt.Errorf("timed out after %s: %w", timeout, lastErr)
		}
		return e.fail(ctx, logger, session, result, &ExecutionError{
			Index:    index,
			Name:     spec.Name,
			Attempts: result.Attempts,
			TimedOut: timedOut,
			Err:      lastErr,
		})
	}

	result.OK = true
	if out != nil {
		result.Extracted = out.Extracted
		result.Meta = out.Meta
	}
	result.Detail = detailFor(result.Extracted, result.Meta)
	logger.Info().Dur("took", time.Since(start)).Str("detail", result.Detail).Msg("Step completed")
	return result, nil
}

func (e *ScriptEngine) fail(ctx context.Context, logger Logger, session driver.Session, result StepResult, execErr *ExecutionError) (StepResult, *ExecutionError) {
	result.OK = false
	result.Error = execErr.Err.Error()
	result.Detail = execErr.Err.Error()
	if result.Attempts == 0 {
		result.Attempts = 1
	}
	result.ArtifactPath = e.captureFailure(ctx, logger, session, result.Index, result.Name)
	logger.Error().Err(execErr.Err).Int("attempts", result.Attempts).Msg("Step failed")
	return result, execErr
}

// captureFailure writes a best-effort full-page screenshot. It runs even when
// ctx is cancelled so an interrupted run still leaves evidence.
func (e *ScriptEngine) captureFailure(ctx context.Context, logger Logger, session driver.Session, index int, name string) string {
	if e.Options.ArtifactsDir == "" || session == nil {
		return ""
	}

	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), artifactTimeout)
	defer cancel()

	data, err := session.Screenshot(shotCtx, driver.ScreenshotOptions{FullPage: true, Format: driver.FormatPNG})
	if err != nil {
		logger.Warn().Err(err).Msg("Could not capture failure screenshot")
		return ""
	}

	path := filepath.Join(e.Options.ArtifactsDir, fmt.Sprintf("fail-%02d-%s.png", index, name))
	if err := fileutil.EnsureParentDir(path); err != nil {
		logger.Warn().Err(err).Msg("Could not create artifacts directory")
		return ""
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		logger.Warn().Err(err).Msg("Could not write failure screenshot")
		return ""
	}
	logger.Info().Str("path", path).Msg("Saved failure screenshot")
	return path
}

func (e *ScriptEngine) delay() time.Duration {
	d := e.Options.StepDelay
	lo, hi := e.Options.MinJitter, e.Options.MaxJitter
	if lo < 0 || hi < lo {
		return d
	}
	d += lo
	if hi > lo {
		d += time.Duration(rand.Int63n(int64(hi - lo + 1)))
	}
	return d
}

// detailFor summarises a successful step for tables and reports.
func detailFor(extracted *string, meta map[string]any) string {
	if extracted != nil && *extracted != "" {
		text := *extracted
		if utf8.RuneCountInString(text) > maxDetailRunes {
			return string([]rune(text)[:maxDetailRunes]) + "…"
		}
		return text
	}
	if u, ok := meta["url"]; ok {
		return fmt.Sprint(u)
	}
	if sel, ok := meta["selector"]; ok {
		return fmt.Sprintf("selector=%q", fmt.Sprint(sel))
	}
	return "-"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
