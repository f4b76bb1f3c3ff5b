package core_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/core"
	"github.com/arnavsurve/browser-agent/pkg/driver/drivertest"
	"github.com/arnavsurve/browser-agent/pkg/log"
	"github.com/arnavsurve/browser-agent/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureURL = "https://fixture.test/"

func newFixtureSession() *drivertest.Session {
	s := drivertest.NewSession()
	s.Route(fixtureURL, drivertest.SmokePage)
	return s
}

func newEngine(opts core.Options) *core.ScriptEngine {
	return core.NewScriptEngine(log.NewNopLogger(), opts)
}

func TestExecuteScript_OpenThenExtract(t *testing.T) {
	script, err := core.LoadScriptFromFile("testdata/smoke.json")
	require.NoError(t, err)

	session := newFixtureSession()
	results, err := newEngine(core.DefaultOptions()).ExecuteScript(context.Background(), script, session)
	require.NoError(t, err)

	require.Len(t, results, 5)
	last := results[4]
	assert.True(t, last.OK)
	require.NotNil(t, last.Extracted)
	assert.Equal(t, "hello", *last.Extracted)
	assert.Equal(t, "hello", last.Detail)
	assert.Equal(t, fixtureURL, results[0].Detail)
	assert.Equal(t, `selector="#go"`, results[2].Detail)

	for i, r := range results {
		assert.Equal(t, i+1, r.Index)
		assert.Equal(t, script[i].Name, r.Name)
		assert.Equal(t, 1, r.Attempts)
	}
}

func TestExecuteScript_PreservesDeclarationOrder(t *testing.T) {
	session := newFixtureSession()
	script := types.Script{
		{Name: "open_url", Args: map[string]any{"url": fixtureURL}},
		{Name: "check", Args: map[string]any{"selector": "#q"}},
		{Name: "type", Args: map[string]any{"selector": "#q", "text": "a"}},
		{Name: "click", Args: map[string]any{"selector": "#go"}},
		{Name: "wait_for", Args: map[string]any{"selector": "#result"}},
		{Name: "extract_text", Args: map[string]any{"selector": "#result"}},
	}

	_, err := newEngine(core.DefaultOptions()).ExecuteScript(context.Background(), script, session)
	require.NoError(t, err)

	assert.Equal(t, []string{"Navigate", "Check", "Type", "Click", "WaitVisible", "Text"}, session.Methods())
}

func TestExecuteScript_ValidationBeforeBrowser(t *testing.T) {
	session := newFixtureSession()
	script := types.Script{
		{Name: "open_url", Args: map[string]any{"url": fixtureURL}},
		{Name: "scroll", Args: map[string]any{}},
	}

	results, err := newEngine(core.DefaultOptions()).ExecuteScript(context.Background(), script, session)
	require.Error(t, err)
	assert.Nil(t, results)

	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 2, verr.Index)
	assert.Empty(t, session.Calls(), "no browser interaction before validation passes")
}

func TestExecuteScript_WaitTimeoutHaltsScript(t *testing.T) {
	session := newFixtureSession()
	script := types.Script{
		{Name: "open_url", Args: map[string]any{"url": fixtureURL}},
		{Name: "wait_for", Args: map[string]any{"selector": "#never", "timeout_ms": 50}},
		{Name: "click", Args: map[string]any{"selector": "#go"}},
	}

	start := time.Now()
	results, err := newEngine(core.DefaultOptions()).ExecuteScript(context.Background(), script, session)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	var execErr *core.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, 2, execErr.Index)
	assert.True(t, execErr.Timeout())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	require.Len(t, results, 2)
	assert.False(t, results[1].OK)
	assert.Contains(t, results[1].Error, "timed out after 50ms")
	assert.NotContains(t, session.Methods(), "Click")
}

func TestExecuteScript_ContinueOnError(t *testing.T) {
	session := newFixtureSession()
	script := types.Script{
		{Name: "open_url", Args: map[string]any{"url": fixtureURL}},
		{Name: "click", Args: map[string]any{"selector": "#missing", "timeout_ms": 20}},
		{Name: "type", Args: map[string]any{"selector": "#q", "text": "still runs"}},
	}

	opts := core.DefaultOptions()
	opts.ContinueOnError = true
	results, err := newEngine(opts).ExecuteScript(context.Background(), script, session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 steps failed")

	var execErr *core.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, 2, execErr.Index)

	require.Len(t, results, 3)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.True(t, results[2].OK)
}

func TestExecuteScript_Retries(t *testing.T) {
	session := newFixtureSession()
	require.NoError(t, session.Navigate(context.Background(), fixtureURL))

	// Clicks fail until the override is lifted mid-run.
	session.FailOn("Click", errors.New("element is covered"))
	go func() {
		time.Sleep(30 * time.Millisecond)
		session.FailOn("Click", nil)
	}()

	opts := core.DefaultOptions()
	opts.Retries = 3
	opts.RetryBackoff = 20 * time.Millisecond
	results, err := newEngine(opts).ExecuteScript(context.Background(), types.Script{
		{Name: "click", Args: map[string]any{"selector": "#go"}},
	}, session)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
	assert.Greater(t, results[0].Attempts, 1)
}

func TestExecuteScript_RetriesExhausted(t *testing.T) {
	session := newFixtureSession()
	session.FailOn("Navigate", errors.New("net::ERR_CONNECTION_REFUSED"))

	opts := core.DefaultOptions()
	opts.Retries = 2
	opts.RetryBackoff = time.Millisecond
	results, err := newEngine(opts).ExecuteScript(context.Background(), types.Script{
		{Name: "open_url", Args: map[string]any{"url": fixtureURL}},
	}, session)
	require.Error(t, err)

	var execErr *core.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, 3, execErr.Attempts)
	assert.False(t, execErr.Timeout())
	assert.Equal(t, 3, results[0].Attempts)
	assert.Equal(t, []string{"Navigate", "Navigate", "Navigate"}, session.Methods())
}

func TestExecuteScript_FailureArtifact(t *testing.T) {
	dir := t.TempDir()
	session := newFixtureSession()

	opts := core.DefaultOptions()
	opts.ArtifactsDir = filepath.Join(dir, "artifacts")
	results, err := newEngine(opts).ExecuteScript(context.Background(), types.Script{
		{Name: "open_url", Args: map[string]any{"url": fixtureURL}},
		{Name: "extract_text", Args: map[string]any{"selector": "#absent", "timeout_ms": 20}},
	}, session)
	require.Error(t, err)

	want := filepath.Join(dir, "artifacts", "fail-02-extract_text.png")
	require.Len(t, results, 2)
	assert.Equal(t, want, results[1].ArtifactPath)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))
}

func TestExecuteScript_Cancelled(t *testing.T) {
	session := newFixtureSession()
	ctx, cancel := context.WithCancel(context.Background())

	opts := core.DefaultOptions()
	opts.ContinueOnError = true
	opts.StepDelay = time.Minute
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	results, err := newEngine(opts).ExecuteScript(ctx, types.Script{
		{Name: "open_url", Args: map[string]any{"url": fixtureURL}},
		{Name: "click", Args: map[string]any{"selector": "#go"}},
	}, session)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, results, 1)
}

func TestExecuteScript_StepDelay(t *testing.T) {
	session := newFixtureSession()

	opts := core.DefaultOptions()
	opts.StepDelay = 30 * time.Millisecond
	opts.MinJitter = 5 * time.Millisecond
	opts.MaxJitter = 10 * time.Millisecond

	start := time.Now()
	_, err := newEngine(opts).ExecuteScript(context.Background(), types.Script{
		{Name: "open_url", Args: map[string]any{"url": fixtureURL}},
		{Name: "check", Args: map[string]any{"selector": "#q"}},
		{Name: "click", Args: map[string]any{"selector": "#go"}},
	}, session)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestExecuteScript_DetailTruncated(t *testing.T) {
	long := strings.Repeat("é", 130)
	session := drivertest.NewSession()
	session.Route(fixtureURL, func(p *drivertest.Page) {
		p.Set("#long", &drivertest.Element{Text: long})
	})

	results, err := newEngine(core.DefaultOptions()).ExecuteScript(context.Background(), types.Script{
		{Name: "open_url", Args: map[string]any{"url": fixtureURL}},
		{Name: "extract_text", Args: map[string]any{"selector": "#long"}},
	}, session)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("é", 120)+"…", results[1].Detail)
	assert.Equal(t, long, *results[1].Extracted)
}
