package cdp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smokePage = `<!DOCTYPE html>
<html><body>
	<input id="q" type="text">
	<button id="go">Go</button>
	<select id="color"><option value="r">Red</option><option value="g">Green</option></select>
	<input id="agree" type="checkbox">
	<div id="mixed">shown<span style="display:none"> hidden</span></div>
	<div id="result" style="display:none"></div>
	<script>
		document.getElementById('go').addEventListener('click', function () {
			var result = document.getElementById('result');
			result.textContent = document.getElementById('q').value;
			result.style.display = 'block';
		});
	</script>
</body></html>`

func chromeInstalled() bool {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func newTestSession(t *testing.T) (*Session, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if !chromeInstalled() {
		t.Skip("no local chrome found")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(smokePage))
	}))
	t.Cleanup(server.Close)

	cfg := driver.DefaultConfig()
	cfg.NoSandbox = true
	s, err := NewSession(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, server.URL
}

func timeout(t *testing.T, d time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

func TestSession_SmokeFlow(t *testing.T) {
	s, url := newTestSession(t)

	require.NoError(t, s.Navigate(timeout(t, 10*time.Second), url))
	require.NoError(t, s.Type(timeout(t, 5*time.Second), "#q", "hello", true))
	require.NoError(t, s.Click(timeout(t, 5*time.Second), "#go"))
	require.NoError(t, s.WaitVisible(timeout(t, 5*time.Second), "#result"))

	text, err := s.Text(timeout(t, 5*time.Second), "#result")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	require.NoError(t, s.SelectOption(timeout(t, 5*time.Second), "#color", "Green", driver.SelectByLabel))
	err = s.SelectOption(timeout(t, 5*time.Second), "#color", "blue", driver.SelectByValue)
	assert.ErrorContains(t, err, `no option with value "blue"`)
	require.NoError(t, s.Check(timeout(t, 5*time.Second), "#agree"))
}

func TestSession_TextIncludesHiddenContent(t *testing.T) {
	s, url := newTestSession(t)
	require.NoError(t, s.Navigate(timeout(t, 10*time.Second), url))

	text, err := s.Text(timeout(t, 5*time.Second), "#mixed")
	require.NoError(t, err)
	assert.Equal(t, "shown hidden", text)
}

func TestSession_WaitVisibleTimeout(t *testing.T) {
	s, url := newTestSession(t)
	require.NoError(t, s.Navigate(timeout(t, 10*time.Second), url))

	err := s.WaitVisible(timeout(t, 300*time.Millisecond), "#never")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "expected deadline error, got %v", err)
}
