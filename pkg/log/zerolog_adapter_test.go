package log_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/log"
	"github.com/rs/zerolog"
)

func TestAdapter(t *testing.T) {
	out := &bytes.Buffer{}
	zl := zerolog.New(out)
	log := log.NewZerologAdapter(zl)

	log.Info().
		Str("unit", "test").
		Int("n", 1).
		Dur("took", 1500*time.Millisecond).
		Msg("hello")

	if !bytes.Contains(out.Bytes(), []byte(`"unit":"test"`)) {
		t.Fatalf("field missing")
	}
	if !bytes.Contains(out.Bytes(), []byte(`"took":1500`)) {
		t.Fatalf("duration field missing: %s", out.String())
	}
}

func TestScopedAdapter(t *testing.T) {
	out := &bytes.Buffer{}
	base := log.NewZerologAdapter(zerolog.New(out))

	scoped := base.With().Int("step_index", 3).Str("action", "click").Logger()
	scoped.Warn().Msg("retrying")

	if !bytes.Contains(out.Bytes(), []byte(`"step_index":3`)) || !bytes.Contains(out.Bytes(), []byte(`"action":"click"`)) {
		t.Fatalf("scoped fields missing: %s", out.String())
	}
}

func TestNopLogger(t *testing.T) {
	// Must not panic.
	log.NewNopLogger().Error().Str("k", "v").Msg("discarded")
}
