package log_test

import (
	"errors"
	"testing"

	"github.com/arnavsurve/browser-agent/pkg/log"
	"github.com/arnavsurve/browser-agent/pkg/security"
	"github.com/arnavsurve/browser-agent/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	events []*log.LogEvent
	closed bool
	err    error
}

func (m *memorySink) Write(event *log.LogEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return m.err
}

func TestRouter_DecodesZerologLines(t *testing.T) {
	sink := &memorySink{}
	router := log.NewRouter(sink)
	logger := log.NewZerologAdapter(zerolog.New(router).With().Timestamp().Logger())

	logger.Warn().Int("step_index", 2).Str("action", "click").Msg("element not found")

	require.Len(t, sink.events, 1)
	evt := sink.events[0]
	assert.Equal(t, types.WarnLevel, evt.Level)
	assert.Equal(t, "element not found", evt.Message)
	assert.Equal(t, "click", evt.Fields["action"])
	assert.EqualValues(t, 2, evt.Fields["step_index"])
	assert.False(t, evt.Timestamp.IsZero())
}

func TestRouter_RedactsSecrets(t *testing.T) {
	sink := &memorySink{}
	router := log.NewRouter(sink)
	router.SetRedactor(&security.Redactor{Secrets: []string{"hunter2"}})
	logger := log.NewZerologAdapter(zerolog.New(router))

	logger.Info().
		Str("text", "password is hunter2").
		Interface("meta", map[string]any{"typed": "hunter2"}).
		Err(errors.New("typing hunter2 failed")).
		Msg("typed hunter2")

	require.Len(t, sink.events, 1)
	evt := sink.events[0]
	assert.Equal(t, "typed ********", evt.Message)
	assert.Equal(t, "password is ********", evt.Fields["text"])
	assert.Equal(t, map[string]any{"typed": "********"}, evt.Fields["meta"])
	assert.Equal(t, "typing ******** failed", evt.Fields["error"])
}

func TestRouter_CloseReturnsFirstError(t *testing.T) {
	first := &memorySink{err: errors.New("boom")}
	second := &memorySink{}
	router := log.NewRouter(first)
	router.AddSink(second)

	err := router.Close()
	assert.EqualError(t, err, "boom")
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}

func TestConvertZerologLevel(t *testing.T) {
	assert.Equal(t, types.DebugLevel, log.ConvertZerologLevel(zerolog.TraceLevel))
	assert.Equal(t, types.ErrorLevel, log.ConvertZerologLevel(zerolog.ErrorLevel))
	assert.Equal(t, types.FatalLevel, log.ConvertZerologLevel(zerolog.PanicLevel))
	assert.Equal(t, types.InfoLevel, log.ConvertZerologLevel(zerolog.NoLevel))
}
