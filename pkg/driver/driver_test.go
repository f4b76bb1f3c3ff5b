package driver_test

import (
	"context"
	"testing"

	"github.com/arnavsurve/browser-agent/pkg/driver"
	"github.com/arnavsurve/browser-agent/pkg/driver/drivertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsXPath(t *testing.T) {
	testCases := []struct {
		selector string
		expr     string
		xpath    bool
	}{
		{"#result", "#result", false},
		{"div > span.title", "div > span.title", false},
		{"//button[@id='go']", "//button[@id='go']", true},
		{"(//a)[2]", "(//a)[2]", true},
		{"xpath=.//li", ".//li", true},
	}

	for _, tc := range testCases {
		t.Run(tc.selector, func(t *testing.T) {
			expr, ok := driver.IsXPath(tc.selector)
			assert.Equal(t, tc.xpath, ok)
			assert.Equal(t, tc.expr, expr)
		})
	}
}

func TestOpen(t *testing.T) {
	fake := drivertest.NewSession()
	driver.Register("fake-for-open", func(ctx context.Context, cfg driver.Config) (driver.Session, error) {
		return fake, nil
	})

	s, err := driver.Open(context.Background(), "fake-for-open", driver.DefaultConfig())
	require.NoError(t, err)
	assert.Same(t, fake, s)
	assert.Contains(t, driver.Names(), "fake-for-open")

	_, err = driver.Open(context.Background(), "missing", driver.DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no browser driver registered with name "missing"`)
}
