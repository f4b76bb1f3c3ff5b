package security_test

import (
	"testing"

	"github.com/arnavsurve/browser-agent/pkg/security"
	"github.com/stretchr/testify/assert"
)

func TestHostAllowed(t *testing.T) {
	allowed := []string{"example.com", "*.jobs.io", " Careers.ORG "}

	testCases := []struct {
		host string
		want bool
	}{
		{"example.com", true},
		{"www.example.com", true},
		{"a.b.example.com", true},
		{"example.com.", true},
		{"notexample.com", false},
		{"example.com.evil.net", false},
		{"jobs.io", true},
		{"apply.jobs.io", true},
		{"careers.org", true},
		{"other.net", false},
	}

	for _, tc := range testCases {
		t.Run(tc.host, func(t *testing.T) {
			assert.Equal(t, tc.want, security.HostAllowed(tc.host, allowed))
		})
	}

	assert.True(t, security.HostAllowed("anything.test", nil))
}
