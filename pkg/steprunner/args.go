package steprunner

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxTimeoutMs bounds every timeout_ms argument.
const MaxTimeoutMs = 60000

// FieldError reports an invalid or missing argument. Field is empty when the
// problem concerns the step as a whole.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Args reads typed values out of an action's argument map. The first failure
// sticks and is returned by Err, together with any key nobody asked for.
type Args struct {
	raw  map[string]any
	seen map[string]bool
	err  *FieldError
}

func NewArgs(raw map[string]any) *Args {
	return &Args{raw: raw, seen: make(map[string]bool, len(raw))}
}

func (a *Args) fail(field, format string, v ...any) {
	if a.err == nil {
		a.err = &FieldError{Field: field, Reason: fmt.Sprintf(format, v...)}
	}
}

func (a *Args) lookup(key string) (any, bool) {
	a.seen[key] = true
	v, ok := a.raw[key]
	if ok && v == nil {
		return nil, false
	}
	return v, ok
}

// String returns a required string argument.
func (a *Args) String(key string) string {
	v, ok := a.lookup(key)
	if !ok {
		a.fail(key, "is required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		a.fail(key, "must be a string, got %T", v)
		return ""
	}
	return s
}

// OptionalString returns def when the key is absent.
func (a *Args) OptionalString(key, def string) string {
	if _, ok := a.lookup(key); !ok {
		return def
	}
	return a.String(key)
}

// Selector returns a required, non-blank selector.
func (a *Args) Selector(key string) string {
	s := strings.TrimSpace(a.String(key))
	if s == "" {
		a.fail(key, "must not be empty")
	}
	return s
}

// Bool returns def when the key is absent.
func (a *Args) Bool(key string, def bool) bool {
	v, ok := a.lookup(key)
	if !ok {
		return def
	}
	if b, ok := ParseBool(v); ok {
		return b
	}
	a.fail(key, "must be a boolean, got %v", v)
	return def
}

// ParseBool accepts a bool or any string strconv.ParseBool understands.
// Injected variables always arrive as strings.
func ParseBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err == nil {
			return parsed, true
		}
	}
	return false, false
}

// Int returns def when the key is absent. Integral floats and numeric strings
// are accepted since JSON and variable injection produce them.
func (a *Args) Int(key string, def int) int {
	v, ok := a.lookup(key)
	if !ok {
		return def
	}
	n, ok := toInt(v)
	if !ok {
		a.fail(key, "must be an integer, got %v", v)
		return def
	}
	return n
}

// Timeout reads timeout_ms, which must satisfy 0 < t <= MaxTimeoutMs.
func (a *Args) Timeout(def time.Duration) time.Duration {
	if _, ok := a.lookup("timeout_ms"); !ok {
		return def
	}
	ms := a.Int("timeout_ms", 0)
	if a.err != nil {
		return def
	}
	if ms <= 0 || ms > MaxTimeoutMs {
		a.fail("timeout_ms", "must be between 1 and %d, got %d", MaxTimeoutMs, ms)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// Err returns the first recorded failure, or an error naming unknown keys.
func (a *Args) Err() error {
	if a.err != nil {
		return a.err
	}
	var unknown []string
	for key := range a.raw {
		if !a.seen[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &FieldError{Field: unknown[0], Reason: "unknown argument"}
	}
	return nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}
