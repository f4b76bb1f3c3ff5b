// Package driver defines the browser surface that actions are executed
// against, and a registry of backends that can open a Session.
package driver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SelectBy chooses how select_option matches an <option>.
type SelectBy string

const (
	SelectByValue SelectBy = "value"
	SelectByLabel SelectBy = "label"
)

// ImageFormat is the encoding requested from Screenshot.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

// ScreenshotOptions controls a single capture.
type ScreenshotOptions struct {
	FullPage bool
	Format   ImageFormat
	// Quality applies to JPEG only.
	Quality int
}

// Session is one live browser page. Every blocking call waits for its
// target element to appear until ctx is done; callers express step
// timeouts through the context deadline.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string, clearFirst bool) error
	Text(ctx context.Context, selector string) (string, error)
	SelectOption(ctx context.Context, selector, value string, by SelectBy) error
	Check(ctx context.Context, selector string) error
	Upload(ctx context.Context, selector string, paths []string) error
	Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error)
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}

// Config is shared by every backend.
type Config struct {
	Headless   bool
	NoSandbox  bool
	BrowserBin string
	// SlowMotion delays each browser operation inside a step. It is
	// independent of the delay the engine inserts between steps.
	SlowMotion time.Duration
	// Stealth masks common headless fingerprints. Backends without support
	// ignore it.
	Stealth bool
}

func DefaultConfig() Config {
	return Config{
		Headless: true,
	}
}

type Factory func(ctx context.Context, cfg Config) (Session, error)

var registry = map[string]Factory{}

// Register is called from each backend's init().
func Register(name string, factory Factory) {
	registry[name] = factory
}

// Open launches the named backend.
func Open(ctx context.Context, name string, cfg Config) (Session, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("no browser driver registered with name %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(ctx, cfg)
}

// Names lists registered backends in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsXPath reports whether a selector should be evaluated as XPath rather
// than CSS, and returns the expression to evaluate.
func IsXPath(selector string) (string, bool) {
	if expr, ok := strings.CutPrefix(selector, "xpath="); ok {
		return expr, true
	}
	if strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(/") {
		return selector, true
	}
	return selector, false
}
