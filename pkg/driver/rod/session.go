// Package rod implements driver.Session on top of go-rod.
package rod

import (
	"context"
	"fmt"
	"sync"

	"github.com/arnavsurve/browser-agent/pkg/driver"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

const Name = "rod"

const defaultJPEGQuality = 80

var _ driver.Session = (*Session)(nil)

func init() {
	driver.Register(Name, func(ctx context.Context, cfg driver.Config) (driver.Session, error) {
		return NewSession(ctx, cfg)
	})
}

type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page

	mu     sync.Mutex
	closed bool
}

// NewSession launches a local browser and opens a blank page.
func NewSession(ctx context.Context, cfg driver.Config) (*Session, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	var page *rod.Page
	if cfg.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &Session{
		browser:  browser,
		launcher: l,
		page:     page,
	}, nil
}

// BrowserAvailable reports the path of a locally installed browser, if any.
func BrowserAvailable() (string, bool) {
	return launcher.LookPath()
}

// element waits for selector to be attached to the DOM until ctx is done.
func (s *Session) element(ctx context.Context, selector string) (*rod.Element, error) {
	page := s.page.Context(ctx)

	var (
		el  *rod.Element
		err error
	)
	if expr, ok := driver.IsXPath(selector); ok {
		el, err = page.ElementX(expr)
	} else {
		el, err = page.Element(selector)
	}
	if err != nil {
		return nil, fmt.Errorf("element not found: %s: %w", selector, err)
	}
	return el, nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for page load: %w", err)
	}
	return nil
}

func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("waiting for %s to become visible: %w", selector, err)
	}
	return nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (s *Session) Type(ctx context.Context, selector, text string, clearFirst bool) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return err
	}

	if clearFirst {
		if _, err := el.Eval(`() => { this.value = ""; this.dispatchEvent(new Event("input", { bubbles: true })) }`); err != nil {
			return fmt.Errorf("clearing field: %w", err)
		}
	}
	if text == "" {
		return nil
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	el, err := s.element(ctx, selector)
	if err != nil {
		return "", err
	}
	// textContent, not innerText, so hidden and unrendered text is included
	// the same way on every backend.
	res, err := el.Eval(`() => this.textContent`)
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return res.Value.Str(), nil
}

// selectOption picks an option by value or label and fires the events a
// user selection would. Values are compared in the page, so no selector
// escaping is involved.
const selectOption = `(want, byLabel) => {
	const opt = Array.from(this.options || []).find(o => byLabel ? (o.label === want || o.text.trim() === want) : o.value === want);
	if (!opt) return false;
	this.value = opt.value;
	this.dispatchEvent(new Event("input", { bubbles: true }));
	this.dispatchEvent(new Event("change", { bubbles: true }));
	return true;
}`

func (s *Session) SelectOption(ctx context.Context, selector, value string, by driver.SelectBy) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return err
	}

	res, err := el.Eval(selectOption, value, by == driver.SelectByLabel)
	if err != nil {
		return fmt.Errorf("selecting option %s=%q: %w", by, value, err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("no option with %s %q in %s", by, value, selector)
	}
	return nil
}

func (s *Session) Check(ctx context.Context, selector string) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return err
	}

	checked, err := el.Property("checked")
	if err != nil {
		return fmt.Errorf("reading checked state: %w", err)
	}
	if checked.Bool() {
		return nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (s *Session) Upload(ctx context.Context, selector string, paths []string) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.SetFiles(paths); err != nil {
		return fmt.Errorf("setting files: %w", err)
	}
	return nil
}

func (s *Session) Screenshot(ctx context.Context, opts driver.ScreenshotOptions) ([]byte, error) {
	req := &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	}
	if opts.Format == driver.FormatJPEG {
		quality := opts.Quality
		if quality <= 0 {
			quality = defaultJPEGQuality
		}
		req.Format = proto.PageCaptureScreenshotFormatJpeg
		req.Quality = gson.Int(quality)
	}

	data, err := s.page.Context(ctx).Screenshot(opts.FullPage, req)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("reading page info: %w", err)
	}
	return info.URL, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	return err
}
