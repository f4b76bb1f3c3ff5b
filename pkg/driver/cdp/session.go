// Package cdp implements driver.Session on top of chromedp.
package cdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/driver"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const Name = "cdp"

var _ driver.Session = (*Session)(nil)

func init() {
	driver.Register(Name, func(ctx context.Context, cfg driver.Config) (driver.Session, error) {
		return NewSession(ctx, cfg)
	})
}

type Session struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	slowMotion  time.Duration

	mu     sync.Mutex
	closed bool
}

// NewSession starts a browser through chromedp's exec allocator and opens
// one tab. The browser outlives ctx; it is released by Close.
func NewSession(ctx context.Context, cfg driver.Config) (*Session, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.BrowserBin != "" {
		opts = append(opts, chromedp.ExecPath(cfg.BrowserBin))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// The first Run on a fresh context starts the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Session{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		slowMotion:  cfg.SlowMotion,
	}, nil
}

// run executes actions on the tab, bounded by the deadline and cancellation
// of the caller's ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var err error
	if s.slowMotion > 0 {
		select {
		case <-runCtx.Done():
			err = runCtx.Err()
		case <-time.After(s.slowMotion):
		}
	}
	if err == nil {
		err = chromedp.Run(runCtx, actions...)
	}
	// Surface the caller's own context error so deadline checks see it
	// regardless of which of the two contexts fired first.
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		err = fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return err
}

func query(selector string) (string, chromedp.QueryOption) {
	if expr, ok := driver.IsXPath(selector); ok {
		return expr, chromedp.BySearch
	}
	return selector, chromedp.ByQuery
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	sel, by := query(selector)
	if err := s.run(ctx, chromedp.WaitVisible(sel, by)); err != nil {
		return fmt.Errorf("waiting for %s to become visible: %w", selector, err)
	}
	return nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	sel, by := query(selector)
	if err := s.run(ctx, chromedp.Click(sel, by, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click failed: %s: %w", selector, err)
	}
	return nil
}

func (s *Session) Type(ctx context.Context, selector, text string, clearFirst bool) error {
	sel, by := query(selector)
	actions := []chromedp.Action{chromedp.WaitVisible(sel, by)}
	if clearFirst {
		actions = append(actions, chromedp.Clear(sel, by))
	}
	if text != "" {
		actions = append(actions, chromedp.SendKeys(sel, text, by))
	}
	if err := s.run(ctx, actions...); err != nil {
		return fmt.Errorf("input failed: %s: %w", selector, err)
	}
	return nil
}

func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	sel, by := query(selector)
	var text string
	if err := s.run(ctx, chromedp.TextContent(sel, &text, by)); err != nil {
		return "", fmt.Errorf("failed to read text: %s: %w", selector, err)
	}
	return text, nil
}

// selectScript picks an option by value or label and fires the events a
// user selection would.
const selectScript = `(() => {
	const sel = %s, isXPath = %t, want = %s, byLabel = %t;
	const el = isXPath
		? document.evaluate(sel, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue
		: document.querySelector(sel);
	if (!el || !el.options) return false;
	const opt = Array.from(el.options).find(o => byLabel ? (o.label === want || o.text.trim() === want) : o.value === want);
	if (!opt) return false;
	el.value = opt.value;
	el.dispatchEvent(new Event("input", { bubbles: true }));
	el.dispatchEvent(new Event("change", { bubbles: true }));
	return true;
})()`

func (s *Session) SelectOption(ctx context.Context, selector, value string, by driver.SelectBy) error {
	expr, isXPath := driver.IsXPath(selector)
	sel, queryBy := query(selector)

	selJSON, err := json.Marshal(expr)
	if err != nil {
		return err
	}
	wantJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}
	script := fmt.Sprintf(selectScript, selJSON, isXPath, wantJSON, by == driver.SelectByLabel)

	var selected bool
	if err := s.run(ctx, chromedp.WaitVisible(sel, queryBy), chromedp.Evaluate(script, &selected)); err != nil {
		return fmt.Errorf("selecting option %s=%q: %w", by, value, err)
	}
	if !selected {
		return fmt.Errorf("no option with %s %q in %s", by, value, selector)
	}
	return nil
}

func (s *Session) Check(ctx context.Context, selector string) error {
	sel, by := query(selector)
	var checked bool
	if err := s.run(ctx, chromedp.WaitVisible(sel, by), chromedp.JavascriptAttribute(sel, "checked", &checked, by)); err != nil {
		return fmt.Errorf("reading checked state: %s: %w", selector, err)
	}
	if checked {
		return nil
	}
	if err := s.run(ctx, chromedp.Click(sel, by)); err != nil {
		return fmt.Errorf("click failed: %s: %w", selector, err)
	}
	return nil
}

func (s *Session) Upload(ctx context.Context, selector string, paths []string) error {
	sel, by := query(selector)
	if err := s.run(ctx, chromedp.SetUploadFiles(sel, paths, by)); err != nil {
		return fmt.Errorf("setting files: %s: %w", selector, err)
	}
	return nil
}

func (s *Session) Screenshot(ctx context.Context, opts driver.ScreenshotOptions) ([]byte, error) {
	quality := opts.Quality
	if opts.Format != driver.FormatJPEG {
		// chromedp encodes full-page captures as PNG at quality 100.
		quality = 100
	} else if quality <= 0 {
		quality = 80
	}

	var buf []byte
	var action chromedp.Action
	switch {
	case opts.FullPage:
		action = chromedp.FullScreenshot(&buf, quality)
	case opts.Format == driver.FormatJPEG:
		action = chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatJpeg).
				WithQuality(int64(quality)).
				Do(ctx)
			return err
		})
	default:
		action = chromedp.CaptureScreenshot(&buf)
	}

	if err := s.run(ctx, action); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("reading location: %w", err)
	}
	return url, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := chromedp.Cancel(s.tabCtx)
	s.tabCancel()
	s.allocCancel()
	return err
}
