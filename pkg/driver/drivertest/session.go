// Package drivertest provides an in-memory driver.Session for exercising the
// engine and the action runners without a browser.
package drivertest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/driver"
)

type Option struct {
	Value string
	Label string
}

// Element is a fake DOM node addressed by the exact selector string it was
// registered under.
type Element struct {
	Text     string
	Value    string
	Hidden   bool
	Checked  bool
	Options  []Option
	Selected string
	Files    []string
	// OnClick runs with the session lock held; it may mutate the page.
	OnClick func(p *Page)
}

type Page struct {
	URL      string
	elements map[string]*Element
}

func (p *Page) Set(selector string, el *Element) {
	p.elements[selector] = el
}

func (p *Page) Remove(selector string) {
	delete(p.elements, selector)
}

func (p *Page) Element(selector string) *Element {
	return p.elements[selector]
}

// Call records one Session method invocation.
type Call struct {
	Method   string
	Selector string
	Value    string
}

type Session struct {
	PollInterval time.Duration
	ImageWidth   int
	ImageHeight  int

	mu       sync.Mutex
	routes   map[string]func(p *Page)
	page     *Page
	calls    []Call
	failures map[string]error
	closed   bool
}

var _ driver.Session = (*Session)(nil)

func NewSession() *Session {
	return &Session{
		PollInterval: 5 * time.Millisecond,
		ImageWidth:   64,
		ImageHeight:  32,
		routes:       make(map[string]func(p *Page)),
		failures:     make(map[string]error),
		page:         &Page{URL: "about:blank", elements: make(map[string]*Element)},
	}
}

// Route registers the builder used to populate the page when url is opened.
func (s *Session) Route(url string, build func(p *Page)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[url] = build
}

// FailOn makes every call of method return err.
func (s *Session) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

// Do runs fn against the current page under the session lock.
func (s *Session) Do(fn func(p *Page)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.page)
}

func (s *Session) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Methods returns the method names of all recorded calls in order.
func (s *Session) Methods() []string {
	calls := s.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) record(method, selector, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: method, Selector: selector, Value: value})
	if s.closed {
		return fmt.Errorf("session is closed")
	}
	return s.failures[method]
}

// waitFor polls until the element exists (and is visible, if required) or
// ctx is done. fn runs under the lock once the element is found.
func (s *Session) waitFor(ctx context.Context, selector string, visible bool, fn func(el *Element) error) error {
	for {
		s.mu.Lock()
		el := s.page.elements[selector]
		if el != nil && (!visible || !el.Hidden) {
			var err error
			if fn != nil {
				err = fn(el)
			}
			s.mu.Unlock()
			return err
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for element %q: %w", selector, ctx.Err())
		case <-time.After(s.PollInterval):
		}
	}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.record("Navigate", "", url); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	build, ok := s.routes[url]
	if !ok {
		return fmt.Errorf("navigating to %q: net::ERR_NAME_NOT_RESOLVED", url)
	}
	page := &Page{URL: url, elements: make(map[string]*Element)}
	build(page)
	s.page = page
	return nil
}

func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	if err := s.record("WaitVisible", selector, ""); err != nil {
		return err
	}
	return s.waitFor(ctx, selector, true, nil)
}

func (s *Session) Click(ctx context.Context, selector string) error {
	if err := s.record("Click", selector, ""); err != nil {
		return err
	}
	return s.waitFor(ctx, selector, true, func(el *Element) error {
		if el.OnClick != nil {
			el.OnClick(s.page)
		}
		return nil
	})
}

func (s *Session) Type(ctx context.Context, selector, text string, clearFirst bool) error {
	if err := s.record("Type", selector, text); err != nil {
		return err
	}
	return s.waitFor(ctx, selector, true, func(el *Element) error {
		if clearFirst {
			el.Value = text
		} else {
			el.Value += text
		}
		return nil
	})
}

func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	if err := s.record("Text", selector, ""); err != nil {
		return "", err
	}
	var text string
	err := s.waitFor(ctx, selector, false, func(el *Element) error {
		text = el.Text
		return nil
	})
	return text, err
}

func (s *Session) SelectOption(ctx context.Context, selector, value string, by driver.SelectBy) error {
	if err := s.record("SelectOption", selector, value); err != nil {
		return err
	}
	return s.waitFor(ctx, selector, true, func(el *Element) error {
		for _, opt := range el.Options {
			if (by == driver.SelectByLabel && opt.Label == value) || (by != driver.SelectByLabel && opt.Value == value) {
				el.Selected = opt.Value
				return nil
			}
		}
		return fmt.Errorf("no option with %s %q in %q", by, value, selector)
	})
}

func (s *Session) Check(ctx context.Context, selector string) error {
	if err := s.record("Check", selector, ""); err != nil {
		return err
	}
	return s.waitFor(ctx, selector, true, func(el *Element) error {
		el.Checked = true
		return nil
	})
}

func (s *Session) Upload(ctx context.Context, selector string, paths []string) error {
	if err := s.record("Upload", selector, fmt.Sprint(paths)); err != nil {
		return err
	}
	return s.waitFor(ctx, selector, false, func(el *Element) error {
		el.Files = append([]string(nil), paths...)
		return nil
	})
}

// Screenshot returns a solid PNG of ImageWidth x ImageHeight regardless of
// the requested format.
func (s *Session) Screenshot(ctx context.Context, opts driver.ScreenshotOptions) ([]byte, error) {
	if err := s.record("Screenshot", "", string(opts.Format)); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, s.ImageWidth, s.ImageHeight))
	for x := 0; x < s.ImageWidth; x++ {
		for y := 0; y < s.ImageHeight; y++ {
			img.Set(x, y, color.RGBA{R: 30, G: 144, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page.URL, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// SmokePage builds the fixture used across tests: typing into #q and
// clicking #go reveals #result containing the typed text.
func SmokePage(p *Page) {
	p.Set("#q", &Element{})
	p.Set("#go", &Element{Text: "Go", OnClick: func(p *Page) {
		q := p.Element("#q")
		p.Set("#result", &Element{Text: q.Value})
	}})
}
