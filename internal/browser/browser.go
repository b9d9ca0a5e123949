// Package browser attaches to an already running browser over its remote
// debug port and reads rendered page content. It never launches, navigates,
// or closes anything; the user's browsing session stays untouched.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

var (
	// ErrConnectionUnavailable indicates the debug port could not be reached
	// or the target list could not be read.
	ErrConnectionUnavailable = errors.New("browser connection unavailable")

	// ErrNoPagesOpen indicates the browser is reachable but has no page tabs.
	ErrNoPagesOpen = errors.New("no pages open in browser")

	// ErrContentTooSmall flags captures below the configured minimum length.
	ErrContentTooSmall = errors.New("page content too small")
)

// Page describes one open browser tab.
type Page struct {
	ID    string
	URL   string
	Title string
}

// Session reads pages from a running browser.
type Session interface {
	ListPages(ctx context.Context) ([]Page, error)
	Content(ctx context.Context, pageID string) (string, error)
	Close()
}

// Options configures a devtools session.
type Options struct {
	// SettleDelay is how long to wait after attaching before reading the
	// document, giving late JavaScript a chance to render.
	SettleDelay time.Duration
	Verbose     bool
}

// DefaultOptions returns the standard session configuration.
func DefaultOptions() Options {
	return Options{SettleDelay: 3 * time.Second}
}

// DevtoolsSession is a Session backed by the Chrome DevTools protocol.
type DevtoolsSession struct {
	browserCtx context.Context
	cancels    []context.CancelFunc
	opts       Options
}

// Connect attaches to the browser listening at debugURL. A control-port
// address (e.g. http://127.0.0.1:9222) is resolved to the browser's
// websocket URL through the port's /json/version endpoint; a full
// ws://host/devtools/browser/<id> URL is dialed exactly as given.
func Connect(ctx context.Context, debugURL string, opts Options) (*DevtoolsSession, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, debugURL, allocatorOptions(debugURL)...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &DevtoolsSession{
		browserCtx: browserCtx,
		cancels:    []context.CancelFunc{cancelBrowser, cancelAlloc},
		opts:       opts,
	}

	// Probe the connection up front so callers get a clean sentinel instead
	// of a failure mid-pass.
	if _, err := chromedp.Targets(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionUnavailable, err)
	}

	if opts.Verbose {
		log.Printf("[BROWSER] Attached to %s", debugURL)
	}
	return s, nil
}

// needsResolution reports whether debugURL is a bare control-port address
// rather than a devtools websocket URL. The browser only accepts websocket
// upgrades under /devtools/, so anything else must go through chromedp's
// /json/version lookup to find the real browser websocket.
func needsResolution(debugURL string) bool {
	return !strings.Contains(debugURL, "/devtools/")
}

func allocatorOptions(debugURL string) []chromedp.RemoteAllocatorOption {
	if needsResolution(debugURL) {
		return nil
	}
	return []chromedp.RemoteAllocatorOption{chromedp.NoModifyURL}
}

// ListPages returns open page tabs in the browser's enumeration order.
// Devtools and extension targets are filtered out.
func (s *DevtoolsSession) ListPages(ctx context.Context) ([]Page, error) {
	infos, err := chromedp.Targets(s.browserCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionUnavailable, err)
	}

	var pages []Page
	for _, info := range infos {
		if info.Type != "page" {
			continue
		}
		pages = append(pages, Page{
			ID:    string(info.TargetID),
			URL:   info.URL,
			Title: info.Title,
		})
	}
	if len(pages) == 0 {
		return nil, ErrNoPagesOpen
	}
	return pages, nil
}

// Content attaches to one page, waits the settle delay, and returns the
// rendered document. The tab is left exactly as it was.
func (s *DevtoolsSession) Content(ctx context.Context, pageID string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(s.browserCtx,
		chromedp.WithTargetID(target.ID(pageID)))
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		tabCtx, cancelDeadline = context.WithDeadline(tabCtx, deadline)
		defer cancelDeadline()
	}

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Sleep(s.opts.SettleDelay),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}

	if s.opts.Verbose {
		log.Printf("[BROWSER] Captured %d bytes from page %s", len(html), pageID)
	}
	return html, nil
}

// Close detaches from the browser. The browser process and its tabs keep
// running.
func (s *DevtoolsSession) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// PickPage chooses the page a pass should capture: the first tab in
// enumeration order, which the browser keeps stable across calls.
func PickPage(pages []Page) (Page, error) {
	if len(pages) == 0 {
		return Page{}, ErrNoPagesOpen
	}
	return pages[0], nil
}
