package browser

import (
	"context"
	"time"
)

// Cookie is the serializable subset of a browser cookie needed to restore a
// logged-in session. Expires is seconds since the Unix epoch; zero means a
// session cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Automation drives a real browser page. Implementations block until the
// requested interaction completes or the context is done.
type Automation interface {
	// Navigate loads the URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) error
	// WaitVisible waits up to timeout for the selector to appear. It returns
	// false with a nil error when the deadline passes without a match, so
	// callers can probe for optional elements.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error)
	// UploadFile attaches a local file to the matched file input.
	UploadFile(ctx context.Context, selector, path string) error
	// FillField clicks the matched element and types text into it.
	FillField(ctx context.Context, selector, text string) error
	// ReadText returns the visible text of the matched element.
	ReadText(ctx context.Context, selector string) (string, error)
	// ReadAttribute returns the named attribute of the matched element.
	ReadAttribute(ctx context.Context, selector, attribute string) (string, error)
	// Cookies snapshots all cookies of the browser session.
	Cookies(ctx context.Context) ([]Cookie, error)
	// SetCookies installs cookies before navigation to restore a session.
	SetCookies(ctx context.Context, cookies []Cookie) error
	// Close tears the browser down. Safe to call more than once.
	Close() error
}

// Options configures a browser launch.
type Options struct {
	Headless     bool
	ChromeBinary string
}

// Launcher starts a browser. The session manager depends on this type so
// tests can substitute a fake without a Chrome install.
type Launcher func(ctx context.Context, opts Options) (Automation, error)
