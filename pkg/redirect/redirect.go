// Package redirect starts the browser-like surface used for
// redirect-based (legacy 3DS1) authentication.
package redirect

import (
	"io"
	"log/slog"
)

// Data is the typed input of a redirect launch: the authentication URL
// and the optional app return URL the browser should hand control back
// to.
type Data struct {
	AuthURL   string
	ReturnURL string
}

// Browser is the external surface that renders the redirect. Opening is
// fire-and-forget; the result is observed later through the host's
// result dispatch.
type Browser interface {
	Open(requestCode int, data Data) error
}

// BrowserFunc adapts a function into a Browser.
type BrowserFunc func(requestCode int, data Data) error

func (f BrowserFunc) Open(requestCode int, data Data) error { return f(requestCode, data) }

// Launcher packages redirect data and starts the browser surface with
// the caller-assigned request code.
type Launcher struct {
	requestCode int
	browser     Browser
	logger      *slog.Logger
}

func NewLauncher(requestCode int, browser Browser, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Launcher{requestCode: requestCode, browser: browser, logger: logger}
}

// Start opens the authentication URL. Failures are logged; the
// orchestrator has already handed control to the external surface.
func (l *Launcher) Start(data Data) {
	if err := l.browser.Open(l.requestCode, data); err != nil {
		l.logger.Error("redirect surface failed to open", "url", data.AuthURL, "error", err)
	}
}
