// Package engine layers the fetch strategies: a static HTTP engine with a
// Chrome TLS fingerprint, a real-browser engine behind a callback, and a
// dispatcher that escalates from one to the other per page.
package engine

import (
	"context"
	"time"

	"github.com/use-agent/prospect/models"
)

// Engine fetches one page.
type Engine interface {
	// Name returns the engine identifier ("static", "browser").
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest describes one page fetch.
type FetchRequest struct {
	URL     string
	Timeout time.Duration

	// Browser-only knobs; the static engine ignores them.
	Stealth     bool // add fingerprint evasion before navigating
	Interact    bool // run scroll/expand interactions after load
	MaxCaptured int  // cap on captured network bodies
}

// FetchResult is a rendered page plus whatever the engine saw on the wire.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	Engine     string
	Captured   []models.CapturedResponse
}
