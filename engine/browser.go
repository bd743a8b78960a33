package engine

import (
	"context"

	"github.com/use-agent/prospect/models"
)

// BrowserFetchFunc renders a page inside the browser session and returns
// the result. The scraper injects it so this package stays free of rod
// wiring (and of the import cycle that would come with it).
type BrowserFetchFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

// BrowserEngine renders pages through a real browser via the callback.
type BrowserEngine struct {
	fetch BrowserFetchFunc
}

func NewBrowserEngine(fetch BrowserFetchFunc) *BrowserEngine {
	return &BrowserEngine{fetch: fetch}
}

func (e *BrowserEngine) Name() string { return "browser" }

func (e *BrowserEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.fetch == nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserLaunch,
			"browser engine not configured", nil)
	}
	result, err := e.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	result.Engine = e.Name()
	return result, nil
}
