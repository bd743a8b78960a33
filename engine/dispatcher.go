package engine

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/use-agent/prospect/models"
)

// Dispatcher walks the engine ladder for each fetch: static first,
// escalating to the browser when the page comes back blocked, broken, or
// rendered down to a script shell. Domains that needed the browser once go
// straight to it while the memory entry lasts.
type Dispatcher struct {
	static  Engine
	browser Engine // nil when no browser is available
	memory  *DomainMemory
}

func NewDispatcher(static, browser Engine, memory *DomainMemory) *Dispatcher {
	return &Dispatcher{static: static, browser: browser, memory: memory}
}

// Fetch resolves req according to the fetch mode.
func (d *Dispatcher) Fetch(ctx context.Context, req *FetchRequest, mode string) (*FetchResult, error) {
	switch mode {
	case models.FetchStatic:
		return d.static.Fetch(ctx, req)
	case models.FetchBrowser:
		if d.browser == nil {
			return nil, models.NewScrapeError(models.ErrCodeBrowserLaunch,
				"browser mode requested but no browser is available", nil)
		}
		return d.browser.Fetch(ctx, req)
	}
	return d.auto(ctx, req)
}

func (d *Dispatcher) auto(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	domain := Domain(req.URL)

	if d.browser != nil && d.memory.Recall(domain) == d.browser.Name() {
		slog.Debug("domain memory: straight to browser", "domain", domain)
		if result, err := d.browser.Fetch(ctx, req); err == nil {
			return result, nil
		}
		d.memory.Forget(domain)
	}

	result, err := d.static.Fetch(ctx, req)
	if err == nil && !NeedsBrowser(result.HTML) {
		d.memory.Remember(domain, d.static.Name())
		return result, nil
	}
	if d.browser == nil {
		return result, err
	}

	if err != nil {
		slog.Debug("static fetch failed, escalating", "url", req.URL, "error", err)
	} else {
		slog.Debug("static HTML looks script-rendered, escalating", "url", req.URL)
	}
	browserResult, browserErr := d.browser.Fetch(ctx, req)
	if browserErr == nil {
		d.memory.Remember(domain, d.browser.Name())
		return browserResult, nil
	}
	if err == nil && result != nil {
		// The browser lost; the static shell is better than nothing.
		return result, nil
	}
	return nil, browserErr
}

// Domain parses the hostname out of rawURL.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
