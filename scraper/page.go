package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/prospect/engine"
	"github.com/use-agent/prospect/models"
)

// browserOptions bundle the per-worker knobs the page pipeline needs.
type browserOptions struct {
	BlockedTypes []string
	Tracking     []string
	PersonWords  []string
}

// fetchWithBrowser renders one page in the session's browser.
//
// Order matters: stealth JS and the capture router only affect
// navigations that start after they are installed, so both go in before
// Navigate. WaitRequestIdle conflicts with HijackRequests on newer
// Chromium, so settling is done with WaitDOMStable instead.
func fetchWithBrowser(ctx context.Context, sess *Session, req *engine.FetchRequest, opts browserOptions) (*engine.FetchResult, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := sess.Page()
	if err != nil {
		return nil, err
	}
	// Close on the original reference so cleanup works even after the
	// request context expires.
	defer func() { _ = page.Close() }()

	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without it", "error", evalErr)
		}
	}

	// A plausible search referer; direct hits on deep staff pages look
	// bot-like to some WAFs.
	if u, parseErr := url.Parse(req.URL); parseErr == nil {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{
				"Referer": gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())),
			},
		}.Call(page)
	}

	col := newCollector(req.MaxCaptured)
	router := mountCapture(page, opts.BlockedTypes, opts.Tracking, col)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if navErr := p.Navigate(req.URL); navErr != nil {
		return nil, categorizeError(navErr, "navigation failed for "+req.URL)
	}
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("DOM did not stabilize, proceeding with current state",
			"url", req.URL, "error", stableErr)
	}

	if req.Interact {
		removeOverlays(p)
		interact(p)
	}
	tagCardCandidates(p, opts.PersonWords)

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeError(htmlErr, "failed to read rendered HTML")
	}

	// Status code via the performance API; CDP response listeners clash
	// with the hijack router.
	statusCode := 0
	if res, evalErr := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`); evalErr == nil {
		statusCode = res.Value.Int()
	}

	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &engine.FetchResult{
		HTML:       rawHTML,
		Title:      title,
		StatusCode: statusCode,
		FinalURL:   finalURL,
		Captured:   col.Drain(),
	}, nil
}

// evalStringOrEmpty evaluates a JS expression, swallowing errors. Used
// for optional metadata only.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// categorizeError wraps raw fetch errors into typed ScrapeErrors so the
// status computation and callers can switch on the code.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "canceled: "+msg, err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
