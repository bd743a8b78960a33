package scraper

import (
	"net/http"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/prospect/models"
)

// maxCapturedBody caps a single captured response. Roster and staff API
// payloads are small; anything bigger is almost certainly not contact
// data and truncating JSON would make it unparsable anyway.
const maxCapturedBody = 1 << 20

// collector accumulates network response bodies captured while a page
// renders. Hijack callbacks run on rod's event goroutines, so appends go
// through the mutex; the orchestrator drains it synchronously after the
// page settles.
type collector struct {
	mu    sync.Mutex
	max   int
	seen  map[uint64]struct{}
	items []models.CapturedResponse
}

func newCollector(max int) *collector {
	if max <= 0 {
		max = 20
	}
	return &collector{max: max, seen: make(map[uint64]struct{})}
}

// Add records one response body, dropping empties, oversized payloads,
// duplicates, and anything past the cap.
func (c *collector) Add(u, contentType, body string) {
	if body == "" || len(body) > maxCapturedBody {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) >= c.max {
		return
	}
	h := xxhash.Sum64String(body)
	if _, dup := c.seen[h]; dup {
		return
	}
	c.seen[h] = struct{}{}
	c.items = append(c.items, models.CapturedResponse{
		URL:         u,
		Body:        body,
		ContentType: contentType,
	})
}

// Drain returns everything captured so far and resets the collector.
func (c *collector) Drain() []models.CapturedResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.items
	c.items = nil
	return items
}

// capturable reports whether a response is worth keeping for the JSON
// miner. Some APIs serve JSON as text/plain, so those get a URL sniff.
func capturable(contentType, rawURL string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "application/json") ||
		strings.Contains(ct, "text/json") ||
		strings.Contains(ct, "+json") {
		return true
	}
	if strings.Contains(ct, "text/plain") {
		lower := strings.ToLower(rawURL)
		return strings.Contains(lower, "/api/") ||
			strings.Contains(lower, ".json") ||
			strings.Contains(lower, "graphql")
	}
	return false
}

// configToProto maps config resource type names to rod protocol types.
var configToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// trackingHost checks a hostname and its parent domains against the
// tracking blocklist.
func trackingHost(host string, tracking []string) bool {
	host = strings.ToLower(host)
	for {
		for _, t := range tracking {
			if host == t {
				return true
			}
		}
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			return false
		}
		host = host[idx+1:]
	}
}

// mountCapture installs the hijack router: blocked resource types and
// tracking hosts are failed outright, XHR/fetch responses are loaded so
// JSON bodies land in col, and everything else passes through untouched.
//
// Returns nil when there is nothing to block or capture.
func mountCapture(page *rod.Page, blockedTypes, tracking []string, col *collector) *rod.HijackRouter {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := configToProto[name]; ok {
			blocked[rt] = struct{}{}
		}
	}
	if len(blocked) == 0 && len(tracking) == 0 && col == nil {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(hctx *rod.Hijack) {
		if _, drop := blocked[hctx.Request.Type()]; drop {
			hctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		reqURL := hctx.Request.URL()
		if trackingHost(reqURL.Hostname(), tracking) {
			hctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}

		t := hctx.Request.Type()
		if col != nil && (t == proto.NetworkResourceTypeXHR || t == proto.NetworkResourceTypeFetch) {
			// Load the real response so the body can be mined. A failed
			// load just omits that response; the scrape goes on.
			if err := hctx.LoadResponse(http.DefaultClient, true); err != nil {
				return
			}
			ct := hctx.Response.Headers().Get("Content-Type")
			if capturable(ct, reqURL.String()) {
				col.Add(reqURL.String(), ct, hctx.Response.Body())
			}
			return
		}

		hctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// Run blocks until router.Stop.
	go router.Run()

	return router
}
