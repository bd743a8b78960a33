package scraper

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bits-and-blooms/bloom/v3"

	"github.com/use-agent/prospect/config"
)

// crawlItem is one URL queued for a visit.
type crawlItem struct {
	url   string
	depth int
}

// frontier is the breadth-first work queue for one session. A bloom
// filter stands in for the visited set: re-discovered links are dropped
// cheaply, and the rare false positive only costs one skipped page.
type frontier struct {
	queue   []crawlItem
	visited *bloom.BloomFilter
}

func newFrontier() *frontier {
	return &frontier{visited: bloom.NewWithEstimates(5000, 0.001)}
}

// Add queues u at the given depth unless it was seen before. Reports
// whether the URL was actually queued.
func (f *frontier) Add(u string, depth int) bool {
	if f.visited.TestString(u) {
		return false
	}
	f.visited.AddString(u)
	f.queue = append(f.queue, crawlItem{url: u, depth: depth})
	return true
}

// MarkVisited records u as seen without queueing it, used for profile
// pages fetched outside the main loop.
func (f *frontier) MarkVisited(u string) {
	f.visited.AddString(u)
}

// Next pops the oldest queued item.
func (f *frontier) Next() (crawlItem, bool) {
	if len(f.queue) == 0 {
		return crawlItem{}, false
	}
	item := f.queue[0]
	f.queue = f.queue[1:]
	return item, true
}

func (f *frontier) Len() int { return len(f.queue) }

// resourceExtensions are file types the crawler never follows.
var resourceExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".svg": {},
	".webp": {}, ".ico": {}, ".css": {}, ".js": {}, ".mjs": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {}, ".eot": {},
	".mp4": {}, ".webm": {}, ".mp3": {}, ".avi": {}, ".mov": {},
	".pdf": {}, ".zip": {}, ".gz": {}, ".tar": {},
	".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {},
}

// linkCollector picks the same-site links worth following from a page:
// anchors whose text or path mentions a contact-page keyword.
type linkCollector struct {
	contactWords []string
}

func newLinkCollector(h *config.Heuristics) *linkCollector {
	if h == nil {
		h = config.DefaultHeuristics()
	}
	return &linkCollector{contactWords: h.ContactLinkWords}
}

// Collect returns followable links from rawHTML resolved against
// pageURL, deduplicated, in document order.
func (lc *linkCollector) Collect(rawHTML, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		lower := strings.ToLower(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(lower, "mailto:") ||
			strings.HasPrefix(lower, "tel:") ||
			strings.HasPrefix(lower, "javascript:") {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !sameSite(base, resolved) {
			return
		}
		if _, skip := resourceExtensions[strings.ToLower(path.Ext(resolved.Path))]; skip {
			return
		}
		if !lc.contactLike(a.Text(), resolved.Path) {
			return
		}
		resolved.Fragment = ""
		u := resolved.String()
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	})
	return out
}

func (lc *linkCollector) contactLike(anchorText, urlPath string) bool {
	text := strings.ToLower(anchorText)
	p := strings.ToLower(urlPath)
	for _, w := range lc.contactWords {
		if strings.Contains(text, w) || strings.Contains(p, w) {
			return true
		}
	}
	return false
}

// sameSite treats www. and bare hostnames as the same site.
func sameSite(a, b *url.URL) bool {
	ah := strings.TrimPrefix(strings.ToLower(a.Hostname()), "www.")
	bh := strings.TrimPrefix(strings.ToLower(b.Hostname()), "www.")
	return ah != "" && ah == bh
}
