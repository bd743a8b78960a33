package scraper

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beevik/etree"
)

const sitemapUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// probeSitemap fetches /sitemap.xml for the entry URL's host and returns
// up to limit same-site URLs that look like contact pages, to seed the
// crawl frontier. Best-effort: any failure returns nil.
func probeSitemap(ctx context.Context, entryURL string, contactWords []string, limit int) []string {
	entry, err := url.Parse(entryURL)
	if err != nil || entry.Host == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	smURL := entry.Scheme + "://" + entry.Host + "/sitemap.xml"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, smURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", sitemapUA)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil
	}

	var out []string
	for _, el := range doc.FindElements("//loc") {
		loc := strings.TrimSpace(el.Text())
		u, err := url.Parse(loc)
		if err != nil || !sameSite(entry, u) {
			continue
		}
		lower := strings.ToLower(loc)
		for _, w := range contactWords {
			if strings.Contains(lower, w) {
				out = append(out, loc)
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out
}
