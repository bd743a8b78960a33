package dom

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Pages whose readable text is shorter than this get the raw visible text
// instead; readability tends to misfire on sparse listing pages.
const minReadableLength = 50

// directoryPathWords mark URL paths that are almost always staff listings.
var directoryPathWords = []string{
	"staff", "coach", "coaches", "directory", "contact", "about", "team", "faculty",
}

// LooksLikeDirectory reports whether a page is probably a staff directory:
// its URL path says so, it holds several cards, or its readable text is
// dense with role vocabulary. Strategies use this to decide whether a page
// deserves scrolling and profile visits.
func (m *Matcher) LooksLikeDirectory(rawHTML, sourceURL string) bool {
	if u, err := url.Parse(sourceURL); err == nil {
		p := strings.ToLower(u.Path)
		for _, w := range directoryPathWords {
			if strings.Contains(p, w) {
				return true
			}
		}
	}
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML)); err == nil {
		if len(m.FindCards(doc)) >= 3 {
			return true
		}
	}
	return m.scanner.TitleCount(ReadableText(rawHTML, sourceURL)) >= 5
}

// ReadableText runs readability over the page and falls back to the plain
// visible text when the page is too thin for article extraction.
func ReadableText(rawHTML, sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		u = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		slog.Debug("readability failed, using visible text", "url", sourceURL, "error", err)
		return VisibleText([]byte(rawHTML))
	}
	if len(strings.TrimSpace(article.TextContent)) < minReadableLength {
		return VisibleText([]byte(rawHTML))
	}
	return article.TextContent
}
