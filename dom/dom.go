// Package dom locates person-card structures in parsed HTML and pulls
// contacts out of them. It works on static goquery documents; callers that
// render pages in a browser feed the rendered HTML through the same path.
package dom

import (
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/extract"
)

// family is one pre-compiled card selector. Families are tried in order and
// the first one that matches anything on the page wins, so specific selectors
// (.coach-card) shadow generic containers (article).
type family struct {
	raw string
	sel cascadia.Selector
}

// Matcher finds staff/coach cards on a page and extracts one contact per card.
type Matcher struct {
	families     []family
	personWords  []string
	profileWords []string
	validator    *extract.Validator
	scanner      *extract.Scanner
	conv         *converter.Converter
}

// NewMatcher compiles the card selectors from h. Selectors that fail to
// compile are skipped with a warning so a bad heuristics file degrades
// instead of breaking page parsing. A nil h uses the built-in defaults.
func NewMatcher(h *config.Heuristics) *Matcher {
	if h == nil {
		h = config.DefaultHeuristics()
	}
	m := &Matcher{
		personWords:  h.PersonWords,
		profileWords: h.ProfileLinkWords,
		validator:    extract.NewValidator(h),
		scanner:      extract.NewScanner(h),
		conv:         newLineConverter(),
	}
	for _, raw := range h.CardSelectors {
		sel, err := cascadia.Compile(raw)
		if err != nil {
			slog.Warn("skipping invalid card selector", "selector", raw, "error", err)
			continue
		}
		m.families = append(m.families, family{raw: raw, sel: sel})
	}
	return m
}

// FindCards returns the card containers of doc in document order. Selector
// families are tried most-specific first; the first family with any match
// supplies all cards, nested matches reduced to their outermost container.
func (m *Matcher) FindCards(doc *goquery.Document) []*goquery.Selection {
	for _, f := range m.families {
		matched := doc.FindMatcher(f.sel)
		if matched.Length() == 0 {
			continue
		}
		var cards []*goquery.Selection
		matched.Each(func(_ int, s *goquery.Selection) {
			cards = append(cards, s)
		})
		return outermost(cards)
	}
	return nil
}

// FallbackCards scans generic containers when no selector family matched.
// Elements carrying data-contact-card were already box-filtered in the
// browser and are taken as-is. Otherwise containers are scored by
// person-indicator keywords in their class, id and text; a text-length
// window stands in for the on-screen card size so a page wrapper holding
// the whole directory is not mistaken for a single card. Innermost
// qualifying containers win: the leaf is the card, not the column that
// holds ten of them.
func (m *Matcher) FallbackCards(doc *goquery.Document) []*goquery.Selection {
	var cards []*goquery.Selection
	doc.Find("[data-contact-card]").Each(func(_ int, s *goquery.Selection) {
		cards = append(cards, s)
	})
	if len(cards) > 0 {
		return innermost(cards)
	}

	doc.Find("div, section, article, li").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) < 20 || len(text) > 1500 {
			return
		}
		if m.personScore(s, text) < 2 {
			return
		}
		cards = append(cards, s)
	})
	return innermost(cards)
}

// personScore counts distinct person-indicator keywords across the
// container's class, id and visible text.
func (m *Matcher) personScore(s *goquery.Selection, text string) int {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	haystack := strings.ToLower(class + " " + id + " " + text)
	score := 0
	for _, w := range m.personWords {
		if strings.Contains(haystack, strings.ToLower(w)) {
			score++
		}
	}
	return score
}

// outermost drops selections nested inside another selection of the same set.
// Selector families like [class*='coach'] match a card and its inner
// .coach-name span; only the card itself should survive.
func outermost(cards []*goquery.Selection) []*goquery.Selection {
	return filterNested(cards, func(i, j int) bool { return contains(cards[j], cards[i]) })
}

// innermost drops selections that contain another selection of the set.
func innermost(cards []*goquery.Selection) []*goquery.Selection {
	return filterNested(cards, func(i, j int) bool { return contains(cards[i], cards[j]) })
}

func filterNested(cards []*goquery.Selection, drop func(i, j int) bool) []*goquery.Selection {
	if len(cards) <= 1 {
		return cards
	}
	var out []*goquery.Selection
	for i := range cards {
		keep := true
		for j := range cards {
			if i != j && drop(i, j) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, cards[i])
		}
	}
	return out
}

// contains reports whether inner's node sits below outer's node.
func contains(outer, inner *goquery.Selection) bool {
	o := outer.Get(0)
	for p := inner.Get(0).Parent; p != nil; p = p.Parent {
		if p == o {
			return true
		}
	}
	return false
}
