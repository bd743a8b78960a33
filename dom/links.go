package dom

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/prospect/models"
)

// CardPeople returns the name and title on cards that expose no email
// address. These feed the pattern generator.
func (m *Matcher) CardPeople(rawHTML string) []models.Contact {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	cards := m.FindCards(doc)
	if len(cards) == 0 {
		cards = m.FallbackCards(doc)
	}
	seen := make(map[string]bool)
	var out []models.Contact
	for _, card := range cards {
		if m.cardEmail(card) != "" {
			continue
		}
		lines := m.cardLines(card)
		name := cardName(card, lines)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, models.Contact{
			Name:  name,
			Title: m.cardTitle(card, lines, name),
		})
	}
	return out
}

// ProfileLinks returns absolute URLs of per-person bio pages linked from
// cards, in document order. Links qualify when their text or path carries a
// profile keyword; off-site links are dropped.
func (m *Matcher) ProfileLinks(rawHTML, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	cards := m.FindCards(doc)
	if len(cards) == 0 {
		cards = m.FallbackCards(doc)
	}
	seen := make(map[string]bool)
	var out []string
	for _, card := range cards {
		card.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			href = strings.TrimSpace(href)
			if href == "" || strings.HasPrefix(href, "#") ||
				strings.HasPrefix(strings.ToLower(href), "mailto:") ||
				strings.HasPrefix(strings.ToLower(href), "tel:") ||
				strings.HasPrefix(strings.ToLower(href), "javascript:") {
				return
			}
			ref, err := base.Parse(href)
			if err != nil || (ref.Scheme != "http" && ref.Scheme != "https") {
				return
			}
			if ref.Host != base.Host {
				return
			}
			hay := strings.ToLower(a.Text() + " " + ref.Path)
			match := false
			for _, w := range m.profileWords {
				if strings.Contains(hay, w) {
					match = true
					break
				}
			}
			if !match {
				return
			}
			ref.Fragment = ""
			u := ref.String()
			if !seen[u] {
				seen[u] = true
				out = append(out, u)
			}
		})
	}
	return out
}
