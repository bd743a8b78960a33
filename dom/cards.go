package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/prospect/extract"
	"github.com/use-agent/prospect/models"
)

// Selectors that usually carry the person's name or role inside a card.
var (
	nameSelectors  = []string{"h1", "h2", "h3", "h4", ".name", ".staff-name", ".coach-name", "strong", "b"}
	titleSelectors = []string{".position", ".title", ".role", ".job-title"}
)

// Contacts parses rawHTML, finds its cards and returns one contact per card
// that exposes an email. When no selector family matches, the keyword
// fallback scan supplies the cards.
func (m *Matcher) Contacts(rawHTML, source string) []models.Contact {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	cards := m.FindCards(doc)
	if len(cards) == 0 {
		cards = m.FallbackCards(doc)
	}
	var out []models.Contact
	for _, card := range cards {
		if c, ok := m.CardContact(card, source); ok {
			out = append(out, c)
		}
	}
	return extract.Dedupe(out)
}

// CardContact extracts one contact from a card container. A card without an
// email yields nothing; name-only cards are left for the pattern generator.
func (m *Matcher) CardContact(card *goquery.Selection, source string) (models.Contact, bool) {
	email := m.cardEmail(card)
	if email == "" || !m.validator.Valid(email) {
		return models.Contact{}, false
	}
	lines := m.cardLines(card)
	name := cardName(card, lines)
	return models.Contact{
		Email:      email,
		Name:       name,
		Title:      m.cardTitle(card, lines, name),
		Phone:      cardPhone(card, m.scanner),
		Source:     source,
		Confidence: models.ConfidenceConfirmed,
	}, true
}

// cardEmail finds the card's email address: mailto links first, then
// data-email attributes, then the obfuscation-aware text scan over the raw
// card HTML.
func (m *Matcher) cardEmail(card *goquery.Selection) string {
	email := ""
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if len(href) < 8 || !strings.EqualFold(href[:7], "mailto:") {
			return true
		}
		addr := href[7:]
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if addr = strings.TrimSpace(addr); addr != "" {
			email = strings.ToLower(addr)
			return false
		}
		return true
	})
	if email != "" {
		return email
	}
	if v, ok := card.Attr("data-email"); ok && strings.Contains(v, "@") {
		return strings.ToLower(strings.TrimSpace(v))
	}
	card.Find("[data-email]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("data-email")
		if strings.Contains(v, "@") {
			email = strings.ToLower(strings.TrimSpace(v))
			return false
		}
		return true
	})
	if email != "" {
		return email
	}
	// The raw HTML pass catches cfemail spans and script-side obfuscations
	// that never show up in the visible text.
	if raw, err := goquery.OuterHtml(card); err == nil {
		if found := m.validator.Filter(extract.Emails(raw)); len(found) > 0 {
			return found[0]
		}
	}
	return ""
}

// cardName looks for the person's name in the card's structured elements
// first (headings, .name, strong), then in the linearised text lines.
// "Jane Doe, Head Coach" headings are split at the comma.
func cardName(card *goquery.Selection, lines []string) string {
	var candidates []string
	for _, sel := range nameSelectors {
		card.Find(sel).Each(func(_ int, s *goquery.Selection) {
			candidates = append(candidates, collapseSpaces(s.Text()))
		})
	}
	candidates = append(candidates, lines...)
	for _, c := range candidates {
		if extract.PersonName(c) {
			return c
		}
		if head := beforeSeparator(c); head != c && extract.PersonName(head) {
			return head
		}
	}
	return ""
}

// cardTitle resolves the person's role: structured title elements first,
// then the text right after the name (same line or the following one).
func (m *Matcher) cardTitle(card *goquery.Selection, lines []string, name string) string {
	for _, sel := range titleSelectors {
		t := collapseSpaces(card.Find(sel).First().Text())
		if t != "" && t != name {
			return clipTitle(t)
		}
	}
	if name == "" {
		return ""
	}
	for i, line := range lines {
		idx := strings.Index(line, name)
		if idx < 0 {
			continue
		}
		// Remainder of the name's own line: "Jane Doe, Head Coach".
		rest := strings.TrimLeft(line[idx+len(name):], " ,;:|-–•\t")
		if t := m.titleText(rest); t != "" {
			return t
		}
		// Otherwise the next line often holds the role.
		if i+1 < len(lines) {
			if t := m.titleText(lines[i+1]); t != "" {
				return t
			}
		}
		break
	}
	return ""
}

// titleStopWords keep link chrome ("Email", "View Bio") out of the
// positional title fallback.
var titleStopWords = map[string]bool{
	"email": true, "call": true, "phone": true, "contact": true,
	"view": true, "read": true, "more": true, "bio": true,
	"profile": true, "website": true,
}

// titleText accepts s as a job title if it contains role vocabulary, or
// failing that if it reads like a short capitalized label.
func (m *Matcher) titleText(s string) string {
	s = collapseSpaces(s)
	if s == "" || strings.Contains(s, "@") || phoneLike(s) {
		return ""
	}
	if t := m.scanner.TitleNear(s, 0); t != "" {
		return t
	}
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 6 || len(s) > 60 {
		return ""
	}
	for _, w := range words {
		r := rune(w[0])
		if !(r >= 'A' && r <= 'Z') || titleStopWords[strings.ToLower(w)] {
			return ""
		}
	}
	return s
}

// clipTitle caps runaway title strings from over-broad selectors.
func clipTitle(s string) string {
	if len(s) > 80 {
		s = s[:80]
		if i := strings.LastIndexByte(s, ' '); i > 0 {
			s = s[:i]
		}
	}
	return s
}

// cardPhone prefers a tel: link over the text scan.
func cardPhone(card *goquery.Selection, scanner *extract.Scanner) string {
	phone := ""
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if len(href) > 4 && strings.EqualFold(href[:4], "tel:") {
			phone = strings.TrimSpace(href[4:])
			return false
		}
		return true
	})
	if phone != "" {
		return phone
	}
	return scanner.PhoneNear(collapseSpaces(card.Text()), 0)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// beforeSeparator trims a trailing ", Head Coach"-style qualifier.
func beforeSeparator(s string) string {
	for _, sep := range []string{",", " - ", " – ", "|", "•"} {
		if i := strings.Index(s, sep); i > 0 {
			return strings.TrimSpace(s[:i])
		}
	}
	return s
}

// phoneLike reports whether s is mostly digits.
func phoneLike(s string) bool {
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return len(s) > 0 && digits*2 > len(s)
}
