package sites

import (
	"net"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/dom"
	"github.com/use-agent/prospect/extract"
	"github.com/use-agent/prospect/models"
)

// harvester is the shared extraction core: DOM cards, text scan, mined
// JSON, then dedupe. Strategies layer their site-specific steps on top.
type harvester struct {
	ex *extract.Extractor
	dm *dom.Matcher
}

func newHarvester(h *config.Heuristics) *harvester {
	return &harvester{ex: extract.New(h), dm: dom.NewMatcher(h)}
}

// harvest runs every extraction pass over the page. Card contacts come
// first so their names win the dedupe merge, then the text scan, then
// captured and inline JSON, with bare HTML-level addresses last.
func (h *harvester) harvest(pc *PageContent) []models.Contact {
	source := pc.URL
	var all []models.Contact
	all = append(all, h.dm.Contacts(pc.HTML, source)...)
	all = append(all, h.ex.ContactsFromText(pc.Text, source)...)
	for _, cap := range pc.Captured {
		data := extract.MineJSONString(string(cap.Body))
		all = append(all, h.ex.ContactsFromData(data, cap.URL)...)
	}
	for _, blob := range inlineJSON(pc.HTML) {
		data := extract.MineJSONString(blob)
		all = append(all, h.ex.ContactsFromData(data, source)...)
	}
	for _, email := range h.ex.Validator.Filter(extract.Emails(pc.HTML)) {
		all = append(all, models.Contact{
			Email:      email,
			Source:     source,
			Confidence: models.ConfidenceConfirmed,
		})
	}
	return extract.Dedupe(all)
}

// synthesize turns names that never got an address into pattern-generated
// contacts against the page's own domain. Titles shown on the cards carry
// over to the generated contacts.
func (h *harvester) synthesize(pc *PageContent, confirmed []models.Contact) []models.Contact {
	domain := emailDomain(pc.Host)
	if domain == "" {
		return nil
	}
	people := h.dm.CardPeople(pc.HTML)
	titles := make(map[string]string, len(people))
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
		if p.Title != "" {
			titles[strings.ToLower(p.Name)] = p.Title
		}
	}
	names = append(names, h.ex.Scanner.NamesWithTitles(pc.Text)...)

	generated := h.ex.Synthesize(names, domain, pc.URL, confirmed)
	for i := range generated {
		if t := titles[strings.ToLower(generated[i].Name)]; t != "" && generated[i].Title == "" {
			generated[i].Title = t
		}
	}
	return generated
}

// inlineJSON pulls embedded data blobs out of the document: ld+json
// structured data and framework state scripts shipped as application/json.
func inlineJSON(rawHTML string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	var blobs []string
	doc.Find(`script[type="application/ld+json"], script[type="application/json"]`).Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			blobs = append(blobs, t)
		}
	})
	return blobs
}

// emailDomain derives the domain for pattern emails from a page host.
// IP hosts and bare names yield nothing: there is no mailbox to guess.
func emailDomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return ""
	}
	return host
}
