package dom

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/prospect/extract"
	"github.com/use-agent/prospect/models"
)

// Athletics directories often list people "Last, First".
var lastFirstRe = regexp.MustCompile(`^([A-Z][a-zA-Z'\-]+),\s+([A-Z][a-zA-Z'\-]+)$`)

// TableContacts reads staff tables row by row: one person per <tr>, the
// email in its own cell. College athletics directories are the main shape
// this covers.
func (m *Matcher) TableContacts(rawHTML, source string) []models.Contact {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	var out []models.Contact
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}
		email := m.cardEmail(row)
		if email == "" || !m.validator.Valid(email) {
			return
		}
		var name, title string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			t := collapseSpaces(cell.Text())
			if t == "" {
				return
			}
			if name == "" {
				if n := rowName(t); n != "" {
					name = n
					return
				}
			}
			if title == "" && !strings.Contains(t, "@") {
				if v := m.scanner.TitleNear(t, 0); v != "" {
					title = v
				}
			}
		})
		out = append(out, models.Contact{
			Email:      email,
			Name:       name,
			Title:      title,
			Phone:      cardPhone(row, m.scanner),
			Source:     source,
			Confidence: models.ConfidenceConfirmed,
		})
	})
	return extract.Dedupe(out)
}

// rowName normalizes a table cell into "First Last" when it holds a name.
func rowName(t string) string {
	if extract.PersonName(t) {
		return t
	}
	if m := lastFirstRe.FindStringSubmatch(t); m != nil {
		flipped := m[2] + " " + m[1]
		if extract.PersonName(flipped) {
			return flipped
		}
	}
	if head := beforeSeparator(t); head != t && extract.PersonName(head) {
		return head
	}
	return ""
}
