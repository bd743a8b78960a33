package extract

import (
	"regexp"
	"strings"

	"github.com/use-agent/prospect/config"
)

const contextRadius = 300

// namePairPattern matches two adjacent capitalized words, allowing
// hyphenated and apostrophe'd surnames (Smith-Jones, O'Brien).
const nameWordPattern = `(?:[A-Z]['\-])?[A-Z][a-z]+(?:['\-][A-Z]?[a-z]+)?`
const namePairPattern = `(` + nameWordPattern + `)\s+(` + nameWordPattern + `)`

var (
	namePairRe = regexp.MustCompile(`\b` + namePairPattern + `\b`)
	fullNameRe = regexp.MustCompile(`^` + namePairPattern + `$`)

	// nanpRes match North American phone formats, loosest last.
	nanpRes = []*regexp.Regexp{
		regexp.MustCompile(`\+?1[\s.\-]?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`),
		regexp.MustCompile(`\(?\d{3}\)?[\s.\-]\d{3}[\s.\-]\d{4}`),
	}

	// nameStopWords are capitalized pairs that are navigation chrome or
	// titles rather than people.
	nameStopWords = map[string]bool{
		"contact": true, "email": true, "phone": true, "about": true,
		"privacy": true, "terms": true, "policy": true, "click": true,
		"learn": true, "more": true, "meet": true, "our": true,
		"the": true, "all": true, "view": true, "staff": true,
		"team": true, "home": true, "page": true, "send": true,
		"coach": true, "director": true, "manager": true, "trainer": true,
		"instructor": true, "head": true, "assistant": true, "coordinator": true,
	}
)

// Scanner finds names, titles and phones in the text surrounding an
// email occurrence. The title vocabulary comes from the heuristics.
type Scanner struct {
	titleRe *regexp.Regexp
}

// NewScanner builds a Scanner from h, falling back to the built-in
// heuristics when h is nil.
func NewScanner(h *config.Heuristics) *Scanner {
	if h == nil {
		h = config.DefaultHeuristics()
	}
	words := make([]string, 0, len(h.TitleWords))
	for _, w := range h.TitleWords {
		words = append(words, regexp.QuoteMeta(w))
	}
	alt := strings.Join(words, "|")
	// Runs of vocabulary words ("Head Coach"), optionally followed by
	// an "of ..." qualifier ("Director of Hockey Operations").
	re := regexp.MustCompile(`(?i)\b((?:` + alt + `)(?:\s+(?:` + alt + `))*(?:\s+of\s+\w+(?:\s+\w+){0,2})?)\b`)
	return &Scanner{titleRe: re}
}

// window clips text to ±contextRadius around idx.
func window(text string, idx int) (string, int) {
	lo := idx - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := idx + contextRadius
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi], idx - lo
}

// NameNear returns the capitalized word pair closest to the email at
// idx, or "" when the window holds no plausible name.
func (s *Scanner) NameNear(text string, idx int) string {
	win, center := window(text, idx)
	best, bestDist := "", -1
	for _, loc := range namePairRe.FindAllStringSubmatchIndex(win, -1) {
		first := win[loc[2]:loc[3]]
		last := win[loc[4]:loc[5]]
		if nameStopWords[strings.ToLower(first)] || nameStopWords[strings.ToLower(last)] {
			continue
		}
		dist := center - loc[0]
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = first+" "+last, dist
		}
	}
	return best
}

// TitleNear returns the job-title phrase closest to the email at idx.
func (s *Scanner) TitleNear(text string, idx int) string {
	win, center := window(text, idx)
	best, bestDist := "", -1
	for _, loc := range s.titleRe.FindAllStringSubmatchIndex(win, -1) {
		dist := center - loc[0]
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = strings.TrimSpace(win[loc[2]:loc[3]]), dist
		}
	}
	return best
}

// TitleCount returns how many job-title phrases occur in text. Used to
// gauge whether a page reads like a staff directory.
func (s *Scanner) TitleCount(text string) int {
	return len(s.titleRe.FindAllString(text, -1))
}

// NamesWithTitles returns the distinct person names adjacent to job-title
// vocabulary, in order of first appearance. These are the people worth
// synthesizing pattern emails for when a page names its staff but hides
// their addresses.
func (s *Scanner) NamesWithTitles(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, loc := range s.titleRe.FindAllStringIndex(text, -1) {
		name := s.NameNear(text, loc[0])
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, name)
	}
	return out
}

// PhoneNear returns the phone number closest to the email at idx.
func (s *Scanner) PhoneNear(text string, idx int) string {
	win, center := window(text, idx)
	best, bestDist := "", -1
	for _, re := range nanpRes {
		for _, loc := range re.FindAllStringIndex(win, -1) {
			dist := center - loc[0]
			if dist < 0 {
				dist = -dist
			}
			if bestDist < 0 || dist < bestDist {
				best, bestDist = strings.TrimSpace(win[loc[0]:loc[1]]), dist
			}
		}
	}
	return best
}

// PersonName reports whether s looks like a person's display name: two
// capitalized words that are not navigation chrome or a job title.
func PersonName(s string) bool {
	m := fullNameRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return false
	}
	return !nameStopWords[strings.ToLower(m[1])] && !nameStopWords[strings.ToLower(m[2])]
}

var defaultScanner = NewScanner(nil)

// NameNear scans with the built-in heuristics.
func NameNear(text string, idx int) string { return defaultScanner.NameNear(text, idx) }

// TitleNear scans with the built-in heuristics.
func TitleNear(text string, idx int) string { return defaultScanner.TitleNear(text, idx) }

// PhoneNear scans with the built-in heuristics.
func PhoneNear(text string, idx int) string { return defaultScanner.PhoneNear(text, idx) }
