package extract

import (
	"strings"

	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/models"
)

// Extractor bundles the validator and context scanner so pipeline
// stages share one set of heuristics.
type Extractor struct {
	Validator *Validator
	Scanner   *Scanner
}

// New builds an Extractor from h, falling back to the built-in
// heuristics when h is nil.
func New(h *config.Heuristics) *Extractor {
	if h == nil {
		h = config.DefaultHeuristics()
	}
	return &Extractor{
		Validator: NewValidator(h),
		Scanner:   NewScanner(h),
	}
}

// ContactsFromText finds every valid email in text and builds a
// confirmed contact for each, pulling name, title and phone from the
// window around the address. Obfuscated addresses (cfemail blobs,
// document.write pieces) have no usable window and come out bare.
func (x *Extractor) ContactsFromText(text, source string) []models.Contact {
	seen := make(map[string]bool)
	var out []models.Contact

	for _, loc := range emailRe.FindAllStringIndex(text, -1) {
		email := strings.ToLower(text[loc[0]:loc[1]])
		if seen[email] || !x.Validator.Valid(email) {
			continue
		}
		seen[email] = true
		out = append(out, models.Contact{
			Email:      email,
			Name:       x.Scanner.NameNear(text, loc[0]),
			Title:      x.Scanner.TitleNear(text, loc[0]),
			Phone:      x.Scanner.PhoneNear(text, loc[0]),
			Source:     source,
			Confidence: models.ConfidenceConfirmed,
		})
	}

	for _, email := range Emails(text) {
		if seen[email] || !x.Validator.Valid(email) {
			continue
		}
		seen[email] = true
		out = append(out, models.Contact{
			Email:      email,
			Source:     source,
			Confidence: models.ConfidenceConfirmed,
		})
	}
	return out
}

// ContactsFromData converts mined JSON facts into confirmed contacts.
// Context lines carry explicit email/name/title/phone pairings; emails
// that never appeared in a context line come out bare.
func (x *Extractor) ContactsFromData(data *models.ExtractedData, source string) []models.Contact {
	if data == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []models.Contact

	for _, line := range data.Context {
		c, ok := contactFromContextLine(line, source)
		if !ok || seen[c.Email] || !x.Validator.Valid(c.Email) {
			continue
		}
		seen[c.Email] = true
		out = append(out, c)
	}

	for _, email := range data.Emails {
		if seen[email] || !x.Validator.Valid(email) {
			continue
		}
		seen[email] = true
		out = append(out, models.Contact{
			Email:      email,
			Source:     source,
			Confidence: models.ConfidenceConfirmed,
		})
	}
	return out
}

// contactFromContextLine parses a miner summary line like
// "email: x | name: y | title: z | phone: p".
func contactFromContextLine(line, source string) (models.Contact, bool) {
	c := models.Contact{Source: source, Confidence: models.ConfidenceConfirmed}
	for _, part := range strings.Split(line, "|") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "email":
			c.Email = strings.ToLower(value)
		case "name":
			c.Name = value
		case "title":
			c.Title = value
		case "phone":
			c.Phone = value
		}
	}
	return c, c.Email != ""
}

// Synthesize builds generated contacts for person names that never got
// a real email, guessing addresses at domain. Names already attached to
// an existing contact are skipped (case-insensitive).
func (x *Extractor) Synthesize(names []string, domain, source string, existing []models.Contact) []models.Contact {
	taken := make(map[string]bool, len(existing))
	for _, c := range existing {
		if c.Name != "" {
			taken[strings.ToLower(c.Name)] = true
		}
	}

	var out []models.Contact
	for _, name := range names {
		name = strings.TrimSpace(name)
		if !PersonName(name) || taken[strings.ToLower(name)] {
			continue
		}
		candidates := PatternEmails(name, domain)
		if len(candidates) == 0 {
			continue
		}
		taken[strings.ToLower(name)] = true
		out = append(out, models.Contact{
			Email:           candidates[0],
			Name:            name,
			Source:          source,
			Confidence:      models.ConfidenceGenerated,
			AlternateEmails: candidates[1:],
		})
	}
	return out
}
