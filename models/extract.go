package models

import "strings"

// ExtractedData aggregates loose facts mined from page text, JSON
// payloads and DOM scans before they are assembled into contacts.
//
// Each slice behaves as an insertion-ordered set: the Add methods drop
// duplicates, so running the same extraction pass twice cannot grow the
// data and ordering stays stable.
type ExtractedData struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
	Names  []string `json:"names"`
	URLs   []string `json:"urls"`

	// Context holds one summary line per interesting JSON object, e.g.
	// "email: jane@acme.com | name: Jane Doe". A later pass scans these
	// lines to pair names and titles with emails.
	Context []string `json:"context,omitempty"`

	seen map[string]struct{}
}

func (d *ExtractedData) add(kind, value string) bool {
	if value == "" {
		return false
	}
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	key := kind + "\x00" + value
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// AddEmail lowercases and records an email. Returns false on duplicates.
func (d *ExtractedData) AddEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if !d.add("email", email) {
		return false
	}
	d.Emails = append(d.Emails, email)
	return true
}

func (d *ExtractedData) AddPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if !d.add("phone", phone) {
		return false
	}
	d.Phones = append(d.Phones, phone)
	return true
}

func (d *ExtractedData) AddName(name string) bool {
	name = strings.TrimSpace(name)
	if !d.add("name", name) {
		return false
	}
	d.Names = append(d.Names, name)
	return true
}

func (d *ExtractedData) AddURL(u string) bool {
	u = strings.TrimSpace(u)
	if !d.add("url", u) {
		return false
	}
	d.URLs = append(d.URLs, u)
	return true
}

func (d *ExtractedData) AddContext(line string) {
	line = strings.TrimSpace(line)
	if d.add("ctx", line) {
		d.Context = append(d.Context, line)
	}
}

// Merge folds other into d, preserving set semantics.
func (d *ExtractedData) Merge(other *ExtractedData) {
	if other == nil {
		return
	}
	for _, e := range other.Emails {
		d.AddEmail(e)
	}
	for _, p := range other.Phones {
		d.AddPhone(p)
	}
	for _, n := range other.Names {
		d.AddName(n)
	}
	for _, u := range other.URLs {
		d.AddURL(u)
	}
	for _, c := range other.Context {
		d.AddContext(c)
	}
}

// Empty reports whether nothing at all was extracted.
func (d *ExtractedData) Empty() bool {
	return len(d.Emails) == 0 && len(d.Phones) == 0 &&
		len(d.Names) == 0 && len(d.URLs) == 0
}
