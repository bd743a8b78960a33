package models

// Confidence classifies how a contact's email was obtained.
//
// A confirmed email was observed on a real page (mailto link, visible
// text, data attribute, intercepted API response). A generated email was
// synthesized from a person's name and the site domain and may not exist.
type Confidence string

const (
	ConfidenceConfirmed Confidence = "confirmed"
	ConfidenceGenerated Confidence = "generated"
)

// Confirmed reports whether the email was actually observed rather than
// pattern-generated.
func (c Confidence) Confirmed() bool {
	return c == ConfidenceConfirmed
}

// Contact is a single person extracted from a page.
type Contact struct {
	// Email is the primary address, lowercased. Required: candidates
	// without an email are never emitted as contacts.
	Email string `json:"email"`

	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
	Phone string `json:"phone,omitempty"`

	// Source is the URL of the page the contact was found on.
	Source string `json:"source"`

	// Confidence records whether Email was scraped or synthesized.
	Confidence Confidence `json:"confidence"`

	// AlternateEmails holds the remaining generated candidates, most
	// likely pattern first. Populated only for generated contacts.
	AlternateEmails []string `json:"alternate_emails,omitempty"`
}
