package extract

import (
	"strings"

	"github.com/use-agent/prospect/models"
)

// Dedupe collapses contacts by email, left to right, so earlier entries
// keep their slot in the output order. A confirmed contact replaces a
// generated one with the same address (carrying over any fields the
// replacement lacks); same-confidence duplicates only backfill missing
// fields, never overwrite populated ones. Contacts without an email are
// dropped. At most one contact per address survives.
func Dedupe(contacts []models.Contact) []models.Contact {
	index := make(map[string]int, len(contacts))
	out := make([]models.Contact, 0, len(contacts))

	for _, c := range contacts {
		email := strings.ToLower(strings.TrimSpace(c.Email))
		if email == "" {
			continue
		}
		c.Email = email
		i, ok := index[email]
		if !ok {
			index[email] = len(out)
			out = append(out, c)
			continue
		}
		out[i] = mergeContacts(out[i], c)
	}
	return out
}

func mergeContacts(kept, next models.Contact) models.Contact {
	if next.Confidence.Confirmed() && !kept.Confidence.Confirmed() {
		// Confirmed wins the slot; inherit whatever it lacks.
		if next.Name == "" {
			next.Name = kept.Name
		}
		if next.Title == "" {
			next.Title = kept.Title
		}
		if next.Phone == "" {
			next.Phone = kept.Phone
		}
		return next
	}
	if kept.Name == "" {
		kept.Name = next.Name
	}
	if kept.Title == "" {
		kept.Title = next.Title
	}
	if kept.Phone == "" {
		kept.Phone = next.Phone
	}
	if len(kept.AlternateEmails) == 0 {
		kept.AlternateEmails = next.AlternateEmails
	}
	return kept
}
