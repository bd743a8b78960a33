package sites

import (
	"strings"

	"github.com/use-agent/prospect/extract"
	"github.com/use-agent/prospect/models"
)

// ReplaceGeneratedByName folds freshly confirmed contacts into the list.
// A confirmed address for a person who so far only had a pattern-generated
// one takes that slot, inheriting title and phone if the bio page lacked
// them; everyone else is appended. The usual email dedupe runs last.
func ReplaceGeneratedByName(existing, confirmed []models.Contact) []models.Contact {
	for _, c := range confirmed {
		replaced := false
		if c.Name != "" {
			for i := range existing {
				if existing[i].Confidence.Confirmed() {
					continue
				}
				if strings.EqualFold(existing[i].Name, c.Name) {
					if c.Title == "" {
						c.Title = existing[i].Title
					}
					if c.Phone == "" {
						c.Phone = existing[i].Phone
					}
					existing[i] = c
					replaced = true
					break
				}
			}
		}
		if !replaced {
			existing = append(existing, c)
		}
	}
	return extract.Dedupe(existing)
}
