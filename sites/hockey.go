package sites

import (
	"context"
	"log/slog"
	"strings"

	"github.com/use-agent/prospect/dom"
	"github.com/use-agent/prospect/models"
)

// Hockey drives club sites. Roster pages tend to hide emails behind bio
// pages, so pattern-generated addresses are chased through profile visits
// and swapped out whenever a bio page confirms the real one.
type Hockey struct {
	harv  *harvester
	hosts []string
}

func (s *Hockey) Name() string { return "hockey" }

func (s *Hockey) Match(host string) bool {
	for _, frag := range s.hosts {
		if strings.Contains(host, frag) {
			return true
		}
	}
	return false
}

func (s *Hockey) Extract(ctx context.Context, pc *PageContent, opts *Options) []models.Contact {
	contacts := s.harv.harvest(pc)
	contacts = append(contacts, s.harv.synthesize(pc, contacts)...)
	return visitProfiles(ctx, s.harv, pc, opts, contacts)
}

// visitProfiles spends the bio-page budget chasing confirmed addresses.
// Each hit replaces its pattern-generated twin by case-insensitive name
// match; profile failures are logged and skipped, never fatal.
func visitProfiles(ctx context.Context, h *harvester, pc *PageContent, opts *Options, contacts []models.Contact) []models.Contact {
	if opts == nil || opts.Profiles == nil || opts.ProfileVisits <= 0 {
		return contacts
	}
	if !needsProfiles(contacts) {
		return contacts
	}
	budget := opts.ProfileVisits
	for _, link := range h.dm.ProfileLinks(pc.HTML, pc.URL) {
		if budget == 0 || ctx.Err() != nil {
			break
		}
		budget--
		html, err := opts.Profiles.FetchProfile(ctx, link)
		if err != nil {
			slog.Debug("profile visit failed", "url", link, "error", err)
			continue
		}
		profile := &PageContent{
			URL:  link,
			Host: pc.Host,
			HTML: html,
			Text: dom.VisibleText([]byte(html)),
		}
		contacts = ReplaceGeneratedByName(contacts, h.harvest(profile))
	}
	return contacts
}

// needsProfiles reports whether bio pages could still improve the result:
// some contact lacks a confirmed address, or nothing was found at all.
func needsProfiles(contacts []models.Contact) bool {
	if len(contacts) == 0 {
		return true
	}
	for _, c := range contacts {
		if !c.Confidence.Confirmed() {
			return true
		}
	}
	return false
}
