package sites

import (
	"context"
	"strings"

	"github.com/use-agent/prospect/extract"
	"github.com/use-agent/prospect/models"
)

// Athletics covers college staff directories: table layouts with one
// person per row, and bio pages one click deep.
type Athletics struct {
	harv     *harvester
	suffixes []string
}

func (s *Athletics) Name() string { return "athletics" }

func (s *Athletics) Match(host string) bool {
	for _, suf := range s.suffixes {
		if strings.HasSuffix(host, suf) {
			return true
		}
	}
	return false
}

func (s *Athletics) Extract(ctx context.Context, pc *PageContent, opts *Options) []models.Contact {
	// Table rows first: their name and title cells beat whatever the
	// generic passes scrape out of the same markup.
	contacts := s.harv.dm.TableContacts(pc.HTML, pc.URL)
	contacts = extract.Dedupe(append(contacts, s.harv.harvest(pc)...))
	contacts = append(contacts, s.harv.synthesize(pc, contacts)...)
	return visitProfiles(ctx, s.harv, pc, opts, contacts)
}
