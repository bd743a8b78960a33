package sites

import (
	"context"
	"strings"

	"github.com/use-agent/prospect/extract"
	"github.com/use-agent/prospect/models"
)

// Governing reads national-body rosters. Their directories ship as JSON
// behind the page, so captured responses carry most of the signal, and
// roster names without addresses get pattern emails on the body's domain.
type Governing struct {
	harv  *harvester
	hosts []string
}

func (s *Governing) Name() string { return "governing" }

func (s *Governing) Match(host string) bool {
	for _, g := range s.hosts {
		if host == g || strings.HasSuffix(host, "."+g) {
			return true
		}
	}
	return false
}

func (s *Governing) Extract(_ context.Context, pc *PageContent, _ *Options) []models.Contact {
	contacts := s.harv.harvest(pc)

	var names []string
	for _, cap := range pc.Captured {
		data := extract.MineJSONString(string(cap.Body))
		names = append(names, data.Names...)
	}
	domain := emailDomain(pc.Host)
	if domain != "" && len(names) > 0 {
		contacts = append(contacts, s.harv.ex.Synthesize(names, domain, pc.URL, contacts)...)
	}
	return append(contacts, s.harv.synthesize(pc, contacts)...)
}
