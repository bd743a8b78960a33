package sites

import (
	"context"

	"github.com/use-agent/prospect/models"
)

// Generic handles any site: the full harvest, plus pattern synthesis when
// the page names people without exposing their addresses.
type Generic struct {
	harv *harvester
}

func (g *Generic) Name() string { return "generic" }

func (g *Generic) Match(string) bool { return true }

func (g *Generic) Extract(_ context.Context, pc *PageContent, _ *Options) []models.Contact {
	contacts := g.harv.harvest(pc)
	return append(contacts, g.harv.synthesize(pc, contacts)...)
}
