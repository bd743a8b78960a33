// Package sites routes each target to the scraping strategy that knows its
// layout: hockey club sites, governing-body rosters and college athletics
// directories, with a generic strategy as the fallthrough.
package sites

import (
	"context"
	"strings"

	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/models"
)

// PageContent is the captured content of one fetched page.
type PageContent struct {
	URL      string
	Host     string // hostname without port
	HTML     string // rendered document
	Text     string // visible text of HTML
	Captured []models.CapturedResponse
}

// ProfileFetcher loads a bio page and returns its rendered HTML. The engine
// behind it decides whether that means a browser tab or a plain GET.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, url string) (string, error)
}

// Options tune one strategy application.
type Options struct {
	ProfileVisits int            // bio-page budget, 0 disables visits
	Profiles      ProfileFetcher // nil disables visits
}

// Strategy extracts contacts from pages of the site family it matches.
type Strategy interface {
	Name() string
	Match(host string) bool
	Extract(ctx context.Context, pc *PageContent, opts *Options) []models.Contact
}

// Dispatcher holds the ordered strategy table. Order matters: governing
// bodies match before the hockey keyword so usahockey.com gets the roster
// strategy, and the generic strategy catches everything else.
type Dispatcher struct {
	strategies []Strategy
}

// NewDispatcher builds the strategy table from h, falling back to the
// built-in heuristics when h is nil.
func NewDispatcher(h *config.Heuristics) *Dispatcher {
	if h == nil {
		h = config.DefaultHeuristics()
	}
	harv := newHarvester(h)
	return &Dispatcher{strategies: []Strategy{
		&Governing{harv: harv, hosts: h.GoverningHosts},
		&Hockey{harv: harv, hosts: h.HockeyHosts},
		&Athletics{harv: harv, suffixes: h.AthleticsSuffixes},
		&Generic{harv: harv},
	}}
}

// For returns the first strategy matching host.
func (d *Dispatcher) For(host string) Strategy {
	host = strings.ToLower(host)
	for _, s := range d.strategies {
		if s.Match(host) {
			return s
		}
	}
	return d.strategies[len(d.strategies)-1]
}

// Generic returns the catch-all strategy, used directly for pages that
// do not look like staff directories.
func (d *Dispatcher) Generic() Strategy {
	return d.strategies[len(d.strategies)-1]
}
