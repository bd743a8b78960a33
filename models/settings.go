package models

import "time"

// Fetch modes.
const (
	// FetchAuto escalates from static HTTP to the browser when the page
	// needs JS or the static fetch is blocked.
	FetchAuto = "auto"
	// FetchStatic forces pure HTTP fetching, no browser.
	FetchStatic = "static"
	// FetchBrowser forces headless Chrome for every page.
	FetchBrowser = "browser"
)

// ScrapeSettings control one scrape session: the entry URL plus the
// contact-page crawl hanging off it.
type ScrapeSettings struct {
	// FetchMode selects the fetch strategy. Default: "auto".
	FetchMode string

	// MaxDepth limits the contact-page crawl. The entry page is depth 0,
	// links found on it are depth 1, and so on. Default: 2.
	MaxDepth int

	// MaxPages caps pages visited per session, the request half of the
	// circuit breaker. Default: 12.
	MaxPages int

	// PageTimeout bounds navigation plus rendering of a single page.
	// Default: 30s.
	PageTimeout time.Duration

	// TotalBudget bounds the whole session wall-clock, the time half of
	// the circuit breaker. Default: 3m.
	TotalBudget time.Duration

	// MaxCaptured caps retained network response bodies. Default: 20.
	MaxCaptured int

	// Interact enables page interactions in browser mode: scrolling to
	// exhaustion, load-more clicks, accordion expansion. Default: true.
	Interact *bool

	// ProfileVisits caps linked profile pages visited per site strategy
	// while hunting for a confirmed email. Default: 3.
	ProfileVisits int

	// Stealth starts browser fetches with bot-evasion patches instead of
	// reserving them for the escalation stage. Default: false.
	Stealth bool

	// NoCache bypasses the result cache for this session.
	NoCache bool
}

// Defaults applies default values to unset fields.
func (s *ScrapeSettings) Defaults() {
	if s.FetchMode == "" {
		s.FetchMode = FetchAuto
	}
	if s.MaxDepth == 0 {
		s.MaxDepth = 2
	}
	if s.MaxPages == 0 {
		s.MaxPages = 12
	}
	if s.PageTimeout == 0 {
		s.PageTimeout = 30 * time.Second
	}
	if s.TotalBudget == 0 {
		s.TotalBudget = 3 * time.Minute
	}
	if s.MaxCaptured == 0 {
		s.MaxCaptured = 20
	}
	if s.Interact == nil {
		t := true
		s.Interact = &t
	}
	if s.ProfileVisits == 0 {
		s.ProfileVisits = 3
	}
}

// Interactive reports whether page interactions are enabled.
func (s *ScrapeSettings) Interactive() bool {
	return s.Interact == nil || *s.Interact
}
