package models

import "time"

// Status summarizes the outcome of a scrape session.
type Status string

const (
	// StatusSuccess means at least one contact was extracted.
	StatusSuccess Status = "success"
	// StatusPartial means fetching worked but no contacts were found.
	StatusPartial Status = "partial"
	// StatusError means the entry fetch failed or every strategy errored.
	StatusError Status = "error"
)

// CapturedResponse is a network response body intercepted while a page
// rendered, typically JSON from a staff or roster API endpoint.
type CapturedResponse struct {
	URL         string `json:"url"`
	Body        string `json:"body"`
	ContentType string `json:"content_type"`
}

// ScrapeStats gives a quick read on extraction quality.
type ScrapeStats struct {
	TotalEmails     int `json:"total_emails"`
	EmailsWithNames int `json:"emails_with_names"`
	PagesVisited    int `json:"pages_visited"`
}

// ScrapeResult is the outcome of scraping one entry URL, including any
// pages reached by the contact-page crawl.
type ScrapeResult struct {
	URL       string    `json:"url"`
	Contacts  []Contact `json:"contacts"`
	ScrapedAt time.Time `json:"scraped_at"`
	Status    Status    `json:"status"`

	// Message carries a human-readable diagnostic for partial and error
	// results.
	Message string `json:"message,omitempty"`

	Stats ScrapeStats `json:"stats"`

	// Captured retains intercepted response bodies for debugging and
	// offline re-mining. Bounded by ScrapeSettings.MaxCaptured.
	Captured []CapturedResponse `json:"captured,omitempty"`

	// EngineUsed names the fetch engine that produced the entry page
	// ("static", "browser", "browser-stealth").
	EngineUsed string `json:"engine_used,omitempty"`

	// CacheStatus is "hit" or "miss" when caching was in play.
	CacheStatus string `json:"cache_status,omitempty"`
}

// RecomputeStats refreshes the email counters from Contacts. PagesVisited
// is left alone since only the orchestrator knows it.
func (r *ScrapeResult) RecomputeStats() {
	r.Stats.TotalEmails = len(r.Contacts)
	named := 0
	for _, c := range r.Contacts {
		if c.Name != "" {
			named++
		}
	}
	r.Stats.EmailsWithNames = named
}
