package scraper

import "time"

// maxSessionAge forces a relaunch of long-lived browsers regardless of
// score, since Chrome slowly leaks memory across many navigations.
const maxSessionAge = 50 * time.Minute

// sessionHealth scores one browser session. Failures add a full point,
// successes claw half a point back; past the page or score budget the
// owning worker relaunches the browser between URLs.
//
// Not safe for concurrent use: a session is exclusively owned by one
// worker and health is only touched between page fetches.
type sessionHealth struct {
	errScore float64
	pages    int
	started  time.Time

	maxPages int
	maxScore float64
}

func newSessionHealth(maxPages, maxScore int) *sessionHealth {
	if maxPages <= 0 {
		maxPages = 40
	}
	if maxScore <= 0 {
		maxScore = 5
	}
	return &sessionHealth{
		started:  time.Now(),
		maxPages: maxPages,
		maxScore: float64(maxScore),
	}
}

func (h *sessionHealth) RecordSuccess() {
	h.pages++
	h.errScore -= 0.5
	if h.errScore < 0 {
		h.errScore = 0
	}
}

func (h *sessionHealth) RecordFailure() {
	h.pages++
	h.errScore += 1.0
}

// ShouldRecycle reports whether the session has degraded past the point
// of keeping it alive.
func (h *sessionHealth) ShouldRecycle() bool {
	return h.errScore >= h.maxScore ||
		h.pages >= h.maxPages ||
		time.Since(h.started) >= maxSessionAge
}
