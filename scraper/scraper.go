// Package scraper runs contact-discovery sessions: a breadth-first crawl
// of contact-looking pages on one site, each page fetched through the
// escalating engine ladder and handed to the extraction strategies.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/prospect/cache"
	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/dom"
	"github.com/use-agent/prospect/engine"
	"github.com/use-agent/prospect/extract"
	"github.com/use-agent/prospect/models"
	"github.com/use-agent/prospect/simhash"
	"github.com/use-agent/prospect/sites"
)

// Scraper is one scrape worker. It owns at most one browser session at a
// time and processes URLs sequentially; the batch layer runs several
// Scrapers side by side, never sharing one.
type Scraper struct {
	cfg     *config.Config
	heur    *config.Heuristics
	sites   *sites.Dispatcher
	matcher *dom.Matcher
	engines *engine.Dispatcher
	memory  *engine.DomainMemory
	cache   *cache.Cache

	session *Session // lazily launched, exclusively owned

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New builds a scrape worker. The browser launches lazily on the first
// fetch that needs it, so static-only runs never start Chrome. The cache
// may be nil (and shared across workers when not).
func New(cfg *config.Config, heur *config.Heuristics, c *cache.Cache) *Scraper {
	if heur == nil {
		heur = config.DefaultHeuristics()
	}
	s := &Scraper{
		cfg:      cfg,
		heur:     heur,
		sites:    sites.NewDispatcher(heur),
		matcher:  dom.NewMatcher(heur),
		memory:   engine.NewDomainMemory(cfg.Engine.MemoryTTL),
		cache:    c,
		limiters: make(map[string]*rate.Limiter),
	}
	static := engine.NewStaticEngine(cfg.Engine.StaticTimeout)
	browser := engine.NewBrowserEngine(s.browserFetch)
	s.engines = engine.NewDispatcher(static, browser, s.memory)
	return s
}

// Close releases the worker's browser and domain memory.
func (s *Scraper) Close() {
	s.memory.Stop()
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
}

// Scrape crawls one entry URL for contacts. The returned result always
// carries a status; fetch and strategy failures land in the result
// instead of an error, so one bad site cannot abort a batch.
func (s *Scraper) Scrape(ctx context.Context, rawURL string, settings *models.ScrapeSettings) *models.ScrapeResult {
	if settings == nil {
		settings = &models.ScrapeSettings{}
	}
	settings.Defaults()

	result := &models.ScrapeResult{
		URL:       rawURL,
		Contacts:  []models.Contact{},
		ScrapedAt: time.Now(),
	}

	entry, err := normalizeURL(rawURL)
	if err != nil {
		result.Status = models.StatusError
		result.Message = models.NewScrapeError(models.ErrCodeInvalidInput, "invalid entry URL", err).Error()
		return result
	}
	result.URL = entry

	key := cache.Key(entry, settings)
	if s.cache != nil && !settings.NoCache {
		if cached, ok := s.cache.Get(key); ok {
			out := *cached
			out.CacheStatus = "hit"
			slog.Debug("cache hit", "url", entry)
			return &out
		}
	}

	ctx, cancel := context.WithTimeout(ctx, settings.TotalBudget)
	defer cancel()

	start := time.Now()
	r := &run{
		s:        s,
		settings: settings,
		frontier: newFrontier(),
		links:    newLinkCollector(s.heur),
	}
	r.crawl(ctx, entry)
	r.finish(result)

	slog.Info("scrape complete",
		"url", entry,
		"status", result.Status,
		"contacts", len(result.Contacts),
		"pages", result.Stats.PagesVisited,
		"engine", result.EngineUsed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if s.cache != nil && !settings.NoCache {
		result.CacheStatus = "miss"
		s.cache.Set(key, result)
	}
	return result
}

// browserFetch is the callback behind the dispatcher's browser engine.
// It launches or recycles the worker's session on demand.
func (s *Scraper) browserFetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	sess, err := s.ensureSession()
	if err != nil {
		return nil, err
	}
	result, err := fetchWithBrowser(ctx, sess, req, browserOptions{
		BlockedTypes: s.cfg.Scraper.BlockedResourceTypes,
		Tracking:     s.heur.TrackingHosts,
		PersonWords:  s.heur.PersonWords,
	})
	if err != nil {
		sess.RecordFailure()
		return nil, err
	}
	sess.RecordSuccess()
	return result, nil
}

func (s *Scraper) ensureSession() (*Session, error) {
	if s.session != nil && !s.session.Healthy() {
		slog.Info("recycling degraded browser session", "pages", s.session.PagesServed())
		s.session.Close()
		s.session = nil
	}
	if s.session == nil {
		sess, err := NewSession(s.cfg.Browser)
		if err != nil {
			return nil, err
		}
		s.session = sess
	}
	return s.session, nil
}

// limiter returns the per-domain pacer, creating it on first use.
func (s *Scraper) limiter(domain string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.limiters[domain]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(s.cfg.Scraper.DomainRPS), s.cfg.Scraper.DomainBurst)
	s.limiters[domain] = l
	return l
}

// nearDupDistance is the Hamming cutoff for treating two pages as the
// same content.
const nearDupDistance = 3

// run is the state of one crawl: frontier, accumulated contacts and
// captured bodies, and the error bookkeeping behind the final status.
type run struct {
	s        *Scraper
	settings *models.ScrapeSettings
	frontier *frontier
	links    *linkCollector

	prints       []uint64
	contacts     []models.Contact
	captured     []models.CapturedResponse
	pages        int
	extracted    int
	strategyErrs int
	entryErr     error
	engineUsed   string
}

func (r *run) crawl(ctx context.Context, entry string) {
	r.frontier.Add(entry, 0)
	slog.Debug("page state", "url", entry, "depth", 0, "state", "Queued")

	if r.settings.MaxDepth >= 1 {
		for _, seed := range probeSitemap(ctx, entry, r.s.heur.ContactLinkWords, 5) {
			if r.frontier.Add(seed, 1) {
				slog.Debug("page state", "url", seed, "depth", 1, "state", "Queued", "via", "sitemap")
			}
		}
	}

	first := true
	for {
		if err := ctx.Err(); err != nil {
			if first {
				r.entryErr = categorizeError(err, "budget exhausted before the entry page")
			} else {
				slog.Debug("budget exhausted, stopping crawl", "visited", r.pages)
			}
			return
		}
		item, ok := r.frontier.Next()
		if !ok {
			return
		}
		if r.pages >= r.settings.MaxPages {
			slog.Debug("page budget reached, stopping crawl", "visited", r.pages)
			return
		}
		r.visit(ctx, item, first)
		first = false
	}
}

func (r *run) visit(ctx context.Context, item crawlItem, entry bool) {
	log := slog.With("url", item.url, "depth", item.depth)
	log.Debug("page state", "state", "Navigating")

	if err := r.s.limiter(engine.Domain(item.url)).Wait(ctx); err != nil {
		if entry {
			r.entryErr = categorizeError(err, "canceled while pacing requests")
		}
		return
	}

	r.pages++
	fres, err := r.s.engines.Fetch(ctx, &engine.FetchRequest{
		URL:         item.url,
		Timeout:     r.settings.PageTimeout,
		Stealth:     r.settings.Stealth,
		Interact:    r.settings.Interactive(),
		MaxCaptured: r.settings.MaxCaptured,
	}, r.settings.FetchMode)
	if err != nil {
		log.Warn("page fetch failed", "code", models.ErrorCode(err), "error", err)
		if entry {
			r.entryErr = err
		}
		return
	}
	log.Debug("page state", "state", "ContentCaptured",
		"engine", fres.Engine, "status", fres.StatusCode, "captured", len(fres.Captured))

	if entry {
		r.engineUsed = fres.Engine
		if r.settings.Stealth && fres.Engine == "browser" {
			r.engineUsed = "browser-stealth"
		}
	}
	r.addCaptured(fres.Captured)

	pageURL := fres.FinalURL
	if pageURL == "" {
		pageURL = item.url
	}
	text := dom.VisibleText([]byte(fres.HTML))

	// Near-duplicate pages count as visited but are not re-extracted.
	fp := simhash.Fingerprint(text)
	if r.nearDuplicate(fp) {
		log.Debug("near-duplicate page, extraction skipped")
	} else {
		if fp != 0 {
			r.prints = append(r.prints, fp)
		}
		found := r.extract(ctx, pageURL, fres, text)
		r.contacts = append(r.contacts, found...)
		log.Debug("page state", "state", "StrategyApplied", "contacts", len(found))
	}

	if item.depth < r.settings.MaxDepth {
		for _, link := range r.links.Collect(fres.HTML, pageURL) {
			if r.frontier.Add(link, item.depth+1) {
				log.Debug("page state", "url", link, "depth", item.depth+1, "state", "Queued")
			}
		}
	}
	log.Debug("page state", "state", "Done")
}

// extract runs the strategy pipeline for one page: the matching site
// strategy when the page looks like a staff directory, falling through
// to the generic battery when it finds nothing.
func (r *run) extract(ctx context.Context, pageURL string, fres *engine.FetchResult, text string) []models.Contact {
	pc := &sites.PageContent{
		URL:      pageURL,
		Host:     engine.Domain(pageURL),
		HTML:     fres.HTML,
		Text:     text,
		Captured: fres.Captured,
	}
	opts := &sites.Options{
		ProfileVisits: r.settings.ProfileVisits,
		Profiles:      &profileFetcher{r: r},
	}

	strategy := r.s.sites.Generic()
	if r.s.matcher.LooksLikeDirectory(fres.HTML, pageURL) {
		strategy = r.s.sites.For(pc.Host)
	}

	r.extracted++
	contacts, err := safeExtract(ctx, strategy, pc, opts)
	if err != nil {
		r.strategyErrs++
		slog.Warn("strategy failed", "strategy", strategy.Name(), "url", pageURL, "error", err)
		return nil
	}
	if len(contacts) == 0 && strategy.Name() != "generic" {
		contacts, err = safeExtract(ctx, r.s.sites.Generic(), pc, opts)
		if err != nil {
			r.strategyErrs++
			slog.Warn("strategy failed", "strategy", "generic", "url", pageURL, "error", err)
			return nil
		}
	}
	return contacts
}

func (r *run) addCaptured(items []models.CapturedResponse) {
	for _, c := range items {
		if len(r.captured) >= r.settings.MaxCaptured {
			return
		}
		r.captured = append(r.captured, c)
	}
}

func (r *run) nearDuplicate(fp uint64) bool {
	if fp == 0 {
		return false
	}
	for _, prev := range r.prints {
		if simhash.Similar(prev, fp, nearDupDistance) {
			return true
		}
	}
	return false
}

func (r *run) finish(result *models.ScrapeResult) {
	result.Contacts = extract.Dedupe(r.contacts)
	result.Captured = r.captured
	result.EngineUsed = r.engineUsed
	result.Stats.PagesVisited = r.pages
	result.RecomputeStats()

	switch {
	case len(result.Contacts) > 0:
		result.Status = models.StatusSuccess
	case r.entryErr != nil:
		result.Status = models.StatusError
		result.Message = r.entryErr.Error()
	case r.extracted > 0 && r.strategyErrs >= r.extracted:
		result.Status = models.StatusError
		result.Message = "all extraction strategies failed"
	default:
		result.Status = models.StatusPartial
		result.Message = "no contacts found"
	}
}

// safeExtract runs one strategy under a recover wrapper so a panicking
// selector or parser degrades to "found nothing" instead of taking the
// session down.
func safeExtract(ctx context.Context, st sites.Strategy, pc *sites.PageContent, opts *sites.Options) (contacts []models.Contact, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			contacts = nil
			err = models.NewScrapeError(
				models.ErrCodeExtraction,
				fmt.Sprintf("strategy %s panicked: %v", st.Name(), rec),
				nil,
			)
		}
	}()
	return st.Extract(ctx, pc, opts), nil
}

// profileFetcher lets site strategies follow bio links through the same
// engine ladder, pacing, and page budget as the main crawl.
type profileFetcher struct {
	r *run
}

func (pf *profileFetcher) FetchProfile(ctx context.Context, rawURL string) (string, error) {
	r := pf.r
	if r.pages >= r.settings.MaxPages {
		return "", models.NewScrapeError(models.ErrCodeNavigation, "page budget exhausted", nil)
	}
	if err := r.s.limiter(engine.Domain(rawURL)).Wait(ctx); err != nil {
		return "", err
	}
	r.pages++
	r.frontier.MarkVisited(rawURL)
	fres, err := r.s.engines.Fetch(ctx, &engine.FetchRequest{
		URL:         rawURL,
		Timeout:     r.settings.PageTimeout,
		Stealth:     r.settings.Stealth,
		MaxCaptured: r.settings.MaxCaptured,
	}, r.settings.FetchMode)
	if err != nil {
		return "", err
	}
	r.addCaptured(fres.Captured)
	return fres.HTML, nil
}

// normalizeURL validates the entry URL, defaulting the scheme to https
// and stripping fragments.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", errors.New("missing host")
	}
	u.Fragment = ""
	return u.String(), nil
}
