package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/use-agent/prospect/cache"
	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/models"
)

const homePage = `<!doctype html>
<html><head><title>Riverton Skating Club</title></head><body>
<h1>Riverton Skating Club</h1>
<p>Ice time, lessons, and competitive figure skating programs for every age
group. The rink is open seven days a week with public sessions each
afternoon and learn-to-skate classes on weekend mornings.</p>
<a href="/about/staff">Our Staff</a>
<a href="/news">Club news</a>
</body></html>`

const staffDirectory = `<!doctype html>
<html><head><title>Our Staff</title></head><body>
<h1>Our Staff</h1>
<div class="staff-card">
  <h3>Jane Doe</h3>
  <p>Head Coach</p>
  <a href="mailto:jane.doe@rivertonsc.org">Email Jane</a>
</div>
<div class="staff-card">
  <h3>Mark Lee</h3>
  <p>Skating Director</p>
  <a href="mailto:mark.lee@rivertonsc.org">Email Mark</a>
</div>
</body></html>`

const plainPage = `<!doctype html>
<html><head><title>Welcome</title></head><body>
<p>We are a community club. Stop by the front desk for program details and
session times during any public skate.</p>
</body></html>`

// testSite serves a fixed path->HTML map and records every request.
type testSite struct {
	srv *httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newTestSite(pages map[string]string) *testSite {
	ts := &testSite{hits: make(map[string]int)}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.hits[r.URL.Path]++
		ts.mu.Unlock()
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
	return ts
}

func (ts *testSite) requests(path string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.hits[path]
}

func (ts *testSite) total() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	n := 0
	for _, c := range ts.hits {
		n += c
	}
	return n
}

func testConfig() *config.Config {
	return &config.Config{
		Scraper: config.Scraper{
			DomainRPS:   100,
			DomainBurst: 10,
		},
		Engine: config.Engine{
			StaticTimeout: 2 * time.Second,
			MemoryTTL:     time.Minute,
		},
	}
}

func staticSettings() *models.ScrapeSettings {
	return &models.ScrapeSettings{
		FetchMode:   models.FetchStatic,
		PageTimeout: 2 * time.Second,
		TotalBudget: 10 * time.Second,
	}
}

func TestScrapeFollowsContactLinks(t *testing.T) {
	site := newTestSite(map[string]string{
		"/":            homePage,
		"/about/staff": staffDirectory,
	})
	defer site.srv.Close()

	s := New(testConfig(), nil, nil)
	defer s.Close()

	res := s.Scrape(context.Background(), site.srv.URL, staticSettings())

	if res.Status != models.StatusSuccess {
		t.Fatalf("status = %s (%s), want success", res.Status, res.Message)
	}
	if res.EngineUsed != "static" {
		t.Errorf("engine = %q, want static", res.EngineUsed)
	}
	if res.Stats.PagesVisited != 2 {
		t.Errorf("pages visited = %d, want 2", res.Stats.PagesVisited)
	}
	if len(res.Contacts) != 2 {
		t.Fatalf("got %d contacts, want 2: %+v", len(res.Contacts), res.Contacts)
	}

	byEmail := map[string]models.Contact{}
	for _, c := range res.Contacts {
		byEmail[c.Email] = c
	}
	jane, ok := byEmail["jane.doe@rivertonsc.org"]
	if !ok {
		t.Fatalf("jane.doe@rivertonsc.org missing from %+v", res.Contacts)
	}
	if jane.Name != "Jane Doe" || jane.Title != "Head Coach" {
		t.Errorf("jane = %+v", jane)
	}
	if !jane.Confidence.Confirmed() {
		t.Errorf("jane confidence = %s, want confirmed", jane.Confidence)
	}
	if _, ok := byEmail["mark.lee@rivertonsc.org"]; !ok {
		t.Errorf("mark.lee@rivertonsc.org missing from %+v", res.Contacts)
	}

	if res.Stats.TotalEmails != 2 || res.Stats.EmailsWithNames != 2 {
		t.Errorf("stats = %+v, want 2 emails with names", res.Stats)
	}
	if site.requests("/news") != 0 {
		t.Error("crawler followed a non-contact link")
	}
}

func TestScrapeNoContactsIsPartial(t *testing.T) {
	site := newTestSite(map[string]string{"/": plainPage})
	defer site.srv.Close()

	s := New(testConfig(), nil, nil)
	defer s.Close()

	res := s.Scrape(context.Background(), site.srv.URL, staticSettings())

	if res.Status != models.StatusPartial {
		t.Fatalf("status = %s, want partial", res.Status)
	}
	if res.Message != "no contacts found" {
		t.Errorf("message = %q", res.Message)
	}
	if res.Contacts == nil || len(res.Contacts) != 0 {
		t.Errorf("contacts = %v, want empty non-nil slice", res.Contacts)
	}
	if res.Stats.PagesVisited != 1 {
		t.Errorf("pages visited = %d, want 1", res.Stats.PagesVisited)
	}
}

func TestScrapeInvalidInput(t *testing.T) {
	s := New(testConfig(), nil, nil)
	defer s.Close()

	for _, raw := range []string{"", "not a url", "ftp://club.org/roster"} {
		res := s.Scrape(context.Background(), raw, staticSettings())
		if res.Status != models.StatusError {
			t.Errorf("Scrape(%q) status = %s, want error", raw, res.Status)
		}
		if !strings.Contains(res.Message, "invalid entry URL") {
			t.Errorf("Scrape(%q) message = %q", raw, res.Message)
		}
		if res.Stats.PagesVisited != 0 {
			t.Errorf("Scrape(%q) visited %d pages", raw, res.Stats.PagesVisited)
		}
	}
}

func TestScrapeEntryBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "access denied", http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(testConfig(), nil, nil)
	defer s.Close()

	res := s.Scrape(context.Background(), srv.URL, staticSettings())
	if res.Status != models.StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
	if !strings.Contains(res.Message, "403") {
		t.Errorf("message = %q, want the HTTP status in it", res.Message)
	}
}

func TestScrapeMaxPages(t *testing.T) {
	var links strings.Builder
	pages := map[string]string{}
	for _, p := range []string{"/staff-a", "/staff-b", "/staff-c", "/staff-d", "/staff-e"} {
		links.WriteString(`<a href="` + p + `">Staff group ` + p + `</a>`)
		pages[p] = `<html><head><title>Group ` + p + `</title></head><body><p>Practice schedule and rink assignments for the group based at ` + p + ` with weekly sessions.</p></body></html>`
	}
	pages["/"] = `<html><head><title>Club</title></head><body><p>Season program listing for every team in the association.</p>` + links.String() + `</body></html>`

	site := newTestSite(pages)
	defer site.srv.Close()

	s := New(testConfig(), nil, nil)
	defer s.Close()

	settings := staticSettings()
	settings.MaxPages = 3
	res := s.Scrape(context.Background(), site.srv.URL, settings)

	if res.Stats.PagesVisited != 3 {
		t.Errorf("pages visited = %d, want the cap of 3", res.Stats.PagesVisited)
	}
	if res.Status != models.StatusPartial {
		t.Errorf("status = %s, want partial", res.Status)
	}
}

func TestScrapeMaxDepth(t *testing.T) {
	site := newTestSite(map[string]string{
		"/":              `<html><head><title>Club</title></head><body><p>Welcome to the association home page with schedules.</p><a href="/staff">Staff</a></body></html>`,
		"/staff":         `<html><head><title>Staff</title></head><body><p>Regional staff listing by district office location.</p><a href="/staff/contact">Contact the staff office</a></body></html>`,
		"/staff/contact": staffDirectory,
	})
	defer site.srv.Close()

	s := New(testConfig(), nil, nil)
	defer s.Close()

	settings := staticSettings()
	settings.MaxDepth = 1
	res := s.Scrape(context.Background(), site.srv.URL, settings)

	if res.Stats.PagesVisited != 2 {
		t.Errorf("pages visited = %d, want 2", res.Stats.PagesVisited)
	}
	if site.requests("/staff/contact") != 0 {
		t.Error("crawler went past MaxDepth")
	}
}

func TestScrapeUsesCache(t *testing.T) {
	site := newTestSite(map[string]string{"/": staffDirectory})
	defer site.srv.Close()

	c := cache.New(10, time.Minute)
	defer c.Stop()

	s := New(testConfig(), nil, c)
	defer s.Close()

	first := s.Scrape(context.Background(), site.srv.URL, staticSettings())
	if first.Status != models.StatusSuccess {
		t.Fatalf("first scrape status = %s (%s)", first.Status, first.Message)
	}
	if first.CacheStatus != "miss" {
		t.Errorf("first cache status = %q, want miss", first.CacheStatus)
	}
	fetched := site.total()

	second := s.Scrape(context.Background(), site.srv.URL, staticSettings())
	if second.CacheStatus != "hit" {
		t.Errorf("second cache status = %q, want hit", second.CacheStatus)
	}
	if len(second.Contacts) != len(first.Contacts) {
		t.Errorf("cached result has %d contacts, want %d", len(second.Contacts), len(first.Contacts))
	}
	if site.total() != fetched {
		t.Errorf("cache hit still fetched: %d -> %d requests", fetched, site.total())
	}

	bypass := staticSettings()
	bypass.NoCache = true
	third := s.Scrape(context.Background(), site.srv.URL, bypass)
	if third.CacheStatus != "" {
		t.Errorf("NoCache result cache status = %q, want empty", third.CacheStatus)
	}
	if site.total() == fetched {
		t.Error("NoCache scrape did not hit the server")
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"club.org/staff", "https://club.org/staff", false},
		{"  https://club.org  ", "https://club.org", false},
		{"http://club.org/a#team", "http://club.org/a", false},
		{"https://club.org/staff?page=2", "https://club.org/staff?page=2", false},
		{"ftp://club.org/roster", "", true},
		{"", "", true},
		{"https://", "", true},
	}
	for _, tc := range cases {
		got, err := normalizeURL(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("normalizeURL(%q) = %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeURL(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("normalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
