// Benchmark harness for the extraction pipeline. Serves synthetic club
// sites on a local listener and times repeated scrapes against them, so
// runs are reproducible and need no network or browser.
//
// Usage:
//
//	go run ./scripts/benchmark -runs 5 -output benchmark-results.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/models"
	"github.com/use-agent/prospect/scraper"
)

var (
	runs   = flag.Int("runs", 3, "Number of runs per fixture for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
	depth  = flag.Int("depth", 2, "Contact-page crawl depth")
)

// fixtures are the synthetic sites, one per extraction path.
var fixtures = []struct {
	Label string
	Path  string
}{
	{"DirectoryCards", "/cards/"},
	{"MailtoText", "/mailto/"},
	{"Obfuscated", "/obfuscated/"},
	{"LinkedStaffPage", "/linked/"},
	{"NoContacts", "/empty/"},
}

type runResult struct {
	Run       int    `json:"run"`
	TotalMs   int64  `json:"total_ms"`
	Pages     int    `json:"pages"`
	Contacts  int    `json:"contacts"`
	Status    string `json:"status"`
	CacheUsed bool   `json:"cache_used"`
	Error     string `json:"error,omitempty"`
}

type fixtureAverages struct {
	TotalMs  float64 `json:"total_ms"`
	Pages    float64 `json:"pages"`
	Contacts float64 `json:"contacts"`
}

type fixtureResult struct {
	Label    string           `json:"label"`
	URL      string           `json:"url"`
	Runs     []runResult      `json:"runs"`
	Averages *fixtureAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp   string          `json:"timestamp"`
	RunsPerSite int             `json:"runs_per_site"`
	CrawlDepth  int             `json:"crawl_depth"`
	Results     []fixtureResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== Prospect Extraction Benchmark ===")
	fmt.Printf("Runs/site:  %d\n", *runs)
	fmt.Printf("Depth:      %d\n", *depth)
	fmt.Printf("Output:     %s\n", *output)
	fmt.Println()

	addr, shutdown, err := startFixtureServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot start fixture server: %v\n", err)
		os.Exit(1)
	}
	defer shutdown()

	cfg := config.Load()
	cfg.Scraper.DomainRPS = 1000 // pacing would dominate the numbers
	cfg.Scraper.DomainBurst = 100

	heur, err := config.LoadHeuristics(cfg.HeuristicsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sc := scraper.New(cfg, heur, nil)
	defer sc.Close()

	report := benchmarkReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		RunsPerSite: *runs,
		CrawlDepth:  *depth,
	}

	for _, f := range fixtures {
		target := "http://" + addr + f.Path
		fmt.Printf("Benchmarking [%s] %s ...\n", f.Label, target)
		fr := fixtureResult{Label: f.Label, URL: target}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkSite(sc, target, i)
			if rr.Error == "" {
				fmt.Printf("%s  %dms  %d contacts  %d pages\n", rr.Status, rr.TotalMs, rr.Contacts, rr.Pages)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			fr.Runs = append(fr.Runs, rr)
		}

		fr.Averages = computeAverages(fr.Runs)
		report.Results = append(report.Results, fr)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func benchmarkSite(sc *scraper.Scraper, url string, run int) runResult {
	rr := runResult{Run: run}

	settings := &models.ScrapeSettings{
		FetchMode:   models.FetchStatic,
		MaxDepth:    *depth,
		PageTimeout: 10 * time.Second,
		TotalBudget: time.Minute,
		NoCache:     true, // every run measures a cold crawl
	}

	start := time.Now()
	res := sc.Scrape(context.Background(), url, settings)
	rr.TotalMs = time.Since(start).Milliseconds()

	rr.Status = string(res.Status)
	rr.Pages = res.Stats.PagesVisited
	rr.Contacts = len(res.Contacts)
	rr.CacheUsed = res.CacheStatus == "hit"
	if res.Status == models.StatusError {
		rr.Error = res.Message
	}
	return rr
}

func computeAverages(runs []runResult) *fixtureAverages {
	var ok int
	var avg fixtureAverages
	for _, r := range runs {
		if r.Error != "" {
			continue
		}
		ok++
		avg.TotalMs += float64(r.TotalMs)
		avg.Pages += float64(r.Pages)
		avg.Contacts += float64(r.Contacts)
	}
	if ok == 0 {
		return nil
	}
	n := float64(ok)
	avg.TotalMs /= n
	avg.Pages /= n
	avg.Contacts /= n
	return &avg
}

func printTable(results []fixtureResult) {
	fmt.Println(strings.Repeat("─", 70))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Fixture\tAvg Latency\tAvg Pages\tAvg Contacts\n")
	fmt.Fprintf(w, "───────\t───────────\t─────────\t────────────\n")
	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\n", r.Label)
			continue
		}
		fmt.Fprintf(w, "%s\t%.0fms\t%.1f\t%.1f\n",
			r.Label, r.Averages.TotalMs, r.Averages.Pages, r.Averages.Contacts)
	}
	w.Flush()
	fmt.Println(strings.Repeat("─", 70))
}

func writeJSON(path string, report benchmarkReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// startFixtureServer serves the synthetic sites on an ephemeral local
// port and returns the address plus a shutdown func.
func startFixtureServer() (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	mux := http.NewServeMux()
	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, body)
		}
	}

	mux.HandleFunc("/cards/", page(cardsFixture))
	mux.HandleFunc("/mailto/", page(mailtoFixture))
	mux.HandleFunc("/obfuscated/", page(obfuscatedFixture))
	mux.HandleFunc("/linked/", page(linkedHomeFixture))
	mux.HandleFunc("/linked/staff", page(linkedStaffFixture))
	mux.HandleFunc("/empty/", page(emptyFixture))

	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
	return ln.Addr().String(), shutdown, nil
}

const cardsFixture = `<!doctype html>
<html><head><title>Coaching Staff</title></head><body>
<h1>Coaching Staff</h1>
<div class="coach-card"><h3>Jane Doe</h3><p>Head Coach</p>
<a href="mailto:jane.doe@rivertonsc.org">jane.doe@rivertonsc.org</a>
<span>(555) 123-4567</span></div>
<div class="coach-card"><h3>Mark Lee</h3><p>Skating Director</p>
<a href="mailto:mark.lee@rivertonsc.org">mark.lee@rivertonsc.org</a></div>
<div class="coach-card"><h3>Ana Silva</h3><p>Program Coordinator</p>
<a href="mailto:ana.silva@rivertonsc.org">ana.silva@rivertonsc.org</a></div>
</body></html>`

const mailtoFixture = `<!doctype html>
<html><head><title>Contact Us</title></head><body>
<h1>Contact Us</h1>
<p>For lesson scheduling reach our skating director, Priya Patel, at
priya.patel@lakesideblades.org or call the rink office.</p>
<p>Hockey inquiries: <a href="mailto:hockey@lakesideblades.org">hockey@lakesideblades.org</a></p>
</body></html>`

const obfuscatedFixture = `<!doctype html>
<html><head><title>Board of Directors</title></head><body>
<h1>Board of Directors</h1>
<p>President: Sam Ortiz <script>document.write('sam.ortiz' + '@harbor' + 'blades.com')</script></p>
<p>Treasurer: Dana Kim <a href="/cdn-cgi/l/email-protection" class="__cf_email__" data-cfemail="7b1f1a151a551012163b131a0919140919171a1f1e0855181416">[email&#160;protected]</a></p>
</body></html>`

const linkedHomeFixture = `<!doctype html>
<html><head><title>Harbor Blades</title></head><body>
<h1>Harbor Blades Figure Skating Club</h1>
<p>Programs for every level, from learn-to-skate through senior
competitive. Ice schedules are posted each Monday morning.</p>
<a href="/linked/staff">Meet our coaches</a>
</body></html>`

const linkedStaffFixture = `<!doctype html>
<html><head><title>Our Coaches</title></head><body>
<h1>Our Coaches</h1>
<div class="staff-member"><h3>Noel Park</h3><p>Head Coach</p>
<a href="mailto:noel.park@harborblades.com">Email</a></div>
</body></html>`

const emptyFixture = `<!doctype html>
<html><head><title>Rink Hours</title></head><body>
<h1>Rink Hours</h1>
<p>Public sessions run weekday afternoons and weekend mornings. Holiday
hours are posted at the front desk.</p>
</body></html>`
