package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/use-agent/prospect/batch"
	"github.com/use-agent/prospect/cache"
	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/models"
	"github.com/use-agent/prospect/scraper"
	"github.com/use-agent/prospect/tabular"
)

// App holds everything a command needs to run.
type App struct {
	Ctx    context.Context
	Config *config.Config
	Heur   *config.Heuristics
	Cache  *cache.Cache
	Stdout io.Writer
}

// CLI is the kong command tree.
type CLI struct {
	Scrape  ScrapeCmd  `cmd:"" help:"Scrape one site for contacts"`
	Batch   BatchCmd   `cmd:"" help:"Scrape every URL listed in a CSV/XLSX file"`
	Version VersionCmd `cmd:"" help:"Print the version"`
}

// scrapeFlags are the session settings shared by scrape and batch.
type scrapeFlags struct {
	Mode    string `default:"auto" enum:"auto,static,browser" help:"Fetch strategy: auto escalates from plain HTTP to the browser"`
	Depth   int    `help:"Contact-page crawl depth (0 = config default)"`
	Pages   int    `help:"Page budget per site (0 = config default)"`
	Stealth bool   `help:"Start browser fetches with bot-evasion patches"`
	NoCache bool   `help:"Bypass the result cache"`
}

// settings merges config defaults with explicit flags.
func (f *scrapeFlags) settings(cfg *config.Config) models.ScrapeSettings {
	s := models.ScrapeSettings{
		FetchMode:     f.Mode,
		MaxDepth:      cfg.Scraper.MaxDepth,
		MaxPages:      cfg.Scraper.MaxPages,
		PageTimeout:   cfg.Scraper.PageTimeout,
		TotalBudget:   cfg.Scraper.TotalBudget,
		MaxCaptured:   cfg.Scraper.MaxCaptured,
		ProfileVisits: cfg.Scraper.ProfileVisits,
		Stealth:       f.Stealth,
		NoCache:       f.NoCache,
	}
	if f.Depth > 0 {
		s.MaxDepth = f.Depth
	}
	if f.Pages > 0 {
		s.MaxPages = f.Pages
	}
	return s
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL string `arg:"" help:"Entry URL to scrape"`
	scrapeFlags
	JSON   bool   `help:"Print the full result as JSON"`
	Output string `short:"o" placeholder:"FILE" help:"Write contacts to a .csv or .xlsx file"`
}

func (c *ScrapeCmd) Run(app *App) error {
	sc := scraper.New(app.Config, app.Heur, app.Cache)
	defer sc.Close()

	settings := c.settings(app.Config)
	res := sc.Scrape(app.Ctx, c.URL, &settings)
	return writeResults(app.Stdout, []models.ScrapeResult{*res}, c.Output, c.JSON)
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	Input string `arg:"" type:"existingfile" help:"CSV or XLSX file with a URL column"`
	scrapeFlags
	Workers int    `short:"w" help:"Concurrent scrape workers (0 = config default)"`
	JSON    bool   `help:"Print full results as JSON"`
	Output  string `short:"o" placeholder:"FILE" help:"Write contacts to a .csv or .xlsx file"`
}

func (c *BatchCmd) Run(app *App) error {
	urls, err := tabular.ReadURLs(c.Input)
	if err != nil {
		return err
	}
	slog.Info("batch input loaded", "file", c.Input, "urls", len(urls))

	cfg := *app.Config
	if c.Workers > 0 {
		cfg.Batch.Concurrency = c.Workers
	}

	runner := batch.New(&cfg, app.Heur, app.Cache, nil)
	defer runner.Close()

	id, err := runner.Submit(urls, c.settings(app.Config))
	if err != nil {
		return err
	}

	// A signal cancels the batch; polling continues until the workers
	// have wound down and the snapshot reports done.
	go func() {
		<-app.Ctx.Done()
		runner.Cancel(id)
	}()

	lastDone := -1
	for {
		snap, ok := runner.Progress(id)
		if !ok {
			return fmt.Errorf("batch %s disappeared from the registry", id)
		}
		if snap.Processed != lastDone {
			lastDone = snap.Processed
			slog.Info("batch progress", "processed", snap.Processed, "total", snap.Total)
		}
		if snap.Done {
			return writeResults(app.Stdout, snap.Results, c.Output, c.JSON)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

// VersionCmd is the "version" subcommand.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	fmt.Fprintln(app.Stdout, "prospect "+version)
	return nil
}

// writeResults delivers results to a tabular file, JSON on stdout, or a
// human-readable summary.
func writeResults(stdout io.Writer, results []models.ScrapeResult, outPath string, asJSON bool) error {
	if outPath != "" {
		var err error
		switch strings.ToLower(filepath.Ext(outPath)) {
		case ".csv":
			err = tabular.WriteCSV(outPath, results)
		case ".xlsx":
			err = tabular.WriteXLSX(outPath, results)
		default:
			return fmt.Errorf("unsupported output %q, want .csv or .xlsx", outPath)
		}
		if err != nil {
			return err
		}
		slog.Info("results written", "file", outPath, "results", len(results))
		return nil
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, res := range results {
		fmt.Fprintf(stdout, "%s  %s", res.URL, res.Status)
		if res.Message != "" {
			fmt.Fprintf(stdout, "  (%s)", res.Message)
		}
		fmt.Fprintln(stdout)
		for _, c := range res.Contacts {
			fmt.Fprintf(stdout, "  %s", c.Email)
			if c.Name != "" {
				fmt.Fprintf(stdout, "  %s", c.Name)
			}
			if c.Title != "" {
				fmt.Fprintf(stdout, "  %s", c.Title)
			}
			if c.Phone != "" {
				fmt.Fprintf(stdout, "  %s", c.Phone)
			}
			fmt.Fprintf(stdout, "  [%s]\n", c.Confidence)
		}
	}
	return nil
}
