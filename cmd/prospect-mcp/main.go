package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/prospect/cache"
	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/models"
	"github.com/use-agent/prospect/scraper"
)

var version = "dev"

func main() {
	cfg := config.Load()

	// stdout carries the MCP protocol, so logs go to stderr.
	initLogger(cfg.Log)

	heur, err := config.LoadHeuristics(cfg.HeuristicsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load heuristics: %v\n", err)
		os.Exit(1)
	}

	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.MaxAge)
	defer cc.Stop()

	sc := scraper.New(cfg, heur, cc)
	defer sc.Close()

	s := server.NewMCPServer(
		"prospect",
		version,
		server.WithToolCapabilities(false),
	)

	scrapeContactsTool := mcp.NewTool("scrape_contacts",
		mcp.WithDescription("Scrape a club or team website for coach and staff contacts: emails, names, titles, and phone numbers. Crawls contact-looking pages from the entry URL and renders JavaScript-heavy sites in a headless browser."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The site URL to scrape"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("Fetch strategy: 'auto' (default) starts with plain HTTP and escalates to the browser when needed, 'static' never launches a browser, 'browser' always renders"),
			mcp.Enum("auto", "static", "browser"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Contact-page crawl depth from the entry page (default: 2)"),
		),
		mcp.WithNumber("max_pages",
			mcp.Description("Maximum pages visited per site (default: 12)"),
		),
	)
	s.AddTool(scrapeContactsTool, handleScrapeContacts(sc, cfg))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScrapeContacts(sc *scraper.Scraper, cfg *config.Config) server.ToolHandlerFunc {
	// The scraper owns one browser session, so tool calls run one at
	// a time.
	var mu sync.Mutex

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		settings := &models.ScrapeSettings{
			FetchMode:     request.GetString("fetch_mode", ""),
			MaxDepth:      cfg.Scraper.MaxDepth,
			MaxPages:      cfg.Scraper.MaxPages,
			PageTimeout:   cfg.Scraper.PageTimeout,
			TotalBudget:   cfg.Scraper.TotalBudget,
			MaxCaptured:   cfg.Scraper.MaxCaptured,
			ProfileVisits: cfg.Scraper.ProfileVisits,
		}
		args := request.GetArguments()
		if v, ok := args["max_depth"].(float64); ok && v > 0 {
			settings.MaxDepth = int(v)
		}
		if v, ok := args["max_pages"].(float64); ok && v > 0 {
			settings.MaxPages = int(v)
		}

		mu.Lock()
		result := sc.Scrape(ctx, url, settings)
		mu.Unlock()

		if result.Status == models.StatusError {
			return mcp.NewToolResultError(result.Message), nil
		}
		return mcp.NewToolResultText(formatResult(result)), nil
	}
}

// formatResult renders a scrape result as compact text for the caller.
func formatResult(res *models.ScrapeResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s, %d contacts across %d pages (engine: %s)\n",
		res.URL, res.Status, len(res.Contacts), res.Stats.PagesVisited, res.EngineUsed)

	if len(res.Contacts) == 0 {
		sb.WriteString("\nNo contacts found. The site may list no emails, or may need browser mode.\n")
		return sb.String()
	}

	sb.WriteString("\n")
	for _, c := range res.Contacts {
		fmt.Fprintf(&sb, "- %s", c.Email)
		if c.Name != "" {
			fmt.Fprintf(&sb, " | %s", c.Name)
		}
		if c.Title != "" {
			fmt.Fprintf(&sb, " | %s", c.Title)
		}
		if c.Phone != "" {
			fmt.Fprintf(&sb, " | %s", c.Phone)
		}
		fmt.Fprintf(&sb, " | %s", c.Confidence)
		if len(c.AlternateEmails) > 0 {
			fmt.Fprintf(&sb, " | alternates: %s", strings.Join(c.AlternateEmails, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// initLogger configures slog on stderr.
func initLogger(cfg config.Log) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
