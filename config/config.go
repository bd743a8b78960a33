package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Browser Browser
	Scraper Scraper
	Engine  Engine
	Batch   Batch
	Cache   Cache
	Webhook Webhook
	Log     Log

	// HeuristicsPath points at an optional YAML file overriding the
	// built-in extraction heuristics.
	HeuristicsPath string
}

// Browser controls the Rod browser instances.
type Browser struct {
	// Headless controls whether Chrome runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// Bin overrides the Chromium binary path.
	Bin string

	// Proxy is the default proxy URL for all traffic.
	Proxy string

	// PagesPerBrowser is how many pages a browser serves before the
	// owning worker relaunches it.
	PagesPerBrowser int // default: 40

	// RecycleErrorScore is the health score at which a browser is
	// relaunched early.
	RecycleErrorScore int // default: 5
}

// Scraper controls per-session scraping behavior.
type Scraper struct {
	// PageTimeout bounds navigation plus rendering of one page.
	PageTimeout time.Duration // default: 30s

	// TotalBudget bounds one session's wall-clock.
	TotalBudget time.Duration // default: 3m

	// MaxDepth limits the contact-page crawl (entry page is depth 0).
	MaxDepth int // default: 2

	// MaxPages caps pages visited per session.
	MaxPages int // default: 12

	// MaxCaptured caps retained network response bodies per session.
	MaxCaptured int // default: 20

	// ProfileVisits caps profile pages visited per site strategy.
	ProfileVisits int // default: 3

	// BlockedResourceTypes lists resource types the hijack blocks.
	// Stylesheets stay loaded: the fallback card scan needs real layout
	// boxes. default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// DomainRPS is the sustained request rate per domain.
	DomainRPS float64 // default: 1.0

	// DomainBurst is the per-domain burst size.
	DomainBurst int // default: 2
}

// Engine controls the escalating fetch dispatcher.
type Engine struct {
	// StaticTimeout is the deadline for the static HTTP engine.
	StaticTimeout time.Duration // default: 8s

	// MemoryTTL is how long a domain's winning engine is remembered.
	MemoryTTL time.Duration // default: 1h
}

// Batch controls the batch runner.
type Batch struct {
	// Concurrency is the number of concurrent browser sessions.
	Concurrency int // default: 2

	// JobTTL is how long finished batches stay pollable.
	JobTTL time.Duration // default: 10m
}

// Cache controls the scrape result cache.
type Cache struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 500

	// MaxAge is how long a cached result stays fresh.
	MaxAge time.Duration // default: 15m
}

// Webhook controls optional progress delivery.
type Webhook struct {
	URL    string
	Secret string
}

// Log controls structured logging.
type Log struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane
// defaults. A .env file in the working directory is honored when
// present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Browser: Browser{
			Headless:          envBoolOr("PROSPECT_HEADLESS", true),
			NoSandbox:         envBoolOr("PROSPECT_NO_SANDBOX", false),
			Bin:               os.Getenv("PROSPECT_BROWSER_BIN"),
			Proxy:             os.Getenv("PROSPECT_PROXY"),
			PagesPerBrowser:   envIntOr("PROSPECT_PAGES_PER_BROWSER", 40),
			RecycleErrorScore: envIntOr("PROSPECT_RECYCLE_ERRORS", 5),
		},
		Scraper: Scraper{
			PageTimeout:   envDurationOr("PROSPECT_PAGE_TIMEOUT", 30*time.Second),
			TotalBudget:   envDurationOr("PROSPECT_TOTAL_BUDGET", 3*time.Minute),
			MaxDepth:      envIntOr("PROSPECT_MAX_DEPTH", 2),
			MaxPages:      envIntOr("PROSPECT_MAX_PAGES", 12),
			MaxCaptured:   envIntOr("PROSPECT_MAX_CAPTURED", 20),
			ProfileVisits: envIntOr("PROSPECT_PROFILE_VISITS", 3),
			BlockedResourceTypes: envSliceOr("PROSPECT_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			DomainRPS:   envFloatOr("PROSPECT_DOMAIN_RPS", 1.0),
			DomainBurst: envIntOr("PROSPECT_DOMAIN_BURST", 2),
		},
		Engine: Engine{
			StaticTimeout: envDurationOr("PROSPECT_STATIC_TIMEOUT", 8*time.Second),
			MemoryTTL:     envDurationOr("PROSPECT_MEMORY_TTL", time.Hour),
		},
		Batch: Batch{
			Concurrency: envIntOr("PROSPECT_BATCH_CONCURRENCY", 2),
			JobTTL:      envDurationOr("PROSPECT_BATCH_TTL", 10*time.Minute),
		},
		Cache: Cache{
			MaxEntries: envIntOr("PROSPECT_CACHE_ENTRIES", 500),
			MaxAge:     envDurationOr("PROSPECT_CACHE_AGE", 15*time.Minute),
		},
		Webhook: Webhook{
			URL:    os.Getenv("PROSPECT_WEBHOOK_URL"),
			Secret: os.Getenv("PROSPECT_WEBHOOK_SECRET"),
		},
		Log: Log{
			Level:  envOr("PROSPECT_LOG_LEVEL", "info"),
			Format: envOr("PROSPECT_LOG_FORMAT", "json"),
		},
		HeuristicsPath: os.Getenv("PROSPECT_HEURISTICS"),
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
