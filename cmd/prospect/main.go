package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/use-agent/prospect/cache"
	"github.com/use-agent/prospect/config"
)

// version is overridden at release time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("prospect"),
		kong.Description("Contact discovery for club and team websites: crawls contact-looking pages, renders JS-heavy sites in a headless browser, and extracts coach and staff emails."),
		kong.UsageOnError(),
	)

	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log, os.Stderr)

	// ── 3. Load extraction heuristics ───────────────────────────────
	heur, err := config.LoadHeuristics(cfg.HeuristicsPath)
	if err != nil {
		slog.Error("failed to load heuristics", "path", cfg.HeuristicsPath, "error", err)
		os.Exit(1)
	}

	// ── 4. Result cache ─────────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.MaxAge)
	defer cc.Stop()

	// ── 5. Run the command under signal-driven cancellation ─────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &App{
		Ctx:    ctx,
		Config: cfg,
		Heur:   heur,
		Cache:  cc,
		Stdout: os.Stdout,
	}
	if err := kctx.Run(app); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// initLogger configures slog from the log config. The CLI logs to
// stderr so piped stdout stays clean result data.
func initLogger(cfg config.Log, w *os.File) {
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
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
