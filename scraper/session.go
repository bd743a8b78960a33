package scraper

import (
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/models"
)

// Session owns one headless browser exclusively. Page operations within
// a session are sequential; the batch layer gives every worker its own
// Session and recycles it when health degrades.
type Session struct {
	browser *rod.Browser
	health  *sessionHealth
}

// NewSession launches a headless browser with automation markers
// scrubbed from the command line.
func NewSession(cfg config.Browser) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to launch browser",
			err,
		)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to connect to browser",
			err,
		)
	}
	slog.Info("browser launched", "headless", cfg.Headless)

	return &Session{
		browser: browser,
		health:  newSessionHealth(cfg.PagesPerBrowser, cfg.RecycleErrorScore),
	}, nil
}

// Page opens a fresh tab. The caller closes it.
func (s *Session) Page() (*rod.Page, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to open page",
			err,
		)
	}
	return page, nil
}

func (s *Session) RecordSuccess() { s.health.RecordSuccess() }
func (s *Session) RecordFailure() { s.health.RecordFailure() }

// Healthy reports whether the session should keep serving pages.
func (s *Session) Healthy() bool { return !s.health.ShouldRecycle() }

// PagesServed returns how many pages this browser has rendered.
func (s *Session) PagesServed() int { return s.health.pages }

// Close kills the browser process. Runs in the guaranteed cleanup path,
// so it logs instead of returning an error.
func (s *Session) Close() {
	if s == nil || s.browser == nil {
		return
	}
	if err := s.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	s.browser = nil
}
