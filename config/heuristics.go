package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Heuristics are the tunable keyword and selector tables driving
// extraction. They ship with working defaults; a YAML file can override
// any table field by field (absent keys keep their defaults).
type Heuristics struct {
	// TitleWords is the vocabulary recognized as job titles near an
	// email or inside a card.
	TitleWords []string `yaml:"title_words"`

	// ContactLinkWords gate which same-site links the crawler follows.
	ContactLinkWords []string `yaml:"contact_link_words"`

	// RolePrefixes are mailbox prefixes treated as non-personal.
	RolePrefixes []string `yaml:"role_prefixes"`

	// RoleAllowWords rescue a role-prefixed address when the address or
	// its domain contains one of these keywords.
	RoleAllowWords []string `yaml:"role_allow_words"`

	// BlockedDomains are placeholder or vendor domains never worth
	// keeping.
	BlockedDomains []string `yaml:"blocked_domains"`

	// TrackingHosts are analytics hosts the crawler and the hijack skip.
	TrackingHosts []string `yaml:"tracking_hosts"`

	// CardSelectors are the ranked selector families for the DOM card
	// scan. Order matters: the first family with any matches wins.
	CardSelectors []string `yaml:"card_selectors"`

	// PersonWords score generic containers in the fallback card scan.
	PersonWords []string `yaml:"person_words"`

	// ProfileLinkWords mark links on a card as profile pages worth
	// visiting for a confirmed email.
	ProfileLinkWords []string `yaml:"profile_link_words"`

	// HockeyHosts and GoverningHosts key the site-specific strategies.
	// Entries are host substrings.
	HockeyHosts    []string `yaml:"hockey_hosts"`
	GoverningHosts []string `yaml:"governing_hosts"`

	// AthleticsSuffixes mark college athletics hosts.
	AthleticsSuffixes []string `yaml:"athletics_suffixes"`
}

// DefaultHeuristics returns the built-in tables.
func DefaultHeuristics() *Heuristics {
	return &Heuristics{
		TitleWords: []string{
			"Coach", "Director", "Manager", "Trainer",
			"Instructor", "Head", "Assistant", "Coordinator",
		},
		ContactLinkWords: []string{
			"contact", "staff", "about", "team", "coach", "directory", "faculty",
		},
		RolePrefixes: []string{
			"noreply", "no-reply", "donotreply", "do-not-reply",
			"info", "admin", "webmaster", "postmaster", "support",
			"sales", "office", "billing", "careers", "press",
		},
		RoleAllowWords: []string{
			"hockey", "skate", "skating", "travel", "athletics",
		},
		BlockedDomains: []string{
			"example.com", "example.org", "example.net",
			"domain.com", "yourdomain.com", "email.com",
			"test.com", "company.com",
			"sentry.io", "wixpress.com",
		},
		TrackingHosts: []string{
			"google-analytics.com", "googletagmanager.com",
			"doubleclick.net", "googlesyndication.com",
			"facebook.net", "hotjar.com", "clarity.ms",
			"mixpanel.com", "segment.io", "fullstory.com",
		},
		CardSelectors: []string{
			".coach-card", ".staff-member", ".team-member",
			".staff-card", ".directory-entry", ".person-card",
			"[class*='coach']", "[class*='staff']", "[class*='member']",
			"article", "li.member",
		},
		PersonWords: []string{
			"coach", "staff", "director", "instructor", "trainer",
			"manager", "contact", "email", "phone",
		},
		ProfileLinkWords: []string{
			"bio", "profile", "staff", "coach", "people", "directory",
		},
		HockeyHosts: []string{"hockey"},
		GoverningHosts: []string{
			"usahockey.com", "usfigureskating.org", "teamusa.org",
		},
		AthleticsSuffixes: []string{".edu"},
	}
}

// LoadHeuristics returns the defaults overlaid with the YAML file at
// path. An empty path returns the defaults untouched.
func LoadHeuristics(path string) (*Heuristics, error) {
	h := DefaultHeuristics()
	if path == "" {
		return h, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read heuristics file: %w", err)
	}
	if err := yaml.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("parse heuristics file: %w", err)
	}
	return h, nil
}
