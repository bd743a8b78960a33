package scraper

import (
	"strings"
	"testing"
)

func TestCollectorAddAndDrain(t *testing.T) {
	col := newCollector(2)

	col.Add("https://club.org/api/staff", "application/json", `{"staff":[]}`)
	col.Add("https://club.org/api/staff?page=2", "application/json", `{"staff":[]}`) // same body, dropped
	col.Add("https://club.org/api/empty", "application/json", "")
	col.Add("https://club.org/api/coaches", "application/json", `{"coaches":[]}`)
	col.Add("https://club.org/api/extra", "application/json", `{"extra":true}`) // over the cap

	items := col.Drain()
	if len(items) != 2 {
		t.Fatalf("got %d captured items, want 2: %+v", len(items), items)
	}
	if items[0].URL != "https://club.org/api/staff" || items[1].URL != "https://club.org/api/coaches" {
		t.Errorf("captured URLs = %s, %s", items[0].URL, items[1].URL)
	}

	if again := col.Drain(); len(again) != 0 {
		t.Errorf("second Drain returned %d items, want 0", len(again))
	}
}

func TestCollectorOversizedBody(t *testing.T) {
	col := newCollector(5)
	col.Add("https://club.org/api/huge", "application/json", strings.Repeat("x", maxCapturedBody+1))
	if items := col.Drain(); len(items) != 0 {
		t.Errorf("oversized body was captured")
	}
}

func TestCapturable(t *testing.T) {
	cases := []struct {
		ct, url string
		want    bool
	}{
		{"application/json", "https://club.org/data", true},
		{"application/json; charset=utf-8", "https://club.org/data", true},
		{"application/ld+json", "https://club.org/data", true},
		{"text/json", "https://club.org/data", true},
		{"text/plain", "https://club.org/api/roster", true},
		{"text/plain", "https://club.org/roster.json", true},
		{"text/plain; charset=utf-8", "https://club.org/graphql", true},
		{"text/plain", "https://club.org/robots.txt", false},
		{"text/html", "https://club.org/api/roster", false},
		{"image/png", "https://club.org/logo.png", false},
	}
	for _, tc := range cases {
		if got := capturable(tc.ct, tc.url); got != tc.want {
			t.Errorf("capturable(%q, %q) = %v, want %v", tc.ct, tc.url, got, tc.want)
		}
	}
}

func TestTrackingHost(t *testing.T) {
	tracking := []string{"google-analytics.com", "doubleclick.net"}

	cases := []struct {
		host string
		want bool
	}{
		{"google-analytics.com", true},
		{"www.google-analytics.com", true},
		{"region1.google-analytics.com", true},
		{"stats.g.doubleclick.net", true},
		{"club.org", false},
		{"analytics.club.org", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := trackingHost(tc.host, tracking); got != tc.want {
			t.Errorf("trackingHost(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}
