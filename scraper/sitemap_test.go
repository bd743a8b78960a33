package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/use-agent/prospect/config"
)

func sitemapFor(host string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://` + host + `/</loc></url>
  <url><loc>http://` + host + `/about/staff</loc></url>
  <url><loc>http://` + host + `/contact</loc></url>
  <url><loc>http://` + host + `/news/season-recap</loc></url>
  <url><loc>http://other.example/staff</loc></url>
</urlset>`
}

func TestProbeSitemap(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sitemap.xml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(sitemapFor(srv.Listener.Addr().String())))
	}))
	defer srv.Close()

	words := config.DefaultHeuristics().ContactLinkWords
	got := probeSitemap(context.Background(), srv.URL+"/", words, 5)

	if len(got) != 2 {
		t.Fatalf("probeSitemap returned %v, want the staff and contact URLs", got)
	}
	for _, u := range got {
		if !strings.HasPrefix(u, "http://"+srv.Listener.Addr().String()) {
			t.Errorf("seed %q is not same-site", u)
		}
	}
	if !strings.HasSuffix(got[0], "/about/staff") || !strings.HasSuffix(got[1], "/contact") {
		t.Errorf("seeds = %v", got)
	}
}

func TestProbeSitemapLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(sitemapFor(srv.Listener.Addr().String())))
	}))
	defer srv.Close()

	got := probeSitemap(context.Background(), srv.URL, config.DefaultHeuristics().ContactLinkWords, 1)
	if len(got) != 1 {
		t.Fatalf("limit 1 returned %d seeds", len(got))
	}
}

func TestProbeSitemapMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	if got := probeSitemap(context.Background(), srv.URL, []string{"staff"}, 5); got != nil {
		t.Errorf("probeSitemap on 404 = %v, want nil", got)
	}
}

func TestProbeSitemapGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not xml at all"))
	}))
	defer srv.Close()

	if got := probeSitemap(context.Background(), srv.URL, []string{"staff"}, 5); got != nil {
		t.Errorf("probeSitemap on garbage = %v, want nil", got)
	}
}

func TestProbeSitemapBadEntry(t *testing.T) {
	if got := probeSitemap(context.Background(), "not-a-url", []string{"staff"}, 5); got != nil {
		t.Errorf("probeSitemap on bad entry = %v, want nil", got)
	}
}
