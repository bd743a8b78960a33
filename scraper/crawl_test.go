package scraper

import (
	"net/url"
	"testing"
)

func TestFrontierQueueAndDedup(t *testing.T) {
	f := newFrontier()

	if !f.Add("https://club.org/", 0) {
		t.Fatal("first Add returned false")
	}
	if f.Add("https://club.org/", 1) {
		t.Error("duplicate Add returned true")
	}
	if !f.Add("https://club.org/staff", 1) {
		t.Fatal("second URL rejected")
	}
	if f.Len() != 2 {
		t.Fatalf("Len = %d, want 2", f.Len())
	}

	item, ok := f.Next()
	if !ok || item.url != "https://club.org/" || item.depth != 0 {
		t.Errorf("Next = %+v, %v; want entry at depth 0", item, ok)
	}
	item, ok = f.Next()
	if !ok || item.url != "https://club.org/staff" || item.depth != 1 {
		t.Errorf("Next = %+v, %v; want staff at depth 1", item, ok)
	}
	if _, ok := f.Next(); ok {
		t.Error("Next on empty frontier returned an item")
	}
}

func TestFrontierMarkVisited(t *testing.T) {
	f := newFrontier()
	f.MarkVisited("https://club.org/profile/jane")
	if f.Add("https://club.org/profile/jane", 2) {
		t.Error("Add queued a URL already marked visited")
	}
	if f.Len() != 0 {
		t.Errorf("Len = %d, want 0", f.Len())
	}
}

func TestCollectLinks(t *testing.T) {
	page := `<html><body>
<a href="/about/staff">Our Staff</a>
<a href="/about/staff#coaches">Our Staff Anchor</a>
<a href="https://club.org/contact-us">Get in touch</a>
<a href="https://www.club.org/team">Meet the Team</a>
<a href="https://other.example/staff">External staff</a>
<a href="/roster.pdf">Staff roster PDF</a>
<a href="/news/2024">Season recap</a>
<a href="mailto:info@club.org">info@club.org</a>
<a href="tel:+15551234567">Call the coach hotline</a>
<a href="javascript:void(0)">Contact popup</a>
<a href="#top">Contact section</a>
</body></html>`

	lc := newLinkCollector(nil)
	got := lc.Collect(page, "https://club.org/")

	want := []string{
		"https://club.org/about/staff",
		"https://club.org/contact-us",
		"https://www.club.org/team",
	}
	if len(got) != len(want) {
		t.Fatalf("Collect returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCollectLinksPathKeyword(t *testing.T) {
	// Anchor text says nothing, but the path mentions a contact keyword.
	page := `<html><body><a href="/club/directory/2024">Browse</a></body></html>`
	lc := newLinkCollector(nil)
	got := lc.Collect(page, "https://club.org/")
	if len(got) != 1 || got[0] != "https://club.org/club/directory/2024" {
		t.Fatalf("Collect = %v, want the directory path", got)
	}
}

func TestCollectLinksBadBase(t *testing.T) {
	lc := newLinkCollector(nil)
	if got := lc.Collect(`<a href="/staff">Staff</a>`, "::not a url"); got != nil {
		t.Errorf("Collect with bad base = %v, want nil", got)
	}
}

func TestSameSite(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"https://club.org/", "https://club.org/staff", true},
		{"https://www.club.org/", "https://club.org/staff", true},
		{"https://club.org/", "https://WWW.CLUB.ORG/x", true},
		{"https://club.org/", "https://cdn.club.org/x", false},
		{"https://club.org/", "https://other.example/", false},
	}
	for _, tc := range cases {
		a, _ := url.Parse(tc.a)
		b, _ := url.Parse(tc.b)
		if got := sameSite(a, b); got != tc.want {
			t.Errorf("sameSite(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
