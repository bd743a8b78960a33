package dom

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/prospect/models"
)

func mustDoc(t *testing.T, rawHTML string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestFindCards_FirstFamilyWins(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body>
		<article>A generic article that should be shadowed.</article>
		<div class="coach-card"><h3>Jane Doe</h3></div>
		<div class="coach-card"><h3>Mia Torres</h3></div>
	</body></html>`)

	cards := m.FindCards(doc)
	if len(cards) != 2 {
		t.Fatalf("expected 2 coach-card matches, got %d", len(cards))
	}
	for _, c := range cards {
		if !c.HasClass("coach-card") {
			t.Errorf("card from wrong family: %s", goquery.NodeName(c))
		}
	}
}

func TestFindCards_OutermostOnly(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body>
		<div class="staff-list"><div class="staff-name">Jane Doe</div></div>
	</body></html>`)

	// Both elements match [class*='staff']; only the outer container counts.
	cards := m.FindCards(doc)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if !cards[0].HasClass("staff-list") {
		t.Errorf("expected the outer container to survive")
	}
}

func TestFindCards_NoMatch(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body><p>Nothing card-like here.</p></body></html>`)
	if cards := m.FindCards(doc); len(cards) != 0 {
		t.Fatalf("expected no cards, got %d", len(cards))
	}
}

func TestFallbackCards(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body>
		<div id="wrap">
			<div class="bio">Coach Sam Hill runs the program. Email: sam@northbay.org</div>
			<div class="bio">Coach Ada Ruiz, goalie development. Email: ada@northbay.org</div>
			<div class="legal">All rights reserved worldwide by the club.</div>
		</div>
	</body></html>`)

	cards := m.FallbackCards(doc)
	if len(cards) != 2 {
		t.Fatalf("expected the 2 bio divs, got %d", len(cards))
	}
	for _, c := range cards {
		if !c.HasClass("bio") {
			t.Errorf("unexpected fallback card with class %q", c.AttrOr("class", ""))
		}
	}
}

func TestFallbackCardsPrefersTagged(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body>
		<div class="bio">Coach Sam Hill runs the program. Email: sam@northbay.org</div>
		<div data-contact-card>Ada Ruiz leads goalie development on Tuesdays.</div>
	</body></html>`)

	cards := m.FallbackCards(doc)
	if len(cards) != 1 {
		t.Fatalf("expected only the tagged card, got %d", len(cards))
	}
	if _, ok := cards[0].Attr("data-contact-card"); !ok {
		t.Error("fallback returned an untagged card despite tagged candidates")
	}
}

func TestCardContact_MailtoCard(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body><div class="coach-card">
		<a href="mailto:jane@acme.com">Jane Doe, Head Coach</a>
	</div></body></html>`)

	cards := m.FindCards(doc)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	c, ok := m.CardContact(cards[0], "https://acme.com/staff")
	if !ok {
		t.Fatal("expected a contact from the mailto card")
	}
	if c.Email != "jane@acme.com" {
		t.Errorf("email = %q, want jane@acme.com", c.Email)
	}
	if c.Name != "Jane Doe" {
		t.Errorf("name = %q, want Jane Doe", c.Name)
	}
	if !strings.Contains(c.Title, "Coach") {
		t.Errorf("title = %q, want something containing Coach", c.Title)
	}
	if c.Confidence != models.ConfidenceConfirmed {
		t.Errorf("confidence = %q, want confirmed", c.Confidence)
	}
}

func TestCardContact_MailtoSubjectStripped(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body><div class="staff-member">
		<h3>Mia Torres</h3>
		<a href="MAILTO:Mia.Torres@Club.org?subject=Tryouts">Email Mia</a>
	</div></body></html>`)

	c, ok := m.CardContact(m.FindCards(doc)[0], "club.org")
	if !ok {
		t.Fatal("expected a contact")
	}
	if c.Email != "mia.torres@club.org" {
		t.Errorf("email = %q, want mia.torres@club.org", c.Email)
	}
	if c.Name != "Mia Torres" {
		t.Errorf("name = %q, want Mia Torres", c.Name)
	}
}

func TestCardContact_DataEmailAttribute(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body><div class="person-card">
		<span class="name">Lena Park</span>
		<span class="position">Skating Director</span>
		<button data-email="lena@icehouse.org">Contact</button>
	</div></body></html>`)

	c, ok := m.CardContact(m.FindCards(doc)[0], "icehouse.org")
	if !ok {
		t.Fatal("expected a contact")
	}
	if c.Email != "lena@icehouse.org" {
		t.Errorf("email = %q, want lena@icehouse.org", c.Email)
	}
	if c.Name != "Lena Park" {
		t.Errorf("name = %q, want Lena Park", c.Name)
	}
	if c.Title != "Skating Director" {
		t.Errorf("title = %q, want Skating Director", c.Title)
	}
}

func TestCardContact_CloudflareObfuscated(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body><div class="coach-card">
		<h3>Jane Doe</h3>
		<span class="__cf_email__" data-cfemail="2349424d466342404e460d404c4e">[email protected]</span>
	</div></body></html>`)

	c, ok := m.CardContact(m.FindCards(doc)[0], "acme.com")
	if !ok {
		t.Fatal("expected a contact from the cfemail card")
	}
	if c.Email != "jane@acme.com" {
		t.Errorf("email = %q, want jane@acme.com", c.Email)
	}
}

func TestCardContact_TitleOnFollowingLine(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body><div class="staff-card">
		<p>Omar Reyes</p>
		<p>Director of Hockey Operations</p>
		<p><a href="mailto:omar@rinkworks.org">omar@rinkworks.org</a></p>
	</div></body></html>`)

	c, ok := m.CardContact(m.FindCards(doc)[0], "rinkworks.org")
	if !ok {
		t.Fatal("expected a contact")
	}
	if c.Name != "Omar Reyes" {
		t.Errorf("name = %q, want Omar Reyes", c.Name)
	}
	if c.Title != "Director of Hockey Operations" {
		t.Errorf("title = %q, want Director of Hockey Operations", c.Title)
	}
}

func TestCardContact_TelLink(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body><div class="coach-card">
		<h3>Jane Doe</h3>
		<a href="mailto:jane@acme.com">Email</a>
		<a href="tel:+1-555-123-4567">Call</a>
	</div></body></html>`)

	c, ok := m.CardContact(m.FindCards(doc)[0], "acme.com")
	if !ok {
		t.Fatal("expected a contact")
	}
	if c.Phone != "+1-555-123-4567" {
		t.Errorf("phone = %q, want +1-555-123-4567", c.Phone)
	}
}

func TestCardContact_NoEmail(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body><div class="coach-card">
		<h3>Jane Doe</h3><p>Head Coach</p>
	</div></body></html>`)

	if _, ok := m.CardContact(m.FindCards(doc)[0], "acme.com"); ok {
		t.Fatal("card without an email must not yield a contact")
	}
}

func TestCardContact_BlockedEmail(t *testing.T) {
	m := NewMatcher(nil)
	doc := mustDoc(t, `<html><body><div class="coach-card">
		<h3>Jane Doe</h3>
		<a href="mailto:jane@example.com">Email</a>
	</div></body></html>`)

	if _, ok := m.CardContact(m.FindCards(doc)[0], "example.com"); ok {
		t.Fatal("placeholder-domain email must not yield a contact")
	}
}

func TestContacts_EndToEnd(t *testing.T) {
	m := NewMatcher(nil)
	rawHTML := `<html><body>
		<div class="staff-member">
			<h3>Jane Doe</h3><p>Head Coach</p>
			<a href="mailto:jane@acme.com">Email</a>
		</div>
		<div class="staff-member">
			<h3>Omar Reyes</h3><p>Assistant Coach</p>
			<a href="mailto:omar@acme.com">Email</a>
		</div>
		<div class="staff-member">
			<h3>Front Desk</h3>
			<a href="mailto:jane@acme.com">Email</a>
		</div>
	</body></html>`

	contacts := m.Contacts(rawHTML, "https://acme.com/staff")
	if len(contacts) != 2 {
		t.Fatalf("expected 2 deduplicated contacts, got %d", len(contacts))
	}
	if contacts[0].Email != "jane@acme.com" || contacts[1].Email != "omar@acme.com" {
		t.Errorf("unexpected order: %q, %q", contacts[0].Email, contacts[1].Email)
	}
	if contacts[0].Name != "Jane Doe" {
		t.Errorf("name = %q, want Jane Doe", contacts[0].Name)
	}
}

func TestSplitLines(t *testing.T) {
	md := "## Jane Doe\n\n**Head Coach**\n\n[jane@acme.com](mailto:jane@acme.com)\n"
	lines := splitLines(md)
	want := []string{"Jane Doe", "Head Coach", "jane@acme.com"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
