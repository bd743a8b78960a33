package extract

import (
	"testing"

	"github.com/ysmood/gson"
)

func TestMineJSON_KeyFamilies(t *testing.T) {
	payload := `{
		"staff": [
			{
				"fullName": "Jane Doe",
				"email": "jane@acme.com",
				"phoneNumber": "555-123-4567",
				"website": "https://acme.com/jane"
			}
		]
	}`

	data := MineJSONString(payload)

	if len(data.Emails) != 1 || data.Emails[0] != "jane@acme.com" {
		t.Errorf("Emails = %v, want [jane@acme.com]", data.Emails)
	}
	if len(data.Names) != 1 || data.Names[0] != "Jane Doe" {
		t.Errorf("Names = %v, want [Jane Doe]", data.Names)
	}
	if len(data.Phones) != 1 || data.Phones[0] != "555-123-4567" {
		t.Errorf("Phones = %v, want [555-123-4567]", data.Phones)
	}
	if len(data.URLs) != 1 || data.URLs[0] != "https://acme.com/jane" {
		t.Errorf("URLs = %v, want [https://acme.com/jane]", data.URLs)
	}
}

func TestMineJSON_ShapeTestedRegardlessOfKey(t *testing.T) {
	payload := `{"description": "write to coach@rink.net for ice times"}`

	data := MineJSONString(payload)
	if len(data.Emails) != 1 || data.Emails[0] != "coach@rink.net" {
		t.Errorf("Emails = %v, want email found under unrelated key", data.Emails)
	}
}

func TestMineJSON_DepthCutoff(t *testing.T) {
	// Email lives under five nested objects: reachable.
	shallow := `{"l1":{"l2":{"l3":{"l4":{"email":"deep@acme.com"}}}}}`
	if data := MineJSONString(shallow); len(data.Emails) != 1 {
		t.Errorf("five-level email should be found, got %v", data.Emails)
	}

	// One level deeper: past the cutoff, invisible.
	deep := `{"l1":{"l2":{"l3":{"l4":{"l5":{"email":"deep@acme.com"}}}}}}`
	if data := MineJSONString(deep); len(data.Emails) != 0 {
		t.Errorf("six-level email should be cut off, got %v", data.Emails)
	}
}

func TestMineJSON_ContextLines(t *testing.T) {
	payload := `{
		"name": "Ann Smith",
		"title": "Head Coach",
		"email": "ann@club.org"
	}`

	data := MineJSONString(payload)
	if len(data.Context) != 1 {
		t.Fatalf("Context = %v, want one summary line", data.Context)
	}
	want := "email: ann@club.org | name: Ann Smith | title: Head Coach"
	if data.Context[0] != want {
		t.Errorf("Context[0] = %q, want %q", data.Context[0], want)
	}
}

func TestMineJSON_Deduplicates(t *testing.T) {
	payload := `{"a": "dup@x.com", "b": "dup@x.com", "c": {"email": "dup@x.com"}}`

	data := MineJSONString(payload)
	if len(data.Emails) != 1 {
		t.Errorf("Emails = %v, want one entry", data.Emails)
	}
}

func TestMineJSONString_InvalidJSON(t *testing.T) {
	data := MineJSONString("<html>not json</html>")
	if !data.Empty() {
		t.Errorf("invalid JSON should mine nothing, got %+v", data)
	}
}

func TestMineJSON_ArraysDoNotSkipLevels(t *testing.T) {
	// Arrays count toward depth like objects do.
	payload := `{"teams": [{"coaches": [{"email": "c@team.org"}]}]}`

	data := MineJSON(gson.NewFrom(payload))
	if len(data.Emails) != 1 {
		t.Errorf("Emails = %v, want [c@team.org]", data.Emails)
	}
}
