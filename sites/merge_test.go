package sites

import (
	"testing"

	"github.com/use-agent/prospect/models"
)

func TestReplaceGeneratedByName(t *testing.T) {
	existing := []models.Contact{
		{Email: "jane.doe@club.org", Name: "Jane Doe", Title: "Head Coach", Confidence: models.ConfidenceGenerated},
		{Email: "omar@club.org", Name: "Omar Reyes", Confidence: models.ConfidenceConfirmed},
	}
	confirmed := []models.Contact{
		{Email: "jdoe@club.org", Name: "jane doe", Confidence: models.ConfidenceConfirmed},
	}

	out := ReplaceGeneratedByName(existing, confirmed)
	if len(out) != 2 {
		t.Fatalf("expected 2 contacts, got %d: %+v", len(out), out)
	}
	jane := out[0]
	if jane.Email != "jdoe@club.org" {
		t.Errorf("email = %q, want the confirmed address", jane.Email)
	}
	if !jane.Confidence.Confirmed() {
		t.Errorf("confidence = %q, want confirmed", jane.Confidence)
	}
	if jane.Title != "Head Coach" {
		t.Errorf("title = %q, want inherited from the generated contact", jane.Title)
	}
}

func TestReplaceGeneratedByName_NeverTouchesConfirmed(t *testing.T) {
	existing := []models.Contact{
		{Email: "omar@club.org", Name: "Omar Reyes", Confidence: models.ConfidenceConfirmed},
	}
	confirmed := []models.Contact{
		{Email: "o.reyes@club.org", Name: "Omar Reyes", Confidence: models.ConfidenceConfirmed},
	}

	out := ReplaceGeneratedByName(existing, confirmed)
	if len(out) != 2 {
		t.Fatalf("expected both confirmed addresses kept, got %+v", out)
	}
	if out[0].Email != "omar@club.org" || out[1].Email != "o.reyes@club.org" {
		t.Errorf("unexpected emails: %q, %q", out[0].Email, out[1].Email)
	}
}

func TestReplaceGeneratedByName_NoNameMatchAppends(t *testing.T) {
	existing := []models.Contact{
		{Email: "jane.doe@club.org", Name: "Jane Doe", Confidence: models.ConfidenceGenerated},
	}
	confirmed := []models.Contact{
		{Email: "lena@club.org", Name: "Lena Park", Confidence: models.ConfidenceConfirmed},
	}

	out := ReplaceGeneratedByName(existing, confirmed)
	if len(out) != 2 {
		t.Fatalf("expected append without replacement, got %+v", out)
	}
	if out[0].Confidence != models.ConfidenceGenerated || out[1].Email != "lena@club.org" {
		t.Errorf("unexpected merge: %+v", out)
	}
}
