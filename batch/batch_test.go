package batch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/models"
	"github.com/use-agent/prospect/webhook"
)

const staffPage = `<!doctype html>
<html><head><title>Coaching Staff</title></head><body>
<h1>Coaching Staff</h1>
<div class="staff-card">
  <h3>Jane Doe</h3>
  <p>Head Coach</p>
  <a href="mailto:jane.doe@rivertonsc.org">jane.doe@rivertonsc.org</a>
</div>
</body></html>`

const emptyPage = `<!doctype html>
<html><head><title>Welcome</title></head><body>
<p>We are a community club. Stop by the front desk for details.</p>
</body></html>`

func testConfig() *config.Config {
	return &config.Config{
		Scraper: config.Scraper{
			DomainRPS:   100,
			DomainBurst: 10,
		},
		Engine: config.Engine{
			StaticTimeout: 2 * time.Second,
			MemoryTTL:     time.Minute,
		},
		Batch: config.Batch{
			Concurrency: 2,
			JobTTL:      time.Minute,
		},
	}
}

func staticSettings() models.ScrapeSettings {
	return models.ScrapeSettings{
		FetchMode:   models.FetchStatic,
		PageTimeout: 250 * time.Millisecond,
		TotalBudget: 5 * time.Second,
	}
}

func waitDone(t *testing.T, r *Runner, id string) *models.ProgressSnapshot {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		snap, ok := r.Progress(id)
		if !ok {
			t.Fatalf("Progress(%q) lost the job", id)
		}
		if snap.Done {
			return snap
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("batch %s did not finish in time", id)
	return nil
}

func TestBatchRunsAllURLs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/staff", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(staffPage))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(emptyPage))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(1200 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(emptyPage))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	runner := New(testConfig(), nil, nil, nil)
	defer runner.Close()

	id, err := runner.Submit([]string{
		srv.URL + "/staff",
		srv.URL + "/empty",
		srv.URL + "/slow",
	}, staticSettings())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	snap := waitDone(t, runner, id)
	if snap.Processed != 3 || snap.Total != 3 {
		t.Fatalf("processed/total = %d/%d, want 3/3", snap.Processed, snap.Total)
	}
	if len(snap.RemainingURLs) != 0 {
		t.Errorf("remaining = %v, want none", snap.RemainingURLs)
	}
	if len(snap.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(snap.Results))
	}

	byStatus := map[models.Status]int{}
	for _, res := range snap.Results {
		byStatus[res.Status]++
	}
	if byStatus[models.StatusSuccess] != 1 {
		t.Errorf("success count = %d, want 1 (results: %+v)", byStatus[models.StatusSuccess], snap.Results)
	}
	if byStatus[models.StatusPartial] != 1 {
		t.Errorf("partial count = %d, want 1", byStatus[models.StatusPartial])
	}
	if byStatus[models.StatusError] != 1 {
		t.Errorf("error count = %d, want 1", byStatus[models.StatusError])
	}

	if len(snap.Errors) != 1 || !strings.Contains(snap.Errors[0], "/slow") {
		t.Errorf("errors = %v, want one entry naming the slow URL", snap.Errors)
	}
}

func TestBatchCancelKeepsRemaining(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", http.NotFound)
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(400 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(emptyPage))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig()
	cfg.Batch.Concurrency = 1
	runner := New(cfg, nil, nil, nil)

	urls := make([]string, 6)
	for i := range urls {
		urls[i] = srv.URL + "/page-" + strconv.Itoa(i+1)
	}
	settings := staticSettings()
	settings.PageTimeout = 5 * time.Second

	id, err := runner.Submit(urls, settings)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if !runner.Cancel(id) {
		t.Fatal("Cancel returned false for a known job")
	}
	runner.Close() // waits for the worker to wind down

	snap, ok := runner.Progress(id)
	if !ok {
		t.Fatal("job vanished after cancel")
	}
	if !snap.Done {
		t.Error("snapshot not done after cancel")
	}
	if snap.Processed > 2 {
		t.Errorf("processed = %d after early cancel, want at most 2", snap.Processed)
	}
	if len(snap.RemainingURLs) < 4 {
		t.Errorf("remaining = %d URLs, want at least 4", len(snap.RemainingURLs))
	}
	if snap.Processed+len(snap.RemainingURLs) != 6 {
		t.Errorf("processed %d + remaining %d != 6", snap.Processed, len(snap.RemainingURLs))
	}

	if runner.Cancel("no-such-id") {
		t.Error("Cancel of unknown ID returned true")
	}
}

func TestSubmitRejectsEmptyBatch(t *testing.T) {
	runner := New(testConfig(), nil, nil, nil)
	defer runner.Close()

	if _, err := runner.Submit(nil, staticSettings()); err == nil {
		t.Fatal("Submit(nil) succeeded, want error")
	} else if models.ErrorCode(err) != models.ErrCodeInvalidInput {
		t.Errorf("error code = %s, want %s", models.ErrorCode(err), models.ErrCodeInvalidInput)
	}
}

func TestProgressUnknownID(t *testing.T) {
	runner := New(testConfig(), nil, nil, nil)
	defer runner.Close()

	if _, ok := runner.Progress("missing"); ok {
		t.Error("Progress returned a snapshot for an unknown ID")
	}
}

func TestBatchDeliversWebhookEvents(t *testing.T) {
	type received struct {
		event webhook.Event
		sig   string
	}
	events := make(chan received, 32)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev webhook.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		select {
		case events <- received{event: ev, sig: r.Header.Get(webhook.SignatureHeader)}:
		default:
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(staffPage))
	}))
	defer site.Close()

	cfg := testConfig()
	cfg.Webhook.URL = hook.URL
	cfg.Webhook.Secret = "s3cret"
	runner := New(cfg, nil, nil, nil)
	defer runner.Close()

	id, err := runner.Submit([]string{site.URL + "/staff"}, staticSettings())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitDone(t, runner, id)

	deadline := time.After(5 * time.Second)
	var sawProgress, sawCompleted bool
	for !sawCompleted {
		select {
		case got := <-events:
			if got.event.BatchID != id {
				t.Errorf("event batch ID = %q, want %q", got.event.BatchID, id)
			}
			if !strings.HasPrefix(got.sig, "sha256=") {
				t.Errorf("signature header = %q, want sha256= prefix", got.sig)
			}
			switch got.event.Type {
			case webhook.EventProgress:
				sawProgress = true
			case webhook.EventCompleted:
				sawCompleted = true
			}
		case <-deadline:
			t.Fatalf("no completed event (progress seen: %v)", sawProgress)
		}
	}
	if !sawProgress {
		t.Error("no progress event before completion")
	}
}

func TestJobSnapshot(t *testing.T) {
	job := &Job{
		ID:        "j1",
		URLs:      []string{"https://a.example", "https://b.example", "https://c.example"},
		status:    models.BatchRunning,
		processed: make([]bool, 3),
	}
	job.record(1, &models.ScrapeResult{URL: "https://b.example", Status: models.StatusError, Message: "boom"})

	snap := job.Snapshot()
	if snap.Done {
		t.Error("running job reported done")
	}
	if snap.Processed != 1 || snap.Total != 3 {
		t.Errorf("processed/total = %d/%d, want 1/3", snap.Processed, snap.Total)
	}
	want := []string{"https://a.example", "https://c.example"}
	if len(snap.RemainingURLs) != 2 || snap.RemainingURLs[0] != want[0] || snap.RemainingURLs[1] != want[1] {
		t.Errorf("remaining = %v, want %v", snap.RemainingURLs, want)
	}
	if len(snap.Errors) != 1 || !strings.Contains(snap.Errors[0], "boom") {
		t.Errorf("errors = %v, want the recorded failure", snap.Errors)
	}

	if !job.markCanceled() {
		t.Error("markCanceled on a running job returned false")
	}
	if job.markCanceled() {
		t.Error("second markCanceled returned true")
	}
	if !job.Snapshot().Done {
		t.Error("canceled job not reported done")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(time.Minute)
	defer reg.Stop()

	job := &Job{ID: "r1", status: models.BatchRunning}
	reg.Put(job)
	if got, ok := reg.Get("r1"); !ok || got != job {
		t.Fatalf("Get(r1) = %v, %v", got, ok)
	}
	reg.Delete("r1")
	if _, ok := reg.Get("r1"); ok {
		t.Error("job still present after Delete")
	}
	if _, ok := reg.Get("never"); ok {
		t.Error("Get of unknown ID returned a job")
	}
}
