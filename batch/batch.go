// Package batch runs scrape jobs over many URLs with a bounded worker
// pool. Each worker owns its own Scraper so browser sessions are never
// shared across goroutines. Jobs are tracked in a Store and polled by
// ID; progress and completion can additionally be pushed over webhooks.
package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/use-agent/prospect/cache"
	"github.com/use-agent/prospect/config"
	"github.com/use-agent/prospect/models"
	"github.com/use-agent/prospect/scraper"
	"github.com/use-agent/prospect/webhook"
)

// Job tracks one submitted batch: its inputs, accumulated results, and
// lifecycle status. All mutable state is guarded by mu; the runner and
// pollers touch it concurrently.
type Job struct {
	ID       string
	URLs     []string
	Settings models.ScrapeSettings

	cancel context.CancelFunc

	mu         sync.Mutex
	status     string
	results    []models.ScrapeResult
	errors     []string
	processed  []bool
	finishedAt time.Time
}

func (j *Job) record(idx int, res *models.ScrapeResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, *res)
	j.processed[idx] = true
	if res.Status == models.StatusError {
		msg := res.Message
		if msg == "" {
			msg = "scrape failed"
		}
		j.errors = append(j.errors, res.URL+": "+msg)
	}
}

// markCanceled flips a running job to canceled. Returns false if the
// job had already finished.
func (j *Job) markCanceled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != models.BatchRunning {
		return false
	}
	j.status = models.BatchCanceled
	j.finishedAt = time.Now()
	return true
}

// finishRunning marks a still-running job completed. Canceled jobs keep
// their status.
func (j *Job) finishRunning() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != models.BatchRunning {
		return
	}
	j.status = models.BatchCompleted
	j.finishedAt = time.Now()
}

func (j *Job) Status() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *Job) finishedBefore(cutoff time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status != models.BatchRunning && j.finishedAt.Before(cutoff)
}

// Snapshot builds the polling view of the job. Results appear in
// completion order; remaining URLs keep their submission order.
func (j *Job) Snapshot() *models.ProgressSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := &models.ProgressSnapshot{
		Done:          j.status != models.BatchRunning,
		Processed:     len(j.results),
		Total:         len(j.URLs),
		Results:       append([]models.ScrapeResult(nil), j.results...),
		Errors:        append([]string(nil), j.errors...),
		RemainingURLs: []string{},
	}
	if snap.Results == nil {
		snap.Results = []models.ScrapeResult{}
	}
	if snap.Errors == nil {
		snap.Errors = []string{}
	}
	for i, u := range j.URLs {
		if !j.processed[i] {
			snap.RemainingURLs = append(snap.RemainingURLs, u)
		}
	}
	return snap
}

// Runner executes batches in the background. Submit returns immediately
// with a job ID; Progress polls it and Cancel stops it.
type Runner struct {
	cfg   *config.Config
	heur  *config.Heuristics
	cache *cache.Cache
	store Store

	ownStore bool
	wg       sync.WaitGroup
}

// New creates a Runner. A nil store gets an in-memory Registry using
// the configured job TTL; a nil cache disables result caching.
func New(cfg *config.Config, heur *config.Heuristics, c *cache.Cache, store Store) *Runner {
	own := false
	if store == nil {
		store = NewRegistry(cfg.Batch.JobTTL)
		own = true
	}
	return &Runner{cfg: cfg, heur: heur, cache: c, store: store, ownStore: own}
}

// Submit registers a batch and starts scraping in the background.
func (r *Runner) Submit(urls []string, settings models.ScrapeSettings) (string, error) {
	if len(urls) == 0 {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "batch needs at least one URL", nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		ID:        uuid.NewString(),
		URLs:      append([]string(nil), urls...),
		Settings:  settings,
		cancel:    cancel,
		status:    models.BatchRunning,
		processed: make([]bool, len(urls)),
	}
	r.store.Put(job)
	r.wg.Add(1)
	go r.execute(ctx, job)

	slog.Info("batch submitted", "id", job.ID, "urls", len(urls))
	return job.ID, nil
}

// Progress returns the current snapshot for a job, or false if the ID
// is unknown (never submitted, or evicted after its TTL).
func (r *Runner) Progress(id string) (*models.ProgressSnapshot, bool) {
	job, ok := r.store.Get(id)
	if !ok {
		return nil, false
	}
	return job.Snapshot(), true
}

// Cancel stops a running job. URLs already scraped keep their results;
// the rest are reported as remaining. Returns false for unknown IDs.
func (r *Runner) Cancel(id string) bool {
	job, ok := r.store.Get(id)
	if !ok {
		return false
	}
	if job.markCanceled() {
		job.cancel()
		slog.Info("batch canceled", "id", id)
	}
	return true
}

// Close waits for in-flight batches to wind down and stops the registry
// eviction loop when the runner owns it.
func (r *Runner) Close() {
	r.wg.Wait()
	if reg, ok := r.store.(*Registry); ok && r.ownStore {
		reg.Stop()
	}
}

func (r *Runner) execute(ctx context.Context, job *Job) {
	defer r.wg.Done()
	defer job.cancel()
	start := time.Now()

	type task struct {
		idx int
		url string
	}
	tasks := make(chan task)
	go func() {
		defer close(tasks)
		for i, u := range job.URLs {
			select {
			case tasks <- task{idx: i, url: u}:
			case <-ctx.Done():
				return
			}
		}
	}()

	workers := r.cfg.Batch.Concurrency
	if workers <= 0 {
		workers = 2
	}
	if workers > len(job.URLs) {
		workers = len(job.URLs)
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			sc := scraper.New(r.cfg, r.heur, r.cache)
			defer sc.Close()
			for t := range tasks {
				if ctx.Err() != nil {
					return nil
				}
				// Fresh settings per URL: Defaults fills
				// pointer fields, which must not be shared
				// across workers.
				settings := job.Settings
				res := sc.Scrape(ctx, t.url, &settings)
				job.record(t.idx, res)
				r.notify(webhook.EventProgress, job)
			}
			return nil
		})
	}
	_ = g.Wait()

	job.finishRunning()

	var succeeded, partial, failed int
	snap := job.Snapshot()
	for _, res := range snap.Results {
		switch res.Status {
		case models.StatusSuccess:
			succeeded++
		case models.StatusPartial:
			partial++
		default:
			failed++
		}
	}
	slog.Info("batch finished",
		"id", job.ID,
		"status", job.Status(),
		"succeeded", succeeded,
		"partial", partial,
		"failed", failed,
		"total", len(job.URLs),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	final := webhook.EventCompleted
	if job.Status() == models.BatchCanceled {
		final = webhook.EventCanceled
	}
	r.notify(final, job)
}

func (r *Runner) notify(eventType string, job *Job) {
	if r.cfg.Webhook.URL == "" {
		return
	}
	webhook.DeliverAsync(r.cfg.Webhook.URL, r.cfg.Webhook.Secret, &webhook.Event{
		Type:      eventType,
		BatchID:   job.ID,
		Timestamp: time.Now().Unix(),
		Data:      job.Snapshot(),
	})
}
