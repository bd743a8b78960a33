package batch

import (
	"sync"
	"time"
)

// Store is where the runner keeps jobs between polls. The in-memory
// Registry is the default; callers needing persistence plug in their
// own.
type Store interface {
	Put(job *Job)
	Get(id string) (*Job, bool)
	Delete(id string)
}

// Registry is the in-memory Store. Finished jobs stay pollable for the
// TTL and are then evicted by a background loop.
type Registry struct {
	ttl  time.Duration
	done chan struct{}
	once sync.Once

	mu   sync.Mutex
	jobs map[string]*Job
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	r := &Registry{
		ttl:  ttl,
		done: make(chan struct{}),
		jobs: make(map[string]*Job),
	}
	go r.cleanupLoop()
	return r
}

func (r *Registry) Put(job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
}

func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	return job, ok
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// Stop terminates the eviction loop. Idempotent.
func (r *Registry) Stop() {
	r.once.Do(func() { close(r.done) })
}

func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-r.ttl)
			r.mu.Lock()
			for id, job := range r.jobs {
				if job.finishedBefore(cutoff) {
					delete(r.jobs, id)
				}
			}
			r.mu.Unlock()
		}
	}
}
