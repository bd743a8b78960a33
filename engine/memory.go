package engine

import (
	"sync"
	"time"
)

// DomainMemory remembers which engine a domain ended up needing, so repeat
// visits skip the doomed static attempt. Entries expire after the TTL; a
// background loop prunes whatever Recall never touched again.
type DomainMemory struct {
	ttl  time.Duration
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	engine  string
	expires time.Time
}

func NewDomainMemory(ttl time.Duration) *DomainMemory {
	dm := &DomainMemory{
		ttl:     ttl,
		done:    make(chan struct{}),
		entries: make(map[string]memoryEntry),
	}
	go dm.cleanupLoop()
	return dm
}

// Recall returns the remembered engine for domain, or "" when unknown or
// expired. Safe on a nil receiver.
func (dm *DomainMemory) Recall(domain string) string {
	if dm == nil {
		return ""
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	e, ok := dm.entries[domain]
	if !ok {
		return ""
	}
	if time.Now().After(e.expires) {
		delete(dm.entries, domain)
		return ""
	}
	return e.engine
}

// Remember records which engine worked for domain.
func (dm *DomainMemory) Remember(domain, engine string) {
	if dm == nil {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.entries[domain] = memoryEntry{engine: engine, expires: time.Now().Add(dm.ttl)}
}

// Forget drops the entry for domain, typically after the remembered engine
// stopped working.
func (dm *DomainMemory) Forget(domain string) {
	if dm == nil {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	delete(dm.entries, domain)
}

// Stop terminates the cleanup goroutine. Idempotent.
func (dm *DomainMemory) Stop() {
	if dm == nil {
		return
	}
	dm.once.Do(func() { close(dm.done) })
}

func (dm *DomainMemory) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-dm.done:
			return
		case <-ticker.C:
			now := time.Now()
			dm.mu.Lock()
			for domain, e := range dm.entries {
				if now.After(e.expires) {
					delete(dm.entries, domain)
				}
			}
			dm.mu.Unlock()
		}
	}
}
