package extract

import (
	"sync"
	"time"

	"github.com/Modzmart2112/Tracker-sub001/models"
)

// Strategy is one way of pulling raw records out of a page. The orchestrator
// tries the structural strategy first and escalates to the heuristic one
// when structure yields nothing and the job allows it.
type Strategy interface {
	Name() string
	Extract(pq PageQuery, cfg *models.ScrapingConfig) ([]models.RawRecord, error)
}

// strategyEntry stores the winning strategy for a domain with a TTL.
type strategyEntry struct {
	strategyName string
	expiresAt    time.Time
}

// StrategyMemory remembers which extraction strategy produced records for
// each domain, so later jobs against the same site skip the losing attempt.
// Entries expire after the configured TTL and are pruned periodically.
type StrategyMemory struct {
	store sync.Map // domain (string) -> *strategyEntry
	ttl   time.Duration
	done  chan struct{}
}

// NewStrategyMemory creates a StrategyMemory with the given TTL and starts
// a background goroutine that prunes expired entries every hour.
func NewStrategyMemory(ttl time.Duration) *StrategyMemory {
	sm := &StrategyMemory{
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go sm.cleanupLoop()
	return sm
}

// Get returns the remembered strategy name for a domain, or "" if not found
// or expired.
func (sm *StrategyMemory) Get(domain string) string {
	val, ok := sm.store.Load(domain)
	if !ok {
		return ""
	}
	entry := val.(*strategyEntry)
	if time.Now().After(entry.expiresAt) {
		sm.store.Delete(domain)
		return ""
	}
	return entry.strategyName
}

// Set records which strategy produced records for a domain.
func (sm *StrategyMemory) Set(domain, strategyName string) {
	sm.store.Store(domain, &strategyEntry{
		strategyName: strategyName,
		expiresAt:    time.Now().Add(sm.ttl),
	})
}

// Delete removes the memory for a domain (e.g. after the remembered
// strategy stops matching).
func (sm *StrategyMemory) Delete(domain string) {
	sm.store.Delete(domain)
}

// Stop terminates the background cleanup goroutine.
func (sm *StrategyMemory) Stop() {
	close(sm.done)
}

// cleanupLoop runs every hour, deleting expired entries.
func (sm *StrategyMemory) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-sm.done:
			return
		case <-ticker.C:
			now := time.Now()
			sm.store.Range(func(key, value any) bool {
				entry := value.(*strategyEntry)
				if now.After(entry.expiresAt) {
					sm.store.Delete(key)
				}
				return true
			})
		}
	}
}
