// Package store keeps scraped price observations and hands completed jobs
// off to external consumers. The snapshot store is the query surface behind
// the price-history endpoint.
package store

import (
	"sync"
	"time"

	"github.com/Modzmart2112/Tracker-sub001/models"
)

// maxSnapshotsPerProduct bounds history growth per fingerprint; oldest
// observations fall off first.
const maxSnapshotsPerProduct = 200

// SnapshotStore records price observations and serves their history.
type SnapshotStore interface {
	// Record appends one observation per product. Consecutive observations
	// at an unchanged price collapse into the existing snapshot.
	Record(products []models.ScrapedProduct)

	// History returns the observations for one fingerprint, oldest first.
	// Nil means the fingerprint has never been seen.
	History(fingerprint string) []models.PriceSnapshot
}

// MemoryStore is the in-memory SnapshotStore. Safe for concurrent use.
// Process restart loses history; durable storage is the webhook consumer's
// concern.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]models.PriceSnapshot
}

// NewMemoryStore creates an empty snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]models.PriceSnapshot)}
}

func (m *MemoryStore) Record(products []models.ScrapedProduct) {
	now := time.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range products {
		p := &products[i]
		if p.Fingerprint == "" {
			continue
		}

		history := m.snapshots[p.Fingerprint]
		if n := len(history); n > 0 && samePrice(history[n-1].Price, p.Price) {
			continue
		}

		history = append(history, models.PriceSnapshot{
			Fingerprint: p.Fingerprint,
			SKU:         p.SKU,
			Title:       p.Title,
			Price:       p.Price,
			ObservedAt:  now,
		})
		if len(history) > maxSnapshotsPerProduct {
			history = history[len(history)-maxSnapshotsPerProduct:]
		}
		m.snapshots[p.Fingerprint] = history
	}
}

func (m *MemoryStore) History(fingerprint string) []models.PriceSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history, ok := m.snapshots[fingerprint]
	if !ok {
		return nil
	}
	out := make([]models.PriceSnapshot, len(history))
	copy(out, history)
	return out
}

func samePrice(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
