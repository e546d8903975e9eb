package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/ecole-console/internal/core"
)

// DefaultMemoryCapacity bounds how many entries a MemoryStore keeps.
const DefaultMemoryCapacity = 5000

// MemoryStore keeps history in process memory. Entries are lost on
// restart; the oldest are dropped once capacity is reached.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  []core.ImportEntry
	capacity int
}

var _ core.HistoryStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store. capacity <= 0 uses DefaultMemoryCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity}
}

func (m *MemoryStore) Record(ctx context.Context, e core.ImportEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, e)
	if over := len(m.entries) - m.capacity; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
	}
	return nil
}

func (m *MemoryStore) Recent(ctx context.Context, schoolID string, limit int) ([]core.ImportEntry, error) {
	m.mu.RLock()
	var out []core.ImportEntry
	for _, e := range m.entries {
		if e.SchoolID == schoolID {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	for _, e := range m.entries {
		if !e.StartedAt.Before(olderThan) {
			kept = append(kept, e)
		}
	}
	purged := int64(len(m.entries) - len(kept))
	m.entries = kept
	return purged, nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
