package scheduling

import (
	"sort"
	"sync"
	"time"

	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// resourceDayLocks serializes check-then-act sequences per (resource, day).
// The conflict query and the following insert/update are not atomic at the
// store; holding the lock for every resource-day a booking touches closes
// that window within this process. The store's exclusion constraint backs
// it up across processes.
type resourceDayLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newResourceDayLocks() *resourceDayLocks {
	return &resourceDayLocks{locks: make(map[string]*sync.Mutex)}
}

func lockKey(kind types.ResourceKind, resourceID string, day time.Time) string {
	return string(kind) + "|" + resourceID + "|" + day.Format("2006-01-02")
}

func (r *resourceDayLocks) get(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	r.locks[key] = m
	return m
}

// acquire locks every given (resource, day) pair in sorted key order so
// two operations touching the same pairs never deadlock. Returns the
// release function.
func (r *resourceDayLocks) acquire(keys []string) func() {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	// Deduplicate: doctor and patient keys can coincide across days
	held := make([]*sync.Mutex, 0, len(sorted))
	var prev string
	for i, key := range sorted {
		if i > 0 && key == prev {
			continue
		}
		prev = key
		m := r.get(key)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
