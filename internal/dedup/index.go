package dedup

import (
	"strings"
	"sync"

	"github.com/spigell/job-router/internal/routing"
)

// Index is the set of identity keys already present in any destination.
// Blank keys are never checked and never stored, so postings without a url
// can duplicate indefinitely.
type Index struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func New() *Index {
	return &Index{keys: make(map[string]struct{})}
}

func (i *Index) Contains(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	_, ok := i.keys[key]
	return ok
}

func (i *Index) Add(key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.keys[key] = struct{}{}
}

// CheckAndAdd inserts key and reports whether it was new. Blank keys are always new.
func (i *Index) CheckAndAdd(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.keys[key]; ok {
		return false
	}
	i.keys[key] = struct{}{}
	return true
}

// BulkLoad adds the existing keys of every destination. Loading twice is a no-op.
func (i *Index) BulkLoad(existing map[routing.Category][]string) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	before := len(i.keys)
	for _, keys := range existing {
		for _, key := range keys {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			i.keys[key] = struct{}{}
		}
	}
	return len(i.keys) - before
}

func (i *Index) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	return len(i.keys)
}
