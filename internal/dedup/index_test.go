package dedup

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spigell/job-router/internal/routing"
)

func TestIndexBlankKeys(t *testing.T) {
	t.Parallel()

	idx := New()
	idx.Add("")
	idx.Add("   ")

	if idx.Len() != 0 {
		t.Fatalf("expected blank keys to be ignored, got %d", idx.Len())
	}
	if idx.Contains("") {
		t.Fatalf("blank key must never match")
	}
	if !idx.CheckAndAdd("") || !idx.CheckAndAdd("") {
		t.Fatalf("blank key must always be reported as new")
	}
}

func TestIndexCheckAndAdd(t *testing.T) {
	t.Parallel()

	idx := New()
	if !idx.CheckAndAdd("https://a") {
		t.Fatalf("expected first insert to be new")
	}
	if idx.CheckAndAdd(" https://a ") {
		t.Fatalf("expected trimmed duplicate to be rejected")
	}
	if !idx.Contains("https://a") {
		t.Fatalf("expected key to be present")
	}
}

func TestIndexBulkLoadIdempotent(t *testing.T) {
	t.Parallel()

	existing := map[routing.Category][]string{
		routing.DirectPortals:       {"https://a", "https://b", ""},
		routing.InternationalRemote: {"https://b", "https://c"},
	}

	idx := New()
	if added := idx.BulkLoad(existing); added != 3 {
		t.Fatalf("expected 3 new keys, got %d", added)
	}
	if added := idx.BulkLoad(existing); added != 0 {
		t.Fatalf("expected second load to add nothing, got %d", added)
	}
	if idx.Len() != 3 {
		t.Fatalf("expected 3 keys, got %d", idx.Len())
	}
}

func TestIndexConcurrentCheckAndAdd(t *testing.T) {
	t.Parallel()

	idx := New()
	var wins atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 100; k++ {
				if idx.CheckAndAdd(fmt.Sprintf("https://jobs/%d", k)) {
					wins.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 100 {
		t.Fatalf("expected exactly 100 winning inserts, got %d", wins.Load())
	}
}
