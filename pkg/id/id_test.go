package id

import (
	"sort"
	"sync"
	"testing"
)

func TestNewFormat(t *testing.T) {
	v := New()
	if len(v) != 26 {
		t.Fatalf("ULID length = %d, want 26", len(v))
	}
}

func TestNewOrderedWithinProcess(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = New()
	}
	if !sort.StringsAreSorted(ids) {
		t.Fatal("ids generated in sequence must sort in generation order")
	}
}

func TestNewConcurrentUnique(t *testing.T) {
	const n = 200

	var mu sync.Mutex
	seen := make(map[string]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := New()
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("got %d unique ids, want %d", len(seen), n)
	}
}
