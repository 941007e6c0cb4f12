package resource

import (
	"sync"
	"testing"
)

func TestManager_BorrowRelease(t *testing.T) {
	m := New("gen1", func(string) {})
	h := m.Borrow()
	if h.Resource() != "gen1" {
		t.Fatalf("expected gen1, got %v", h.Resource())
	}
	h.Release()
}

func TestManager_ReplaceFreesOldOnceUnborrowed(t *testing.T) {
	var freed []string
	var mu sync.Mutex
	free := func(r string) {
		mu.Lock()
		freed = append(freed, r)
		mu.Unlock()
	}

	m := New("gen1", free)
	h1 := m.Borrow()

	m.Replace("gen2", free)

	mu.Lock()
	freedSoFar := len(freed)
	mu.Unlock()
	if freedSoFar != 0 {
		t.Fatalf("gen1 should not be freed while still borrowed, freed=%v", freed)
	}

	h1.Release()

	mu.Lock()
	defer mu.Unlock()
	if len(freed) != 1 || freed[0] != "gen1" {
		t.Fatalf("expected gen1 to be freed after last release, got %v", freed)
	}
}

func TestManager_BorrowAfterReplaceSeesNewGeneration(t *testing.T) {
	m := New("gen1", func(string) {})
	m.Replace("gen2", func(string) {})
	h := m.Borrow()
	defer h.Release()
	if h.Resource() != "gen2" {
		t.Fatalf("expected gen2, got %v", h.Resource())
	}
}

func TestManager_ConcurrentBorrowReleaseDuringReplace(t *testing.T) {
	var freedCount int32 // number of distinct generations freed
	var mu sync.Mutex
	free := func(string) {
		mu.Lock()
		freedCount++
		mu.Unlock()
	}

	m := New("gen0", free)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					h := m.Borrow()
					_ = h.Resource()
					h.Release()
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		m.Replace("gen", free)
	}
	close(stop)
	wg.Wait()

	h := m.Borrow()
	h.Release()
}

func TestManager_Close(t *testing.T) {
	var freed bool
	m := New("gen1", func(string) { freed = true })
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !freed {
		t.Fatalf("expected Close to free the sole reference")
	}
}
