package lrucache

import "testing"

// BenchmarkCache_WarmHit measures the steady-state path once every key has
// already been loaded once: repeated Get/Release of a single resident key.
func BenchmarkCache_WarmHit(b *testing.B) {
	var calls int
	c, err := New(Config{Capacity: 64, Concurrency: 4, Load: testLoader(&calls)})
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	it, err := c.Get(1)
	if err != nil {
		b.Fatalf("Get: %v", err)
	}
	c.Release(it)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		it, err := c.Get(1)
		if err != nil {
			b.Fatalf("Get: %v", err)
		}
		c.Release(it)
	}
}

// BenchmarkCache_ColdMiss measures the load path by cycling through more
// distinct keys than the cache can hold, forcing an eviction and reload on
// every iteration.
func BenchmarkCache_ColdMiss(b *testing.B) {
	var calls int
	const capacity = 64
	c, err := New(Config{Capacity: capacity, Concurrency: 4, Load: testLoader(&calls)})
	if err != nil {
		b.Fatalf("New: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		it, err := c.Get(int64(i))
		if err != nil {
			b.Fatalf("Get: %v", err)
		}
		c.Release(it)
	}
}
