package testing

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
)

// RunBackendBenchmarks runs all benchmarks for a backend wrapped in an adapter
func RunBackendBenchmarks(b *testing.B, name string, factory AdapterFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, factory)
		})

		b.Run("SetLargeValue", func(b *testing.B) {
			benchmarkSetLargeValue(b, factory)
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory)
		})

		b.Run("Keys", func(b *testing.B) {
			benchmarkKeys(b, factory)
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkSet(b *testing.B, factory AdapterFactory) {
	a := factory()
	b.Cleanup(func() {
		a.Close()
	})

	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := counter.Add(1)
			key := fmt.Sprintf("test-key-%d", i)
			a.Set(key, fmt.Sprintf("test-value-%d", i)).Await()
		}
	})
}

func benchmarkSetLargeValue(b *testing.B, factory AdapterFactory) {
	a := factory()
	b.Cleanup(func() {
		a.Close()
	})

	value := strings.Repeat("x", 64*1024)
	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := fmt.Sprintf("large-key-%d", counter.Add(1)%100)
			a.Set(key, value).Await()
		}
	})
}

func benchmarkGet(b *testing.B, factory AdapterFactory) {
	a := factory()
	b.Cleanup(func() {
		a.Close()
	})

	// Prepare data
	const numKeys = 1000
	for i := 0; i < numKeys; i++ {
		a.Set(fmt.Sprintf("test-key-%d", i), fmt.Sprintf("test-value-%d", i)).Await()
	}

	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			a.Get(fmt.Sprintf("test-key-%d", counter.Add(1)%numKeys)).Await()
		}
	})
}

func benchmarkKeys(b *testing.B, factory AdapterFactory) {
	a := factory()
	b.Cleanup(func() {
		a.Close()
	})

	for i := 0; i < 100; i++ {
		a.Set(fmt.Sprintf("test-key-%03d", i), "v").Await()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Keys().Await()
	}
}

// 80% reads, 15% writes, 5% removes
func benchmarkMixedUsage(b *testing.B, factory AdapterFactory) {
	a := factory()
	b.Cleanup(func() {
		a.Close()
	})

	const numKeys = 1000
	for i := 0; i < numKeys; i++ {
		a.Set(fmt.Sprintf("test-key-%d", i), fmt.Sprintf("test-value-%d", i)).Await()
	}

	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := counter.Add(1)
			key := fmt.Sprintf("test-key-%d", i%numKeys)
			switch op := i % 20; {
			case op < 16:
				a.Get(key).Await()
			case op < 19:
				a.Set(key, fmt.Sprintf("test-value-%d", i)).Await()
			default:
				a.Remove(key).Await()
			}
		}
	})
}
