package eviction

import "testing"

func benchmarkInsertEvict(b *testing.B, typ Type) {
	p, _ := New[int](typ)
	const capacity = 1024

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.OnInsert(i)
		if i%3 == 0 {
			p.OnHit(i / 2)
		}
		if p.Len() > capacity {
			p.Evict()
		}
	}
}

func BenchmarkFIFO_InsertEvict(b *testing.B) { benchmarkInsertEvict(b, FIFO) }
func BenchmarkLRU_InsertEvict(b *testing.B)  { benchmarkInsertEvict(b, LRU) }
func BenchmarkLFU_InsertEvict(b *testing.B)  { benchmarkInsertEvict(b, LFU) }
