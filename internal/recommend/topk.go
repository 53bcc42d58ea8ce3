package recommend

import (
	"container/heap"
	"fmt"
	"sort"
)

// TopK keeps the k highest-scoring (name, score) pairs seen so far.
// When scores tie, the pair that was inserted first is kept.
type TopK struct {
	capacity int
	seq      uint64
	entries  minHeap
}

type topKEntry struct {
	name  string
	score float32
	seq   uint64
}

// NewTopK creates a selector holding at most k entries
func NewTopK(k int) (*TopK, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, k)
	}
	return &TopK{
		capacity: k,
		entries:  make(minHeap, 0, k),
	}, nil
}

// InsertOrSkip offers a pair to the selector and reports whether it was kept.
// At capacity, the pair replaces the current minimum only if its score is strictly greater.
func (t *TopK) InsertOrSkip(name string, score float32) bool {
	if len(t.entries) < t.capacity {
		heap.Push(&t.entries, t.next(name, score))
		return true
	}

	if score <= t.entries[0].score {
		return false
	}

	t.entries[0] = t.next(name, score)
	heap.Fix(&t.entries, 0)
	return true
}

// Recommendations returns the held entries, score descending, ties in insertion order.
// The selector is left unchanged.
func (t *TopK) Recommendations() Recommendations {
	sorted := make([]topKEntry, len(t.entries))
	copy(sorted, t.entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].score != sorted[j].score {
			return sorted[i].score > sorted[j].score
		}
		return sorted[i].seq < sorted[j].seq
	})

	out := make(Recommendations, len(sorted))
	for i, e := range sorted {
		out[i] = Recommendation{Name: e.name, Score: e.score}
	}
	return out
}

// MinScore returns the lowest held score, or false when empty
func (t *TopK) MinScore() (float32, bool) {
	if len(t.entries) == 0 {
		return 0, false
	}
	return t.entries[0].score, true
}

// Len returns the number of held entries
func (t *TopK) Len() int { return len(t.entries) }

// Cap returns the selector capacity
func (t *TopK) Cap() int { return t.capacity }

func (t *TopK) next(name string, score float32) topKEntry {
	e := topKEntry{name: name, score: score, seq: t.seq}
	t.seq++
	return e
}

// minHeap orders entries so the root is evicted first:
// lowest score, and among equal scores the latest insertion.
type minHeap []topKEntry

func (h minHeap) Len() int { return len(h) }

func (h minHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].seq > h[j].seq
}

func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) { *h = append(*h, x.(topKEntry)) }

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
