package recommend

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
)

func TestNewTopK_InvalidCapacity(t *testing.T) {
	for _, k := range []int{0, -1, -100} {
		if _, err := NewTopK(k); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("NewTopK(%d) error = %v, want ErrInvalidCapacity", k, err)
		}
	}
}

func TestTopK_KeepsHighest(t *testing.T) {
	top, err := NewTopK(3)
	if err != nil {
		t.Fatal(err)
	}

	inputs := []struct {
		name  string
		score float32
	}{
		{"a", 0.1}, {"b", 0.9}, {"c", 0.5}, {"d", 0.7}, {"e", 0.05}, {"f", 0.95},
	}
	for _, in := range inputs {
		top.InsertOrSkip(in.name, in.score)
	}

	got := top.Recommendations()
	want := []string{"f", "b", "d"}
	if fmt.Sprint(got.Names()) != fmt.Sprint(want) {
		t.Fatalf("names = %v, want %v", got.Names(), want)
	}
	if top.Len() != 3 || top.Cap() != 3 {
		t.Errorf("Len/Cap = %d/%d, want 3/3", top.Len(), top.Cap())
	}
}

func TestTopK_SkipIsSideEffectFree(t *testing.T) {
	top, _ := NewTopK(2)
	top.InsertOrSkip("a", 0.8)
	top.InsertOrSkip("b", 0.6)

	before := top.Recommendations()
	if top.InsertOrSkip("c", 0.6) {
		t.Error("equal score should be skipped at capacity")
	}
	if top.InsertOrSkip("d", 0.1) {
		t.Error("lower score should be skipped at capacity")
	}
	after := top.Recommendations()

	if fmt.Sprint(before) != fmt.Sprint(after) {
		t.Errorf("skip changed state: %v -> %v", before, after)
	}
}

func TestTopK_TiesPreferFirstSeen(t *testing.T) {
	top, _ := NewTopK(2)
	top.InsertOrSkip("first", 0.5)
	top.InsertOrSkip("second", 0.5)
	top.InsertOrSkip("third", 0.5)

	got := top.Recommendations().Names()
	want := []string{"first", "second"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("names = %v, want %v", got, want)
	}

	// a higher score evicts the most recent of the tied entries
	top.InsertOrSkip("fourth", 0.6)
	got = top.Recommendations().Names()
	want = []string{"fourth", "first"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("after eviction names = %v, want %v", got, want)
	}
}

func TestTopK_DuplicatesNotDeduplicated(t *testing.T) {
	top, _ := NewTopK(2)
	top.InsertOrSkip("same", 0.4)
	top.InsertOrSkip("same", 0.4)

	got := top.Recommendations()
	if len(got) != 2 || got[0].Name != "same" || got[1].Name != "same" {
		t.Errorf("got %v, want both duplicates", got)
	}
}

func TestTopK_RecommendationsIsReadOnly(t *testing.T) {
	top, _ := NewTopK(3)
	top.InsertOrSkip("a", 0.3)
	top.InsertOrSkip("b", 0.2)

	first := top.Recommendations()
	first[0].Name = "mutated"
	second := top.Recommendations()

	if second[0].Name != "a" {
		t.Errorf("mutating result leaked into selector: %v", second)
	}
	if top.Len() != 2 {
		t.Errorf("Len = %d after extraction, want 2", top.Len())
	}
}

func TestTopK_MatchesStableSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		k := 1 + rng.Intn(8)
		n := rng.Intn(40)

		type pair struct {
			name  string
			score float32
			seq   int
		}
		var all []pair
		top, _ := NewTopK(k)

		for i := 0; i < n; i++ {
			// coarse scores force plenty of ties
			p := pair{name: fmt.Sprintf("n%d", i), score: float32(rng.Intn(10)) / 10, seq: i}
			all = append(all, p)

			minBefore, full := top.MinScore()
			full = full && top.Len() == k
			kept := top.InsertOrSkip(p.name, p.score)
			if !kept && full && p.score > minBefore {
				t.Fatalf("trial %d: skipped %v although it beat min %v", trial, p.score, minBefore)
			}
		}

		sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })
		if len(all) > k {
			all = all[:k]
		}

		got := top.Recommendations()
		if len(got) != len(all) {
			t.Fatalf("trial %d: len = %d, want %d", trial, len(got), len(all))
		}
		for i := range all {
			if got[i].Name != all[i].name || got[i].Score != all[i].score {
				t.Fatalf("trial %d: position %d = %v, want %v", trial, i, got[i], all[i])
			}
			if i > 0 && got[i].Score > got[i-1].Score {
				t.Fatalf("trial %d: not sorted descending: %v", trial, got)
			}
		}
	}
}
