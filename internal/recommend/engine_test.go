package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// sliceSource is a DataSource backed by a fixed slice
type sliceSource struct {
	items []Item
	err   error
}

func (s *sliceSource) Load(ctx context.Context) ([]Item, error) {
	return s.items, s.err
}

// mockProvider maps texts to fixed vectors
type mockProvider struct {
	vectors  map[string][]float32
	err      error
	calls    int
	batches  [][]string
	prepared []string
}

func (m *mockProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	m.batches = append(m.batches, append([]string(nil), texts...))
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, ok := m.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", text)
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockProvider) Name() string { return "mock" }

// preparingProvider records the corpus it was prepared with
type preparingProvider struct {
	mockProvider
}

func (p *preparingProvider) Prepare(ctx context.Context, corpus []string) error {
	p.prepared = append([]string(nil), corpus...)
	return nil
}

func abcCatalog() ([]Item, *mockProvider) {
	items := []Item{
		{ID: 1, Name: "A", Summary: "sum-a", Tags: []string{"x"}},
		{ID: 2, Name: "B", Summary: "sum-b", Tags: []string{"y"}},
		{ID: 3, Name: "C", Summary: "sum-c", Tags: []string{"x", "y"}},
	}
	provider := &mockProvider{vectors: map[string][]float32{
		"sum-a": {1, 0},
		"sum-b": {0, 1},
		"sum-c": {0.7, 0.7},
		"query": {1, 0},
	}}
	return items, provider
}

func buildABC(t *testing.T) (*Engine, *mockProvider) {
	t.Helper()
	items, provider := abcCatalog()
	store, err := Build(context.Background(), &sliceSource{items: items}, provider)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return NewEngine(store, provider), provider
}

func TestBuild_PopulatesNormalizedStore(t *testing.T) {
	items, provider := abcCatalog()
	provider.vectors["sum-a"] = []float32{10, 0}

	store, err := Build(context.Background(), &sliceSource{items: items}, provider)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if store.Len() != 3 || store.Dimensions() != 2 {
		t.Fatalf("Len/Dimensions = %d/%d", store.Len(), store.Dimensions())
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want one batched call", provider.calls)
	}
	if fmt.Sprint(provider.batches[0]) != "[sum-a sum-b sum-c]" {
		t.Errorf("batch order = %v", provider.batches[0])
	}

	for _, item := range store.Items() {
		_, vec, ok := store.Lookup(item.Name)
		if !ok || vec == nil {
			t.Fatalf("%s has no embedding", item.Name)
		}
		if !IsNormalized(vec, 1e-5) {
			t.Errorf("%s embedding %v is not unit length", item.Name, vec)
		}
	}

	_, vec, _ := store.Lookup("a")
	if !approx(vec[0], 1) || !approx(vec[1], 0) {
		t.Errorf("vector for A = %v, want [1 0]", vec)
	}
}

func TestBuild_KeepsAlignmentWithDuplicateSummaries(t *testing.T) {
	items := []Item{
		{ID: 1, Name: "one", Summary: "same"},
		{ID: 2, Name: "two", Summary: "same"},
	}
	provider := &positionalProvider{}

	store, err := Build(context.Background(), &sliceSource{items: items}, provider)
	if err != nil {
		t.Fatal(err)
	}
	_, v1, _ := store.Lookup("one")
	_, v2, _ := store.Lookup("two")
	if v1[0] != 1 || v2[1] != 1 {
		t.Errorf("vectors not zipped by position: one=%v two=%v", v1, v2)
	}
}

// positionalProvider returns the i-th basis vector for the i-th text
type positionalProvider struct{}

func (positionalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, len(texts))
		v[i] = 1
		out[i] = v
	}
	return out, nil
}

func (positionalProvider) Name() string { return "positional" }

func TestBuild_Errors(t *testing.T) {
	items, provider := abcCatalog()

	tests := []struct {
		name     string
		src      DataSource
		provider EmbeddingProvider
		want     error
	}{
		{"source failure", &sliceSource{err: errors.New("no such file")}, provider, ErrDataSource},
		{"nil source", nil, provider, ErrDataSource},
		{"duplicate id", &sliceSource{items: []Item{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}}}, provider, ErrDataSource},
		{"duplicate name", &sliceSource{items: []Item{{ID: 1, Name: "Dune"}, {ID: 2, Name: "dune"}}}, provider, ErrDataSource},
		{"empty name", &sliceSource{items: []Item{{ID: 1, Name: " "}}}, provider, ErrDataSource},
		{"provider failure", &sliceSource{items: items}, &mockProvider{err: errors.New("model unavailable")}, ErrEmbeddingProvider},
		{"nil provider", &sliceSource{items: items}, nil, ErrEmbeddingProvider},
		{"zero vector", &sliceSource{items: items[:1]}, &mockProvider{vectors: map[string][]float32{"sum-a": {0, 0}}}, ErrDegenerateVector},
		{"short batch", &sliceSource{items: items}, &shortProvider{}, ErrEmbeddingProvider},
		{"ragged dimensions", &sliceSource{items: items[:2]}, &mockProvider{vectors: map[string][]float32{"sum-a": {1, 0}, "sum-b": {1, 0, 0}}}, ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Build(context.Background(), tt.src, tt.provider)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if store != nil {
				t.Error("a partially built store was returned")
			}
		})
	}
}

// shortProvider drops the last vector of every batch
type shortProvider struct{}

func (shortProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for range texts[1:] {
		out = append(out, []float32{1})
	}
	return out, nil
}

func (shortProvider) Name() string { return "short" }

func TestBuild_EmptyCatalog(t *testing.T) {
	provider := &mockProvider{}
	store, err := Build(context.Background(), &sliceSource{}, provider)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d", store.Len())
	}
	if provider.calls != 0 {
		t.Errorf("provider called for an empty catalog")
	}

	got, err := NewEngine(store, provider).AnswerByItem(context.Background(), "x", "NONE", 3)
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("AnswerByItem on empty store error = %v", err)
	}
	if got != nil {
		t.Errorf("got %v", got)
	}
}

func TestBuild_CallsPreparer(t *testing.T) {
	items, base := abcCatalog()
	provider := &preparingProvider{mockProvider: *base}

	if _, err := Build(context.Background(), &sliceSource{items: items}, provider); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(provider.prepared) != "[sum-a sum-b sum-c]" {
		t.Errorf("prepared corpus = %v", provider.prepared)
	}
}

func TestEngine_AnswerVector(t *testing.T) {
	engine, _ := buildABC(t)

	got, err := engine.AnswerVector(context.Background(), Embedding{1, 0}, "NONE", 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(got), got)
	}
	if got[0].Name != "A" || !approx(got[0].Score, 1) {
		t.Errorf("first = %v, want A/1.0", got[0])
	}
	if got[1].Name != "C" || !approx(got[1].Score, 0.70710677) {
		t.Errorf("second = %v, want C/0.707", got[1])
	}
	if got.Contains("B") {
		t.Error("B should not be in the top 2")
	}

	scaled := Embedding{3, 0}
	again, err := engine.AnswerVector(context.Background(), scaled, "NONE", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 2 || again[0].Name != "A" || !approx(again[0].Score, 1) || !approx(again[1].Score, 0.70710677) {
		t.Errorf("scaled query = %v, want same scores as unit query", again)
	}
	if scaled[0] != 3 {
		t.Errorf("query vector was modified: %v", scaled)
	}
}

func TestEngine_Answer(t *testing.T) {
	engine, provider := buildABC(t)

	got, err := engine.Answer(context.Background(), "query", "NONE", 2)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(got.Names()) != "[A C]" {
		t.Errorf("names = %v, want [A C]", got.Names())
	}
	last := provider.batches[len(provider.batches)-1]
	if len(last) != 1 || last[0] != "query" {
		t.Errorf("query batch = %v, want single-item batch", last)
	}
}

func TestEngine_AnswerProviderError(t *testing.T) {
	engine, provider := buildABC(t)
	provider.err = errors.New("timeout")

	_, err := engine.Answer(context.Background(), "query", "NONE", 2)
	if !errors.Is(err, ErrEmbeddingProvider) {
		t.Errorf("error = %v, want ErrEmbeddingProvider", err)
	}

	_, err = NewEngine(engine.Store(), nil).Answer(context.Background(), "query", "NONE", 2)
	if !errors.Is(err, ErrEmbeddingProvider) {
		t.Errorf("nil provider error = %v, want ErrEmbeddingProvider", err)
	}
}

func TestEngine_AnswerByItemExcludesSelf(t *testing.T) {
	engine, _ := buildABC(t)

	for _, name := range []string{"A", "a", "  a "} {
		got, err := engine.AnswerByItem(context.Background(), name, "NONE", 3)
		if err != nil {
			t.Fatalf("AnswerByItem(%q): %v", name, err)
		}
		if got.Contains("A") {
			t.Errorf("AnswerByItem(%q) recommended itself: %v", name, got)
		}
		if fmt.Sprint(got.Names()) != "[C B]" {
			t.Errorf("AnswerByItem(%q) = %v, want [C B]", name, got.Names())
		}
	}
}

func TestEngine_AnswerByItemNotFound(t *testing.T) {
	engine, _ := buildABC(t)

	_, err := engine.AnswerByItem(context.Background(), "Z", "NONE", 2)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("error = %v, want ErrItemNotFound", err)
	}
	var nf *ItemNotFoundError
	if !errors.As(err, &nf) || nf.Name != "Z" {
		t.Errorf("error does not carry the name: %v", err)
	}
}

func TestEngine_TagFiltering(t *testing.T) {
	engine, _ := buildABC(t)
	ctx := context.Background()

	got, err := engine.AnswerVector(ctx, Embedding{1, 0}, "Y", 5)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(got.Names()) != "[C B]" {
		t.Errorf("tag y = %v, want [C B]", got.Names())
	}

	got, err = engine.AnswerVector(ctx, Embedding{1, 0}, "x,y", 5)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(got.Names()) != "[C]" {
		t.Errorf("tags x,y = %v, want [C]", got.Names())
	}

	got, err = engine.AnswerVector(ctx, Embedding{1, 0}, "nonexistent", 5)
	if err != nil {
		t.Fatalf("no matches should not be an error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil result", got)
	}
}

func TestEngine_KLargerThanCandidates(t *testing.T) {
	engine, _ := buildABC(t)

	got, err := engine.AnswerVector(context.Background(), Embedding{0, 1}, "NONE", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("got %d results, want 3", len(got))
	}
}

func TestEngine_InvalidK(t *testing.T) {
	engine, _ := buildABC(t)
	ctx := context.Background()

	if _, err := engine.AnswerVector(ctx, Embedding{1, 0}, "NONE", 0); !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("AnswerVector k=0 error = %v", err)
	}
	if _, err := engine.Answer(ctx, "query", "NONE", -1); !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("Answer k=-1 error = %v", err)
	}
	if _, err := engine.AnswerByItem(ctx, "A", "NONE", 0); !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("AnswerByItem k=0 error = %v", err)
	}
}

func TestEngine_DimensionMismatchQuery(t *testing.T) {
	engine, _ := buildABC(t)

	_, err := engine.AnswerVector(context.Background(), Embedding{1, 0, 0}, "NONE", 2)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}
}

func TestEngine_MissingEmbedding(t *testing.T) {
	items, _ := abcCatalog()
	store := newStore(items)
	store.vectors[0] = Embedding{1, 0}
	store.vectors[2] = Embedding{0.70710677, 0.70710677}
	// B left absent
	store.dims = 2
	engine := NewEngine(store, nil)
	ctx := context.Background()

	_, err := engine.AnswerVector(ctx, Embedding{1, 0}, "NONE", 3)
	var missing *MissingEmbeddingError
	if !errors.As(err, &missing) || missing.Name != "B" {
		t.Fatalf("error = %v, want missing embedding for B", err)
	}

	// B is filtered out, so its empty slot is never reached
	got, err := engine.AnswerVector(ctx, Embedding{1, 0}, "x", 3)
	if err != nil {
		t.Fatalf("filtered query: %v", err)
	}
	if fmt.Sprint(got.Names()) != "[A C]" {
		t.Errorf("names = %v, want [A C]", got.Names())
	}

	if _, err := engine.AnswerByItem(ctx, "B", "NONE", 3); !errors.Is(err, ErrMissingEmbedding) {
		t.Errorf("query item without embedding error = %v", err)
	}
}

func TestEngine_Cancelled(t *testing.T) {
	engine, _ := buildABC(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.AnswerVector(ctx, Embedding{1, 0}, "NONE", 2); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestEngine_ConcurrentQueries(t *testing.T) {
	engine, _ := buildABC(t)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := []string{"A", "B", "C"}[i%3]
			got, err := engine.AnswerByItem(context.Background(), name, "NONE", 2)
			if err != nil {
				errs <- err
				return
			}
			if got.Contains(name) {
				errs <- fmt.Errorf("%s recommended itself", name)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestStore_TagsAndItems(t *testing.T) {
	engine, _ := buildABC(t)
	store := engine.Store()

	if fmt.Sprint(store.Tags()) != "[x y]" {
		t.Errorf("Tags() = %v", store.Tags())
	}

	items := store.Items()
	items[0].Tags[0] = "mutated"
	if store.Items()[0].Tags[0] != "x" {
		t.Error("Items() exposed internal tag slice")
	}
}
