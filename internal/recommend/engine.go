package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/iishyfishyy/recoforge/internal/logger"
)

// Engine answers recommendation queries against a built store.
// It holds no mutable state; one engine may serve concurrent queries.
type Engine struct {
	store    *Store
	provider EmbeddingProvider
	log      *logger.Logger
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithEngineLogger sets the logger used by queries
func WithEngineLogger(l *logger.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates a query engine. provider is only needed for free-text queries.
func NewEngine(store *Store, provider EmbeddingProvider, opts ...EngineOption) *Engine {
	if store == nil {
		store = newStore(nil)
	}
	e := &Engine{
		store:    store,
		provider: provider,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the store the engine queries
func (e *Engine) Store() *Store { return e.store }

// Answer recommends the k items most similar to a free-text description
func (e *Engine) Answer(ctx context.Context, text, tagsRequest string, k int) (Recommendations, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, k)
	}
	if e.store.Len() == 0 {
		return Recommendations{}, nil
	}

	query, err := e.embedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	e.log.Debug("Engine: describe query %q (tags=%q, k=%d)", text, tagsRequest, k)
	return e.reduce(ctx, query, "", tagsRequest, k)
}

// AnswerByItem recommends the k items most similar to an existing item,
// never including that item itself.
func (e *Engine) AnswerByItem(ctx context.Context, itemName, tagsRequest string, k int) (Recommendations, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, k)
	}

	item, vec, ok := e.store.Lookup(itemName)
	if !ok {
		return nil, &ItemNotFoundError{Name: itemName}
	}
	if vec == nil {
		return nil, &MissingEmbeddingError{Name: item.Name}
	}

	e.log.Debug("Engine: item query %q (tags=%q, k=%d)", item.Name, tagsRequest, k)
	return e.reduce(ctx, vec, item.Name, tagsRequest, k)
}

// AnswerVector recommends the k items most similar to a caller-supplied vector
func (e *Engine) AnswerVector(ctx context.Context, vec Embedding, tagsRequest string, k int) (Recommendations, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, k)
	}

	if e.store.Len() == 0 {
		return Recommendations{}, nil
	}

	query := vec
	if !IsNormalized(vec, 1e-6) {
		var err error
		if query, err = Normalize(vec); err != nil {
			return nil, err
		}
	}
	return e.reduce(ctx, query, "", tagsRequest, k)
}

func (e *Engine) embedQuery(ctx context.Context, text string) (Embedding, error) {
	if e.provider == nil {
		return nil, &EmbeddingProviderError{Err: errors.New("no embedding provider configured")}
	}

	vectors, err := e.provider.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, &EmbeddingProviderError{Provider: e.provider.Name(), Err: err}
	}
	if len(vectors) != 1 {
		return nil, &EmbeddingProviderError{
			Provider: e.provider.Name(),
			Err:      fmt.Errorf("got %d vectors for 1 query", len(vectors)),
		}
	}

	query, err := Normalize(vectors[0])
	if err != nil {
		return nil, &EmbeddingProviderError{Provider: e.provider.Name(), Err: fmt.Errorf("query vector: %w", err)}
	}
	return query, nil
}

// reduce scores every eligible item against query and keeps the top k
func (e *Engine) reduce(ctx context.Context, query Embedding, exclude, tagsRequest string, k int) (Recommendations, error) {
	top, err := NewTopK(k)
	if err != nil {
		return nil, err
	}

	filter := ParseTagFilter(tagsRequest)
	excluded := ""
	if exclude != "" {
		excluded = foldTag(exclude)
	}

	scored, filtered := 0, 0
	for i, item := range e.store.items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if excluded != "" && foldTag(item.Name) == excluded {
			continue
		}
		if !filter.Match(item.Tags) {
			filtered++
			continue
		}

		vec := e.store.vectors[i]
		if vec == nil {
			return nil, &MissingEmbeddingError{Name: item.Name}
		}

		score, err := Cosine(query, vec)
		if err != nil {
			return nil, fmt.Errorf("failed to score %q: %w", item.Name, err)
		}
		top.InsertOrSkip(item.Name, score)
		scored++
	}

	e.log.Debug("Engine: scored %d items, filtered %d (filter=%s)", scored, filtered, filter)
	if cutoff, ok := top.MinScore(); ok {
		e.log.Debug("Engine: lowest kept score %.4f", cutoff)
	}
	return top.Recommendations(), nil
}
