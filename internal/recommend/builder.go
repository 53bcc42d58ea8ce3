package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/iishyfishyy/recoforge/internal/logger"
)

// DataSource supplies the raw catalog
type DataSource interface {
	Load(ctx context.Context) ([]Item, error)
}

// EmbeddingProvider turns a batch of texts into one vector per text, in order
type EmbeddingProvider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// Preparer is implemented by providers that must see the corpus before embedding
type Preparer interface {
	Prepare(ctx context.Context, corpus []string) error
}

type buildOptions struct {
	log *logger.Logger
}

// BuildOption configures Build
type BuildOption func(*buildOptions)

// WithBuildLogger sets the logger used during Build
func WithBuildLogger(l *logger.Logger) BuildOption {
	return func(o *buildOptions) { o.log = l }
}

// Build loads the catalog from src, embeds every summary in one batch and returns a
// fully populated store. On any failure it returns nil and the error.
func Build(ctx context.Context, src DataSource, provider EmbeddingProvider, opts ...BuildOption) (*Store, error) {
	o := buildOptions{log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	if src == nil {
		return nil, &DataSourceError{Err: errors.New("no data source configured")}
	}

	items, err := src.Load(ctx)
	if err != nil {
		return nil, &DataSourceError{Err: err}
	}
	if err := ValidateItems(items); err != nil {
		return nil, &DataSourceError{Err: err}
	}
	o.log.Debug("Builder: loaded %d items", len(items))

	store := newStore(items)
	if len(items) == 0 {
		return store, nil
	}

	if provider == nil {
		return nil, &EmbeddingProviderError{Err: errors.New("no embedding provider configured")}
	}

	// store.items order is the batch order; results are zipped back by position
	summaries := make([]string, len(store.items))
	for i, item := range store.items {
		summaries[i] = item.Summary
	}

	if p, ok := provider.(Preparer); ok {
		o.log.Debug("Builder: preparing %s on %d summaries", provider.Name(), len(summaries))
		if err := p.Prepare(ctx, summaries); err != nil {
			return nil, &EmbeddingProviderError{Provider: provider.Name(), Err: err}
		}
	}

	o.log.Debug("Builder: embedding batch of %d summaries with %s", len(summaries), provider.Name())
	vectors, err := provider.EmbedBatch(ctx, summaries)
	if err != nil {
		return nil, &EmbeddingProviderError{Provider: provider.Name(), Err: err}
	}
	if len(vectors) != len(summaries) {
		return nil, &EmbeddingProviderError{
			Provider: provider.Name(),
			Err:      fmt.Errorf("got %d vectors for %d summaries", len(vectors), len(summaries)),
		}
	}

	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dims {
			return nil, &EmbeddingProviderError{
				Provider: provider.Name(),
				Err:      fmt.Errorf("%w: vector %d has %d dimensions, expected %d", ErrDimensionMismatch, i, len(v), dims),
			}
		}
		unit, err := Normalize(v)
		if err != nil {
			return nil, &EmbeddingProviderError{
				Provider: provider.Name(),
				Err:      fmt.Errorf("vector for %q: %w", store.items[i].Name, err),
			}
		}
		store.vectors[i] = unit
	}
	store.dims = dims

	o.log.Debug("Builder: stored %d embeddings (%d dimensions)", len(vectors), dims)
	return store, nil
}
