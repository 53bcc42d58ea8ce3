package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrDataSource indicates the catalog could not be read or validated.
	ErrDataSource = errors.New("data source error")

	// ErrEmbeddingProvider indicates the embedding provider failed to produce vectors.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrItemNotFound indicates a query-by-item referenced an unknown name.
	ErrItemNotFound = errors.New("item not found")

	// ErrMissingEmbedding indicates a built store holds an item without an embedding.
	ErrMissingEmbedding = errors.New("missing embedding")

	// ErrDimensionMismatch indicates two vectors have different lengths.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrDegenerateVector indicates a vector with zero norm.
	ErrDegenerateVector = errors.New("degenerate vector")

	// ErrInvalidCapacity indicates a top-K size below 1.
	ErrInvalidCapacity = errors.New("invalid capacity")
)

// DataSourceError wraps a failure to load or validate the catalog
type DataSourceError struct {
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("failed to load catalog: %v", e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

func (e *DataSourceError) Is(target error) bool { return target == ErrDataSource }

// EmbeddingProviderError wraps a failure of the embedding provider
type EmbeddingProviderError struct {
	Provider string
	Err      error
}

func (e *EmbeddingProviderError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("failed to embed: %v", e.Err)
	}
	return fmt.Sprintf("failed to embed with %s: %v", e.Provider, e.Err)
}

func (e *EmbeddingProviderError) Unwrap() error { return e.Err }

func (e *EmbeddingProviderError) Is(target error) bool { return target == ErrEmbeddingProvider }

// ItemNotFoundError reports the name that could not be resolved
type ItemNotFoundError struct {
	Name string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item not found: %q", e.Name)
}

func (e *ItemNotFoundError) Is(target error) bool { return target == ErrItemNotFound }

// MissingEmbeddingError reports the item whose embedding slot was empty
type MissingEmbeddingError struct {
	Name string
}

func (e *MissingEmbeddingError) Error() string {
	return fmt.Sprintf("missing embedding for item %q", e.Name)
}

func (e *MissingEmbeddingError) Is(target error) bool { return target == ErrMissingEmbedding }
