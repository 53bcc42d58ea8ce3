package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultOllamaURL is used when no Ollama URL is configured
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultOllamaModel is used when no model is configured
	DefaultOllamaModel = "nomic-embed-text"
)

// errNoBatchEndpoint marks servers older than the /api/embed batch endpoint
var errNoBatchEndpoint = errors.New("ollama has no /api/embed endpoint")

// OllamaEmbedder implements Embedder using Ollama's local API.
// Batches go to /api/embed in one request; servers without that endpoint
// fall back to one /api/embeddings request per text.
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client

	mu     sync.Mutex
	dims   int
	legacy bool
}

// NewOllamaEmbedder creates a new Ollama embedder. It checks that the server
// is reachable and that the model has been pulled.
func NewOllamaEmbedder(baseURL, model string) (*OllamaEmbedder, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if model == "" {
		model = DefaultOllamaModel
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(baseURL + "/api/tags")
	if err != nil {
		return nil, fmt.Errorf("ollama not running at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode ollama model list: %w", err)
	}
	pulled := false
	for _, m := range tags.Models {
		if m.Name == model || m.Name == model+":latest" {
			pulled = true
			break
		}
	}
	if !pulled {
		return nil, fmt.Errorf("ollama model %s is not available; run 'ollama pull %s'", model, model)
	}

	// best guess until the first response tells us
	dims := 768
	if model == "mxbai-embed-large" {
		dims = 1024
	}

	return &OllamaEmbedder{
		baseURL: baseURL,
		model:   model,
		client:  client,
		dims:    dims,
	}, nil
}

// Embed generates an embedding for a single text
func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch returns one vector per text, in input order. All vectors must
// share one dimension.
func (o *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	o.mu.Lock()
	legacy := o.legacy
	o.mu.Unlock()

	var (
		out [][]float32
		err error
	)
	if !legacy {
		out, err = o.embedBatch(ctx, texts)
		if errors.Is(err, errNoBatchEndpoint) {
			o.mu.Lock()
			o.legacy = true
			o.mu.Unlock()
			legacy = true
		}
	}
	if legacy {
		out, err = o.embedEach(ctx, texts)
	}
	if err != nil {
		return nil, err
	}

	dims := len(out[0])
	for i, emb := range out {
		if len(emb) == 0 {
			return nil, fmt.Errorf("empty embedding returned for text %d", i)
		}
		if len(emb) != dims {
			return nil, fmt.Errorf("text %d: got %d dimensions, text 0 had %d", i, len(emb), dims)
		}
	}

	o.mu.Lock()
	o.dims = dims
	o.mu.Unlock()
	return out, nil
}

// embedBatch calls /api/embed with every text in one request
func (o *OllamaEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var result struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	status, err := o.post(ctx, "/api/embed", map[string]any{"model": o.model, "input": texts}, &result)
	if status == http.StatusNotFound && strings.Contains(err.Error(), "page not found") {
		return nil, errNoBatchEndpoint
	}
	if err != nil {
		return nil, fmt.Errorf("batch of %d texts: %w", len(texts), err)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}
	return result.Embeddings, nil
}

// embedEach calls the older /api/embeddings endpoint once per text
func (o *OllamaEmbedder) embedEach(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		var result struct {
			Embedding []float32 `json:"embedding"`
		}
		if _, err := o.post(ctx, "/api/embeddings", map[string]any{"model": o.model, "prompt": text}, &result); err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		out[i] = result.Embedding
	}
	return out, nil
}

// post sends body as JSON and decodes a 200 response into result. The status
// code is returned alongside any error.
func (o *OllamaEmbedder) post(ctx context.Context, path string, body any, result any) (int, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		var apiErr struct {
			Error string `json:"error"`
		}
		text := strings.TrimSpace(string(msg))
		if json.Unmarshal(msg, &apiErr) == nil && apiErr.Error != "" {
			text = apiErr.Error
		}
		return resp.StatusCode, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, text)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// Dimensions returns the embedding dimension size, learned from the last response
func (o *OllamaEmbedder) Dimensions() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dims
}

// Name returns the model name
func (o *OllamaEmbedder) Name() string {
	return fmt.Sprintf("ollama/%s", o.model)
}
