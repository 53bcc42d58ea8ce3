package embeddings

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNotPrepared is returned when a TF-IDF embedder is used before Prepare
var ErrNotPrepared = errors.New("tfidf embedder not prepared")

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// TFIDFEmbedder is an offline embedder. Prepare builds the vocabulary and
// inverse document frequencies from a corpus; every later text is embedded
// as an L2-normalized TF-IDF vector over that vocabulary.
//
// The last dimension is reserved for text with no known term (empty text,
// only stopwords, unseen words). Such text embeds to the unit vector on that
// dimension, so every vector is non-zero.
type TFIDFEmbedder struct {
	mu         sync.RWMutex
	vocabulary map[string]int
	idf        []float64
	stopwords  map[string]struct{}
}

// NewTFIDFEmbedder returns an unprepared embedder
func NewTFIDFEmbedder() *TFIDFEmbedder {
	return &TFIDFEmbedder{stopwords: defaultStopwords()}
}

// Prepare builds the vocabulary from corpus, replacing any previous one
func (e *TFIDFEmbedder) Prepare(ctx context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}

	df := make(map[string]int)
	for _, text := range corpus {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		vocabulary[term] = i
		// smoothed
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	e.mu.Lock()
	e.vocabulary = vocabulary
	e.idf = idf
	e.mu.Unlock()
	return nil
}

// Embed returns the TF-IDF vector of text
func (e *TFIDFEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.embed(text)
}

// EmbedBatch embeds each text against the same vocabulary
func (e *TFIDFEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.embed(text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *TFIDFEmbedder) embed(text string) ([]float32, error) {
	if e.vocabulary == nil {
		return nil, ErrNotPrepared
	}

	tf := make(map[int]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}

	vec := make([]float32, len(e.idf)+1)
	if total == 0 {
		vec[len(e.idf)] = 1
		return vec, nil
	}

	weights := make(map[int]float64, len(tf))
	var sum float64
	for idx, count := range tf {
		w := float64(count) / float64(total) * e.idf[idx]
		weights[idx] = w
		sum += w * w
	}
	norm := math.Sqrt(sum)
	for idx, w := range weights {
		vec[idx] = float32(w / norm)
	}
	return vec, nil
}

// Dimensions returns the vocabulary size plus the unknown-text dimension, 0 before Prepare
func (e *TFIDFEmbedder) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.vocabulary == nil {
		return 0
	}
	return len(e.idf) + 1
}

// Name returns "tfidf"
func (e *TFIDFEmbedder) Name() string { return ProviderTFIDF }

func (e *TFIDFEmbedder) tokenize(text string) []string {
	lower := cases.Lower(language.Und).String(text)
	raw := tokenPattern.FindAllString(lower, -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at",
		"by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such",
		"into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off",
		"own", "same", "too", "very", "can", "will", "just", "should", "now", "who", "his", "her", "their",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
