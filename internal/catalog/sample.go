package catalog

import (
	"bytes"
	"context"
	_ "embed"

	"github.com/iishyfishyy/recoforge/internal/recommend"
)

//go:embed samples/movies.json
var sampleMovies []byte

// SampleName describes the embedded catalog in prompts and logs
const SampleName = "sample movies"

type sampleSource struct{}

// Sample returns a small embedded movie catalog
func Sample() Source {
	return sampleSource{}
}

func (sampleSource) Load(ctx context.Context) ([]recommend.Item, error) {
	return decodeJSON(bytes.NewReader(sampleMovies))
}
