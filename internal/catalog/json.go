package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/iishyfishyy/recoforge/internal/recommend"
)

// JSONFile reads a catalog stored as a JSON array of records
type JSONFile struct {
	Path string
}

// Load reads and validates the file
func (f *JSONFile) Load(ctx context.Context) ([]recommend.Item, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	items, err := decodeJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return items, nil
}

func decodeJSON(r io.Reader) ([]recommend.Item, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var records []record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON catalog: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("failed to parse JSON catalog: unexpected data after array")
	}

	return toItems(records)
}
