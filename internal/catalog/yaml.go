package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iishyfishyy/recoforge/internal/recommend"
)

// YAMLFile reads a catalog stored as a YAML sequence of records
type YAMLFile struct {
	Path string
}

// Load reads and validates the file
func (f *YAMLFile) Load(ctx context.Context) ([]recommend.Item, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var records []record
	if err := dec.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return []recommend.Item{}, nil // empty document
		}
		return nil, fmt.Errorf("%s: failed to parse YAML catalog: %w", f.Path, err)
	}

	items, err := toItems(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return items, nil
}
