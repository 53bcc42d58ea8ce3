// Package catalog loads recommendable items from files and databases.
//
// Every source yields the same record shape: an integer id, a name, a
// summary and a list of tags. Sources reject records with missing fields,
// wrong types, unknown fields or duplicate ids.
package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iishyfishyy/recoforge/internal/recommend"
)

// Source loads the full item list
type Source interface {
	Load(ctx context.Context) ([]recommend.Item, error)
}

// Open returns the source matching the file extension of path.
// An empty path selects the embedded sample catalog.
func Open(path string) (Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Sample(), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return &JSONFile{Path: path}, nil
	case ".yaml", ".yml":
		return &YAMLFile{Path: path}, nil
	case ".db", ".sqlite", ".sqlite3":
		return &SQLite{Path: path}, nil
	default:
		return nil, fmt.Errorf("unsupported catalog format %q (use .json, .yaml or .db)", filepath.Ext(path))
	}
}

// record is the wire shape shared by the JSON and YAML sources.
// Pointer fields distinguish a missing field from a zero value.
type record struct {
	ID      *int      `json:"id" yaml:"id"`
	Name    *string   `json:"name" yaml:"name"`
	Summary *string   `json:"summary" yaml:"summary"`
	Tags    *[]string `json:"tags" yaml:"tags"`
}

func (r record) item(index int) (recommend.Item, error) {
	var missing []string
	if r.ID == nil {
		missing = append(missing, "id")
	}
	if r.Name == nil {
		missing = append(missing, "name")
	}
	if r.Summary == nil {
		missing = append(missing, "summary")
	}
	if r.Tags == nil {
		missing = append(missing, "tags")
	}
	if len(missing) > 0 {
		return recommend.Item{}, fmt.Errorf("record %d: missing required field(s): %s", index, strings.Join(missing, ", "))
	}

	return recommend.Item{
		ID:      *r.ID,
		Name:    *r.Name,
		Summary: *r.Summary,
		Tags:    *r.Tags,
	}, nil
}

func toItems(records []record) ([]recommend.Item, error) {
	items := make([]recommend.Item, 0, len(records))
	for i, r := range records {
		item, err := r.item(i)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := recommend.ValidateItems(items); err != nil {
		return nil, err
	}
	return items, nil
}
