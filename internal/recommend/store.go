package recommend

import (
	"fmt"
	"sort"
	"strings"
)

// Item is a single recommendable catalog entry
type Item struct {
	ID      int      `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Summary string   `json:"summary" yaml:"summary"`
	Tags    []string `json:"tags" yaml:"tags"`
}

// Store maps every catalog item to its normalized embedding.
// It is produced by Build and never modified afterwards, so it is safe for concurrent readers.
type Store struct {
	items   []Item
	vectors []Embedding // nil entry means absent
	byName  map[string]int
	dims    int
}

// newStore allocates a store with every embedding slot absent
func newStore(items []Item) *Store {
	s := &Store{
		items:   make([]Item, len(items)),
		vectors: make([]Embedding, len(items)),
		byName:  make(map[string]int, len(items)),
	}
	for i, item := range items {
		item.Tags = append([]string(nil), item.Tags...)
		s.items[i] = item
		s.byName[foldTag(item.Name)] = i
	}
	return s
}

// Len returns the number of items
func (s *Store) Len() int { return len(s.items) }

// Dimensions returns the embedding dimension, or 0 for an empty store
func (s *Store) Dimensions() int { return s.dims }

// Items returns a copy of the items in load order
func (s *Store) Items() []Item {
	out := make([]Item, len(s.items))
	for i, item := range s.items {
		item.Tags = append([]string(nil), item.Tags...)
		out[i] = item
	}
	return out
}

// Lookup finds an item by name, ignoring case and surrounding whitespace
func (s *Store) Lookup(name string) (Item, Embedding, bool) {
	i, ok := s.byName[foldTag(name)]
	if !ok {
		return Item{}, nil, false
	}
	return s.items[i], s.vectors[i], true
}

// Tags returns the distinct lower-cased tags across the catalog, sorted
func (s *Store) Tags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, item := range s.items {
		for _, t := range item.Tags {
			t = foldTag(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}

// ValidateItems checks the catalog invariants: non-empty unique names
// (case-insensitive) and unique ids.
func ValidateItems(items []Item) error {
	ids := make(map[int]int, len(items))
	names := make(map[string]int, len(items))

	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("record %d (id %d): name is empty", i, item.ID)
		}
		if prev, ok := ids[item.ID]; ok {
			return fmt.Errorf("record %d: duplicate id %d (first seen at record %d)", i, item.ID, prev)
		}
		ids[item.ID] = i

		key := foldTag(item.Name)
		if prev, ok := names[key]; ok {
			return fmt.Errorf("record %d: duplicate name %q (first seen at record %d)", i, item.Name, prev)
		}
		names[key] = i
	}

	return nil
}
