package recommend

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NoTagFilter is the request string that disables tag filtering
const NoTagFilter = "NONE"

// TagFilter decides whether an item passes a tag request.
// An item passes only if it carries every requested tag.
type TagFilter struct {
	all  bool
	tags []string
}

// ParseTagFilter parses a comma-separated tag request.
// Tokens are trimmed and lower-cased; empty tokens are dropped.
func ParseTagFilter(request string) TagFilter {
	request = strings.TrimSpace(request)
	if request == NoTagFilter {
		return TagFilter{all: true}
	}

	var tags []string
	seen := make(map[string]bool)
	for _, tok := range strings.Split(request, ",") {
		tok = foldTag(tok)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		tags = append(tags, tok)
	}

	return TagFilter{all: len(tags) == 0, tags: tags}
}

// Match reports whether an item with the given tags passes the filter
func (f TagFilter) Match(itemTags []string) bool {
	if f.all {
		return true
	}

	have := make(map[string]bool, len(itemTags))
	for _, t := range itemTags {
		have[foldTag(t)] = true
	}

	for _, want := range f.tags {
		if !have[want] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the filter lets every item through
func (f TagFilter) IsEmpty() bool {
	return f.all
}

// Tags returns the normalized requested tags
func (f TagFilter) Tags() []string {
	out := make([]string, len(f.tags))
	copy(out, f.tags)
	return out
}

func (f TagFilter) String() string {
	if f.all {
		return NoTagFilter
	}
	return strings.Join(f.tags, ",")
}

// foldTag trims and lower-cases a tag or item name.
// Casers hold state, so one is created per call to keep this safe for concurrent queries.
func foldTag(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}
