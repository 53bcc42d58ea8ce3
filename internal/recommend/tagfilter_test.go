package recommend

import "testing"

func TestTagFilter(t *testing.T) {
	tags := []string{"action", "rpg"}

	tests := []struct {
		request string
		tags    []string
		want    bool
	}{
		{"Action", tags, true},
		{"action,strategy", tags, false},
		{"NONE", tags, true},
		{"NONE", nil, true},
		{" rpg , ACTION ", tags, true},
		{"action", []string{"Action", "RPG"}, true},
		{"horror", nil, false},
		{"action,", tags, true},
		{",,", tags, true},
		{"", nil, true},
		{"none", tags, false},
		{"Ümlaut", []string{"ümlaut"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			if got := ParseTagFilter(tt.request).Match(tt.tags); got != tt.want {
				t.Errorf("ParseTagFilter(%q).Match(%v) = %v, want %v", tt.request, tt.tags, got, tt.want)
			}
		})
	}
}

func TestTagFilter_String(t *testing.T) {
	if got := ParseTagFilter("NONE").String(); got != "NONE" {
		t.Errorf("String() = %q", got)
	}
	if got := ParseTagFilter(" Drama, crime ,drama").String(); got != "drama,crime" {
		t.Errorf("String() = %q", got)
	}
	f := ParseTagFilter("a,b")
	if f.IsEmpty() {
		t.Error("IsEmpty() = true for a real request")
	}
	if len(f.Tags()) != 2 {
		t.Errorf("Tags() = %v", f.Tags())
	}
}
