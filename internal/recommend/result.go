package recommend

import "math"

// Recommendation is a ranked item name with its similarity score
type Recommendation struct {
	Name  string  `json:"name"`
	Score float32 `json:"score"`
}

// Percent returns the score as a rounded percentage
func (r Recommendation) Percent() int {
	return int(math.Round(float64(r.Score) * 100))
}

// Recommendations is an ordered result list, best first
type Recommendations []Recommendation

// Names returns just the item names, in rank order
func (r Recommendations) Names() []string {
	names := make([]string, len(r))
	for i, rec := range r {
		names[i] = rec.Name
	}
	return names
}

// Contains reports whether name appears in the results (exact match)
func (r Recommendations) Contains(name string) bool {
	for _, rec := range r {
		if rec.Name == name {
			return true
		}
	}
	return false
}
