package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/iishyfishyy/recoforge/internal/recommend"
)

// NoResults is printed for an empty recommendation list
const NoResults = "No recommendations found"

// PrintRecommendations writes one "NN% Name" line per result, best first
func PrintRecommendations(w io.Writer, recs recommend.Recommendations) {
	if len(recs) == 0 {
		color.New(color.FgYellow).Fprintln(w, NoResults)
		return
	}

	pct := color.New(color.FgGreen, color.Bold)
	for _, rec := range recs {
		pct.Fprintf(w, "%3d%%", rec.Percent())
		fmt.Fprintf(w, " %s\n", rec.Name)
	}
}

// RenderRecommendations returns the uncolored text form used for the clipboard
func RenderRecommendations(recs recommend.Recommendations) string {
	if len(recs) == 0 {
		return NoResults
	}

	var b strings.Builder
	for _, rec := range recs {
		fmt.Fprintf(&b, "%d%% %s\n", rec.Percent(), rec.Name)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// WriteJSON writes the results as an indented JSON array
func WriteJSON(w io.Writer, recs recommend.Recommendations) error {
	if recs == nil {
		recs = recommend.Recommendations{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// PrintItems lists catalog items with their tags
func PrintItems(w io.Writer, items []recommend.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items match")
		return
	}

	name := color.New(color.Bold)
	tags := color.New(color.FgHiBlack)
	for _, item := range items {
		name.Fprint(w, item.Name)
		if len(item.Tags) > 0 {
			tags.Fprintf(w, " [%s]", strings.Join(item.Tags, ", "))
		}
		fmt.Fprintln(w)
	}
}
