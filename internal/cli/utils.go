// Package cli provides output formatting for the confsearch CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
	"github.com/gucchon001/Confluence-firebase-sub010/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	cache := "miss"
	if response.Cache.Hit {
		cache = "hit"
	}
	fmt.Fprintf(w, "\nFound %d results in %dms (cache %s)\n\n",
		len(response.Results), response.QueryTime, cache)
	for i, result := range response.Results {
		writeOneResult(w, i+1, result)
	}
}

func writeOneResult(w io.Writer, rank int, result *models.ScoredResult) {
	b := result.Breakdown
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.4f (Vector: %.4f, Lexical: %.4f, Title: %.4f, Label: %.4f)\n",
		rank, result.CompositeScore,
		b.VectorContribution, b.LexicalContribution, b.TitleContribution, b.LabelContribution)
	fmt.Fprintf(w, "ID: %s\n", result.Candidate.DocumentID)
	if result.Candidate.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", result.Candidate.Title)
	}
	if len(result.Candidate.Labels) > 0 {
		fmt.Fprintf(w, "Labels: %s\n", strings.Join(result.Candidate.Labels, ", "))
	}
	fmt.Fprintf(w, "\n%s\n", utils.Truncate(result.Candidate.Content, 200))
	fmt.Fprintln(w)
}
