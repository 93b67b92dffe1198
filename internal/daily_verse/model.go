package dailyverse

import (
	"github.com/taiwoajasa245/verse-courier/internal/corpus"
	"github.com/taiwoajasa245/verse-courier/internal/search"
)

type Verse struct {
	Reference string `json:"reference"`
	Book      string `json:"book"`
	Chapter   int    `json:"chapter"`
	Verse     int    `json:"verse"`
	Text      string `json:"text"`
}

type SearchResult struct {
	Verse
	Score int `json:"score"`
}

type TopicSummary struct {
	Label      string   `json:"label"`
	Passages   int      `json:"passages"`
	Unresolved int      `json:"unresolved,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

type AskRequest struct {
	Text string `json:"text"`
}

type AskResult struct {
	Topic     string  `json:"topic"`
	Detected  bool    `json:"detected"`
	Verses    []Verse `json:"verses"`
	Message   string  `json:"message,omitempty"`
	Delivered bool    `json:"delivered"`
}

type SlotsRequest struct {
	Morning   *string `json:"morning,omitempty"`
	Midday    *string `json:"midday,omitempty"`
	Afternoon *string `json:"afternoon,omitempty"`
	Evening   *string `json:"evening,omitempty"`
}

func toVerse(p corpus.Passage) Verse {
	return Verse{
		Reference: p.Ref.String(),
		Book:      p.Book,
		Chapter:   p.Chapter,
		Verse:     p.Verse,
		Text:      p.Text,
	}
}

func toVerses(passages []corpus.Passage) []Verse {
	out := make([]Verse, 0, len(passages))
	for _, p := range passages {
		out = append(out, toVerse(p))
	}
	return out
}

func toSearchResults(results []search.Result) []SearchResult {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResult{Verse: toVerse(r.Passage), Score: r.Score})
	}
	return out
}
