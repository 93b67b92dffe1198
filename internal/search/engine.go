package search

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/taiwoajasa245/verse-courier/internal/corpus"
)

// Result is a ranked passage.
type Result struct {
	corpus.Passage
	Score int `json:"score"`
}

// Engine ranks corpus passages by how many distinct query tokens they
// contain. It only reads the index and is safe for concurrent use.
type Engine struct {
	entries []entry
	cache   *cache.Cache
}

type entry struct {
	passage corpus.Passage
	lower   string
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache memoizes results for ttl. Results for a given query never
// change while the index is fixed, so caching does not affect ranking.
func WithCache(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.cache = cache.New(ttl, 2*ttl)
		}
	}
}

// NewEngine prepares lowercased passage text in corpus order.
func NewEngine(ix *corpus.Index, opts ...Option) *Engine {
	e := &Engine{entries: make([]entry, 0, ix.Len())}
	for _, p := range ix.All() {
		e.entries = append(e.entries, entry{passage: p, lower: strings.ToLower(p.Text)})
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns at most limit passages ordered by descending score, ties
// broken by corpus order. A query with no usable tokens yields no results.
func (e *Engine) Search(query string, limit int) []Result {
	if limit <= 0 {
		return nil
	}
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	key := strings.Join(tokens, " ") + "|" + strconv.Itoa(limit)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			return slices.Clone(cached.([]Result))
		}
	}

	var results []Result
	for _, en := range e.entries {
		score := 0
		for _, tok := range tokens {
			if strings.Contains(en.lower, tok) {
				score++
			}
		}
		if score > 0 {
			results = append(results, Result{Passage: en.passage, Score: score})
		}
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		return b.Score - a.Score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	if e.cache != nil {
		e.cache.Set(key, slices.Clone(results), cache.DefaultExpiration)
	}
	return results
}

// Passages strips scores from results.
func Passages(results []Result) []corpus.Passage {
	out := make([]corpus.Passage, len(results))
	for i, r := range results {
		out[i] = r.Passage
	}
	return out
}
