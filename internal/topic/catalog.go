package topic

import (
	"strings"

	"github.com/taiwoajasa245/verse-courier/internal/corpus"
)

// Keyword maps a lowercase substring to the topic it selects.
type Keyword struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Topic   string `yaml:"topic" json:"topic"`
}

// Topic is one curated label with its ordered passage refs.
type Topic struct {
	Label string
	Refs  []corpus.Ref
}

// Catalog holds curated topics and the ordered keyword detection list. It is
// immutable after NewCatalog.
type Catalog struct {
	order    []string
	refs     map[string][]corpus.Ref
	keywords []Keyword
}

// NewCatalog builds a catalog. Duplicate labels merge into the first
// position with the later ref list.
func NewCatalog(topics []Topic, keywords []Keyword) *Catalog {
	c := &Catalog{refs: make(map[string][]corpus.Ref, len(topics))}
	for _, t := range topics {
		if t.Label == "" {
			continue
		}
		if _, ok := c.refs[t.Label]; !ok {
			c.order = append(c.order, t.Label)
		}
		c.refs[t.Label] = append([]corpus.Ref(nil), t.Refs...)
	}
	for _, k := range keywords {
		kw := strings.ToLower(strings.TrimSpace(k.Keyword))
		if kw == "" || k.Topic == "" {
			continue
		}
		c.keywords = append(c.keywords, Keyword{Keyword: kw, Topic: k.Topic})
	}
	return c
}

// Topics returns the labels in configuration order.
func (c *Catalog) Topics() []string {
	return append([]string(nil), c.order...)
}

// Has reports whether label is a curated topic.
func (c *Catalog) Has(label string) bool {
	_, ok := c.refs[label]
	return ok
}

// Refs returns the ordered refs for label, or nil when the label is unknown.
func (c *Catalog) Refs(label string) []corpus.Ref {
	refs, ok := c.refs[label]
	if !ok {
		return nil
	}
	return append([]corpus.Ref(nil), refs...)
}

// Keywords returns the detection list in precedence order.
func (c *Catalog) Keywords() []Keyword {
	return append([]Keyword(nil), c.keywords...)
}

// Detect returns the topic of the first keyword contained in text.
// Keyword order decides precedence when several match.
func (c *Catalog) Detect(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, k := range c.keywords {
		if strings.Contains(lower, k.Keyword) {
			return k.Topic, true
		}
	}
	return "", false
}

// Resolve returns the passages of label that exist in the index, in catalog
// order. Refs missing from the index are skipped and a passage listed more
// than once appears only at its first position.
func (c *Catalog) Resolve(label string, ix *corpus.Index) []corpus.Passage {
	refs := c.refs[label]
	out := make([]corpus.Passage, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		p, ok := ix.Resolve(ref)
		if !ok {
			continue
		}
		if _, dup := seen[p.Key()]; dup {
			continue
		}
		seen[p.Key()] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Unresolved lists, per label, the refs that do not resolve against ix.
func (c *Catalog) Unresolved(ix *corpus.Index) map[string][]corpus.Ref {
	missing := make(map[string][]corpus.Ref)
	for _, label := range c.order {
		for _, ref := range c.refs[label] {
			if !ix.Verify(ref.Book, ref.Chapter, ref.Verse) {
				missing[label] = append(missing[label], ref)
			}
		}
	}
	return missing
}
