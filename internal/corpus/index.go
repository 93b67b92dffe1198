package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrEmptyCorpus means no usable passage survived normalization.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrInvalidCorpus means the input is neither a record list nor a key mapping.
	ErrInvalidCorpus = errors.New("corpus has an unsupported shape")
)

// Accepted attribute names for sequence-shaped corpora, in lookup order.
var (
	bookAliases    = []string{"book_name", "book", "Book"}
	chapterAliases = []string{"chapter", "Chapter"}
	verseAliases   = []string{"verse", "Verse"}
	textAliases    = []string{"text", "Text"}
)

// Index is the read-only passage lookup built once at startup. It is safe for
// concurrent use because nothing mutates it after Build returns.
type Index struct {
	lookup  map[string]string
	entries []Passage
	slot    map[string]int
}

// Build normalizes records into an Index. A later record with the same
// normalized key replaces the earlier text and keeps the earlier position.
func Build(records []Passage) (*Index, error) {
	ix := &Index{
		lookup: make(map[string]string, len(records)),
		slot:   make(map[string]int, len(records)),
	}
	for _, rec := range records {
		book := strings.TrimSpace(rec.Book)
		text := strings.TrimSpace(rec.Text)
		if book == "" || text == "" || rec.Chapter <= 0 || rec.Verse <= 0 {
			continue
		}
		p := Passage{Ref: Ref{Book: book, Chapter: rec.Chapter, Verse: rec.Verse}, Text: text}
		key := p.Key()
		ix.lookup[key] = text
		if i, ok := ix.slot[key]; ok {
			ix.entries[i] = p
			continue
		}
		ix.slot[key] = len(ix.entries)
		ix.entries = append(ix.entries, p)
	}
	if len(ix.entries) == 0 {
		return nil, ErrEmptyCorpus
	}
	return ix, nil
}

// Parse builds an Index from raw JSON in either accepted shape: a sequence of
// passage objects, or a "Book.Chapter.Verse" -> text mapping.
func Parse(data []byte) (*Index, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyCorpus
	}

	var (
		records []Passage
		err     error
	)
	switch trimmed[0] {
	case '[':
		records, err = parseSequence(trimmed)
	case '{':
		records, err = parseMapping(trimmed)
	default:
		return nil, ErrInvalidCorpus
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyCorpus
	}
	return Build(records)
}

// Load reads and parses a corpus file.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	ix, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading corpus %s: %w", path, err)
	}
	return ix, nil
}

func parseSequence(data []byte) ([]Passage, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCorpus, err)
	}
	records := make([]Passage, 0, len(raw))
	for _, obj := range raw {
		book, _ := stringField(obj, bookAliases)
		text, _ := stringField(obj, textAliases)
		chapter, _ := intField(obj, chapterAliases)
		verse, _ := intField(obj, verseAliases)
		records = append(records, Passage{
			Ref:  Ref{Book: book, Chapter: chapter, Verse: verse},
			Text: text,
		})
	}
	return records, nil
}

// parseMapping walks the object token by token so that corpus order is kept.
func parseMapping(data []byte) ([]Passage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCorpus, err)
	}
	var records []Passage
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCorpus, err)
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCorpus, err)
		}
		ref, ok := splitKey(key)
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			continue
		}
		records = append(records, Passage{Ref: ref, Text: text})
	}
	return records, nil
}

func stringField(obj map[string]json.RawMessage, aliases []string) (string, bool) {
	for _, name := range aliases {
		raw, ok := obj[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func intField(obj map[string]json.RawMessage, aliases []string) (int, bool) {
	for _, name := range aliases {
		raw, ok := obj[name]
		if !ok {
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			if v, err := strconv.Atoi(n.String()); err == nil {
				return v, true
			}
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// Lookup returns the text stored for a passage.
func (ix *Index) Lookup(book string, chapter, verse int) (string, bool) {
	text, ok := ix.lookup[Key(book, chapter, verse)]
	return text, ok
}

// Verify reports whether the passage exists in the index.
func (ix *Index) Verify(book string, chapter, verse int) bool {
	_, ok := ix.Lookup(book, chapter, verse)
	return ok
}

// Resolve returns the indexed passage for ref. The result carries the
// corpus spelling of the book, so any spelling of one passage yields the
// same Ref.String.
func (ix *Index) Resolve(ref Ref) (Passage, bool) {
	i, ok := ix.slot[ref.Key()]
	if !ok {
		return Passage{}, false
	}
	return ix.entries[i], true
}

// All yields every passage in corpus load order. The sequence can be ranged
// over any number of times.
func (ix *Index) All() iter.Seq2[int, Passage] {
	return func(yield func(int, Passage) bool) {
		for i, p := range ix.entries {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Len returns the number of distinct passages.
func (ix *Index) Len() int { return len(ix.entries) }
