package corpus

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref identifies a passage without its text.
type Ref struct {
	Book    string `json:"book" yaml:"book"`
	Chapter int    `json:"chapter" yaml:"chapter"`
	Verse   int    `json:"verse" yaml:"verse"`
}

// String returns the canonical "Book Chapter:Verse" form used as the
// external identifier and ledger key.
func (r Ref) String() string {
	return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.Verse)
}

// Key returns the normalized lookup key for the ref.
func (r Ref) Key() string {
	return Key(r.Book, r.Chapter, r.Verse)
}

// Passage is one indexed unit of corpus text.
type Passage struct {
	Ref
	Text string `json:"text"`
}

const keySeparator = "."

// Key builds the lookup key: book with internal whitespace removed, joined
// with chapter and verse.
func Key(book string, chapter, verse int) string {
	return strings.Join(strings.Fields(book), "") +
		keySeparator + strconv.Itoa(chapter) +
		keySeparator + strconv.Itoa(verse)
}

// splitKey parses a dot-joined "Book.Chapter.Verse" key from the right, so
// book names containing the separator survive.
func splitKey(key string) (Ref, bool) {
	parts := strings.Split(key, keySeparator)
	if len(parts) < 3 {
		return Ref{}, false
	}
	n := len(parts)
	chapter, err := strconv.Atoi(strings.TrimSpace(parts[n-2]))
	if err != nil || chapter <= 0 {
		return Ref{}, false
	}
	verse, err := strconv.Atoi(strings.TrimSpace(parts[n-1]))
	if err != nil || verse <= 0 {
		return Ref{}, false
	}
	book := strings.TrimSpace(strings.Join(parts[:n-2], keySeparator))
	if book == "" {
		return Ref{}, false
	}
	return Ref{Book: book, Chapter: chapter, Verse: verse}, true
}

// FormatPassages renders passages as a message body: each text followed by
// its ref in parentheses, separated by a blank line.
func FormatPassages(passages []Passage) string {
	var b strings.Builder
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(p.Text))
		b.WriteString("\n(")
		b.WriteString(p.Ref.String())
		b.WriteString(")")
	}
	return b.String()
}
