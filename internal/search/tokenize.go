package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen is the shortest token that takes part in scoring.
const minTokenLen = 3

var stopwords = func() map[string]struct{} {
	words := []string{
		"the", "and", "for", "not", "but", "nor", "yet", "are", "was", "were",
		"been", "being", "has", "have", "had", "does", "did", "doing", "can",
		"could", "will", "would", "should", "may", "might", "must", "shall",
		"you", "your", "yours", "our", "ours", "they", "them", "their", "his",
		"her", "hers", "him", "she", "its", "who", "whom", "what", "which",
		"when", "where", "why", "how", "all", "any", "each", "few", "more",
		"most", "other", "some", "such", "only", "own", "same", "than", "too",
		"very", "just", "now", "then", "there", "here", "this", "that",
		"these", "those", "with", "from", "into", "onto", "upon", "about",
		"over", "under", "again", "once", "out", "off", "also", "because",
		"while", "until", "unto", "thee", "thou", "thy", "thine", "hath",
		"doth", "ye", "let", "get", "got", "want", "need", "feel", "feeling",
		"something", "anything", "please", "give", "verse", "verses",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// Tokenize lowercases the query, strips every non-letter, splits on
// whitespace and drops short tokens and stopwords. Tokens are distinct and
// keep first-seen order.
func Tokenize(query string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(query) {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	var tokens []string
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(b.String()) {
		if utf8.RuneCountInString(tok) < minTokenLen {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}
