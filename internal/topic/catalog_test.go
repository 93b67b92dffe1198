package topic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taiwoajasa245/verse-courier/internal/corpus"
)

const topicsYAML = `
faith:
  - {book: Romans, chapter: 1, verse: 17}
  - {book: Hebrews, chapter: 11, verse: 1}
  - {book: James, chapter: 2, verse: 26}
anxiety:
  - {book: Philippians, chapter: 4, verse: 6}
  - {book: Nowhere, chapter: 1, verse: 1}
encouragement:
  - {book: Joshua, chapter: 1, verse: 9}
`

const keywordsYAML = `
worried: anxiety
anxious: anxiety
believe: faith
doubt: faith
`

func testIndex(t *testing.T) *corpus.Index {
	t.Helper()
	ix, err := corpus.Parse([]byte(`{
		"Romans.1.17": "The just shall live by faith.",
		"Hebrews.11.1": "Now faith is the substance of things hoped for.",
		"James.2.26": "Faith without works is dead also.",
		"Philippians.4.6": "Be careful for nothing.",
		"Joshua.1.9": "Be strong and of a good courage."
	}`))
	require.NoError(t, err)
	return ix
}

func TestParseTopics_KeepsOrder(t *testing.T) {
	topics, err := ParseTopics([]byte(topicsYAML))
	require.NoError(t, err)

	c := NewCatalog(topics, nil)
	assert.Equal(t, []string{"faith", "anxiety", "encouragement"}, c.Topics())
	assert.Equal(t, []corpus.Ref{
		{Book: "Romans", Chapter: 1, Verse: 17},
		{Book: "Hebrews", Chapter: 11, Verse: 1},
		{Book: "James", Chapter: 2, Verse: 26},
	}, c.Refs("faith"))
	assert.True(t, c.Has("anxiety"))
	assert.False(t, c.Has("joy"))
	assert.Empty(t, c.Refs("joy"))
}

func TestParseTopics_AcceptsJSON(t *testing.T) {
	topics, err := ParseTopics([]byte(`{"hope": [{"book": "Romans", "chapter": 15, "verse": 13}], "love": []}`))
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "hope", topics[0].Label)
	assert.Equal(t, "love", topics[1].Label)
}

func TestParseTopics_RejectsList(t *testing.T) {
	_, err := ParseTopics([]byte(`- faith`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDetect_FirstMatchWins(t *testing.T) {
	keywords, err := ParseKeywords([]byte(keywordsYAML))
	require.NoError(t, err)
	c := NewCatalog(nil, keywords)

	label, ok := c.Detect("I BELIEVE but I'm Worried about tomorrow")
	require.True(t, ok)
	assert.Equal(t, "anxiety", label, "worried is listed before believe")

	label, ok = c.Detect("help my doubt")
	require.True(t, ok)
	assert.Equal(t, "faith", label)

	_, ok = c.Detect("what a sunny day")
	assert.False(t, ok)
}

func TestParseKeywords_ListForm(t *testing.T) {
	keywords, err := ParseKeywords([]byte(`
- {keyword: Lonely, topic: comfort}
- {keyword: alone, topic: comfort}
`))
	require.NoError(t, err)
	c := NewCatalog(nil, keywords)

	assert.Equal(t, []Keyword{{Keyword: "lonely", Topic: "comfort"}, {Keyword: "alone", Topic: "comfort"}}, c.Keywords())
	label, ok := c.Detect("so LONELY tonight")
	require.True(t, ok)
	assert.Equal(t, "comfort", label)
}

func TestResolve_SkipsMissingRefs(t *testing.T) {
	topics, err := ParseTopics([]byte(topicsYAML))
	require.NoError(t, err)
	c := NewCatalog(topics, nil)
	ix := testIndex(t)

	got := c.Resolve("anxiety", ix)
	require.Len(t, got, 1)
	assert.Equal(t, "Philippians 4:6", got[0].Ref.String())

	assert.Empty(t, c.Resolve("unknown", ix))

	missing := c.Unresolved(ix)
	assert.Equal(t, map[string][]corpus.Ref{
		"anxiety": {{Book: "Nowhere", Chapter: 1, Verse: 1}},
	}, missing)
}

func TestResolve_DropsRepeatedPassages(t *testing.T) {
	c := NewCatalog([]Topic{{Label: "faith", Refs: []corpus.Ref{
		{Book: "Romans", Chapter: 1, Verse: 17},
		{Book: "Hebrews", Chapter: 11, Verse: 1},
		{Book: "Romans ", Chapter: 1, Verse: 17},
		{Book: "Romans", Chapter: 1, Verse: 17},
	}}}, nil)

	got := c.Resolve("faith", testIndex(t))
	refs := make([]string, 0, len(got))
	for _, p := range got {
		refs = append(refs, p.Ref.String())
	}
	assert.Equal(t, []string{"Romans 1:17", "Hebrews 11:1"}, refs)
}

func TestLoad_ReadsBothFiles(t *testing.T) {
	dir := t.TempDir()
	topicsPath := filepath.Join(dir, "topics.yaml")
	keywordsPath := filepath.Join(dir, "keywords.yaml")
	require.NoError(t, os.WriteFile(topicsPath, []byte(topicsYAML), 0o644))
	require.NoError(t, os.WriteFile(keywordsPath, []byte(keywordsYAML), 0o644))

	c, err := Load(topicsPath, keywordsPath)
	require.NoError(t, err)
	assert.Len(t, c.Topics(), 3)
	assert.Len(t, c.Keywords(), 4)

	_, err = Load(filepath.Join(dir, "missing.yaml"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
