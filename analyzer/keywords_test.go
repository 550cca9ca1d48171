package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRanking(t *testing.T) {
	r, err := ParseRanking("")
	require.NoError(t, err)
	assert.Equal(t, RankByFrequency, r)

	r, err = ParseRanking(" Relevance ")
	require.NoError(t, err)
	assert.Equal(t, RankByRelevance, r)

	_, err = ParseRanking("random")
	assert.Error(t, err)
}

func TestStopWords(t *testing.T) {
	sw := NewStopWords("Não", "também")
	assert.True(t, sw.Contains("nao"))
	assert.True(t, sw.Contains("tambem"))
	assert.Equal(t, 2, sw.Len())

	extended := sw.With("extra")
	assert.True(t, extended.Contains("extra"))
	assert.False(t, sw.Contains("extra"), "With must not modify the receiver")

	def := DefaultStopWords()
	for _, w := range []string{"home", "about", "menu", "para", "with"} {
		assert.True(t, def.Contains(w), w)
	}
}

func TestExtract(t *testing.T) {
	e := NewKeywordExtractor(DefaultKeywordConfig())

	t.Run("Empty input", func(t *testing.T) {
		assert.Equal(t, []Keyword{}, e.Extract(""))
		assert.Equal(t, []Keyword{}, e.Extract("   \n\t"))
	})

	t.Run("Counts and order", func(t *testing.T) {
		kws := e.Extract("Garden tips: garden tools, GARDEN soil. Tools!")
		require.Len(t, kws, 4)
		assert.Equal(t, Keyword{Text: "garden", Count: 3}, kws[0])
		assert.Equal(t, Keyword{Text: "tools", Count: 2}, kws[1])
		// ties keep first-seen order
		assert.Equal(t, "tips", kws[2].Text)
		assert.Equal(t, "soil", kws[3].Text)
	})

	t.Run("Filters", func(t *testing.T) {
		kws := e.Extract("the cat sat on 2024 12345 about home analytics")
		texts := make([]string, len(kws))
		for i, k := range kws {
			texts[i] = k.Text
		}
		// short tokens, digits and stop words are dropped
		assert.Equal(t, []string{"analytics"}, texts)
	})

	t.Run("Diacritics fold together", func(t *testing.T) {
		kws := e.Extract("Ação acao AÇÃO")
		require.Len(t, kws, 1)
		assert.Equal(t, Keyword{Text: "acao", Count: 3}, kws[0])
	})

	t.Run("Deterministic", func(t *testing.T) {
		text := "alpha bravo charlie delta alpha bravo echo foxtrot"
		assert.Equal(t, e.Extract(text), e.Extract(text))
	})
}

func TestExtract_Properties(t *testing.T) {
	e := NewKeywordExtractor(DefaultKeywordConfig())

	var words []string
	for i := 0; i < 40; i++ {
		w := "word" + strings.Repeat(string(rune('a'+i%26)), 1+i/26)
		for j := 0; j <= i%5; j++ {
			words = append(words, w)
		}
	}
	kws := e.Extract(strings.Join(words, " "))

	assert.LessOrEqual(t, len(kws), 20)
	seen := map[string]bool{}
	for i, k := range kws {
		assert.GreaterOrEqual(t, k.Count, 1)
		assert.False(t, seen[k.Text], "duplicate %s", k.Text)
		seen[k.Text] = true
		if i > 0 {
			assert.GreaterOrEqual(t, kws[i-1].Count, k.Count)
		}
	}
}

func TestExtract_Relevance(t *testing.T) {
	e := NewKeywordExtractor(KeywordConfig{Ranking: RankByRelevance})
	assert.Equal(t, RankByRelevance, e.Ranking())

	// "optimization" is rarer but long enough to outrank "site"
	kws := e.Extract("site site site optimization optimization")
	require.Len(t, kws, 2)
	assert.Equal(t, "optimization", kws[0].Text)
	assert.Equal(t, "site", kws[1].Text)

	freq := e.ExtractWith("site site site optimization optimization", RankByFrequency)
	assert.Equal(t, "site", freq[0].Text)
}

func TestExtract_Limit(t *testing.T) {
	e := NewKeywordExtractor(KeywordConfig{Limit: 2, MinLength: 1})
	kws := e.Extract("aa bb cc dd aa")
	assert.Equal(t, []Keyword{{Text: "aa", Count: 2}, {Text: "bb", Count: 1}}, kws)
}

func TestExtract_MinLength(t *testing.T) {
	assert.Empty(t, NewKeywordExtractor(KeywordConfig{}).Extract("seo seo seo"))

	short := NewKeywordExtractor(KeywordConfig{MinLength: 2})
	assert.Equal(t, []Keyword{{Text: "seo", Count: 3}}, short.Extract("seo seo seo go"))
}

func TestSanitizeKeywords(t *testing.T) {
	in := []Keyword{
		{Text: "  SEO Tools ", Count: 2},
		{Text: "seo tools", Count: 5},
		{Text: "", Count: 3},
		{Text: "marketing", Count: 0},
		{Text: "Análise", Count: 4},
	}
	out := SanitizeKeywords(in, 10)
	assert.Equal(t, []Keyword{{Text: "seo tools", Count: 5}, {Text: "analise", Count: 4}}, out)

	assert.Len(t, SanitizeKeywords(in, 1), 1)
	assert.Empty(t, SanitizeKeywords(nil, 5))
}
