package analyzer

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplainScore(t *testing.T) {
	rules := DefaultScoringRules()

	perfect := CalculateScore(rules, ScoreInput{
		Title:             strings.Repeat("A", 45),
		Description:       strings.Repeat("B", 140),
		KeywordCount:      10,
		InternalLinkCount: 5,
		ExternalLinkCount: 3,
	})
	assert.Equal(t, "Congratulations! Your page is very well optimized for SEO.", ExplainScore(rules, perfect))

	weakInternal := CalculateScore(rules, ScoreInput{
		Title:             strings.Repeat("A", 45),
		Description:       strings.Repeat("B", 140),
		KeywordCount:      10,
		InternalLinkCount: 1,
		ExternalLinkCount: 3,
	})
	assert.Contains(t, ExplainScore(rules, weakInternal), "internal linking")

	empty := CalculateScore(rules, ScoreInput{})
	assert.Equal(t, "Title and meta description urgently need optimization.", ExplainScore(rules, empty))

	middling := CalculateScore(rules, ScoreInput{
		Title:             "short",
		Description:       strings.Repeat("B", 140),
		KeywordCount:      10,
		InternalLinkCount: 1,
		ExternalLinkCount: 2,
	})
	require.GreaterOrEqual(t, middling.Score, 60)
	require.Less(t, middling.Score, 80)
	assert.Equal(t, "Reasonable SEO. The page title needs optimization.", ExplainScore(rules, middling))
}

func TestKeywordRelevance(t *testing.T) {
	assert.Equal(t, 0.0, KeywordRelevance(Keyword{Text: "x", Count: 1}, 0))
	// long and most frequent: both factors saturate
	assert.InDelta(t, 100.0, KeywordRelevance(Keyword{Text: "optimization", Count: 4}, 4), 1e-9)
	// 5 chars, half the max count
	assert.InDelta(t, (0.5*0.4+0.5*0.6)*100, KeywordRelevance(Keyword{Text: "plant", Count: 2}, 4), 1e-9)
}

func TestRelatedKeywordIdeas(t *testing.T) {
	keywords := []Keyword{
		{Text: "garden", Count: 2},
		{Text: "photosynthesis", Count: 8},
		{Text: "soil", Count: 1},
	}

	assert.Nil(t, RelatedKeywordIdeas(keywords, 2, nil))
	assert.Nil(t, RelatedKeywordIdeas(nil, 2, rand.New(rand.NewSource(1))))
	assert.Nil(t, RelatedKeywordIdeas(keywords, 0, rand.New(rand.NewSource(1))))

	ideas := RelatedKeywordIdeas(keywords, 2, rand.New(rand.NewSource(42)))
	require.Len(t, ideas, 2)
	assert.Equal(t, "photosynthesis", ideas[0].Keyword)
	assert.Equal(t, "garden", ideas[1].Keyword)
	assert.GreaterOrEqual(t, ideas[0].Relevance, ideas[1].Relevance)

	for _, idea := range ideas {
		require.Len(t, idea.Related, 3)
		assert.True(t, strings.HasSuffix(idea.Related[0], " "+idea.Keyword), idea.Related[0])
		assert.True(t, strings.HasPrefix(idea.Related[1], idea.Keyword+" "), idea.Related[1])
		assert.Equal(t, idea.Keyword+" online", idea.Related[2])
	}

	// the same seed reproduces the same ideas
	again := RelatedKeywordIdeas(keywords, 2, rand.New(rand.NewSource(42)))
	assert.Equal(t, ideas, again)
}
