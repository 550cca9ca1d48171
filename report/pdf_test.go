package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/pageaudit/analyzer"
)

func TestRender(t *testing.T) {
	var keywords []analyzer.Keyword
	for i := 0; i < 15; i++ {
		keywords = append(keywords, analyzer.Keyword{Text: "café", Count: 15 - i})
	}
	result := &analyzer.Result{
		URL:         "https://example.com/",
		Title:       "Example Domain",
		Description: "Illustrative examples in documents.",
		PageCount:   3,
		Keywords:    keywords,
		Links: []analyzer.Link{
			{URL: "/a", Text: "A", Type: analyzer.LinkInternal},
			{URL: "https://other.org", Text: "Other", Type: analyzer.LinkExternal},
		},
		SeoScore:    analyzer.Score{Score: 58, Details: analyzer.ScoreDetail{Title: 20, Description: 10}},
		Suggestions: []string{"Add more internal links.", "Your title is too short."},
		Explanation: "Reasonable SEO.",
		Niche:       "Examples",
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, result, analyzer.DefaultScoringRules(), time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("%%EOF")))
}

func TestRender_Nil(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, nil, analyzer.DefaultScoringRules(), time.Now()))
	assert.Zero(t, buf.Len())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 100, percent(20, 20))
	assert.Equal(t, 50, percent(7.5, 15))
	assert.Equal(t, 67, percent(13.333, 20))
	assert.Equal(t, 0, percent(5, 0))
}
