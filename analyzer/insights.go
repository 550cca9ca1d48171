package analyzer

import (
	"math"
	"math/rand"
	"sort"
	"unicode/utf8"
)

// ExplainScore summarizes a score in one sentence, pointing at the weakest
// area. Sub-scores are compared as a percentage of their category weight.
func ExplainScore(rules ScoringRules, s Score) string {
	title := percentOf(s.Details.Title, rules.TitleLength.Weight)
	desc := percentOf(s.Details.Description, rules.DescriptionLength.Weight)
	kw := percentOf(s.Details.Keywords, rules.KeywordCount.Weight)
	internal := percentOf(s.Details.InternalLinks, rules.InternalLinks.Weight)
	external := percentOf(s.Details.ExternalLinks, rules.ExternalLinks.Weight)

	lowest := math.Min(title, math.Min(desc, math.Min(kw, math.Min(internal, external))))

	switch {
	case s.Score >= 80:
		switch {
		case lowest == 100:
			return "Congratulations! Your page is very well optimized for SEO."
		case lowest == internal:
			return "Your page is well optimized, but internal linking could improve."
		case lowest == external:
			return "Excellent optimization! Consider adding more relevant external links."
		case lowest == kw:
			return "Great SEO! Keyword distribution could improve."
		}
		return "Congratulations! Your page is very well optimized for SEO."
	case s.Score >= 60:
		switch {
		case title < 70:
			return "Reasonable SEO. The page title needs optimization."
		case desc < 70:
			return "Average SEO. The meta description could improve."
		case kw < 70:
			return "Adequate SEO, but keywords need work."
		}
		return "Satisfactory SEO, with room for improvement."
	default:
		switch {
		case title < 60 && desc < 60:
			return "Title and meta description urgently need optimization."
		case kw < 60:
			return "Keyword optimization needs work."
		}
		return "SEO needs attention. Follow the suggestions to improve."
	}
}

func percentOf(v, weight float64) float64 {
	if weight <= 0 {
		return 100
	}
	return v / weight * 100
}

// KeywordRelevance rates a keyword from 0 to 100, mixing a length factor
// (capped at 10 characters) with its frequency relative to the most
// frequent keyword
func KeywordRelevance(kw Keyword, maxCount int) float64 {
	if maxCount <= 0 {
		return 0
	}
	lengthFactor := math.Min(float64(utf8.RuneCountInString(kw.Text))/10, 1)
	frequencyFactor := float64(kw.Count) / float64(maxCount)
	return (lengthFactor*0.4 + frequencyFactor*0.6) * 100
}

var (
	relatedPrefixes = []string{"how to", "best", "top", "guide to"}
	relatedSuffixes = []string{"tips", "tutorial", "for professionals", "advanced"}
)

// RelatedKeywordIdeas builds keyword ideas for the most relevant page
// keywords by combining them with common search prefixes and suffixes.
// The random source is injected so output is reproducible in tests.
func RelatedKeywordIdeas(keywords []Keyword, limit int, rnd *rand.Rand) []RelatedKeywords {
	if len(keywords) == 0 || limit <= 0 || rnd == nil {
		return nil
	}

	maxCount := 0
	for _, kw := range keywords {
		if kw.Count > maxCount {
			maxCount = kw.Count
		}
	}

	ideas := make([]RelatedKeywords, len(keywords))
	for i, kw := range keywords {
		ideas[i] = RelatedKeywords{Keyword: kw.Text, Relevance: KeywordRelevance(kw, maxCount)}
	}
	sort.SliceStable(ideas, func(i, j int) bool {
		return ideas[i].Relevance > ideas[j].Relevance
	})
	if len(ideas) > limit {
		ideas = ideas[:limit]
	}

	for i := range ideas {
		kw := ideas[i].Keyword
		ideas[i].Related = []string{
			relatedPrefixes[rnd.Intn(len(relatedPrefixes))] + " " + kw,
			kw + " " + relatedSuffixes[rnd.Intn(len(relatedSuffixes))],
			kw + " online",
		}
	}
	return ideas
}
