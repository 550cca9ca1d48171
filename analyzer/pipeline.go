package analyzer

import (
	"net/url"
)

// Pipeline runs the pure analysis steps over an extracted page. It holds
// only immutable configuration and can be shared between goroutines.
type Pipeline struct {
	rules     ScoringRules
	extractor *KeywordExtractor
}

// NewPipeline creates a pipeline with the given rules and keyword config
func NewPipeline(rules ScoringRules, kwCfg KeywordConfig) *Pipeline {
	return &Pipeline{
		rules:     rules,
		extractor: NewKeywordExtractor(kwCfg),
	}
}

// Rules returns the scoring table in use
func (p *Pipeline) Rules() ScoringRules {
	return p.rules
}

// Extractor returns the keyword extractor in use
func (p *Pipeline) Extractor() *KeywordExtractor {
	return p.extractor
}

// Run analyzes page, extracting keywords locally
func (p *Pipeline) Run(page *Page, pageURL *url.URL) Result {
	return p.RunWithKeywords(page, pageURL, p.extractor.Extract(page.BodyText))
}

// RunWithKeywords analyzes page using an already computed keyword list
func (p *Pipeline) RunWithKeywords(page *Page, pageURL *url.URL, keywords []Keyword) Result {
	if keywords == nil {
		keywords = []Keyword{}
	}
	links := ClassifyLinks(page.Anchors, pageURL)
	internal, external := CountLinks(links)

	in := ScoreInput{
		Title:             page.Title,
		Description:       page.Description,
		KeywordCount:      len(keywords),
		InternalLinkCount: internal,
		ExternalLinkCount: external,
	}
	score := CalculateScore(p.rules, in)

	result := Result{
		Title:         page.Title,
		Description:   page.Description,
		PageCount:     PageCount(links),
		Keywords:      keywords,
		Links:         links,
		SeoScore:      score,
		Suggestions:   GenerateSuggestions(p.rules, in),
		Explanation:   ExplainScore(p.rules, score),
		KeywordSource: SourceLocal,
	}
	if pageURL != nil {
		result.URL = pageURL.String()
	}
	return result
}
