package analyzer

import "time"

// Keyword is a token and how many times it occurred on the page
type Keyword struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// LinkType tells whether a link stays on the analyzed site
type LinkType string

const (
	LinkInternal LinkType = "internal"
	LinkExternal LinkType = "external"
)

// Link is a classified anchor found on the page
type Link struct {
	URL  string   `json:"url"`
	Text string   `json:"text"`
	Type LinkType `json:"type"`
}

// Anchor is a raw (href, text) pair as extracted from the HTML
type Anchor struct {
	Href string
	Text string
}

// Page holds the SEO-relevant fields extracted from a fetched document
type Page struct {
	Title       string
	Description string
	BodyText    string
	Anchors     []Anchor
}

// ScoreDetail holds the five weighted sub-scores
type ScoreDetail struct {
	Title         float64 `json:"titleScore"`
	Description   float64 `json:"descriptionScore"`
	Keywords      float64 `json:"keywordsScore"`
	InternalLinks float64 `json:"internalLinksScore"`
	ExternalLinks float64 `json:"externalLinksScore"`
}

// Sum adds up all sub-scores
func (d ScoreDetail) Sum() float64 {
	return d.Title + d.Description + d.Keywords + d.InternalLinks + d.ExternalLinks
}

// Score is the overall 0-100 SEO score with its breakdown
type Score struct {
	Score   int         `json:"score"`
	Details ScoreDetail `json:"details"`
}

// ScoreInput is everything the scorer and the suggestion generator look at
type ScoreInput struct {
	Title             string
	Description       string
	KeywordCount      int
	InternalLinkCount int
	ExternalLinkCount int
}

// RelatedKeywords groups generated keyword ideas around one page keyword
type RelatedKeywords struct {
	Keyword   string   `json:"mainKeyword"`
	Related   []string `json:"related"`
	Relevance float64  `json:"relevance"`
}

// KeywordSource records who produced the keyword list
type KeywordSource string

const (
	SourceLocal    KeywordSource = "local"
	SourceProvider KeywordSource = "provider"
)

// Result is the complete analysis of one page. It is built once and
// treated as read-only afterwards.
type Result struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	PageCount       int               `json:"pageCount"`
	Keywords        []Keyword         `json:"keywords"`
	Links           []Link            `json:"links"`
	SeoScore        Score             `json:"seoScore"`
	Suggestions     []string          `json:"suggestions"`
	Explanation     string            `json:"explanation"`
	Niche           string            `json:"niche,omitempty"`
	KeywordSource   KeywordSource     `json:"keywordSource"`
	RelatedKeywords []RelatedKeywords `json:"relatedKeywords,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// LinkCounts returns the number of internal and external links
func (r *Result) LinkCounts() (internal, external int) {
	return CountLinks(r.Links)
}
