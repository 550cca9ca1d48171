package analyzer

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateSuggestions returns one remediation message per category that
// misses its target. Rules are independent; the order is always title,
// description, keywords, internal links, external links.
func GenerateSuggestions(rules ScoringRules, in ScoreInput) []string {
	suggestions := []string{}

	titleLen := textLength(in.Title)
	switch {
	case titleLen == 0:
		suggestions = append(suggestions,
			"Your page is missing a title. Add one - it is a crucial SEO element.")
	case titleLen < rules.TitleLength.Min:
		suggestions = append(suggestions, fmt.Sprintf(
			"Your title is only %d characters long. Consider expanding it to at least %d characters for better SEO.",
			titleLen, rules.TitleLength.Min))
	case titleLen > rules.TitleLength.Max:
		suggestions = append(suggestions, fmt.Sprintf(
			"Your title is %d characters long. Consider shortening it to at most %d characters for better SEO.",
			titleLen, rules.TitleLength.Max))
	}

	descLen := textLength(in.Description)
	switch {
	case descLen == 0:
		suggestions = append(suggestions,
			"Your page is missing a meta description. Add one to improve visibility in search results.")
	case descLen < rules.DescriptionLength.Min:
		suggestions = append(suggestions, fmt.Sprintf(
			"Your meta description is only %d characters long. Consider expanding it to at least %d characters.",
			descLen, rules.DescriptionLength.Min))
	case descLen > rules.DescriptionLength.Max:
		suggestions = append(suggestions, fmt.Sprintf(
			"Your meta description is %d characters long. Consider shortening it to at most %d characters.",
			descLen, rules.DescriptionLength.Max))
	}

	if in.KeywordCount < rules.KeywordCount.Min {
		suggestions = append(suggestions, fmt.Sprintf(
			"Your page has few keywords (%d). Try to include more terms relevant to your content.",
			in.KeywordCount))
	}
	if in.InternalLinkCount < rules.InternalLinks.Min {
		suggestions = append(suggestions, fmt.Sprintf(
			"Your page has few internal links (%d). Add more links between your pages to improve navigation.",
			in.InternalLinkCount))
	}
	if in.ExternalLinkCount < rules.ExternalLinks.Min {
		suggestions = append(suggestions, fmt.Sprintf(
			"Your page has few external links (%d). Consider adding links to relevant, trustworthy resources.",
			in.ExternalLinkCount))
	}

	return suggestions
}

// Priority is the display severity of a suggestion
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// MarshalText lets priorities serialize as their names
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

var (
	highPriorityTerms   = []string{"missing", "lacking", "lacks"}
	mediumPriorityTerms = []string{"could improve", "consider"}
)

// ClassifyPriority derives a severity from the wording of a suggestion
func ClassifyPriority(suggestion string) Priority {
	msg := strings.ToLower(suggestion)
	for _, term := range highPriorityTerms {
		if strings.Contains(msg, term) {
			return PriorityHigh
		}
	}
	for _, term := range mediumPriorityTerms {
		if strings.Contains(msg, term) {
			return PriorityMedium
		}
	}
	return PriorityLow
}

// RankedSuggestion is a suggestion with its derived priority
type RankedSuggestion struct {
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// SortByPriority returns the suggestions ordered high to low, keeping the
// original order within a priority
func SortByPriority(suggestions []string) []RankedSuggestion {
	ranked := make([]RankedSuggestion, len(suggestions))
	for i, s := range suggestions {
		ranked[i] = RankedSuggestion{Text: s, Priority: ClassifyPriority(s)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})
	return ranked
}
