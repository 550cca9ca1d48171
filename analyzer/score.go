package analyzer

import (
	"math"
	"unicode/utf8"
)

// RangeRule awards full weight when a value falls in [Min, Max] and half
// weight otherwise
type RangeRule struct {
	Min    int     `yaml:"min" json:"min"`
	Max    int     `yaml:"max" json:"max"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Score applies the rule to v
func (r RangeRule) Score(v int) float64 {
	if v >= r.Min && v <= r.Max {
		return r.Weight
	}
	return r.Weight * 0.5
}

// MinimumRule awards full weight when a count reaches Min and a
// proportional share below it
type MinimumRule struct {
	Min    int     `yaml:"min" json:"min"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Score applies the rule to n
func (r MinimumRule) Score(n int) float64 {
	if n <= 0 {
		return 0
	}
	if n >= r.Min || r.Min <= 0 {
		return r.Weight
	}
	return r.Weight * float64(n) / float64(r.Min)
}

// ScoringRules is the weighted rule table. Values are copied into every
// call; nothing in the package mutates them.
type ScoringRules struct {
	TitleLength       RangeRule   `yaml:"titleLength" json:"titleLength"`
	DescriptionLength RangeRule   `yaml:"descriptionLength" json:"descriptionLength"`
	KeywordCount      RangeRule   `yaml:"keywordsCount" json:"keywordsCount"`
	InternalLinks     MinimumRule `yaml:"internalLinksCount" json:"internalLinksCount"`
	ExternalLinks     MinimumRule `yaml:"externalLinksCount" json:"externalLinksCount"`
}

// DefaultScoringRules returns the stock table; weights add up to 100
func DefaultScoringRules() ScoringRules {
	return ScoringRules{
		TitleLength:       RangeRule{Min: 30, Max: 60, Weight: 15},
		DescriptionLength: RangeRule{Min: 120, Max: 160, Weight: 25},
		KeywordCount:      RangeRule{Min: 5, Max: 15, Weight: 20},
		InternalLinks:     MinimumRule{Min: 3, Weight: 20},
		ExternalLinks:     MinimumRule{Min: 2, Weight: 20},
	}
}

// TotalWeight returns the maximum reachable score
func (r ScoringRules) TotalWeight() float64 {
	return r.TitleLength.Weight + r.DescriptionLength.Weight + r.KeywordCount.Weight +
		r.InternalLinks.Weight + r.ExternalLinks.Weight
}

// CalculateScore scores the page signals against rules
func CalculateScore(rules ScoringRules, in ScoreInput) Score {
	details := ScoreDetail{
		Title:         rules.TitleLength.Score(textLength(in.Title)),
		Description:   rules.DescriptionLength.Score(textLength(in.Description)),
		Keywords:      rules.KeywordCount.Score(in.KeywordCount),
		InternalLinks: rules.InternalLinks.Score(in.InternalLinkCount),
		ExternalLinks: rules.ExternalLinks.Score(in.ExternalLinkCount),
	}
	return Score{
		Score:   int(math.Round(details.Sum())),
		Details: details,
	}
}

// textLength counts characters, not bytes
func textLength(s string) int {
	return utf8.RuneCountInString(s)
}
