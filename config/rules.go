package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seo-optimizer/pageaudit/analyzer"
)

// Rules are the tunable parts of the analysis pipeline
type Rules struct {
	Scoring  analyzer.ScoringRules
	Keywords analyzer.KeywordConfig
	// RelatedKeywords is how many top keywords get related ideas
	RelatedKeywords int
}

// DefaultRules returns the stock pipeline rules
func DefaultRules() Rules {
	return Rules{
		Scoring:         analyzer.DefaultScoringRules(),
		Keywords:        analyzer.DefaultKeywordConfig(),
		RelatedKeywords: 5,
	}
}

type rulesFile struct {
	Scoring  analyzer.ScoringRules `yaml:"scoring"`
	Keywords struct {
		MinLength int    `yaml:"minLength"`
		Limit     int    `yaml:"limit"`
		Ranking   string `yaml:"ranking"`
		// StopWords extends the built-in list unless ReplaceStopWords is set
		StopWords        []string `yaml:"stopWords"`
		ReplaceStopWords bool     `yaml:"replaceStopWords"`
	} `yaml:"keywords"`
	RelatedKeywords *int `yaml:"relatedKeywords"`
}

// LoadRules reads a YAML rules file
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules applies a YAML document on top of the default rules. Fields the
// document leaves out keep their default values; unknown fields are errors.
func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()

	file := rulesFile{Scoring: rules.Scoring}
	file.Keywords.MinLength = rules.Keywords.MinLength
	file.Keywords.Limit = rules.Keywords.Limit
	file.Keywords.Ranking = string(rules.Keywords.Ranking)

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Rules{}, fmt.Errorf("failed to parse rules file: %w", err)
	}

	ranking, err := analyzer.ParseRanking(file.Keywords.Ranking)
	if err != nil {
		return Rules{}, err
	}
	if file.Keywords.MinLength < 1 || file.Keywords.Limit < 1 {
		return Rules{}, fmt.Errorf("keywords: minLength and limit must be >= 1")
	}
	if err := validateScoring(file.Scoring); err != nil {
		return Rules{}, err
	}

	rules.Scoring = file.Scoring
	rules.Keywords.MinLength = file.Keywords.MinLength
	rules.Keywords.Limit = file.Keywords.Limit
	rules.Keywords.Ranking = ranking
	if file.Keywords.ReplaceStopWords {
		rules.Keywords.StopWords = analyzer.NewStopWords(file.Keywords.StopWords...)
	} else if len(file.Keywords.StopWords) > 0 {
		rules.Keywords.StopWords = rules.Keywords.StopWords.With(file.Keywords.StopWords...)
	}
	if file.RelatedKeywords != nil {
		rules.RelatedKeywords = *file.RelatedKeywords
	}
	return rules, nil
}

const (
	maxScore        = 100
	weightTolerance = 1e-6
)

func validateScoring(s analyzer.ScoringRules) error {
	ranges := map[string]analyzer.RangeRule{
		"titleLength":       s.TitleLength,
		"descriptionLength": s.DescriptionLength,
		"keywordsCount":     s.KeywordCount,
	}
	for name, r := range ranges {
		if r.Min > r.Max || r.Weight < 0 {
			return fmt.Errorf("scoring.%s: min must not exceed max and weight must be >= 0", name)
		}
	}
	if s.InternalLinks.Weight < 0 || s.ExternalLinks.Weight < 0 {
		return fmt.Errorf("scoring: link weights must be >= 0")
	}
	if total := s.TotalWeight(); math.Abs(total-maxScore) > weightTolerance {
		return fmt.Errorf("scoring: weights must add up to %d, got %g", maxScore, total)
	}
	return nil
}
