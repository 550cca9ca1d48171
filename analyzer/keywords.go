package analyzer

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Ranking selects how extracted keywords are ordered before truncation
type Ranking string

const (
	// RankByFrequency orders by raw occurrence count
	RankByFrequency Ranking = "frequency"
	// RankByRelevance orders by (count/total) * (length/10), favouring longer terms
	RankByRelevance Ranking = "relevance"
)

// ParseRanking maps a config value to a Ranking
func ParseRanking(s string) (Ranking, error) {
	switch Ranking(strings.ToLower(strings.TrimSpace(s))) {
	case "", RankByFrequency:
		return RankByFrequency, nil
	case RankByRelevance:
		return RankByRelevance, nil
	}
	return "", fmt.Errorf("unknown keyword ranking %q", s)
}

// StopWords is an immutable set of normalized tokens excluded from counting
type StopWords struct {
	words map[string]struct{}
}

// NewStopWords builds a set from raw words. Each word is normalized so that
// accented entries match the normalized tokens they are compared against.
func NewStopWords(words ...string) StopWords {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		for _, tok := range strings.Fields(NormalizeText(w)) {
			set[tok] = struct{}{}
		}
	}
	return StopWords{words: set}
}

// With returns a new set containing the receiver's words plus extra
func (s StopWords) With(extra ...string) StopWords {
	merged := NewStopWords(extra...)
	for w := range s.words {
		merged.words[w] = struct{}{}
	}
	return merged
}

// Contains reports whether a normalized token is a stop word
func (s StopWords) Contains(token string) bool {
	_, ok := s.words[token]
	return ok
}

// Len returns the number of stop words
func (s StopWords) Len() int {
	return len(s.words)
}

// DefaultStopWords returns Portuguese and English function words plus
// common site-navigation terms
func DefaultStopWords() StopWords {
	return NewStopWords(
		// articles and prepositions
		"a", "o", "as", "os", "um", "uma", "uns", "umas", "de", "do", "da", "dos", "das",
		"em", "no", "na", "nos", "nas", "ao", "aos", "à", "às", "pelo", "pela", "pelos", "pelas",
		"com", "sem", "para", "por", "sobre", "entre", "até", "desde",
		// conjunctions
		"e", "ou", "mas", "porém", "contudo", "todavia", "porque", "quando", "como", "também",
		// pronouns
		"eu", "tu", "ele", "ela", "nós", "vós", "eles", "elas", "você", "vocês",
		"este", "esta", "isto", "esse", "essa", "isso", "aquele", "aquela", "aquilo",
		"seu", "sua", "seus", "suas", "nosso", "nossa",
		// verbs
		"é", "são", "está", "estão", "foi", "foram", "ser", "estar", "ter", "haver", "pode", "podem",
		// English function words
		"the", "and", "that", "this", "with", "from", "your", "have", "will", "they", "their",
		"there", "what", "when", "which", "about", "into", "more", "than", "then", "them",
		"were", "been", "also", "only", "just", "over",
		// site navigation
		"menu", "início", "inicio", "home", "contato", "contact", "sobre",
		"cookies", "aceitar", "accept", "fechar", "close", "abrir", "open",
		"aqui", "here", "clique", "click", "login", "entrar", "search", "buscar",
	)
}

// KeywordConfig configures a KeywordExtractor
type KeywordConfig struct {
	StopWords StopWords
	// MinLength drops tokens whose rune length is less than or equal to it.
	// Zero means the default.
	MinLength int
	Limit     int
	Ranking   Ranking
}

// DefaultKeywordConfig returns the stock extractor configuration
func DefaultKeywordConfig() KeywordConfig {
	return KeywordConfig{
		StopWords: DefaultStopWords(),
		MinLength: 3,
		Limit:     20,
		Ranking:   RankByFrequency,
	}
}

// KeywordExtractor counts and ranks content keywords. It holds only
// read-only configuration and is safe for concurrent use.
type KeywordExtractor struct {
	cfg KeywordConfig
}

// NewKeywordExtractor creates an extractor, filling zero fields with defaults
func NewKeywordExtractor(cfg KeywordConfig) *KeywordExtractor {
	def := DefaultKeywordConfig()
	if cfg.StopWords.words == nil {
		cfg.StopWords = def.StopWords
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = def.MinLength
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Ranking == "" {
		cfg.Ranking = def.Ranking
	}
	return &KeywordExtractor{cfg: cfg}
}

// Ranking returns the configured ranking strategy
func (e *KeywordExtractor) Ranking() Ranking {
	return e.cfg.Ranking
}

// Extract returns the top keywords of text using the configured ranking
func (e *KeywordExtractor) Extract(text string) []Keyword {
	return e.ExtractWith(text, e.cfg.Ranking)
}

type tokenCount struct {
	text  string
	count int
	score float64
}

// ExtractWith is Extract with an explicit ranking strategy
func (e *KeywordExtractor) ExtractWith(text string, ranking Ranking) []Keyword {
	counts := make(map[string]*tokenCount)
	// first-seen order gives a deterministic tie-break
	var order []*tokenCount
	total := 0

	for _, tok := range strings.Fields(NormalizeText(text)) {
		if !e.keep(tok) {
			continue
		}
		total++
		if tc, ok := counts[tok]; ok {
			tc.count++
			continue
		}
		tc := &tokenCount{text: tok, count: 1}
		counts[tok] = tc
		order = append(order, tc)
	}
	if len(order) == 0 {
		return []Keyword{}
	}

	switch ranking {
	case RankByRelevance:
		for _, tc := range order {
			frequency := float64(tc.count) / float64(total)
			tc.score = frequency * (float64(utf8.RuneCountInString(tc.text)) / 10)
		}
		sort.SliceStable(order, func(i, j int) bool {
			return order[i].score > order[j].score
		})
	default:
		sort.SliceStable(order, func(i, j int) bool {
			return order[i].count > order[j].count
		})
	}

	if len(order) > e.cfg.Limit {
		order = order[:e.cfg.Limit]
	}
	keywords := make([]Keyword, len(order))
	for i, tc := range order {
		keywords[i] = Keyword{Text: tc.text, Count: tc.count}
	}
	return keywords
}

func (e *KeywordExtractor) keep(tok string) bool {
	if utf8.RuneCountInString(tok) <= e.cfg.MinLength {
		return false
	}
	if e.cfg.StopWords.Contains(tok) {
		return false
	}
	return !isDigits(tok)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SanitizeKeywords normalizes keywords coming from an external provider:
// texts are normalized, empty or non-positive entries dropped, duplicates
// merged (keeping the larger count) and the list capped at limit.
func SanitizeKeywords(in []Keyword, limit int) []Keyword {
	out := make([]Keyword, 0, len(in))
	index := make(map[string]int, len(in))
	for _, kw := range in {
		text := NormalizeText(kw.Text)
		if text == "" || kw.Count < 1 {
			continue
		}
		if i, ok := index[text]; ok {
			if kw.Count > out[i].Count {
				out[i].Count = kw.Count
			}
			continue
		}
		index[text] = len(out)
		out = append(out, Keyword{Text: text, Count: kw.Count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
