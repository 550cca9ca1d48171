package keywordai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/seo-optimizer/pageaudit/analyzer"
)

var (
	DefaultModel       = openai.ChatModelGPT4oMini
	DefaultTemperature = 0.3
	// DefaultContentLimit caps how much page text is sent, in characters
	DefaultContentLimit = 2000
	DefaultKeywordCount = 15
)

const systemPrompt = "You are an SEO specialist who analyzes websites and identifies their niche and relevant keywords."

var _ analyzer.KeywordProvider = &Provider{}

// Provider extracts the niche and keywords of a page with an OpenAI chat model
type Provider struct {
	client       openai.Client
	model        openai.ChatModel
	temperature  float64
	contentLimit int
	keywordCount int
	options      []option.RequestOption
	logger       *zap.Logger
}

// Option configures a Provider
type Option func(*Provider)

func WithAPIKey(apiKey string) Option {
	return func(p *Provider) {
		p.options = append(p.options, option.WithAPIKey(apiKey))
	}
}

func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		p.options = append(p.options, option.WithBaseURL(baseURL))
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.options = append(p.options, option.WithHTTPClient(client))
	}
}

func WithMaxRetries(maxRetries int) Option {
	return func(p *Provider) {
		p.options = append(p.options, option.WithMaxRetries(maxRetries))
	}
}

func WithModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.model = openai.ChatModel(model)
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// New creates a Provider
func New(opts ...Option) *Provider {
	p := &Provider{
		model:        DefaultModel,
		temperature:  DefaultTemperature,
		contentLimit: DefaultContentLimit,
		keywordCount: DefaultKeywordCount,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client = openai.NewClient(p.options...)
	return p
}

type completion struct {
	Niche    string `json:"niche"`
	Keywords []struct {
		Text  string          `json:"text"`
		Count json.RawMessage `json:"count"`
	} `json:"keywords"`
}

// ExtractKeywords implements analyzer.KeywordProvider
func (p *Provider) ExtractKeywords(ctx context.Context, req analyzer.KeywordRequest) (*analyzer.ProviderKeywords, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is required for keyword analysis", analyzer.ErrEmptyContent)
	}

	p.logger.Debug("Requesting keyword analysis", zap.String("model", string(p.model)))
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(p.prompt(req)),
		},
		Temperature: openai.Float(p.temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: keyword provider", analyzer.ErrQuotaExceeded)
		}
		return nil, fmt.Errorf("%w: keyword provider: %w", analyzer.ErrFetchFailure, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("%w: keyword provider returned no content", analyzer.ErrParseFailure)
	}

	return parseCompletion(resp.Choices[0].Message.Content)
}

func (p *Provider) prompt(req analyzer.KeywordRequest) string {
	content := req.Content
	if r := []rune(content); len(r) > p.contentLimit {
		content = string(r[:p.contentLimit]) + "..."
	}
	return fmt.Sprintf(`Analyze the following website content and identify:
1. The main niche of the website
2. The %d most relevant SEO keywords for this niche, with their estimated frequencies

Site title: %s
Description: %s
Content: %s

Reply in JSON with the following structure:
{
  "niche": "identified niche",
  "keywords": [
    {"text": "keyword", "count": number_of_occurrences}
  ]
}`, p.keywordCount, req.Title, req.Description, content)
}

// parseCompletion decodes the model's JSON answer, tolerating a Markdown
// code fence around it and counts sent as strings or floats
func parseCompletion(content string) (*analyzer.ProviderKeywords, error) {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}

	var c completion
	if err := json.Unmarshal([]byte(content), &c); err != nil {
		return nil, fmt.Errorf("%w: keyword provider: %v", analyzer.ErrParseFailure, err)
	}
	if c.Keywords == nil {
		return nil, fmt.Errorf("%w: keyword provider response has no keywords", analyzer.ErrParseFailure)
	}

	out := &analyzer.ProviderKeywords{
		Niche:    strings.TrimSpace(c.Niche),
		Keywords: make([]analyzer.Keyword, 0, len(c.Keywords)),
	}
	for _, kw := range c.Keywords {
		out.Keywords = append(out.Keywords, analyzer.Keyword{
			Text:  kw.Text,
			Count: decodeCount(kw.Count),
		})
	}
	return out, nil
}

func decodeCount(raw json.RawMessage) int {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n); err == nil {
			return n
		}
	}
	return 0
}
