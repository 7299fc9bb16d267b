// Package openai implements port.InvoiceParser on top of the OpenAI chat
// completion API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/application/port"
)

// Parser sends a free-text invoice description through the chat completion
// API and maps the reply onto port.ParseResult. One prompt, one round trip:
// there is no retry, no backoff and no streaming.
type Parser struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewParser creates an OpenAI-backed invoice parser. A positive timeout
// bounds every API round trip through the underlying HTTP client.
func NewParser(apiKey, model string, temperature float32, maxTokens int, timeout time.Duration, logger *zap.Logger) *Parser {
	cfg := openai.DefaultConfig(apiKey)
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return newParserWithConfig(cfg, model, temperature, maxTokens, logger)
}

func newParserWithConfig(cfg openai.ClientConfig, model string, temperature float32, maxTokens int, logger *zap.Logger) *Parser {
	return &Parser{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Parse interprets the prompt. Failures come back as *port.ParseError with a
// category the caller can map to a user-facing message; the draft being
// edited is never touched from here.
func (p *Parser) Parse(ctx context.Context, prompt string) (*port.ParseResult, error) {
	p.logger.Debug("Parsing invoice prompt", zap.Int("prompt_len", len(prompt)))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		p.logger.Error("Completion request failed", zap.Error(err))
		return nil, categorizeRequestError(err)
	}

	if len(resp.Choices) == 0 {
		p.logger.Error("Completion returned no choices")
		return nil, port.NewParseError(port.ParseErrMalformed, errors.New("no response choices"))
	}

	result, err := parseContent(resp.Choices[0].Message.Content)
	if err != nil {
		p.logger.Error("Failed to parse completion content",
			zap.Error(err),
			zap.String("content", resp.Choices[0].Message.Content))
		return nil, port.NewParseError(port.ParseErrMalformed, err)
	}

	p.logger.Info("Invoice prompt parsed",
		zap.Int("items", len(result.Items)),
		zap.Bool("has_tax", result.TaxRate != nil),
		zap.Bool("has_discount", result.DiscountRate != nil),
		zap.Bool("has_client", result.ClientName != ""))

	return result, nil
}

// categorizeRequestError maps transport and API errors onto the failure
// taxonomy. HTTP 429 is a rate limit, 402 means the account is out of
// credits; everything else counts as the service being unavailable.
func categorizeRequestError(err error) *port.ParseError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return port.NewParseError(port.ParseErrRateLimited, err)
		case http.StatusPaymentRequired:
			return port.NewParseError(port.ParseErrPaymentRequired, err)
		}
	}
	return port.NewParseError(port.ParseErrUnavailable, err)
}

// rawResult mirrors the JSON shape the model is instructed to emit. Numeric
// item fields are pointers so missing values can be defaulted rather than
// read as zero.
type rawResult struct {
	Items        []rawItem `json:"items"`
	TaxRate      *float64  `json:"taxRate"`
	DiscountRate *float64  `json:"discountRate"`
	ClientName   string    `json:"clientName"`
}

type rawItem struct {
	Name     string       `json:"name"`
	Quantity *looseNumber `json:"quantity"`
	Price    *looseNumber `json:"price"`
}

// looseNumber accepts both JSON numbers and string-typed numerics like "2";
// the model emits either. Anything unparsable reads as zero and is handled
// by the item defaulting rules.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = looseNumber(v)
	return nil
}

// parseContent strips any Markdown fencing, unmarshals the model output and
// coerces item fields. A reply without an items array is malformed, never an
// empty result.
func parseContent(content string) (*port.ParseResult, error) {
	jsonStr := stripCodeFence(content)

	var raw rawResult
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, err
	}
	if raw.Items == nil {
		return nil, errors.New("missing items array")
	}

	items := make([]port.ParsedItem, 0, len(raw.Items))
	for _, it := range raw.Items {
		items = append(items, coerceItem(it))
	}

	return &port.ParseResult{
		Items:        items,
		TaxRate:      raw.TaxRate,
		DiscountRate: raw.DiscountRate,
		ClientName:   raw.ClientName,
	}, nil
}

// coerceItem applies the defaulting rules: unnamed items become "Item",
// a missing or zero quantity becomes 1, a missing price becomes 0.
func coerceItem(it rawItem) port.ParsedItem {
	item := port.ParsedItem{
		Name:     it.Name,
		Quantity: 1,
		Price:    0,
	}
	if item.Name == "" {
		item.Name = "Item"
	}
	if it.Quantity != nil && *it.Quantity != 0 {
		item.Quantity = float64(*it.Quantity)
	}
	if it.Price != nil {
		item.Price = float64(*it.Price)
	}
	return item
}

// stripCodeFence removes a wrapping ```json / ``` block if the model ignored
// the JSON-only instruction.
func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}

// Verify interface compliance
var _ port.InvoiceParser = (*Parser)(nil)
