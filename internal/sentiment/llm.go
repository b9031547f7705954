package sentiment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/marketlens/marketlens/internal/core"
	"github.com/sashabaranov/go-openai"
)

const scoringPrompt = `You are a financial news analyst. Given recent headlines about a stock,
respond with a single number between -1.0 (maximally negative) and 1.0
(maximally positive) capturing the aggregate sentiment. Respond with the
number only.`

// completer is the minimal chat surface the LLM provider needs.
type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// LLMProvider scores headlines with a language model. It degrades to an
// error (never a guess) when the model call fails or returns garbage.
type LLMProvider struct {
	name     string
	client   completer
	source   HeadlineSource
	lookback time.Duration
}

// NewOpenAIProvider creates an LLM sentiment provider backed by OpenAI.
func NewOpenAIProvider(apiKey, model string, source HeadlineSource, lookback time.Duration) (*LLMProvider, error) {
	if apiKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("openai api key required"))
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &LLMProvider{
		name:     "openai",
		client:   &openAIClient{client: openai.NewClient(apiKey), model: model},
		source:   source,
		lookback: lookback,
	}, nil
}

// NewClaudeProvider creates an LLM sentiment provider backed by Anthropic.
func NewClaudeProvider(apiKey, model string, source HeadlineSource, lookback time.Duration) (*LLMProvider, error) {
	if apiKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("anthropic api key required"))
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &LLMProvider{
		name:     "claude",
		client:   &claudeClient{client: anthropic.NewClient(option.WithAPIKey(apiKey)), model: model},
		source:   source,
		lookback: lookback,
	}, nil
}

func (p *LLMProvider) Name() string { return p.name }

// Score fetches headlines and asks the model for an aggregate score.
func (p *LLMProvider) Score(ctx context.Context, symbol string, date time.Time) (float64, error) {
	headlines, err := p.source.Headlines(ctx, symbol, date, p.lookback)
	if err != nil {
		return 0, core.WrapError(core.ErrSentimentUnavailable, err)
	}
	if len(headlines) == 0 {
		return 0, nil
	}

	user := fmt.Sprintf("Stock: %s\nHeadlines:\n- %s", symbol, strings.Join(headlines, "\n- "))
	content, err := p.client.complete(ctx, scoringPrompt, user)
	if err != nil {
		return 0, core.WrapError(core.ErrSentimentUnavailable, err)
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return 0, core.WrapError(core.ErrSentimentUnavailable,
			fmt.Errorf("unparseable model response %q", content))
	}
	return clamp(score), nil
}

type openAIClient struct {
	client *openai.Client
	model  string
}

func (c *openAIClient) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   16,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type claudeClient struct {
	client anthropic.Client
	model  string
}

func (c *claudeClient) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 16,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}
	if len(resp.Content) == 0 || resp.Content[0].Type != "text" {
		return "", fmt.Errorf("claude returned no text content")
	}
	return resp.Content[0].Text, nil
}
