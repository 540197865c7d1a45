// Package openai adapts the OpenAI chat completions API to the text side of
// listing generation: product analysis, copy and detail-page JSON.
package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rs/zerolog"

	"detailgen/internal/domain"
	"detailgen/internal/infra"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	defaultTimeout = 120 * time.Second
	systemPrompt   = "You are an e-commerce listing copywriter. When asked for JSON, respond only with valid JSON."
)

var modelCanonical = map[string]string{
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-4o":        "gpt-4o",
	"gpt-4.1-mini":  "gpt-4.1-mini",
	"gpt-3.5-turbo": "gpt-3.5-turbo",
}

var modelAliases = map[string]string{
	"gpt4o-mini":             "gpt-4o-mini",
	"gpt4omini":              "gpt-4o-mini",
	"gpt-4o-mini-2024-07-18": "gpt-4o-mini",
	"gpt4o":                  "gpt-4o",
	"gpt-3.5":                "gpt-3.5-turbo",
	"gpt3.5":                 "gpt-3.5-turbo",
	"gpt-35-turbo":           "gpt-3.5-turbo",
}

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client sends single-turn chat completions.
type Client struct {
	sdk    sdk.Client
	apiKey string
	model  string
	logger *infra.Logger
}

// Prompt is one completion request. ImageDataURL, when set, is attached as a
// vision input after the text.
type Prompt struct {
	Text         string
	ImageDataURL string
	JSON         bool
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		l := infra.Logger(zerolog.New(io.Discard))
		logger = &l
	}
	model, reason := NormalizeModel(opts.Model)
	if reason != "" {
		logger.Warn().Str("requested", opts.Model).Str("resolved", model).Str("reason", reason).Msg("openai: model normalized")
	}

	apiKey := strings.TrimSpace(opts.APIKey)
	return &Client{
		sdk: sdk.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

// Model returns the resolved model id.
func (c *Client) Model() string {
	return c.model
}

// Complete returns the first choice's message content.
func (c *Client) Complete(ctx context.Context, p Prompt) (string, error) {
	if c.apiKey == "" {
		return "", domain.ErrAPIKeyMissing
	}

	user := sdk.UserMessage(p.Text)
	if p.ImageDataURL != "" {
		user = sdk.UserMessage([]sdk.ChatCompletionContentPartUnionParam{
			sdk.TextContentPart(p.Text),
			sdk.ImageContentPart(sdk.ChatCompletionContentPartImageImageURLParam{URL: p.ImageDataURL}),
		})
	}
	params := sdk.ChatCompletionNewParams{
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(systemPrompt),
			user,
		},
		Model: shared.ChatModel(c.model),
	}
	if p.JSON {
		params.ResponseFormat = sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	started := time.Now()
	completion, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: openai chat completion: %v", domain.ErrProviderFailure, err)
	}
	c.logger.Debug().
		Str("model", c.model).
		Bool("vision", p.ImageDataURL != "").
		Dur("latency", time.Since(started)).
		Msg("openai: chat completion")

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", domain.ErrEmptyResponse
	}
	return completion.Choices[0].Message.Content, nil
}

// NormalizeModel maps free-form model names onto supported ids. The second
// result is "alias" or "defaulted" when the input was rewritten.
func NormalizeModel(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return DefaultModel, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := modelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := modelAliases[normalized]; ok {
		return alias, "alias"
	}
	return DefaultModel, "defaulted"
}
