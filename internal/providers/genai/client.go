package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"detailgen/internal/domain"
	"detailgen/internal/infra"
)

const (
	GoogleBaseURL = "https://generativelanguage.googleapis.com"
	ZeaburBaseURL = "https://hnd1.aihub.zeabur.ai/gemini"

	defaultTimeout = 120 * time.Second
)

// Options controls how the Gemini client is configured.
type Options struct {
	Provider   domain.APIProvider
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client speaks the Gemini generateContent contract against Google directly
// or through the Zeabur AI Hub proxy.
type Client struct {
	provider   domain.APIProvider
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// InlineData is a base64 payload with its MIME type.
type InlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

// Part is one text or inline-data segment of a content turn.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// Content is a role-tagged list of parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// ImageConfig selects generated image geometry.
type ImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

// GenerationConfig tunes the response shape.
type GenerationConfig struct {
	ResponseMimeType   string       `json:"responseMimeType,omitempty"`
	ResponseModalities []string     `json:"responseModalities,omitempty"`
	ImageConfig        *ImageConfig `json:"imageConfig,omitempty"`
}

// Request is the generateContent request body.
type Request struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate is one model answer.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// Response is the generateContent response body.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client. A nil HTTP client is replaced with a
// default one with a long timeout.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	provider := opts.Provider
	if provider != domain.ProviderZeabur {
		provider = domain.ProviderGoogle
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		l := infra.Logger(zerolog.New(io.Discard))
		logger = &l
	}

	return &Client{
		provider:   provider,
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    ResolveBaseURL(provider, opts.BaseURL),
		httpClient: client,
		logger:     logger,
	}
}

// ResolveBaseURL returns custom when non-blank, else the provider default.
func ResolveBaseURL(provider domain.APIProvider, custom string) string {
	if trimmed := strings.TrimSpace(custom); trimmed != "" {
		return strings.TrimRight(trimmed, "/")
	}
	if provider == domain.ProviderZeabur {
		return ZeaburBaseURL
	}
	return GoogleBaseURL
}

// AuthHeaders returns the headers the provider expects for authentication.
func (c *Client) AuthHeaders() http.Header {
	h := http.Header{}
	if c.provider == domain.ProviderZeabur {
		h.Set("Authorization", "Bearer "+c.apiKey)
	}
	h.Set("x-goog-api-key", c.apiKey)
	return h
}

// Endpoint returns the generateContent URL for model.
func (c *Client) Endpoint(model string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(model))
}

// GenerateContent posts req to model and decodes the response.
func (c *Client) GenerateContent(ctx context.Context, model string, req Request) (*Response, error) {
	if c.apiKey == "" {
		return nil, domain.ErrAPIKeyMissing
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(model), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for key, values := range c.AuthHeaders() {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: invoke gemini: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("provider", string(c.provider)).
		Str("model", model).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(started)).
		Msg("genai: generateContent")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		var apiErr errorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%w: gemini status %d: %s", domain.ErrProviderFailure, resp.StatusCode, apiErr.Error.Message)
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			return nil, fmt.Errorf("%w: gemini status %d: %s", domain.ErrProviderFailure, resp.StatusCode, text)
		}
		return nil, fmt.Errorf("%w: gemini status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode gemini response: %v", domain.ErrProviderFailure, err)
	}
	return &out, nil
}

// Text returns the first part text of the first candidate.
func (r *Response) Text() (string, error) {
	if r == nil || len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", domain.ErrEmptyResponse
	}
	text := r.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyResponse
	}
	return text, nil
}

// InlineImage returns the first inline-data part of the first candidate.
// A missing MIME type defaults to image/png.
func (r *Response) InlineImage() (*InlineData, error) {
	if r == nil || len(r.Candidates) == 0 {
		return nil, domain.ErrEmptyResponse
	}
	for _, part := range r.Candidates[0].Content.Parts {
		if part.InlineData == nil || part.InlineData.Data == "" {
			continue
		}
		mime := part.InlineData.MimeType
		if mime == "" {
			mime = "image/png"
		}
		return &InlineData{MimeType: mime, Data: part.InlineData.Data}, nil
	}
	return nil, fmt.Errorf("%w: no image data in response", domain.ErrEmptyResponse)
}

// DataURL renders inline data as a data: URL.
func (d *InlineData) DataURL() string {
	return "data:" + d.MimeType + ";base64," + d.Data
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart builds an inline image part from raw base64.
func ImagePart(mimeType, base64Data string) Part {
	return Part{InlineData: &InlineData{MimeType: mimeType, Data: base64Data}}
}
