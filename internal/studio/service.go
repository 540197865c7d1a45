// Package studio turns a product photo into a listing: analysis, copy,
// carousel images and a five-module detail page. Every model call falls back
// to deterministic mock output when no key is configured or the call fails.
package studio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"detailgen/internal/domain"
	"detailgen/internal/infra"
	"detailgen/internal/providers/genai"
	"detailgen/internal/providers/openai"
)

// analysisModel serves photo analysis and listing copy for both variants.
const analysisModel = "gemini-2.5-flash"

// HistoryRecorder receives every completed listing.
type HistoryRecorder interface {
	AddHistory(ctx context.Context, content domain.GeneratedContent) error
}

// Defaults supply credentials from the environment when the settings carry
// none.
type Defaults struct {
	GeminiAPIKey  string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// Options configures a Service.
type Options struct {
	Settings    domain.SettingsRepository
	History     HistoryRecorder
	Defaults    Defaults
	HTTPClient  *http.Client
	Logger      *infra.Logger
	Concurrency int
	Now         func() time.Time
	NewID       func() string
}

// Service runs the generation operations against the configured provider.
type Service struct {
	settings    domain.SettingsRepository
	history     HistoryRecorder
	defaults    Defaults
	httpClient  *http.Client
	logger      *infra.Logger
	concurrency int
	now         func() time.Time
	newID       func() string
}

func NewService(opts Options) *Service {
	s := &Service{
		settings:    opts.Settings,
		history:     opts.History,
		defaults:    opts.Defaults,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		concurrency: opts.Concurrency,
		now:         opts.Now,
		newID:       opts.NewID,
	}
	if s.logger == nil {
		l := infra.Logger(zerolog.New(io.Discard))
		s.logger = &l
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	return s
}

// session binds one operation to the settings and provider client current
// at its start.
type session struct {
	provider domain.APIProvider
	settings domain.Settings
	hasKey   bool
	gemini   *genai.Client
	openai   *openai.Client
}

func (s *Service) session(ctx context.Context) session {
	settings := domain.DefaultSettings()
	if s.settings != nil {
		loaded, err := s.settings.LoadSettings(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("studio: settings unavailable, using defaults")
		} else {
			settings = loaded
		}
	}

	provider := domain.NormalizeProvider(string(settings.APIProvider))
	key := strings.TrimSpace(settings.APIKey)
	sess := session{provider: provider, settings: settings}

	switch provider {
	case domain.ProviderOpenAI:
		if key == "" {
			key = s.defaults.OpenAIAPIKey
		}
		sess.openai = openai.NewClient(openai.Options{
			APIKey:     key,
			BaseURL:    firstNonBlank(settings.BaseURL, s.defaults.OpenAIBaseURL),
			Model:      s.defaults.OpenAIModel,
			HTTPClient: s.httpClient,
			Logger:     s.logger,
		})
	default:
		if key == "" {
			key = s.defaults.GeminiAPIKey
		}
		sess.gemini = genai.NewClient(genai.Options{
			Provider:   provider,
			APIKey:     key,
			BaseURL:    firstNonBlank(settings.BaseURL, s.defaults.GeminiBaseURL),
			HTTPClient: s.httpClient,
			Logger:     s.logger,
		})
	}
	sess.hasKey = strings.TrimSpace(key) != ""
	return sess
}

// text sends a text prompt, optionally conditioned on an image, and returns
// the first text answer.
func (sess session) text(ctx context.Context, model, prompt string, image *genai.InlineData, jsonMode bool) (string, error) {
	if sess.openai != nil {
		p := openai.Prompt{Text: prompt, JSON: true}
		if image != nil {
			p.ImageDataURL = image.DataURL()
		}
		return sess.openai.Complete(ctx, p)
	}

	parts := make([]genai.Part, 0, 2)
	if image != nil {
		parts = append(parts, genai.ImagePart(image.MimeType, image.Data))
	}
	parts = append(parts, genai.TextPart(prompt))
	req := genai.Request{Contents: []genai.Content{{Parts: parts}}}
	if jsonMode {
		req.GenerationConfig = &genai.GenerationConfig{ResponseMimeType: "application/json"}
	}
	resp, err := sess.gemini.GenerateContent(ctx, model, req)
	if err != nil {
		return "", err
	}
	return resp.Text()
}

// image requests an image answer and returns it as a data URL.
func (sess session) image(ctx context.Context, model string, parts []genai.Part, aspect string) (string, error) {
	if sess.gemini == nil {
		return "", fmt.Errorf("%w: image generation with provider %s", domain.ErrUnsupported, sess.provider)
	}
	resp, err := sess.gemini.GenerateContent(ctx, model, genai.Request{
		Contents: []genai.Content{{Parts: parts}},
		GenerationConfig: &genai.GenerationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &genai.ImageConfig{AspectRatio: aspect},
		},
	})
	if err != nil {
		return "", err
	}
	img, err := resp.InlineImage()
	if err != nil {
		return "", err
	}
	return img.DataURL(), nil
}

func (sess session) modelName(model string) string {
	if sess.openai != nil {
		return sess.openai.Model()
	}
	return model
}

// fallback records why mock output replaced a model answer.
func (s *Service) fallback(op string, sess session, model string, err error) {
	if !sess.hasKey {
		s.logger.Debug().Str("op", op).Str("provider", string(sess.provider)).Msg("studio: no api key, using mock output")
		return
	}
	s.logger.Warn().
		Err(err).
		Str("op", op).
		Str("provider", string(sess.provider)).
		Str("model", sess.modelName(model)).
		Msg("studio: model call failed, using mock output")
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
