package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"detailgen/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type stubSettings struct {
	settings domain.Settings
}

func (s *stubSettings) LoadSettings(context.Context) (domain.Settings, error) {
	return s.settings, nil
}

type recordingHistory struct {
	mu    sync.Mutex
	items []domain.GeneratedContent
}

func (h *recordingHistory) AddHistory(_ context.Context, c domain.GeneratedContent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, c)
	return nil
}

func jsonResponse(status int, body any) *http.Response {
	data, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(data)),
	}
}

func textAnswer(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	}
}

func imageAnswer(mime, data string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{
				map[string]any{"text": "here"},
				map[string]any{"inlineData": map[string]any{"mimeType": mime, "data": data}},
			}}},
		},
	}
}

func keyedSettings() *stubSettings {
	s := domain.DefaultSettings()
	s.APIKey = "test-key"
	return &stubSettings{settings: s}
}

func newTestService(settings *stubSettings, transport roundTripFunc) *Service {
	var client *http.Client
	if transport != nil {
		client = &http.Client{Transport: transport}
	}
	n := int64(0)
	return NewService(Options{
		Settings:    settings,
		HTTPClient:  client,
		Concurrency: 2,
		Now:         func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
		NewID: func() string {
			return fmt.Sprintf("id-%d", atomic.AddInt64(&n, 1))
		},
	})
}

func decodeRequest(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return body
}

func firstParts(body map[string]any) []any {
	contents := body["contents"].([]any)
	return contents[0].(map[string]any)["parts"].([]any)
}

func TestAnalyzeWithoutKeyReturnsDeterministicMock(t *testing.T) {
	svc := newTestService(&stubSettings{settings: domain.DefaultSettings()}, func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected without a key")
		return nil, nil
	})
	req := AnalyzeRequest{ImageBase64: "AAAA", MimeType: "image/png", Platform: domain.PlatformAmazon}
	first, err := svc.AnalyzeProduct(context.Background(), req)
	if err != nil {
		t.Fatalf("AnalyzeProduct returned error: %v", err)
	}
	second, _ := svc.AnalyzeProduct(context.Background(), req)
	if first.Category != second.Category || first.Description != second.Description {
		t.Fatalf("mock analysis not deterministic: %+v vs %+v", first, second)
	}
	want := MockAnalysis("AAAA", domain.LanguageEnglish)
	if first.Category != want.Category || len(first.Specifications) != 5 {
		t.Fatalf("analysis = %+v, want english mock", first)
	}
}

func TestAnalyzeRejectsEmptyImage(t *testing.T) {
	svc := newTestService(keyedSettings(), nil)
	if _, err := svc.AnalyzeProduct(context.Background(), AnalyzeRequest{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAnalyzeParsesFencedAnswer(t *testing.T) {
	var gotURL, gotKey string
	var parts []any
	svc := newTestService(keyedSettings(), func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		gotKey = r.Header.Get("x-goog-api-key")
		parts = firstParts(decodeRequest(t, r))
		return jsonResponse(http.StatusOK, textAnswer("```json\n{\"category\":\"Desk Lamp\",\"description\":\"A lamp.\",\"suggestions\":[\"s1\"],\"specifications\":[\"Color: White\"]}\n```")), nil
	})

	got, err := svc.AnalyzeProduct(context.Background(), AnalyzeRequest{ImageBase64: "AAAA", MimeType: "image/png", Platform: domain.PlatformShopee})
	if err != nil {
		t.Fatalf("AnalyzeProduct returned error: %v", err)
	}
	if got.Category != "Desk Lamp" || got.Specifications[0] != "Color: White" {
		t.Fatalf("analysis = %+v", got)
	}
	if gotURL != "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("url = %q", gotURL)
	}
	if gotKey != "test-key" {
		t.Fatalf("x-goog-api-key = %q", gotKey)
	}
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want image then text", len(parts))
	}
	inline := parts[0].(map[string]any)["inlineData"].(map[string]any)
	if inline["mimeType"] != "image/png" || inline["data"] != "AAAA" {
		t.Fatalf("inlineData = %v", inline)
	}
	if parts[1].(map[string]any)["text"] != analysisPromptTW {
		t.Fatalf("shopee should use the traditional chinese prompt")
	}
}

func TestAnalyzeNormalizesFieldByField(t *testing.T) {
	mock := MockAnalysis("AAAA", domain.LanguageEnglish)
	tests := []struct {
		name     string
		answer   string
		category string
		desc     string
		specs    []string
		mockSugg bool
	}{
		{
			name:     "mixed specification shapes",
			answer:   `{"category":"Desk Lamp","description":"A lamp.","suggestions":["s1"],"specifications":[{"name":"Color","value":"White"},"Power: 5W"]}`,
			category: "Desk Lamp",
			desc:     "A lamp.",
			specs:    []string{"Color: White", "Power: 5W"},
		},
		{
			name:     "specifications object",
			answer:   `{"category":"Desk Lamp","description":"A lamp.","suggestions":["s1"],"specifications":{"Power":"5W","Color":"White"}}`,
			category: "Desk Lamp",
			desc:     "A lamp.",
			specs:    []string{"Color: White", "Power: 5W"},
		},
		{
			name:     "description only",
			answer:   `{"description":"Only a description."}`,
			category: mock.Category,
			desc:     "Only a description.",
			specs:    mock.Specifications,
			mockSugg: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(keyedSettings(), func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, textAnswer(tc.answer)), nil
			})
			got, err := svc.AnalyzeProduct(context.Background(), AnalyzeRequest{ImageBase64: "AAAA", Platform: domain.PlatformAmazon})
			if err != nil {
				t.Fatalf("AnalyzeProduct returned error: %v", err)
			}
			if got.Category != tc.category || got.Description != tc.desc {
				t.Fatalf("analysis = %+v", got)
			}
			if strings.Join(got.Specifications, "|") != strings.Join(tc.specs, "|") {
				t.Fatalf("specifications = %v, want %v", got.Specifications, tc.specs)
			}
			if got.Suggestions == nil || (tc.mockSugg && len(got.Suggestions) != len(mock.Suggestions)) {
				t.Fatalf("suggestions = %v", got.Suggestions)
			}
		})
	}
}

func TestAnalyzeFallsBackOnProviderError(t *testing.T) {
	svc := newTestService(keyedSettings(), func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, map[string]any{"error": map[string]any{"message": "boom"}}), nil
	})
	got, err := svc.AnalyzeProduct(context.Background(), AnalyzeRequest{ImageBase64: "AAAA", Platform: domain.PlatformTaobao})
	if err != nil {
		t.Fatalf("AnalyzeProduct returned error: %v", err)
	}
	want := MockAnalysis("AAAA", domain.LanguageSimplifiedChinese)
	if got.Category != want.Category || got.Description != want.Description {
		t.Fatalf("analysis = %+v, want mock %+v", got, want)
	}
}

func TestZeaburSendsBothAuthHeaders(t *testing.T) {
	settings := keyedSettings()
	settings.settings.APIProvider = domain.ProviderZeabur
	var auth, goog, url string
	svc := newTestService(settings, func(r *http.Request) (*http.Response, error) {
		auth = r.Header.Get("Authorization")
		goog = r.Header.Get("x-goog-api-key")
		url = r.URL.String()
		return jsonResponse(http.StatusOK, textAnswer(`{"title":"T","description":"D","specifications":[]}`)), nil
	})
	svc.GenerateText(context.Background(), TextRequest{Language: domain.LanguageEnglish})
	if auth != "Bearer test-key" || goog != "test-key" {
		t.Fatalf("headers = %q / %q", auth, goog)
	}
	if !strings.HasPrefix(url, "https://hnd1.aihub.zeabur.ai/gemini/v1beta/models/") {
		t.Fatalf("url = %q", url)
	}
}

func TestTextPromptLines(t *testing.T) {
	product := domain.Product{
		Category: "台灯",
		Analysis: domain.ProductAnalysis{Description: "desc", Specifications: []string{"a", "b"}},
	}
	zh := TextPrompt(TextRequest{Product: product, Platform: domain.PlatformTaobao, Style: domain.StyleCute, Language: domain.LanguageSimplifiedChinese, BrandName: "Acme", ExtraInfo: "  "})
	if !strings.Contains(zh, "品牌名：Acme\n") {
		t.Fatal("zh prompt missing brand line")
	}
	if strings.Contains(zh, "补充信息") {
		t.Fatal("blank extra info should be omitted")
	}
	if !strings.Contains(zh, "产品规格：a、b") || !strings.Contains(zh, "淘宝平台的商品文案（可爱萌系风格）") {
		t.Fatalf("zh prompt = %s", zh)
	}

	en := TextPrompt(TextRequest{Product: product, Platform: domain.PlatformAmazon, Style: domain.StyleMinimal, Language: domain.LanguageEnglish, ExtraInfo: " waterproof "})
	if strings.Contains(en, "Brand Name") {
		t.Fatal("blank brand should be omitted")
	}
	if !strings.Contains(en, "Additional Info: waterproof\n") || !strings.Contains(en, "Specifications: a, b") {
		t.Fatalf("en prompt = %s", en)
	}
}

func TestGenerateTextNormalizesShapes(t *testing.T) {
	answer := `{"productName":{"name":"Smart Lamp"},"productDescription":"Bright.","specifications":["Power: 5W",{"value":"Color: Black"}]}`
	svc := newTestService(keyedSettings(), func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, textAnswer(answer)), nil
	})
	got := svc.GenerateText(context.Background(), TextRequest{Language: domain.LanguageEnglish})
	if got.Title != "Smart Lamp" || got.Description != "Bright." {
		t.Fatalf("texts = %+v", got)
	}
	if len(got.Specifications) != 2 || got.Specifications[1] != "Color: Black" {
		t.Fatalf("specifications = %v", got.Specifications)
	}
}

func TestMockTexts(t *testing.T) {
	req := TextRequest{
		Product: domain.Product{Analysis: domain.ProductAnalysis{
			Category:       "desk lamp",
			Description:    "A lamp.",
			Suggestions:    []string{"one", "two"},
			Specifications: []string{"Color: White"},
		}},
		Platform: domain.PlatformAmazon,
		Style:    domain.StyleMinimal,
		Language: domain.LanguageEnglish,
	}
	got := MockTexts(req)
	if got.Title != "desk lamp - Minimal Style Amazon Exclusive" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.Description != "A lamp.\n\none\ntwo" {
		t.Fatalf("description = %q", got.Description)
	}

	req.Language = domain.LanguageTraditionalChinese
	req.Platform = domain.PlatformShopee
	req.Product.Analysis.Category = "檯燈"
	if got := MockTexts(req).Title; got != "檯燈 - 極簡風格 蝦皮專供" {
		t.Fatalf("zh-TW title = %q", got)
	}
}

func TestGenerateImageRequestShape(t *testing.T) {
	var body map[string]any
	var url string
	svc := newTestService(keyedSettings(), func(r *http.Request) (*http.Response, error) {
		url = r.URL.String()
		body = decodeRequest(t, r)
		return jsonResponse(http.StatusOK, imageAnswer("", "QUJD")), nil
	})
	got := svc.GenerateImage(context.Background(), ImageRequest{
		Prompt:   "台灯",
		Style:    domain.StyleApple,
		Platform: domain.PlatformJD,
		Type:     domain.ImageTypeDetail,
		Model:    domain.ModelNanaBanana,
	})
	if got != "data:image/png;base64,QUJD" {
		t.Fatalf("url = %q", got)
	}
	if !strings.Contains(url, "gemini-3-pro-image-preview") {
		t.Fatalf("model url = %q", url)
	}
	cfg := body["generationConfig"].(map[string]any)
	if cfg["imageConfig"].(map[string]any)["aspectRatio"] != "3:4" {
		t.Fatalf("generationConfig = %v", cfg)
	}
	if mods := cfg["responseModalities"].([]any); len(mods) != 1 || mods[0] != "IMAGE" {
		t.Fatalf("responseModalities = %v", mods)
	}
	text := firstParts(body)[0].(map[string]any)["text"]
	want := "台灯，" + imageStylePhrases[domain.StyleApple] + "，" + imagePlatformPhrases[domain.PlatformJD] + "，高质量产品图片"
	if text != want {
		t.Fatalf("prompt = %v, want %q", text, want)
	}
}

func TestEditImageAspectFollowsPrompt(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{prompt: "brighter background", want: "1:1"},
		{prompt: "make it 3:4 portrait", want: "3:4"},
	}
	for _, tc := range tests {
		var aspect any
		svc := newTestService(keyedSettings(), func(r *http.Request) (*http.Response, error) {
			body := decodeRequest(t, r)
			aspect = body["generationConfig"].(map[string]any)["imageConfig"].(map[string]any)["aspectRatio"]
			return jsonResponse(http.StatusOK, imageAnswer("image/jpeg", "QUJD")), nil
		})
		got := svc.EditImage(context.Background(), EditRequest{ImageBase64: "AAAA", MimeType: "image/png", Prompt: tc.prompt})
		if got != "data:image/jpeg;base64,QUJD" {
			t.Fatalf("url = %q", got)
		}
		if aspect != tc.want {
			t.Fatalf("aspect for %q = %v, want %s", tc.prompt, aspect, tc.want)
		}
	}
}

func TestImageWithoutInlineDataFallsBack(t *testing.T) {
	svc := newTestService(keyedSettings(), func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, textAnswer("sorry, no image")), nil
	})
	got := svc.GenerateImage(context.Background(), ImageRequest{Prompt: "lamp", Type: domain.ImageTypeMain})
	if got != MockImage("lamp", domain.ImageTypeMain) {
		t.Fatal("expected mock placeholder")
	}
}

func TestDetailPageFallsBackFieldByField(t *testing.T) {
	answer := `{
	  "buyBox": {"title": "Acme Lamp", "price": "", "cta": {"text": "Order"}},
	  "valueProposition": {"painPoints": ["Too dark"], "solutions": "not a list"},
	  "socialProof": {"reviews": ["Love it", {"content": "Fine", "rating": 3}]},
	  "serviceGuarantee": {"faq": [{"q": "Battery?", "a": "8h"}]}
	}`
	var body map[string]any
	svc := newTestService(keyedSettings(), func(r *http.Request) (*http.Response, error) {
		body = decodeRequest(t, r)
		return jsonResponse(http.StatusOK, textAnswer(answer)), nil
	})
	req := DetailPageRequest{
		Product:  domain.Product{Category: "Lamp"},
		Platform: domain.PlatformAmazon,
		Style:    domain.StyleMinimal,
		Language: domain.LanguageEnglish,
		Model:    domain.ModelNanoBanana,
	}
	got := svc.GenerateDetailPage(context.Background(), req)
	mock := MockDetailPage(req.Product, req.Style, req.Language, "")

	if body["generationConfig"].(map[string]any)["responseMimeType"] != "application/json" {
		t.Fatalf("generationConfig = %v", body["generationConfig"])
	}
	if got.BuyBox.Title != "Acme Lamp" || got.BuyBox.CTA != "Order" {
		t.Fatalf("buyBox = %+v", got.BuyBox)
	}
	if got.BuyBox.Price != mock.BuyBox.Price || got.BuyBox.OriginalPrice != mock.BuyBox.OriginalPrice {
		t.Fatalf("price fallback = %+v", got.BuyBox)
	}
	if len(got.ValueProposition.PainPoints) != 1 || got.ValueProposition.Solutions[0] != mock.ValueProposition.Solutions[0] {
		t.Fatalf("valueProposition = %+v", got.ValueProposition)
	}
	if got.SocialProof.Reviews[0] != (domain.Review{Text: "Love it", Rating: 5}) || got.SocialProof.Reviews[1].Rating != 3 {
		t.Fatalf("reviews = %+v", got.SocialProof.Reviews)
	}
	if got.SocialProof.SalesData != mock.SocialProof.SalesData {
		t.Fatalf("salesData = %q", got.SocialProof.SalesData)
	}
	if got.ServiceGuarantee.FAQ[0] != (domain.FAQ{Question: "Battery?", Answer: "8h"}) {
		t.Fatalf("faq = %+v", got.ServiceGuarantee.FAQ)
	}
	if got.CrossSell.Recommendations[0] != "Recommended Product 1" {
		t.Fatalf("recommendations = %v", got.CrossSell.Recommendations)
	}
}

func TestMockDetailPageLocalized(t *testing.T) {
	product := domain.Product{Category: "檯燈"}
	tw := MockDetailPage(product, domain.StyleLuxury, domain.LanguageTraditionalChinese, "Acme")
	if tw.BuyBox.Title != "Acme 檯燈 - 高品質輕奢高端風格" || tw.BuyBox.CTA != "立即購買" {
		t.Fatalf("zh-TW buyBox = %+v", tw.BuyBox)
	}
	cn := MockDetailPage(product, domain.StyleApple, domain.LanguageSimplifiedChinese, "")
	if cn.BuyBox.Title != "檯燈 - 高品质Apple 科技风风格" || cn.ServiceGuarantee.Shipping != "全国包邮，3-5天送达" {
		t.Fatalf("zh-CN page = %+v", cn)
	}
}

func TestOpenAIProviderFallsBackForImages(t *testing.T) {
	settings := keyedSettings()
	settings.settings.APIProvider = domain.ProviderOpenAI
	svc := newTestService(settings, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request to %s", r.URL)
		return nil, nil
	})
	got := svc.GenerateImage(context.Background(), ImageRequest{Prompt: "lamp", Type: domain.ImageTypeScene})
	if got != MockImage("lamp", domain.ImageTypeScene) {
		t.Fatal("openai image generation should use the mock placeholder")
	}
}

func TestGeneratePipeline(t *testing.T) {
	var inFlight, peak int32
	svc := newTestService(keyedSettings(), func(r *http.Request) (*http.Response, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		body := decodeRequest(t, r)
		cfg, _ := body["generationConfig"].(map[string]any)
		if _, ok := cfg["responseModalities"]; ok {
			return jsonResponse(http.StatusOK, imageAnswer("image/png", "QUJD")), nil
		}
		return nil, errors.New("text offline")
	})
	history := &recordingHistory{}
	svc.history = history

	got, err := svc.Generate(context.Background(), GenerateRequest{
		Product:  domain.Product{ID: "p1", Category: "Lamp", Analysis: domain.ProductAnalysis{Category: "Lamp"}},
		Language: domain.LanguageEnglish,
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(got.Images) != 7 {
		t.Fatalf("images = %d, want 5 main + 2 detail", len(got.Images))
	}
	kinds := make([]domain.ImageType, len(got.Images))
	for i, img := range got.Images {
		kinds[i] = img.Type
		if img.URL != "data:image/png;base64,QUJD" {
			t.Fatalf("image %d url = %q", i, img.URL)
		}
	}
	want := []domain.ImageType{"main", "main", "main", "scene", "main", "detail", "detail"}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("image types = %v, want %v", kinds, want)
		}
	}
	if !strings.Contains(got.Images[5].Prompt, "Visualization 1") {
		t.Fatalf("detail prompt = %q", got.Images[5].Prompt)
	}
	if got.DetailPage == nil || got.DetailPage.BuyBox.CTA != "Buy Now" {
		t.Fatalf("detail page should fall back to the english mock: %+v", got.DetailPage)
	}
	if got.ProductID != "p1" || got.Platform != domain.PlatformAmazon {
		t.Fatalf("content = %+v", got)
	}
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", p)
	}
	if len(history.items) != 1 || history.items[0].ID != got.ID {
		t.Fatalf("history = %d items", len(history.items))
	}
}

type failingHistory struct{}

func (failingHistory) AddHistory(context.Context, domain.GeneratedContent) error {
	return errors.New("history backend down")
}

func TestGenerateKeepsListingWhenHistoryFails(t *testing.T) {
	svc := newTestService(&stubSettings{settings: domain.DefaultSettings()}, nil)
	svc.history = failingHistory{}
	got, err := svc.Generate(context.Background(), GenerateRequest{
		Product:          domain.Product{Category: "Lamp"},
		Language:         domain.LanguageEnglish,
		MainImageCount:   1,
		DetailImageCount: 1,
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got.ID == "" || len(got.Images) != 2 || got.DetailPage == nil {
		t.Fatalf("content = %+v", got)
	}
}

func TestMainImagePrompt(t *testing.T) {
	prompt, kind := MainImagePrompt("Lamp", 3)
	if kind != domain.ImageTypeScene || !strings.HasPrefix(prompt, "Lamp，") {
		t.Fatalf("MainImagePrompt(3) = %q, %s", prompt, kind)
	}
	prompt, kind = MainImagePrompt("Lamp", 5)
	if kind != domain.ImageTypeMain || !strings.Contains(prompt, "变体2") {
		t.Fatalf("MainImagePrompt(5) = %q, %s", prompt, kind)
	}
}
