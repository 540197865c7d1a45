package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"strings"
	"testing"

	"detailgen/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		provider domain.APIProvider
		custom   string
		want     string
	}{
		{name: "google default", provider: domain.ProviderGoogle, want: GoogleBaseURL},
		{name: "zeabur default", provider: domain.ProviderZeabur, want: ZeaburBaseURL},
		{name: "blank custom ignored", provider: domain.ProviderZeabur, custom: "   ", want: ZeaburBaseURL},
		{name: "custom wins", provider: domain.ProviderGoogle, custom: "https://proxy.example.com/", want: "https://proxy.example.com"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveBaseURL(tc.provider, tc.custom); got != tc.want {
				t.Fatalf("ResolveBaseURL() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGenerateContentHeadersPerProvider(t *testing.T) {
	tests := []struct {
		name       string
		provider   domain.APIProvider
		wantURL    string
		wantBearer string
	}{
		{
			name:     "google",
			provider: domain.ProviderGoogle,
			wantURL:  "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent",
		},
		{
			name:       "zeabur",
			provider:   domain.ProviderZeabur,
			wantURL:    "https://hnd1.aihub.zeabur.ai/gemini/v1beta/models/gemini-2.5-flash:generateContent",
			wantBearer: "Bearer secret",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured *http.Request
			var body Request
			client := NewClient(Options{
				Provider: tc.provider,
				APIKey:   "secret",
				HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					captured = r
					if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
						t.Fatalf("decode body: %v", err)
					}
					return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`), nil
				})},
			})
			resp, err := client.GenerateContent(context.Background(), "gemini-2.5-flash", Request{
				Contents: []Content{{Parts: []Part{TextPart("hi")}}},
			})
			if err != nil {
				t.Fatalf("GenerateContent returned error: %v", err)
			}
			if captured.URL.String() != tc.wantURL {
				t.Fatalf("url = %q, want %q", captured.URL.String(), tc.wantURL)
			}
			if got := captured.Header.Get("x-goog-api-key"); got != "secret" {
				t.Fatalf("x-goog-api-key = %q, want secret", got)
			}
			if got := captured.Header.Get("Authorization"); got != tc.wantBearer {
				t.Fatalf("Authorization = %q, want %q", got, tc.wantBearer)
			}
			if len(body.Contents) != 1 || body.Contents[0].Parts[0].Text != "hi" {
				t.Fatalf("unexpected body: %+v", body)
			}
			text, err := resp.Text()
			if err != nil || text != "hello" {
				t.Fatalf("Text() = %q, %v", text, err)
			}
		})
	}
}

func TestGenerateContentMissingKey(t *testing.T) {
	client := NewClient(Options{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			t.Fatalf("no request expected")
			return nil, nil
		})},
	})
	_, err := client.GenerateContent(context.Background(), "m", Request{})
	if !errors.Is(err, domain.ErrAPIKeyMissing) {
		t.Fatalf("err = %v, want ErrAPIKeyMissing", err)
	}
	if err.Error() != "API Key is required" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestGenerateContentNon2xx(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "structured", body: `{"error":{"code":403,"message":"key invalid"}}`, want: "key invalid"},
		{name: "raw", body: "upstream exploded", want: "upstream exploded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := NewClient(Options{
				APIKey: "k",
				HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					return jsonResponse(http.StatusForbidden, tc.body), nil
				})},
			})
			_, err := client.GenerateContent(context.Background(), "m", Request{})
			if !errors.Is(err, domain.ErrProviderFailure) {
				t.Fatalf("err = %v, want ErrProviderFailure", err)
			}
			if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %q, want status and %q", err.Error(), tc.want)
			}
		})
	}
}

func TestResponseInlineImage(t *testing.T) {
	raw := `{"candidates":[{"content":{"parts":[{"text":"here you go"},{"inlineData":{"data":"QUJD"}}]}}]}`
	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	img, err := resp.InlineImage()
	if err != nil {
		t.Fatalf("InlineImage returned error: %v", err)
	}
	if got := img.DataURL(); got != "data:image/png;base64,QUJD" {
		t.Fatalf("DataURL() = %q", got)
	}

	var empty Response
	if _, err := empty.InlineImage(); !errors.Is(err, domain.ErrEmptyResponse) {
		t.Fatalf("empty InlineImage err = %v", err)
	}
	if _, err := empty.Text(); !errors.Is(err, domain.ErrEmptyResponse) {
		t.Fatalf("empty Text err = %v", err)
	}
}

func TestRenderPlaceholderDeterministic(t *testing.T) {
	seed := Seed("prompt", "detail")
	if seed != Seed("prompt", "detail") {
		t.Fatalf("Seed not deterministic")
	}
	w, h := PlaceholderSize("3:4")
	a := RenderPlaceholder(w, h, seed)
	b := RenderPlaceholder(w, h, seed)
	if !bytes.Equal(a, b) {
		t.Fatalf("RenderPlaceholder not deterministic")
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(a))
	if err != nil {
		t.Fatalf("decode placeholder: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 1200 {
		t.Fatalf("placeholder size = %dx%d, want 800x1200", cfg.Width, cfg.Height)
	}
}
