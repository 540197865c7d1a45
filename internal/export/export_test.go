package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"detailgen/internal/domain"
	"detailgen/internal/imageutil"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.UTC)

func newTestExporter(transport roundTripFunc) *Exporter {
	opts := Options{Now: func() time.Time { return fixedNow }}
	if transport != nil {
		opts.HTTPClient = &http.Client{Transport: transport}
	}
	return New(opts)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		hint string
		ext  string
		want string
	}{
		{hint: "main", ext: "png", want: "img-1-regenerated-2025-03-04T05-06-07-890Z.png"},
		{hint: "", ext: ".jpg", want: "image-2025-03-04T05-06-07-890Z.jpg"},
		{hint: "Desk Lamp/Pro", ext: "zip", want: "Desk-Lamp-Pro-2025-03-04T05-06-07-890Z.zip"},
		{hint: "檯燈", ext: "webp", want: "檯燈-2025-03-04T05-06-07-890Z.webp"},
	}
	for _, tc := range tests {
		if got := Filename(tc.hint, tc.ext, fixedNow); got != tc.want {
			t.Fatalf("Filename(%q, %q) = %q, want %q", tc.hint, tc.ext, got, tc.want)
		}
	}
}

func TestImageFromDataURL(t *testing.T) {
	e := newTestExporter(nil)
	f, err := e.Image(context.Background(), domain.GeneratedImage{ID: "img-7", URL: imageutil.DataURL("image/jpeg", []byte{1, 2}), Type: domain.ImageTypeDetail}, "", "")
	if err != nil {
		t.Fatalf("Image returned error: %v", err)
	}
	if f.Name != "img-7-2025-03-04T05-06-07-890Z.jpeg" || f.MimeType != "image/jpeg" || !bytes.Equal(f.Data, []byte{1, 2}) {
		t.Fatalf("file = %+v", f)
	}
}

func TestImageFetchesRemoteURL(t *testing.T) {
	e := newTestExporter(func(r *http.Request) (*http.Response, error) {
		if r.URL.String() != "https://cdn.example.com/a.webp" {
			t.Fatalf("url = %s", r.URL)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"image/webp"}},
			Body:       io.NopCloser(bytes.NewReader([]byte("webp"))),
		}, nil
	})
	f, err := e.Image(context.Background(), domain.GeneratedImage{URL: "https://cdn.example.com/a.webp"}, "main", "")
	if err != nil {
		t.Fatalf("Image returned error: %v", err)
	}
	if !strings.HasSuffix(f.Name, ".webp") || string(f.Data) != "webp" {
		t.Fatalf("file = %+v", f)
	}
}

func TestImageRemoteFailure(t *testing.T) {
	e := newTestExporter(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	})
	if _, err := e.Image(context.Background(), domain.GeneratedImage{URL: "https://cdn.example.com/missing.png"}, "main", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestSaveRequiresDirectory(t *testing.T) {
	e := newTestExporter(nil)
	if _, err := e.Save(context.Background(), "", File{Name: "a.png"}); !errors.Is(err, domain.ErrNoExportDir) {
		t.Fatalf("err = %v, want ErrNoExportDir", err)
	}
}

func TestAutoSave(t *testing.T) {
	e := newTestExporter(nil)
	img := domain.GeneratedImage{ID: "img-1", URL: imageutil.DataURL("image/png", []byte("png")), Type: domain.ImageTypeMain}

	path, err := e.AutoSave(context.Background(), "", img)
	if err != nil || path != "" {
		t.Fatalf("AutoSave without dir = %q, %v", path, err)
	}

	dir := filepath.Join(t.TempDir(), "nested", "exports")
	path, err = e.AutoSave(context.Background(), dir, img)
	if err != nil {
		t.Fatalf("AutoSave returned error: %v", err)
	}
	if filepath.Base(path) != "img-1-regenerated-2025-03-04T05-06-07-890Z.png" {
		t.Fatalf("path = %q", path)
	}
	if data, err := os.ReadFile(path); err != nil || string(data) != "png" {
		t.Fatalf("saved = %q, %v", data, err)
	}
}

func TestListingArchive(t *testing.T) {
	e := newTestExporter(nil)
	content := domain.GeneratedContent{
		ID:    "c1",
		Texts: domain.ListingTexts{Title: "Lamp"},
		Images: []domain.GeneratedImage{
			{ID: "a", URL: imageutil.DataURL("image/png", []byte("a")), Type: domain.ImageTypeMain},
			{ID: "b", URL: imageutil.DataURL("image/jpeg", []byte("b")), Type: domain.ImageTypeMain},
			{ID: "c", URL: "not-a-url", Type: domain.ImageTypeDetail},
			{ID: "d", URL: imageutil.DataURL("image/png", []byte("d")), Type: domain.ImageTypeDetail},
		},
	}
	f, err := e.Listing(context.Background(), content)
	if err != nil {
		t.Fatalf("Listing returned error: %v", err)
	}
	if f.Name != "Lamp-2025-03-04T05-06-07-890Z.zip" || f.MimeType != "application/zip" {
		t.Fatalf("file = %s %s", f.Name, f.MimeType)
	}
	zr, err := zip.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := map[string]bool{}
	for _, zf := range zr.File {
		names[zf.Name] = true
		if zf.Name == "content.json" {
			rc, _ := zf.Open()
			var decoded domain.GeneratedContent
			if err := json.NewDecoder(rc).Decode(&decoded); err != nil {
				t.Fatalf("decode content.json: %v", err)
			}
			rc.Close()
			if decoded.ID != "c1" {
				t.Fatalf("content.json id = %q", decoded.ID)
			}
		}
	}
	for _, want := range []string{"content.json", "images/main-1.png", "images/main-2.jpeg", "images/detail-1.png"} {
		if !names[want] {
			t.Fatalf("archive missing %s; has %v", want, names)
		}
	}
	if len(names) != 4 {
		t.Fatalf("archive entries = %v", names)
	}
}
