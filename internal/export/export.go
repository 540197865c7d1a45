// Package export turns listing images and whole listings into files, either
// written into the export directory or handed back for download.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"detailgen/internal/domain"
	"detailgen/internal/imageutil"
	"detailgen/internal/infra"
	"detailgen/internal/storage"
	"detailgen/pkg/zip"
)

const (
	maxRemoteBytes = 25 << 20
	fetchTimeout   = 60 * time.Second
)

// File is an exported artifact ready to be written or downloaded.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Options configures an Exporter.
type Options struct {
	HTTPClient *http.Client
	Logger     *infra.Logger
	Now        func() time.Time
}

// Exporter builds export files.
type Exporter struct {
	httpClient *http.Client
	logger     *infra.Logger
	now        func() time.Time
}

func New(opts Options) *Exporter {
	e := &Exporter{httpClient: opts.HTTPClient, logger: opts.Logger, now: opts.Now}
	if e.httpClient == nil {
		e.httpClient = &http.Client{Timeout: fetchTimeout}
	}
	if e.logger == nil {
		l := infra.Logger(zerolog.New(io.Discard))
		e.logger = &l
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

var unsafeHint = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// Filename returns "{hint}-{timestamp}.{ext}" where the timestamp is the
// UTC ISO-8601 instant with ':' and '.' replaced by '-'.
func Filename(hint, ext string, at time.Time) string {
	hint = strings.Trim(unsafeHint.ReplaceAllString(strings.TrimSpace(hint), "-"), "-")
	if hint == "" {
		hint = "image"
	}
	stamp := at.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return fmt.Sprintf("%s-%s.%s", hint, stamp, strings.TrimPrefix(ext, "."))
}

// Image loads the bytes of img (decoding its data URL or fetching its
// remote URL), optionally converts them, and names the file after hint, or
// the image id when hint is blank.
func (e *Exporter) Image(ctx context.Context, img domain.GeneratedImage, hint string, format imageutil.Format) (File, error) {
	mimeType, data, err := e.load(ctx, img.URL)
	if err != nil {
		return File{}, err
	}
	if format != "" && format.MimeType() != mimeType {
		data, mimeType, err = imageutil.Convert(data, format)
		if err != nil {
			return File{}, err
		}
	}
	if hint == "" {
		hint = img.ID
	}
	return File{
		Name:     Filename(hint, imageutil.ExtensionFor(mimeType), e.now()),
		MimeType: mimeType,
		Data:     data,
	}, nil
}

func (e *Exporter) load(ctx context.Context, url string) (string, []byte, error) {
	if strings.HasPrefix(url, "data:") {
		return imageutil.DecodeDataURL(url)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", nil, fmt.Errorf("image url: %w", domain.ErrInvalidInput)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, fmt.Errorf("build fetch request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes))
	if err != nil {
		return "", nil, fmt.Errorf("read image: %w", err)
	}
	mimeType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	return mimeType, data, nil
}

// Listing bundles content.json and every image of content into a zip file.
// Images that cannot be loaded are skipped and logged.
func (e *Exporter) Listing(ctx context.Context, content domain.GeneratedContent) (File, error) {
	manifest, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return File{}, fmt.Errorf("encode content: %w", err)
	}
	now := e.now()
	entries := []zip.Entry{{Name: "content.json", Data: manifest, Modified: now}}
	counts := map[domain.ImageType]int{}
	for _, img := range content.Images {
		mimeType, data, err := e.load(ctx, img.URL)
		if err != nil {
			e.logger.Warn().Err(err).Str("image_id", img.ID).Msg("export: skipping image")
			continue
		}
		counts[img.Type]++
		entries = append(entries, zip.Entry{
			Name:     fmt.Sprintf("images/%s-%d.%s", img.Type, counts[img.Type], imageutil.ExtensionFor(mimeType)),
			Data:     data,
			Modified: now,
		})
	}
	archive, err := zip.Archive(entries)
	if err != nil {
		return File{}, err
	}
	hint := "listing"
	if content.Texts.Title != "" {
		hint = content.Texts.Title
	}
	return File{Name: Filename(hint, "zip", now), MimeType: "application/zip", Data: archive}, nil
}

// Save writes files into dir and returns the written paths. A blank dir
// yields domain.ErrNoExportDir.
func (e *Exporter) Save(ctx context.Context, dir string, files ...File) ([]string, error) {
	store, err := storage.NewDirStore(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		p, err := store.Write(ctx, f.Name, f.Data)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	e.logger.Info().Str("dir", store.Root()).Int("files", len(paths)).Msg("export: saved")
	return paths, nil
}

// AutoSave writes a regenerated image into dir as "{id}-regenerated-..."
// when dir is set and returns the written path, or "" when dir is blank.
func (e *Exporter) AutoSave(ctx context.Context, dir string, img domain.GeneratedImage) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", nil
	}
	f, err := e.Image(ctx, img, img.ID+"-regenerated", "")
	if err != nil {
		return "", err
	}
	paths, err := e.Save(ctx, dir, f)
	if err != nil {
		return "", err
	}
	return paths[0], nil
}
