// Package imageutil validates uploads, compresses photos before they are sent
// to the model, and converts between data URLs and raw bytes.
package imageutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/webp"
	"golang.org/x/image/draw"

	"detailgen/internal/domain"
)

const (
	MaxUploadBytes = 10 << 20

	DefaultMaxSizeMB    = 2
	DefaultMaxDimension = 2048
	DefaultQuality      = 0.8

	minQuality = 0.5
)

var (
	ErrUnsupportedType = fmt.Errorf("%w: unsupported file type, upload JPEG, PNG or WebP", domain.ErrInvalidInput)
	ErrTooLarge        = fmt.Errorf("%w: file exceeds %d MB", domain.ErrInvalidInput, MaxUploadBytes>>20)
	ErrInvalidDataURL  = fmt.Errorf("%w: malformed data url", domain.ErrInvalidInput)
)

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Validate accepts JPEG, PNG and WebP uploads up to 10 MB.
func Validate(mimeType string, size int64) error {
	if _, ok := allowedTypes[strings.ToLower(strings.TrimSpace(mimeType))]; !ok {
		return ErrUnsupportedType
	}
	if size > MaxUploadBytes {
		return ErrTooLarge
	}
	return nil
}

// CompressOptions bounds the output of Compress. Zero fields take the defaults.
type CompressOptions struct {
	MaxSizeMB    float64
	MaxDimension int
	Quality      float64
}

func (o CompressOptions) withDefaults() CompressOptions {
	if o.MaxSizeMB <= 0 {
		o.MaxSizeMB = DefaultMaxSizeMB
	}
	if o.MaxDimension <= 0 {
		o.MaxDimension = DefaultMaxDimension
	}
	if o.Quality <= 0 || o.Quality > 1 {
		o.Quality = DefaultQuality
	}
	return o
}

// Compress re-encodes data as JPEG. The longer side is scaled down to
// MaxDimension keeping the aspect ratio; while the result exceeds MaxSizeMB
// and quality is above 0.5 it retries with quality lowered by 0.1.
func Compress(data []byte, opts CompressOptions) ([]byte, error) {
	opts = opts.withDefaults()
	src, err := Decode(data)
	if err != nil {
		return nil, err
	}

	w, h := FitWithin(src.Bounds().Dx(), src.Bounds().Dy(), opts.MaxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	limit := int(opts.MaxSizeMB * 1024 * 1024)
	quality := opts.Quality
	for {
		var out bytes.Buffer
		if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		if out.Len() <= limit || quality <= minQuality {
			return out.Bytes(), nil
		}
		quality = math.Round((quality-0.1)*10) / 10
	}
}

// FitWithin scales width and height so the longer side is at most limit.
func FitWithin(width, height, limit int) (int, int) {
	if width <= limit && height <= limit {
		return width, height
	}
	if width > height {
		h := int(math.Round(float64(height) / float64(width) * float64(limit)))
		return limit, maxInt(h, 1)
	}
	w := int(math.Round(float64(width) / float64(height) * float64(limit)))
	return maxInt(w, 1), limit
}

func jpegQuality(q float64) int {
	v := int(math.Round(q * 100))
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Decode reads JPEG, PNG or WebP bytes.
func Decode(data []byte) (image.Image, error) {
	if IsWEBP(data) {
		img, err := webp.Decode(bytes.NewReader(data), &decoder.Options{})
		if err != nil {
			return nil, fmt.Errorf("%w: decode webp: %v", domain.ErrInvalidInput, err)
		}
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", domain.ErrInvalidInput, err)
	}
	return img, nil
}

// IsWEBP sniffs the RIFF/WEBP container header.
func IsWEBP(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	return string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// ToBase64 encodes raw bytes with standard padding.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DataURL renders raw bytes as a data URL.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + ToBase64(data)
}

// ParseDataURL splits a base64 data URL into its MIME type and base64
// payload. A missing MIME type defaults to image/png.
func ParseDataURL(value string) (string, string, error) {
	if !strings.HasPrefix(value, "data:") {
		return "", "", ErrInvalidDataURL
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(value, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", "", ErrInvalidDataURL
	}
	mimeType := strings.TrimSuffix(header, ";base64")
	if mimeType == "" {
		mimeType = "image/png"
	}
	return mimeType, payload, nil
}

// DecodeDataURL returns the MIME type and decoded bytes of a data URL.
func DecodeDataURL(value string) (string, []byte, error) {
	mimeType, payload, err := ParseDataURL(value)
	if err != nil {
		return "", nil, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return mimeType, data, nil
}

// ExtensionFor returns the MIME subtype, without parameters, as the file
// extension: image/jpeg gives "jpeg".
func ExtensionFor(mimeType string) string {
	_, sub, ok := strings.Cut(strings.ToLower(mimeType), "/")
	if i := strings.IndexByte(sub, ';'); i >= 0 {
		sub = sub[:i]
	}
	sub = strings.TrimSpace(sub)
	if !ok || sub == "" {
		return "png"
	}
	return sub
}
