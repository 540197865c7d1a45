package imageutil

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"detailgen/internal/domain"
)

// Format is an export encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWEBP Format = "webp"
)

// ParseFormat accepts png, jpg, jpeg and webp. Blank input returns "" so the
// caller keeps the source encoding.
func ParseFormat(v string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return "", nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWEBP, nil
	default:
		return "", fmt.Errorf("%w: image format %q", domain.ErrUnsupported, v)
	}
}

// MimeType returns the MIME type of the format.
func (f Format) MimeType() string {
	return "image/" + string(f)
}

// Convert re-encodes data into format and returns the new bytes with their
// MIME type.
func Convert(data []byte, format Format) ([]byte, string, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, "", err
	}
	var out bytes.Buffer
	switch format {
	case FormatPNG:
		err = png.Encode(&out, img)
	case FormatJPEG:
		err = jpeg.Encode(&out, img, &jpeg.Options{Quality: 90})
	case FormatWEBP:
		opts, optErr := encoder.NewLossyEncoderOptions(encoder.PresetDefault, 85)
		if optErr != nil {
			return nil, "", optErr
		}
		err = webp.Encode(&out, img, opts)
	default:
		return nil, "", fmt.Errorf("%w: image format %q", domain.ErrUnsupported, format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", format, err)
	}
	return out.Bytes(), format.MimeType(), nil
}
