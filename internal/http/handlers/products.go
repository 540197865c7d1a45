package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"detailgen/internal/domain"
	"detailgen/internal/imageutil"
	"detailgen/internal/studio"
)

const multipartOverhead = 1 << 20

// AnalyzeProduct accepts a multipart upload (field "image", optional
// "platform"), compresses the photo and returns the analyzed product.
func (a *App) AnalyzeProduct(w http.ResponseWriter, r *http.Request) {
	limit := a.Config.MaxUploadBytes
	if limit <= 0 || limit > imageutil.MaxUploadBytes {
		limit = imageutil.MaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			a.fail(w, r, imageutil.ErrTooLarge)
			return
		}
		a.fail(w, r, fmt.Errorf("multipart form: %w", domain.ErrInvalidInput))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		a.fail(w, r, fmt.Errorf("image field: %w", domain.ErrInvalidInput))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.fail(w, r, fmt.Errorf("read upload: %w", domain.ErrInvalidInput))
		return
	}
	mimeType := uploadMimeType(header.Header.Get("Content-Type"), data)
	if err := imageutil.Validate(mimeType, int64(len(data))); err != nil {
		a.fail(w, r, err)
		return
	}

	if compressed, err := imageutil.Compress(data, imageutil.CompressOptions{}); err != nil {
		a.Logger.Warn().Err(err).Str("mime", mimeType).Msg("analyze: compression failed, sending original")
	} else {
		data, mimeType = compressed, "image/jpeg"
	}

	encoded := imageutil.ToBase64(data)
	analysis, err := a.Studio.AnalyzeProduct(context.WithoutCancel(r.Context()), studio.AnalyzeRequest{
		ImageBase64: encoded,
		MimeType:    mimeType,
		Platform:    domain.Platform(r.FormValue("platform")),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	tags := analysis.Suggestions
	if tags == nil {
		tags = []string{}
	}
	a.json(w, http.StatusOK, domain.Product{
		ID:       uuid.NewString(),
		Category: analysis.Category,
		Tags:     tags,
		ImageURL: "data:" + mimeType + ";base64," + encoded,
		MimeType: mimeType,
		Analysis: analysis,
	})
}

// uploadMimeType trusts the declared part type unless it is missing or
// generic, in which case the bytes are sniffed.
func uploadMimeType(declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mt, "image/") {
		return mt
	}
	if imageutil.IsWEBP(data) {
		return "image/webp"
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return sniffed
}
