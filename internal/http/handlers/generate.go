package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"detailgen/internal/domain"
	"detailgen/internal/imageutil"
	"detailgen/internal/studio"
)

// Generation handlers detach from request cancellation so provider calls
// already in flight run to completion; the HTTP client timeout bounds them.

func (a *App) GenerateText(w http.ResponseWriter, r *http.Request) {
	var req studio.TextRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.Studio.GenerateText(context.WithoutCancel(r.Context()), req))
}

func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req studio.ImageRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	url := a.Studio.GenerateImage(context.WithoutCancel(r.Context()), req)
	a.json(w, http.StatusOK, map[string]string{"url": url})
}

func (a *App) GenerateDetailPage(w http.ResponseWriter, r *http.Request) {
	var req studio.DetailPageRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.Studio.GenerateDetailPage(context.WithoutCancel(r.Context()), req))
}

// EditImage accepts the source image as raw base64 or as a data URL.
func (a *App) EditImage(w http.ResponseWriter, r *http.Request) {
	var req studio.EditRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if strings.HasPrefix(req.ImageBase64, "data:") {
		mimeType, payload, err := imageutil.ParseDataURL(req.ImageBase64)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		req.ImageBase64 = payload
		if req.MimeType == "" {
			req.MimeType = mimeType
		}
	}
	url := a.Studio.EditImage(context.WithoutCancel(r.Context()), req)
	a.json(w, http.StatusOK, map[string]string{"url": url})
}

// Generate runs the whole listing pipeline and returns the new listing,
// which also becomes the current one.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req studio.GenerateRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Product.CategoryOrAnalysis()) == "" {
		a.fail(w, r, fmt.Errorf("product category: %w", domain.ErrInvalidInput))
		return
	}
	content, err := a.Studio.Generate(context.WithoutCancel(r.Context()), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, content)
}
