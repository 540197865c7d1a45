package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"detailgen/internal/appstate"
	"detailgen/internal/domain"
	"detailgen/internal/export"
	"detailgen/internal/imageutil"
	"detailgen/internal/storage"
	"detailgen/internal/studio"
)

const defaultExportRoot = "exports"

type specRequest struct {
	Value string `json:"value" validate:"max=500"`
}

type regenerateRequest struct {
	Prompt string       `json:"prompt" validate:"max=4000"`
	Model  domain.Model `json:"model,omitempty"`
}

type regenerateResponse struct {
	Content   domain.GeneratedContent `json:"content"`
	Image     domain.GeneratedImage   `json:"image"`
	SavedPath string                  `json:"savedPath,omitempty"`
}

type saveRequest struct {
	Dir    string `json:"dir,omitempty"`
	Format string `json:"format,omitempty" validate:"omitempty,oneof=png jpeg jpg webp"`
}

type saveResponse struct {
	Paths []string `json:"paths"`
}

func (a *App) GetContent(w http.ResponseWriter, r *http.Request) {
	content, err := a.State.Current()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, content)
}

func (a *App) UpdateTexts(w http.ResponseWriter, r *http.Request) {
	var patch appstate.TextsPatch
	if err := a.decode(w, r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	content, err := a.State.UpdateTexts(r.Context(), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, content)
}

func (a *App) SetSpec(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.fail(w, r, fmt.Errorf("spec index: %w", domain.ErrInvalidInput))
		return
	}
	var req specRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	content, err := a.State.SetSpec(r.Context(), index, req.Value)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, content)
}

// RegenerateImage redraws one image of the current listing, stores it and
// auto-saves it into the export directory when one is configured. A failed
// auto-save is logged and does not fail the request.
func (a *App) RegenerateImage(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	current, img, err := a.currentImage(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = img.Prompt
	}
	url := a.Studio.RegenerateImage(ctx, studio.RegenerateRequest{
		Image:    img,
		Prompt:   prompt,
		Style:    current.Style,
		Platform: current.Platform,
		Model:    req.Model,
	})
	content, err := a.State.ReplaceImage(ctx, img.ID, url, prompt)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	img.URL, img.Prompt = url, prompt

	resp := regenerateResponse{Content: content, Image: img}
	dir, err := a.exportDir("")
	switch {
	case errors.Is(err, domain.ErrNoExportDir):
	case err != nil:
		a.Logger.Warn().Err(err).Str("image_id", img.ID).Msg("regenerate: export directory rejected")
	default:
		if path, err := a.Exporter.AutoSave(ctx, dir, img); err != nil {
			a.Logger.Warn().Err(err).Str("image_id", img.ID).Msg("regenerate: auto-save failed")
		} else {
			resp.SavedPath = path
		}
	}
	a.json(w, http.StatusOK, resp)
}

// SaveImage writes one image into the requested directory, or the export
// directory from the settings.
func (a *App) SaveImage(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	format, err := imageutil.ParseFormat(req.Format)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	_, img, err := a.currentImage(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	file, err := a.Exporter.Image(r.Context(), img, img.ID, format)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	dir, err := a.exportDir(req.Dir)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	paths, err := a.Exporter.Save(r.Context(), dir, file)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, saveResponse{Paths: paths})
}

// DownloadImage streams one image as an attachment, optionally converted
// with ?format=png|jpeg|webp.
func (a *App) DownloadImage(w http.ResponseWriter, r *http.Request) {
	format, err := imageutil.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	_, img, err := a.currentImage(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	file, err := a.Exporter.Image(r.Context(), img, img.ID, format)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.attachment(w, file)
}

// DownloadListing streams the current listing as a zip archive.
func (a *App) DownloadListing(w http.ResponseWriter, r *http.Request) {
	current, err := a.State.Current()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	file, err := a.Exporter.Listing(r.Context(), current)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.attachment(w, file)
}

// SaveListing writes the listing archive into the export directory.
func (a *App) SaveListing(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	current, err := a.State.Current()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	file, err := a.Exporter.Listing(r.Context(), current)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	dir, err := a.exportDir(req.Dir)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	paths, err := a.Exporter.Save(r.Context(), dir, file)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, saveResponse{Paths: paths})
}

func (a *App) currentImage(id string) (domain.GeneratedContent, domain.GeneratedImage, error) {
	current, err := a.State.Current()
	if err != nil {
		return domain.GeneratedContent{}, domain.GeneratedImage{}, err
	}
	idx := current.FindImage(id)
	if idx < 0 {
		return domain.GeneratedContent{}, domain.GeneratedImage{}, fmt.Errorf("image %s: %w", id, domain.ErrNotFound)
	}
	return current, current.Images[idx], nil
}

// exportDir picks the requested directory, then the settings export path,
// then the configured one, and confines it to the export root.
func (a *App) exportDir(requested string) (string, error) {
	dir := strings.TrimSpace(requested)
	if dir == "" {
		dir = strings.TrimSpace(a.State.Settings().ExportPath)
	}
	if dir == "" {
		dir = strings.TrimSpace(a.Config.ExportPath)
	}
	if dir == "" {
		return "", domain.ErrNoExportDir
	}
	root := a.Config.ExportRoot
	if strings.TrimSpace(root) == "" {
		root = defaultExportRoot
	}
	return storage.Within(root, dir)
}

func (a *App) attachment(w http.ResponseWriter, file export.File) {
	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
