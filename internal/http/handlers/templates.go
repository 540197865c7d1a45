package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"detailgen/internal/domain"
)

func (a *App) ListTemplates(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.State.Templates()})
}

func (a *App) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := a.State.Template(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, t)
}

func (a *App) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var t domain.Template
	if err := a.decode(w, r, &t); err != nil {
		a.fail(w, r, err)
		return
	}
	created, err := a.State.CreateTemplate(r.Context(), t)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, created)
}

func (a *App) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var patch domain.TemplatePatch
	if err := a.decode(w, r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	updated, err := a.State.UpdateTemplate(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, updated)
}

func (a *App) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := a.State.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	t, err := a.State.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, t)
}

// ApplyTemplate copies the template into the settings and returns both.
func (a *App) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	settings, t, err := a.State.ApplyTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"settings": settings.Redacted(),
		"template": t,
	})
}
