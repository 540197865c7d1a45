package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.State.History()})
}

func (a *App) GetHistory(w http.ResponseWriter, r *http.Request) {
	item, err := a.State.HistoryItem(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, item)
}

func (a *App) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := a.State.DeleteHistory(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadHistory makes a history entry the listing being edited.
func (a *App) LoadHistory(w http.ResponseWriter, r *http.Request) {
	content, err := a.State.LoadHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, content)
}
