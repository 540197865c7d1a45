package handlers

import (
	"net/http"

	"detailgen/internal/domain"
)

// Settings responses never echo the API key in full.

func (a *App) GetSettings(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.State.Settings().Redacted())
}

func (a *App) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if err := a.decode(w, r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	settings, err := a.State.UpdateSettings(r.Context(), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, settings.Redacted())
}

func (a *App) ResetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.State.ResetSettings(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, settings.Redacted())
}
