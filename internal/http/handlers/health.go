package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"detailgen/internal/domain"
	"detailgen/internal/i18n"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	settings := a.State.Settings()
	a.json(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"provider":      settings.APIProvider,
		"keyConfigured": settings.APIKey != "" || a.envKey(settings.APIProvider) != "",
	})
}

func (a *App) envKey(provider domain.APIProvider) string {
	if provider == domain.ProviderOpenAI {
		return a.Config.OpenAIAPIKey
	}
	return a.Config.GeminiAPIKey
}

// Messages returns the UI string bundle for the requested language.
func (a *App) Messages(w http.ResponseWriter, r *http.Request) {
	lang := i18n.Match(chi.URLParam(r, "lang"))
	a.json(w, http.StatusOK, map[string]any{
		"language": lang,
		"messages": i18n.Lookup(lang),
	})
}
