package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"detailgen/internal/domain"
	"detailgen/internal/http/handlers"
	"detailgen/internal/infra/geoip"
	"detailgen/internal/middleware"
)

// Options tunes the router's middleware.
type Options struct {
	Locator geoip.Locator
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(*app.Logger),
		chimw.Recoverer,
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.I18N(func() domain.Language { return app.State.Settings().UILanguage }, opts.Locator),
	)

	limited := middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
		r.Get("/i18n/{lang}", app.Messages)

		r.Group(func(r chi.Router) {
			r.Use(limited)
			r.Post("/products/analyze", app.AnalyzeProduct)
			r.Post("/generate", app.Generate)
			r.Post("/generate/text", app.GenerateText)
			r.Post("/generate/image", app.GenerateImage)
			r.Post("/generate/detail-page", app.GenerateDetailPage)
			r.Post("/images/edit", app.EditImage)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", app.GetSettings)
			r.Put("/", app.UpdateSettings)
			r.Delete("/", app.ResetSettings)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", app.ListTemplates)
			r.Post("/", app.CreateTemplate)
			r.Get("/{id}", app.GetTemplate)
			r.Put("/{id}", app.UpdateTemplate)
			r.Delete("/{id}", app.DeleteTemplate)
			r.Post("/{id}/favorite", app.ToggleFavorite)
			r.Post("/{id}/apply", app.ApplyTemplate)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", app.ListHistory)
			r.Get("/{id}", app.GetHistory)
			r.Delete("/{id}", app.DeleteHistory)
			r.Post("/{id}/load", app.LoadHistory)
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/", app.GetContent)
			r.Patch("/", app.UpdateTexts)
			r.Put("/specs/{index}", app.SetSpec)
			r.With(limited).Post("/images/{id}/regenerate", app.RegenerateImage)
			r.Post("/images/{id}/save", app.SaveImage)
			r.Get("/images/{id}/download", app.DownloadImage)
			r.Get("/export", app.DownloadListing)
			r.Post("/export", app.SaveListing)
		})
	})

	return r
}
