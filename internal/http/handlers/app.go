package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"detailgen/internal/appstate"
	"detailgen/internal/export"
	"detailgen/internal/infra"
	"detailgen/internal/studio"
)

const maxJSONBody = 32 << 20

// App carries the dependencies shared by every handler.
type App struct {
	Config   *infra.Config
	Logger   *infra.Logger
	State    *appstate.Store
	Studio   *studio.Service
	Exporter *export.Exporter

	validate *validator.Validate
}

func NewApp(cfg *infra.Config, logger *infra.Logger, state *appstate.Store, svc *studio.Service, exporter *export.Exporter) *App {
	if logger == nil {
		l := infra.Logger(zerolog.New(io.Discard))
		logger = &l
	}
	if cfg == nil {
		cfg = &infra.Config{}
	}
	return &App{
		Config:   cfg,
		Logger:   logger,
		State:    state,
		Studio:   svc,
		Exporter: exporter,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into dst and runs its validate tags. An empty
// body leaves dst untouched.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return &requestError{cause: err}
	}
	if err := a.validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return &requestError{cause: err, fields: validationMessages(err)}
	}
	return nil
}

func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s (value: %s)", msg, fe.Param())
		}
		out = append(out, msg)
	}
	return out
}
