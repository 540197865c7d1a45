package handlers

import (
	"context"
	"errors"
	"net/http"

	"detailgen/internal/domain"
	"detailgen/internal/i18n"
	"detailgen/internal/imageutil"
	"detailgen/internal/middleware"
)

// requestError marks a malformed or invalid request body.
type requestError struct {
	cause  error
	fields []string
}

func (e *requestError) Error() string { return "invalid request: " + e.cause.Error() }

func (e *requestError) Unwrap() error { return domain.ErrInvalidInput }

type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type errorKind struct {
	status int
	code   string
	key    string
}

// classify maps an error onto a status, a stable code and an i18n key.
// More specific errors are listed before the ones they wrap.
func classify(err error) errorKind {
	switch {
	case errors.Is(err, imageutil.ErrUnsupportedType):
		return errorKind{http.StatusUnsupportedMediaType, "unsupported_file_type", "errors.unsupportedFileType"}
	case errors.Is(err, imageutil.ErrTooLarge):
		return errorKind{http.StatusRequestEntityTooLarge, "file_too_large", "errors.fileTooLarge"}
	case errors.Is(err, domain.ErrNotFound):
		return errorKind{http.StatusNotFound, "not_found", "errors.notFound"}
	case errors.Is(err, domain.ErrInvalidInput):
		return errorKind{http.StatusBadRequest, "invalid_input", "errors.invalidInput"}
	case errors.Is(err, domain.ErrAPIKeyMissing):
		return errorKind{http.StatusBadRequest, "api_key_missing", "errors.apiKeyMissing"}
	case errors.Is(err, domain.ErrUnsupported):
		return errorKind{http.StatusUnprocessableEntity, "unsupported", "errors.unsupported"}
	case errors.Is(err, domain.ErrNoExportDir):
		return errorKind{http.StatusConflict, "no_export_dir", "errors.noExportDir"}
	case errors.Is(err, domain.ErrProviderFailure):
		return errorKind{http.StatusBadGateway, "provider_failure", "errors.providerFailure"}
	case errors.Is(err, context.DeadlineExceeded):
		return errorKind{http.StatusGatewayTimeout, "timeout", "errors.timeout"}
	default:
		return errorKind{http.StatusInternalServerError, "internal", "errors.unknown"}
	}
}

// fail writes err as {error, message} with the message in the request's
// UI language.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := classify(err)
	event := a.Logger.Warn()
	if kind.status >= http.StatusInternalServerError {
		event = a.Logger.Error()
	}
	event.Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Int("status", kind.status).
		Msg("request failed")

	resp := errorResponse{
		Error:   kind.code,
		Message: i18n.T(middleware.LanguageFromContext(r.Context()), kind.key),
	}
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		resp.Details = reqErr.fields
	}
	a.json(w, kind.status, resp)
}
