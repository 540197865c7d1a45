package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrAPIKeyMissing   = errors.New("API Key is required")
	ErrProviderFailure = errors.New("provider failure")
	ErrUnsupported     = errors.New("unsupported operation")
	ErrNoExportDir     = errors.New("no export directory")
	ErrEmptyResponse   = errors.New("empty model response")
)
