package domain

import "context"

// SettingsRepository reads the settings current at the start of an operation.
type SettingsRepository interface {
	LoadSettings(ctx context.Context) (Settings, error)
}
