package appstate

import (
	"context"

	"detailgen/internal/domain"
)

// Settings returns a copy of the current settings.
func (s *Store) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings merges patch into the settings.
func (s *Store) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.settings
	patch.Apply(&next)
	if err := s.write(ctx, keySettings, next); err != nil {
		return s.settings, err
	}
	s.settings = next
	return next, nil
}

// ResetSettings restores the defaults.
func (s *Store) ResetSettings(ctx context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := domain.DefaultSettings()
	if err := s.write(ctx, keySettings, next); err != nil {
		return s.settings, err
	}
	s.settings = next
	return next, nil
}
