// Package appstate holds the settings, templates, history and the listing
// being edited. Every mutation is written through to a kv.Store before it
// becomes visible.
package appstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"detailgen/internal/domain"
	"detailgen/internal/infra"
	"detailgen/internal/store/kv"
)

const (
	keySettings     = "settings"
	keyTemplates    = "templates"
	keyHistoryIndex = "history-index"
	keyCurrent      = "current"

	// MaxHistory bounds the persisted history list; the oldest entries drop off.
	MaxHistory = 100
)

// Options configures a Store.
type Options struct {
	KV     kv.Store
	Logger *infra.Logger
	Now    func() time.Time
	NewID  func() string
}

// Store is the mutex-guarded application state.
type Store struct {
	mu        sync.RWMutex
	kv        kv.Store
	logger    *infra.Logger
	now       func() time.Time
	newID     func() string
	settings  domain.Settings
	templates []domain.Template
	history   []domain.GeneratedContent
	current   *domain.GeneratedContent
}

func New(opts Options) *Store {
	s := &Store{
		kv:       opts.KV,
		logger:   opts.Logger,
		now:      opts.Now,
		newID:    opts.NewID,
		settings: domain.DefaultSettings(),
	}
	if s.kv == nil {
		s.kv = kv.NewMemory()
	}
	if s.logger == nil {
		l := infra.Logger(zerolog.New(io.Discard))
		s.logger = &l
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	return s
}

// Load reads every record from the kv store. Missing records keep their
// defaults.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()
	if err := s.read(ctx, keySettings, &settings); err != nil {
		return err
	}
	var templates []domain.Template
	if err := s.read(ctx, keyTemplates, &templates); err != nil {
		return err
	}
	history, err := s.loadHistory(ctx)
	if err != nil {
		return err
	}
	var current *domain.GeneratedContent
	if err := s.read(ctx, keyCurrent, &current); err != nil {
		return err
	}

	s.settings = settings
	s.templates = templates
	s.history = history
	s.current = current

	s.logger.Info().
		Int("templates", len(templates)).
		Int("history", len(history)).
		Bool("has_current", current != nil).
		Msg("appstate: loaded")
	return nil
}

func (s *Store) read(ctx context.Context, key string, dest any) error {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("appstate: load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("appstate: discarding unreadable record")
		return nil
	}
	return nil
}

func (s *Store) write(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("appstate: encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("appstate: save %s: %w", key, err)
	}
	return nil
}

// LoadSettings implements domain.SettingsRepository.
func (s *Store) LoadSettings(context.Context) (domain.Settings, error) {
	return s.Settings(), nil
}

var _ domain.SettingsRepository = (*Store)(nil)
