package appstate

import (
	"context"
	"fmt"
	"strings"

	"detailgen/internal/domain"
)

// Templates returns the templates, favorites first then most recently updated.
func (s *Store) Templates() []domain.Template {
	s.mu.RLock()
	out := append([]domain.Template(nil), s.templates...)
	s.mu.RUnlock()
	domain.SortTemplates(out)
	return out
}

// Template returns one template by id.
func (s *Store) Template(id string) (domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.templateIndex(id)
	if idx < 0 {
		return domain.Template{}, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return s.templates[idx], nil
}

func (s *Store) templateIndex(id string) int {
	for i, t := range s.templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// CreateTemplate stores a new template. Enumerated fields are normalized and
// unset ones default to the current settings.
func (s *Store) CreateTemplate(ctx context.Context, t domain.Template) (domain.Template, error) {
	if strings.TrimSpace(t.Name) == "" {
		return domain.Template{}, fmt.Errorf("template name: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t.ID = s.newID()
	t.Name = strings.TrimSpace(t.Name)
	t.Platform = domain.NormalizePlatform(firstNonEmpty(string(t.Platform), string(s.settings.DefaultPlatform)))
	t.Style = domain.NormalizeStyle(firstNonEmpty(string(t.Style), string(s.settings.DefaultStyle)))
	t.Model = domain.NormalizeModel(firstNonEmpty(string(t.Model), string(s.settings.SelectedModel)))
	t.Language = domain.NormalizeLanguage(string(t.Language), s.settings.SelectedLanguage)
	t.UsageCount = 0
	t.CreatedAt = now
	t.UpdatedAt = now

	next := append(append([]domain.Template(nil), s.templates...), t)
	if err := s.write(ctx, keyTemplates, next); err != nil {
		return domain.Template{}, err
	}
	s.templates = next
	return t, nil
}

// UpdateTemplate applies patch to the template with id.
func (s *Store) UpdateTemplate(ctx context.Context, id string, patch domain.TemplatePatch) (domain.Template, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Template{}, fmt.Errorf("template name: %w", domain.ErrInvalidInput)
	}
	return s.mutateTemplate(ctx, id, func(t *domain.Template) {
		patch.Apply(t)
		t.UpdatedAt = s.now()
	})
}

// ToggleFavorite flips the favorite flag.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (domain.Template, error) {
	return s.mutateTemplate(ctx, id, func(t *domain.Template) {
		t.IsFavorite = !t.IsFavorite
		t.UpdatedAt = s.now()
	})
}

// ApplyTemplate copies the template's configuration into the settings and
// counts the use.
func (s *Store) ApplyTemplate(ctx context.Context, id string) (domain.Settings, domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.templateIndex(id)
	if idx < 0 {
		return s.settings, domain.Template{}, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	nextSettings := s.settings
	nextSettings.ApplyTemplate(s.templates[idx])

	nextTemplates := append([]domain.Template(nil), s.templates...)
	nextTemplates[idx].UsageCount++
	nextTemplates[idx].UpdatedAt = s.now()

	if err := s.write(ctx, keySettings, nextSettings); err != nil {
		return s.settings, domain.Template{}, err
	}
	s.settings = nextSettings
	if err := s.write(ctx, keyTemplates, nextTemplates); err != nil {
		return s.settings, domain.Template{}, err
	}
	s.templates = nextTemplates
	return nextSettings, nextTemplates[idx], nil
}

// DeleteTemplate removes the template with id.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.templateIndex(id)
	if idx < 0 {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	next := make([]domain.Template, 0, len(s.templates)-1)
	next = append(next, s.templates[:idx]...)
	next = append(next, s.templates[idx+1:]...)
	if err := s.write(ctx, keyTemplates, next); err != nil {
		return err
	}
	s.templates = next
	return nil
}

func (s *Store) mutateTemplate(ctx context.Context, id string, fn func(*domain.Template)) (domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.templateIndex(id)
	if idx < 0 {
		return domain.Template{}, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	next := append([]domain.Template(nil), s.templates...)
	fn(&next[idx])
	if err := s.write(ctx, keyTemplates, next); err != nil {
		return domain.Template{}, err
	}
	s.templates = next
	return next[idx], nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
