package appstate

import (
	"context"
	"fmt"
	"strings"

	"detailgen/internal/domain"
)

// TextsPatch carries optional listing text edits.
type TextsPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Current returns a copy of the listing being edited.
func (s *Store) Current() (domain.GeneratedContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.GeneratedContent{}, fmt.Errorf("current content: %w", domain.ErrNotFound)
	}
	return *s.current.Clone(), nil
}

// SetCurrent replaces the listing being edited.
func (s *Store) SetCurrent(ctx context.Context, content domain.GeneratedContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCurrentLocked(ctx, content.Clone())
}

func (s *Store) setCurrentLocked(ctx context.Context, content *domain.GeneratedContent) error {
	if err := s.write(ctx, keyCurrent, content); err != nil {
		return err
	}
	s.current = content
	return nil
}

// UpdateTexts edits the current title and/or description.
func (s *Store) UpdateTexts(ctx context.Context, patch TextsPatch) (domain.GeneratedContent, error) {
	return s.editCurrent(ctx, func(c *domain.GeneratedContent) error {
		if patch.Title != nil {
			c.Texts.Title = *patch.Title
		}
		if patch.Description != nil {
			c.Texts.Description = *patch.Description
		}
		return nil
	})
}

// SetSpec replaces specification index with value.
func (s *Store) SetSpec(ctx context.Context, index int, value string) (domain.GeneratedContent, error) {
	return s.editCurrent(ctx, func(c *domain.GeneratedContent) error {
		if index < 0 || index >= len(c.Texts.Specifications) {
			return fmt.Errorf("spec index %d: %w", index, domain.ErrInvalidInput)
		}
		c.Texts.Specifications[index] = value
		return nil
	})
}

// ReplaceImage swaps the url and prompt of the image with id.
func (s *Store) ReplaceImage(ctx context.Context, id, url, prompt string) (domain.GeneratedContent, error) {
	return s.editCurrent(ctx, func(c *domain.GeneratedContent) error {
		idx := c.FindImage(id)
		if idx < 0 {
			return fmt.Errorf("image %s: %w", id, domain.ErrNotFound)
		}
		if strings.TrimSpace(url) == "" {
			return fmt.Errorf("image url: %w", domain.ErrInvalidInput)
		}
		c.Images[idx].URL = url
		c.Images[idx].Prompt = prompt
		return nil
	})
}

// editCurrent applies fn to a copy of the current listing, persists it, and
// mirrors the change into the matching history entry. A failed history
// write is logged; the current listing stays authoritative.
func (s *Store) editCurrent(ctx context.Context, fn func(*domain.GeneratedContent) error) (domain.GeneratedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.GeneratedContent{}, fmt.Errorf("current content: %w", domain.ErrNotFound)
	}
	next := s.current.Clone()
	if err := fn(next); err != nil {
		return domain.GeneratedContent{}, err
	}
	next.UpdatedAt = s.now()
	if err := s.setCurrentLocked(ctx, next); err != nil {
		return domain.GeneratedContent{}, err
	}

	if idx := s.historyIndex(next.ID); idx >= 0 {
		entry := *next.Clone()
		if err := s.write(ctx, historyKey(entry.ID), entry); err != nil {
			s.logger.Warn().Err(err).Str("id", entry.ID).Msg("appstate: history entry not updated")
		} else {
			history := append([]domain.GeneratedContent(nil), s.history...)
			history[idx] = entry
			s.history = history
		}
	}
	return *next.Clone(), nil
}
