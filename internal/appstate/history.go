package appstate

import (
	"context"
	"fmt"
	"strings"

	"detailgen/internal/domain"
)

// History entries live under history/<id>; keyHistoryIndex holds their ids,
// newest first.
const historyPrefix = "history/"

func historyKey(id string) string {
	return historyPrefix + id
}

func historyIDs(entries []domain.GeneratedContent) []string {
	ids := make([]string, len(entries))
	for i, h := range entries {
		ids[i] = h.ID
	}
	return ids
}

// loadHistory reads the index and every entry it names. Entries the index
// no longer references are removed from the backend.
func (s *Store) loadHistory(ctx context.Context) ([]domain.GeneratedContent, error) {
	var ids []string
	if err := s.read(ctx, keyHistoryIndex, &ids); err != nil {
		return nil, err
	}
	history := make([]domain.GeneratedContent, 0, len(ids))
	listed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if listed[id] {
			continue
		}
		var entry *domain.GeneratedContent
		if err := s.read(ctx, historyKey(id), &entry); err != nil {
			return nil, err
		}
		if entry == nil {
			s.logger.Warn().Str("id", id).Msg("appstate: history entry missing")
			continue
		}
		listed[id] = true
		history = append(history, *entry)
	}

	keys, err := s.kv.Keys(ctx, historyPrefix)
	if err != nil {
		return nil, fmt.Errorf("appstate: list history: %w", err)
	}
	for _, key := range keys {
		if listed[strings.TrimPrefix(key, historyPrefix)] {
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("appstate: remove orphaned history entry")
		}
	}
	return history, nil
}

// History returns generated listings, newest first.
func (s *Store) History() []domain.GeneratedContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.GeneratedContent(nil), s.history...)
}

// HistoryItem returns one history entry by id.
func (s *Store) HistoryItem(id string) (domain.GeneratedContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.historyIndex(id)
	if idx < 0 {
		return domain.GeneratedContent{}, fmt.Errorf("history %s: %w", id, domain.ErrNotFound)
	}
	return *s.history[idx].Clone(), nil
}

func (s *Store) historyIndex(id string) int {
	for i, h := range s.history {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// AddHistory makes content the current listing, then prepends it to the
// history. An existing entry with the same id is replaced.
func (s *Store) AddHistory(ctx context.Context, content domain.GeneratedContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setCurrentLocked(ctx, content.Clone()); err != nil {
		return err
	}
	entry := *content.Clone()
	if err := s.write(ctx, historyKey(entry.ID), entry); err != nil {
		return err
	}

	next := make([]domain.GeneratedContent, 0, len(s.history)+1)
	next = append(next, entry)
	for _, h := range s.history {
		if h.ID != entry.ID {
			next = append(next, h)
		}
	}
	var evicted []domain.GeneratedContent
	if len(next) > MaxHistory {
		evicted = next[MaxHistory:]
		next = next[:MaxHistory]
	}
	if err := s.write(ctx, keyHistoryIndex, historyIDs(next)); err != nil {
		return err
	}
	s.history = next

	for _, h := range evicted {
		if err := s.kv.Delete(ctx, historyKey(h.ID)); err != nil {
			s.logger.Warn().Err(err).Str("id", h.ID).Msg("appstate: remove evicted history entry")
		}
	}
	return nil
}

// DeleteHistory removes one entry. The current listing is left untouched.
func (s *Store) DeleteHistory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.historyIndex(id)
	if idx < 0 {
		return fmt.Errorf("history %s: %w", id, domain.ErrNotFound)
	}
	next := make([]domain.GeneratedContent, 0, len(s.history)-1)
	next = append(next, s.history[:idx]...)
	next = append(next, s.history[idx+1:]...)
	if err := s.write(ctx, keyHistoryIndex, historyIDs(next)); err != nil {
		return err
	}
	s.history = next
	if err := s.kv.Delete(ctx, historyKey(id)); err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("appstate: remove history entry")
	}
	return nil
}

// LoadHistory makes a history entry the current listing.
func (s *Store) LoadHistory(ctx context.Context, id string) (domain.GeneratedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.historyIndex(id)
	if idx < 0 {
		return domain.GeneratedContent{}, fmt.Errorf("history %s: %w", id, domain.ErrNotFound)
	}
	current := s.history[idx].Clone()
	if err := s.setCurrentLocked(ctx, current); err != nil {
		return domain.GeneratedContent{}, err
	}
	return *current.Clone(), nil
}
