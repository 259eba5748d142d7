package cache

import (
	"context"
	"sync"
)

// Preload warms the cache ahead of user demand: the persona list and the
// full character roster first, then the chat lists of the supplied recent
// characters. Every sub-fetch is independent and failures are logged, never
// returned; preloading is an optimization, not something callers may depend
// on.
func (s *Store) Preload(ctx context.Context, recentAvatars []string) {
	var wg sync.WaitGroup

	if !s.IsValid(CategoryPersonas, "") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Personas(ctx); err != nil {
				s.logPreloadFailure("personas", "", err)
			}
		}()
	}
	if !s.IsValid(CategoryCharacters, "") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Characters(ctx); err != nil {
				s.logPreloadFailure("characters", "", err)
			}
		}()
	}
	wg.Wait()

	var chatWG sync.WaitGroup
	for _, avatarID := range recentAvatars {
		if avatarID == "" || s.IsValid(CategoryChats, avatarID) {
			continue
		}
		chatWG.Add(1)
		go func(avatarID string) {
			defer chatWG.Done()
			if _, err := s.Chats(ctx, avatarID); err != nil {
				s.logPreloadFailure("chats", avatarID, err)
			}
		}(avatarID)
	}
	chatWG.Wait()
}

func (s *Store) logPreloadFailure(what, subKey string, err error) {
	if s.logger == nil {
		return
	}
	if subKey != "" {
		s.logger.Warn("preload_failed", "category", what, "key", subKey, "error", err.Error())
		return
	}
	s.logger.Warn("preload_failed", "category", what, "error", err.Error())
}
