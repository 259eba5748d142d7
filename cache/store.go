// Package cache keeps recently fetched host data (personas, characters,
// chat lists, chat counts) behind per-category TTLs, with in-flight
// request de-duplication and a best-effort background preload.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gakumasu1717-cloud/chatlobby/hostapi"
)

// Fetcher is the slice of the host API the cache needs to fill itself.
// *hostapi.Client satisfies it.
type Fetcher interface {
	FetchPersonas(ctx context.Context) ([]hostapi.PersonaRecord, error)
	FetchCharacters(ctx context.Context) ([]hostapi.CharacterRecord, error)
	FetchChatsForCharacter(ctx context.Context, avatarID string) ([]hostapi.ChatRecord, error)
}

type entry[T any] struct {
	value   T
	written time.Time
}

type Store struct {
	fetcher Fetcher
	logger  *slog.Logger
	ttl     TTLConfig
	pending *PendingRegistry

	// now is overridable for TTL tests.
	now func() time.Time

	mu         sync.RWMutex
	chats      map[string]entry[[]hostapi.ChatRecord]
	chatCounts map[string]entry[int]
	personas   *entry[[]hostapi.PersonaRecord]
	characters *entry[[]hostapi.CharacterRecord]
}

func New(fetcher Fetcher, ttl TTLConfig, logger *slog.Logger) *Store {
	return &Store{
		fetcher:    fetcher,
		logger:     logger,
		ttl:        ttl.normalize(),
		pending:    NewPendingRegistry(),
		now:        time.Now,
		chats:      make(map[string]entry[[]hostapi.ChatRecord]),
		chatCounts: make(map[string]entry[int]),
	}
}

func pendingKey(cat Category, subKey string) string {
	if subKey == "" {
		return string(cat)
	}
	return fmt.Sprintf("%s:%s", cat, subKey)
}

func (s *Store) fresh(cat Category, written time.Time) bool {
	return !written.IsZero() && s.now().Sub(written) < s.ttl.ttl(cat)
}

// IsValid reports whether a live entry exists for the category (and sub-key,
// for the keyed categories).
func (s *Store) IsValid(cat Category, subKey string) bool {
	switch cat {
	case CategoryChats:
		_, ok := s.liveChats(subKey)
		return ok
	case CategoryChatCounts:
		_, ok := s.liveChatCount(subKey)
		return ok
	case CategoryPersonas:
		_, ok := s.livePersonas()
		return ok
	case CategoryCharacters:
		_, ok := s.liveCharacters()
		return ok
	default:
		return false
	}
}

// The live* helpers check validity and read the entry under one lock, so a
// concurrent invalidation can never turn a passed validity check into a
// zero-value read.

func (s *Store) liveChats(avatarID string) ([]hostapi.ChatRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.chats[avatarID]
	if !ok || !s.fresh(CategoryChats, e.written) {
		return nil, false
	}
	return e.value, true
}

func (s *Store) liveChatCount(avatarID string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.chatCounts[avatarID]
	if !ok || !s.fresh(CategoryChatCounts, e.written) {
		return 0, false
	}
	return e.value, true
}

func (s *Store) livePersonas() ([]hostapi.PersonaRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.personas == nil || !s.fresh(CategoryPersonas, s.personas.written) {
		return nil, false
	}
	return s.personas.value, true
}

func (s *Store) liveCharacters() ([]hostapi.CharacterRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.characters == nil || !s.fresh(CategoryCharacters, s.characters.written) {
		return nil, false
	}
	return s.characters.value, true
}

// SetChats stores a chat list and refreshes the matching chat count; value
// and timestamp always move together.
func (s *Store) SetChats(avatarID string, chats []hostapi.ChatRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.chats[avatarID] = entry[[]hostapi.ChatRecord]{value: chats, written: now}
	s.chatCounts[avatarID] = entry[int]{value: len(chats), written: now}
}

func (s *Store) SetPersonas(personas []hostapi.PersonaRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.personas = &entry[[]hostapi.PersonaRecord]{value: personas, written: s.now()}
}

func (s *Store) SetCharacters(chars []hostapi.CharacterRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters = &entry[[]hostapi.CharacterRecord]{value: chars, written: s.now()}
}

// Chats returns the cached chat list for a character, fetching through the
// pending registry when the entry is missing or stale.
func (s *Store) Chats(ctx context.Context, avatarID string) ([]hostapi.ChatRecord, error) {
	if chats, ok := s.liveChats(avatarID); ok {
		return chats, nil
	}

	v, err, _ := s.pending.GetOrRun(pendingKey(CategoryChats, avatarID), func() (any, error) {
		chats, err := s.fetcher.FetchChatsForCharacter(ctx, avatarID)
		if err != nil {
			return nil, err
		}
		s.SetChats(avatarID, chats)
		return chats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]hostapi.ChatRecord), nil
}

// ChatCount resolves a character's chat count, falling back to a full chat
// list fetch when the count is not cached.
func (s *Store) ChatCount(ctx context.Context, avatarID string) (int, error) {
	if n, ok := s.liveChatCount(avatarID); ok {
		return n, nil
	}
	chats, err := s.Chats(ctx, avatarID)
	if err != nil {
		return 0, err
	}
	return len(chats), nil
}

func (s *Store) Personas(ctx context.Context) ([]hostapi.PersonaRecord, error) {
	if personas, ok := s.livePersonas(); ok {
		return personas, nil
	}

	v, err, _ := s.pending.GetOrRun(pendingKey(CategoryPersonas, ""), func() (any, error) {
		personas, err := s.fetcher.FetchPersonas(ctx)
		if err != nil {
			return nil, err
		}
		s.SetPersonas(personas)
		return personas, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]hostapi.PersonaRecord), nil
}

func (s *Store) Characters(ctx context.Context) ([]hostapi.CharacterRecord, error) {
	if chars, ok := s.liveCharacters(); ok {
		return chars, nil
	}

	v, err, _ := s.pending.GetOrRun(pendingKey(CategoryCharacters, ""), func() (any, error) {
		chars, err := s.fetcher.FetchCharacters(ctx)
		if err != nil {
			return nil, err
		}
		s.SetCharacters(chars)
		return chars, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]hostapi.CharacterRecord), nil
}

// Invalidate removes an entry. For the keyed categories an empty subKey
// clears the whole category. alsoPending additionally forgets any matching
// in-flight registration, so a fetch started before the invalidation cannot
// be joined afterwards.
func (s *Store) Invalidate(cat Category, subKey string, alsoPending bool) {
	s.mu.Lock()
	switch cat {
	case CategoryChats:
		if subKey == "" {
			s.chats = make(map[string]entry[[]hostapi.ChatRecord])
		} else {
			delete(s.chats, subKey)
		}
	case CategoryChatCounts:
		if subKey == "" {
			s.chatCounts = make(map[string]entry[int])
		} else {
			delete(s.chatCounts, subKey)
		}
	case CategoryPersonas:
		s.personas = nil
	case CategoryCharacters:
		s.characters = nil
	}
	s.mu.Unlock()

	if !alsoPending {
		return
	}
	if subKey == "" {
		// A category-wide drop must also detach the per-subkey operations
		// still in flight, or a later caller would join a fetch that
		// predates the invalidation.
		s.pending.ForgetPrefix(string(cat))
		return
	}
	s.pending.Forget(pendingKey(cat, subKey))
}

// InvalidateAll drops every category.
func (s *Store) InvalidateAll() {
	for _, cat := range Categories() {
		s.Invalidate(cat, "", true)
	}
}
