package query

import (
	"context"
	"log/slog"

	"github.com/gakumasu1717-cloud/chatlobby/cache"
	"github.com/gakumasu1717-cloud/chatlobby/hostapi"
	"github.com/gakumasu1717-cloud/chatlobby/lobby"
)

// Engine produces display-ready views: host data through the cache (with
// fetch-on-miss), ordering and filtering from the lobby document.
type Engine struct {
	cache  *cache.Store
	store  *lobby.Store
	logger *slog.Logger
}

func NewEngine(cacheStore *cache.Store, lobbyStore *lobby.Store, logger *slog.Logger) *Engine {
	return &Engine{cache: cacheStore, store: lobbyStore, logger: logger}
}

// Characters returns the roster ordered by mode; an empty mode falls back
// to the stored character sort preference.
func (e *Engine) Characters(ctx context.Context, mode string) ([]hostapi.CharacterRecord, error) {
	chars, err := e.cache.Characters(ctx)
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = e.store.Load().CharSortOption
	}
	return SortCharacters(chars, mode, e.countResolver(ctx)), nil
}

// countResolver resolves chat counts through the cache; the cache serves
// live entries and fetches when the entry is missing or expired. A
// character whose count cannot be resolved sorts as zero; the failure is
// logged, not surfaced.
func (e *Engine) countResolver(ctx context.Context) CountResolver {
	return func(avatarID string) int {
		n, err := e.cache.ChatCount(ctx, avatarID)
		if err != nil {
			if e.logger != nil {
				e.logger.Warn("chat_count_unresolved", "avatar", avatarID, "error", err.Error())
			}
			return 0
		}
		return n
	}
}

// Chats returns one character's chats, validity-filtered, folder-filtered
// and ordered. Empty mode or filter fall back to the stored preferences.
func (e *Engine) Chats(ctx context.Context, avatarID, mode, filter string) ([]hostapi.ChatRecord, error) {
	chats, err := e.cache.Chats(ctx, avatarID)
	if err != nil {
		return nil, err
	}
	doc := e.store.Load()
	if mode == "" {
		mode = doc.SortOption
	}
	if filter == "" {
		filter = doc.FilterFolder
	}
	visible := FilterChatsByFolder(ValidChats(chats), avatarID, filter, doc)
	return SortChatRecords(visible, mode, avatarID, doc), nil
}

// Personas passes the persona list through unchanged; it exists so the CLI
// reads everything through one component.
func (e *Engine) Personas(ctx context.Context) ([]hostapi.PersonaRecord, error) {
	return e.cache.Personas(ctx)
}
