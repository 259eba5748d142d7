package lobby

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/gakumasu1717-cloud/chatlobby/internal/fsstore"
	"github.com/google/uuid"
)

// Notifier surfaces a user-visible, non-blocking warning. The CLI wires it
// to stderr; nil drops the message after logging.
type Notifier func(message string)

// Store is the single mutation path for the lobby document. Load memoizes
// the document for the life of the process; every write goes through
// Update, which persists and refreshes the memo under one lock.
type Store struct {
	path   string
	logger *slog.Logger
	notify Notifier

	mu   sync.Mutex
	memo *Document
}

func NewStore(path string, logger *slog.Logger, notify Notifier) *Store {
	return &Store{path: path, logger: logger, notify: notify}
}

// Load returns a copy of the current document, reading durable storage on
// first use. A read or decode failure degrades to the default document so
// a broken state file never takes the panel down.
func (s *Store) Load() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked().clone()
}

func (s *Store) loadLocked() *Document {
	if s.memo != nil {
		return s.memo
	}

	var raw map[string]json.RawMessage
	if _, err := fsstore.ReadJSON(s.path, &raw); err != nil {
		if s.logger != nil {
			s.logger.Warn("lobby_load_failed", "path", s.path, "error", err.Error())
		}
		raw = nil
	}

	doc := mergeOverDefaults(raw)
	s.memo = &doc
	s.repairLocked()
	return s.memo
}

// repairLocked fixes internal inconsistencies after a load. Currently: a
// filter preference pointing at a deleted folder resets to the "all"
// sentinel, and the fix is persisted immediately.
func (s *Store) repairLocked() {
	doc := s.memo
	if doc.FilterFolder == FilterAll || doc.FilterFolder == FolderFavorites {
		return
	}
	if doc.HasFolder(doc.FilterFolder) {
		return
	}
	if s.logger != nil {
		s.logger.Info("lobby_filter_repaired", "stale_filter", doc.FilterFolder)
	}
	doc.FilterFolder = FilterAll
	s.saveLocked()
}

// Update loads the document, runs mutator against a working copy, persists
// it, and swaps the memo — all under one lock, so callers can treat the
// mutator as a critical section. Returns whatever the mutator returns.
func (s *Store) Update(mutator func(doc *Document) any) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.loadLocked().clone()
	result := mutator(&working)
	s.memo = &working
	s.saveLocked()
	return result
}

// saveLocked writes the memoized document through to disk. On failure the
// in-memory copy stays the source of truth so the panel keeps working; the
// user is warned because the change will not survive a restart.
func (s *Store) saveLocked() {
	if err := fsstore.WriteJSONAtomic(s.path, s.memo); err != nil {
		if s.logger != nil {
			s.logger.Error("lobby_save_failed", "path", s.path, "error", err.Error())
		}
		if s.notify != nil {
			s.notify("Saving lobby data failed; changes are kept in memory only.")
		}
	}
}

// Save overwrites the document wholesale. Prefer Update for read-modify-write.
func (s *Store) Save(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	working := doc.clone()
	s.memo = &working
	s.saveLocked()
}

// InvalidateMemo forces the next Load to re-read durable storage. Used when
// another writer may have touched the state file.
func (s *Store) InvalidateMemo() {
	s.mu.Lock()
	s.memo = nil
	s.mu.Unlock()
}

// AddFolder appends a user folder ordered after every existing folder but
// the uncategorized bucket, and returns its generated id.
func (s *Store) AddFolder(name string) string {
	result := s.Update(func(doc *Document) any {
		maxOrder := 0
		for _, f := range doc.Folders {
			if f.ID == FolderUncategorized {
				continue
			}
			if f.Order > maxOrder {
				maxOrder = f.Order
			}
		}
		id := uuid.NewString()
		doc.Folders = append(doc.Folders, Folder{
			ID:    id,
			Name:  name,
			Order: maxOrder + 1,
		})
		sort.SliceStable(doc.Folders, func(i, j int) bool {
			return doc.Folders[i].Order < doc.Folders[j].Order
		})
		return id
	})
	return result.(string)
}

// DeleteFolder removes a user folder and moves every chat assigned to it
// back to the uncategorized bucket, so no assignment can dangle. System
// folders and unknown ids are refused.
func (s *Store) DeleteFolder(id string) bool {
	result := s.Update(func(doc *Document) any {
		folder := doc.folderByID(id)
		if folder == nil || folder.IsSystem {
			return false
		}
		for key, assigned := range doc.ChatAssignments {
			if assigned == id {
				doc.ChatAssignments[key] = FolderUncategorized
			}
		}
		kept := doc.Folders[:0]
		for _, f := range doc.Folders {
			if f.ID != id {
				kept = append(kept, f)
			}
		}
		doc.Folders = kept
		if doc.FilterFolder == id {
			doc.FilterFolder = FilterAll
		}
		return true
	})
	return result.(bool)
}

// RenameFolder updates a user folder's name in place; system folders are
// refused.
func (s *Store) RenameFolder(id, name string) bool {
	result := s.Update(func(doc *Document) any {
		folder := doc.folderByID(id)
		if folder == nil || folder.IsSystem {
			return false
		}
		folder.Name = name
		return true
	})
	return result.(bool)
}

// ToggleFavorite flips favorite membership for one chat and returns the new
// state. Two consecutive calls restore the original membership.
func (s *Store) ToggleFavorite(avatarID, chatFile string) bool {
	key := ChatKey(avatarID, chatFile)
	result := s.Update(func(doc *Document) any {
		for i, k := range doc.Favorites {
			if k == key {
				doc.Favorites = append(doc.Favorites[:i], doc.Favorites[i+1:]...)
				return false
			}
		}
		doc.Favorites = append(doc.Favorites, key)
		return true
	})
	return result.(bool)
}

// AssignChat moves one chat to a folder. Assigning to the uncategorized
// bucket removes the explicit entry since absence already means that.
func (s *Store) AssignChat(chatKey, folderID string) {
	s.Update(func(doc *Document) any {
		if folderID == FolderUncategorized {
			delete(doc.ChatAssignments, chatKey)
			return nil
		}
		doc.ChatAssignments[chatKey] = folderID
		return nil
	})
}

// MoveChatsBatch reassigns every key to the target folder in one
// load-mutate-persist cycle, so an observer sees all of the moves or none
// and an N-chat batch costs a single durable write.
func (s *Store) MoveChatsBatch(chatKeys []string, targetFolderID string) {
	s.Update(func(doc *Document) any {
		for _, key := range chatKeys {
			if targetFolderID == FolderUncategorized {
				delete(doc.ChatAssignments, key)
				continue
			}
			doc.ChatAssignments[key] = targetFolderID
		}
		return nil
	})
}

// ToggleCollapsed flips a folder's collapsed display state and returns the
// new state.
func (s *Store) ToggleCollapsed(folderID string) bool {
	result := s.Update(func(doc *Document) any {
		for i, id := range doc.CollapsedFolders {
			if id == folderID {
				doc.CollapsedFolders = append(doc.CollapsedFolders[:i], doc.CollapsedFolders[i+1:]...)
				return false
			}
		}
		doc.CollapsedFolders = append(doc.CollapsedFolders, folderID)
		return true
	})
	return result.(bool)
}

func (s *Store) SetSortOption(mode string) {
	s.Update(func(doc *Document) any {
		doc.SortOption = mode
		return nil
	})
}

func (s *Store) SetCharSortOption(mode string) {
	s.Update(func(doc *Document) any {
		doc.CharSortOption = mode
		return nil
	})
}

func (s *Store) SetFilterFolder(folderID string) {
	s.Update(func(doc *Document) any {
		doc.FilterFolder = folderID
		return nil
	})
}
