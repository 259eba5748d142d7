// Package lobby owns the durable organizer state of the panel: folders,
// chat-to-folder assignments, favorites and display preferences, all held
// in one JSON document on disk.
package lobby

import "encoding/json"

const (
	// FolderFavorites is the virtual grouping for favorited chats; it has
	// no assignments of its own.
	FolderFavorites = "favorites"
	// FolderUncategorized is the catch-all bucket every unassigned chat
	// resolves to. It always sorts last.
	FolderUncategorized = "uncategorized"
	// FilterAll is the folder-filter sentinel meaning "no filtering".
	FilterAll = "all"

	uncategorizedOrder = 9999
)

type Folder struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsSystem bool   `json:"isSystem"`
	Order    int    `json:"order"`
}

type AutoFavoriteRules struct {
	RecencyDays int `json:"recencyDays"`
}

// Document is the single durable record behind the lobby. Schema evolution
// relies on merging stored fields over DefaultDocument; there is no version
// field.
type Document struct {
	Folders           []Folder          `json:"folders"`
	ChatAssignments   map[string]string `json:"chatAssignments"`
	Favorites         []string          `json:"favorites"`
	SortOption        string            `json:"sortOption"`
	CharSortOption    string            `json:"charSortOption"`
	FilterFolder      string            `json:"filterFolder"`
	CollapsedFolders  []string          `json:"collapsedFolders"`
	AutoFavoriteRules AutoFavoriteRules `json:"autoFavoriteRules"`
}

func DefaultDocument() Document {
	return Document{
		Folders: []Folder{
			{ID: FolderFavorites, Name: "Favorites", IsSystem: true, Order: 0},
			{ID: FolderUncategorized, Name: "Uncategorized", IsSystem: true, Order: uncategorizedOrder},
		},
		ChatAssignments:   map[string]string{},
		Favorites:         []string{},
		SortOption:        "recent",
		CharSortOption:    "recent",
		FilterFolder:      FilterAll,
		CollapsedFolders:  []string{},
		AutoFavoriteRules: AutoFavoriteRules{RecencyDays: 7},
	}
}

// ChatKey is the deterministic join key between a volatile chat record and
// its durable assignment/favorite entries.
func ChatKey(avatarID, chatFile string) string {
	return avatarID + "_" + chatFile
}

// mergeOverDefaults applies the stored top-level fields wholesale over the
// default document. The merge is deliberately shallow: a stored folders
// list replaces the default list entirely instead of merging entries, and
// a malformed field falls back to its default.
func mergeOverDefaults(raw map[string]json.RawMessage) Document {
	doc := DefaultDocument()
	if raw == nil {
		return doc
	}

	assign := func(key string, out any) bool {
		v, ok := raw[key]
		if !ok {
			return false
		}
		return json.Unmarshal(v, out) == nil
	}

	var folders []Folder
	if assign("folders", &folders) {
		doc.Folders = folders
	}
	var assignments map[string]string
	if assign("chatAssignments", &assignments) && assignments != nil {
		doc.ChatAssignments = assignments
	}
	var favorites []string
	if assign("favorites", &favorites) {
		doc.Favorites = dedupeStrings(favorites)
	}
	var s string
	if assign("sortOption", &s) {
		doc.SortOption = s
	}
	if assign("charSortOption", &s) {
		doc.CharSortOption = s
	}
	if assign("filterFolder", &s) {
		doc.FilterFolder = s
	}
	var collapsed []string
	if assign("collapsedFolders", &collapsed) {
		doc.CollapsedFolders = collapsed
	}
	var rules AutoFavoriteRules
	if assign("autoFavoriteRules", &rules) {
		doc.AutoFavoriteRules = rules
	}
	return doc
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (d *Document) folderByID(id string) *Folder {
	for i := range d.Folders {
		if d.Folders[i].ID == id {
			return &d.Folders[i]
		}
	}
	return nil
}

// HasFolder reports whether id names an existing folder.
func (d *Document) HasFolder(id string) bool {
	return d.folderByID(id) != nil
}

// FolderOf resolves a chat key's folder, defaulting unassigned chats to the
// uncategorized bucket.
func (d *Document) FolderOf(chatKey string) string {
	if id, ok := d.ChatAssignments[chatKey]; ok && id != "" {
		return id
	}
	return FolderUncategorized
}

// IsFavorite reports membership of chatKey in the favorites set.
func (d *Document) IsFavorite(chatKey string) bool {
	for _, k := range d.Favorites {
		if k == chatKey {
			return true
		}
	}
	return false
}

func (d *Document) clone() Document {
	out := *d
	out.Folders = append([]Folder(nil), d.Folders...)
	out.Favorites = append([]string(nil), d.Favorites...)
	out.CollapsedFolders = append([]string(nil), d.CollapsedFolders...)
	out.ChatAssignments = make(map[string]string, len(d.ChatAssignments))
	for k, v := range d.ChatAssignments {
		out.ChatAssignments[k] = v
	}
	return out
}
