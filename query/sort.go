// Package query turns raw host listings into the ordered, filtered views
// the panel displays, joining volatile cache data with the durable lobby
// document.
package query

import (
	"sort"
	"time"

	"github.com/gakumasu1717-cloud/chatlobby/hostapi"
	"github.com/gakumasu1717-cloud/chatlobby/lobby"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	SortRecent   = "recent"
	SortName     = "name"
	SortChats    = "chats"
	SortMessages = "messages"
)

// CountResolver supplies a character's chat count; SortCharacters calls it
// once per character when ordering by chat count.
type CountResolver func(avatarID string) int

func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}

// SortCharacters orders a copy of chars for display. Favorited characters
// always sort before the rest regardless of mode; within each group the
// mode decides: locale-aware name, descending last-chat recency, or
// descending chat count with name as tie-break.
func SortCharacters(chars []hostapi.CharacterRecord, mode string, counts CountResolver) []hostapi.CharacterRecord {
	out := append([]hostapi.CharacterRecord(nil), chars...)
	coll := newCollator()

	less := func(a, b hostapi.CharacterRecord) bool {
		if a.Favorite != b.Favorite {
			return a.Favorite
		}
		switch mode {
		case SortName:
			return coll.CompareString(a.Name, b.Name) < 0
		case SortChats:
			ca, cb := 0, 0
			if counts != nil {
				ca, cb = counts(a.Avatar), counts(b.Avatar)
			}
			if ca != cb {
				return ca > cb
			}
			return coll.CompareString(a.Name, b.Name) < 0
		default: // SortRecent
			return characterTimestamp(a) > characterTimestamp(b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func characterTimestamp(c hostapi.CharacterRecord) int64 {
	if c.DateLastChat != 0 {
		return int64(c.DateLastChat)
	}
	if c.LastMes != 0 {
		return int64(c.LastMes)
	}
	return 0
}

// SortChatRecords orders a character's chats: lobby favorites first, then
// by mode — locale-aware filename, descending message count, or descending
// extracted timestamp.
func SortChatRecords(chats []hostapi.ChatRecord, mode, avatarID string, doc lobby.Document) []hostapi.ChatRecord {
	out := append([]hostapi.ChatRecord(nil), chats...)
	coll := newCollator()

	fav := func(rec hostapi.ChatRecord) bool {
		return doc.IsFavorite(lobby.ChatKey(avatarID, rec.FileName))
	}
	less := func(a, b hostapi.ChatRecord) bool {
		fa, fb := fav(a), fav(b)
		if fa != fb {
			return fa
		}
		switch mode {
		case SortName:
			return coll.CompareString(a.FileName, b.FileName) < 0
		case SortMessages:
			return a.Messages() > b.Messages()
		default: // SortRecent
			return ChatTimestamp(a) > ChatTimestamp(b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// FilterChatsByFolder keeps the chats passing the active folder filter: the
// favorites sentinel selects the favorites set, any other folder id selects
// the chats resolving to it, and the "all" sentinel (or an empty filter)
// passes everything.
func FilterChatsByFolder(chats []hostapi.ChatRecord, avatarID, filter string, doc lobby.Document) []hostapi.ChatRecord {
	if filter == "" || filter == lobby.FilterAll {
		return chats
	}
	out := make([]hostapi.ChatRecord, 0, len(chats))
	for _, rec := range chats {
		key := lobby.ChatKey(avatarID, rec.FileName)
		if filter == lobby.FolderFavorites {
			if doc.IsFavorite(key) {
				out = append(out, rec)
			}
			continue
		}
		if doc.FolderOf(key) == filter {
			out = append(out, rec)
		}
	}
	return out
}

// AutoFavoriteCutoff converts the document's recency rule into the earliest
// chat timestamp that still counts as recent.
func AutoFavoriteCutoff(rules lobby.AutoFavoriteRules, now time.Time) time.Time {
	days := rules.RecencyDays
	if days <= 0 {
		days = 7
	}
	return now.AddDate(0, 0, -days)
}
