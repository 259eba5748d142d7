package query

import (
	"strings"

	"github.com/gakumasu1717-cloud/chatlobby/hostapi"
)

// The host occasionally slips transient error sentinels into what is
// nominally a list of chats; these filenames are never real chat files.
var placeholderFileNames = map[string]struct{}{
	"error":     {},
	"undefined": {},
	"null":      {},
	"invalid":   {},
}

var chatFileExtensions = []string{".jsonl", ".json"}

// IsValidChatRecord reports whether a record looks like an actual chat
// file: a non-empty filename carrying a recognized extension or an embedded
// date, and not a known placeholder marker.
func IsValidChatRecord(rec hostapi.ChatRecord) bool {
	name := strings.TrimSpace(rec.FileName)
	if name == "" {
		return false
	}
	if _, ok := placeholderFileNames[strings.ToLower(name)]; ok {
		return false
	}
	for _, ext := range chatFileExtensions {
		if strings.Contains(strings.ToLower(name), ext) {
			return true
		}
	}
	return reDateOnly.MatchString(name)
}

// ValidChats drops invalid records, preserving order.
func ValidChats(records []hostapi.ChatRecord) []hostapi.ChatRecord {
	out := make([]hostapi.ChatRecord, 0, len(records))
	for _, rec := range records {
		if IsValidChatRecord(rec) {
			out = append(out, rec)
		}
	}
	return out
}
