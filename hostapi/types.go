package hostapi

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// EpochMillis tolerates the host serializing timestamps as JSON numbers or
// numeric strings. Anything unparseable decodes to 0 rather than failing
// the surrounding record.
type EpochMillis int64

func (e *EpochMillis) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*e = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*e = EpochMillis(int64(f))
		return nil
	}
	*e = 0
	return nil
}

type PersonaRecord struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type CharacterRecord struct {
	Avatar       string      `json:"avatar"`
	Name         string      `json:"name"`
	ChatFile     string      `json:"chat"`
	DateLastChat EpochMillis `json:"date_last_chat"`
	LastMes      EpochMillis `json:"last_mes"`
	Favorite     bool        `json:"fav"`
}

type ChatRecord struct {
	FileName     string      `json:"file_name"`
	LastMes      EpochMillis `json:"last_mes"`
	ChatItems    int         `json:"chat_items"`
	MessageCount int         `json:"message_count"`
}

// Messages resolves the message count across the field variants the host
// has been seen emitting.
func (c ChatRecord) Messages() int {
	if c.ChatItems > 0 {
		return c.ChatItems
	}
	if c.MessageCount > 0 {
		return c.MessageCount
	}
	return 0
}

// ChatList accepts the two shapes the host returns for a character's chat
// list: a plain array of records, or an object keyed by filename. Either
// way every record ends up with a populated FileName.
type ChatList []ChatRecord

func (l *ChatList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*l = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var records []ChatRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return err
		}
		*l = records
		return nil
	}

	var byFile map[string]ChatRecord
	if err := json.Unmarshal(data, &byFile); err != nil {
		return err
	}
	records := make([]ChatRecord, 0, len(byFile))
	for file, rec := range byFile {
		if rec.FileName == "" {
			rec.FileName = file
		}
		records = append(records, rec)
	}
	// Map iteration order is random; keep the decoded list deterministic.
	sort.Slice(records, func(i, j int) bool { return records[i].FileName < records[j].FileName })
	*l = records
	return nil
}
