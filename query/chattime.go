package query

import (
	"regexp"
	"strconv"
	"time"

	"github.com/gakumasu1717-cloud/chatlobby/hostapi"
)

// Chat filenames usually embed their creation time. Patterns are tried in
// order, first match wins:
//
//	2024-01-05@14h30m00s...   full datetime
//	2024-01-05 @ 14h30m00s... formatting variant with whitespace
//	2024-01-05...             bare date, midnight
var (
	reDateTime      = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})@(\d{2})h(\d{2})m(\d{2})s`)
	reDateTimeLoose = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})\s*@\s*(\d{2})h(\d{2})m(\d{2})s`)
	reDateOnly      = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

// ExtractTimestamp parses a best-effort creation time out of a chat
// filename, as epoch milliseconds in local time. Anything unparseable is 0,
// which sorts last under recency ordering. It never fails.
func ExtractTimestamp(filename string) int64 {
	if m := reDateTime.FindStringSubmatch(filename); m != nil {
		return localEpochMillis(m[1], m[2], m[3], m[4], m[5], m[6])
	}
	if m := reDateTimeLoose.FindStringSubmatch(filename); m != nil {
		return localEpochMillis(m[1], m[2], m[3], m[4], m[5], m[6])
	}
	if m := reDateOnly.FindStringSubmatch(filename); m != nil {
		return localEpochMillis(m[1], m[2], m[3], "0", "0", "0")
	}
	return 0
}

// ChatTimestamp resolves a chat's recency: the filename timestamp when one
// is embedded, otherwise whatever message-derived timestamp the record
// carries, otherwise 0.
func ChatTimestamp(rec hostapi.ChatRecord) int64 {
	if ts := ExtractTimestamp(rec.FileName); ts != 0 {
		return ts
	}
	return int64(rec.LastMes)
}

func localEpochMillis(year, month, day, hour, minute, second string) int64 {
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	t := time.Date(atoi(year), time.Month(atoi(month)), atoi(day),
		atoi(hour), atoi(minute), atoi(second), 0, time.Local)
	return t.UnixMilli()
}
