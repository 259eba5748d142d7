package query

import (
	"testing"
	"time"

	"github.com/gakumasu1717-cloud/chatlobby/hostapi"
)

func TestExtractTimestamp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		filename string
		want     int64
	}{
		{
			name:     "full datetime",
			filename: "2024-01-05@14h30m00s_chat.jsonl",
			want:     time.Date(2024, 1, 5, 14, 30, 0, 0, time.Local).UnixMilli(),
		},
		{
			name:     "whitespace variant",
			filename: "Luna - 2024-01-05 @ 14h30m00s.jsonl",
			want:     time.Date(2024, 1, 5, 14, 30, 0, 0, time.Local).UnixMilli(),
		},
		{
			name:     "bare date is midnight",
			filename: "2024-01-05 imported.jsonl",
			want:     time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local).UnixMilli(),
		},
		{
			name:     "no date",
			filename: "no-date-here.jsonl",
			want:     0,
		},
		{
			name:     "empty",
			filename: "",
			want:     0,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractTimestamp(tc.filename); got != tc.want {
				t.Fatalf("ExtractTimestamp(%q) = %d, want %d", tc.filename, got, tc.want)
			}
		})
	}
}

func TestChatTimestampFallsBackToLastMes(t *testing.T) {
	t.Parallel()

	withDate := hostapi.ChatRecord{FileName: "2024-01-05@14h30m00s.jsonl", LastMes: 111}
	want := time.Date(2024, 1, 5, 14, 30, 0, 0, time.Local).UnixMilli()
	if got := ChatTimestamp(withDate); got != want {
		t.Fatalf("ChatTimestamp() = %d, want filename timestamp %d", got, want)
	}

	noDate := hostapi.ChatRecord{FileName: "plain.jsonl", LastMes: 1704465000000}
	if got := ChatTimestamp(noDate); got != 1704465000000 {
		t.Fatalf("ChatTimestamp() = %d, want last_mes fallback", got)
	}

	nothing := hostapi.ChatRecord{FileName: "plain.jsonl"}
	if got := ChatTimestamp(nothing); got != 0 {
		t.Fatalf("ChatTimestamp() = %d, want 0", got)
	}
}
