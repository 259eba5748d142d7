// Package clifmt prints the lobby's terminal output: headers, warnings and
// two-column name/detail tables sized to the terminal.
package clifmt

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const (
	defaultTableWidth = 100
	minDetailWidth    = 24
)

func Headerf(format string, args ...any) string {
	return fmt.Sprintf("== "+format+" ==", args...)
}

func Warn(text string) string {
	return "! " + text
}

type Row struct {
	Name   string
	Detail string
}

type TableOptions struct {
	Title      string
	Rows       []Row
	EmptyText  string
	NameHeader string
	DetailHead string
}

func PrintTable(out io.Writer, opts TableOptions) {
	if out == nil {
		out = os.Stdout
	}

	if title := strings.TrimSpace(opts.Title); title != "" {
		fmt.Fprintln(out, Headerf("%s (%d)", title, len(opts.Rows)))
	}
	if len(opts.Rows) == 0 {
		empty := strings.TrimSpace(opts.EmptyText)
		if empty == "" {
			empty = "No entries."
		}
		fmt.Fprintln(out, Warn(empty))
		return
	}

	nameHeader := opts.NameHeader
	if nameHeader == "" {
		nameHeader = "NAME"
	}
	detailHead := opts.DetailHead
	if detailHead == "" {
		detailHead = "DETAILS"
	}

	nameWidth := utf8.RuneCountInString(nameHeader)
	for _, row := range opts.Rows {
		if w := utf8.RuneCountInString(row.Name); w > nameWidth {
			nameWidth = w
		}
	}
	detailWidth := tableWidth() - nameWidth - 3
	if detailWidth < minDetailWidth {
		detailWidth = minDetailWidth
	}

	fmt.Fprintf(out, "%-*s   %s\n", nameWidth, nameHeader, detailHead)
	for _, row := range opts.Rows {
		fmt.Fprintf(out, "%-*s   %s\n", nameWidth, row.Name, truncate(row.Detail, detailWidth))
	}
}

func tableWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultTableWidth
}

func truncate(s string, max int) string {
	if max <= 1 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
