// Package utils provides shared utility functions for the TUI.
package utils

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/hy4ri/shopfloor/internal/lists"
	"github.com/mattn/go-runewidth"
)

// TruncateString truncates a string to a given width and adds an ellipsis if truncated.
func TruncateString(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}

	if width <= 1 {
		return "…"
	}

	res := s
	for lipgloss.Width(res+"…") > width && len(res) > 0 {
		_, size := utf8.DecodeLastRuneInString(res)
		res = res[:len(res)-size]
	}
	return res + "…"
}

// Cell fits plain text into exactly width terminal columns, truncating with
// an ellipsis or padding with spaces. Wide runes count double.
func Cell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " ")
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// CellRight is Cell aligned to the right edge.
func CellRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillLeft(runewidth.Truncate(s, width, "…"), width)
}

// FormatMoney renders an amount with thousands separators, e.g. "$1,010.40".
func FormatMoney(m lists.Money) string {
	if m < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", (-m).Float())
	}
	return "$" + humanize.FormatFloat("#,###.##", m.Float())
}

// FormatSaved describes when a list was last saved, relative to now.
func FormatSaved(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return "saved " + humanize.Time(t)
}
