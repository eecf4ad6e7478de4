package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hy4ri/shopfloor/internal/tui/styles"
	"github.com/mattn/go-runewidth"
)

// HelpBinding is one key and what it does.
type HelpBinding struct {
	Key  string
	Desc string
}

// HelpSection groups bindings under a title. A section with a Tab is only
// shown while that tab is active.
type HelpSection struct {
	Title    string
	Tab      string
	Bindings []HelpBinding
}

// HelpModel lists the key bindings that apply to the active tab.
type HelpModel struct {
	width, height int
	sections      []HelpSection
	tab           string
}

var _ Component = (*HelpModel)(nil)

func NewHelp(sections []HelpSection) *HelpModel {
	return &HelpModel{sections: sections}
}

// Init implements Component.
func (h *HelpModel) Init() tea.Cmd {
	return nil
}

// Update implements Component.
func (h *HelpModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "?", "q":
			return h, func() tea.Msg { return CloseHelpMsg{} }
		}
	}
	return h, nil
}

// SetTab picks which tab's sections are shown.
func (h *HelpModel) SetTab(tab string) {
	h.tab = tab
}

// Visible returns the sections shown for the active tab.
func (h *HelpModel) Visible() []HelpSection {
	var out []HelpSection
	for _, s := range h.sections {
		if s.Tab == "" || s.Tab == h.tab {
			out = append(out, s)
		}
	}
	return out
}

// View implements Component. Sections flow left to right and wrap to as
// many rows as the width needs.
func (h *HelpModel) View() string {
	sections := h.Visible()
	if len(sections) == 0 {
		return styles.Dialog.Render("No key bindings")
	}

	blocks := make([]string, 0, len(sections))
	colWidth := 0
	for _, s := range sections {
		block := renderSection(s)
		blocks = append(blocks, block)
		colWidth = max(colWidth, lipgloss.Width(block))
	}
	colWidth += 4

	perRow := 1
	if h.width > 0 {
		perRow = max(1, min(len(blocks), h.width/colWidth))
	}
	cell := lipgloss.NewStyle().Width(colWidth).PaddingLeft(2)

	var rows []string
	for i := 0; i < len(blocks); i += perRow {
		var row []string
		for _, b := range blocks[i:min(i+perRow, len(blocks))] {
			row = append(row, cell.Render(b))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	title := "Keys"
	if h.tab != "" {
		title += " · " + h.tab
	}
	footer := styles.HelpDesc.Render("esc or ? closes")
	if h.width > 0 {
		footer = lipgloss.PlaceHorizontal(h.width, lipgloss.Center, footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(title),
		"",
		lipgloss.JoinVertical(lipgloss.Left, rows...),
		"",
		footer,
	)
}

// SetSize implements Component.
func (h *HelpModel) SetSize(width, height int) {
	h.width = width
	h.height = height
}

func renderSection(s HelpSection) string {
	keyWidth := 0
	for _, b := range s.Bindings {
		keyWidth = max(keyWidth, runewidth.StringWidth(b.Key))
	}
	keyStyle := styles.HelpKey.Width(keyWidth).Align(lipgloss.Right)

	var b strings.Builder
	b.WriteString(styles.Subtitle.Render(s.Title))
	for _, bind := range s.Bindings {
		b.WriteString("\n")
		b.WriteString(keyStyle.Render(bind.Key))
		b.WriteString("  ")
		b.WriteString(styles.HelpDesc.Render(bind.Desc))
	}
	return b.String()
}
