package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hy4ri/shopfloor/internal/model"
	"github.com/hy4ri/shopfloor/internal/tui/styles"
	"github.com/hy4ri/shopfloor/internal/tui/utils"
)

// SidebarModel manages the project sidebar navigation.
type SidebarModel struct {
	items           []SidebarItem
	cursor          int
	scrollOffset    int
	width, height   int
	focused         bool
	activeProjectID string // Project open in the editors
}

var _ Focusable = (*SidebarModel)(nil)

// NewSidebar creates a new SidebarModel.
func NewSidebar() *SidebarModel {
	return &SidebarModel{
		items: []SidebarItem{},
	}
}

// Init implements Component.
func (s *SidebarModel) Init() tea.Cmd {
	return nil
}

// Update implements Component.
func (s *SidebarModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKeyMsg(msg)
	}
	return s, nil
}

// handleKeyMsg processes keyboard input for the sidebar.
func (s *SidebarModel) handleKeyMsg(msg tea.KeyMsg) (Component, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		s.MoveCursor(1)
	case "k", "up":
		s.MoveCursor(-1)
	case "g", "home":
		s.cursor = 0
	case "G", "end":
		s.moveCursorToEnd()
	case "enter", "l", "right":
		if item := s.CurrentItem(); item != nil {
			selected := *item
			return s, func() tea.Msg {
				return ProjectSelectedMsg{ID: selected.ID, Name: selected.Name}
			}
		}
	}
	return s, nil
}

// View implements Component.
func (s *SidebarModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Projects"))
	b.WriteString("\n\n")

	// Each project takes two lines: name and client.
	innerHeight := s.height - 2
	if innerHeight < 3 {
		innerHeight = 3
	}
	visible := (innerHeight - 2) / 2
	if visible < 1 {
		visible = 1
	}

	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+visible {
		s.scrollOffset = s.cursor - visible + 1
	}
	if s.scrollOffset > len(s.items)-visible {
		s.scrollOffset = len(s.items) - visible
	}
	if s.scrollOffset < 0 {
		s.scrollOffset = 0
	}

	end := s.scrollOffset + visible
	if end > len(s.items) {
		end = len(s.items)
	}

	nameWidth := s.width - 6
	if nameWidth < 4 {
		nameWidth = 4
	}

	if len(s.items) == 0 {
		b.WriteString(styles.Faint.Render("No projects"))
	}

	for i := s.scrollOffset; i < end; i++ {
		item := s.items[i]

		cursor := "  "
		style := styles.ProjectItem
		if i == s.cursor && s.focused {
			cursor = "> "
			style = styles.ProjectSelected
		} else if item.ID == s.activeProjectID {
			style = styles.SidebarActive
		}

		b.WriteString(style.Render(cursor + utils.TruncateString(item.Name, nameWidth)))
		b.WriteString("\n")

		sub := item.Client
		if item.Status != "" {
			if sub != "" {
				sub += " · "
			}
			sub += item.Status
		}
		b.WriteString("    " + styles.ProjectClient.Render(utils.TruncateString(sub, nameWidth-2)))
		b.WriteString("\n")
	}

	containerStyle := styles.Sidebar
	if s.focused {
		containerStyle = styles.SidebarFocused
	}

	return containerStyle.Width(s.width).Height(innerHeight).Render(strings.TrimRight(b.String(), "\n"))
}

// SetSize implements Component.
func (s *SidebarModel) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Focus sets the sidebar as focused.
func (s *SidebarModel) Focus() {
	s.focused = true
}

// Blur removes focus from the sidebar.
func (s *SidebarModel) Blur() {
	s.focused = false
}

// Focused returns whether the sidebar is focused.
func (s *SidebarModel) Focused() bool {
	return s.focused
}

// SetProjects rebuilds the sidebar items from the given projects, keeping
// the cursor on the same project when it is still listed.
func (s *SidebarModel) SetProjects(projects []model.Project) {
	var currentID string
	if item := s.CurrentItem(); item != nil {
		currentID = item.ID
	}

	s.items = make([]SidebarItem, 0, len(projects))
	for _, p := range projects {
		s.items = append(s.items, SidebarItem{
			ID:     p.ID,
			Name:   p.Name,
			Client: p.Client,
			Status: p.Status,
		})
	}

	s.cursor = 0
	for i, item := range s.items {
		if item.ID == currentID {
			s.cursor = i
			break
		}
	}
}

// SetActiveProject highlights the given project as active.
func (s *SidebarModel) SetActiveProject(projectID string) {
	s.activeProjectID = projectID
}

// ActiveProject returns the highlighted project ID.
func (s *SidebarModel) ActiveProject() string {
	return s.activeProjectID
}

// MoveCursor moves the cursor by delta, clamped to the list.
func (s *SidebarModel) MoveCursor(delta int) {
	newPos := s.cursor + delta
	if newPos >= len(s.items) {
		newPos = len(s.items) - 1
	}
	if newPos < 0 {
		newPos = 0
	}
	s.cursor = newPos
}

// moveCursorToEnd moves cursor to the last item.
func (s *SidebarModel) moveCursorToEnd() {
	if len(s.items) > 0 {
		s.cursor = len(s.items) - 1
	}
}

// Cursor returns the current cursor position.
func (s *SidebarModel) Cursor() int {
	return s.cursor
}

// Items returns the current sidebar items.
func (s *SidebarModel) Items() []SidebarItem {
	return s.items
}

// CurrentItem returns the item at the current cursor position.
func (s *SidebarModel) CurrentItem() *SidebarItem {
	if s.cursor >= 0 && s.cursor < len(s.items) {
		return &s.items[s.cursor]
	}
	return nil
}
