// Package styles provides Lip Gloss styles for the TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Terminal-adaptive colors that work in both light and dark terminals.
var (
	// Subtle is a muted color for secondary text
	Subtle = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}

	// Highlight is the accent color for selected items
	Highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#C2703D"}

	// Special colors
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF6666"}
	SuccessColor = lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#66FF66"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#FFAA00", Dark: "#FFCC66"}

	barBackground = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#1F1F1F"}
	rowBackground = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#2A2A2A"}
)

// Base styles
var (
	// Title is the style for section titles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Highlight)

	// Subtitle is for secondary headings
	Subtitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Subtle)

	// Faint is for placeholders and empty states
	Faint = lipgloss.NewStyle().
		Foreground(Subtle).
		Italic(true)
)

// Task styles
var (
	// TaskItem is the base style for a task row
	TaskItem = lipgloss.NewStyle().
			PaddingLeft(2)

	// TaskSelected is the style for the row under the cursor
	TaskSelected = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeftForeground(Highlight).
			Bold(true).
			Background(rowBackground)

	// TaskCompleted is the style for checked tasks
	TaskCompleted = lipgloss.NewStyle().
			PaddingLeft(2).
			Faint(true).
			Strikethrough(true)

	// SubtaskItem indents a subtask under its task
	SubtaskItem = lipgloss.NewStyle().
			PaddingLeft(6)

	// SubtaskSelected is a subtask under the cursor
	SubtaskSelected = lipgloss.NewStyle().
			PaddingLeft(5).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeftForeground(Highlight).
			Bold(true).
			Background(rowBackground)

	// SubtaskCompleted is a checked subtask
	SubtaskCompleted = lipgloss.NewStyle().
				PaddingLeft(6).
				Faint(true).
				Strikethrough(true)
)

// Item table styles
var (
	// TableHeader is the column header row
	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(Subtle).
			Underline(true)

	// TableCell is a regular cell
	TableCell = lipgloss.NewStyle()

	// TableRowSelected is the row under the cursor
	TableRowSelected = lipgloss.NewStyle().
				Background(rowBackground)

	// TableCellSelected is the cell under the cursor
	TableCellSelected = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(Highlight)

	// TableTotal is the totals footer
	TableTotal = lipgloss.NewStyle().
			Bold(true)

	// OverBudget marks a negative variance
	OverBudget = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// UnderBudget marks a zero or positive variance
	UnderBudget = lipgloss.NewStyle().
			Foreground(SuccessColor)
)

// Project styles
var (
	// ProjectItem is the base style for a project item
	ProjectItem = lipgloss.NewStyle().
			PaddingLeft(1)

	// ProjectSelected is the style for a selected project
	ProjectSelected = lipgloss.NewStyle().
			PaddingLeft(1).
			Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#333333"})

	// ProjectClient is the client name under a project
	ProjectClient = lipgloss.NewStyle().
			Foreground(Subtle).
			Faint(true)
)

// Sidebar styles
var (
	// Sidebar is the style for the sidebar container
	Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Subtle).
		Padding(0, 1)

	// SidebarFocused is for when the sidebar is focused
	SidebarFocused = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Highlight).
			Padding(0, 1)

	// SidebarActive is for the open project when the sidebar is not focused
	SidebarActive = lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(Highlight).
			Bold(true)
)

// Main content area styles
var (
	// MainContent is the style for the main content area
	MainContent = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Subtle).
			Padding(0, 1)

	// MainContentFocused is for when main content is focused
	MainContentFocused = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(Highlight).
				Padding(0, 1)
)

// StatusBar styles
var (
	// StatusBar is the base style for the status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}).
			Background(barBackground).
			Padding(0, 1)

	// StatusBarKey is for keyboard shortcut hints
	StatusBarKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(Highlight).
			Background(barBackground)

	// StatusBarText is for status bar descriptions
	StatusBarText = lipgloss.NewStyle().
			Foreground(Subtle).
			Background(barBackground)

	// StatusBarError is for error messages
	StatusBarError = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Background(barBackground).
			Bold(true)

	// StatusBarSuccess is for success messages
	StatusBarSuccess = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Background(barBackground).
				Bold(true)

	// StatusBarPending is for unsaved edits
	StatusBarPending = lipgloss.NewStyle().
				Foreground(WarningColor).
				Background(barBackground)
)

// Help styles
var (
	// HelpKey is for key bindings in help
	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Highlight)

	// HelpDesc is for key binding descriptions
	HelpDesc = lipgloss.NewStyle().
			Foreground(Subtle)
)

// Input styles
var (
	// InputFocused is for the active text input
	InputFocused = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Highlight).
			Padding(0, 1)

	// InputLabel is for input labels
	InputLabel = lipgloss.NewStyle().
			Bold(true)
)

// Dialog styles
var (
	// Dialog is the base style for dialog boxes
	Dialog = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Highlight).
		Padding(1, 2)
)

// Spinner style
var (
	Spinner = lipgloss.NewStyle().
		Foreground(Highlight)
)

// Checkbox styles
const (
	CheckboxUnchecked = "[ ]"
	CheckboxChecked   = "[x]"
)

// Tab bar styles
var (
	// TabBar is the container for the tab bar
	TabBar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Subtle).
		PaddingLeft(1).
		PaddingRight(1)

	// Tab is for inactive tabs
	Tab = lipgloss.NewStyle().
		Padding(0, 2).
		Foreground(Subtle)

	// TabActive is for the active tab
	TabActive = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(Highlight)
)
