// Package tui provides the terminal user interface for the project editors.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hy4ri/shopfloor/internal/tui/components"
)

// Key represents a key binding.
type Key struct {
	Key  string
	Help string
}

// Keymap contains all key bindings for the application.
type Keymap struct {
	// Navigation
	Up     Key
	Down   Key
	Top    Key
	Bottom Key
	Left   Key
	Right  Key

	// Actions
	Select  Key
	Back    Key
	Quit    Key
	Discard Key
	Help    Key
	Refresh Key

	// List editing
	Add        Key
	AddSubtask Key
	Edit       Key
	Delete     Key
	Toggle     Key
	Copy       Key
	Retry      Key

	// Panes and tabs
	SwitchPane Key
	TasksTab   Key
	ItemsTab   Key
}

// DefaultKeymap returns the default Vim-style key bindings.
func DefaultKeymap() Keymap {
	return Keymap{
		Up:     Key{Key: "k", Help: "up"},
		Down:   Key{Key: "j", Help: "down"},
		Top:    Key{Key: "g", Help: "top (gg)"},
		Bottom: Key{Key: "G", Help: "bottom"},
		Left:   Key{Key: "h", Help: "previous column"},
		Right:  Key{Key: "l", Help: "next column"},

		Select:  Key{Key: "enter", Help: "open / edit"},
		Back:    Key{Key: "esc", Help: "back"},
		Quit:    Key{Key: "q", Help: "save and quit"},
		Discard: Key{Key: "Q", Help: "quit without saving"},
		Help:    Key{Key: "?", Help: "help"},
		Refresh: Key{Key: "r", Help: "reload projects"},

		Add:        Key{Key: "a", Help: "add row"},
		AddSubtask: Key{Key: "s", Help: "add subtask"},
		Edit:       Key{Key: "e", Help: "edit"},
		Delete:     Key{Key: "d", Help: "delete (dd)"},
		Toggle:     Key{Key: "x", Help: "check/uncheck"},
		Copy:       Key{Key: "y", Help: "copy list"},
		Retry:      Key{Key: "R", Help: "retry save"},

		SwitchPane: Key{Key: "tab", Help: "switch pane"},
		TasksTab:   Key{Key: "T", Help: "tasks"},
		ItemsTab:   Key{Key: "I", Help: "items"},
	}
}

// WithoutVim moves navigation off the letter keys so they stay free.
func (k Keymap) WithoutVim() Keymap {
	k.Up.Key = "up"
	k.Down.Key = "down"
	k.Left.Key = "left"
	k.Right.Key = "right"
	k.Top.Key = "home"
	k.Bottom.Key = "end"
	return k
}

// KeyState tracks multi-key sequences (like 'gg' or 'dd').
type KeyState struct {
	LastKey  string
	WaitingG bool // Waiting for second 'g' in 'gg'
	WaitingD bool // Waiting for second 'd' in 'dd'
}

// HandleKey processes a key press and returns the action to take.
// Returns the action name and whether the key was consumed.
func (ks *KeyState) HandleKey(msg tea.KeyMsg, keymap Keymap) (string, bool) {
	key := msg.String()

	if ks.WaitingG {
		ks.WaitingG = false
		if key == keymap.Top.Key {
			return "top", true
		}
	}

	if ks.WaitingD {
		ks.WaitingD = false
		if key == keymap.Delete.Key {
			return "delete", true
		}
	}

	if key == keymap.Top.Key {
		ks.WaitingG = true
		ks.LastKey = key
		return "", true
	}

	if key == keymap.Delete.Key {
		ks.WaitingD = true
		ks.LastKey = key
		return "", true
	}

	switch key {
	case keymap.Up.Key, "up":
		return "up", true
	case keymap.Down.Key, "down":
		return "down", true
	case keymap.Bottom.Key:
		return "bottom", true
	case keymap.Left.Key, "left":
		return "left", true
	case keymap.Right.Key, "right":
		return "right", true
	case keymap.Select.Key:
		return "select", true
	case keymap.Back.Key:
		return "back", true
	case keymap.Quit.Key, "ctrl+c":
		return "quit", true
	case keymap.Discard.Key:
		return "discard", true
	case keymap.Help.Key:
		return "help", true
	case keymap.Refresh.Key:
		return "refresh", true
	case keymap.Add.Key:
		return "add", true
	case keymap.AddSubtask.Key:
		return "add_subtask", true
	case keymap.Edit.Key:
		return "edit", true
	case keymap.Toggle.Key, " ":
		return "toggle", true
	case keymap.Copy.Key:
		return "copy", true
	case keymap.Retry.Key:
		return "retry", true
	case keymap.SwitchPane.Key:
		return "switch_pane", true
	case keymap.TasksTab.Key:
		return "tab_tasks", true
	case keymap.ItemsTab.Key:
		return "tab_items", true
	}

	return "", false
}

// Reset clears any pending multi-key sequences.
func (ks *KeyState) Reset() {
	ks.WaitingG = false
	ks.WaitingD = false
	ks.LastKey = ""
}

// HelpSections groups the bindings for the help view. The last two
// sections only apply on their tab.
func (k Keymap) HelpSections() []components.HelpSection {
	bind := func(key Key) components.HelpBinding {
		return components.HelpBinding{Key: key.Key, Desc: key.Help}
	}
	return []components.HelpSection{
		{Title: "Navigation", Bindings: []components.HelpBinding{
			{Key: k.Up.Key + "/" + k.Down.Key, Desc: "move"},
			{Key: "gg/" + k.Bottom.Key, Desc: "top / bottom"},
			bind(k.SwitchPane),
			{Key: k.TasksTab.Key + "/" + k.ItemsTab.Key, Desc: "tasks / items tab"},
		}},
		{Title: "General", Bindings: []components.HelpBinding{
			bind(k.Refresh),
			bind(k.Help),
			bind(k.Back),
			bind(k.Quit),
			bind(k.Discard),
			bind(k.Copy),
			bind(k.Retry),
		}},
		{Title: "Tasks", Tab: TabTasks.list(), Bindings: []components.HelpBinding{
			bind(k.Add),
			bind(k.AddSubtask),
			{Key: k.Edit.Key + "/" + k.Select.Key, Desc: "rename"},
			{Key: k.Toggle.Key + "/space", Desc: k.Toggle.Help},
			{Key: "dd", Desc: "delete, saves at once"},
		}},
		{Title: "Items", Tab: TabItems.list(), Bindings: []components.HelpBinding{
			bind(k.Add),
			{Key: k.Left.Key + "/" + k.Right.Key, Desc: "previous / next column"},
			{Key: k.Edit.Key + "/" + k.Select.Key, Desc: "edit cell"},
			{Key: "dd", Desc: "delete, saves at once"},
		}},
	}
}
