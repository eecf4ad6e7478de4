// Package model defines the records edited by the project editors.
package model

import (
	"slices"
	"strings"
)

// Task field names accepted by WithField.
const (
	FieldTitle = "title"
)

// Subtask is a checklist entry nested under a Task.
type Subtask struct {
	Title   string `json:"title"`
	Checked bool   `json:"checked"`
}

// Task is a project task with an optional subtask checklist.
type Task struct {
	Title    string    `json:"title"`
	Checked  bool      `json:"checked"`
	Subtasks []Subtask `json:"subtasks"`
}

// Label returns the task title.
func (t Task) Label() string {
	return t.Title
}

// IsEmpty reports whether the task carries no user data.
func (t Task) IsEmpty() bool {
	return strings.TrimSpace(t.Title) == "" && !t.Checked && len(t.Subtasks) == 0
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	out := t
	if t.Subtasks != nil {
		out.Subtasks = slices.Clone(t.Subtasks)
	}
	return out
}

// Equal compares two tasks field by field. A nil and an empty subtask
// list are equal.
func (t Task) Equal(o Task) bool {
	if t.Title != o.Title || t.Checked != o.Checked {
		return false
	}
	return slices.Equal(t.Subtasks, o.Subtasks)
}

// WithField returns a copy of t with the named field set.
// Only "title" is editable as text; ok is false for anything else.
func (t Task) WithField(name, value string) (Task, bool) {
	out := t.Clone()
	switch name {
	case FieldTitle:
		out.Title = value
	default:
		return t, false
	}
	return out, true
}

// NewTask returns the blank row appended by the task editor.
func NewTask() Task {
	return Task{Subtasks: []Subtask{}}
}
