package editor

import (
	"strings"

	"github.com/hy4ri/shopfloor/internal/autosave"
	"github.com/hy4ri/shopfloor/internal/lists"
	"github.com/hy4ri/shopfloor/internal/model"
	"github.com/hy4ri/shopfloor/internal/store"
)

// Tasks edits a project's task checklist.
type Tasks struct {
	base[model.Task]
}

// NewTasks returns a task editor that saves through st.
func NewTasks(st store.Store, opts autosave.Options) *Tasks {
	p := autosave.PersistFunc[model.Task](st.SaveTasks)
	return &Tasks{base[model.Task]{
		Session: autosave.New[model.Task](p, opts),
		load:    st.Tasks,
		kind:    "tasks",
	}}
}

// Add appends an empty task and returns its index.
func (e *Tasks) Add() (int, bool) {
	return e.Append(model.NewTask())
}

// SetTitle renames the task at index.
func (e *Tasks) SetTitle(index int, title string) bool {
	return e.UpdateField(index, model.FieldTitle, title)
}

// Toggle flips a task (sub < 0) or one of its subtasks.
func (e *Tasks) Toggle(index, sub int) bool {
	return e.Edit(func(tasks []model.Task) ([]model.Task, bool) {
		return lists.Toggle(tasks, index, sub)
	})
}

// AddSubtask appends a subtask to the task at index.
func (e *Tasks) AddSubtask(index int, title string) bool {
	return e.Edit(func(tasks []model.Task) ([]model.Task, bool) {
		return lists.AddSubtask(tasks, index, title)
	})
}

// RenameSubtask sets a subtask's title.
func (e *Tasks) RenameSubtask(index, sub int, title string) bool {
	return e.Edit(func(tasks []model.Task) ([]model.Task, bool) {
		return lists.RenameSubtask(tasks, index, sub, title)
	})
}

// RemoveSubtask deletes a subtask and saves right away.
func (e *Tasks) RemoveSubtask(index, sub int) bool {
	return e.EditNow(func(tasks []model.Task) ([]model.Task, bool) {
		return lists.RemoveSubtask(tasks, index, sub)
	})
}

// Progress is the checklist's completion percentage.
func (e *Tasks) Progress() int {
	return lists.Progress(e.Items())
}

// Text renders the checklist as plain text.
func (e *Tasks) Text() string {
	return TasksText(e.Items())
}

// TasksText renders tasks as an indented checklist.
func TasksText(tasks []model.Task) string {
	var b strings.Builder
	for _, t := range lists.TrimEmpty(tasks) {
		b.WriteString(checkbox(t.Checked) + " " + t.Title + "\n")
		for _, st := range t.Subtasks {
			b.WriteString("    " + checkbox(st.Checked) + " " + st.Title + "\n")
		}
	}
	return b.String()
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}
