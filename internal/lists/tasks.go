package lists

import (
	"math"

	"github.com/hy4ri/shopfloor/internal/model"
)

// CascadeDown sets the task and every subtask to checked.
func CascadeDown(t model.Task, checked bool) model.Task {
	out := t.Clone()
	out.Checked = checked
	for i := range out.Subtasks {
		out.Subtasks[i].Checked = checked
	}
	return out
}

// RecomputeUp derives the task's checked state from its subtasks: checked
// iff every subtask is checked. A task without subtasks is returned as is.
func RecomputeUp(t model.Task) model.Task {
	if len(t.Subtasks) == 0 {
		return t
	}
	out := t.Clone()
	out.Checked = true
	for _, st := range out.Subtasks {
		if !st.Checked {
			out.Checked = false
			break
		}
	}
	return out
}

// Toggle flips a task (sub < 0) or one of its subtasks. Toggling a task
// cascades the new state down to all subtasks; toggling a subtask
// recomputes the parent.
func Toggle(tasks []model.Task, index, sub int) ([]model.Task, bool) {
	if index < 0 || index >= len(tasks) {
		return tasks, false
	}
	t := tasks[index]
	if sub >= len(t.Subtasks) {
		return tasks, false
	}
	return Update(tasks, index, func(t model.Task) model.Task {
		if sub < 0 {
			return CascadeDown(t, !t.Checked)
		}
		t.Subtasks[sub].Checked = !t.Subtasks[sub].Checked
		return RecomputeUp(t)
	})
}

// AddSubtask appends a subtask to the task at index. Blank titles are
// refused.
func AddSubtask(tasks []model.Task, index int, title string) ([]model.Task, bool) {
	if IsBlank(title) || index < 0 || index >= len(tasks) {
		return tasks, false
	}
	return Update(tasks, index, func(t model.Task) model.Task {
		t.Subtasks = append(t.Subtasks, model.Subtask{Title: title})
		return RecomputeUp(t)
	})
}

// RemoveSubtask deletes one subtask and recomputes the parent.
func RemoveSubtask(tasks []model.Task, index, sub int) ([]model.Task, bool) {
	if index < 0 || index >= len(tasks) || sub < 0 || sub >= len(tasks[index].Subtasks) {
		return tasks, false
	}
	return Update(tasks, index, func(t model.Task) model.Task {
		t.Subtasks = append(t.Subtasks[:sub], t.Subtasks[sub+1:]...)
		return RecomputeUp(t)
	})
}

// RenameSubtask sets the title of one subtask.
func RenameSubtask(tasks []model.Task, index, sub int, title string) ([]model.Task, bool) {
	if index < 0 || index >= len(tasks) || sub < 0 || sub >= len(tasks[index].Subtasks) {
		return tasks, false
	}
	return Update(tasks, index, func(t model.Task) model.Task {
		t.Subtasks[sub].Title = title
		return t
	})
}

// Contribution is the share of a task that is done, in [0, 1].
func Contribution(t model.Task) float64 {
	if len(t.Subtasks) == 0 {
		if t.Checked {
			return 1
		}
		return 0
	}
	done := 0
	for _, st := range t.Subtasks {
		if st.Checked {
			done++
		}
	}
	return float64(done) / float64(len(t.Subtasks))
}

// Progress returns overall completion as a rounded percentage.
func Progress(tasks []model.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tasks {
		sum += Contribution(t)
	}
	return int(math.Round(100 * sum / float64(len(tasks))))
}
