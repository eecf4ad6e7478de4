package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hy4ri/shopfloor/internal/model"
	"github.com/hy4ri/shopfloor/internal/tui/components"
	"go.uber.org/zap"
)

// itemColumns are the editable item fields in display order.
var itemColumns = []string{model.FieldItem, model.FieldPrice, model.FieldBudget, model.FieldQuantity}

type editKind int

const (
	editTaskTitle editKind = iota
	editSubtaskTitle
	editNewSubtask
	editItemField
)

// editTarget is the field the text input writes to.
type editTarget struct {
	kind  editKind
	index int
	sub   int
	field string
}

// taskRow addresses a task (sub < 0) or one of its subtasks.
type taskRow struct {
	task int
	sub  int
}

func taskRows(tasks []model.Task) []taskRow {
	rows := make([]taskRow, 0, len(tasks))
	for i, t := range tasks {
		rows = append(rows, taskRow{task: i, sub: -1})
		for j := range t.Subtasks {
			rows = append(rows, taskRow{task: i, sub: j})
		}
	}
	return rows
}

func rowIndex(rows []taskRow, task, sub int) int {
	for i, r := range rows {
		if r.task == task && r.sub == sub {
			return i
		}
	}
	return len(rows) - 1
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case statusMsg:
		a.statusMsg = msg.msg
		a.statusErr = msg.err
		return a, nil

	case projectsLoadedMsg:
		a.loading = false
		if msg.err != nil {
			a.setError("Failed to load projects", msg.err)
			return a, nil
		}
		a.projects = msg.projects
		a.sidebarComp.SetProjects(msg.projects)
		if a.tasks.ProjectID() == "" && a.opening == "" && len(msg.projects) > 0 {
			return a, a.startOpen(msg.projects[0].ID)
		}
		return a, nil

	case components.ProjectSelectedMsg:
		// One open at a time, or the two editors could land on different projects.
		if a.opening != "" {
			a.statusMsg = "Still opening " + a.projectName(a.opening) + "..."
			a.statusErr = false
			return a, nil
		}
		if msg.ID == a.tasks.ProjectID() {
			a.focusMain()
			return a, nil
		}
		return a, a.startOpen(msg.ID)

	case projectOpenedMsg:
		a.opening = ""
		if msg.err != nil {
			a.setError("Could not open project", msg.err)
			return a, nil
		}
		a.sidebarComp.SetActiveProject(msg.id)
		a.taskCursor, a.itemCursor, a.itemColumn = 0, 0, 0
		a.statusMsg = ""
		a.statusErr = false
		a.focusMain()
		return a, nil

	case statusChangedMsg:
		// The editors hold the state; the message only triggers a redraw.
		return a, a.waitForEvent()

	case saveFailedMsg:
		a.setError(fmt.Sprintf("Saving %s failed, %s to retry", msg.tab.list(), a.keymap.Retry.Key), msg.err)
		cmds := []tea.Cmd{a.waitForEvent()}
		if a.config.UI.Notify {
			cmds = append(cmds, a.notify(appTitle, fmt.Sprintf("Could not save %s for %s: %v", msg.tab.list(), a.projectName(msg.projectID), msg.err)))
		}
		return a, tea.Batch(cmds...)

	case closedMsg:
		if msg.err != nil {
			a.quitting = false
			a.setError(fmt.Sprintf("Could not save before quitting (%s quits anyway)", a.keymap.Discard.Key), msg.err)
			return a, nil
		}
		return a, tea.Quit

	case components.CloseHelpMsg:
		a.showHelp = false
		return a, nil
	}

	return a, nil
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC && a.editing != nil {
		a.endEdit()
	}
	if a.editing != nil {
		return a.handleInputKey(msg)
	}
	if a.showHelp {
		_, cmd := a.helpComp.Update(msg)
		return a, cmd
	}

	action, ok := a.keyState.HandleKey(msg, a.keymap)
	if !ok || action == "" {
		return a, nil
	}

	if action == "discard" {
		a.tasks.Discard()
		a.items.Discard()
		return a, tea.Quit
	}
	if a.quitting {
		return a, nil
	}

	switch action {
	case "quit":
		a.quitting = true
		a.statusMsg = "Saving..."
		a.statusErr = false
		return a, a.closeEditors()
	case "help":
		a.helpComp.SetTab(a.currentTab.list())
		a.showHelp = true
		return a, nil
	case "refresh":
		a.loading = true
		return a, a.loadProjects()
	case "switch_pane":
		if a.focusedPane == components.PaneSidebar {
			a.focusMain()
		} else {
			a.focusSidebar()
		}
		return a, nil
	case "tab_tasks":
		a.currentTab = TabTasks
		return a, nil
	case "tab_items":
		a.currentTab = TabItems
		return a, nil
	case "retry":
		a.retry()
		return a, nil
	}

	if a.focusedPane == components.PaneSidebar {
		return a.handleSidebarAction(action)
	}
	if a.opening != "" || a.tasks.ProjectID() == "" {
		return a, nil
	}
	if a.currentTab == TabItems {
		return a.handleItemsAction(action)
	}
	return a.handleTasksAction(action)
}

func (a *App) handleSidebarAction(action string) (tea.Model, tea.Cmd) {
	n := len(a.sidebarComp.Items())
	switch action {
	case "up":
		a.sidebarComp.MoveCursor(-1)
	case "down":
		a.sidebarComp.MoveCursor(1)
	case "top":
		a.sidebarComp.MoveCursor(-n)
	case "bottom":
		a.sidebarComp.MoveCursor(n)
	case "select", "right":
		_, cmd := a.sidebarComp.Update(tea.KeyMsg{Type: tea.KeyEnter})
		return a, cmd
	}
	return a, nil
}

func (a *App) handleTasksAction(action string) (tea.Model, tea.Cmd) {
	tasks := a.tasks.Items()
	rows := taskRows(tasks)
	a.taskCursor = clamp(a.taskCursor, len(rows))

	var row *taskRow
	if a.taskCursor < len(rows) {
		row = &rows[a.taskCursor]
	}

	switch action {
	case "up":
		a.taskCursor = clamp(a.taskCursor-1, len(rows))
	case "down":
		a.taskCursor = clamp(a.taskCursor+1, len(rows))
	case "top":
		a.taskCursor = 0
	case "bottom":
		a.taskCursor = clamp(len(rows)-1, len(rows))
	case "back", "left":
		a.focusSidebar()

	case "toggle":
		if row != nil {
			a.tasks.Toggle(row.task, row.sub)
		}

	case "add":
		idx, ok := a.tasks.Add()
		if !ok {
			// The last task is still untitled: edit it instead.
			idx = len(tasks) - 1
		}
		a.taskCursor = rowIndex(taskRows(a.tasks.Items()), idx, -1)
		return a, a.beginEdit(editTarget{kind: editTaskTitle, index: idx, sub: -1}, a.taskTitle(idx, -1))

	case "add_subtask":
		if row != nil {
			return a, a.beginEdit(editTarget{kind: editNewSubtask, index: row.task, sub: -1}, "")
		}

	case "edit", "select":
		if row == nil {
			return a, nil
		}
		kind := editTaskTitle
		if row.sub >= 0 {
			kind = editSubtaskTitle
		}
		return a, a.beginEdit(editTarget{kind: kind, index: row.task, sub: row.sub}, a.taskTitle(row.task, row.sub))

	case "delete":
		if row == nil {
			return a, nil
		}
		if row.sub >= 0 {
			a.tasks.RemoveSubtask(row.task, row.sub)
		} else {
			a.tasks.Remove(row.task)
		}
		a.taskCursor = clamp(a.taskCursor, len(taskRows(a.tasks.Items())))

	case "copy":
		return a, a.copyToClipboard(a.tasks.Text(), "task list")
	}
	return a, nil
}

func (a *App) handleItemsAction(action string) (tea.Model, tea.Cmd) {
	items := a.items.Items()
	a.itemCursor = clamp(a.itemCursor, len(items))

	switch action {
	case "up":
		a.itemCursor = clamp(a.itemCursor-1, len(items))
	case "down":
		a.itemCursor = clamp(a.itemCursor+1, len(items))
	case "top":
		a.itemCursor = 0
	case "bottom":
		a.itemCursor = clamp(len(items)-1, len(items))
	case "left":
		if a.itemColumn == 0 {
			a.focusSidebar()
		} else {
			a.itemColumn--
		}
	case "right":
		if a.itemColumn < len(itemColumns)-1 {
			a.itemColumn++
		}
	case "back":
		a.focusSidebar()

	case "add":
		idx, ok := a.items.Add()
		if !ok {
			idx = len(items) - 1
		}
		a.itemCursor = idx
		a.itemColumn = 0
		return a, a.beginEdit(editTarget{kind: editItemField, index: idx, field: model.FieldItem}, a.itemField(idx, model.FieldItem))

	case "edit", "select":
		if a.itemCursor >= len(items) {
			return a, nil
		}
		field := itemColumns[a.itemColumn]
		return a, a.beginEdit(editTarget{kind: editItemField, index: a.itemCursor, field: field}, a.itemField(a.itemCursor, field))

	case "delete":
		if a.itemCursor < len(items) {
			a.items.Remove(a.itemCursor)
			a.itemCursor = clamp(a.itemCursor, a.items.Len())
		}

	case "copy":
		return a, a.copyToClipboard(a.items.Text(), "item list")
	}
	return a, nil
}

// handleInputKey routes keys to the text input while a field is being
// edited. Every keystroke is applied to the list as it is typed.
func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if a.editing.kind == editNewSubtask {
			index := a.editing.index
			if a.tasks.AddSubtask(index, a.input.Value()) {
				tasks := a.tasks.Items()
				a.taskCursor = rowIndex(taskRows(tasks), index, len(tasks[index].Subtasks)-1)
			} else {
				a.statusMsg = "A subtask needs a title"
				a.statusErr = true
			}
		}
		a.endEdit()
		return a, nil

	case tea.KeyEsc:
		a.endEdit()
		return a, nil

	case tea.KeyTab:
		if a.editing.kind == editItemField && a.itemColumn < len(itemColumns)-1 {
			a.itemColumn++
			field := itemColumns[a.itemColumn]
			return a, a.beginEdit(editTarget{kind: editItemField, index: a.editing.index, field: field}, a.itemField(a.editing.index, field))
		}
		a.endEdit()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.applyInput()
	return a, cmd
}

func (a *App) applyInput() {
	t := a.editing
	value := a.input.Value()
	switch t.kind {
	case editTaskTitle:
		a.tasks.SetTitle(t.index, value)
	case editSubtaskTitle:
		a.tasks.RenameSubtask(t.index, t.sub, value)
	case editItemField:
		a.items.Set(t.index, t.field, value)
	}
}

func (a *App) beginEdit(t editTarget, value string) tea.Cmd {
	a.editing = &t
	a.keyState.Reset()
	a.input.Placeholder = placeholder(t)
	a.input.SetValue(value)
	a.input.CursorEnd()
	return a.input.Focus()
}

func (a *App) endEdit() {
	a.editing = nil
	a.input.Blur()
	a.input.SetValue("")
}

func placeholder(t editTarget) string {
	switch t.kind {
	case editNewSubtask:
		return "New subtask"
	case editSubtaskTitle:
		return "Subtask title"
	case editItemField:
		return t.field
	}
	return "Task title"
}

func (a *App) taskTitle(index, sub int) string {
	tasks := a.tasks.Items()
	if index < 0 || index >= len(tasks) {
		return ""
	}
	if sub < 0 {
		return tasks[index].Title
	}
	if sub >= len(tasks[index].Subtasks) {
		return ""
	}
	return tasks[index].Subtasks[sub].Title
}

func (a *App) itemField(index int, field string) string {
	items := a.items.Items()
	if index < 0 || index >= len(items) {
		return ""
	}
	return items[index].Field(field)
}

func (a *App) retry() {
	tasks := a.tasks.Retry()
	items := a.items.Retry()
	if tasks || items {
		a.statusMsg = "Retrying save..."
		a.statusErr = false
		return
	}
	a.statusMsg = "Nothing to retry"
	a.statusErr = false
}

func (a *App) startOpen(id string) tea.Cmd {
	a.opening = id
	a.statusMsg = "Opening " + a.projectName(id) + "..."
	a.statusErr = false
	return a.openProject(id)
}

func (a *App) notify(title, message string) tea.Cmd {
	return func() tea.Msg {
		_ = a.notifier.Notify(title, message)
		return nil
	}
}

func (a *App) setError(prefix string, err error) {
	a.statusMsg = prefix + ": " + err.Error()
	a.statusErr = true
	a.log.Warn(prefix, zap.Error(err))
}

func (a *App) projectName(id string) string {
	for _, p := range a.projects {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

func (a *App) focusMain() {
	a.focusedPane = components.PaneMain
	a.sidebarComp.Blur()
}

func (a *App) focusSidebar() {
	a.focusedPane = components.PaneSidebar
	a.sidebarComp.Focus()
}

// clamp keeps a cursor inside [0, n).
func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
