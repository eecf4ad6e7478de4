package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hy4ri/shopfloor/internal/autosave"
	"github.com/hy4ri/shopfloor/internal/lists"
	"github.com/hy4ri/shopfloor/internal/model"
	"github.com/hy4ri/shopfloor/internal/tui/components"
	"github.com/hy4ri/shopfloor/internal/tui/styles"
	"github.com/hy4ri/shopfloor/internal/tui/utils"
)

const (
	sidebarWidth = 30

	colPrice  = 11
	colBudget = 11
	colQty    = 5
	colLine   = 13
)

// resize propagates the terminal size to the components.
func (a *App) resize() {
	a.sidebarComp.SetSize(a.sidebarWidth(), a.height-1)
	a.helpComp.SetSize(a.width, a.height)
	a.progress.Width = max(10, a.mainWidth()-4)
}

func (a *App) sidebarWidth() int {
	if a.width < 80 {
		return a.width / 3
	}
	return sidebarWidth
}

func (a *App) mainWidth() int {
	return max(20, a.width-a.sidebarWidth()-4)
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return a.spinner.View() + " Loading..."
	}
	if a.showHelp {
		return a.helpComp.View()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, a.sidebarComp.View(), a.renderMain())
	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderStatusBar())
}

func (a *App) renderMain() string {
	width := a.mainWidth()
	height := max(3, a.height-3)

	var b strings.Builder
	b.WriteString(a.renderTabs())
	b.WriteString("\n")

	switch {
	case a.loading && len(a.projects) == 0:
		b.WriteString(a.spinner.View() + " Loading projects...")
	case a.opening != "":
		b.WriteString(a.spinner.View() + " Opening " + a.projectName(a.opening) + "...")
	case a.tasks.ProjectID() == "":
		b.WriteString(styles.Faint.Render("Select a project"))
	default:
		b.WriteString(styles.Title.Render(a.projectName(a.tasks.ProjectID())))
		b.WriteString("\n")
		if a.editing != nil {
			b.WriteString(styles.InputLabel.Render(placeholder(*a.editing)))
			b.WriteString("\n")
			b.WriteString(styles.InputFocused.Width(width - 4).Render(a.input.View()))
			b.WriteString("\n")
		}
		listHeight := height - 4
		if a.editing != nil {
			listHeight -= 4
		}
		if a.currentTab == TabItems {
			b.WriteString(a.renderItems(width, listHeight))
		} else {
			b.WriteString(a.renderTasks(width, listHeight))
		}
	}

	style := styles.MainContent
	if a.focusedPane == components.PaneMain {
		style = styles.MainContentFocused
	}
	return style.Width(width).Height(height).Render(b.String())
}

func (a *App) renderTabs() string {
	tabs := []struct {
		tab   Tab
		label string
	}{
		{TabTasks, fmt.Sprintf("Tasks %d%%", a.tasks.Progress())},
		{TabItems, "Items " + utils.FormatMoney(a.items.Total())},
	}

	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t.tab == a.currentTab {
			parts = append(parts, styles.TabActive.Render(t.label))
		} else {
			parts = append(parts, styles.Tab.Render(t.label))
		}
	}
	return styles.TabBar.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

func (a *App) renderTasks(width, height int) string {
	tasks := a.tasks.Items()
	rows := taskRows(tasks)

	var b strings.Builder
	b.WriteString(a.progress.ViewAs(float64(lists.Progress(tasks)) / 100))
	b.WriteString("\n\n")

	if len(rows) == 0 {
		b.WriteString(styles.Faint.Render(fmt.Sprintf("No tasks yet. Press %s to add one.", a.keymap.Add.Key)))
		return b.String()
	}

	start, end := window(a.taskCursor, len(rows), height-2)
	focused := a.focusedPane == components.PaneMain
	for i := start; i < end; i++ {
		b.WriteString(a.renderTaskRow(tasks, rows[i], focused && i == a.taskCursor, width))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) renderTaskRow(tasks []model.Task, row taskRow, selected bool, width int) string {
	task := tasks[row.task]

	if row.sub >= 0 {
		sub := task.Subtasks[row.sub]
		style := styles.SubtaskItem
		switch {
		case selected:
			style = styles.SubtaskSelected
		case sub.Checked:
			style = styles.SubtaskCompleted
		}
		return style.Render(checkbox(sub.Checked) + " " + utils.TruncateString(sub.Title, width-12))
	}

	style := styles.TaskItem
	switch {
	case selected:
		style = styles.TaskSelected
	case task.Checked:
		style = styles.TaskCompleted
	}

	title := task.Title
	if strings.TrimSpace(title) == "" {
		title = "untitled"
	}
	line := checkbox(task.Checked) + " " + utils.TruncateString(title, width-16)
	if n := len(task.Subtasks); n > 0 {
		done := 0
		for _, s := range task.Subtasks {
			if s.Checked {
				done++
			}
		}
		line += styles.HelpDesc.Render(fmt.Sprintf(" (%d/%d)", done, n))
	}
	return style.Render(line)
}

func checkbox(checked bool) string {
	if checked {
		return styles.CheckboxChecked
	}
	return styles.CheckboxUnchecked
}

func (a *App) renderItems(width, height int) string {
	items := a.items.Items()
	itemWidth := max(8, width-colPrice-colBudget-colQty-colLine-8)
	widths := []int{itemWidth, colPrice, colBudget, colQty, colLine}

	var b strings.Builder
	header := []string{
		utils.Cell("Item", itemWidth),
		utils.CellRight("Price", colPrice),
		utils.CellRight("Budget", colBudget),
		utils.CellRight("Qty", colQty),
		utils.CellRight("Line total", colLine),
	}
	b.WriteString(styles.TableHeader.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(styles.Faint.Render(fmt.Sprintf("No items yet. Press %s to add one.", a.keymap.Add.Key)))
		b.WriteString("\n")
	}

	start, end := window(a.itemCursor, len(items), height-4)
	focused := a.focusedPane == components.PaneMain
	for i := start; i < end; i++ {
		li := items[i]
		values := []string{li.Item, li.Price, li.Budget, string(li.Quantity), utils.FormatMoney(lists.LineTotal(li))}
		cells := make([]string, len(values))
		for c, v := range values {
			var text string
			if c == 0 {
				text = utils.Cell(v, widths[c])
			} else {
				text = utils.CellRight(v, widths[c])
			}
			style := styles.TableCell
			if focused && i == a.itemCursor {
				style = styles.TableRowSelected
				if c == a.itemColumn {
					style = styles.TableCellSelected
				}
			}
			cells[c] = style.Render(text)
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}

	variance := a.items.Variance()
	varianceStyle := styles.UnderBudget
	if variance < 0 {
		varianceStyle = styles.OverBudget
	}
	b.WriteString("\n")
	b.WriteString(styles.TableTotal.Render(fmt.Sprintf("Total %s   Budget %s   ",
		utils.FormatMoney(a.items.Total()), utils.FormatMoney(a.items.BudgetTotal()))))
	b.WriteString(varianceStyle.Render("Variance " + utils.FormatMoney(variance)))
	return b.String()
}

// window returns the visible slice bounds keeping cursor on screen.
func window(cursor, n, height int) (int, int) {
	if height < 1 {
		height = 1
	}
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := min(n, start+height)
	return start, end
}

func (a *App) renderStatusBar() string {
	st := a.tasks.Status()
	if a.currentTab == TabItems {
		st = a.items.Status()
	}

	parts := []string{a.saveStatus(st)}
	if a.statusMsg != "" {
		if a.statusErr {
			parts = append(parts, styles.StatusBarError.Render(a.statusMsg))
		} else {
			parts = append(parts, styles.StatusBarText.Render(a.statusMsg))
		}
	}
	left := strings.Join(parts, "  ")

	right := styles.StatusBarKey.Render(a.keymap.Help.Key) + styles.StatusBarText.Render(" help  ") +
		styles.StatusBarKey.Render(a.keymap.Quit.Key) + styles.StatusBarText.Render(" quit")

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.StatusBar.Width(a.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (a *App) saveStatus(st autosave.Status) string {
	switch st.Phase {
	case autosave.PhaseSaving:
		return a.spinner.View() + styles.StatusBarText.Render(" saving")
	case autosave.PhasePendingDebounce:
		return styles.StatusBarPending.Render("● unsaved")
	case autosave.PhaseSaved:
		return styles.StatusBarSuccess.Render("✓ saved")
	}
	if st.Dirty {
		if st.LastErr != nil {
			return styles.StatusBarError.Render("✗ not saved")
		}
		return styles.StatusBarPending.Render("● unsaved")
	}
	return styles.StatusBarText.Render(utils.FormatSaved(st.LastSaved))
}
