package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hy4ri/shopfloor/internal/autosave"
	"github.com/hy4ri/shopfloor/internal/config"
	"github.com/hy4ri/shopfloor/internal/editor"
	"github.com/hy4ri/shopfloor/internal/model"
	"github.com/hy4ri/shopfloor/internal/store"
	"github.com/hy4ri/shopfloor/internal/tui/components"
	"github.com/hy4ri/shopfloor/internal/tui/styles"
	"go.uber.org/zap"
)

const (
	// storeTimeout bounds project loads and the flush on switch or quit.
	storeTimeout = 30 * time.Second
	eventBuffer  = 128
)

// Tab represents a top-level tab.
type Tab int

const (
	TabTasks Tab = iota
	TabItems
)

func (t Tab) list() string {
	if t == TabItems {
		return "items"
	}
	return "tasks"
}

// Options carries the App's dependencies. Store and Config are required.
type Options struct {
	Store  store.Store
	Config *config.Config
	Logger *zap.Logger

	// Notifier defaults to a desktop notification.
	Notifier Notifier
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
	// Clock drives the autosave timers; nil means wall-clock time.
	Clock autosave.Clock
}

// App is the main Bubble Tea model for the application.
type App struct {
	// Dependencies
	store     store.Store
	config    *config.Config
	log       *zap.Logger
	notifier  Notifier
	clipboard func(string) error
	clock     autosave.Clock

	tasks  *editor.Tasks
	items  *editor.Items
	events chan tea.Msg

	// View state
	currentTab  Tab
	focusedPane components.Pane
	showHelp    bool

	projects []model.Project

	// List state
	taskCursor int
	itemCursor int
	itemColumn int

	// Inline editing
	input   textinput.Model
	editing *editTarget

	// UI state
	loading   bool
	opening   string // project being opened
	statusMsg string
	statusErr bool
	quitting  bool
	width     int
	height    int

	// Components
	spinner     spinner.Model
	progress    progress.Model
	keyState    KeyState
	keymap      Keymap
	sidebarComp *components.SidebarModel
	helpComp    *components.HelpModel
}

// NewApp creates a new App instance.
func NewApp(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	input := textinput.New()
	input.CharLimit = 200
	input.Prompt = "› "

	keymap := DefaultKeymap()
	if !cfg.UI.VimMode {
		keymap = keymap.WithoutVim()
	}

	app := &App{
		store:       opts.Store,
		config:      cfg,
		log:         log,
		notifier:    opts.Notifier,
		clipboard:   opts.Clipboard,
		clock:       opts.Clock,
		events:      make(chan tea.Msg, eventBuffer),
		currentTab:  TabTasks,
		focusedPane: components.PaneSidebar,
		input:       input,
		loading:     true,
		spinner:     s,
		progress:    progress.New(progress.WithDefaultGradient()),
		keymap:      keymap,
		sidebarComp: components.NewSidebar(),
		helpComp:    components.NewHelp(keymap.HelpSections()),
	}
	if app.notifier == nil {
		app.notifier = desktopNotifier{log: log}
	}
	if app.clipboard == nil {
		app.clipboard = clipboard.WriteAll
	}

	app.tasks = editor.NewTasks(opts.Store, app.sessionOptions(TabTasks))
	app.items = editor.NewItems(opts.Store, app.sessionOptions(TabItems))

	app.sidebarComp.Focus()

	return app
}

// sessionOptions wires an editor's status callbacks into the event channel.
func (a *App) sessionOptions(tab Tab) autosave.Options {
	list := tab.list()
	return autosave.Options{
		Debounce:  a.config.Debounce(),
		SavedHold: a.config.SavedHold(),
		Clock:     a.clock,
		Logger:    a.log.Named(list),
		OnStatus: func(st autosave.Status) {
			a.post(statusChangedMsg{tab: tab, status: st})
		},
		OnError: func(projectID string, err error) {
			a.post(saveFailedMsg{tab: tab, projectID: projectID, err: err})
		},
	}
}

// post hands a session event to the update loop. It never blocks, so it is
// safe to call from any goroutine; events beyond the buffer are dropped.
func (a *App) post(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
		a.log.Debug("ui event dropped", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		a.loadProjects(),
		a.waitForEvent(),
	)
}

// waitForEvent delivers the next session event to Update.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-a.events
	}
}

func (a *App) loadProjects() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		projects, err := a.store.Projects(ctx)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

// openProject saves the open project's lists and loads another's. If the
// item list cannot be switched the task list goes back to the project it
// came from, so both editors always show the same project.
func (a *App) openProject(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		prev := a.tasks.ProjectID()
		if err := a.tasks.Switch(ctx, id); err != nil {
			return projectOpenedMsg{id: id, err: err}
		}
		if err := a.items.Switch(ctx, id); err != nil {
			if prev != "" {
				if rerr := a.tasks.Open(ctx, prev); rerr != nil {
					a.log.Warn("failed to reopen tasks", zap.String("project", prev), zap.Error(rerr))
				}
			}
			return projectOpenedMsg{id: id, err: err}
		}
		return projectOpenedMsg{id: id}
	}
}

// closeEditors flushes both lists. On failure the editors stay open.
func (a *App) closeEditors() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := a.tasks.Close(ctx); err != nil {
			return closedMsg{err: fmt.Errorf("tasks: %w", err)}
		}
		if err := a.items.Close(ctx); err != nil {
			return closedMsg{err: fmt.Errorf("items: %w", err)}
		}
		return closedMsg{}
	}
}

func (a *App) copyToClipboard(text, what string) tea.Cmd {
	return func() tea.Msg {
		if err := a.clipboard(text); err != nil {
			return statusMsg{msg: "Failed to copy: " + err.Error(), err: true}
		}
		return statusMsg{msg: "Copied " + what}
	}
}

// Message types
type statusMsg struct {
	msg string
	err bool
}
type projectsLoadedMsg struct {
	projects []model.Project
	err      error
}
type projectOpenedMsg struct {
	id  string
	err error
}
type statusChangedMsg struct {
	tab    Tab
	status autosave.Status
}
type saveFailedMsg struct {
	tab       Tab
	projectID string
	err       error
}
type closedMsg struct{ err error }
