package components

// Pane represents which pane is currently focused.
type Pane int

const (
	PaneSidebar Pane = iota
	PaneMain
)

// SidebarItem represents a project row in the sidebar.
type SidebarItem struct {
	ID     string
	Name   string
	Client string
	Status string
}
