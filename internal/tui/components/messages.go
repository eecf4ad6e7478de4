package components

// ProjectSelectedMsg is emitted when a project is selected in the sidebar.
type ProjectSelectedMsg struct {
	ID   string
	Name string
}

// CloseHelpMsg is emitted when the help overlay is dismissed.
type CloseHelpMsg struct{}
