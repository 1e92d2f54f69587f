package popup

import tea "github.com/charmbracelet/bubbletea"

// Popup is a modal component drawn over the player screen.
type Popup interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Popup, tea.Cmd)
	// View renders the content without the outer border.
	View() string
	SetSize(width, height int)
}
