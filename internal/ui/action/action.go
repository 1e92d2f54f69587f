// Package action defines the interface for UI component actions.
package action

import tea "github.com/charmbracelet/bubbletea"

// Action is something a UI component asks the app to do.
// ActionType names it for logging.
type Action interface {
	ActionType() string
}

// Msg wraps an action with the name of the component that raised it,
// e.g. "verselist" or "help".
type Msg struct {
	Source string
	Action Action
}

var _ tea.Msg = Msg{}
