// Package app hosts the playback session in a terminal UI.
package app

import (
	"time"

	"github.com/llehouerou/tilawa/internal/gate"
	"github.com/llehouerou/tilawa/internal/playback"
)

// TickMsg refreshes the position and expires old notices.
type TickMsg time.Time

// StateChangedMsg wraps a session load state change.
type StateChangedMsg playback.StateChange

// ItemChangedMsg wraps a move of the current verse.
type ItemChangedMsg playback.ItemChange

// ModeChangedMsg wraps a mode or repeat counter change.
type ModeChangedMsg playback.ModeChange

// NoticeMsg wraps an informational session notice.
type NoticeMsg playback.Notice

// RedirectMsg is sent when the access gate stopped playback.
type RedirectMsg gate.Redirect

// ErrorMsg wraps a user-visible session error.
type ErrorMsg playback.ErrorEvent

// SessionClosedMsg is sent once the session's subscription is closed.
type SessionClosedMsg struct{}

// LoginURLMsg carries the sign-in page opened for a redirect.
type LoginURLMsg struct {
	URL string
}

// ConfigReloadedMsg is sent after the config file changed on disk. Icons
// is the new icon style; it is applied on the UI goroutine.
type ConfigReloadedMsg struct {
	Icons string
	Err   error
}
