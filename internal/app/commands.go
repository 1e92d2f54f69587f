package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tilawa/internal/playback"
)

const tickInterval = 250 * time.Millisecond

// TickCmd returns a command that sends TickMsg after tickInterval.
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// WatchSession waits for the next session event and converts it to a
// tea.Msg. Re-issue it after every event it delivers.
func WatchSession(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return StateChangedMsg(e)
		case e := <-sub.ItemChanged:
			return ItemChangedMsg(e)
		case e := <-sub.ModeChanged:
			return ModeChangedMsg(e)
		case e := <-sub.Notices:
			return NoticeMsg(e)
		case e := <-sub.Redirects:
			return RedirectMsg(e.Redirect)
		case e := <-sub.Errors:
			return ErrorMsg(e)
		case <-sub.Done:
			return SessionClosedMsg{}
		}
	}
}
