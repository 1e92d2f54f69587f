package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/tilawa/internal/ui"
	"github.com/llehouerou/tilawa/internal/ui/headerbar"
	"github.com/llehouerou/tilawa/internal/ui/playerbar"
	"github.com/llehouerou/tilawa/internal/ui/popup"
	"github.com/llehouerou/tilawa/internal/ui/render"
	"github.com/llehouerou/tilawa/internal/ui/styles"
)

// statusHeight is the notice line under the verse panel.
const statusHeight = 1

// resize lays out header, verse panel, status line and player bar.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	panelHeight := height - headerbar.Height - statusHeight - playerbar.Height()
	m.verses.SetSize(max(width-ui.BorderHeight, 0), max(panelHeight-ui.BorderHeight, 0))
	m.help.SetSize(width, height)
	m.jump.SetSize(width, height)
}

// View renders the player screen.
func (m *Model) View() string {
	if m.width < ui.MinWidth || m.height < headerbar.Height+statusHeight+playerbar.Height()+ui.BorderHeight+1 {
		return "Terminal too small"
	}

	panel := styles.PanelStyle(m.snap.IsPlaying).Render(m.verses.View())
	bar := playerbar.Render(playerbar.NewState(m.snap, m.surah.Name, len(m.transport.Items())), m.width)

	base := strings.Join([]string{
		headerbar.Render(m.surah, m.width),
		panel,
		m.renderStatus(),
		bar,
	}, "\n")

	if box := m.renderOverlay(); box != "" {
		return popup.Overlay(base, box, m.width, m.height)
	}
	return base
}

// renderStatus shows the error, if any, else the latest notice.
func (m *Model) renderStatus() string {
	s := styles.T().S()
	var line string
	switch {
	case m.errMsg != "":
		line = s.Error.Render(ansi.Truncate(m.errMsg, m.width-1, "…"))
	case m.notice != "":
		line = s.Muted.Render(ansi.Truncate(m.notice, m.width-1, "…"))
	case !m.verses.AutoScroll():
		line = s.Subtle.Render("c follow recitation · enter play verse")
	}
	return " " + line
}

// renderOverlay returns the modal box on top of the screen, if any.
func (m *Model) renderOverlay() string {
	if m.showHelp {
		return popup.Frame(m.help.View(), m.width)
	}
	if m.showJump {
		return popup.Frame(m.jump.View(), m.width)
	}
	if m.redirect != nil {
		return m.redirectDialog()
	}
	return ""
}

func (m *Model) redirectDialog() string {
	r := m.redirect
	body := fmt.Sprintf("Verse %d is past the free preview.\nSign in to continue from %d:%d.",
		r.ItemNumber, r.CollectionID, r.ItemNumber)
	if m.loginURL != "" {
		body += "\n\n" + render.Sanitize(m.loginURL)
	}
	return popup.Dialog{
		Title:  "Sign-in required",
		Body:   body,
		Footer: "Playback resumes here after sign-in · esc dismiss",
		Width:  min(60, m.width-6),
	}.Render(m.width)
}
