package app

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/tilawa/internal/errmsg"
	"github.com/llehouerou/tilawa/internal/gate"
	"github.com/llehouerou/tilawa/internal/icons"
	"github.com/llehouerou/tilawa/internal/playback"
	"github.com/llehouerou/tilawa/internal/transport"
	"github.com/llehouerou/tilawa/internal/ui/action"
	"github.com/llehouerou/tilawa/internal/ui/helpbindings"
	"github.com/llehouerou/tilawa/internal/ui/verselist"
	"github.com/llehouerou/tilawa/internal/ui/versejump"
)

// actionJump is the pseudo action for jumping from the verse list.
const actionJump transport.Action = "jump"

// Update handles messages and returns the updated model and commands.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case action.Msg:
		return m.handleAction(msg)

	case TickMsg:
		m.snap = m.transport.Snapshot()
		if m.notice != "" && time.Time(msg).Sub(m.noticeAt) > noticeTTL {
			m.notice = ""
		}
		return m, TickCmd()

	case SessionClosedMsg:
		return m, nil

	case LoginURLMsg:
		m.loginURL = msg.URL
		return m, nil

	case ConfigReloadedMsg:
		if msg.Err != nil {
			m.setNotice("Config reload failed: " + msg.Err.Error())
			return m, nil
		}
		if msg.Icons != "" {
			icons.Init(msg.Icons)
		}
		m.setNotice("Config reloaded")
		return m, nil
	}

	if m.handleSessionEvent(msg) {
		return m, WatchSession(m.sub)
	}
	if m.showJump {
		// Cursor blink.
		_, cmd := m.jump.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleSessionEvent applies a message produced by WatchSession. It reports
// whether msg was one.
func (m *Model) handleSessionEvent(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case StateChangedMsg:
		m.snap = m.transport.Snapshot()
		m.verses.SetPlaying(msg.Current == playback.StatePlaying)
		if msg.Current == playback.StatePlaying && msg.Previous == playback.StateLoading {
			m.errMsg = ""
			if m.announcer != nil {
				m.announcer.Verse(m.surah.Number, m.snap.CurrentNumber, m.snap.Voice)
			}
		}
		if msg.Current == playback.StateErrored && m.snap.ErrorMessage != "" {
			m.errMsg = m.snap.ErrorMessage
		}

	case ItemChangedMsg:
		m.verses.SetCurrent(msg.Index)
		m.snap = m.transport.Snapshot()

	case ModeChangedMsg:
		m.snap.Mode = msg.Mode
		m.snap.RepeatCount = msg.RepeatCount

	case NoticeMsg:
		m.setNotice(describeNotice(playback.Notice(msg), len(m.transport.Items())))

	case RedirectMsg:
		r := gate.Redirect(msg)
		m.redirect = &r
		m.snap = m.transport.Snapshot()

	case ErrorMsg:
		m.log.Debug().Err(msg.Err).Str("op", msg.Operation).Int("verse", msg.Number).Msg("session error")
		if snap := m.transport.Snapshot(); snap.ErrorMessage != "" {
			m.errMsg = snap.ErrorMessage
		} else {
			m.errMsg = errmsg.Format(errmsg.Op(msg.Operation), msg.Err)
		}

	default:
		return false
	}
	return true
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		p, cmd := m.help.Update(msg)
		m.help = p.(*helpbindings.Model)
		return m, cmd
	}
	if m.showJump {
		_, cmd := m.jump.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case ":":
		if len(m.transport.Items()) == 0 {
			return m, nil
		}
		m.showJump = true
		return m, m.jump.Start()
	case "esc":
		m.dismiss()
		return m, nil
	}

	if handled, cmd := m.verses.HandleKey(key); handled {
		return m, cmd
	}

	act, err := m.transport.HandleKey(transport.FromString(key))
	if act != "" {
		m.afterAction(act, err)
	}
	return m, nil
}

func (m *Model) handleAction(msg action.Msg) (tea.Model, tea.Cmd) {
	switch a := msg.Action.(type) {
	case verselist.Jump:
		m.afterAction(actionJump, m.transport.JumpTo(a.Number))
	case versejump.Result:
		m.showJump = false
		if !a.Canceled {
			m.afterAction(actionJump, m.transport.JumpTo(a.Number))
		}
	case helpbindings.Close:
		m.showHelp = false
	}
	return m, nil
}

// afterAction refreshes the snapshot and turns transport errors into notices.
func (m *Model) afterAction(act transport.Action, err error) {
	m.snap = m.transport.Snapshot()
	switch {
	case err == nil:
		if act == transport.ActionRetry || act == actionJump {
			m.errMsg = ""
		}
		m.describeAction(act)
	case errors.Is(err, playback.ErrSwitchPending), errors.Is(err, playback.ErrAccessDenied):
		// Reported through the session's own notice and redirect events.
	case errors.Is(err, playback.ErrNoNext),
		errors.Is(err, playback.ErrNoPrevious),
		errors.Is(err, playback.ErrNotLoaded),
		errors.Is(err, transport.ErrNoVoices):
		m.setNotice(capitalize(err.Error()))
	default:
		m.errMsg = errmsg.Format(opFor(act), err)
	}
}

func opFor(act transport.Action) errmsg.Op {
	switch act {
	case transport.ActionNextVoice:
		return errmsg.OpVoiceChange
	case transport.ActionSeekForward, transport.ActionSeekBack, transport.ActionSeekStart:
		return errmsg.OpPlaybackSeek
	case transport.ActionPlayPause:
		return errmsg.OpPlaybackStart
	default:
		return errmsg.OpVerseSwitch
	}
}

// describeAction confirms setting changes that are not obvious on the bar.
func (m *Model) describeAction(act transport.Action) {
	switch act {
	case transport.ActionCycleMode:
		m.setNotice("Mode: " + m.snap.Mode.String())
	case transport.ActionNextVoice:
		m.setNotice("Reciter: " + m.snap.Voice)
	case transport.ActionSpeedUp, transport.ActionSpeedDown:
		m.setNotice(fmt.Sprintf("Speed: %gx", m.snap.Speed))
	}
}

// dismiss clears the topmost message.
func (m *Model) dismiss() {
	switch {
	case m.redirect != nil:
		m.redirect = nil
		m.loginURL = ""
	case m.errMsg != "":
		m.errMsg = ""
	default:
		m.notice = ""
	}
}

func describeNotice(n playback.Notice, total int) string {
	switch n.Kind {
	case playback.NoticeItemComplete:
		return fmt.Sprintf("Verse %d complete", n.Number)
	case playback.NoticeCollectionComplete:
		return fmt.Sprintf("Surah complete · %d verses recited", total)
	case playback.NoticeSwitchPending:
		return fmt.Sprintf("Switching, verse %d is next", n.Number)
	case playback.NoticeRepeat:
		return fmt.Sprintf("Verse %d · %s repeat", n.Number, humanize.Ordinal(n.Count))
	default:
		return ""
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
