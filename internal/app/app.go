package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/tilawa/internal/errmsg"
	"github.com/llehouerou/tilawa/internal/gate"
	"github.com/llehouerou/tilawa/internal/notify"
	"github.com/llehouerou/tilawa/internal/playback"
	"github.com/llehouerou/tilawa/internal/transport"
	"github.com/llehouerou/tilawa/internal/ui/headerbar"
	"github.com/llehouerou/tilawa/internal/ui/helpbindings"
	"github.com/llehouerou/tilawa/internal/ui/verselist"
	"github.com/llehouerou/tilawa/internal/ui/versejump"
)

// noticeTTL is how long a status notice stays on screen.
const noticeTTL = 4 * time.Second

// Session is the part of the playback session the UI listens to.
type Session interface {
	Subscribe() *playback.Subscription
}

// Gate marks verses that need an identity.
type Gate interface {
	CanAdvanceTo(collectionID, itemNumber int) gate.Decision
}

// Options configures the UI model. Session and Transport are required.
type Options struct {
	Session   Session
	Transport *transport.Transport
	Surah     headerbar.Info
	Gate      Gate
	Announcer *notify.Announcer
	// Autoplay starts the selected verse as soon as the UI is up.
	Autoplay bool
	Logger   zerolog.Logger
}

// Model is the root UI model.
type Model struct {
	transport *transport.Transport
	sub       *playback.Subscription
	announcer *notify.Announcer
	log       zerolog.Logger
	autoplay  bool

	surah  headerbar.Info
	snap   playback.Snapshot
	verses *verselist.Model
	help   *helpbindings.Model
	jump   *versejump.Model

	showHelp bool
	showJump bool
	notice   string
	noticeAt time.Time
	errMsg   string
	redirect *gate.Redirect
	loginURL string

	width, height int
}

// New creates the UI model and subscribes to the session.
func New(opts Options) *Model {
	t := opts.Transport
	m := &Model{
		transport: t,
		sub:       opts.Session.Subscribe(),
		announcer: opts.Announcer,
		log:       opts.Logger.With().Str("component", "ui").Logger(),
		autoplay:  opts.Autoplay,
		surah:     opts.Surah,
		snap:      t.Snapshot(),
		verses:    verselist.New(),
		help: helpbindings.New(
			helpbindings.TransportSection(transport.DefaultBindings, t.Keys()),
			helpbindings.VerseListSection,
			helpbindings.GeneralSection,
		),
		jump: versejump.New(len(t.Items())),
	}

	m.verses.SetItems(t.Items())
	if g := opts.Gate; g != nil {
		surah := opts.Surah.Number
		m.verses.SetLocked(func(number int) bool {
			return !g.CanAdvanceTo(surah, number).Allowed
		})
	}
	m.verses.SetCurrent(m.snap.CurrentIndex)
	m.verses.SetPlaying(m.snap.IsPlaying)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{TickCmd(), WatchSession(m.sub)}
	if m.autoplay {
		cmds = append(cmds, playCmd(m.transport, m.snap.CurrentNumber))
	}
	return tea.Batch(cmds...)
}

// playCmd starts the selected verse. It runs as a command so a failure is
// reported through the usual message path.
func playCmd(t *transport.Transport, number int) tea.Cmd {
	return func() tea.Msg {
		if err := t.Play(); err != nil {
			return ErrorMsg{Operation: string(errmsg.OpPlaybackStart), Number: number, Err: err}
		}
		return nil
	}
}

// setNotice shows a transient status message.
func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeAt = time.Now()
}
