package app

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tilawa/internal/gate"
	"github.com/llehouerou/tilawa/internal/icons"
	"github.com/llehouerou/tilawa/internal/playback"
	"github.com/llehouerou/tilawa/internal/transport"
	"github.com/llehouerou/tilawa/internal/ui/action"
	"github.com/llehouerou/tilawa/internal/ui/headerbar"
)

// fakePlayer implements transport.Player and records calls.
type fakePlayer struct {
	mu      sync.Mutex
	snap    playback.Snapshot
	items   []playback.Item
	calls   []string
	jumped  []int
	nextErr error
}

func (p *fakePlayer) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakePlayer) Play() error { p.record("play"); return nil }
func (p *fakePlayer) Pause()      { p.record("pause") }
func (p *fakePlayer) Stop()       { p.record("stop") }
func (p *fakePlayer) Toggle() (bool, error) {
	p.record("toggle")
	return true, nil
}
func (p *fakePlayer) Next() error     { p.record("next"); return p.nextErr }
func (p *fakePlayer) Previous() error { p.record("previous"); return nil }
func (p *fakePlayer) JumpTo(number int) error {
	p.record("jump")
	p.jumped = append(p.jumped, number)
	return nil
}
func (p *fakePlayer) SeekTo(time.Duration) error { return nil }
func (p *fakePlayer) Seek(time.Duration) error   { return nil }
func (p *fakePlayer) SetVolume(v int) int        { p.snap.Volume = v; return v }
func (p *fakePlayer) SetSpeed(v float64) float64 { p.snap.Speed = v; return v }
func (p *fakePlayer) SetMuted(m bool)            { p.snap.Muted = m }
func (p *fakePlayer) SetMode(m playback.Mode)    { p.snap.Mode = m }
func (p *fakePlayer) CycleMode() playback.Mode {
	p.snap.Mode = p.snap.Mode.Next()
	return p.snap.Mode
}
func (p *fakePlayer) SetVoice(v string) error     { p.snap.Voice = v; return nil }
func (p *fakePlayer) Retry() error                { p.record("retry"); return nil }
func (p *fakePlayer) Snapshot() playback.Snapshot { return p.snap }
func (p *fakePlayer) Items() []playback.Item      { return p.items }

func (p *fakePlayer) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

type fakeSession struct{}

func (fakeSession) Subscribe() *playback.Subscription { return &playback.Subscription{} }

func newTestModel(t *testing.T, opts ...func(*Options)) (*Model, *fakePlayer) {
	t.Helper()
	p := &fakePlayer{
		snap: playback.Snapshot{
			CollectionID:  1,
			CurrentNumber: 1,
			Voice:         "Alafasy_128kbps",
			Speed:         1,
			Volume:        80,
		},
		items: []playback.Item{
			{Number: 1, Text: "بِسْمِ اللَّهِ الرَّحْمَٰنِ الرَّحِيمِ"},
			{Number: 2, Text: "الْحَمْدُ لِلَّهِ رَبِّ الْعَالَمِينَ"},
			{Number: 3, Text: "الرَّحْمَٰنِ الرَّحِيمِ"},
		},
	}
	o := Options{
		Session:   fakeSession{},
		Transport: transport.New(p),
		Surah:     headerbar.Info{Number: 1, Name: "Al-Fatiha", TotalVerses: 3},
	}
	for _, fn := range opts {
		fn(&o)
	}
	m := New(o)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, p
}

func key(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func view(m *Model) string {
	return ansi.Strip(m.View())
}

func TestView_ShowsHeaderVersesAndBar(t *testing.T) {
	m, _ := newTestModel(t)

	out := view(m)
	assert.Contains(t, out, "1. Al-Fatiha")
	assert.Contains(t, out, "الْحَمْدُ")
	assert.Contains(t, out, "1:1/3")
	assert.Len(t, strings.Split(out, "\n"), 30)
}

func TestView_TooSmall(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 5})

	assert.Equal(t, "Terminal too small", m.View())
}

func TestKeys_DispatchToTransport(t *testing.T) {
	m, p := newTestModel(t)

	m.Update(key("space"))
	m.Update(key("l"))
	m.Update(key("t"))

	assert.Equal(t, []string{"toggle", "next", "retry"}, p.Calls())
}

func TestKeys_VerseListConsumesNavigation(t *testing.T) {
	m, p := newTestModel(t)

	m.Update(key("j"))
	m.Update(key("j"))
	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)

	msg := cmd()
	_, ok := msg.(action.Msg)
	require.True(t, ok, "expected action.Msg, got %T", msg)
	m.Update(msg)

	assert.Equal(t, []int{3}, p.jumped)
	assert.NotContains(t, p.Calls(), "next")
}

func TestKeys_NoNextShowsNotice(t *testing.T) {
	m, p := newTestModel(t)
	p.nextErr = playback.ErrNoNext

	m.Update(key("l"))

	assert.Contains(t, view(m), "Already at the last verse")
}

func TestKeys_DeniedLeavesStatusToRedirect(t *testing.T) {
	m, p := newTestModel(t)
	p.nextErr = &playback.DeniedError{Redirect: gate.Redirect{CollectionID: 1, ItemNumber: 6}}

	m.Update(key("l"))

	assert.Empty(t, m.errMsg)
	assert.Empty(t, m.notice)
}

func TestKeys_UnexpectedErrorShown(t *testing.T) {
	m, p := newTestModel(t)
	p.nextErr = errors.New("speaker unavailable")

	m.Update(key("l"))

	assert.Contains(t, view(m), "Failed to switch verse: speaker unavailable")

	m.Update(key("esc"))
	assert.NotContains(t, view(m), "speaker unavailable")
}

func TestKeys_CycleModeConfirms(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(key("r"))

	assert.Contains(t, view(m), "Mode: Continuous")
}

func TestHelp_OpenAndClose(t *testing.T) {
	m, p := newTestModel(t)

	m.Update(key("?"))
	assert.Contains(t, view(m), "Help")

	// Keys go to the popup while it is open.
	m.Update(key("l"))
	assert.Empty(t, p.Calls())

	_, cmd := m.Update(key("esc"))
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.False(t, m.showHelp)
}

func TestJumpPrompt(t *testing.T) {
	m, p := newTestModel(t)

	_, cmd := m.Update(key(":"))
	assert.NotNil(t, cmd)
	assert.Contains(t, view(m), "Go to verse")

	m.Update(key("2"))
	_, cmd = m.Update(key("enter"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.False(t, m.showJump)
	assert.Equal(t, []int{2}, p.jumped)
}

func TestJumpPrompt_Cancel(t *testing.T) {
	m, p := newTestModel(t)

	m.Update(key(":"))
	_, cmd := m.Update(key("esc"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.False(t, m.showJump)
	assert.Empty(t, p.jumped)
	assert.NotContains(t, view(m), "Go to verse")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRedirect_ShowsSignInDialog(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(RedirectMsg{CollectionID: 1, ItemNumber: 6, Reason: gate.ReasonSignIn})
	assert.NotNil(t, cmd, "session watch should be re-armed")
	m.Update(LoginURLMsg{URL: "https://example.com/login?surah=1&verse=6"})

	out := view(m)
	assert.Contains(t, out, "Sign-in required")
	assert.Contains(t, out, "Verse 6 is past the free preview")
	assert.Contains(t, out, "https://example.com/login")

	m.Update(key("esc"))
	assert.NotContains(t, view(m), "Sign-in required")
}

func TestSessionEvents_ItemAndState(t *testing.T) {
	m, p := newTestModel(t)

	p.snap.CurrentIndex, p.snap.CurrentNumber = 2, 3
	m.Update(ItemChangedMsg{PreviousIndex: 0, Index: 2, Number: 3})
	assert.Equal(t, 2, m.verses.Current())

	p.snap.IsPlaying = true
	m.Update(StateChangedMsg{Previous: playback.StateLoading, Current: playback.StatePlaying})
	assert.Contains(t, view(m), "▶   3")
}

func TestSessionEvents_ErrorUsesSnapshotMessage(t *testing.T) {
	m, p := newTestModel(t)
	p.snap.ErrorMessage = "Failed to load verse: status 404 (press t to try again)"
	p.snap.LoadState = playback.StateErrored

	m.Update(ErrorMsg{Operation: "load verse", Number: 1, Err: errors.New("status 404")})

	assert.Contains(t, view(m), "status 404 (press t to try again)")
}

func TestNotices(t *testing.T) {
	tests := []struct {
		notice playback.Notice
		want   string
	}{
		{playback.Notice{Kind: playback.NoticeItemComplete, Number: 2}, "Verse 2 complete"},
		{playback.Notice{Kind: playback.NoticeCollectionComplete, Number: 3}, "Surah complete · 3 verses recited"},
		{playback.Notice{Kind: playback.NoticeSwitchPending, Number: 3}, "Switching, verse 3 is next"},
		{playback.Notice{Kind: playback.NoticeRepeat, Number: 1, Count: 2}, "Verse 1 · 2nd repeat"},
	}
	for _, tt := range tests {
		t.Run(tt.notice.Kind.String(), func(t *testing.T) {
			m, _ := newTestModel(t)
			m.Update(NoticeMsg(tt.notice))
			assert.Contains(t, view(m), tt.want)
		})
	}
}

func TestTick_ExpiresNotice(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(NoticeMsg{Kind: playback.NoticeItemComplete, Number: 1})

	m.Update(TickMsg(time.Now()))
	assert.NotEmpty(t, m.notice)

	_, cmd := m.Update(TickMsg(time.Now().Add(noticeTTL + time.Second)))
	assert.Empty(t, m.notice)
	assert.NotNil(t, cmd)
}

func TestLockedVersesMarked(t *testing.T) {
	icons.Init("unicode")
	t.Cleanup(func() { icons.Init("none") })

	m, _ := newTestModel(t, func(o *Options) { o.Gate = gate.New(2, nil) })

	out := view(m)
	assert.Contains(t, out, "🔒 الرَّحْمَٰنِ")
	assert.Contains(t, out, "2 الْحَمْدُ")
}

func TestConfigReloaded(t *testing.T) {
	m, _ := newTestModel(t)

	t.Cleanup(func() { icons.Init("none") })

	m.Update(ConfigReloadedMsg{Icons: "unicode"})
	assert.Contains(t, view(m), "Config reloaded")
	assert.Equal(t, "🔒", icons.Locked())

	m.Update(ConfigReloadedMsg{Err: errors.New("bad toml")})
	assert.Contains(t, view(m), "Config reload failed: bad toml")
}
