package verselist

import (
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/tilawa/internal/icons"
	"github.com/llehouerou/tilawa/internal/playback"
	"github.com/llehouerou/tilawa/internal/ui/action"
)

func testItems(n int) []playback.Item {
	items := make([]playback.Item, n)
	for i := range items {
		items[i] = playback.Item{Number: i + 1, Text: "verse " + strconv.Itoa(i+1)}
	}
	return items
}

func newTestList(n, height int) *Model {
	m := New()
	m.SetItems(testItems(n))
	m.SetSize(40, height)
	return m
}

func viewLines(m *Model) []string {
	return strings.Split(ansi.Strip(m.View()), "\n")
}

func TestSetCurrent_CentersWhenFollowing(t *testing.T) {
	m := newTestList(20, 5)

	m.SetCurrent(10)

	if m.Offset() != 8 {
		t.Errorf("offset = %d, want 8", m.Offset())
	}
	if m.Cursor() != 10 {
		t.Errorf("cursor = %d, want 10", m.Cursor())
	}
}

func TestSetCurrent_ClampsAtEnd(t *testing.T) {
	m := newTestList(20, 5)

	m.SetCurrent(19)

	if m.Offset() != 15 {
		t.Errorf("offset = %d, want 15", m.Offset())
	}
}

func TestSetCurrent_IgnoresOutOfRange(t *testing.T) {
	m := newTestList(3, 5)

	m.SetCurrent(7)
	m.SetCurrent(-1)

	if m.Current() != 0 {
		t.Errorf("current = %d, want 0", m.Current())
	}
}

func TestCursorKeys_StopFollowing(t *testing.T) {
	m := newTestList(20, 5)

	handled, _ := m.HandleKey("j")
	if !handled {
		t.Fatal("j should be handled")
	}
	if m.AutoScroll() {
		t.Error("moving the cursor should stop auto-scroll")
	}
	if m.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor())
	}

	m.SetCurrent(12)
	if m.Cursor() != 1 {
		t.Errorf("cursor followed playback while detached: %d", m.Cursor())
	}

	m.HandleKey("c")
	if !m.AutoScroll() || m.Cursor() != 12 {
		t.Errorf("c should recenter on current: autoScroll=%v cursor=%d", m.AutoScroll(), m.Cursor())
	}
}

func TestCursorKeys_JumpToEnds(t *testing.T) {
	m := newTestList(20, 5)

	m.HandleKey("G")
	if m.Cursor() != 19 {
		t.Errorf("G: cursor = %d, want 19", m.Cursor())
	}
	lines := viewLines(m)
	if !strings.Contains(lines[len(lines)-1], "verse 20") {
		t.Errorf("last verse not visible after G: %q", lines)
	}

	m.HandleKey("g")
	if m.Cursor() != 0 || m.Offset() != 0 {
		t.Errorf("g: cursor=%d offset=%d, want 0/0", m.Cursor(), m.Offset())
	}

	m.HandleKey("k")
	if m.Cursor() != 0 {
		t.Errorf("k at top moved cursor to %d", m.Cursor())
	}
}

func TestEnter_EmitsJump(t *testing.T) {
	m := newTestList(10, 5)
	m.HandleKey("j")
	m.HandleKey("j")

	handled, cmd := m.HandleKey("enter")
	if !handled || cmd == nil {
		t.Fatal("enter should produce a command")
	}
	msg, ok := cmd().(action.Msg)
	if !ok {
		t.Fatalf("expected action.Msg, got %T", cmd())
	}
	jump, ok := msg.Action.(Jump)
	if !ok {
		t.Fatalf("expected Jump, got %T", msg.Action)
	}
	if jump.Number != 3 {
		t.Errorf("jump number = %d, want 3", jump.Number)
	}
}

func TestHandleKey_PassesThroughTransportKeys(t *testing.T) {
	m := newTestList(10, 5)
	for _, key := range []string{"space", "up", "down", "l", "h", "r"} {
		if handled, _ := m.HandleKey(key); handled {
			t.Errorf("%q should not be consumed by the verse list", key)
		}
	}
}

func TestHandleKey_EmptyList(t *testing.T) {
	m := New()
	m.SetSize(40, 5)
	if handled, _ := m.HandleKey("j"); handled {
		t.Error("empty list should not consume keys")
	}
}

func TestView_FillsPanel(t *testing.T) {
	m := newTestList(3, 6)

	lines := viewLines(m)
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6", len(lines))
	}
	for i, l := range lines {
		if ansi.StringWidth(l) != 40 {
			t.Errorf("line %d width = %d, want 40", i, ansi.StringWidth(l))
		}
	}
}

func TestView_MarksRecitedVerse(t *testing.T) {
	m := newTestList(5, 5)
	m.SetCurrent(2)
	m.SetPlaying(true)

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "▶   3 verse 3") {
		t.Errorf("playing marker missing:\n%s", view)
	}

	m.SetPlaying(false)
	view = ansi.Strip(m.View())
	if !strings.Contains(view, "▷   3 verse 3") {
		t.Errorf("paused marker missing:\n%s", view)
	}
}

func TestView_LockedVerses(t *testing.T) {
	icons.Init("unicode")
	t.Cleanup(func() { icons.Init("none") })

	m := newTestList(5, 5)
	m.SetLocked(func(n int) bool { return n > 3 })

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "🔒 verse 4") {
		t.Errorf("locked verse not marked:\n%s", view)
	}
	if strings.Contains(view, "🔒 verse 3") {
		t.Errorf("unlocked verse marked:\n%s", view)
	}
}

func TestTranslation_Toggle(t *testing.T) {
	m := New()
	m.SetItems([]playback.Item{
		{Number: 1, Text: "بِسْمِ اللَّهِ", Translation: "In the name of Allah"},
		{Number: 2, Text: "الْحَمْدُ لِلَّهِ", Translation: "All praise is for Allah"},
	})
	m.SetSize(40, 6)

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "In the name of Allah") {
		t.Errorf("translation hidden by default:\n%s", view)
	}

	m.HandleKey("T")
	if m.ShowTranslation() {
		t.Fatal("T should hide translations")
	}
	view = ansi.Strip(m.View())
	if strings.Contains(view, "In the name of Allah") {
		t.Errorf("translation still shown:\n%s", view)
	}
}

func TestWrap_LongVerseSpansLines(t *testing.T) {
	m := New()
	m.SetItems([]playback.Item{{Number: 1, Text: strings.Repeat("word ", 20)}})
	m.SetSize(26, 10)

	if h := m.itemHeight(0); h < 2 {
		t.Errorf("long verse height = %d, want >= 2", h)
	}
}
