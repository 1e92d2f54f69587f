// Package verselist renders the verses of the current surah with the
// recited verse highlighted and kept in view.
package verselist

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tilawa/internal/icons"
	"github.com/llehouerou/tilawa/internal/playback"
	"github.com/llehouerou/tilawa/internal/ui"
	"github.com/llehouerou/tilawa/internal/ui/render"
	"github.com/llehouerou/tilawa/internal/ui/styles"
)

// gutterWidth is the marker plus the right-aligned verse number and a space.
const gutterWidth = 6

// Model holds the verse list state.
type Model struct {
	ui.Base
	items   []playback.Item
	current int // index of the recited verse
	cursor  int
	offset  int // first visible item

	// autoScroll keeps the recited verse centered. Moving the cursor turns
	// it off; "c" turns it back on.
	autoScroll      bool
	showTranslation bool
	playing         bool

	locked func(number int) bool
}

// New creates an empty verse list that follows the recited verse.
func New() *Model {
	return &Model{autoScroll: true, showTranslation: true}
}

// SetItems replaces the verses. The cursor and highlight move to the first verse.
func (m *Model) SetItems(items []playback.Item) {
	m.items = items
	m.current = 0
	m.cursor = 0
	m.offset = 0
	m.follow()
}

// SetLocked sets the predicate that marks verses behind the sign-in wall.
func (m *Model) SetLocked(fn func(number int) bool) {
	m.locked = fn
}

// SetSize implements the usual component sizing and keeps the highlight in view.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)
	m.follow()
}

// SetCurrent moves the highlight to the verse at index.
func (m *Model) SetCurrent(index int) {
	if index < 0 || index >= len(m.items) || index == m.current {
		return
	}
	m.current = index
	m.follow()
}

// SetPlaying switches the highlight between the playing and idle styles.
func (m *Model) SetPlaying(playing bool) {
	m.playing = playing
}

// ToggleTranslation shows or hides translations under each verse.
func (m *Model) ToggleTranslation() {
	m.showTranslation = !m.showTranslation
	m.follow()
	m.ensureCursorVisible()
}

// Current returns the index of the highlighted verse.
func (m *Model) Current() int { return m.current }

// Cursor returns the index under the cursor.
func (m *Model) Cursor() int { return m.cursor }

// Offset returns the index of the first visible verse.
func (m *Model) Offset() int { return m.offset }

// AutoScroll reports whether the list follows the recited verse.
func (m *Model) AutoScroll() bool { return m.autoScroll }

// ShowTranslation reports whether translations are shown.
func (m *Model) ShowTranslation() bool { return m.showTranslation }

// HandleKey processes list navigation keys. It reports whether the key was
// consumed so unhandled keys can reach the transport.
func (m *Model) HandleKey(key string) (bool, tea.Cmd) {
	if len(m.items) == 0 {
		return false, nil
	}
	switch key {
	case "j":
		m.moveCursor(m.cursor + 1)
	case "k":
		m.moveCursor(m.cursor - 1)
	case "g", "home":
		m.moveCursor(0)
	case "G", "end":
		m.moveCursor(len(m.items) - 1)
	case "c":
		m.autoScroll = true
		m.follow()
	case "T":
		m.ToggleTranslation()
	case "enter":
		number := m.items[m.cursor].Number
		return true, func() tea.Msg { return ActionMsg(Jump{Number: number}) }
	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) moveCursor(pos int) {
	m.autoScroll = false
	m.cursor = max(0, min(pos, len(m.items)-1))
	m.ensureCursorVisible()
}

// follow moves the cursor to the recited verse and centers it when
// auto-scroll is on.
func (m *Model) follow() {
	if !m.autoScroll || len(m.items) == 0 {
		return
	}
	m.cursor = m.current
	m.centerOn(m.current)
}

// centerOn scrolls so that index sits in the middle of the panel.
func (m *Model) centerOn(index int) {
	height := m.Height()
	if height <= 0 {
		return
	}
	offset := index
	remaining := (height - m.itemHeight(index)) / 2
	for offset > 0 {
		h := m.itemHeight(offset - 1)
		if h > remaining {
			break
		}
		remaining -= h
		offset--
	}
	m.offset = min(offset, m.maxOffset())
}

func (m *Model) ensureCursorVisible() {
	if m.cursor < m.offset+ui.ScrollMargin {
		m.offset = max(m.cursor-ui.ScrollMargin, 0)
		return
	}
	height := m.Height()
	last := min(m.cursor+ui.ScrollMargin, len(m.items)-1)
	for m.offset < m.cursor && m.linesBetween(m.offset, last) > height {
		m.offset++
	}
}

// maxOffset is the largest offset that still fills the panel.
func (m *Model) maxOffset() int {
	height := m.Height()
	used := 0
	for i := len(m.items) - 1; i >= 0; i-- {
		used += m.itemHeight(i)
		if used > height {
			return i + 1
		}
	}
	return 0
}

func (m *Model) linesBetween(from, to int) int {
	n := 0
	for i := from; i <= to; i++ {
		n += m.itemHeight(i)
	}
	return n
}

func (m *Model) textWidth() int {
	return max(m.Width()-gutterWidth, 1)
}

func (m *Model) itemHeight(i int) int {
	return len(m.itemLines(i))
}

// itemLines wraps a verse and, if shown, its translation.
func (m *Model) itemLines(i int) []string {
	it := m.items[i]
	lines := render.Wrap(it.Text, m.textWidth())
	if len(lines) == 0 {
		lines = []string{""}
	}
	if m.showTranslation && it.Translation != "" {
		lines = append(lines, render.Wrap(it.Translation, m.textWidth())...)
	}
	return lines
}

func (m *Model) isLocked(number int) bool {
	return m.locked != nil && m.locked(number)
}

// View renders the visible verses, padded to the panel size.
func (m *Model) View() string {
	width, height := m.Size()
	if width == 0 || height == 0 {
		return ""
	}
	if len(m.items) == 0 {
		return fill([]string{styles.T().S().Subtle.Render("No verses")}, width, height)
	}

	out := make([]string, 0, height)
	for i := m.offset; i < len(m.items) && len(out) < height; i++ {
		out = append(out, m.renderItem(i)...)
	}
	if len(out) > height {
		out = out[:height]
	}
	return fill(out, width, height)
}

func (m *Model) renderItem(i int) []string {
	s := styles.T().S()
	it := m.items[i]
	locked := m.isLocked(it.Number)

	textStyle := s.Base
	numberStyle := s.Number
	marker := "  "
	switch {
	case i == m.current && m.playing:
		textStyle, numberStyle = s.Playing, s.Playing
		marker = "▶ "
	case i == m.current:
		textStyle, numberStyle = s.Title, s.Playing
		marker = "▷ "
	case locked:
		textStyle, numberStyle = s.Locked, s.Locked
	}

	number := fmt.Sprintf("%3d ", it.Number)
	if icon := icons.Locked(); locked && i != m.current && icon != "" && lipgloss.Width(icon) <= 3 {
		number = render.PadLeft(icon, 3) + " "
	}

	text := m.itemLines(i)
	verseLines := max(len(render.Wrap(it.Text, m.textWidth())), 1)
	lines := make([]string, len(text))
	for j, line := range text {
		var gutter, body string
		if j == 0 {
			gutter = marker + numberStyle.Render(number)
		} else {
			gutter = strings.Repeat(" ", gutterWidth)
		}
		if j >= verseLines {
			body = s.Translation.Render(line)
		} else {
			body = textStyle.Render(line)
		}
		row := gutter + body
		if i == m.cursor && !m.autoScroll {
			row = s.Cursor.Render(padTo(row, m.Width()))
		}
		lines[j] = row
	}
	return lines
}

func fill(lines []string, width, height int) string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, l := range lines {
		lines[i] = padTo(l, width)
	}
	return strings.Join(lines, "\n")
}

func padTo(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
