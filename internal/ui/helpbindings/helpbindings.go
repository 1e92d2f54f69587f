// Package helpbindings provides a scrollable popup listing the key bindings.
package helpbindings

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tilawa/internal/transport"
	"github.com/llehouerou/tilawa/internal/ui"
	"github.com/llehouerou/tilawa/internal/ui/popup"
	"github.com/llehouerou/tilawa/internal/ui/render"
	"github.com/llehouerou/tilawa/internal/ui/styles"
)

var _ popup.Popup = (*Model)(nil)

// Entry is one line of the help: the keys and what they do.
type Entry struct {
	Keys        []string
	Description string
}

// Section groups entries under a heading.
type Section struct {
	Title   string
	Entries []Entry
}

// VerseListSection documents the verse list keys.
var VerseListSection = Section{
	Title: "Verses",
	Entries: []Entry{
		{[]string{"j", "k"}, "Move cursor"},
		{[]string{"g", "G"}, "First / last verse"},
		{[]string{"enter"}, "Play verse under cursor"},
		{[]string{":"}, "Go to verse"},
		{[]string{"c"}, "Follow recitation"},
		{[]string{"T"}, "Toggle translation"},
	},
}

// GeneralSection documents app-level keys.
var GeneralSection = Section{
	Title: "General",
	Entries: []Entry{
		{[]string{"?"}, "Toggle help"},
		{[]string{"esc"}, "Dismiss message"},
		{[]string{"q", "ctrl+c"}, "Quit"},
	},
}

// TransportSection builds the playback section from the active key resolver.
func TransportSection(bindings []transport.Binding, keys *transport.Resolver) Section {
	s := Section{Title: "Playback"}
	for _, b := range bindings {
		bound := b.Keys
		if keys != nil {
			bound = keys.KeysFor(b.Action)
		}
		if len(bound) == 0 {
			continue
		}
		s.Entries = append(s.Entries, Entry{Keys: bound, Description: b.Description})
	}
	return s
}

// Model holds the state for the help popup.
type Model struct {
	ui.Base
	sections     []Section
	scrollOffset int
}

// New creates a help popup showing sections in order.
func New(sections ...Section) *Model {
	return &Model{sections: sections}
}

// Init implements popup.Popup.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements popup.Popup.
func (m *Model) Update(msg tea.Msg) (popup.Popup, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "?", "esc", "q":
		return m, func() tea.Msg { return ActionMsg(Close{}) }
	case "j", "down":
		if m.scrollOffset < m.maxScroll() {
			m.scrollOffset++
		}
	case "k", "up":
		if m.scrollOffset > 0 {
			m.scrollOffset--
		}
	}
	return m, nil
}

// View implements popup.Popup.
func (m *Model) View() string {
	if m.Width() == 0 || m.Height() == 0 {
		return ""
	}

	lines := m.contentLines()
	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, lipgloss.Width(line))
	}

	start := min(m.scrollOffset, len(lines))
	end := min(start+m.visibleHeight(), len(lines))
	visible := lines[start:end]
	for i, line := range visible {
		if w := lipgloss.Width(line); w < maxWidth {
			visible[i] = line + strings.Repeat(" ", maxWidth-w)
		}
	}

	s := styles.T().S()
	var b strings.Builder
	b.WriteString(s.Title.Render("Help"))
	b.WriteString("\n")
	b.WriteString(s.Subtle.Render(render.Separator(maxWidth)))
	b.WriteString("\n")
	b.WriteString(strings.Join(visible, "\n"))
	b.WriteString("\n\n")
	b.WriteString(s.Subtle.Render(m.footer()))
	return b.String()
}

func (m *Model) contentLines() []string {
	t := styles.T()
	keyStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	headerStyle := lipgloss.NewStyle().Foreground(t.Secondary).Bold(true)

	keyWidth := 0
	for _, sec := range m.sections {
		for _, e := range sec.Entries {
			keyWidth = max(keyWidth, len(strings.Join(e.Keys, ", ")))
		}
	}

	var lines []string
	for i, sec := range m.sections {
		if len(sec.Entries) == 0 {
			continue
		}
		if i > 0 && len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines,
			headerStyle.Render(sec.Title),
			t.S().Subtle.Render(strings.Repeat("─", keyWidth+20)))
		for _, e := range sec.Entries {
			keys := strings.Join(e.Keys, ", ")
			lines = append(lines,
				keyStyle.Render(keys+strings.Repeat(" ", keyWidth-len(keys)))+"  "+t.S().Base.Render(e.Description))
		}
	}
	return lines
}

func (m *Model) footer() string {
	if m.maxScroll() == 0 {
		return "?/esc close"
	}
	return "j/k scroll · ?/esc close"
}

func (m *Model) visibleHeight() int {
	// title, rule, blank, footer and the popup border
	return max(m.ContentHeight(8), 3)
}

func (m *Model) maxScroll() int {
	return max(len(m.contentLines())-m.visibleHeight(), 0)
}
