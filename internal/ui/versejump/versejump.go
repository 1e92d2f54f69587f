// Package versejump is the "go to verse" prompt.
package versejump

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tilawa/internal/ui"
	"github.com/llehouerou/tilawa/internal/ui/popup"
	"github.com/llehouerou/tilawa/internal/ui/styles"
)

var _ popup.Popup = (*Model)(nil)

// Model asks for a verse number between 1 and total.
type Model struct {
	ui.Base
	input textinput.Model
	total int
	err   string
}

// New creates the prompt for a surah of total verses.
func New(total int) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = fmt.Sprintf("1-%d", total)
	ti.CharLimit = len(strconv.Itoa(total))
	ti.Width = 8
	return &Model{input: ti, total: total}
}

// Start clears the prompt and focuses it.
func (m *Model) Start() tea.Cmd {
	m.input.SetValue("")
	m.err = ""
	return m.input.Focus()
}

// Value returns the text typed so far.
func (m *Model) Value() string { return m.input.Value() }

// Init implements popup.Popup.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements popup.Popup.
func (m *Model) Update(msg tea.Msg) (popup.Popup, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.input.Blur()
			return m, func() tea.Msg { return ActionMsg(Result{Canceled: true}) }
		case "enter":
			return m, m.submit()
		}
		if key.Type == tea.KeyRunes {
			key.Runes = digits(key.Runes)
			if len(key.Runes) == 0 {
				return m, nil
			}
			msg = key
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	n, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
	if err != nil || n < 1 || n > m.total {
		m.err = fmt.Sprintf("Enter a verse between 1 and %d", m.total)
		return nil
	}
	m.input.Blur()
	return func() tea.Msg { return ActionMsg(Result{Number: n}) }
}

func digits(rs []rune) []rune {
	out := rs[:0:0]
	for _, r := range rs {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return out
}

// View implements popup.Popup.
func (m *Model) View() string {
	s := styles.T().S()
	var b strings.Builder
	b.WriteString(s.Title.Render("Go to verse"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.err != "" {
		b.WriteString(s.Error.Render(m.err))
	} else {
		b.WriteString(s.Subtle.Render("enter jump · esc cancel"))
	}
	return b.String()
}
