package prompt

import (
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is returned when the user presses ctrl+c at a prompt.
var ErrInterrupted = errors.New("prompt: interrupted")

// lineModel is a single-line bubbletea program: it edits one line and quits
// on enter, ctrl+c, or ctrl+d on an empty line.
type lineModel struct {
	input textinput.Model
	value string
	done  bool
	err   error
}

func newLineModel(prompt string, suggestions []string) lineModel {
	ti := textinput.New()
	ti.Prompt = prompt
	if len(suggestions) > 0 {
		ti.ShowSuggestions = true
		ti.SetSuggestions(suggestions)
	}
	ti.Focus()
	return lineModel{input: ti}
}

func (m lineModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m lineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.value = m.input.Value()
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC:
			m.err = ErrInterrupted
			return m, tea.Quit
		case tea.KeyCtrlD:
			if m.input.Value() == "" {
				m.err = io.EOF
				return m, tea.Quit
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m lineModel) View() string {
	if m.done || m.err != nil {
		return m.input.Prompt + m.input.Value() + "\n"
	}
	return m.input.View()
}
