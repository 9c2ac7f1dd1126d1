package categories

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ErrAborted is returned when the user cancels the prompt
var ErrAborted = errors.New("category prompt aborted")

var (
	existingTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	promptStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	hintStyle          = lipgloss.NewStyle().Faint(true)
)

// NewInteractivePrompter picks the terminal UI when stdin is a TTY and a
// plain line reader otherwise (pipes, tests, CI). Prompts are drawn on out.
func NewInteractivePrompter(out io.Writer) Prompter {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return &TUIPrompter{Out: out}
	}
	return NewLinePrompter(os.Stdin, out)
}

func existingLine(existing []string) string {
	if len(existing) == 0 {
		return ""
	}
	return existingTitleStyle.Render("Existing categories:") + "\n" + strings.Join(existing, ", ") + "\n"
}

// LinePrompter reads one answer per line
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Prompt(activity string, existing []string) (string, error) {
	fmt.Fprint(p.out, "\n"+existingLine(existing))
	fmt.Fprint(p.out, "\n"+promptStyle.Render(fmt.Sprintf("Enter category for '%s'", activity))+": ")

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// TUIPrompter shows a bubbletea text input with the known categories above it
type TUIPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p *TUIPrompter) Prompt(activity string, existing []string) (string, error) {
	var opts []tea.ProgramOption
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(newPromptModel(activity, existing), opts...).Run()
	if err != nil {
		return "", err
	}

	m := final.(promptModel)
	if m.aborted {
		return "", ErrAborted
	}
	return strings.TrimSpace(m.input.Value()), nil
}

type promptModel struct {
	activity string
	existing []string
	input    textinput.Model
	done     bool
	aborted  bool
}

func newPromptModel(activity string, existing []string) promptModel {
	ti := textinput.New()
	ti.Placeholder = "category"
	ti.CharLimit = 64
	ti.Width = 32
	ti.Focus()

	return promptModel{activity: activity, existing: existing, input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyTab:
			// complete to the first existing category with the typed prefix
			if c := complete(m.input.Value(), m.existing); c != "" {
				m.input.SetValue(c)
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(existingLine(m.existing))
	b.WriteString("\n")
	b.WriteString(promptStyle.Render(fmt.Sprintf("Enter category for '%s'", m.activity)))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter: save • tab: complete • esc: abort"))
	b.WriteString("\n")
	return b.String()
}

func complete(prefix string, existing []string) string {
	if prefix == "" {
		return ""
	}
	lower := strings.ToLower(prefix)
	for _, c := range existing {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			return c
		}
	}
	return ""
}
