package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/mangadex-dl/pkg/app/styles"
	"github.com/mattn/go-isatty"
)

var ErrPromptCancelled = errors.New("prompt cancelled")

// Prompter asks the user a single question and returns the trimmed answer.
type Prompter interface {
	Ask(question, placeholder string) (string, error)
}

// NewPrompter returns an interactive text input when in is a terminal and
// a plain line reader otherwise.
func NewPrompter(in *os.File, out io.Writer) Prompter {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return &TeaPrompter{in: in, out: out}
	}
	return NewLinePrompter(in, out)
}

type promptModel struct {
	question  string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newPromptModel(question, placeholder string) promptModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return promptModel{question: question, input: ti}
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
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done {
		return fmt.Sprintf("%s %s\n", styles.TitleStyle.Render(m.question), m.input.Value())
	}
	if m.cancelled {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n%s\n",
		styles.TitleStyle.Render(m.question),
		styles.FocusedInputStyle.Render(m.input.View()),
		styles.HelpStyle.Render("enter: confirm • esc: cancel"),
	)
}

// TeaPrompter asks with a bubbletea text input.
type TeaPrompter struct {
	in  io.Reader
	out io.Writer
}

func (p *TeaPrompter) Ask(question, placeholder string) (string, error) {
	program := tea.NewProgram(newPromptModel(question, placeholder), tea.WithInput(p.in), tea.WithOutput(p.out))
	final, err := program.Run()
	if err != nil {
		return "", err
	}

	m := final.(promptModel)
	if m.cancelled {
		return "", ErrPromptCancelled
	}
	return strings.TrimSpace(m.input.Value()), nil
}

// LinePrompter reads answers one line at a time.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Ask(question, placeholder string) (string, error) {
	if placeholder != "" {
		fmt.Fprintf(p.out, "%s (%s) ", question, placeholder)
	} else {
		fmt.Fprintf(p.out, "%s ", question)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrPromptCancelled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// AskRequired repeats the question until the answer is not empty.
func AskRequired(p Prompter, question, placeholder string) (string, error) {
	for {
		answer, err := p.Ask(question, placeholder)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}

// AskDefault returns fallback for an empty answer.
func AskDefault(p Prompter, question, fallback string) (string, error) {
	answer, err := p.Ask(question, fallback)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return fallback, nil
	}
	return answer, nil
}

// AskYesNo accepts y or n in any case; an empty answer means no. Other
// answers repeat the question.
func AskYesNo(p Prompter, question string) (bool, error) {
	for {
		answer, err := p.Ask(question, "y/N")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y":
			return true, nil
		case "n", "":
			return false, nil
		}
	}
}
