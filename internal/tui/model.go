// Package tui is an interactive task list built on bubbletea. The
// model renders whatever the controller last wrote to its Sink and turns
// key presses into controller calls.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"todo/internal/controller"
	"todo/internal/service"
	"todo/internal/view"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	emptyStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

const defaultWidth = 80

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// opDoneMsg reports that a controller call returned. The controller
// has already logged any error.
type opDoneMsg struct {
	err error
}

// Model is the bubbletea model of the task list.
type Model struct {
	ctx   context.Context
	ctrl  *controller.Tasks
	view  view.View
	keys  KeyMap
	input textinput.Model

	tasks  []service.Task
	cursor int
	focus  focusArea
	width  int
}

// NewModel creates a model that reads state from v and acts through
// ctrl. ctrl must drive v.
func NewModel(ctx context.Context, ctrl *controller.Tasks, v view.View) Model {
	input := textinput.New()
	input.Placeholder = "What needs to be done?"
	input.CharLimit = 256
	input.Prompt = "> "
	input.Focus()

	return Model{
		ctx:   ctx,
		ctrl:  ctrl,
		view:  v,
		keys:  DefaultKeyMap,
		input: input,
		focus: focusInput,
		width: defaultWidth,
	}
}

// Init loads the task list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.run(m.ctrl.LoadTasks))
}

// run wraps a controller call as a command.
func (m Model) run(op func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: op(ctx)}
	}
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 10)
		return m, nil

	case stateChangedMsg, opDoneMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Focus) {
			m.setFocus(1 - m.focus)
			return m, nil
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		// The key is consumed here and never reaches the input.
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		return m, m.run(m.ctrl.HandleSubmit)
	case key.Matches(msg, m.keys.Blur):
		m.setFocus(focusList)
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.ctrl.HandleChange(after)
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Reload):
		return m, m.run(m.ctrl.LoadTasks)
	case key.Matches(msg, m.keys.Toggle):
		if id, ok := m.selected(); ok {
			return m, m.run(func(ctx context.Context) error {
				return m.ctrl.HandleUpdate(ctx, id)
			})
		}
	case key.Matches(msg, m.keys.Delete):
		if id, ok := m.selected(); ok {
			return m, m.run(func(ctx context.Context) error {
				return m.ctrl.HandleDelete(ctx, id)
			})
		}
	}
	return m, nil
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m Model) selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return "", false
	}
	return m.tasks[m.cursor].ID, true
}

// refresh copies the sink's state into the model.
func (m *Model) refresh() {
	state := m.view.State()
	m.tasks = state.Tasks
	if m.cursor >= len(m.tasks) {
		m.cursor = max(len(m.tasks)-1, 0)
	}
	if m.input.Value() != state.CurrentTask {
		m.input.SetValue(state.CurrentTask)
	}
}

// View renders the model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("todo"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(emptyStyle.Render("No tasks"))
		b.WriteString("\n")
	}
	for i, task := range m.tasks {
		b.WriteString(m.renderTask(i, task))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) renderTask(i int, task service.Task) string {
	marker := "  "
	if m.focus == focusList && i == m.cursor {
		marker = cursorStyle.Render("> ")
	}
	check := "[ ]"
	if task.Completed {
		check = "[x]"
	}

	text := strings.ReplaceAll(task.Text, "\n", " ")
	text = ansi.Truncate(text, max(m.width-8, 1), "…")
	if task.Completed {
		text = doneStyle.Render(text)
	}
	return fmt.Sprintf("%s%s %s", marker, check, text)
}

func (m Model) helpLine() string {
	var bindings []key.Binding
	if m.focus == focusInput {
		bindings = []key.Binding{m.keys.Submit, m.keys.Focus}
	} else {
		bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Toggle, m.keys.Delete, m.keys.Reload, m.keys.Focus, m.keys.Quit}
	}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, " • ")
}

// Run starts the UI on the terminal and blocks until the user quits or
// ctx is done.
func Run(ctx context.Context, svc service.Service, logger *slog.Logger, opts ...tea.ProgramOption) error {
	sink := NewSink()
	ctrl := controller.New(sink, svc, logger)

	opts = append(opts, tea.WithContext(ctx))
	p := tea.NewProgram(NewModel(ctx, ctrl, sink), opts...)
	sink.Attach(p)

	_, err := p.Run()
	return err
}
