package cli

import (
	"context"
	"io"

	"github.com/alexanderramin/taskflow/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// workDoneMsg carries the result of the background work.
type workDoneMsg struct{ err error }

var interruptKey = key.NewBinding(key.WithKeys("ctrl+c", "esc"))

// workView shows a spinner while work runs. The work cannot be interrupted:
// the interrupt keys only tell the operator to wait.
type workView struct {
	ctx         context.Context
	label       string
	spinner     spinner.Model
	work        func(ctx context.Context) error
	done        bool
	interrupted bool
	err         error
}

func newWorkView(ctx context.Context, label string, work func(ctx context.Context) error) *workView {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(formatter.StylePurple),
	)
	return &workView{ctx: ctx, label: label, spinner: sp, work: work}
}

func (v *workView) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.run)
}

func (v *workView) run() tea.Msg {
	return workDoneMsg{err: v.work(v.ctx)}
}

func (v *workView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		v.done = true
		v.err = msg.err
		return v, tea.Quit
	case tea.KeyMsg:
		if key.Matches(msg, interruptKey) {
			v.interrupted = true
		}
		return v, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *workView) View() string {
	if v.done {
		return ""
	}
	line := "  " + v.spinner.View() + " " + formatter.Dim(v.label) + "\n"
	if v.interrupted {
		line += "  " + formatter.StyleYellow.Render("! cannot cancel while submitting; waiting for the requests to finish") + "\n"
	}
	return line
}

// runWork runs work behind a spinner when interactive, or directly
// otherwise.
func runWork(ctx context.Context, interactive bool, out io.Writer, label string, work func(ctx context.Context) error) error {
	if !interactive {
		return work(ctx)
	}
	view := newWorkView(ctx, label, work)
	if _, err := tea.NewProgram(view, tea.WithOutput(out)).Run(); err != nil {
		return err
	}
	return view.err
}
