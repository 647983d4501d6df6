// Package components provides the reusable terminal UI pieces for dkproxyctl
// command output: tables, spinners, and the task runner that animates
// long-running registry and engine operations.
package components

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
)

// SpinnerModel wraps the bubbles spinner with dkproxyctl styling.
type SpinnerModel struct {
	spinner spinner.Model
	message string
	style   lipgloss.Style
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(styles.ColorPrimary)
	return SpinnerModel{
		spinner: s,
		message: message,
		style:   styles.Theme.Body,
	}
}

// Tick returns the spinner animation command.
func (m SpinnerModel) Tick() tea.Cmd { return m.spinner.Tick }

// Update advances the animation.
func (m SpinnerModel) Update(msg tea.Msg) (SpinnerModel, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders the spinner line.
func (m SpinnerModel) View() string {
	return m.spinner.View() + " " + m.style.Render(m.message)
}

// SetMessage updates the spinner message.
func (m *SpinnerModel) SetMessage(message string) { m.message = message }

type taskDoneMsg struct{}

// taskModel animates a spinner until the background task closes its channel.
// Ctrl-C cancels the task's context; the program still exits through the
// task's own completion so no work is abandoned mid-flight.
type taskModel struct {
	spinner  SpinnerModel
	done     chan struct{}
	cancel   context.CancelFunc
	finished bool
}

func (m taskModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick(), waitForTask(m.done))
}

func waitForTask(done chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return taskDoneMsg{}
	}
}

func (m taskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
			m.spinner.SetMessage("Canceling...")
			return m, nil
		}
		return m, nil
	case tea.InterruptMsg:
		m.cancel()
		m.spinner.SetMessage("Canceling...")
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m taskModel) View() string {
	if m.finished {
		return ""
	}
	return m.spinner.View() + "\n"
}

// RunWithSpinner runs fn while animating a spinner, when stdout is a
// terminal. Otherwise it logs the message and runs fn inline, which keeps
// cron and CI output clean.
func RunWithSpinner(ctx context.Context, message string, fn func(context.Context) error) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		log.Info(message)
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var taskErr error
	done := make(chan struct{})
	go func() {
		taskErr = fn(ctx)
		close(done)
	}()

	m := taskModel{spinner: NewSpinner(message), done: done, cancel: cancel}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		cancel()
		<-done
		if taskErr != nil {
			return taskErr
		}
		return fmt.Errorf("spinner failed: %w", err)
	}
	<-done
	return taskErr
}
