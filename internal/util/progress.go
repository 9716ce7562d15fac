package util

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	padding  = 2
	maxWidth = 80
)

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render

// ProgressBar renders the share of tables done below the log output.
type ProgressBar struct {
	program    *tea.Program
	progress   progress.Model
	pending    float64
	stopped    bool
	mutex      sync.Mutex
	cancelFunc context.CancelFunc
	message    string
	done       chan struct{}
}

// NewProgressBar starts rendering. Ctrl+C calls cancelFunc.
func NewProgressBar(ctx context.Context, cancelFunc context.CancelFunc) *ProgressBar {
	m := &ProgressBar{
		progress:   progress.New(progress.WithDefaultGradient()),
		cancelFunc: cancelFunc,
		done:       make(chan struct{}),
	}
	m.program = tea.NewProgram(m, tea.WithContext(ctx), tea.WithoutSignalHandler())
	go func() {
		defer close(m.done)
		m.program.Run()
	}()
	return m
}

// Stop rendering and wait at most a second for the last frame.
func (m *ProgressBar) Stop() {
	m.mutex.Lock()
	m.stopped = true
	m.mutex.Unlock()
	select {
	case <-m.done:
	case <-time.After(time.Second):
	}
}

// SetProgress sets the completed share, between 0 and 1.
func (m *ProgressBar) SetProgress(p float64) {
	m.mutex.Lock()
	m.pending = p
	m.mutex.Unlock()
}

func (m *ProgressBar) SetMessage(msg string) {
	m.mutex.Lock()
	m.message = msg
	m.mutex.Unlock()
}

// Tables is a progress callback reporting the table about to be imported.
func (m *ProgressBar) Tables(table string, index int, total int) {
	m.SetMessage(fmt.Sprintf("Importing %s (%d/%d)", table, index+1, total))
	m.SetProgress(float64(index) / float64(total))
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*250, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *ProgressBar) Init() tea.Cmd {
	return tickCmd()
}

func (m *ProgressBar) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelFunc()
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}
		return m, nil

	case tickMsg:
		if m.stopped {
			return m, tea.Quit
		}
		return m, tickCmd()

	default:
		return m, nil
	}
}

func (m *ProgressBar) View() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	pad := strings.Repeat(" ", padding)
	return "\n" +
		pad + m.progress.ViewAs(m.pending) + "\n\n" +
		pad + helpStyle(m.message) + "\n"
}

// RunWithProgress runs callback with a progress bar that is completed and stopped when callback returns.
func RunWithProgress(ctx context.Context, cancel context.CancelFunc, callback func(progressbar *ProgressBar) error) error {
	progressbar := NewProgressBar(ctx, cancel)
	err := callback(progressbar)
	if err == nil {
		progressbar.SetProgress(1.0)
	}
	progressbar.Stop()
	return err
}
