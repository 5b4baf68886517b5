package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reqsteward/reqsteward/internal/common/vcs"
)

const monitorLogLimit = 100

// MonitorScreen watches pending requirement issues and applies
// approval transitions as they happen.
type MonitorScreen struct {
	BaseScreen
	spinner  spinner.Model
	monitor  *vcs.Monitor
	running  bool
	lastPoll time.Time
	logs     []string
	err      error
}

type pollDoneMsg struct {
	err error
}

type pollTickMsg struct{}

// NewMonitorScreen creates a new monitor screen
func NewMonitorScreen(app *App) *MonitorScreen {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &MonitorScreen{
		BaseScreen: NewBaseScreen(app, "Monitor Pending Issues"),
		spinner:    s,
		logs:       []string{},
	}
}

// Init initializes the monitor screen
func (m *MonitorScreen) Init() tea.Cmd {
	m.running = false
	m.err = nil

	if m.monitor == nil {
		if err := m.createMonitor(); err != nil {
			m.err = err
		}
	}

	return m.spinner.Tick
}

func (m *MonitorScreen) createMonitor() error {
	cfg := m.app.GetConfig()
	service := m.app.GetService()
	w := m.app.CreateApprovalWorkflow()
	if cfg == nil || service == nil || w == nil {
		return fmt.Errorf("GitHub client not configured")
	}

	monitor, err := vcs.NewMonitor(vcs.MonitorConfig{
		Config:    cfg,
		Service:   service,
		Processor: w,
	})
	if err != nil {
		return err
	}
	m.monitor = monitor
	return nil
}

// poll runs one monitor pass in the background
func (m *MonitorScreen) poll() tea.Msg {
	return pollDoneMsg{err: m.monitor.CheckOnce()}
}

func (m *MonitorScreen) schedulePoll() tea.Cmd {
	interval := 5 * time.Minute
	if cfg := m.app.GetConfig(); cfg != nil && cfg.Monitor.PollInterval > 0 {
		interval = time.Duration(cfg.Monitor.PollInterval) * time.Minute
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m *MonitorScreen) appendLog(line string) {
	m.logs = append(m.logs, time.Now().Format("15:04:05")+" "+line)
	if len(m.logs) > monitorLogLimit {
		m.logs = m.logs[len(m.logs)-monitorLogLimit:]
	}
}

// Update handles UI updates for the monitor screen
func (m *MonitorScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pollDoneMsg:
		m.lastPoll = time.Now()
		if msg.err != nil {
			m.appendLog("Poll failed: " + msg.err.Error())
		} else if m.monitor != nil {
			stats := m.monitor.GetStats()
			m.appendLog(fmt.Sprintf("Poll complete, %v issues tracked", stats["issues_processed"]))
		}
		if m.running {
			return m, m.schedulePoll()
		}
		return m, nil

	case pollTickMsg:
		if m.running {
			return m, m.poll
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.app.keyMap.Back):
			m.running = false
			return m, m.app.ChangeScreen(ScreenMainMenu)

		case key.Matches(msg, m.app.keyMap.Run):
			if m.monitor == nil {
				if err := m.createMonitor(); err != nil {
					m.err = err
					return m, nil
				}
			}
			if m.running {
				m.running = false
				m.appendLog("Monitoring stopped")
				return m, nil
			}
			m.running = true
			m.appendLog("Monitoring started")
			return m, tea.Batch(m.spinner.Tick, m.poll)
		}
	}

	return m, nil
}

// View renders the monitor screen
func (m *MonitorScreen) View() string {
	theme := m.app.GetTheme()

	s := m.RenderTitle() + "\n\n"

	switch {
	case m.err != nil:
		s += theme.ErrorText.Render("Error: "+m.err.Error()) + "\n\n"
	case m.running:
		s += m.spinner.View() + " " + theme.Text.Render("Watching for pending requirement issues") + "\n"
		if !m.lastPoll.IsZero() {
			s += theme.Faint.Render("Last poll: "+m.lastPoll.Format("15:04:05")) + "\n"
		}
		s += "\n"
	default:
		s += theme.Subtitle.Render("Press r to start monitoring") + "\n\n"
	}

	if len(m.logs) > 0 {
		s += theme.Bold.Render("Activity:") + "\n"
		start := 0
		if len(m.logs) > 10 {
			start = len(m.logs) - 10
		}
		s += theme.Faint.Render(strings.Join(m.logs[start:], "\n")) + "\n"
	}

	s += "\n" + m.RenderFooter()

	return lipgloss.NewStyle().Width(m.app.GetWidth()).Align(lipgloss.Left).Render(s)
}

// ShortHelp returns keybindings to be shown in the help menu
func (m *MonitorScreen) ShortHelp() []key.Binding {
	return []key.Binding{
		m.app.keyMap.Run,
		m.app.keyMap.Back,
		m.app.keyMap.Help,
		m.app.keyMap.Quit,
	}
}
