// Package tui is the interactive terminal frontend for reviewing and
// monitoring requirement approvals.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reqsteward/reqsteward/internal/common/vcs"
	"github.com/reqsteward/reqsteward/internal/config"
	"github.com/reqsteward/reqsteward/internal/github"
	"github.com/reqsteward/reqsteward/internal/logging"
	"github.com/reqsteward/reqsteward/internal/workflow"
)

// KeyMap defines keybindings
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
	Help   key.Binding
	Run    key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c/q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Run: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "run"),
		),
	}
}

// App is the main TUI application
type App struct {
	config   *config.Config
	service  vcs.Service
	theme    *ColorblindFriendlyTheme
	keyMap   KeyMap
	help     help.Model
	screen   Screen
	screens  map[ScreenType]Screen
	width    int
	height   int
	ready    bool
	showHelp bool
}

// NewApp creates a new TUI application
func NewApp(cfg *config.Config) *App {
	theme := NewTheme()
	keyMap := DefaultKeyMap()
	helpModel := help.New()
	helpModel.Styles.ShortKey = theme.Bold
	helpModel.Styles.ShortDesc = theme.Text
	helpModel.Styles.ShortSeparator = theme.Faint

	// Logs must go to stderr in TUI mode to keep the interface intact
	if cfg != nil {
		cfg.Logging.Output = os.Stderr
		cfg.Logging.JSONFormat = false

		logging.Initialize(&logging.Config{
			Level:      logging.ParseLevel(cfg.Logging.Level),
			Output:     cfg.Logging.Output,
			JSONFormat: cfg.Logging.JSONFormat,
		})
	}

	app := &App{
		config:   cfg,
		theme:    theme,
		keyMap:   keyMap,
		help:     helpModel,
		screens:  make(map[ScreenType]Screen),
		showHelp: false,
	}

	if cfg != nil && cfg.GitHub.Token != "" {
		app.service = github.NewClient(cfg.GitHub.Token)
	}

	app.screens[ScreenMainMenu] = NewMainMenuScreen(app)
	app.screens[ScreenCheck] = NewCheckScreen(app)
	app.screens[ScreenMonitor] = NewMonitorScreen(app)

	app.screen = app.screens[ScreenMainMenu]

	return app
}

// Update handles UI updates
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keyMap.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keyMap.Help):
			a.showHelp = !a.showHelp
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.ready = true

	case ChangeScreenMsg:
		if screen, ok := a.screens[msg.Screen]; ok {
			a.screen = screen
			return a, screen.Init()
		}
	}

	// Update the current screen
	newScreen, cmd := a.screen.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	if s, ok := newScreen.(Screen); ok && s != a.screen {
		a.screen = s
	}

	return a, tea.Batch(cmds...)
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return nil
}

// View renders the UI
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	content := a.screen.View()

	if a.showHelp {
		helpKeys := a.screen.ShortHelp()
		helpView := a.help.ShortHelpView(helpKeys)
		return lipgloss.JoinVertical(lipgloss.Left, content, "\n", helpView)
	}

	return content
}

// GetTheme returns the theme
func (a *App) GetTheme() *ColorblindFriendlyTheme {
	return a.theme
}

// GetKeyMap returns the keymap
func (a *App) GetKeyMap() KeyMap {
	return a.keyMap
}

// GetConfig returns the config
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetService returns the issue service, nil when no token is
// configured.
func (a *App) GetService() vcs.Service {
	return a.service
}

// GetWidth returns the terminal width
func (a *App) GetWidth() int {
	return a.width
}

// GetHeight returns the terminal height
func (a *App) GetHeight() int {
	return a.height
}

// ChangeScreen changes the current screen
func (a *App) ChangeScreen(screenType ScreenType) tea.Cmd {
	return func() tea.Msg {
		return ChangeScreenMsg{Screen: screenType}
	}
}

// CreateApprovalWorkflow creates an approval workflow, nil when the
// service is unavailable.
func (a *App) CreateApprovalWorkflow() *workflow.ApprovalWorkflow {
	if a.service == nil {
		return nil
	}
	return workflow.NewApprovalWorkflow(a.config, a.service)
}

// ChangeScreenMsg is a message to change the current screen
type ChangeScreenMsg struct {
	Screen ScreenType
}

// Run runs the TUI application
func Run(cfg *config.Config) error {
	return RunWithScreen(cfg, ScreenMainMenu)
}

// RunWithScreen runs the TUI application with a specific initial screen
func RunWithScreen(cfg *config.Config, initialScreen ScreenType) error {
	app := NewApp(cfg)

	if screen, ok := app.screens[initialScreen]; ok {
		app.screen = screen
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
