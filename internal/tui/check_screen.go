package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reqsteward/reqsteward/internal/workflow"
)

// Input field indexes for the check form
const (
	checkFieldOwner = iota
	checkFieldRepo
	checkFieldNumber
	checkFieldCount
)

// CheckScreen runs a stakeholder approval check on a single issue
type CheckScreen struct {
	BaseScreen
	inputs   []textinput.Model
	focused  int
	spinner  spinner.Model
	checking bool
	result   *workflow.CheckResult
	err      error
}

type checkDoneMsg struct {
	result *workflow.CheckResult
	err    error
}

// NewCheckScreen creates a new check screen
func NewCheckScreen(app *App) *CheckScreen {
	s := spinner.New()
	s.Spinner = spinner.Dot

	inputs := make([]textinput.Model, checkFieldCount)
	placeholders := []string{"owner", "repository", "issue number"}
	for i := range inputs {
		input := textinput.New()
		input.Placeholder = placeholders[i]
		input.CharLimit = 100
		inputs[i] = input
	}
	inputs[checkFieldOwner].Focus()

	return &CheckScreen{
		BaseScreen: NewBaseScreen(app, "Check Approval"),
		inputs:     inputs,
		spinner:    s,
	}
}

// Init initializes the check screen
func (c *CheckScreen) Init() tea.Cmd {
	c.checking = false
	c.result = nil
	c.err = nil
	return c.spinner.Tick
}

// runCheck evaluates the issue in the background
func (c *CheckScreen) runCheck(owner, repo string, number int) tea.Cmd {
	return func() tea.Msg {
		w := c.app.CreateApprovalWorkflow()
		if w == nil {
			return checkDoneMsg{err: fmt.Errorf("GitHub client not configured")}
		}
		result, err := w.CheckIssue(owner, repo, number)
		return checkDoneMsg{result: result, err: err}
	}
}

// Update handles UI updates for the check screen
func (c *CheckScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case checkDoneMsg:
		c.checking = false
		c.result = msg.result
		c.err = msg.err
		return c, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd

	case tea.KeyMsg:
		if c.checking {
			return c, nil
		}

		switch {
		case key.Matches(msg, c.app.keyMap.Back):
			return c, c.app.ChangeScreen(ScreenMainMenu)

		case key.Matches(msg, c.app.keyMap.Select):
			if c.focused < checkFieldCount-1 {
				c.inputs[c.focused].Blur()
				c.focused++
				c.inputs[c.focused].Focus()
				return c, nil
			}

			owner := strings.TrimSpace(c.inputs[checkFieldOwner].Value())
			repo := strings.TrimSpace(c.inputs[checkFieldRepo].Value())
			number, err := strconv.Atoi(strings.TrimSpace(c.inputs[checkFieldNumber].Value()))
			if owner == "" || repo == "" || err != nil {
				c.err = fmt.Errorf("owner, repository and a numeric issue number are required")
				return c, nil
			}

			c.checking = true
			c.err = nil
			c.result = nil
			return c, tea.Batch(c.spinner.Tick, c.runCheck(owner, repo, number))
		}
	}

	// Forward remaining messages to the focused input
	var cmd tea.Cmd
	c.inputs[c.focused], cmd = c.inputs[c.focused].Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	return c, tea.Batch(cmds...)
}

// View renders the check screen
func (c *CheckScreen) View() string {
	theme := c.app.GetTheme()

	s := c.RenderTitle() + "\n\n"
	s += theme.Subtitle.Render("Evaluate stakeholder approval on a requirement issue") + "\n\n"

	labels := []string{"Owner:", "Repository:", "Issue:"}
	for i, input := range c.inputs {
		s += theme.Bold.Render(labels[i]) + " " + input.View() + "\n"
	}
	s += "\n"

	switch {
	case c.checking:
		s += c.spinner.View() + " Checking issue...\n"
	case c.err != nil:
		s += theme.ErrorText.Render("Error: "+c.err.Error()) + "\n"
	case c.result != nil:
		s += c.renderResult()
	default:
		s += theme.Faint.Render("Press enter to advance fields and run the check.") + "\n"
	}

	s += "\n" + c.RenderFooter()

	return lipgloss.NewStyle().Width(c.app.GetWidth()).Align(lipgloss.Left).Render(s)
}

func (c *CheckScreen) renderResult() string {
	theme := c.app.GetTheme()
	verdict := c.result.Verdict

	var b strings.Builder

	switch {
	case verdict.FullyApproved:
		b.WriteString(theme.SuccessText.Render("Fully approved") + "\n")
	case !verdict.SectionFound:
		b.WriteString(theme.WarningText.Render("No stakeholders section") + "\n")
	case !verdict.StakeholdersDefined:
		b.WriteString(theme.WarningText.Render("Stakeholders section is empty") + "\n")
	default:
		b.WriteString(theme.Text.Render(fmt.Sprintf("%d of %d stakeholders approved",
			len(verdict.ApprovedBy),
			len(verdict.ApprovedBy)+len(verdict.PendingBy))) + "\n")
	}

	if len(verdict.ApprovedBy) > 0 {
		b.WriteString(theme.Text.Render("Approved: "+strings.Join(verdict.ApprovedBy, ", ")) + "\n")
	}
	if len(verdict.PendingBy) > 0 {
		b.WriteString(theme.Text.Render("Waiting on: "+strings.Join(verdict.PendingBy, ", ")) + "\n")
	}

	if c.result.Executed {
		b.WriteString(theme.Faint.Render("Transition applied to the issue.") + "\n")
	} else if !c.result.Plan.Empty() {
		b.WriteString(theme.Faint.Render("Transition planned but not applied.") + "\n")
	}

	return b.String()
}

// ShortHelp returns keybindings to be shown in the help menu
func (c *CheckScreen) ShortHelp() []key.Binding {
	return []key.Binding{
		c.app.keyMap.Select,
		c.app.keyMap.Back,
		c.app.keyMap.Help,
		c.app.keyMap.Quit,
	}
}
