// ABOUTME: Login screen as a bubbletea model wrapping a huh form
// ABOUTME: Collects credentials and reports completion or cancellation upward

package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mappingdesk/skumap/internal/tui/icons"
	"github.com/mappingdesk/skumap/internal/tui/styles"
	"github.com/mappingdesk/skumap/internal/tui/theme"
)

// SubmitMsg is sent when the form completes with credentials
type SubmitMsg struct {
	Email    string
	Password string
}

// CancelledMsg is sent when the login form is cancelled
type CancelledMsg struct{}

// Model manages the login form flow as a bubbletea model
type Model struct {
	form    *huh.Form
	width   int
	errText string

	email    string
	password string
}

// New creates a login model with an empty form
func New() *Model {
	m := &Model{}
	m.form = m.createForm()
	return m
}

func (m *Model) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@company.com").
				Value(&m.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password).
				Validate(validateRequired),
		).Title("Sign in").
			Description("Authenticate against the mapping backend"),
	).WithTheme(theme.Form())
}

// SetError shows a failure message and resets the form for another attempt
func (m *Model) SetError(text string) {
	m.errText = text
	m.password = ""
	m.form = m.createForm()
}

// SetWidth sets the model width for proper rendering
func (m *Model) SetWidth(width int) {
	m.width = width
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		email, password := m.email, m.password
		return m, func() tea.Msg {
			return SubmitMsg{Email: email, Password: password}
		}
	}

	return m, cmd
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	title := fmt.Sprintf("%s SKU Mapping Console", icons.Lock.String())
	sb.WriteString(styles.Title.Render(title))
	sb.WriteString("\n")

	if m.errText != "" {
		errStyle := lipgloss.NewStyle().Foreground(styles.Danger).Bold(true)
		sb.WriteString(errStyle.Render(fmt.Sprintf("%s %s", icons.Critical.String(), m.errText)))
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.form.View())
	return sb.String()
}

func validateEmail(s string) error {
	if !strings.Contains(s, "@") {
		return fmt.Errorf("must be an email address")
	}
	return nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}
