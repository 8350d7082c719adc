// ABOUTME: Confirmation dialog gating the irreversible bulk save
// ABOUTME: A huh confirm form that only proceeds on explicit approval

package confirm

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/mappingdesk/skumap/internal/tui/icons"
	"github.com/mappingdesk/skumap/internal/tui/styles"
	"github.com/mappingdesk/skumap/internal/tui/theme"
)

// ConfirmedMsg is sent when the user explicitly approves the save
type ConfirmedMsg struct{}

// CancelledMsg is sent when the dialog is dismissed without saving
type CancelledMsg struct{}

// Model is the confirmation dialog state
type Model struct {
	form      *huh.Form
	rowCount  int
	lastSaved string
	approved  bool
	width     int
}

// New creates a confirmation dialog for saving rowCount rows.
// lastSaved is the timestamp of the previous save, if known.
func New(rowCount int, lastSaved string) *Model {
	m := &Model{
		rowCount:  rowCount,
		lastSaved: lastSaved,
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Save all %d mapping rows?", rowCount)).
				Description("This overwrites the saved mapping data and cannot be undone.").
				Affirmative("Save").
				Negative("Cancel").
				Value(&m.approved),
		),
	).WithTheme(theme.Form())

	return m
}

// SetWidth sets the dialog width for proper rendering
func (m *Model) SetWidth(width int) {
	m.width = width
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if m.approved {
			return m, func() tea.Msg { return ConfirmedMsg{} }
		}
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	return m, cmd
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	warning := fmt.Sprintf("%s Bulk save is irreversible", icons.Warning.String())
	sb.WriteString(styles.StatusWarning.Render(warning))
	sb.WriteString("\n")

	if m.lastSaved != "" {
		sb.WriteString(styles.Subtitle.Render("Last saved: " + m.lastSaved))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.form.View())
	return sb.String()
}
