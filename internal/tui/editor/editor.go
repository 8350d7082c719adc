// ABOUTME: Row editor as a huh form scoped to the editor's department
// ABOUTME: Only fields the department may change are presented

package editor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/mappingdesk/skumap/internal/client"
	"github.com/mappingdesk/skumap/internal/grid"
	"github.com/mappingdesk/skumap/internal/tui/styles"
	"github.com/mappingdesk/skumap/internal/tui/theme"
)

// CompleteMsg carries the edited row, normalized and attributed.
// Draft marks rows that exist only locally until the next bulk save.
type CompleteMsg struct {
	Row   client.MappingRow
	Draft bool
}

// CancelledMsg is sent when the editor is dismissed without saving.
// Draft reports whether the row was a local draft that should be removed.
type CancelledMsg struct {
	RowID string
	Draft bool
}

// fieldTitles maps grid field names to human labels
var fieldTitles = map[string]string{
	grid.FieldIMSKU:            "Linnworks SKU",
	grid.FieldSalesChannel:     "Sales Channel",
	grid.FieldLevel1:           "Linnworks Category",
	grid.FieldLinworksTitle:    "Linnworks Title",
	grid.FieldComment:          "Comment",
	grid.FieldParentSKU:        "Parent SKU",
	grid.FieldCommentByFinance: "Finance Comment",
}

// Model edits one mapping row through a department-scoped form
type Model struct {
	form  *huh.Form
	row   client.MappingRow
	dept  grid.Department
	email string
	width int

	values map[string]*string
	draft  bool
}

// New creates an editor for row with the department's editable fields.
// draft marks a locally added row that has never been persisted.
func New(row client.MappingRow, dept grid.Department, email string, draft bool) *Model {
	m := &Model{
		row:    row,
		dept:   dept,
		email:  email,
		values: make(map[string]*string),
		draft:  draft,
	}

	var fields []huh.Field
	for _, name := range grid.EditableFields(dept) {
		value := currentValue(row, name)
		m.values[name] = &value

		fields = append(fields, huh.NewInput().
			Title(fieldTitles[name]).
			Value(m.values[name]))
	}

	title := fmt.Sprintf("Edit %s", row.MarketplaceSKU)
	if m.draft {
		title = "New mapping row"
	}

	m.form = huh.NewForm(
		huh.NewGroup(fields...).
			Title(title).
			Description(fmt.Sprintf("Editing as %s", dept)),
	).WithTheme(theme.Form())

	return m
}

func currentValue(row client.MappingRow, field string) string {
	switch field {
	case grid.FieldIMSKU:
		return row.IMSKU
	case grid.FieldSalesChannel:
		return row.SalesChannel
	case grid.FieldLevel1:
		return row.Level1
	case grid.FieldLinworksTitle:
		return row.LinworksTitle
	case grid.FieldComment:
		return row.Comment
	case grid.FieldParentSKU:
		return row.ParentSKU
	case grid.FieldCommentByFinance:
		return row.CommentByFinance
	default:
		return ""
	}
}

// SetWidth sets the editor width for proper rendering
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
			rowID, draft := m.row.ID, m.draft
			return m, func() tea.Msg {
				return CancelledMsg{RowID: rowID, Draft: draft}
			}
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		edit := make(grid.Edit, len(m.values))
		for name, value := range m.values {
			edit[name] = *value
		}

		row, err := grid.ApplyEdit(m.row, edit, m.dept, m.email)
		if err != nil {
			// The form only offers permitted fields, so this does not happen
			rowID, draft := m.row.ID, m.draft
			return m, func() tea.Msg {
				return CancelledMsg{RowID: rowID, Draft: draft}
			}
		}

		draft := m.draft
		return m, func() tea.Msg { return CompleteMsg{Row: row, Draft: draft} }
	}

	return m, cmd
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	if !m.draft {
		sb.WriteString(styles.Subtitle.Render(
			fmt.Sprintf("%s · %s · %s", m.row.MarketplaceSKU, m.row.ASIN, m.row.Region)))
		sb.WriteString("\n")
	}

	sb.WriteString(m.form.View())
	return sb.String()
}
