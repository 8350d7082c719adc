// ABOUTME: Mapping grid screen built on the bubbles table component
// ABOUTME: Supports filtering, dirty-row tracking, and draft row management

package mapgrid

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mappingdesk/skumap/internal/client"
	"github.com/mappingdesk/skumap/internal/grid"
	"github.com/mappingdesk/skumap/internal/tui/styles"
)

// EditRequestedMsg asks the app to open the row editor for a row.
// Draft marks rows that exist only locally.
type EditRequestedMsg struct {
	Row   client.MappingRow
	Draft bool
}

// Model is the mapping grid screen state
type Model struct {
	table       table.Model
	filterInput textinput.Model

	rows     []client.MappingRow
	filtered []client.MappingRow
	dirty    map[string]bool
	draftIDs map[string]bool

	dept          grid.Department
	filterFocused bool
	width         int
	height        int
}

// New creates a grid for the given department's permissions
func New(dept grid.Department) *Model {
	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	st.Selected = st.Selected.
		Foreground(styles.Text).
		Background(styles.Surface).
		Bold(true)
	t.SetStyles(st)

	fi := textinput.New()
	fi.Placeholder = "Filter by SKU, ASIN, or title..."
	fi.CharLimit = 60
	fi.Width = 40

	return &Model{
		table:       t,
		filterInput: fi,
		dirty:       make(map[string]bool),
		draftIDs:    make(map[string]bool),
		dept:        dept,
	}
}

func columns() []table.Column {
	return []table.Column{
		{Title: " ", Width: 1},
		{Title: "Marketplace SKU", Width: 18},
		{Title: "ASIN", Width: 12},
		{Title: "Region", Width: 6},
		{Title: "Linnworks SKU", Width: 16},
		{Title: "Parent SKU", Width: 14},
		{Title: "Channel", Width: 12},
		{Title: "Category", Width: 12},
		{Title: "Modified By", Width: 20},
	}
}

// SetRows replaces the backing row set and clears dirty and draft
// tracking
func (m *Model) SetRows(rows []client.MappingRow) {
	m.rows = rows
	m.dirty = make(map[string]bool)
	m.draftIDs = make(map[string]bool)
	m.applyFilter()
}

// Rows returns the full backing row set including unsaved edits
func (m *Model) Rows() []client.MappingRow {
	return m.rows
}

// DirtyCount returns the number of rows with unsaved edits
func (m *Model) DirtyCount() int {
	return len(m.dirty)
}

// ApplyRow merges an edited row back into the grid and marks it dirty.
// draft records locally added rows, which only a bulk save persists.
func (m *Model) ApplyRow(row client.MappingRow, draft bool) {
	if draft {
		m.draftIDs[row.ID] = true
	}

	for i := range m.rows {
		if m.rows[i].ID == row.ID {
			m.rows[i] = row
			m.dirty[row.ID] = true
			m.applyFilter()
			return
		}
	}

	m.rows = append(m.rows, row)
	m.dirty[row.ID] = true
	m.applyFilter()
}

// ApplyServerRow merges the backend's authoritative row after a
// successful update. The row is persisted, so its dirty flag clears.
func (m *Model) ApplyServerRow(row client.MappingRow) {
	for i := range m.rows {
		if m.rows[i].ID == row.ID {
			m.rows[i] = row
			delete(m.dirty, row.ID)
			m.applyFilter()
			return
		}
	}

	m.rows = append(m.rows, row)
	m.applyFilter()
}

// IsDraftRow reports whether the id belongs to a locally added row
func (m *Model) IsDraftRow(id string) bool {
	return m.draftIDs[id]
}

// RemoveDraft drops a locally added row that was never saved. Rows that
// came from the backend are left alone.
func (m *Model) RemoveDraft(id string) {
	if !m.draftIDs[id] {
		return
	}
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			delete(m.dirty, id)
			delete(m.draftIDs, id)
			m.applyFilter()
			return
		}
	}
}

// SelectedRow returns the row under the cursor
func (m *Model) SelectedRow() (client.MappingRow, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.filtered) {
		return client.MappingRow{}, false
	}
	return m.filtered[idx], true
}

// SetSize updates the grid dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	tableHeight := height - 4
	if tableHeight < 5 {
		tableHeight = 5
	}
	m.table.SetHeight(tableHeight)
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filterFocused {
			switch msg.String() {
			case "esc":
				m.filterFocused = false
				m.filterInput.Blur()
				m.filterInput.SetValue("")
				m.applyFilter()
				return m, nil
			case "enter":
				m.filterFocused = false
				m.filterInput.Blur()
				m.applyFilter()
				return m, nil
			}

			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.filterFocused = true
			m.filterInput.Focus()
			return m, textinput.Blink

		case "enter", "e":
			if !m.dept.CanModify() {
				return m, nil
			}
			if row, ok := m.SelectedRow(); ok {
				draft := m.draftIDs[row.ID]
				return m, func() tea.Msg { return EditRequestedMsg{Row: row, Draft: draft} }
			}

		case "a":
			if !m.dept.CanModify() {
				return m, nil
			}
			draft := grid.NewDraftRow()
			return m, func() tea.Msg { return EditRequestedMsg{Row: draft, Draft: true} }

		case "d":
			if row, ok := m.SelectedRow(); ok {
				m.RemoveDraft(row.ID)
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// applyFilter rebuilds the visible rows from the filter text
func (m *Model) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))

	if query == "" {
		m.filtered = m.rows
	} else {
		filtered := make([]client.MappingRow, 0, len(m.rows))
		for _, r := range m.rows {
			if rowMatches(r, query) {
				filtered = append(filtered, r)
			}
		}
		m.filtered = filtered
	}

	tableRows := make([]table.Row, 0, len(m.filtered))
	for _, r := range m.filtered {
		marker := " "
		if m.dirty[r.ID] {
			marker = styles.DirtyStyle.Render("●")
		}
		tableRows = append(tableRows, table.Row{
			marker,
			r.MarketplaceSKU,
			r.ASIN,
			r.Region,
			r.IMSKU,
			r.ParentSKU,
			r.SalesChannel,
			r.Level1,
			modifiedBy(r),
		})
	}
	m.table.SetRows(tableRows)
}

func rowMatches(r client.MappingRow, query string) bool {
	for _, field := range []string{
		r.MarketplaceSKU, r.ASIN, r.IMSKU, r.ParentSKU,
		r.AmazonTitle, r.LinworksTitle, r.Region, r.SalesChannel,
	} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// modifiedBy reports the single attribution value set on the row
func modifiedBy(r client.MappingRow) string {
	switch {
	case r.ModifiedByAdmin != nil:
		return *r.ModifiedByAdmin
	case r.ModifiedByFinance != nil:
		return *r.ModifiedByFinance
	case r.ModifiedBy != nil:
		return *r.ModifiedBy
	default:
		return ""
	}
}

// View renders the grid with its filter line
func (m *Model) View() string {
	var sb strings.Builder

	if m.filterFocused || m.filterInput.Value() != "" {
		sb.WriteString(m.filterInput.View())
	} else {
		sb.WriteString(styles.Subtitle.Render(
			fmt.Sprintf("%d rows (%d unsaved)", len(m.filtered), len(m.dirty))))
	}
	sb.WriteString("\n")
	sb.WriteString(m.table.View())

	return sb.String()
}
