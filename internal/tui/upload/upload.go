// ABOUTME: CSV upload modal with file picking, validation, and progress
// ABOUTME: Progress is simulated on a tick while the real request runs

package upload

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mappingdesk/skumap/internal/csvcheck"
	"github.com/mappingdesk/skumap/internal/tui/styles"
	"github.com/mappingdesk/skumap/internal/tui/widgets"
)

// State represents the current UI state
type state int

const (
	stateList state = iota
	stateInput
	stateReady
	stateUploading
	stateDone
)

// tickInterval paces the simulated progress updates
const tickInterval = 300 * time.Millisecond

// StartUploadMsg asks the app to POST the validated file
type StartUploadMsg struct {
	Path string
	Data []byte
}

// CancelledMsg is sent when the user dismisses the modal
type CancelledMsg struct{}

// FinishedMsg reports the backend's response; the app sends it back into
// the modal when the upload request completes
type FinishedMsg struct {
	Message       string
	RowsProcessed int
	Err           error
}

type tickMsg time.Time

// Model is the upload modal state machine
type Model struct {
	recentFiles []string
	cursor      int
	state       state
	textInput   textinput.Model

	path     string
	data     []byte
	checkMsg string
	err      string

	progress float64
	result   *FinishedMsg

	width  int
	height int
}

// Styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dividerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// New creates an upload modal offering the recent files list
func New(recentFiles []string) *Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/mapping.csv"
	ti.CharLimit = 256
	ti.Width = 60

	return &Model{
		recentFiles: recentFiles,
		cursor:      0,
		state:       stateList,
		textInput:   ti,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.state != stateUploading {
			return m, nil
		}
		// Advance by a random step, holding at 90 until the real
		// request finishes
		m.progress += rand.Float64() * 15
		if m.progress > 90 {
			m.progress = 90
		}
		return m, m.tick()

	case FinishedMsg:
		m.result = &msg
		m.progress = 100
		m.state = stateDone
		return m, nil

	case tea.KeyMsg:
		m.err = ""

		switch m.state {
		case stateList:
			return m.updateList(msg)
		case stateInput:
			return m.updateInput(msg)
		case stateReady:
			return m.updateReady(msg)
		case stateUploading:
			// The tick is cancellable; the request is not
			if msg.String() == "esc" {
				return m, func() tea.Msg { return CancelledMsg{} }
			}
		case stateDone:
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	maxItems := len(m.recentFiles) + 1 // +1 for "Enter path..."

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < maxItems-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.recentFiles) {
			return m.loadFile(m.recentFiles[m.cursor])
		}
		m.state = stateInput
		m.textInput.Focus()
		return m, textinput.Blink
	case "esc", "b":
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateList
		m.textInput.SetValue("")
		return m, nil
	case "enter":
		path := m.textInput.Value()
		if path == "" {
			m.err = "Please enter a file path"
			return m, nil
		}
		return m.loadFile(path)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) updateReady(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.state = stateUploading
		m.progress = 0
		path, data := m.path, m.data
		return m, tea.Batch(
			m.tick(),
			func() tea.Msg { return StartUploadMsg{Path: path, Data: data} },
		)
	case "esc", "b":
		m.state = stateList
		m.cursor = 0
		return m, nil
	}
	return m, nil
}

// loadFile reads and validates the CSV before offering the upload
func (m *Model) loadFile(path string) (tea.Model, tea.Cmd) {
	expandedPath := expandPath(path)

	if !strings.HasSuffix(strings.ToLower(expandedPath), ".csv") {
		m.err = "Please select a .csv file"
		return m, nil
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			m.err = "File not found: " + path
		} else if os.IsPermission(err) {
			m.err = "Cannot read file: permission denied"
		} else {
			m.err = "Error reading file: " + err.Error()
		}
		return m, nil
	}

	check := csvcheck.Validate(string(data))
	if !check.IsValid {
		m.err = check.Message
		if len(check.MissingFields) > 0 {
			m.err += ": " + strings.Join(check.MissingFields, ", ")
		}
		return m, nil
	}

	m.path = expandedPath
	m.data = data
	m.checkMsg = check.Message
	m.state = stateReady
	return m, nil
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	return path
}

// SetError sets an error message to display
func (m *Model) SetError(msg string) {
	m.err = msg
}

// Path returns the selected file path, if any
func (m *Model) Path() string {
	return m.path
}

// View implements tea.Model
func (m *Model) View() string {
	switch m.state {
	case stateInput:
		return m.viewInput()
	case stateReady:
		return m.viewReady()
	case stateUploading, stateDone:
		return m.viewProgress()
	default:
		return m.viewList()
	}
}

func (m *Model) viewList() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Select CSV file"))
	b.WriteString("\n\n")

	if len(m.recentFiles) > 0 {
		b.WriteString(helpStyle.Render("Recent files:"))
		b.WriteString("\n")
		for i, path := range m.recentFiles {
			cursor := "  "
			style := normalStyle
			if i == m.cursor {
				cursor = "> "
				style = selectedStyle
			}
			display := path
			if len(display) > m.width-10 && m.width > 20 {
				display = "..." + display[len(display)-(m.width-13):]
			}
			b.WriteString(cursor + style.Render(display) + "\n")
		}
		b.WriteString("\n")

		dividerWidth := min(40, m.width-4)
		if dividerWidth < 1 {
			dividerWidth = 40
		}
		b.WriteString(dividerStyle.Render(strings.Repeat("─", dividerWidth)))
		b.WriteString("\n")
	}

	cursor := "  "
	style := normalStyle
	if m.cursor == len(m.recentFiles) {
		cursor = "> "
		style = selectedStyle
	}
	b.WriteString(cursor + style.Render("Enter path...") + "\n")

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err))
	}

	return b.String()
}

func (m *Model) viewInput() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Enter file path"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())

	if m.err != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Error: " + m.err))
	}

	return b.String()
}

func (m *Model) viewReady() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Ready to upload"))
	b.WriteString("\n\n")
	b.WriteString(normalStyle.Render(m.path))
	b.WriteString("\n")
	b.WriteString(styles.StatusOK.Render(m.checkMsg))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter: upload · esc: back"))

	return b.String()
}

func (m *Model) viewProgress() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Uploading " + m.path))
	b.WriteString("\n\n")

	config := widgets.DefaultProgressBarConfig()
	config.Width = 40
	b.WriteString(widgets.ProgressBarWithLabel(m.progress, config))
	b.WriteString("\n")

	if m.state == stateDone && m.result != nil {
		b.WriteString("\n")
		if m.result.Err != nil {
			b.WriteString(errorStyle.Render("Upload failed: " + m.result.Err.Error()))
		} else {
			msg := m.result.Message
			if m.result.RowsProcessed > 0 {
				msg = fmt.Sprintf("%s (%d rows processed)", msg, m.result.RowsProcessed)
			}
			b.WriteString(styles.StatusOK.Render(msg))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("press any key to close"))
	}

	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
