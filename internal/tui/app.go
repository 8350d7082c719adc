// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state and routes keyboard input to child components

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mappingdesk/skumap/internal/auth"
	"github.com/mappingdesk/skumap/internal/client"
	"github.com/mappingdesk/skumap/internal/grid"
	"github.com/mappingdesk/skumap/internal/tui/confirm"
	"github.com/mappingdesk/skumap/internal/tui/debuglog"
	"github.com/mappingdesk/skumap/internal/tui/editor"
	"github.com/mappingdesk/skumap/internal/tui/icons"
	"github.com/mappingdesk/skumap/internal/tui/kpi"
	"github.com/mappingdesk/skumap/internal/tui/login"
	"github.com/mappingdesk/skumap/internal/tui/mapgrid"
	"github.com/mappingdesk/skumap/internal/tui/recentfiles"
	"github.com/mappingdesk/skumap/internal/tui/styles"
	"github.com/mappingdesk/skumap/internal/tui/upload"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenEditor
	ScreenUpload
	ScreenConfirm
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	framePadding     = 4  // Horizontal padding consumed by the outer frame
)

// dashboardLoadedMsg is sent when the dashboard payload arrives
type dashboardLoadedMsg struct {
	data *client.DashboardResponse
	err  error
}

// loginResultMsg is sent when the login exchange completes
type loginResultMsg struct {
	err error
}

// recomputedMsg is sent when the backend finishes recomputing mappings
type recomputedMsg struct {
	message string
	err     error
}

// rowUpdatedMsg is sent when a single-row PUT completes
type rowUpdatedMsg struct {
	row *client.MappingRow
	err error
}

// saveDoneMsg is sent when the bulk save completes
type saveDoneMsg struct {
	result *client.SaveResult
	err    error
}

// uploadDoneMsg is sent when the multipart upload completes
type uploadDoneMsg struct {
	path   string
	result *client.UploadResult
	err    error
}

// App is the root model for the TUI
type App struct {
	session *auth.Manager
	client  *client.Client
	screen  Screen
	width   int
	height  int

	dept  grid.Department
	email string

	gridView   *mapgrid.Model
	kpiPane    *kpi.Pane
	loginView  *login.Model
	editorView *editor.Model
	uploadView *upload.Model
	confirmBox *confirm.Model

	recentFiles *recentfiles.RecentFiles

	notice     string
	noticeErr  bool
	lastUpdate time.Time
	lastSaved  string
	loading    bool
}

// New creates a new TUI application
func New(session *auth.Manager, apiClient *client.Client) *App {
	a := &App{
		session:     session,
		client:      apiClient,
		recentFiles: recentfiles.New(recentfiles.DefaultConfigDir()),
	}

	if session.LoggedIn() {
		a.enterDashboard()
	} else {
		a.screen = ScreenLogin
		a.loginView = login.New()
	}

	return a
}

// enterDashboard sets up the dashboard screen from the current session
func (a *App) enterDashboard() {
	sess := a.session.Session()
	a.dept = grid.ParseDepartment(sess.Department)
	a.email = ""
	if claims, err := a.session.Claims(); err == nil {
		a.email = claims.Email
	}

	a.gridView = mapgrid.New(a.dept)
	a.kpiPane = kpi.New(a.contentWidth())
	a.screen = ScreenDashboard
	a.loading = true
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.screen == ScreenLogin {
		return a.loginView.Init()
	}
	return a.loadDashboard()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.gridView != nil {
			a.gridView.SetSize(a.contentWidth(), a.gridHeight())
		}
		if a.kpiPane != nil {
			a.kpiPane.SetWidth(a.contentWidth())
		}
		return a.forwardToChild(msg)

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.screen {
		case ScreenLogin:
			return a.forwardToChild(msg)
		case ScreenDashboard:
			return a.updateDashboard(msg)
		case ScreenEditor, ScreenUpload, ScreenConfirm:
			return a.forwardToChild(msg)
		}

	case login.SubmitMsg:
		return a, a.doLogin(msg.Email, msg.Password)

	case login.CancelledMsg:
		return a, tea.Quit

	case loginResultMsg:
		if msg.err != nil {
			a.loginView.SetError(loginErrorText(msg.err))
			return a, a.loginView.Init()
		}
		a.enterDashboard()
		return a, a.loadDashboard()

	case dashboardLoadedMsg:
		a.loading = false
		if msg.err != nil {
			return a.handleAPIError("load dashboard", msg.err)
		}
		a.gridView.SetRows(msg.data.MappingData)
		a.kpiPane.Update(&msg.data.KpiSnapshot)
		a.lastUpdate = time.Now()
		return a, nil

	case recomputedMsg:
		if msg.err != nil {
			return a.handleAPIError("recompute", msg.err)
		}
		a.setNotice(msg.message, false)
		return a, a.loadDashboard()

	case mapgrid.EditRequestedMsg:
		a.editorView = editor.New(msg.Row, a.dept, a.email, msg.Draft)
		a.screen = ScreenEditor
		return a, a.editorView.Init()

	case editor.CompleteMsg:
		a.screen = ScreenDashboard
		a.editorView = nil
		a.gridView.ApplyRow(msg.Row, msg.Draft)
		if msg.Draft {
			a.setNotice("Draft row added; bulk save to persist", false)
			return a, nil
		}
		return a, a.updateRow(msg.Row)

	case editor.CancelledMsg:
		a.screen = ScreenDashboard
		a.editorView = nil
		if msg.Draft {
			a.gridView.RemoveDraft(msg.RowID)
		}
		return a, nil

	case rowUpdatedMsg:
		if msg.err != nil {
			return a.handleAPIError("update row", msg.err)
		}
		a.gridView.ApplyServerRow(*msg.row)
		a.setNotice("Row updated", false)
		return a, nil

	case confirm.ConfirmedMsg:
		a.screen = ScreenDashboard
		a.confirmBox = nil
		return a, a.saveMapping()

	case confirm.CancelledMsg:
		a.screen = ScreenDashboard
		a.confirmBox = nil
		return a, nil

	case saveDoneMsg:
		if msg.err != nil {
			return a.handleAPIError("save mapping", msg.err)
		}
		a.lastSaved = msg.result.Timestamp
		if a.lastSaved == "" {
			a.lastSaved = time.Now().Format("2006-01-02 15:04:05")
		}
		a.setNotice(fmt.Sprintf("%s (%d inserted, %d skipped)",
			msg.result.Message, msg.result.RowsInserted, msg.result.RowsSkipped), false)
		return a, a.loadDashboard()

	case upload.StartUploadMsg:
		return a, a.doUpload(msg.Path, msg.Data)

	case upload.CancelledMsg:
		a.screen = ScreenDashboard
		a.uploadView = nil
		return a, a.loadDashboard()

	case uploadDoneMsg:
		if msg.err == nil {
			a.recentFiles.Add(msg.path)
		}
		// Feed the result back into the modal so it can show completion
		if a.uploadView != nil {
			finished := upload.FinishedMsg{Err: msg.err}
			if msg.result != nil {
				finished.Message = msg.result.Message
				finished.RowsProcessed = msg.result.RowsProcessed
			}
			return a.forwardToChild(finished)
		}
		return a, nil

	default:
		// Forward unknown messages to form-backed screens (needed for huh internals)
		if a.screen != ScreenDashboard {
			return a.forwardToChild(msg)
		}
	}

	return a, nil
}

// forwardToChild routes a message to the active child model
func (a *App) forwardToChild(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenLogin:
		if a.loginView == nil {
			return a, nil
		}
		model, cmd := a.loginView.Update(msg)
		a.loginView = model.(*login.Model)
		return a, cmd

	case ScreenEditor:
		if a.editorView == nil {
			return a, nil
		}
		model, cmd := a.editorView.Update(msg)
		a.editorView = model.(*editor.Model)
		return a, cmd

	case ScreenUpload:
		if a.uploadView == nil {
			return a, nil
		}
		model, cmd := a.uploadView.Update(msg)
		a.uploadView = model.(*upload.Model)
		return a, cmd

	case ScreenConfirm:
		if a.confirmBox == nil {
			return a, nil
		}
		model, cmd := a.confirmBox.Update(msg)
		a.confirmBox = model.(*confirm.Model)
		return a, cmd
	}

	return a, nil
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "r":
		a.loading = true
		return a, a.loadDashboard()

	case "n":
		a.setNotice("Recomputing mapping...", false)
		return a, a.recompute()

	case "s":
		if !a.dept.CanModify() {
			a.setNotice("Read-only users cannot save", true)
			return a, nil
		}
		a.confirmBox = confirm.New(len(a.gridView.Rows()), a.lastSaved)
		a.screen = ScreenConfirm
		return a, a.confirmBox.Init()

	case "u":
		if !a.dept.CanModify() {
			a.setNotice("Read-only users cannot upload", true)
			return a, nil
		}
		recentList, _ := a.recentFiles.Load()
		a.uploadView = upload.New(recentList)
		a.screen = ScreenUpload
		return a, a.uploadView.Init()

	case "ctrl+l":
		a.session.Logout()
		a.screen = ScreenLogin
		a.loginView = login.New()
		a.gridView = nil
		a.kpiPane = nil
		a.notice = ""
		return a, a.loginView.Init()
	}

	model, cmd := a.gridView.Update(msg)
	a.gridView = model
	return a, cmd
}

// handleAPIError surfaces a failure; auth failures drop back to login
func (a *App) handleAPIError(op string, err error) (tea.Model, tea.Cmd) {
	debuglog.Errorf(op, err)

	if !a.session.LoggedIn() {
		// A failed refresh forced a logout underneath us
		a.screen = ScreenLogin
		a.loginView = login.New()
		a.loginView.SetError("Session expired, please sign in again")
		a.gridView = nil
		a.kpiPane = nil
		return a, a.loginView.Init()
	}

	a.setNotice(fmt.Sprintf("Could not %s: %v", op, err), true)
	return a, nil
}

func (a *App) setNotice(text string, isErr bool) {
	a.notice = text
	a.noticeErr = isErr
}

func loginErrorText(err error) string {
	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		return "Login failed: " + authErr.Err.Error()
	}
	return "Login failed: " + err.Error()
}

// Commands

func (a *App) doLogin(email, password string) tea.Cmd {
	return func() tea.Msg {
		err := a.session.Login(context.Background(), email, password)
		return loginResultMsg{err: err}
	}
}

func (a *App) loadDashboard() tea.Cmd {
	return func() tea.Msg {
		data, err := a.client.Dashboard(context.Background())
		return dashboardLoadedMsg{data: data, err: err}
	}
}

func (a *App) recompute() tea.Cmd {
	return func() tea.Msg {
		message, err := a.client.RecomputeMapping(context.Background())
		return recomputedMsg{message: message, err: err}
	}
}

func (a *App) updateRow(row client.MappingRow) tea.Cmd {
	dept := string(a.dept)
	return func() tea.Msg {
		updated, err := a.client.UpdateRow(context.Background(), row, dept)
		return rowUpdatedMsg{row: updated, err: err}
	}
}

func (a *App) saveMapping() tea.Cmd {
	rows := a.gridView.Rows()
	return func() tea.Msg {
		result, err := a.client.SaveMapping(context.Background(), rows)
		return saveDoneMsg{result: result, err: err}
	}
}

func (a *App) doUpload(path string, data []byte) tea.Cmd {
	dept := string(a.dept)
	email := a.email
	return func() tea.Msg {
		result, err := a.client.UploadBulk(context.Background(), filename(path), data, dept, email)
		return uploadDoneMsg{path: path, result: result, err: err}
	}
}

func filename(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		if a.loginView != nil {
			content = a.loginView.View()
		}
	case ScreenDashboard:
		content = a.viewDashboard()
	case ScreenEditor:
		if a.editorView != nil {
			content = a.editorView.View()
		}
	case ScreenUpload:
		if a.uploadView != nil {
			content = a.uploadView.View()
		}
	case ScreenConfirm:
		if a.confirmBox != nil {
			content = a.confirmBox.View()
		}
	}

	return a.wrapWithFrame(content)
}

// viewDashboard renders the KPI pane above the mapping grid
func (a *App) viewDashboard() string {
	if a.loading {
		return styles.Subtitle.Render("Loading dashboard...")
	}

	var sb strings.Builder
	if a.kpiPane != nil {
		sb.WriteString(a.kpiPane.View())
		sb.WriteString("\n")
	}
	if a.notice != "" {
		style := styles.StatusOK
		if a.noticeErr {
			style = styles.StatusCritical
		}
		sb.WriteString(style.Render(a.notice))
		sb.WriteString("\n")
	}
	if a.gridView != nil {
		sb.WriteString(a.gridView.View())
	}
	return sb.String()
}

// contentWidth is the usable width inside the frame
func (a *App) contentWidth() int {
	if a.width < minTerminalWidth {
		return minTerminalWidth - framePadding
	}
	return a.width - framePadding
}

// gridHeight is the height left for the grid under the KPI pane
func (a *App) gridHeight() int {
	// Header, KPI rows, notice line, footer
	h := a.height - 14
	if h < 8 {
		h = 8
	}
	return h
}

// renderHeader creates the header bar with app branding and session context
func (a *App) renderHeader() string {
	// Guard against zero/small width before WindowSizeMsg is received
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	icon := icons.App.String()
	title := "SKU Mapping Console"

	leftText := fmt.Sprintf(" %s %s", icon, titleStyle.Render(title))

	rightText := ""
	if a.email != "" && a.screen != ScreenLogin {
		rightText = contextStyle.Render(fmt.Sprintf("%s · %s", a.email, a.dept)) + " "
	}

	leftRendered := lipgloss.NewStyle().Render(leftText)
	rightRendered := lipgloss.NewStyle().Align(lipgloss.Right).Render(rightText)

	leftWidth := lipgloss.Width(leftRendered)
	rightWidth := lipgloss.Width(rightRendered)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	fill := strings.Repeat("─", fillWidth)

	header := "╭─" + leftRendered + fill + rightRendered + "─╮"

	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	// Guard against zero/small width before WindowSizeMsg is received
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	// Build keyboard shortcuts based on current screen
	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Tab Next field", "Enter Submit", "Esc Quit"}
	case ScreenDashboard:
		if a.dept.CanModify() {
			shortcuts = []string{"↑↓ Navigate", "e Edit", "a Add", "/ Filter", "s Save", "u Upload", "n Recompute", "r Refresh", "q Quit"}
		} else {
			shortcuts = []string{"↑↓ Navigate", "/ Filter", "n Recompute", "r Refresh", "q Quit"}
		}
	case ScreenEditor:
		shortcuts = []string{"Tab Next field", "Enter Confirm", "Esc Cancel"}
	case ScreenUpload:
		shortcuts = []string{"↑↓ Navigate", "Enter Select", "Esc Back"}
	case ScreenConfirm:
		shortcuts = []string{"←→ Choose", "Enter Confirm", "Esc Cancel"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	rightText := ""
	rightPlainText := ""
	if !a.lastUpdate.IsZero() && a.screen == ScreenDashboard {
		elapsed := a.formatTimeSince(a.lastUpdate)
		rightText = statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = "Updated " + elapsed + " "
	}

	leftWidth := lipgloss.Width(leftPlainText)
	rightWidth := lipgloss.Width(rightPlainText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	fill := strings.Repeat("─", fillWidth)

	footer := "╰─" + leftText + fill + rightText + "─╯"

	return borderStyle.Render(footer)
}

// formatTimeSince formats a duration since the given time in human-readable form
func (a *App) formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	}

	hours := int(d.Hours())
	if hours == 1 {
		return "1h ago"
	}
	return fmt.Sprintf("%dh ago", hours)
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI. The session's scheduled token refresh runs for the
// life of the program.
func Run(session *auth.Manager, apiClient *client.Client, refreshInterval time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session.StartAutoRefresh(ctx, refreshInterval)
	debuglog.Logf("ui starting, refresh interval %s", refreshInterval)

	app := New(session, apiClient)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
