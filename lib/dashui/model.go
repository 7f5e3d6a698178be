// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/cache"
	"github.com/Philbert250/Procure-to-Pay/lib/identity"
	"github.com/Philbert250/Procure-to-Pay/lib/nav"
	"github.com/Philbert250/Procure-to-Pay/lib/session"
	"github.com/Philbert250/Procure-to-Pay/lib/tui"
)

// Backend is the slice of the API client the dashboard calls. It is an
// interface so tests can drive the model without a server.
type Backend interface {
	ListRequests(ctx context.Context, options api.ListOptions) (*api.List[api.PurchaseRequest], error)
	GetRequest(ctx context.Context, id string) (*api.PurchaseRequest, error)
	CreateRequest(ctx context.Context, input api.RequestInput) (*api.PurchaseRequest, error)
	SubmitRequest(ctx context.Context, id string) (*api.PurchaseRequest, error)
	PendingApprovals(ctx context.Context, options api.ListOptions) (*api.List[api.PurchaseRequest], error)
	ApproveRequest(ctx context.Context, requestID, comment string) (*api.PurchaseRequest, error)
	RejectRequest(ctx context.Context, requestID, comment string) (*api.PurchaseRequest, error)
	ApprovalHistory(ctx context.Context, requestID string) ([]api.Approval, error)
	ListUsers(ctx context.Context, options api.ListOptions) (*api.List[api.User], error)
	ListRequestTypes(ctx context.Context) ([]api.RequestType, error)
	ListApprovalLevels(ctx context.Context) ([]api.ApprovalLevel, error)
}

// Focus identifies which region consumes key input.
type Focus int

const (
	// FocusSidebar moves between navigation entries.
	FocusSidebar Focus = iota
	// FocusList moves within the active page's rows.
	FocusList
	// FocusFilter edits the fuzzy filter line.
	FocusFilter
	// FocusDetail scrolls the request detail pane.
	FocusDetail
	// FocusForm edits the create-request form.
	FocusForm
	// FocusLogin edits the login form.
	FocusLogin
	// FocusModal edits the approve/reject comment modal.
	FocusModal
)

const (
	sidebarWidth    = 24
	statusFadeDelay = 4 * time.Second
	loadTimeout     = 30 * time.Second
)

// Config assembles a Model.
type Config struct {
	Session *session.Store
	Backend Backend
	Cache   *cache.Cache
	Theme   *tui.Theme
	Keys    *KeyMap
}

// Model is the dashboard's bubbletea model.
type Model struct {
	session *session.Store
	backend Backend
	cache   *cache.Cache
	theme   tui.Theme
	keys    KeyMap

	entries   []nav.Entry
	navCursor int
	path      string

	list       *listPane
	filterText string
	detail     *detailPane
	form       *requestForm
	login      *loginForm

	modal       *tui.CommentModal
	modalVerb   string
	modalTarget string

	focus   Focus
	width   int
	height  int
	loading bool

	status      string
	statusIsErr bool
	statusSeq   int
}

// New builds the dashboard model. The session may be in any state;
// Init schedules the restore.
func New(config Config) *Model {
	theme := tui.DefaultTheme
	if config.Theme != nil {
		theme = *config.Theme
	}
	keys := DefaultKeyMap()
	if config.Keys != nil {
		keys = *config.Keys
	}
	return &Model{
		session: config.Session,
		backend: config.Backend,
		cache:   config.Cache,
		theme:   theme,
		keys:    keys,
		path:    nav.PathDashboard,
		list:    newListPane(),
		detail:  newDetailPane(theme),
		form:    newRequestForm(),
		login:   newLoginForm(),
		loading: true,
	}
}

// Messages.

type restoredMsg struct {
	state session.State
	err   error
}

type pageDataMsg struct {
	path    string
	columns []string
	rows    []Row
	err     error
}

type detailMsg struct {
	request *api.PurchaseRequest
	history []api.Approval
	err     error
}

type mutationMsg struct {
	verb string
	err  error
}

type loginMsg struct {
	ident identity.Identity
	err   error
}

type statusFadeMsg struct{ seq int }

// Init restores the persisted session off the message loop. A store
// the caller already restored is used as-is.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		if state := m.session.State(); state != session.StateUninitialized {
			return restoredMsg{state: state}
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		client, _ := m.backend.(*api.Client)
		state, err := m.session.Restore(ctx, client)
		return restoredMsg{state: state, err: err}
	}
}

// Update is the message loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Resize(m.contentWidth(), m.contentHeight())
		return m, nil

	case restoredMsg:
		m.loading = false
		m.rebuildEntries()
		if msg.state != session.StateAuthenticated {
			return m, m.navigate(nav.PathLogin)
		}
		return m, m.navigate(nav.PathDashboard)

	case pageDataMsg:
		return m.handlePageData(msg)

	case detailMsg:
		if msg.err != nil {
			return m, m.fail("load request", msg.err)
		}
		m.detail.SetRequest(msg.request, msg.history)
		m.focus = FocusDetail
		return m, nil

	case mutationMsg:
		if msg.err != nil {
			return m, m.fail(msg.verb, msg.err)
		}
		cmd := m.navigate(m.path)
		return m, tea.Batch(cmd, m.note(msg.verb+" succeeded"))

	case loginMsg:
		if msg.err != nil {
			m.login.Fail(msg.err)
			return m, nil
		}
		m.cache.Clear()
		m.rebuildEntries()
		cmd := m.navigate(nav.PathDashboard)
		return m, tea.Batch(cmd, m.note("logged in as "+msg.ident.Username))

	case statusFadeMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handlePageData(msg pageDataMsg) (tea.Model, tea.Cmd) {
	if msg.path != m.path {
		// Stale load from a page the user already left.
		return m, nil
	}
	if msg.err != nil {
		if m.session.State() != session.StateAuthenticated {
			// Refresh exhausted mid-load: the store already tore the
			// session down, land on the login page.
			return m, m.navigate(nav.PathLogin)
		}
		return m, m.fail("load "+msg.path, msg.err)
	}
	m.list.SetRows(msg.columns, msg.rows)
	m.cache.Put(collectionFor(msg.path), "dash:"+msg.path, msg.rows)
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Text-entry regions consume everything except their own exits.
	switch m.focus {
	case FocusModal:
		return m.handleModalKey(msg)
	case FocusFilter:
		return m.handleFilterKey(msg)
	case FocusLogin:
		model, cmd := m.login.Update(m, msg)
		return model, cmd
	case FocusForm:
		model, cmd := m.form.Update(m, msg)
		return model, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextPage):
		if len(m.entries) > 0 {
			m.moveNav(1)
			return m, m.navigate(m.entries[m.navCursor].Path)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if len(m.entries) > 0 {
			m.moveNav(-1)
			return m, m.navigate(m.entries[m.navCursor].Path)
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.navigate(m.path)
	}

	if m.focus == FocusDetail {
		return m.handleDetailKey(msg)
	}
	if m.focus == FocusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleListKey(msg)
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveNav(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveNav(1)
	case key.Matches(msg, m.keys.Open):
		if len(m.entries) > 0 {
			return m, m.navigate(m.entries[m.navCursor].Path)
		}
	case key.Matches(msg, m.keys.Filter), msg.String() == "l", msg.String() == "right":
		m.focus = FocusList
	}
	return m, nil
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.list.Move(-1)
	case key.Matches(msg, m.keys.Down):
		m.list.Move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.list.Move(-m.contentHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.list.Move(m.contentHeight())
	case key.Matches(msg, m.keys.Home):
		m.list.MoveHome()
	case key.Matches(msg, m.keys.End):
		m.list.MoveEnd()

	case key.Matches(msg, m.keys.Filter):
		m.focus = FocusFilter

	case key.Matches(msg, m.keys.ClearFilter) && m.filterText != "":
		m.filterText = ""
		m.list.SetFilter("")

	case key.Matches(msg, m.keys.Back):
		m.focus = FocusSidebar

	case key.Matches(msg, m.keys.Open):
		if row, ok := m.list.Current(); ok && isRequestPage(m.path) {
			return m, m.loadDetailCmd(row.ID)
		}

	case key.Matches(msg, m.keys.Approve):
		if m.path == nav.PathPending {
			return m, m.openModal("approve")
		}
	case key.Matches(msg, m.keys.Reject):
		if m.path == nav.PathPending {
			return m, m.openModal("reject")
		}
	case key.Matches(msg, m.keys.Submit):
		if row, ok := m.list.Current(); ok && m.path == nav.PathMyRequests {
			return m, m.submitCmd(row.ID)
		}
	}
	return m, nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.focus = FocusList
		return m, nil
	}
	m.detail.Update(msg)
	return m, nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterText = ""
		m.list.SetFilter("")
		m.focus = FocusList
	case tea.KeyEnter:
		m.focus = FocusList
	case tea.KeyBackspace:
		if m.filterText != "" {
			runes := []rune(m.filterText)
			m.filterText = string(runes[:len(runes)-1])
			m.list.SetFilter(m.filterText)
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filterText += string(msg.Runes)
		if msg.Type == tea.KeySpace {
			m.filterText += " "
		}
		m.list.SetFilter(m.filterText)
	}
	return m, nil
}

func (m *Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = nil
		m.focus = FocusList
		return m, nil
	case tea.KeyCtrlD:
		comment := m.modal.Value()
		verb, target := m.modalVerb, m.modalTarget
		if verb == "reject" && strings.TrimSpace(comment) == "" {
			return m, m.fail("reject", fmt.Errorf("a comment is required"))
		}
		m.modal = nil
		m.focus = FocusList
		return m, m.decideCmd(verb, target, comment)
	}
	m.modal.Update(msg)
	return m, nil
}

func (m *Model) openModal(verb string) tea.Cmd {
	row, ok := m.list.Current()
	if !ok {
		return nil
	}
	title := fmt.Sprintf("%s %s", strings.ToUpper(verb[:1])+verb[1:], row.ID)
	modal := tui.NewCommentModal(title, m.theme)
	m.modal = &modal
	m.modalVerb = verb
	m.modalTarget = row.ID
	m.focus = FocusModal
	return nil
}

// navigate runs the route guard for the target page, then paints any
// cached rows and schedules the fresh load.
func (m *Model) navigate(path string) tea.Cmd {
	ident := m.identity()

	switch nav.Guard(m.session.State(), ident, rolesFor(m.entries, path)) {
	case nav.Wait:
		m.loading = true
		return nil
	case nav.RedirectLogin:
		path = nav.PathLogin
	case nav.RedirectDashboard:
		path = nav.PathDashboard
	}
	if path != nav.PathLogin && ident != nil && !nav.Visible(ident, path) {
		path = nav.PathDashboard
	}

	m.path = path
	m.filterText = ""
	m.list.SetFilter("")
	m.syncNavCursor()

	switch path {
	case nav.PathLogin:
		m.login.Reset()
		m.focus = FocusLogin
		return nil
	case nav.PathCreateRequest:
		m.form.Reset()
		m.focus = FocusForm
		return nil
	case nav.PathProfile:
		m.focus = FocusSidebar
		return nil
	}

	m.focus = FocusList
	var cached []Row
	if _, ok := m.cache.Get(collectionFor(path), "dash:"+path, &cached); ok {
		m.list.SetRows(columnsFor(path), cached)
	} else {
		m.list.SetRows(columnsFor(path), nil)
	}
	return m.loadPageCmd(path)
}

func (m *Model) rebuildEntries() {
	ident := m.identity()
	m.entries = nav.Resolve(ident, false, nav.Options{IncludeProfile: true})
	m.syncNavCursor()
}

func (m *Model) syncNavCursor() {
	for i, entry := range m.entries {
		if entry.Path == m.path {
			m.navCursor = i
			return
		}
	}
	m.navCursor = 0
}

func (m *Model) moveNav(delta int) {
	if len(m.entries) == 0 {
		return
	}
	m.navCursor = (m.navCursor + delta + len(m.entries)) % len(m.entries)
}

func (m *Model) identity() *identity.Identity {
	ident, ok := m.session.Identity()
	if !ok {
		return nil
	}
	return &ident
}

// rolesFor finds the role restriction for a path among the resolved
// entries. An unknown path has no restriction; the guard's state rows
// still apply.
func rolesFor(entries []nav.Entry, path string) []identity.Role {
	for _, entry := range entries {
		if entry.Path == path {
			return entry.AllowedRoles
		}
	}
	return nil
}

// Commands.

func (m *Model) loadPageCmd(path string) tea.Cmd {
	ident := m.identity()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		columns, rows, err := loadPage(ctx, m.backend, path, ident)
		return pageDataMsg{path: path, columns: columns, rows: rows, err: err}
	}
}

func (m *Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		request, err := m.backend.GetRequest(ctx, id)
		if err != nil {
			return detailMsg{err: err}
		}
		history, err := m.backend.ApprovalHistory(ctx, id)
		if err != nil {
			return detailMsg{err: err}
		}
		return detailMsg{request: request, history: history}
	}
}

func (m *Model) decideCmd(verb, id, comment string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		var err error
		if verb == "approve" {
			_, err = m.backend.ApproveRequest(ctx, id, comment)
		} else {
			_, err = m.backend.RejectRequest(ctx, id, comment)
		}
		if err == nil {
			m.cache.Invalidate("requests", "approvals")
		}
		return mutationMsg{verb: verb, err: err}
	}
}

func (m *Model) submitCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		_, err := m.backend.SubmitRequest(ctx, id)
		if err == nil {
			m.cache.Invalidate("requests", "approvals")
		}
		return mutationMsg{verb: "submit", err: err}
	}
}

// Status bar.

func (m *Model) note(text string) tea.Cmd {
	m.status = text
	m.statusIsErr = false
	return m.fadeCmd()
}

func (m *Model) fail(verb string, err error) tea.Cmd {
	m.status = verb + ": " + err.Error()
	m.statusIsErr = true
	return m.fadeCmd()
}

func (m *Model) fadeCmd() tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
		return statusFadeMsg{seq: seq}
	})
}

func (m *Model) contentWidth() int  { return m.width - sidebarWidth - 3 }
func (m *Model) contentHeight() int { return m.height - 4 }

// View renders header, sidebar, the active page, and the status bar,
// splicing the comment modal over the top when one is open.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.loading {
		return lipgloss.NewStyle().
			Foreground(m.theme.FaintText).
			Render("\n  restoring session…")
	}

	lines := []string{m.renderHeader()}
	sidebar := m.renderSidebar()
	content := m.renderContent()
	for i := 0; i < m.contentHeight(); i++ {
		left, right := "", ""
		if i < len(sidebar) {
			left = sidebar[i]
		}
		if i < len(content) {
			right = content[i]
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			padRight(left, sidebarWidth), " │ ", right))
	}
	lines = append(lines, m.renderStatusBar())
	view := strings.Join(lines, "\n")

	if m.modal != nil {
		overlay, x, y := m.modal.Render(m.width, m.height)
		view = tui.SpliceOverlay(view, overlay, x, y)
	}
	return view
}

func (m *Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(m.theme.AccentColor).
		Bold(true).
		Render(" Procure-to-Pay ")
	badge := ""
	if ident := m.identity(); ident != nil {
		badge = lipgloss.NewStyle().
			Foreground(m.theme.FaintText).
			Render(fmt.Sprintf("%s (%s)", ident.Username, ident.Role.Display()))
	}
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(badge) - 1
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + badge
}

func (m *Model) renderSidebar() []string {
	lines := make([]string, 0, len(m.entries))
	for i, entry := range m.entries {
		style := lipgloss.NewStyle().Foreground(m.theme.NormalText)
		label := "  " + entry.Label
		switch {
		case entry.Path == m.path:
			style = style.Foreground(m.theme.AccentColor).Bold(true)
			label = "▸ " + entry.Label
		case i == m.navCursor && m.focus == FocusSidebar:
			style = style.
				Foreground(m.theme.SelectedForeground).
				Background(m.theme.SelectedBackground)
		}
		lines = append(lines, style.Render(label))
	}
	return lines
}

func (m *Model) renderContent() []string {
	switch {
	case m.path == nav.PathLogin:
		return m.login.Render(m.theme, m.contentWidth())
	case m.path == nav.PathCreateRequest:
		return m.form.Render(m.theme, m.contentWidth())
	case m.path == nav.PathProfile:
		return m.renderProfile()
	case m.focus == FocusDetail:
		return m.detail.Render()
	}

	lines := m.list.Render(m.theme, m.contentWidth(), m.contentHeight()-1, m.focus == FocusList)
	if m.focus == FocusFilter || m.filterText != "" {
		prompt := lipgloss.NewStyle().Foreground(m.theme.AccentColor).Render("/" + m.filterText)
		if m.focus == FocusFilter {
			prompt += lipgloss.NewStyle().Foreground(m.theme.AccentColor).Render("█")
		}
		lines = append(lines, prompt)
	}
	return lines
}

func (m *Model) renderProfile() []string {
	ident := m.identity()
	if ident == nil {
		return nil
	}
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	value := lipgloss.NewStyle().Foreground(m.theme.NormalText)
	lines := []string{
		"",
		faint.Render("  Username   ") + value.Render(ident.Username),
		faint.Render("  Email      ") + value.Render(ident.Email),
		faint.Render("  Role       ") + value.Render(ident.Role.Display()),
	}
	if ident.IsSuperuser {
		lines = append(lines, faint.Render("  Superuser  ")+value.Render("yes"))
	}
	return lines
}

func (m *Model) renderStatusBar() string {
	if m.status != "" {
		color := m.theme.MessageInfo
		if m.statusIsErr {
			color = m.theme.MessageError
		}
		return lipgloss.NewStyle().Foreground(color).Render(" " + m.status)
	}
	help := "tab page  / filter  enter open  R refresh  q quit"
	switch m.path {
	case nav.PathPending:
		help = "a approve  x reject  " + help
	case nav.PathMyRequests:
		help = "s submit  " + help
	}
	return lipgloss.NewStyle().Foreground(m.theme.HelpText).Render(" " + help)
}
