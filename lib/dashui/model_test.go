// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/cache"
	"github.com/Philbert250/Procure-to-Pay/lib/nav"
	"github.com/Philbert250/Procure-to-Pay/lib/session"
	"github.com/Philbert250/Procure-to-Pay/lib/tui"
)

// fakeBackend serves canned data and records mutations, so the model
// can be driven without a server.
type fakeBackend struct {
	requests []api.PurchaseRequest
	users    []api.User
	types    []api.RequestType
	levels   []api.ApprovalLevel

	listErr error

	lastListOptions api.ListOptions
	approved        map[string]string
	rejected        map[string]string
	submitted       []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		approved: make(map[string]string),
		rejected: make(map[string]string),
	}
}

func (f *fakeBackend) ListRequests(_ context.Context, options api.ListOptions) (*api.List[api.PurchaseRequest], error) {
	f.lastListOptions = options
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &api.List[api.PurchaseRequest]{Count: len(f.requests), Results: f.requests}, nil
}

func (f *fakeBackend) GetRequest(_ context.Context, id string) (*api.PurchaseRequest, error) {
	for i := range f.requests {
		if f.requests[i].ID == id {
			return &f.requests[i], nil
		}
	}
	return nil, &api.APIError{StatusCode: http.StatusNotFound, Detail: "not found"}
}

func (f *fakeBackend) CreateRequest(_ context.Context, input api.RequestInput) (*api.PurchaseRequest, error) {
	request := api.PurchaseRequest{ID: "new", Title: input.Title, Status: api.StatusDraft}
	f.requests = append(f.requests, request)
	return &request, nil
}

func (f *fakeBackend) SubmitRequest(_ context.Context, id string) (*api.PurchaseRequest, error) {
	f.submitted = append(f.submitted, id)
	return &api.PurchaseRequest{ID: id, Status: api.StatusSubmitted}, nil
}

func (f *fakeBackend) PendingApprovals(_ context.Context, options api.ListOptions) (*api.List[api.PurchaseRequest], error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &api.List[api.PurchaseRequest]{Count: len(f.requests), Results: f.requests}, nil
}

func (f *fakeBackend) ApproveRequest(_ context.Context, requestID, comment string) (*api.PurchaseRequest, error) {
	f.approved[requestID] = comment
	return &api.PurchaseRequest{ID: requestID, Status: api.StatusApproved}, nil
}

func (f *fakeBackend) RejectRequest(_ context.Context, requestID, comment string) (*api.PurchaseRequest, error) {
	f.rejected[requestID] = comment
	return &api.PurchaseRequest{ID: requestID, Status: api.StatusRejected}, nil
}

func (f *fakeBackend) ApprovalHistory(_ context.Context, requestID string) ([]api.Approval, error) {
	return []api.Approval{{RequestID: requestID, Level: 1, Approver: "bob", Decision: "approved"}}, nil
}

func (f *fakeBackend) ListUsers(_ context.Context, _ api.ListOptions) (*api.List[api.User], error) {
	return &api.List[api.User]{Count: len(f.users), Results: f.users}, nil
}

func (f *fakeBackend) ListRequestTypes(_ context.Context) ([]api.RequestType, error) {
	return f.types, nil
}

func (f *fakeBackend) ListApprovalLevels(_ context.Context) ([]api.ApprovalLevel, error) {
	return f.levels, nil
}

// authServer fakes just the token-issue endpoint, enough to put a
// session store into the authenticated state.
func authServer(t *testing.T, role string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/api/token/" {
			writer.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(writer).Encode(map[string]any{
			"access": "acc", "refresh": "ref",
			"user": map[string]any{
				"id": 1, "username": "alice", "email": "a@example.com", "role": role,
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func authedSession(t *testing.T, role string) *session.Store {
	t.Helper()
	server := authServer(t, role)
	store := session.New(session.Options{
		Path:   filepath.Join(t.TempDir(), "session.json"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL, Tokens: store})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := store.Login(context.Background(), client, "alice", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return store
}

func newTestModel(t *testing.T, role string, backend Backend) *Model {
	t.Helper()
	model := New(Config{
		Session: authedSession(t, role),
		Backend: backend,
		Cache:   cache.New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil))),
	})
	model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	model.Update(restoredMsg{state: session.StateAuthenticated})
	return model
}

// drain runs a command synchronously and feeds the resulting message
// back into the model, following tea.Batch one level deep.
func drain(t *testing.T, model *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			if sub != nil {
				model.Update(sub())
			}
		}
		return
	}
	model.Update(msg)
}

func sampleRequests() []api.PurchaseRequest {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return []api.PurchaseRequest{
		{ID: "r-1", Title: "Standing desks", RequestType: "Furniture", Amount: "1200", Currency: "RWF", Status: api.StatusPending, UpdatedAt: now},
		{ID: "r-2", Title: "Laptops", RequestType: "Equipment", Amount: "5000", Currency: "RWF", Status: api.StatusDraft, UpdatedAt: now},
	}
}

func TestSidebarFollowsRole(t *testing.T) {
	backend := newFakeBackend()

	staff := newTestModel(t, "staff", backend)
	for _, entry := range staff.entries {
		if entry.Path == nav.PathUsers {
			t.Fatalf("staff sidebar contains %s", nav.PathUsers)
		}
	}

	admin := newTestModel(t, "admin", backend)
	found := false
	for _, entry := range admin.entries {
		if entry.Path == nav.PathUsers {
			found = true
		}
	}
	if !found {
		t.Fatalf("admin sidebar missing %s", nav.PathUsers)
	}
}

func TestAnonymousLandsOnLogin(t *testing.T) {
	store := session.New(session.Options{
		Path:   filepath.Join(t.TempDir(), "session.json"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	// No session file: restore lands anonymous without touching the
	// client.
	if _, err := store.Restore(context.Background(), nil); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	model := New(Config{Session: store, Backend: newFakeBackend()})
	model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	model.Update(restoredMsg{state: session.StateAnonymous})

	if model.path != nav.PathLogin {
		t.Errorf("path = %q, want %q", model.path, nav.PathLogin)
	}
	if model.focus != FocusLogin {
		t.Errorf("focus = %v, want FocusLogin", model.focus)
	}
}

func TestNavigateLoadsRows(t *testing.T) {
	backend := newFakeBackend()
	backend.requests = sampleRequests()
	model := newTestModel(t, "approver_level_1", backend)

	drain(t, model, model.navigate(nav.PathAllRequests))

	if model.list.Len() != 2 {
		t.Fatalf("rows = %d, want 2", model.list.Len())
	}
	row, ok := model.list.Current()
	if !ok || row.ID != "r-1" {
		t.Errorf("current row = %+v, want r-1", row)
	}
}

func TestRoleRestrictedPathRedirectsToDashboard(t *testing.T) {
	backend := newFakeBackend()
	model := newTestModel(t, "staff", backend)

	drain(t, model, model.navigate(nav.PathUsers))

	if model.path != nav.PathDashboard {
		t.Errorf("path = %q, want redirect to %q", model.path, nav.PathDashboard)
	}
}

func TestStaleLoadIgnored(t *testing.T) {
	backend := newFakeBackend()
	backend.requests = sampleRequests()
	model := newTestModel(t, "approver_level_1", backend)
	drain(t, model, model.navigate(nav.PathAllRequests))

	model.Update(pageDataMsg{path: nav.PathPending, rows: nil, columns: columnsFor(nav.PathPending)})

	if model.list.Len() != 2 {
		t.Errorf("stale page data replaced the active page's rows")
	}
}

func TestFilterNarrowsRows(t *testing.T) {
	backend := newFakeBackend()
	backend.requests = sampleRequests()
	model := newTestModel(t, "approver_level_1", backend)
	drain(t, model, model.navigate(nav.PathAllRequests))

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if model.focus != FocusFilter {
		t.Fatalf("focus = %v, want FocusFilter", model.focus)
	}
	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("lap")})

	if model.list.Len() != 1 {
		t.Fatalf("filtered rows = %d, want 1", model.list.Len())
	}
	row, _ := model.list.Current()
	if row.ID != "r-2" {
		t.Errorf("filtered row = %s, want r-2", row.ID)
	}

	// Esc clears the filter and returns to the list.
	model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.list.Len() != 2 {
		t.Errorf("rows after clear = %d, want 2", model.list.Len())
	}
	if model.focus != FocusList {
		t.Errorf("focus = %v, want FocusList", model.focus)
	}
}

func TestClearFilterFromList(t *testing.T) {
	backend := newFakeBackend()
	backend.requests = sampleRequests()
	model := newTestModel(t, "approver_level_1", backend)
	drain(t, model, model.navigate(nav.PathAllRequests))

	// Filter, then confirm with enter so the filter stays active while
	// focus returns to the list.
	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("lap")})
	model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if model.focus != FocusList || model.list.Len() != 1 {
		t.Fatalf("focus = %v rows = %d, want filtered list", model.focus, model.list.Len())
	}

	// First esc clears the filter without leaving the list; the next
	// one hands focus to the sidebar.
	model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.list.Len() != 2 || model.focus != FocusList {
		t.Errorf("after clear: rows = %d focus = %v", model.list.Len(), model.focus)
	}
	model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.focus != FocusSidebar {
		t.Errorf("focus = %v, want FocusSidebar", model.focus)
	}
}

func TestApproveWithComment(t *testing.T) {
	backend := newFakeBackend()
	backend.requests = sampleRequests()
	model := newTestModel(t, "approver_level_1", backend)
	drain(t, model, model.navigate(nav.PathPending))

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if model.focus != FocusModal {
		t.Fatalf("focus = %v, want FocusModal", model.focus)
	}
	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("looks fine")})
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	drain(t, model, cmd)

	if got := backend.approved["r-1"]; got != "looks fine" {
		t.Errorf("approve comment = %q, want %q", got, "looks fine")
	}
	if model.modal != nil {
		t.Errorf("modal still open after submit")
	}
}

func TestRejectRequiresComment(t *testing.T) {
	backend := newFakeBackend()
	backend.requests = sampleRequests()
	model := newTestModel(t, "approver_level_2", backend)
	drain(t, model, model.navigate(nav.PathPending))

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	// The returned command is the status fade tick; the validation
	// failure itself is synchronous.
	model.Update(tea.KeyMsg{Type: tea.KeyCtrlD})

	if len(backend.rejected) != 0 {
		t.Errorf("reject went through without a comment")
	}
	if !model.statusIsErr {
		t.Errorf("expected an error status, got %q", model.status)
	}
}

func TestExpiredSessionDropsToLogin(t *testing.T) {
	backend := newFakeBackend()
	backend.requests = sampleRequests()
	model := newTestModel(t, "approver_level_1", backend)
	drain(t, model, model.navigate(nav.PathAllRequests))

	// A load that fails after the store tore the session down must
	// land on the login page, not an error banner.
	model.session.Expire()
	model.Update(pageDataMsg{
		path: nav.PathAllRequests,
		err:  &api.APIError{StatusCode: http.StatusUnauthorized, Detail: "token expired"},
	})

	if model.path != nav.PathLogin {
		t.Errorf("path = %q, want %q", model.path, nav.PathLogin)
	}
}

func TestCachedRowsPaintBeforeLoad(t *testing.T) {
	backend := newFakeBackend()
	backend.requests = sampleRequests()
	model := newTestModel(t, "approver_level_1", backend)
	drain(t, model, model.navigate(nav.PathAllRequests))

	// A second model sharing the cache sees the rows immediately,
	// before its own load lands.
	second := New(Config{
		Session: model.session,
		Backend: backend,
		Cache:   model.cache,
	})
	second.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	second.Update(restoredMsg{state: session.StateAuthenticated})
	second.navigate(nav.PathAllRequests)

	if second.list.Len() != 2 {
		t.Errorf("cached rows = %d, want 2 before the fresh load", second.list.Len())
	}
}

func TestViewRendersWithoutPanic(t *testing.T) {
	backend := newFakeBackend()
	backend.requests = sampleRequests()
	model := newTestModel(t, "admin", backend)
	drain(t, model, model.navigate(nav.PathAllRequests))

	view := model.View()
	if !strings.Contains(view, "Standing desks") {
		t.Errorf("view missing request title")
	}
	if !strings.Contains(view, "alice") {
		t.Errorf("view missing identity badge")
	}
}

func TestDetailPaneRendersRequest(t *testing.T) {
	pane := newDetailPane(tui.DefaultTheme)
	pane.Resize(80, 20)

	request := sampleRequests()[0]
	request.Description = "Replacing the broken ones."
	pane.SetRequest(&request, []api.Approval{
		{RequestID: request.ID, Level: 1, Approver: "bob", Decision: "approved", Comment: "fine"},
	})

	view := strings.Join(pane.Render(), "\n")
	plain := stripANSI(view)
	if !strings.Contains(plain, "Standing desks") {
		t.Errorf("detail missing title")
	}
	if !strings.Contains(plain, "pending approval") {
		t.Errorf("detail missing status, got:\n%s", plain)
	}
	if !strings.Contains(plain, "bob") {
		t.Errorf("detail missing approval history")
	}
}

func TestCreateFormValidates(t *testing.T) {
	form := newRequestForm()
	form.Reset()
	form.fields[formFieldTitle] = "Desks"
	form.fields[formFieldType] = "Furniture"
	form.fields[formFieldAmount] = "-5"

	if _, errText := form.input(); errText == "" {
		t.Errorf("negative amount accepted")
	}

	form.fields[formFieldAmount] = "1200"
	input, errText := form.input()
	if errText != "" {
		t.Fatalf("valid form rejected: %s", errText)
	}
	if input.Currency != "RWF" {
		t.Errorf("currency = %q, want default RWF", input.Currency)
	}
}
