// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/identity"
)

// newStoreAndClient wires a Store to an api.Client against the given
// test server, the way cmd wiring does it in production.
func newStoreAndClient(t *testing.T, serverURL string, onExpired func()) (*Store, *api.Client) {
	t.Helper()
	store := New(Options{
		Path:      filepath.Join(t.TempDir(), "session.json"),
		OnExpired: onExpired,
	})
	client, err := api.NewClient(api.ClientConfig{BaseURL: serverURL, Tokens: store})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return store, client
}

// authBackend is a minimal fake of the auth surface: issues tokens,
// refreshes them, and answers who-am-I for the current access token.
func authBackend(t *testing.T, validAccess, validRefresh string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/api/token/":
			var body map[string]string
			json.NewDecoder(request.Body).Decode(&body)
			if body["password"] != "correct" {
				writer.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(writer).Encode(map[string]string{"detail": "No active account found"})
				return
			}
			json.NewEncoder(writer).Encode(map[string]any{
				"access":  validAccess,
				"refresh": validRefresh,
				"user": map[string]any{
					"id": 9, "username": body["username"], "email": "u@example.com",
					"role": "approver-level-1",
				},
			})
		case "/api/token/refresh/":
			var body map[string]string
			json.NewDecoder(request.Body).Decode(&body)
			if body["refresh"] != validRefresh {
				writer.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(writer).Encode(map[string]string{"detail": "refresh invalid"})
				return
			}
			json.NewEncoder(writer).Encode(map[string]string{"access": validAccess})
		case "/api/auth/me/":
			if request.Header.Get("Authorization") != "Bearer "+validAccess {
				writer.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(writer).Encode(map[string]string{"detail": "token invalid"})
				return
			}
			// who-am-I payloads are raw: hyphen role, no display.
			json.NewEncoder(writer).Encode(map[string]any{
				"id": 9, "username": "alice", "email": "u@example.com",
				"role": "approver-level-1",
			})
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestLoginRestoreRoundTrip(t *testing.T) {
	server := authBackend(t, "acc", "ref")
	defer server.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	store := New(Options{Path: path})
	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL, Tokens: store})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	loggedIn, err := store.Login(context.Background(), client, "alice", "correct")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.Role != identity.RoleApproverLevel1 {
		t.Errorf("role = %q, want canonical approver_level_1", loggedIn.Role)
	}
	if store.State() != StateAuthenticated {
		t.Errorf("state = %s, want authenticated", store.State())
	}

	// Simulate a reload: a fresh store over the same file.
	reloaded := New(Options{Path: path})
	reloadedClient, err := api.NewClient(api.ClientConfig{BaseURL: server.URL, Tokens: reloaded})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	state, err := reloaded.Restore(context.Background(), reloadedClient)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if state != StateAuthenticated {
		t.Fatalf("restored state = %s, want authenticated", state)
	}
	restored, ok := reloaded.Identity()
	if !ok {
		t.Fatal("restored store has no identity")
	}
	if restored != loggedIn {
		t.Errorf("restored identity %+v != logged-in identity %+v", restored, loggedIn)
	}
}

func TestLoginFailure(t *testing.T) {
	server := authBackend(t, "acc", "ref")
	defer server.Close()

	store, client := newStoreAndClient(t, server.URL, nil)
	_, err := store.Login(context.Background(), client, "alice", "wrong")
	if err == nil {
		t.Fatal("expected login error")
	}
	if !api.IsUnauthorized(err) {
		t.Errorf("login error should propagate verbatim, got %v", err)
	}
	if store.State() != StateUninitialized {
		t.Errorf("failed login must not mutate session state, state = %s", store.State())
	}
}

func TestRestoreWithStaleAccessRefreshes(t *testing.T) {
	server := authBackend(t, "fresh-acc", "ref")
	defer server.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	// Persist a session whose access token the server no longer accepts.
	mustSave(t, path, fileContents{
		AccessToken:  "stale-acc",
		RefreshToken: "ref",
		User:         identity.Identity{ID: "9", Username: "alice", Role: identity.RoleApproverLevel1},
	})

	store := New(Options{Path: path})
	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL, Tokens: store})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	state, err := store.Restore(context.Background(), client)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if state != StateAuthenticated {
		t.Fatalf("state = %s, want authenticated (refresh is the client's job)", state)
	}
	if store.AccessToken() != "fresh-acc" {
		t.Errorf("access token = %q, want refreshed token", store.AccessToken())
	}

	// The refreshed access token must have been persisted with the
	// identity when restore completed.
	persisted := mustLoad(t, path)
	if persisted.AccessToken != "fresh-acc" {
		t.Errorf("persisted access = %q", persisted.AccessToken)
	}
	if persisted.User.Username != "alice" {
		t.Errorf("persisted user = %+v", persisted.User)
	}
}

func TestRestoreDeadSessionTearsDown(t *testing.T) {
	server := authBackend(t, "acc", "ref")
	defer server.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	mustSave(t, path, fileContents{
		AccessToken:  "stale",
		RefreshToken: "also-dead",
		User:         identity.Identity{Username: "alice", Role: identity.RoleStaff},
	})

	expired := false
	store := New(Options{Path: path, OnExpired: func() { expired = true }})
	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL, Tokens: store})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	state, err := store.Restore(context.Background(), client)
	if err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if state != StateAnonymous {
		t.Fatalf("state = %s, want anonymous", state)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("session file must be removed on failed restore")
	}
	_ = expired // hook firing during restore is acceptable either way
}

func TestRestoreWithoutFile(t *testing.T) {
	server := authBackend(t, "acc", "ref")
	defer server.Close()

	store, client := newStoreAndClient(t, server.URL, nil)
	state, err := store.Restore(context.Background(), client)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if state != StateAnonymous {
		t.Errorf("state = %s, want anonymous", state)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	server := authBackend(t, "acc", "ref")
	defer server.Close()

	store, client := newStoreAndClient(t, server.URL, nil)
	if _, err := store.Login(context.Background(), client, "alice", "correct"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	store.Logout()
	if store.State() != StateAnonymous {
		t.Fatalf("state = %s after logout", store.State())
	}
	// Second logout: still anonymous, no panic, no error path.
	store.Logout()
	if store.State() != StateAnonymous {
		t.Fatalf("state = %s after second logout", store.State())
	}
	if store.AccessToken() != "" || store.RefreshToken() != "" {
		t.Error("tokens must be cleared")
	}
}

func TestExpireFiresHookAndClears(t *testing.T) {
	expired := false
	store := New(Options{
		Path:      filepath.Join(t.TempDir(), "session.json"),
		OnExpired: func() { expired = true },
	})
	store.Expire()
	if !expired {
		t.Error("Expire must fire the OnExpired hook")
	}
	if store.State() != StateAnonymous {
		t.Errorf("state = %s", store.State())
	}
}

func TestUpdateIdentityKeepsTokens(t *testing.T) {
	server := authBackend(t, "acc", "ref")
	defer server.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	store := New(Options{Path: path})
	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL, Tokens: store})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := store.Login(context.Background(), client, "alice", "correct"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	current, _ := store.Identity()
	current.Email = "new@example.com"
	if err := store.UpdateIdentity(current); err != nil {
		t.Fatalf("UpdateIdentity failed: %v", err)
	}

	persisted := mustLoad(t, path)
	if persisted.User.Email != "new@example.com" {
		t.Errorf("persisted email = %q", persisted.User.Email)
	}
	if persisted.AccessToken != "acc" || persisted.RefreshToken != "ref" {
		t.Error("profile update must not touch tokens")
	}
}

func mustSave(t *testing.T, path string, contents fileContents) {
	t.Helper()
	if err := saveFile(path, contents); err != nil {
		t.Fatalf("saveFile failed: %v", err)
	}
}

func mustLoad(t *testing.T, path string) fileContents {
	t.Helper()
	contents, err := loadFile(path)
	if err != nil {
		t.Fatalf("loadFile failed: %v", err)
	}
	return contents
}
