// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeTokenStore is an in-memory TokenStore recording interceptor
// activity.
type fakeTokenStore struct {
	mu           sync.Mutex
	access       string
	refresh      string
	expired      bool
	setAccessLog []string
}

func (s *fakeTokenStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

func (s *fakeTokenStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

func (s *fakeTokenStore) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = token
	s.setAccessLog = append(s.setAccessLog, token)
	return nil
}

func (s *fakeTokenStore) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired = true
	s.access = ""
	s.refresh = ""
}

func newTestClient(t *testing.T, serverURL string, tokens TokenStore) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{BaseURL: serverURL, Tokens: tokens})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("empty base URL", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{}); err == nil {
			t.Fatal("expected error for empty BaseURL")
		}
	})

	t.Run("trailing slash stripped", func(t *testing.T) {
		client, err := NewClient(ClientConfig{BaseURL: "http://example.com/"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client.BaseURL() != "http://example.com" {
			t.Errorf("BaseURL = %q", client.BaseURL())
		}
	})
}

func TestRefreshRetry(t *testing.T) {
	t.Run("401 retried once after successful refresh, caller sees only success", func(t *testing.T) {
		var meCalls, refreshCalls int
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			switch request.URL.Path {
			case "/api/auth/me/":
				meCalls++
				if request.Header.Get("Authorization") != "Bearer fresh-access" {
					writer.WriteHeader(http.StatusUnauthorized)
					json.NewEncoder(writer).Encode(map[string]string{
						"code": "token_not_valid", "detail": "Token is expired",
					})
					return
				}
				json.NewEncoder(writer).Encode(map[string]any{
					"id": 1, "username": "alice", "role": "finance",
				})
			case "/api/token/refresh/":
				refreshCalls++
				var body map[string]string
				json.NewDecoder(request.Body).Decode(&body)
				if body["refresh"] != "good-refresh" {
					writer.WriteHeader(http.StatusUnauthorized)
					json.NewEncoder(writer).Encode(map[string]string{"detail": "bad refresh"})
					return
				}
				json.NewEncoder(writer).Encode(map[string]string{"access": "fresh-access"})
			default:
				t.Errorf("unexpected path %s", request.URL.Path)
				writer.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		tokens := &fakeTokenStore{access: "stale-access", refresh: "good-refresh"}
		client := newTestClient(t, server.URL, tokens)

		payload, err := client.WhoAmI(context.Background())
		if err != nil {
			t.Fatalf("WhoAmI failed: %v", err)
		}
		if payload.Username != "alice" {
			t.Errorf("username = %q", payload.Username)
		}
		if meCalls != 2 {
			t.Errorf("who-am-I called %d times, want 2 (original + one retry)", meCalls)
		}
		if refreshCalls != 1 {
			t.Errorf("refresh called %d times, want exactly 1", refreshCalls)
		}
		if tokens.AccessToken() != "fresh-access" {
			t.Errorf("access token not persisted: %q", tokens.AccessToken())
		}
		if tokens.expired {
			t.Error("session must not expire on successful refresh")
		}
	})

	t.Run("refresh failure tears down session and propagates refresh error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(writer).Encode(map[string]string{"detail": "token dead"})
		}))
		defer server.Close()

		tokens := &fakeTokenStore{access: "stale", refresh: "also-dead"}
		client := newTestClient(t, server.URL, tokens)

		_, err := client.WhoAmI(context.Background())
		if err == nil {
			t.Fatal("expected error")
		}
		if !IsUnauthorized(err) {
			t.Errorf("want 401 refresh error, got %v", err)
		}
		if !tokens.expired {
			t.Error("session must be torn down when refresh fails")
		}
	})

	t.Run("no refresh token tears down session and propagates original 401", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			calls++
			writer.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(writer).Encode(map[string]string{"detail": "expired"})
		}))
		defer server.Close()

		tokens := &fakeTokenStore{access: "stale"}
		client := newTestClient(t, server.URL, tokens)

		_, err := client.WhoAmI(context.Background())
		if !IsUnauthorized(err) {
			t.Errorf("want original 401, got %v", err)
		}
		if calls != 1 {
			t.Errorf("request sent %d times, want 1 (no retry without refresh token)", calls)
		}
		if !tokens.expired {
			t.Error("session must be torn down")
		}
	})

	t.Run("401 on the retry propagates without a second refresh", func(t *testing.T) {
		var meCalls, refreshCalls int
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path == "/api/token/refresh/" {
				refreshCalls++
				json.NewEncoder(writer).Encode(map[string]string{"access": "still-rejected"})
				return
			}
			meCalls++
			writer.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(writer).Encode(map[string]string{"detail": "no"})
		}))
		defer server.Close()

		tokens := &fakeTokenStore{access: "a", refresh: "r"}
		client := newTestClient(t, server.URL, tokens)

		_, err := client.WhoAmI(context.Background())
		if !IsUnauthorized(err) {
			t.Errorf("want 401, got %v", err)
		}
		if meCalls != 2 {
			t.Errorf("who-am-I called %d times, want 2", meCalls)
		}
		if refreshCalls != 1 {
			t.Errorf("refresh called %d times, want 1", refreshCalls)
		}
	})

	t.Run("transport error does not trigger refresh", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close() // connection refused from here on

		tokens := &fakeTokenStore{access: "a", refresh: "r"}
		client := newTestClient(t, server.URL, tokens)

		_, err := client.WhoAmI(context.Background())
		if err == nil {
			t.Fatal("expected transport error")
		}
		if IsUnauthorized(err) {
			t.Error("transport failure must not be reinterpreted as 401")
		}
		if tokens.expired {
			t.Error("transport failure must not tear down the session")
		}
		if len(tokens.setAccessLog) != 0 {
			t.Error("transport failure must not mint tokens")
		}
	})

	t.Run("non-401 errors propagate untouched", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusForbidden)
			json.NewEncoder(writer).Encode(map[string]string{"detail": "not yours"})
		}))
		defer server.Close()

		tokens := &fakeTokenStore{access: "a", refresh: "r"}
		client := newTestClient(t, server.URL, tokens)

		_, err := client.GetRequest(context.Background(), "42")
		if !IsStatus(err, http.StatusForbidden) {
			t.Errorf("want 403, got %v", err)
		}
		if tokens.expired {
			t.Error("403 must not tear down the session")
		}
	})
}

func TestIssueTokens(t *testing.T) {
	t.Run("success returns tokens and canonical user", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/api/token/" {
				t.Errorf("unexpected path %s", request.URL.Path)
			}
			if request.Header.Get("Authorization") != "" {
				t.Error("login must not carry a bearer header")
			}
			var body map[string]string
			json.NewDecoder(request.Body).Decode(&body)
			if body["username"] != "alice" || body["password"] != "s3cret" {
				t.Errorf("unexpected credentials: %v", body)
			}
			json.NewEncoder(writer).Encode(map[string]any{
				"access":  "acc-1",
				"refresh": "ref-1",
				"user":    map[string]any{"id": 7, "username": "alice", "role": "staff"},
			})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, &fakeTokenStore{})
		response, err := client.IssueTokens(context.Background(), "alice", "s3cret")
		if err != nil {
			t.Fatalf("IssueTokens failed: %v", err)
		}
		if response.Access != "acc-1" || response.Refresh != "ref-1" {
			t.Errorf("tokens = %+v", response.TokenPair)
		}
		if response.User.Username != "alice" {
			t.Errorf("user = %+v", response.User)
		}
	})

	t.Run("bad credentials propagate without refresh", func(t *testing.T) {
		var refreshCalled bool
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if strings.Contains(request.URL.Path, "refresh") {
				refreshCalled = true
			}
			writer.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(writer).Encode(map[string]string{"detail": "No active account found"})
		}))
		defer server.Close()

		tokens := &fakeTokenStore{refresh: "existing"}
		client := newTestClient(t, server.URL, tokens)

		_, err := client.IssueTokens(context.Background(), "alice", "wrong")
		if !IsUnauthorized(err) {
			t.Errorf("want 401, got %v", err)
		}
		if refreshCalled {
			t.Error("a login 401 must never trigger the refresh flow")
		}
		if tokens.expired {
			t.Error("failed login must not mutate session state")
		}
	})
}

func TestDecodeError(t *testing.T) {
	t.Run("structured body", func(t *testing.T) {
		apiErr := decodeError(401, []byte(`{"code":"token_not_valid","detail":"Token is expired"}`))
		if apiErr.Code != "token_not_valid" || apiErr.Detail != "Token is expired" {
			t.Errorf("decodeError = %+v", apiErr)
		}
	})

	t.Run("non-JSON body preserved", func(t *testing.T) {
		apiErr := decodeError(502, []byte("<html>Bad Gateway</html>"))
		if apiErr.Detail != "<html>Bad Gateway</html>" {
			t.Errorf("Detail = %q", apiErr.Detail)
		}
	})

	t.Run("empty body falls back to status text", func(t *testing.T) {
		apiErr := decodeError(404, nil)
		if apiErr.Detail != "Not Found" {
			t.Errorf("Detail = %q", apiErr.Detail)
		}
	})
}
