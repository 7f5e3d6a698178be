// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package session is the single source of truth for "who is logged
// in". The store owns the persisted credential triple (access token,
// refresh token, identity), the four-state lifecycle, and nothing
// else: it never refreshes tokens itself (that is the API client's
// job) and never renders anything.
//
// Lifecycle:
//
//	uninitialized --Restore--> loading --verify ok--> authenticated
//	                                  \--failure----> anonymous
//	authenticated --Logout/Expire--> anonymous
//	anonymous --Login ok--> authenticated
//
// uninitialized and loading occur at most once per process; route
// guards must not decide anything while the store is loading.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/identity"
)

// State is the session lifecycle state.
type State int

const (
	// StateUninitialized means Restore has not started yet.
	StateUninitialized State = iota
	// StateLoading means Restore is verifying a persisted session.
	StateLoading
	// StateAuthenticated means an identity is present and verified.
	StateAuthenticated
	// StateAnonymous means there is no session.
	StateAnonymous
)

// String renders the state for logs.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Store.
type Options struct {
	// Path overrides the session file location. Empty uses the
	// well-known path (see FilePath).
	Path string
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
	// OnExpired is invoked after an involuntary teardown (refresh
	// exhausted mid-request). The CLI prints a login hint; the
	// dashboard navigates to its login page. Voluntary Logout does
	// not fire it. May be nil.
	OnExpired func()
}

// Store holds the current session. Safe for concurrent use: the API
// client reads tokens from whatever goroutine issued a request, and
// the dashboard's message loop reads state concurrently with that.
type Store struct {
	mu        sync.Mutex
	state     State
	identity  identity.Identity
	access    string
	refresh   string
	path      string
	logger    *slog.Logger
	onExpired func()
}

// New creates a Store in the uninitialized state. Nothing is read from
// disk until Restore.
func New(options Options) *Store {
	path := options.Path
	if path == "" {
		path = FilePath()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		state:     StateUninitialized,
		path:      path,
		logger:    logger,
		onExpired: options.OnExpired,
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the current identity. ok is false unless the store
// is authenticated.
func (s *Store) Identity() (identity.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.state == StateAuthenticated
}

// Restore loads the persisted session and verifies it against the
// backend's who-am-I endpoint. On success the returned canonical
// identity overwrites the persisted one (the persisted copy may
// predate a role change). On any failure — no file, rejected token
// with no usable refresh, network reject — the persisted triple is
// cleared as a unit and the store lands in StateAnonymous.
//
// Restore itself never refreshes tokens: it issues one who-am-I call
// through client, and client's interceptor owns the refresh attempt.
func (s *Store) Restore(ctx context.Context, client *api.Client) (State, error) {
	s.mu.Lock()
	if s.state != StateUninitialized {
		state := s.state
		s.mu.Unlock()
		return state, fmt.Errorf("session: Restore called in state %s", state)
	}
	s.state = StateLoading

	persisted, err := loadFile(s.path)
	if err != nil || persisted.AccessToken == "" {
		// No session, or an unreadable one. Either way: clean slate.
		s.clearLocked()
		state := s.state
		s.mu.Unlock()
		return state, nil
	}
	// Make the persisted tokens visible to the verify call below.
	s.access = persisted.AccessToken
	s.refresh = persisted.RefreshToken
	s.mu.Unlock()

	payload, err := client.WhoAmI(ctx)
	if err != nil {
		s.mu.Lock()
		s.clearLocked()
		state := s.state
		s.mu.Unlock()
		s.logger.Info("session restore failed, cleared persisted session", "error", err)
		return state, nil
	}

	normalized, err := identity.Normalize(payload)
	if err != nil {
		s.mu.Lock()
		s.clearLocked()
		state := s.state
		s.mu.Unlock()
		return state, fmt.Errorf("session: restored payload rejected: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The who-am-I call may have rotated the access token through the
	// client's refresh path, or expired the session entirely. Only
	// promote to authenticated if the tokens survived.
	if s.state != StateLoading {
		return s.state, nil
	}
	s.identity = normalized
	s.state = StateAuthenticated
	if err := s.persistLocked(); err != nil {
		return s.state, err
	}
	s.logger.Info("session restored", "username", normalized.Username, "role", normalized.Role)
	return s.state, nil
}

// Login exchanges credentials for a session. On success the triple is
// persisted and the store becomes authenticated; on failure the error
// propagates unchanged and no session state is touched.
func (s *Store) Login(ctx context.Context, client *api.Client, username, password string) (identity.Identity, error) {
	response, err := client.IssueTokens(ctx, username, password)
	if err != nil {
		return identity.Identity{}, err
	}

	// Login responses are already canonical; Normalize is idempotent
	// and gives one ingestion path for both endpoints.
	normalized, err := identity.Normalize(response.User)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("session: login payload rejected: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = response.Access
	s.refresh = response.Refresh
	s.identity = normalized
	s.state = StateAuthenticated
	if err := s.persistLocked(); err != nil {
		return identity.Identity{}, err
	}
	s.logger.Info("logged in", "username", normalized.Username, "role", normalized.Role)
	return normalized, nil
}

// Logout clears the session synchronously. Never calls the network,
// never fails, and is idempotent — a second Logout is a no-op in
// StateAnonymous.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// UpdateIdentity overwrites the in-memory and persisted identity
// without touching tokens. Used after profile edits.
func (s *Store) UpdateIdentity(updated identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return fmt.Errorf("session: UpdateIdentity in state %s", s.state)
	}
	s.identity = updated
	return s.persistLocked()
}

// AccessToken implements api.TokenStore.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// RefreshToken implements api.TokenStore.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

// SetAccessToken implements api.TokenStore: the interceptor persists a
// freshly minted access token. The refresh token and identity are
// untouched.
func (s *Store) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = token
	// During Restore the identity is not yet known; the triple is
	// persisted when Restore completes instead.
	if s.state != StateAuthenticated {
		return nil
	}
	return s.persistLocked()
}

// Expire implements api.TokenStore: involuntary teardown after the
// refresh path is exhausted. Like Logout, plus the OnExpired hook.
func (s *Store) Expire() {
	s.mu.Lock()
	hook := s.onExpired
	s.clearLocked()
	s.mu.Unlock()

	s.logger.Warn("session expired")
	if hook != nil {
		hook()
	}
}

// clearLocked wipes memory and disk as a unit. Callers hold s.mu.
func (s *Store) clearLocked() {
	s.access = ""
	s.refresh = ""
	s.identity = identity.Identity{}
	s.state = StateAnonymous
	if err := removeFile(s.path); err != nil {
		// Disk trouble must not resurrect the session; log and move on.
		s.logger.Error("failed to remove session file", "path", s.path, "error", err)
	}
}

// persistLocked writes the current triple to disk. Callers hold s.mu.
func (s *Store) persistLocked() error {
	return saveFile(s.path, fileContents{
		AccessToken:  s.access,
		RefreshToken: s.refresh,
		User:         s.identity,
	})
}
