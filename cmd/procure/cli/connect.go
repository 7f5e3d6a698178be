// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/Philbert250/Procure-to-Pay/lib/api"
	"github.com/Philbert250/Procure-to-Pay/lib/cache"
	"github.com/Philbert250/Procure-to-Pay/lib/config"
	"github.com/Philbert250/Procure-to-Pay/lib/identity"
	"github.com/Philbert250/Procure-to-Pay/lib/nav"
	"github.com/Philbert250/Procure-to-Pay/lib/session"
)

// Connection holds the per-flag overrides for connecting to the
// procurement server. Embed it in a command's params struct to get the
// --server and --no-cache flags; call [Connection.Connect] in Run.
type Connection struct {
	Server  string
	NoCache bool
}

// AddFlags implements [FlagBinder].
func (c *Connection) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.Server, "server", "", "procurement server URL (default: from config file)")
	flagSet.BoolVar(&c.NoCache, "no-cache", false, "bypass the local response cache")
}

// App bundles the connected client state commands operate on.
type App struct {
	Config  config.Config
	Client  *api.Client
	Session *session.Store
	Cache   *cache.Cache
}

// Identity returns the authenticated identity. Valid only after a
// successful [Connection.Connect].
func (a *App) Identity() identity.Identity {
	ident, _ := a.Session.Identity()
	return ident
}

// Connect loads the config file, restores the saved session, and
// verifies it against the server. Returns a connected App and a
// context bounded by the configured request timeout; the caller must
// defer cancel().
//
// When no session file exists or the saved session is dead (refresh
// token rejected), returns a forbidden error directing the user to
// "procure login". Commands never see a half-authenticated state.
func (c *Connection) Connect(parent context.Context) (*App, context.Context, context.CancelFunc, error) {
	app, err := c.build()
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(parent, app.Config.Timeout())

	state, err := app.Session.Restore(ctx, app.Client)
	if err != nil {
		cancel()
		return nil, nil, nil, Internal("restore session: %w", err)
	}
	if state != session.StateAuthenticated {
		cancel()
		return nil, nil, nil, Forbidden("not logged in — run \"procure login <username>\"")
	}

	return app, ctx, cancel, nil
}

// ConnectAnonymous builds the App without restoring a session. Used by
// login, which establishes the session itself.
func (c *Connection) ConnectAnonymous() (*App, error) {
	return c.build()
}

func (c *Connection) build() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, Validation("load config: %w", err)
	}
	if c.Server != "" {
		cfg.ServerURL = c.Server
	}
	if cfg.ServerURL == "" {
		return nil, Validation("no server URL configured (set server_url in %s or pass --server)", config.FilePath())
	}

	logger := NewCommandLogger()

	var responseCache *cache.Cache
	if !c.NoCache && !cfg.NoCache {
		responseCache = cache.New(cfg.CacheDir, logger)
	}

	store := session.New(session.Options{
		Logger: logger,
		OnExpired: func() {
			fmt.Fprintln(os.Stderr, "session expired — run \"procure login\" to re-authenticate")
		},
	})

	client, err := api.NewClient(api.ClientConfig{
		BaseURL:    cfg.ServerURL,
		Logger:     logger,
		Tokens:     store,
		HTTPClient: &http.Client{Timeout: cfg.Timeout()},
	})
	if err != nil {
		return nil, Internal("create API client: %w", err)
	}

	return &App{Config: *cfg, Client: client, Session: store, Cache: responseCache}, nil
}

// RequireVisible enforces client-side role gating for a command mapped
// to a navigation path. The server is the real authority; this check
// exists to fail fast with a clear message before any network call,
// mirroring what the navigation resolver would hide from the menu.
func (a *App) RequireVisible(path string) error {
	ident := a.Identity()
	if nav.Visible(&ident, path) {
		return nil
	}
	return Forbidden("role %s does not permit this operation", ident.Role)
}

// CallContext derives a child context with the standard per-request
// timeout. Commands that issue several sequential requests use this to
// give each its own deadline.
func CallContext(parent context.Context, cfg config.Config) (context.Context, context.CancelFunc) {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(parent, timeout)
}
