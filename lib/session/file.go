// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Philbert250/Procure-to-Pay/lib/identity"
)

// fileContents is the on-disk session: the same access/refresh/user
// triple the browser client keeps in localStorage, held in one file so
// the three keys are written and removed atomically as a set — there
// is never an identity on disk without its tokens or vice versa.
type fileContents struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	User         identity.Identity `json:"user"`
}

// FilePath returns the session file location. Checks
// PROCURE_SESSION_FILE first, then XDG_CONFIG_HOME, then
// ~/.config/procure/session.json.
func FilePath() string {
	if envPath := os.Getenv("PROCURE_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			// Fallback — this should rarely happen.
			return filepath.Join(os.TempDir(), "procure-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "procure", "session.json")
}

// SavedIdentity reads the identity from the persisted session without
// touching the network or the store's state machine. Used by commands
// that only display who is logged in locally.
func SavedIdentity() (identity.Identity, error) {
	contents, err := loadFile(FilePath())
	if err != nil {
		return identity.Identity{}, err
	}
	if contents.AccessToken == "" {
		return identity.Identity{}, errors.New("session file has no access token")
	}
	return contents.User, nil
}

// loadFile reads the persisted session. A missing file is not an
// error distinct from any other load failure from the store's point
// of view — both mean "no usable session".
func loadFile(path string) (fileContents, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileContents{}, err
	}
	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return fileContents{}, fmt.Errorf("parsing session file %s: %w", path, err)
	}
	return contents, nil
}

// saveFile writes the session with owner-only permissions: the file
// contains bearer tokens. Parent directory is created 0700.
func saveFile(path string, contents fileContents) error {
	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing session file %s: %w", path, err)
	}
	return nil
}

// removeFile deletes the session file. Absence is success.
func removeFile(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
