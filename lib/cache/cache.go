// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache is the client-side response cache. List and detail
// payloads are stored on disk keyed by collection and request key, so
// the dashboard can paint instantly from the last known data while a
// fresh fetch is in flight.
//
// Staleness is resolved by invalidation, not expiry: whichever
// component performs a mutation invalidates the collections that
// mutation touched (approving a request invalidates "requests" and
// "approvals"), and the next reader fetches fresh. Entries carry their
// save time so display code can label stale data, but nothing is
// evicted on a clock.
//
// Entries are CBOR-encoded; payloads over a size threshold are
// zstd-compressed, tagged by a leading format byte.
package cache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// Format bytes prefixed to every entry file.
const (
	formatRaw  byte = 0
	formatZstd byte = 1
)

// compressThreshold is the payload size above which entries are
// zstd-compressed. Small entries (single request detail) are not worth
// the CPU; large list pages compress 3-5x.
const compressThreshold = 4 << 10

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("cache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("cache: zstd decoder initialization failed: " + err.Error())
	}
}

// entry is the on-disk record: the CBOR-encoded payload plus the time
// it was saved.
type entry struct {
	SavedAt time.Time       `cbor:"saved_at"`
	Payload cbor.RawMessage `cbor:"payload"`
}

// Cache stores response payloads under a directory. A nil *Cache is
// valid and does nothing — commands running with --no-cache pass nil
// and every Get misses.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// DefaultDir returns the cache location under the user cache dir.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "procure-cache")
	}
	return filepath.Join(base, "procure")
}

// New creates a cache rooted at dir (DefaultDir when empty).
func New(dir string, logger *slog.Logger) *Cache {
	if dir == "" {
		dir = DefaultDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{dir: dir, logger: logger}
}

// Put stores value under (collection, key). Cache writes are best
// effort: failures are logged, never returned — a broken cache must
// not break a successful API call.
func (c *Cache) Put(collection, key string, value any) {
	if c == nil {
		return
	}
	payload, err := cbor.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", "collection", collection, "error", err)
		return
	}
	record, err := cbor.Marshal(entry{SavedAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		c.logger.Warn("cache encode failed", "collection", collection, "error", err)
		return
	}

	data := make([]byte, 1, len(record)+1)
	if len(record) > compressThreshold {
		data[0] = formatZstd
		data = zstdEncoder.EncodeAll(record, data)
	} else {
		data[0] = formatRaw
		data = append(data, record...)
	}

	path := c.entryPath(collection, key)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		c.logger.Warn("cache dir create failed", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		c.logger.Warn("cache write failed", "path", path, "error", err)
	}
}

// Get loads the entry under (collection, key) into out. Returns the
// save time and true on a hit. Unreadable or corrupt entries count as
// misses and are removed.
func (c *Cache) Get(collection, key string, out any) (time.Time, bool) {
	if c == nil {
		return time.Time{}, false
	}
	path := c.entryPath(collection, key)
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, false
	}

	record, err := c.decodeRecord(data)
	if err != nil {
		c.logger.Warn("cache entry corrupt, removing", "path", path, "error", err)
		os.Remove(path)
		return time.Time{}, false
	}

	var stored entry
	if err := cbor.Unmarshal(record, &stored); err != nil {
		os.Remove(path)
		return time.Time{}, false
	}
	if err := cbor.Unmarshal(stored.Payload, out); err != nil {
		os.Remove(path)
		return time.Time{}, false
	}
	return stored.SavedAt, true
}

func (c *Cache) decodeRecord(data []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, errors.New("empty entry")
	}
	switch data[0] {
	case formatRaw:
		return data[1:], nil
	case formatZstd:
		return zstdDecoder.DecodeAll(data[1:], nil)
	default:
		return nil, fmt.Errorf("unknown format byte %d", data[0])
	}
}

// Invalidate removes every entry in a collection. Called by mutation
// paths; a miss on the next read forces a fresh fetch.
func (c *Cache) Invalidate(collections ...string) {
	if c == nil {
		return
	}
	for _, collection := range collections {
		path := filepath.Join(c.dir, sanitize(collection))
		if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("cache invalidation failed", "collection", collection, "error", err)
		}
	}
}

// Clear removes the entire cache. Used by logout — cached lists are
// role-scoped, and the next login may be someone else.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	if err := os.RemoveAll(c.dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("cache clear failed", "dir", c.dir, "error", err)
	}
}

// entryPath hashes the key so arbitrary query strings become fixed
// length filenames.
func (c *Cache) entryPath(collection, key string) string {
	sum := blake3.Sum256([]byte(key))
	return filepath.Join(c.dir, sanitize(collection), hex.EncodeToString(sum[:16])+".cbor")
}

// sanitize keeps collection names path-safe.
func sanitize(name string) string {
	cleaned := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			cleaned = append(cleaned, r)
		default:
			cleaned = append(cleaned, '_')
		}
	}
	return string(cleaned)
}
