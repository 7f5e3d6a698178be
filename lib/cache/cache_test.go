// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type listPage struct {
	Count   int      `cbor:"count"`
	Results []string `cbor:"results"`
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return New(t.TempDir(), slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestPutGetRoundTrip(t *testing.T) {
	c := newTestCache(t)

	in := listPage{Count: 2, Results: []string{"alpha", "beta"}}
	c.Put("requests", "/api/requests/?page=1", in)

	var out listPage
	savedAt, ok := c.Get("requests", "/api/requests/?page=1", &out)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if savedAt.IsZero() {
		t.Error("expected non-zero save time")
	}
	if out.Count != 2 || len(out.Results) != 2 || out.Results[0] != "alpha" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestGetMissesOnUnknownKey(t *testing.T) {
	c := newTestCache(t)
	var out listPage
	if _, ok := c.Get("requests", "/api/requests/?page=9", &out); ok {
		t.Error("expected miss for key never stored")
	}
}

func TestLargeEntryCompressed(t *testing.T) {
	c := newTestCache(t)

	big := listPage{Count: 1, Results: []string{strings.Repeat("office chairs and standing desks ", 2000)}}
	c.Put("requests", "big", big)

	entries, err := os.ReadDir(filepath.Join(c.dir, "requests"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one entry file: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(c.dir, "requests", entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != formatZstd {
		t.Errorf("expected zstd format byte, got %d", data[0])
	}
	if len(data) >= len(big.Results[0]) {
		t.Errorf("entry not actually compressed: %d bytes", len(data))
	}

	var out listPage
	if _, ok := c.Get("requests", "big", &out); !ok {
		t.Fatal("expected hit on compressed entry")
	}
	if out.Results[0] != big.Results[0] {
		t.Error("compressed round trip mismatch")
	}
}

func TestInvalidateRemovesCollection(t *testing.T) {
	c := newTestCache(t)
	c.Put("requests", "a", listPage{Count: 1})
	c.Put("approvals", "b", listPage{Count: 1})

	c.Invalidate("requests")

	var out listPage
	if _, ok := c.Get("requests", "a", &out); ok {
		t.Error("invalidated collection still hit")
	}
	if _, ok := c.Get("approvals", "b", &out); !ok {
		t.Error("unrelated collection was invalidated")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	c := newTestCache(t)
	c.Put("requests", "a", listPage{Count: 1})
	c.Put("users", "b", listPage{Count: 1})

	c.Clear()

	var out listPage
	if _, ok := c.Get("requests", "a", &out); ok {
		t.Error("expected miss after clear")
	}
	if _, ok := c.Get("users", "b", &out); ok {
		t.Error("expected miss after clear")
	}
}

func TestCorruptEntryIsMissAndRemoved(t *testing.T) {
	c := newTestCache(t)
	c.Put("requests", "a", listPage{Count: 1})

	path := c.entryPath("requests", "a")
	if err := os.WriteFile(path, []byte{formatZstd, 0xff, 0xff}, 0600); err != nil {
		t.Fatal(err)
	}

	var out listPage
	if _, ok := c.Get("requests", "a", &out); ok {
		t.Error("expected miss for corrupt entry")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestNilCacheIsInert(t *testing.T) {
	var c *Cache
	c.Put("requests", "a", listPage{Count: 1})
	var out listPage
	if _, ok := c.Get("requests", "a", &out); ok {
		t.Error("nil cache returned a hit")
	}
	c.Invalidate("requests")
	c.Clear()
}
