package server

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestWhitelistAddRemovePersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitelist.toml")
	wl, err := LoadWhitelist(path)
	if err != nil {
		t.Fatalf("LoadWhitelist: %v", err)
	}
	wl.SetEnabled(true)

	added, err := wl.Add("Steve")
	if err != nil || !added {
		t.Fatalf("Add: added=%v err=%v", added, err)
	}
	if added, _ := wl.Add("Steve"); added {
		t.Fatalf("Add should report false for an existing entry")
	}

	reloaded, err := LoadWhitelist(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Players(); len(got) != 1 || got[0] != "Steve" {
		t.Fatalf("reloaded players = %v", got)
	}

	removed, err := wl.Remove("steve")
	if err != nil || !removed {
		t.Fatalf("Remove: removed=%v err=%v", removed, err)
	}
	if len(wl.Players()) != 0 {
		t.Fatalf("expected empty whitelist after removal")
	}
}

func TestWhitelistAllow(t *testing.T) {
	wl, err := LoadWhitelist(filepath.Join(t.TempDir(), "whitelist.toml"))
	if err != nil {
		t.Fatalf("LoadWhitelist: %v", err)
	}

	if _, ok := wl.Allow(nil, "Alex", uuid.New()); !ok {
		t.Fatalf("disabled whitelist must allow everyone")
	}

	wl.SetEnabled(true)
	if _, ok := wl.Allow(nil, "Alex", uuid.New()); ok {
		t.Fatalf("enabled whitelist must reject a name it doesn't contain")
	}
	if _, err := wl.Add("Alex"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, ok := wl.Allow(nil, "alex", uuid.New()); !ok {
		t.Fatalf("whitelist check must be case-insensitive")
	}
}
