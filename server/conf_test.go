package server

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigBuildsUsableConfig(t *testing.T) {
	uc := DefaultConfig()
	uc.Whitelist.File = filepath.Join(t.TempDir(), "whitelist.toml")

	conf, err := uc.Config(nil)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if conf.Address != ":25565" {
		t.Fatalf("Address = %q", conf.Address)
	}
	if conf.Allower == nil {
		t.Fatalf("expected a whitelist Allower")
	}

	srv, err := conf.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if srv.conf.TickRate != conf.TickRate {
		t.Fatalf("tick rate not carried through")
	}
}

func TestConfigNewRequiresVerifierWhenOnlineModeEnabled(t *testing.T) {
	conf := Config{Address: ":0", OnlineMode: true}
	if _, err := conf.New(); err == nil {
		t.Fatalf("expected an error when OnlineMode is set without a Verifier")
	}
}

func TestConfigNewDefaultsToOfflineVerifier(t *testing.T) {
	conf := Config{Address: ":0"}
	srv, err := conf.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if srv.conf.Verifier == nil {
		t.Fatalf("expected auth.Offline to be installed by default")
	}
}
