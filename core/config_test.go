package core

import (
	"testing"
)

func TestRepoConfigRoundTrip(t *testing.T) {
	repo := newTestRepo(t, false)

	if err := repo.SetConfig("remote.origin", "https://relic.example/alice/project"); err != nil {
		t.Fatalf("Failed to set config value: %v", err)
	}

	got, err := repo.GetConfig("remote.origin")
	if err != nil {
		t.Fatalf("Failed to get config value: %v", err)
	}
	if got != "https://relic.example/alice/project" {
		t.Errorf("Config value = %q, want the stored URL", got)
	}

	// The value must survive a fresh open, and the bare flag written at
	// creation time must not be clobbered by the save.
	reopened, err := OpenRepository(repo.Root)
	if err != nil {
		t.Fatalf("Failed to reopen repository: %v", err)
	}
	got, err = reopened.GetConfig("remote.origin")
	if err != nil {
		t.Fatalf("Failed to get config value after reopen: %v", err)
	}
	if got != "https://relic.example/alice/project" {
		t.Errorf("Persisted config value = %q, want the stored URL", got)
	}
	bare, err := reopened.IsBare()
	if err != nil {
		t.Fatalf("Failed to read bare flag: %v", err)
	}
	if bare {
		t.Error("Non-bare repository reported as bare after config save")
	}
}

func TestRepoConfigMissingValue(t *testing.T) {
	repo := newTestRepo(t, true)

	got, err := repo.GetConfig("remote.origin")
	if err != nil {
		t.Fatalf("Reading an unset key should not fail: %v", err)
	}
	if got != "" {
		t.Errorf("Unset key = %q, want empty", got)
	}

	if _, err := repo.GetConfig("nodot"); err == nil {
		t.Error("Key without a section should be rejected")
	}
}
