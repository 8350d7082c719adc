// ABOUTME: Tests for the durable session store
// ABOUTME: Covers roundtrip, missing file, corrupt file, and clearing

package token

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Save("access-tok", "refresh-tok", "FINANCE"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	access, refresh, department, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if access != "access-tok" {
		t.Errorf("expected access-tok, got %s", access)
	}
	if refresh != "refresh-tok" {
		t.Errorf("expected refresh-tok, got %s", refresh)
	}
	if department != "FINANCE" {
		t.Errorf("expected FINANCE, got %s", department)
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := NewStore(t.TempDir())

	access, refresh, department, err := s.Load()
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if access != "" || refresh != "" || department != "" {
		t.Error("expected empty session for missing file")
	}
}

func TestStore_LoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	access, _, _, err := s.Load()
	if err != nil {
		t.Fatalf("expected no error for corrupt file, got %v", err)
	}
	if access != "" {
		t.Error("expected empty session for corrupt file")
	}
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Save("a", "r", "SCM"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	access, _, _, _ := s.Load()
	if access != "" {
		t.Error("expected empty session after clear")
	}

	// Clearing again is idempotent
	if err := s.Clear(); err != nil {
		t.Errorf("expected idempotent clear, got %v", err)
	}
}

func TestStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	if err := s.Save("a", "r", "SCM"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}
