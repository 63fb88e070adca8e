package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindLatestMigrationVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000012_hole_index.up.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "000099_dir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if got := findLatestMigrationVersion(dir); got != 12 {
		t.Errorf("Expected latest version 12, got %d", got)
	}
}

func TestFindLatestMigrationVersionMissingDir(t *testing.T) {
	if got := findLatestMigrationVersion(filepath.Join(t.TempDir(), "nope")); got != 0 {
		t.Errorf("Expected 0 for a missing directory, got %d", got)
	}
}

func TestRunMigrationsRequiresURL(t *testing.T) {
	if err := RunMigrations(""); err == nil {
		t.Error("Expected an error for an empty database URL")
	}
}
