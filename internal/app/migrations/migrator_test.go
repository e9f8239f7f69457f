package migrations

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestVersionOf(t *testing.T) {
	tests := map[string]string{
		"001_init.sql":                  "001",
		"migrations/002_add_index.sql":  "002",
		"/abs/path/010_profiles_v2.sql": "010",
	}
	for in, want := range tests {
		if got := VersionOf(in); got != want {
			t.Errorf("VersionOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoad_SortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql":        {Data: []byte("SELECT 2;")},
		"001_a.sql":        {Data: []byte("SELECT 1;")},
		"README.md":        {Data: []byte("docs")},
		"003_dir.sql/x":    {Data: []byte("nested")},
		"nested/004_c.sql": {Data: []byte("SELECT 4;")},
	}

	all, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(all) != 2 || all[0].Name != "001_a.sql" || all[1].Name != "002_b.sql" {
		t.Fatalf("Load() = %+v", all)
	}
	if all[0].Version != "001" || all[0].SQL != "SELECT 1;" {
		t.Errorf("first migration = %+v", all[0])
	}
}

func TestLoad_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := Load(fsys); err == nil || !strings.Contains(err.Error(), "share version 001") {
		t.Errorf("Load() error = %v, want duplicate version", err)
	}
}

func TestPending(t *testing.T) {
	all := []Migration{{Version: "001"}, {Version: "002"}, {Version: "003"}}
	got := Pending(all, map[string]bool{"001": true, "003": true})
	if len(got) != 1 || got[0].Version != "002" {
		t.Errorf("Pending() = %+v", got)
	}
	if len(Pending(all, nil)) != 3 {
		t.Error("nothing applied means everything is pending")
	}
}

func TestRepositoryMigrationsLoad(t *testing.T) {
	all, err := Load(os.DirFS(filepath.Join("..", "..", "..", "migrations")))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(all) == 0 || all[0].Version != "001" {
		t.Errorf("Load() = %+v", all)
	}
}

func TestInitMigrationDeclaresConstraints(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_init.sql"))
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	for _, name := range []string{"users_email_lower_key", "users_provider_key", "job_applications_job_id_user_id_key"} {
		if !strings.Contains(string(content), name) {
			t.Errorf("init migration is missing constraint %s", name)
		}
	}
}
