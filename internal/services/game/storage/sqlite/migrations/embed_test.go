package migrations

import (
	"io/fs"
	"sort"
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("migrations are not ordered: %v", names)
	}
	if len(names) != 2 {
		t.Fatalf("migrations = %v, want 2 files", names)
	}
	for _, name := range names {
		content, err := fs.ReadFile(FS, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(content), "-- +migrate Up") {
			t.Fatalf("%s has no up section", name)
		}
	}
}
