package database

import (
	"strings"
	"testing"
)

func TestMigrationNamesSorted(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("migrationNames failed: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("migrations out of order: %s before %s", names[i-1], names[i])
		}
	}
	for _, name := range names {
		if !strings.HasSuffix(name, ".sql") {
			t.Errorf("unexpected migration file %s", name)
		}
	}
}

func TestTodosMigrationCreatesTable(t *testing.T) {
	content, err := migrationsFS.ReadFile("migrations/001_create_todos.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, col := range []string{"id", "task", "priority", "completed", "due_at", "due_display", "position"} {
		if !strings.Contains(string(content), col) {
			t.Errorf("migration missing column %s", col)
		}
	}
}
