package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStoreLoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "todos.json"))

	todos, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(todos) != 0 {
		t.Errorf("expected empty collection, got %d todos", len(todos))
	}
}

func TestFileStoreLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "this is not json"},
		{"truncated", `[{"id": 1, "task": "a"`},
		{"object instead of array", `{"id": 1}`},
		{"wrong field type", `[{"id": "one", "task": "a"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "todos.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}

			todos, err := NewFileStore(path).Load(context.Background())
			if err != nil {
				t.Fatalf("Load should swallow parse errors, got %v", err)
			}
			if len(todos) != 0 {
				t.Errorf("expected empty collection, got %+v", todos)
			}
		})
	}
}

func TestFileStoreBackfillsOldRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	old := `[
  {"id": 1, "task": "legacy"},
  {"id": 2, "task": "dated", "due_at": "2026-02-19T02:00", "due_display": "stale"},
  {"id": 3, "task": "done", "priority": "Low", "completed": true, "due_at": null}
]`
	if err := os.WriteFile(path, []byte(old), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	todos, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(todos) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(todos))
	}

	if todos[0].Priority != "Medium" || todos[0].Completed || todos[0].DueAt != nil || todos[0].DueDisplay != nil {
		t.Errorf("legacy record not backfilled: %+v", todos[0])
	}
	if todos[1].DueDisplay == nil || *todos[1].DueDisplay != "19 Feb 2026, 02:00" {
		t.Errorf("due_display should be derived from due_at, got %v", todos[1].DueDisplay)
	}
	if todos[2].Priority != "Low" || !todos[2].Completed {
		t.Errorf("stored fields should be kept: %+v", todos[2])
	}
}

func TestFileStoreSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	store := NewFileStore(path)

	due := "2026-02-19T02:00"
	todo := Todo{ID: 1, Task: "Beli <kopi> & roti ☕", Priority: "High"}
	todo.SetDueAt(&due)

	if err := store.Save(context.Background(), []Todo{todo}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	content := string(b)

	for _, want := range []string{
		"\n  {\n    \"id\": 1,",
		`"task": "Beli <kopi> & roti ☕"`,
		`"due_display": "19 Feb 2026, 02:00"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("saved file missing %q:\n%s", want, content)
		}
	}

	order := []string{`"id"`, `"task"`, `"priority"`, `"completed"`, `"due_at"`, `"due_display"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(content, key)
		if idx <= last {
			t.Errorf("field %s out of order", key)
		}
		last = idx
	}
}

func TestFileStoreSaveEmptyWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	if err := NewFileStore(path).Save(context.Background(), nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if strings.TrimSpace(string(b)) != "[]" {
		t.Errorf("expected empty array, got %q", string(b))
	}
}

func TestFileStoreRoundTripIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	old := `[{"id": 4, "task": "legacy"}, {"id": 2, "task": "x", "due_at": "bad date"}]`
	if err := os.WriteFile(path, []byte(old), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewFileStore(path)
	ctx := context.Background()

	roundTrip := func() string {
		todos, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if err := store.Save(ctx, todos); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		return string(b)
	}

	first := roundTrip()
	second := roundTrip()
	if first != second {
		t.Errorf("round trip not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
	if !strings.Contains(first, `"due_at": "bad date"`) || !strings.Contains(first, `"due_display": null`) {
		t.Errorf("malformed due date should be kept raw with null display:\n%s", first)
	}
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "todos.json")
	if err := NewFileStore(path).Save(context.Background(), []Todo{{ID: 1, Task: "a", Priority: "Medium"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %v", err)
	}
}
