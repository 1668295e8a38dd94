package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/ytakahashi/todo-web/internal/models"
)

// FileStore keeps the collection as one indented JSON array on disk.
// Every Save rewrites the whole file; there is no locking.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Load(_ context.Context) ([]Todo, error) {
	b, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Todo{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", fs.path, err)
	}

	var records []models.Record
	if err := json.Unmarshal(b, &records); err != nil {
		// Malformed file reads as an empty collection.
		log.Warn("ignoring malformed todo file", "path", fs.path, "err", err)
		return []Todo{}, nil
	}

	todos := make([]Todo, 0, len(records))
	for _, r := range records {
		todos = append(todos, r.Backfill())
	}
	return todos, nil
}

func (fs *FileStore) Save(_ context.Context, todos []Todo) error {
	if todos == nil {
		todos = []Todo{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(todos); err != nil {
		return fmt.Errorf("failed to encode todos: %w", err)
	}

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	if err := os.WriteFile(fs.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", fs.path, err)
	}
	return nil
}
