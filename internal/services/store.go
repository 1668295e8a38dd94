package services

import (
	"context"

	"github.com/ytakahashi/todo-web/internal/models"
)

type Todo = models.Todo

// Store loads and saves the whole todo collection. Handlers only ever see
// this interface, so the backing storage can be swapped at startup.
type Store interface {
	Load(ctx context.Context) ([]Todo, error)
	Save(ctx context.Context, todos []Todo) error
}
