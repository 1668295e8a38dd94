package services

import (
	"context"
	"strings"

	"github.com/ytakahashi/todo-web/internal/models"
)

// TodoService implements the todo operations. Each one loads the whole
// collection, mutates it in memory and saves it back.
type TodoService struct {
	store Store
}

func NewTodoService(store Store) *TodoService {
	return &TodoService{store: store}
}

// List returns the collection ordered for display.
func (s *TodoService) List(ctx context.Context) ([]Todo, error) {
	todos, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return models.SortForList(todos), nil
}

// Add appends a new todo. It returns nil without touching the store when
// the trimmed task is empty.
func (s *TodoService) Add(ctx context.Context, task, priority string, dueAt *string) (*Todo, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, nil
	}

	todos, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	todo := Todo{
		ID:       models.NextID(todos),
		Task:     task,
		Priority: priority,
	}
	todo.SetDueAt(dueAt)
	todos = append(todos, todo)

	if err := s.store.Save(ctx, todos); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Toggle flips completion of the first todo with id. The collection is
// saved even when no todo matches.
func (s *TodoService) Toggle(ctx context.Context, id int) (*Todo, error) {
	todos, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	var toggled *Todo
	for i := range todos {
		if todos[i].ID == id {
			todos[i].Completed = !todos[i].Completed
			t := todos[i]
			toggled = &t
			break
		}
	}

	if err := s.store.Save(ctx, todos); err != nil {
		return nil, err
	}
	return toggled, nil
}

// Edit overwrites task, priority and due date of the first todo with id.
// An empty task is a no-op.
func (s *TodoService) Edit(ctx context.Context, id int, task, priority string, dueAt *string) (*Todo, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, nil
	}

	todos, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	var edited *Todo
	for i := range todos {
		if todos[i].ID == id {
			todos[i].Task = task
			todos[i].Priority = priority
			todos[i].SetDueAt(dueAt)
			t := todos[i]
			edited = &t
			break
		}
	}

	if err := s.store.Save(ctx, todos); err != nil {
		return nil, err
	}
	return edited, nil
}

// Delete removes every todo with id and reports how many were removed.
func (s *TodoService) Delete(ctx context.Context, id int) (int, error) {
	todos, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}

	kept := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if t.ID != id {
			kept = append(kept, t)
		}
	}

	if err := s.store.Save(ctx, kept); err != nil {
		return 0, err
	}
	return len(todos) - len(kept), nil
}
