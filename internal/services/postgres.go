package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ytakahashi/todo-web/internal/database"
	"github.com/ytakahashi/todo-web/internal/models"
)

type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context) ([]Todo, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, task, priority, completed, due_at
		 FROM todos ORDER BY position ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	todos := []Todo{}
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(&rec.ID, &rec.Task, &rec.Priority, &rec.Completed, &rec.DueAt); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, rec.Backfill())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

// Save replaces the table contents with todos inside one transaction.
func (s *PostgresStore) Save(ctx context.Context, todos []Todo) error {
	return pgx.BeginFunc(ctx, s.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM todos`); err != nil {
			return fmt.Errorf("failed to clear todos: %w", err)
		}

		for i, t := range todos {
			_, err := tx.Exec(ctx,
				`INSERT INTO todos (id, task, priority, completed, due_at, due_display, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				t.ID, t.Task, t.Priority, t.Completed, t.DueAt, t.DueDisplay, i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert todo %d: %w", t.ID, err)
			}
		}
		return nil
	})
}
