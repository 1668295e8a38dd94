package services

import (
	"context"
	"fmt"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/ytakahashi/todo-web/internal/models"
	"google.golang.org/api/iterator"
)

// todoDocument is one todo as stored in Firestore. Position keeps the
// collection order, which Firestore does not preserve on its own.
type todoDocument struct {
	ID         int     `firestore:"id"`
	Task       string  `firestore:"task"`
	Priority   *string `firestore:"priority"`
	Completed  *bool   `firestore:"completed"`
	DueAt      *string `firestore:"dueAt"`
	DueDisplay *string `firestore:"dueDisplay"`
	Position   int     `firestore:"position"`
}

type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(ctx context.Context, projectID, collection string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreStore{
		client:     client,
		collection: collection,
	}, nil
}

func (fs *FirestoreStore) Close() error {
	return fs.client.Close()
}

func (fs *FirestoreStore) Load(ctx context.Context) ([]Todo, error) {
	iter := fs.client.Collection(fs.collection).
		OrderBy("position", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	todos := []Todo{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate todos: %w", err)
		}

		var d todoDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal todo %s: %w", doc.Ref.ID, err)
		}

		rec := models.Record{
			ID:        d.ID,
			Task:      d.Task,
			Priority:  d.Priority,
			Completed: d.Completed,
			DueAt:     d.DueAt,
		}
		todos = append(todos, rec.Backfill())
	}

	return todos, nil
}

// Save writes every todo under its id and removes documents for todos
// that are no longer in the collection.
func (fs *FirestoreStore) Save(ctx context.Context, todos []Todo) error {
	col := fs.client.Collection(fs.collection)

	keep := make(map[string]bool, len(todos))
	for _, t := range todos {
		keep[strconv.Itoa(t.ID)] = true
	}

	var stale []*firestore.DocumentRef
	refs := col.DocumentRefs(ctx)
	for {
		ref, err := refs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list todo documents: %w", err)
		}
		if !keep[ref.ID] {
			stale = append(stale, ref)
		}
	}

	bw := fs.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob

	for i, t := range todos {
		priority := t.Priority
		completed := t.Completed
		doc := todoDocument{
			ID:         t.ID,
			Task:       t.Task,
			Priority:   &priority,
			Completed:  &completed,
			DueAt:      t.DueAt,
			DueDisplay: t.DueDisplay,
			Position:   i,
		}
		job, err := bw.Set(col.Doc(strconv.Itoa(t.ID)), doc)
		if err != nil {
			bw.End()
			return fmt.Errorf("failed to queue todo %d: %w", t.ID, err)
		}
		jobs = append(jobs, job)
	}

	for _, ref := range stale {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return fmt.Errorf("failed to queue delete of %s: %w", ref.ID, err)
		}
		jobs = append(jobs, job)
	}

	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to save todos: %w", err)
		}
	}

	return nil
}
