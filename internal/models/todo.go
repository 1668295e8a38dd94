package models

import (
	"sort"
	"strings"
	"time"
)

const (
	// DueAtLayout is the raw form posted by a datetime-local input.
	DueAtLayout = "2006-01-02T15:04"
	// DueDisplayLayout renders e.g. "19 Feb 2026, 02:00".
	DueDisplayLayout = "02 Jan 2006, 15:04"

	DefaultPriority = "Medium"
)

// Todo represents a todo item
type Todo struct {
	ID         int     `json:"id"`
	Task       string  `json:"task"`
	Priority   string  `json:"priority"`
	Completed  bool    `json:"completed"`
	DueAt      *string `json:"due_at"`
	DueDisplay *string `json:"due_display"`
}

// SetDueAt stores the raw due timestamp and refreshes its display form.
func (t *Todo) SetDueAt(dueAt *string) {
	t.DueAt = dueAt
	t.DueDisplay = ParseDueDisplay(dueAt)
}

// HasDue reports whether the todo carries a non-empty due timestamp.
func (t *Todo) HasDue() bool {
	return t.DueAt != nil && *t.DueAt != ""
}

// ParseDueDisplay returns nil when raw is missing, empty or not in DueAtLayout.
func ParseDueDisplay(raw *string) *string {
	if raw == nil || *raw == "" {
		return nil
	}
	dt, err := time.Parse(DueAtLayout, *raw)
	if err != nil {
		return nil
	}
	display := dt.Format(DueDisplayLayout)
	return &display
}

// Record is the tolerant on-disk shape of a todo. Pointer fields tell
// absent or null values apart so older records can be backfilled.
type Record struct {
	ID        int     `json:"id"`
	Task      string  `json:"task"`
	Priority  *string `json:"priority"`
	Completed *bool   `json:"completed"`
	DueAt     *string `json:"due_at"`
}

// Backfill converts a stored record into a Todo, defaulting missing fields.
// DueDisplay is always derived from DueAt, never trusted from storage.
func (r Record) Backfill() Todo {
	todo := Todo{
		ID:       r.ID,
		Task:     r.Task,
		Priority: DefaultPriority,
	}
	if r.Priority != nil {
		todo.Priority = *r.Priority
	}
	if r.Completed != nil {
		todo.Completed = *r.Completed
	}
	todo.SetDueAt(r.DueAt)
	return todo
}

// NextID returns max(ids)+1, or 1 for an empty collection.
func NextID(todos []Todo) int {
	maxID := 0
	for _, t := range todos {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}

// SortForList returns a copy ordered with dated todos first (earliest due
// first) and undated todos after, keeping their original relative order.
func SortForList(todos []Todo) []Todo {
	sorted := make([]Todo, len(todos))
	copy(sorted, todos)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.HasDue() != b.HasDue() {
			return a.HasDue()
		}
		if !a.HasDue() {
			return false
		}
		return strings.Compare(*a.DueAt, *b.DueAt) < 0
	})
	return sorted
}
