package store

import (
	"slices"

	"github.com/ytakahashi/todo-sync/internal/models"
)

// applyChanges folds incremental snapshot changes into todos. Added todos
// are prepended unless their ID is already present, modified todos are
// replaced in place, removed todos are dropped. Nothing is re-sorted.
func applyChanges(todos []models.Todo, changes []models.Change) []models.Todo {
	for _, ch := range changes {
		switch ch.Kind {
		case models.ChangeAdded:
			if indexOf(todos, ch.Todo.ID) == -1 {
				todos = append([]models.Todo{ch.Todo.Clone()}, todos...)
			}
		case models.ChangeModified:
			if i := indexOf(todos, ch.Todo.ID); i != -1 {
				todos[i] = ch.Todo.Clone()
			}
		case models.ChangeRemoved:
			todos = slices.DeleteFunc(todos, func(t models.Todo) bool {
				return t.ID == ch.Todo.ID
			})
		}
	}
	return todos
}

func indexOf(todos []models.Todo, id string) int {
	return slices.IndexFunc(todos, func(t models.Todo) bool {
		return t.ID == id
	})
}

func cloneTodos(todos []models.Todo) []models.Todo {
	out := make([]models.Todo, len(todos))
	for i, t := range todos {
		out[i] = t.Clone()
	}
	return out
}
