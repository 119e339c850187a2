package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/ytakahashi/todo-sync/internal/models"
)

// ErrNotFound is returned when updating a missing document.
var ErrNotFound = errors.New("document not found")

// MemoryService is an in-process stand-in for FirestoreService with the same
// live query behavior. Nothing is persisted.
type MemoryService struct {
	mu         sync.Mutex
	todos      map[string]models.Todo
	categories map[string]models.Category
	tags       map[string]models.Tag
	watches    map[*memoryWatch]struct{}
}

func NewMemoryService() *MemoryService {
	return &MemoryService{
		todos:      make(map[string]models.Todo),
		categories: make(map[string]models.Category),
		tags:       make(map[string]models.Tag),
		watches:    make(map[*memoryWatch]struct{}),
	}
}

type memoryWatch struct {
	svc    *MemoryService
	userID string
	queue  chan models.Snapshot
	done   chan struct{}
	once   sync.Once
}

func (w *memoryWatch) Stop() {
	w.once.Do(func() {
		close(w.done)
		w.svc.mu.Lock()
		delete(w.svc.watches, w)
		w.svc.mu.Unlock()
	})
}

func (w *memoryWatch) run(onSnapshot func(models.Snapshot)) {
	for {
		select {
		case <-w.done:
			return
		case snap := <-w.queue:
			select {
			case <-w.done:
				return
			default:
			}
			onSnapshot(snap)
		}
	}
}

func (ms *MemoryService) WatchTodos(ctx context.Context, userID string, onSnapshot func(models.Snapshot), onError func(error)) (models.Subscription, error) {
	if userID == "" {
		return nil, errors.New("failed to watch todos: empty user id")
	}

	w := &memoryWatch{
		svc:    ms,
		userID: userID,
		queue:  make(chan models.Snapshot, 64),
		done:   make(chan struct{}),
	}

	ms.mu.Lock()
	ms.watches[w] = struct{}{}
	initial := ms.resultSet(userID)
	changes := make([]models.Change, 0, len(initial))
	for _, t := range initial {
		changes = append(changes, models.Change{Kind: models.ChangeAdded, Todo: t})
	}
	w.queue <- models.Snapshot{Todos: initial, Changes: changes}
	ms.mu.Unlock()

	go w.run(onSnapshot)
	return w, nil
}

// resultSet must be called with mu held.
func (ms *MemoryService) resultSet(userID string) []models.Todo {
	out := []models.Todo{}
	for _, t := range ms.todos {
		if t.UserID == userID {
			out = append(out, t.Clone())
		}
	}
	slices.SortFunc(out, func(a, b models.Todo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// publish must be called with mu held, after the write has been applied.
func (ms *MemoryService) publish(before *models.Todo, after *models.Todo) {
	for w := range ms.watches {
		wasIn := before != nil && before.UserID == w.userID
		isIn := after != nil && after.UserID == w.userID

		var change models.Change
		switch {
		case !wasIn && isIn:
			change = models.Change{Kind: models.ChangeAdded, Todo: after.Clone()}
		case wasIn && isIn:
			change = models.Change{Kind: models.ChangeModified, Todo: after.Clone()}
		case wasIn && !isIn:
			change = models.Change{Kind: models.ChangeRemoved, Todo: before.Clone()}
		default:
			continue
		}

		select {
		case w.queue <- models.Snapshot{Todos: ms.resultSet(w.userID), Changes: []models.Change{change}}:
		case <-w.done:
		}
	}
}

func (ms *MemoryService) CreateTodo(ctx context.Context, todo models.Todo) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	todo = todo.Clone()
	todo.ID = uuid.New().String()
	if todo.Tags == nil {
		todo.Tags = []string{}
	}
	ms.todos[todo.ID] = todo
	ms.publish(nil, &todo)
	return todo.ID, nil
}

func (ms *MemoryService) UpdateTodo(ctx context.Context, todoID string, patch models.TodoPatch) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	before, ok := ms.todos[todoID]
	if !ok {
		return fmt.Errorf("failed to update todo %s: %w", todoID, ErrNotFound)
	}
	after := patch.Apply(before)
	ms.todos[todoID] = after
	ms.publish(&before, &after)
	return nil
}

func (ms *MemoryService) DeleteTodo(ctx context.Context, todoID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	before, ok := ms.todos[todoID]
	if !ok {
		// Matches Firestore: deleting a missing document succeeds.
		return nil
	}
	delete(ms.todos, todoID)
	ms.publish(&before, nil)
	return nil
}

func (ms *MemoryService) CreateCategory(ctx context.Context, category models.Category) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	category.ID = uuid.New().String()
	ms.categories[category.ID] = category
	return category.ID, nil
}

func (ms *MemoryService) CreateTag(ctx context.Context, tag models.Tag) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	tag.ID = uuid.New().String()
	ms.tags[tag.ID] = tag
	return tag.ID, nil
}
