package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/notify"
	"github.com/ytakahashi/todo-sync/internal/session"
)

type fakeWatch struct {
	userID     string
	onSnapshot func(models.Snapshot)
	onError    func(error)

	mu    sync.Mutex
	stops int
}

func (w *fakeWatch) Stop() {
	w.mu.Lock()
	w.stops++
	w.mu.Unlock()
}

func (w *fakeWatch) stopCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stops
}

type fakeUpdate struct {
	id    string
	patch models.TodoPatch
}

type fakeRemote struct {
	mu sync.Mutex

	watches  []*fakeWatch
	watchErr error

	created   []models.Todo
	createErr error

	updates   []fakeUpdate
	updateErr error

	deleted   []string
	deleteErr error

	categories  []models.Category
	categoryErr error
	tags        []models.Tag
	tagErr      error

	nextID int
}

func (f *fakeRemote) WatchTodos(ctx context.Context, userID string, onSnapshot func(models.Snapshot), onError func(error)) (models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	w := &fakeWatch{userID: userID, onSnapshot: onSnapshot, onError: onError}
	f.watches = append(f.watches, w)
	return w, nil
}

func (f *fakeRemote) CreateTodo(ctx context.Context, todo models.Todo) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, todo)
	return f.id(), nil
}

func (f *fakeRemote) UpdateTodo(ctx context.Context, todoID string, patch models.TodoPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, fakeUpdate{id: todoID, patch: patch})
	return nil
}

func (f *fakeRemote) DeleteTodo(ctx context.Context, todoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, todoID)
	return nil
}

func (f *fakeRemote) CreateCategory(ctx context.Context, category models.Category) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.categoryErr != nil {
		return "", f.categoryErr
	}
	f.categories = append(f.categories, category)
	return f.id(), nil
}

func (f *fakeRemote) CreateTag(ctx context.Context, tag models.Tag) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tagErr != nil {
		return "", f.tagErr
	}
	f.tags = append(f.tags, tag)
	return f.id(), nil
}

// id must be called with mu held.
func (f *fakeRemote) id() string {
	f.nextID++
	return fmt.Sprintf("doc-%d", f.nextID)
}

func (f *fakeRemote) lastWatch() *fakeWatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.watches) == 0 {
		return nil
	}
	return f.watches[len(f.watches)-1]
}

func (f *fakeRemote) watchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watches)
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	remote   *fakeRemote
	session  *session.Session
	recorder *notify.Recorder
	store    *TodoStore
}

func newHarness(userID string) *harness {
	h := &harness{
		remote:   &fakeRemote{},
		session:  session.New(userID),
		recorder: notify.NewRecorder(10),
	}
	h.store = New(h.remote, h.session, h.recorder, WithClock(func() time.Time { return fixedNow }))
	return h
}

// live initializes the store and delivers todos as the first snapshot.
func (h *harness) live(todos ...models.Todo) *fakeWatch {
	if err := h.store.Initialize(context.Background()); err != nil {
		panic(err)
	}
	w := h.remote.lastWatch()
	w.onSnapshot(models.Snapshot{Todos: todos})
	return w
}

func todo(id string, created time.Time) models.Todo {
	return models.Todo{
		ID:        id,
		Title:     id,
		UserID:    "alice",
		Priority:  models.PriorityMedium,
		CreatedAt: created,
		Tags:      []string{},
	}
}

func ptr[T any](v T) *T {
	return &v
}

func ids(todos []models.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}
