// Package store keeps the signed-in user's todos in memory, synchronized
// with the remote todo collection, and derives filtered views from them.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/notify"
)

// ErrNotSignedIn is returned by todo mutations when nobody is signed in.
var ErrNotSignedIn = errors.New("not signed in")

// Remote is the document database the store reads from and writes to.
type Remote interface {
	WatchTodos(ctx context.Context, userID string, onSnapshot func(models.Snapshot), onError func(error)) (models.Subscription, error)
	CreateTodo(ctx context.Context, todo models.Todo) (string, error)
	UpdateTodo(ctx context.Context, todoID string, patch models.TodoPatch) error
	DeleteTodo(ctx context.Context, todoID string) error
	CreateCategory(ctx context.Context, category models.Category) (string, error)
	CreateTag(ctx context.Context, tag models.Tag) (string, error)
}

// Identity reports who is signed in.
type Identity interface {
	CurrentUserID() (string, bool)
}

// State is the lifecycle of the todo subscription.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateLive
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateLive:
		return "live"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

const (
	msgLoadFailed   = "Failed to load tasks"
	msgAddFailed    = "Failed to add task"
	msgUpdateFailed = "Failed to update task"
	msgDeleteFailed = "Failed to delete task"
	msgLoginAdd     = "Please login to add tasks"
	msgLoginUpdate  = "Please login to update tasks"
	msgLoginDelete  = "Please login to delete tasks"
)

// Option configures a TodoStore.
type Option func(*TodoStore)

// WithClock overrides the time source used for creation and update stamps.
func WithClock(now func() time.Time) Option {
	return func(s *TodoStore) { s.now = now }
}

// TodoStore holds one user's todos, categories and tags. All methods are
// safe for concurrent use; snapshot deliveries and actions are serialized.
type TodoStore struct {
	remote   Remote
	identity Identity
	notifier notify.Notifier
	now      func() time.Time

	mu          sync.Mutex
	todos       []models.Todo
	categories  []models.Category
	tags        []models.Tag
	loading     bool
	view        View
	sub         models.Subscription
	generation  uint64
	initialized bool
	state       State

	// version changes on every state mutation; filtered is valid for
	// filteredVersion only.
	version         uint64
	filtered        []models.Todo
	filteredVersion uint64
	filteredValid   bool

	listeners    map[int]func()
	nextListener int
}

func New(remote Remote, identity Identity, notifier notify.Notifier, opts ...Option) *TodoStore {
	s := &TodoStore{
		remote:    remote,
		identity:  identity,
		notifier:  notifier,
		now:       time.Now,
		todos:     []models.Todo{},
		view:      DefaultView(),
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize subscribes to the current user's todos. It does nothing when
// nobody is signed in or the store is already initialized. Any previous
// subscription is stopped before the new one starts.
func (s *TodoStore) Initialize(ctx context.Context) error {
	userID, ok := s.identity.CurrentUserID()
	if !ok {
		return nil
	}

	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	prev := s.sub
	s.sub = nil
	s.generation++
	gen := s.generation
	s.loading = true
	s.state = StateLoading
	s.touch()
	s.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	s.emit()

	sub, err := s.remote.WatchTodos(ctx, userID,
		func(snap models.Snapshot) { s.handleSnapshot(gen, snap) },
		func(err error) { s.handleWatchError(gen, err) },
	)
	if err != nil {
		s.handleWatchError(gen, err)
		return fmt.Errorf("failed to subscribe to todos: %w", err)
	}

	s.mu.Lock()
	if s.generation != gen {
		// Cleaned up or replaced while subscribing.
		s.mu.Unlock()
		sub.Stop()
		return nil
	}
	s.sub = sub
	s.mu.Unlock()

	return nil
}

func (s *TodoStore) handleSnapshot(gen uint64, snap models.Snapshot) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	if !s.initialized {
		s.todos = cloneTodos(snap.Todos)
		s.initialized = true
		s.loading = false
		s.state = StateLive
	} else {
		s.todos = applyChanges(s.todos, snap.Changes)
	}
	s.touch()
	s.mu.Unlock()

	s.emit()
}

func (s *TodoStore) handleWatchError(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.loading = false
	s.touch()
	s.mu.Unlock()

	log.Printf("Error initializing store: %v", err)
	s.notifier.Notify(notify.Error(msgLoadFailed))
	s.emit()
}

// AddTodo writes a new todo. The local list picks it up from the
// subscription, not from this call.
func (s *TodoStore) AddTodo(ctx context.Context, in models.TodoInput) error {
	userID, ok := s.identity.CurrentUserID()
	if !ok {
		s.notifier.Notify(notify.Error(msgLoginAdd))
		return ErrNotSignedIn
	}

	priority := in.Priority
	if !priority.Valid() {
		priority = models.PriorityMedium
	}

	todo := models.Todo{
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		DueDate:     in.DueDate,
		Completed:   false,
		UserID:      userID,
		CreatedAt:   s.now(),
		Tags:        []string{},
	}

	if _, err := s.remote.CreateTodo(ctx, todo); err != nil {
		log.Printf("Error adding todo: %v", err)
		s.notifier.Notify(notify.Error(msgAddFailed))
		return err
	}

	return nil
}

// UpdateTodo writes patch to the todo and merges it into the local copy.
// The owner is always reset to the current user.
func (s *TodoStore) UpdateTodo(ctx context.Context, todoID string, patch models.TodoPatch) error {
	userID, ok := s.identity.CurrentUserID()
	if !ok {
		s.notifier.Notify(notify.Error(msgLoginUpdate))
		return ErrNotSignedIn
	}

	now := s.now()
	patch.UserID = &userID
	patch.UpdatedAt = &now

	if err := s.remote.UpdateTodo(ctx, todoID, patch); err != nil {
		log.Printf("Error updating todo: %v", err)
		s.notifier.Notify(notify.Error(msgUpdateFailed))
		return err
	}

	s.mu.Lock()
	if i := indexOf(s.todos, todoID); i != -1 {
		s.todos[i] = patch.Apply(s.todos[i])
		s.touch()
	}
	s.mu.Unlock()

	s.emit()
	return nil
}

// DeleteTodo removes the todo remotely; the subscription drops it locally.
func (s *TodoStore) DeleteTodo(ctx context.Context, todoID string) error {
	if _, ok := s.identity.CurrentUserID(); !ok {
		s.notifier.Notify(notify.Error(msgLoginDelete))
		return ErrNotSignedIn
	}

	if err := s.remote.DeleteTodo(ctx, todoID); err != nil {
		log.Printf("Error deleting todo: %v", err)
		s.notifier.Notify(notify.Error(msgDeleteFailed))
		return err
	}

	return nil
}

// AddCategory creates a category and appends it locally. Without a signed
// in user it returns nil, nil.
func (s *TodoStore) AddCategory(ctx context.Context, name, color string) (*models.Category, error) {
	userID, ok := s.identity.CurrentUserID()
	if !ok {
		return nil, nil
	}

	category := models.Category{Name: name, Color: color, UserID: userID}
	id, err := s.remote.CreateCategory(ctx, category)
	if err != nil {
		log.Printf("Error adding category: %v", err)
		return nil, err
	}
	category.ID = id

	s.mu.Lock()
	s.categories = append(s.categories, category)
	s.touch()
	s.mu.Unlock()

	s.emit()
	return &category, nil
}

// AddTag creates a tag and appends it locally. Without a signed in user it
// returns nil, nil.
func (s *TodoStore) AddTag(ctx context.Context, name string) (*models.Tag, error) {
	userID, ok := s.identity.CurrentUserID()
	if !ok {
		return nil, nil
	}

	tag := models.Tag{Name: name, UserID: userID}
	id, err := s.remote.CreateTag(ctx, tag)
	if err != nil {
		log.Printf("Error adding tag: %v", err)
		return nil, err
	}
	tag.ID = id

	s.mu.Lock()
	s.tags = append(s.tags, tag)
	s.touch()
	s.mu.Unlock()

	s.emit()
	return &tag, nil
}

func (s *TodoStore) ToggleImportant(ctx context.Context, todoID string) error {
	todo, ok := s.Todo(todoID)
	if !ok {
		return nil
	}
	important := !todo.IsImportant
	return s.UpdateTodo(ctx, todoID, models.TodoPatch{IsImportant: &important})
}

func (s *TodoStore) ToggleBookmark(ctx context.Context, todoID string) error {
	todo, ok := s.Todo(todoID)
	if !ok {
		return nil
	}
	bookmarked := !todo.IsBookmarked
	return s.UpdateTodo(ctx, todoID, models.TodoPatch{IsBookmarked: &bookmarked})
}

// Cleanup stops the subscription and resets every field, so nothing leaks
// into the next user's session. Calling it twice is harmless.
func (s *TodoStore) Cleanup() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.generation++
	s.todos = []models.Todo{}
	s.categories = nil
	s.tags = nil
	s.loading = false
	s.view = DefaultView()
	s.initialized = false
	s.state = StateStopped
	s.touch()
	s.mu.Unlock()

	if sub != nil {
		sub.Stop()
	}
	s.emit()
}

func (s *TodoStore) SetFilter(f Filter) {
	s.updateView(func(v *View) { v.Filter = f })
}

func (s *TodoStore) SetSortBy(k SortKey) {
	s.updateView(func(v *View) { v.SortBy = k })
}

// SelectCategory narrows the view to one category; "" clears it.
func (s *TodoStore) SelectCategory(categoryID string) {
	s.updateView(func(v *View) { v.SelectedCategory = categoryID })
}

func (s *TodoStore) SetSelectedTags(tags []string) {
	s.updateView(func(v *View) {
		v.SelectedTags = slices.Clone(tags)
		if v.SelectedTags == nil {
			v.SelectedTags = []string{}
		}
	})
}

func (s *TodoStore) updateView(fn func(*View)) {
	s.mu.Lock()
	fn(&s.view)
	s.touch()
	s.mu.Unlock()

	s.emit()
}

// FilteredTodos returns the todos selected by the current view, sorted.
// The result is recomputed only after the state changes.
func (s *TodoStore) FilteredTodos() []models.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.filteredValid || s.filteredVersion != s.version {
		s.filtered = FilterTodos(s.todos, s.view)
		s.filteredVersion = s.version
		s.filteredValid = true
	}
	return cloneTodos(s.filtered)
}

func (s *TodoStore) CategoriesWithCount() []models.CategoryCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CountCategories(s.categories, s.todos)
}

func (s *TodoStore) TagsWithCount() []models.TagCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CountTags(s.tags, s.todos)
}

// Todos returns the in-memory list in subscription order.
func (s *TodoStore) Todos() []models.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTodos(s.todos)
}

// Todo looks up one todo by ID.
func (s *TodoStore) Todo(todoID string) (models.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.todos, todoID); i != -1 {
		return s.todos[i].Clone(), true
	}
	return models.Todo{}, false
}

func (s *TodoStore) Categories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories)
}

func (s *TodoStore) Tags() []models.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tags)
}

func (s *TodoStore) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.SelectedTags = slices.Clone(s.view.SelectedTags)
	return v
}

func (s *TodoStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *TodoStore) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *TodoStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnChange registers fn to run after every state change. fn runs outside the
// store lock and may read from the store. The returned func unregisters it.
func (s *TodoStore) OnChange(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// touch must be called with mu held.
func (s *TodoStore) touch() {
	s.version++
}

func (s *TodoStore) emit() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
