package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/ytakahashi/todo-sync/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	todosCollection      = "todos"
	categoriesCollection = "categories"
	tagsCollection       = "tags"
)

type FirestoreService struct {
	client *firestore.Client
	now    func() time.Time
}

func NewFirestoreService(projectID string, opts ...option.ClientOption) (*FirestoreService, error) {
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreService{
		client: client,
		now:    time.Now,
	}, nil
}

func (fs *FirestoreService) Close() error {
	return fs.client.Close()
}

// snapshotSubscription owns one QuerySnapshotIterator. The iterator is only
// touched by the watch goroutine; Stop cancels its context.
type snapshotSubscription struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (s *snapshotSubscription) Stop() {
	s.once.Do(s.cancel)
}

// WatchTodos streams the user's todos, newest first. The subscription lives
// until Stop is called, independently of ctx's deadline.
func (fs *FirestoreService) WatchTodos(ctx context.Context, userID string, onSnapshot func(models.Snapshot), onError func(error)) (models.Subscription, error) {
	if userID == "" {
		return nil, errors.New("failed to watch todos: empty user id")
	}

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	it := fs.client.Collection(todosCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Snapshots(watchCtx)

	sub := &snapshotSubscription{cancel: cancel}
	go func() {
		defer it.Stop()
		for {
			qs, err := it.Next()
			if watchCtx.Err() != nil || err == iterator.Done {
				return
			}
			if err != nil {
				onError(fmt.Errorf("failed to receive todo snapshot: %w", err))
				return
			}

			snap, err := fs.convertSnapshot(qs)
			if err != nil {
				onError(err)
				return
			}
			onSnapshot(snap)
		}
	}()

	return sub, nil
}

func (fs *FirestoreService) convertSnapshot(qs *firestore.QuerySnapshot) (models.Snapshot, error) {
	now := fs.now()

	docs, err := qs.Documents.GetAll()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read todo snapshot: %w", err)
	}

	snap := models.Snapshot{
		Todos:   make([]models.Todo, 0, len(docs)),
		Changes: make([]models.Change, 0, len(qs.Changes)),
	}
	for _, doc := range docs {
		snap.Todos = append(snap.Todos, TodoFromData(doc.Ref.ID, doc.Data(), now))
	}
	for _, ch := range qs.Changes {
		var kind models.ChangeKind
		switch ch.Kind {
		case firestore.DocumentAdded:
			kind = models.ChangeAdded
		case firestore.DocumentModified:
			kind = models.ChangeModified
		case firestore.DocumentRemoved:
			kind = models.ChangeRemoved
		default:
			log.Printf("Ignoring unknown document change kind %v for %s", ch.Kind, ch.Doc.Ref.ID)
			continue
		}
		snap.Changes = append(snap.Changes, models.Change{
			Kind: kind,
			Todo: TodoFromData(ch.Doc.Ref.ID, ch.Doc.Data(), now),
		})
	}

	return snap, nil
}

// CreateTodo stores todo under a fresh document ID and returns that ID.
func (fs *FirestoreService) CreateTodo(ctx context.Context, todo models.Todo) (string, error) {
	id := uuid.New().String()
	if todo.Tags == nil {
		todo.Tags = []string{}
	}

	_, err := fs.client.Collection(todosCollection).Doc(id).Set(ctx, todo)
	if err != nil {
		return "", fmt.Errorf("failed to create todo: %w", err)
	}

	return id, nil
}

func (fs *FirestoreService) UpdateTodo(ctx context.Context, todoID string, patch models.TodoPatch) error {
	updates := PatchUpdates(patch)
	if len(updates) == 0 {
		return nil
	}

	_, err := fs.client.Collection(todosCollection).Doc(todoID).Update(ctx, updates)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	return nil
}

func (fs *FirestoreService) DeleteTodo(ctx context.Context, todoID string) error {
	_, err := fs.client.Collection(todosCollection).Doc(todoID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return nil
}

func (fs *FirestoreService) CreateCategory(ctx context.Context, category models.Category) (string, error) {
	id := uuid.New().String()

	_, err := fs.client.Collection(categoriesCollection).Doc(id).Set(ctx, category)
	if err != nil {
		return "", fmt.Errorf("failed to create category: %w", err)
	}

	return id, nil
}

func (fs *FirestoreService) CreateTag(ctx context.Context, tag models.Tag) (string, error) {
	id := uuid.New().String()

	_, err := fs.client.Collection(tagsCollection).Doc(id).Set(ctx, tag)
	if err != nil {
		return "", fmt.Errorf("failed to create tag: %w", err)
	}

	return id, nil
}

// PatchUpdates translates a patch into Firestore field updates. Cleared
// fields are written as null.
func PatchUpdates(p models.TodoPatch) []firestore.Update {
	var updates []firestore.Update
	add := func(path string, value interface{}) {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Completed != nil {
		add("completed", *p.Completed)
	}
	if p.Priority != nil {
		add("priority", string(*p.Priority))
	}
	if p.ClearDueDate {
		add("dueDate", nil)
	} else if p.DueDate != nil {
		add("dueDate", *p.DueDate)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.ClearCategory {
		add("categoryId", nil)
	} else if p.CategoryID != nil {
		add("categoryId", *p.CategoryID)
	}
	if p.Tags != nil {
		tags := *p.Tags
		if tags == nil {
			tags = []string{}
		}
		add("tags", tags)
	}
	if p.ClearReminder {
		add("reminder", nil)
	} else if p.Reminder != nil {
		add("reminder", *p.Reminder)
	}
	if p.IsImportant != nil {
		add("isImportant", *p.IsImportant)
	}
	if p.IsBookmarked != nil {
		add("isBookmarked", *p.IsBookmarked)
	}
	if p.UpdatedAt != nil {
		add("updatedAt", *p.UpdatedAt)
	}
	if p.UserID != nil {
		add("userId", *p.UserID)
	}

	return updates
}
