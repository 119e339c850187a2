package services

import (
	"time"

	"github.com/ytakahashi/todo-sync/internal/models"
)

// TodoFromData decodes a raw todo document. It is used for full loads and
// incremental changes alike; missing or mistyped fields fall back to empty
// strings, medium priority, now for the creation time, false, and no tags.
func TodoFromData(id string, data map[string]interface{}, now time.Time) models.Todo {
	todo := models.Todo{
		ID:           id,
		Title:        stringField(data, "title"),
		UserID:       stringField(data, "userId"),
		Priority:     models.Priority(stringField(data, "priority")),
		CreatedAt:    now,
		DueDate:      timeField(data, "dueDate"),
		Completed:    boolField(data, "completed"),
		Tags:         stringsField(data, "tags"),
		IsImportant:  boolField(data, "isImportant"),
		IsBookmarked: boolField(data, "isBookmarked"),
		Description:  stringField(data, "description"),
		Reminder:     timeField(data, "reminder"),
		UpdatedAt:    timeField(data, "updatedAt"),
	}

	if !todo.Priority.Valid() {
		todo.Priority = models.PriorityMedium
	}
	if created := timeField(data, "createdAt"); created != nil {
		todo.CreatedAt = *created
	}
	if category := stringField(data, "categoryId"); category != "" {
		todo.CategoryID = &category
	}

	return todo
}

func stringField(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

func boolField(data map[string]interface{}, key string) bool {
	b, _ := data[key].(bool)
	return b
}

func timeField(data map[string]interface{}, key string) *time.Time {
	switch v := data[key].(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return &v
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		t := *v
		return &t
	}
	return nil
}

func stringsField(data map[string]interface{}, key string) []string {
	out := []string{}
	switch v := data[key].(type) {
	case []string:
		out = append(out, v...)
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
