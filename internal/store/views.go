package store

import (
	"fmt"
	"slices"

	"github.com/ytakahashi/todo-sync/internal/models"
)

// Filter selects todos by status.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterActive     Filter = "active"
	FilterCompleted  Filter = "completed"
	FilterImportant  Filter = "important"
	FilterBookmarked Filter = "bookmarked"
)

// ParseFilter validates a status filter name.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterActive, FilterCompleted, FilterImportant, FilterBookmarked:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// SortKey selects the secondary ordering of todos.
type SortKey string

const (
	SortByCreatedAt SortKey = "createdAt"
	SortByDueDate   SortKey = "dueDate"
	SortByPriority  SortKey = "priority"
)

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortByCreatedAt, SortByDueDate, SortByPriority:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// View is the selection state the filtered list is derived from.
type View struct {
	Filter           Filter   `json:"filter"`
	SortBy           SortKey  `json:"sortBy"`
	SelectedCategory string   `json:"selectedCategory,omitempty"`
	SelectedTags     []string `json:"selectedTags"`
}

// DefaultView shows everything, newest first.
func DefaultView() View {
	return View{Filter: FilterAll, SortBy: SortByCreatedAt, SelectedTags: []string{}}
}

// FilterTodos applies the category, tag and status filters of v, then sorts
// the result. The input slice is not modified.
func FilterTodos(todos []models.Todo, v View) []models.Todo {
	out := make([]models.Todo, 0, len(todos))
	for _, t := range todos {
		if v.SelectedCategory != "" && (t.CategoryID == nil || *t.CategoryID != v.SelectedCategory) {
			continue
		}
		if !hasAllTags(t, v.SelectedTags) {
			continue
		}
		if !matchesStatus(t, v.Filter) {
			continue
		}
		out = append(out, t.Clone())
	}

	slices.SortStableFunc(out, func(a, b models.Todo) int {
		return compareTodos(a, b, v.SortBy)
	})
	return out
}

func hasAllTags(t models.Todo, tags []string) bool {
	for _, tag := range tags {
		if !t.HasTag(tag) {
			return false
		}
	}
	return true
}

func matchesStatus(t models.Todo, f Filter) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterImportant:
		return t.IsImportant
	case FilterBookmarked:
		return t.IsBookmarked
	}
	return true
}

// compareTodos puts important todos first. Ties fall to the sort key: due
// date ascending only when both have one, priority high to low, and creation
// time descending otherwise. Equal due dates or priorities compare equal.
func compareTodos(a, b models.Todo, key SortKey) int {
	if a.IsImportant != b.IsImportant {
		if a.IsImportant {
			return -1
		}
		return 1
	}

	if key == SortByDueDate && a.DueDate != nil && b.DueDate != nil {
		return a.DueDate.Compare(*b.DueDate)
	}
	if key == SortByPriority {
		return a.Priority.Rank() - b.Priority.Rank()
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// CountCategories pairs each category with the number of todos in it.
// It scans every todo per category.
func CountCategories(categories []models.Category, todos []models.Todo) []models.CategoryCount {
	out := make([]models.CategoryCount, 0, len(categories))
	for _, c := range categories {
		n := 0
		for _, t := range todos {
			if t.CategoryID != nil && *t.CategoryID == c.ID {
				n++
			}
		}
		out = append(out, models.CategoryCount{Category: c, Count: n})
	}
	return out
}

// CountTags pairs each tag with the number of todos carrying it.
// It scans every todo per tag.
func CountTags(tags []models.Tag, todos []models.Todo) []models.TagCount {
	out := make([]models.TagCount, 0, len(tags))
	for _, tag := range tags {
		n := 0
		for _, t := range todos {
			if t.HasTag(tag.ID) {
				n++
			}
		}
		out = append(out, models.TagCount{Tag: tag, Count: n})
	}
	return out
}
