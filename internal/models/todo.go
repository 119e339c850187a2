package models

import (
	"slices"
	"time"
)

// Priority is the urgency of a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities for sorting: high < medium < low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// Todo represents a todo item
type Todo struct {
	ID           string     `firestore:"-" json:"id"`
	Title        string     `firestore:"title" json:"title"`
	Completed    bool       `firestore:"completed" json:"completed"`
	UserID       string     `firestore:"userId" json:"userId"`
	Priority     Priority   `firestore:"priority" json:"priority"`
	DueDate      *time.Time `firestore:"dueDate" json:"dueDate,omitempty"`
	CreatedAt    time.Time  `firestore:"createdAt" json:"createdAt"`
	Description  string     `firestore:"description" json:"description"`
	CategoryID   *string    `firestore:"categoryId" json:"categoryId"`
	Tags         []string   `firestore:"tags" json:"tags"`
	Reminder     *time.Time `firestore:"reminder,omitempty" json:"reminder,omitempty"`
	IsImportant  bool       `firestore:"isImportant" json:"isImportant"`
	IsBookmarked bool       `firestore:"isBookmarked" json:"isBookmarked"`
	UpdatedAt    *time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// HasTag reports whether tagID is among the todo's tags.
func (t Todo) HasTag(tagID string) bool {
	return slices.Contains(t.Tags, tagID)
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Todo) Clone() Todo {
	c := t
	c.Tags = slices.Clone(t.Tags)
	c.DueDate = cloneTime(t.DueDate)
	c.Reminder = cloneTime(t.Reminder)
	c.UpdatedAt = cloneTime(t.UpdatedAt)
	if t.CategoryID != nil {
		id := *t.CategoryID
		c.CategoryID = &id
	}
	return c
}

// TodoInput is the payload for creating a todo.
type TodoInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// TodoPatch is a partial update. Nil fields are left untouched; the Clear
// flags null out the corresponding optional field.
type TodoPatch struct {
	Title         *string    `json:"title,omitempty"`
	Completed     *bool      `json:"completed,omitempty"`
	UserID        *string    `json:"userId,omitempty"`
	Priority      *Priority  `json:"priority,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	ClearDueDate  bool       `json:"clearDueDate,omitempty"`
	Description   *string    `json:"description,omitempty"`
	CategoryID    *string    `json:"categoryId,omitempty"`
	ClearCategory bool       `json:"clearCategory,omitempty"`
	Tags          *[]string  `json:"tags,omitempty"`
	Reminder      *time.Time `json:"reminder,omitempty"`
	ClearReminder bool       `json:"clearReminder,omitempty"`
	IsImportant   *bool      `json:"isImportant,omitempty"`
	IsBookmarked  *bool      `json:"isBookmarked,omitempty"`
	UpdatedAt     *time.Time `json:"-"`
}

// Apply merges the patch into a copy of t.
func (p TodoPatch) Apply(t Todo) Todo {
	out := t.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Completed != nil {
		out.Completed = *p.Completed
	}
	if p.UserID != nil {
		out.UserID = *p.UserID
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.ClearDueDate {
		out.DueDate = nil
	} else if p.DueDate != nil {
		out.DueDate = cloneTime(p.DueDate)
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.ClearCategory {
		out.CategoryID = nil
	} else if p.CategoryID != nil {
		id := *p.CategoryID
		out.CategoryID = &id
	}
	if p.Tags != nil {
		out.Tags = slices.Clone(*p.Tags)
		if out.Tags == nil {
			out.Tags = []string{}
		}
	}
	if p.ClearReminder {
		out.Reminder = nil
	} else if p.Reminder != nil {
		out.Reminder = cloneTime(p.Reminder)
	}
	if p.IsImportant != nil {
		out.IsImportant = *p.IsImportant
	}
	if p.IsBookmarked != nil {
		out.IsBookmarked = *p.IsBookmarked
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = cloneTime(p.UpdatedAt)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
