package models

// Category groups todos. Todos reference it by ID without ownership.
type Category struct {
	ID     string `firestore:"-" json:"id"`
	Name   string `firestore:"name" json:"name"`
	Color  string `firestore:"color" json:"color"`
	UserID string `firestore:"userId" json:"userId"`
}

// Tag labels todos. Todos reference it by ID without ownership.
type Tag struct {
	ID     string `firestore:"-" json:"id"`
	Name   string `firestore:"name" json:"name"`
	UserID string `firestore:"userId" json:"userId"`
}

// CategoryCount is a category with the number of todos referencing it.
type CategoryCount struct {
	Category
	Count int `json:"count"`
}

// TagCount is a tag with the number of todos carrying it.
type TagCount struct {
	Tag
	Count int `json:"count"`
}
