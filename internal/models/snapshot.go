package models

// ChangeKind is the kind of a document change in a snapshot.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeRemoved
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeRemoved:
		return "removed"
	}
	return "unknown"
}

// Change describes one document's change since the previous snapshot.
type Change struct {
	Kind ChangeKind
	Todo Todo
}

// Snapshot is one delivery of a live todo query: the full result set and the
// changes that produced it.
type Snapshot struct {
	Todos   []Todo
	Changes []Change
}

// Subscription is a live query that can be torn down. Stop is idempotent.
type Subscription interface {
	Stop()
}
