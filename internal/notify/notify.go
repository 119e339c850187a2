// Package notify delivers transient user-facing messages (toasts).
package notify

import (
	"log"
	"sync"
	"time"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is one transient, non-blocking message for the user.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Error builds an error-level notification stamped with the current time.
func Error(message string) Notification {
	return Notification{Level: LevelError, Message: message, Time: time.Now()}
}

// Notifier delivers notifications. Implementations must not block for long
// and must be safe for concurrent use.
type Notifier interface {
	Notify(n Notification)
}

// Multi fans a notification out to every notifier.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, notifier := range m {
		notifier.Notify(n)
	}
}

// LogNotifier writes notifications to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	log.Printf("[%s] %s", n.Level, n.Message)
}

// Recorder keeps the most recent notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	limit int
	items []Notification
}

// NewRecorder returns a recorder holding at most limit notifications.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 50
	}
	return &Recorder{limit: limit}
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, n)
	if over := len(r.items) - r.limit; over > 0 {
		r.items = append([]Notification(nil), r.items[over:]...)
	}
}

// Recent returns the recorded notifications, oldest first.
func (r *Recorder) Recent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Messages returns only the message texts, oldest first.
func (r *Recorder) Messages() []string {
	recent := r.Recent()
	out := make([]string, len(recent))
	for i, n := range recent {
		out[i] = n.Message
	}
	return out
}

// Clear drops everything recorded so far.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}
