// Package preferences holds the UI preferences of one browser profile and
// mirrors every change to local key-value storage.
package preferences

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/ytakahashi/todo-sync/internal/models"
)

// Storage keys.
const (
	KeyTheme            = "todo-theme"
	KeyAnimations       = "todo-animations"
	KeyCompactMode      = "todo-compact-mode"
	KeyShowDescriptions = "todo-show-descriptions"
	KeyDefaultView      = "todo-default-view"
	KeySidebarOpen      = "todo-sidebar-open"
)

// DocumentRoot receives the class name that selects the active theme.
type DocumentRoot interface {
	SetClassName(name string)
}

// RootElement is a DocumentRoot that remembers the last class name.
type RootElement struct {
	mu        sync.RWMutex
	className string
}

func (r *RootElement) SetClassName(name string) {
	r.mu.Lock()
	r.className = name
	r.mu.Unlock()
}

func (r *RootElement) ClassName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.className
}

// ThemeClass is the root class name for a theme.
func ThemeClass(t models.Theme) string {
	return "theme-" + t.Primary
}

type Store struct {
	storage Storage
	root    DocumentRoot

	mu    sync.Mutex
	prefs models.Preferences
}

// New loads preferences from storage, using defaults for absent keys.
func New(storage Storage, root DocumentRoot) *Store {
	d := models.DefaultPreferences()
	s := &Store{storage: storage, root: root}
	s.prefs = models.Preferences{
		Theme:            load(storage, KeyTheme, d.Theme),
		Animations:       load(storage, KeyAnimations, d.Animations),
		CompactMode:      load(storage, KeyCompactMode, d.CompactMode),
		ShowDescriptions: load(storage, KeyShowDescriptions, d.ShowDescriptions),
		DefaultView:      load(storage, KeyDefaultView, d.DefaultView),
		SidebarOpen:      load(storage, KeySidebarOpen, d.SidebarOpen),
	}
	return s
}

func load[T any](storage Storage, key string, fallback T) T {
	raw, ok, err := storage.Get(key)
	if err != nil {
		log.Printf("Failed to read preference %s: %v", key, err)
		return fallback
	}
	if !ok || raw == "" {
		return fallback
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		log.Printf("Ignoring malformed preference %s: %v", key, err)
		return fallback
	}
	return v
}

func save(storage Storage, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return storage.Set(key, string(raw))
}

func (s *Store) Preferences() models.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// UpdateTheme merges patch into the theme, persists it and applies the
// theme class to the document root.
func (s *Store) UpdateTheme(patch models.ThemePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs.Theme = patch.Merge(s.prefs.Theme)
	if err := save(s.storage, KeyTheme, s.prefs.Theme); err != nil {
		return err
	}
	s.root.SetClassName(ThemeClass(s.prefs.Theme))
	return nil
}

func (s *Store) ToggleSidebar() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs.SidebarOpen = !s.prefs.SidebarOpen
	return save(s.storage, KeySidebarOpen, s.prefs.SidebarOpen)
}

// ResetPreferences restores the defaults and persists each key. SidebarOpen
// is left as it is.
func (s *Store) ResetPreferences() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := models.DefaultPreferences()
	s.prefs.Theme = d.Theme
	s.prefs.Animations = d.Animations
	s.prefs.CompactMode = d.CompactMode
	s.prefs.ShowDescriptions = d.ShowDescriptions
	s.prefs.DefaultView = d.DefaultView

	writes := []struct {
		key   string
		value any
	}{
		{KeyTheme, s.prefs.Theme},
		{KeyAnimations, s.prefs.Animations},
		{KeyCompactMode, s.prefs.CompactMode},
		{KeyShowDescriptions, s.prefs.ShowDescriptions},
		{KeyDefaultView, s.prefs.DefaultView},
	}
	for _, w := range writes {
		if err := save(s.storage, w.key, w.value); err != nil {
			return err
		}
	}

	s.root.SetClassName(ThemeClass(s.prefs.Theme))
	return nil
}
