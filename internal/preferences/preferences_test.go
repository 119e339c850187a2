package preferences

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ytakahashi/todo-sync/internal/models"
)

func TestDefaultsFromEmptyStorage(t *testing.T) {
	s := New(NewMemoryStorage(), &RootElement{})

	if got, want := s.Preferences(), models.DefaultPreferences(); got != want {
		t.Errorf("Preferences = %+v, want %+v", got, want)
	}
}

func TestUpdateThemeMerges(t *testing.T) {
	storage := NewMemoryStorage()
	root := &RootElement{}
	s := New(storage, root)

	if err := s.UpdateTheme(models.ThemePatch{Primary: "green"}); err != nil {
		t.Fatalf("UpdateTheme: %v", err)
	}

	theme := s.Preferences().Theme
	if theme.Primary != "green" {
		t.Errorf("Primary = %q, want green", theme.Primary)
	}
	if theme.Secondary != "violet" {
		t.Errorf("Secondary = %q, want violet", theme.Secondary)
	}
	if got := root.ClassName(); got != "theme-green" {
		t.Errorf("root class = %q, want theme-green", got)
	}

	raw, ok, _ := storage.Get(KeyTheme)
	if !ok {
		t.Fatal("theme not persisted")
	}
	want := `{"primary":"green","secondary":"violet","accent":"indigo","background":"purple-50"}`
	if raw != want {
		t.Errorf("stored theme = %s, want %s", raw, want)
	}
}

func TestToggleSidebarPersists(t *testing.T) {
	storage := NewMemoryStorage()
	s := New(storage, &RootElement{})

	if err := s.ToggleSidebar(); err != nil {
		t.Fatal(err)
	}
	if s.Preferences().SidebarOpen {
		t.Error("SidebarOpen should be false after one toggle")
	}
	if raw, _, _ := storage.Get(KeySidebarOpen); raw != "false" {
		t.Errorf("stored sidebar = %q, want false", raw)
	}
}

func TestResetPreferencesKeepsSidebar(t *testing.T) {
	storage := NewMemoryStorage()
	for key, value := range map[string]string{
		KeyAnimations:       "false",
		KeyCompactMode:      "true",
		KeyShowDescriptions: "false",
		KeyDefaultView:      `"board"`,
	} {
		if err := storage.Set(key, value); err != nil {
			t.Fatal(err)
		}
	}
	root := &RootElement{}
	s := New(storage, root)
	if err := s.UpdateTheme(models.ThemePatch{Primary: "rose", Accent: "amber"}); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleSidebar(); err != nil {
		t.Fatal(err)
	}

	if err := s.ResetPreferences(); err != nil {
		t.Fatalf("ResetPreferences: %v", err)
	}

	want := models.DefaultPreferences()
	want.SidebarOpen = false
	if got := s.Preferences(); got != want {
		t.Errorf("Preferences = %+v, want %+v", got, want)
	}
	if got := root.ClassName(); got != "theme-purple" {
		t.Errorf("root class = %q, want theme-purple", got)
	}

	for key, value := range map[string]string{
		KeyAnimations:       "true",
		KeyCompactMode:      "false",
		KeyShowDescriptions: "true",
		KeyDefaultView:      `"list"`,
		KeySidebarOpen:      "false",
	} {
		if raw, _, _ := storage.Get(key); raw != value {
			t.Errorf("stored %s = %q, want %q", key, raw, value)
		}
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	storage := NewMemoryStorage()
	_ = storage.Set(KeyAnimations, "not json")
	_ = storage.Set(KeyTheme, `{"primary":"blue","secondary":"sky","accent":"cyan","background":"blue-50"}`)

	p := New(storage, &RootElement{}).Preferences()
	if !p.Animations {
		t.Error("malformed animations should fall back to true")
	}
	if p.Theme.Primary != "blue" || p.Theme.Secondary != "sky" {
		t.Errorf("stored theme not loaded: %+v", p.Theme)
	}
}

type failingStorage struct{ Storage }

func (failingStorage) Set(string, string) error { return errors.New("disk full") }

func TestStorageErrorsPropagate(t *testing.T) {
	s := New(failingStorage{NewMemoryStorage()}, &RootElement{})

	if err := s.ToggleSidebar(); err == nil {
		t.Error("ToggleSidebar should return the storage error")
	}
	if err := s.UpdateTheme(models.ThemePatch{Primary: "blue"}); err == nil {
		t.Error("UpdateTheme should return the storage error")
	}
	if err := s.ResetPreferences(); err == nil {
		t.Error("ResetPreferences should return the storage error")
	}
}

func TestSQLiteStorageSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")

	storage, err := OpenSQLiteStorage(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStorage: %v", err)
	}
	s := New(storage, &RootElement{})
	if err := s.UpdateTheme(models.ThemePatch{Primary: "amber"}); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleSidebar(); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateTheme(models.ThemePatch{Background: "amber-50"}); err != nil {
		t.Fatal(err)
	}
	if err := storage.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenSQLiteStorage(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	p := New(reopened, &RootElement{}).Preferences()
	if p.Theme.Primary != "amber" || p.Theme.Background != "amber-50" || p.SidebarOpen {
		t.Errorf("preferences not restored: %+v", p)
	}

	if _, ok, err := reopened.Get("missing"); ok || err != nil {
		t.Errorf("Get(missing) = ok:%v err:%v", ok, err)
	}
}
