package models

import "slices"

// Theme holds the color names the UI is styled with.
type Theme struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
}

// ThemePatch is a partial theme update; empty fields keep their value.
type ThemePatch struct {
	Primary    string `json:"primary,omitempty"`
	Secondary  string `json:"secondary,omitempty"`
	Accent     string `json:"accent,omitempty"`
	Background string `json:"background,omitempty"`
}

// Merge returns t with the non-empty fields of p applied.
func (p ThemePatch) Merge(t Theme) Theme {
	if p.Primary != "" {
		t.Primary = p.Primary
	}
	if p.Secondary != "" {
		t.Secondary = p.Secondary
	}
	if p.Accent != "" {
		t.Accent = p.Accent
	}
	if p.Background != "" {
		t.Background = p.Background
	}
	return t
}

// ThemeColors are the primary colors the stylesheet ships classes for.
var ThemeColors = []string{"green", "blue", "purple", "indigo", "rose", "amber"}

// KnownThemeColor reports whether color has styling rules.
func KnownThemeColor(color string) bool {
	return slices.Contains(ThemeColors, color)
}

// Preferences is the per-profile UI preference record.
type Preferences struct {
	Theme            Theme  `json:"theme"`
	Animations       bool   `json:"animations"`
	CompactMode      bool   `json:"compactMode"`
	ShowDescriptions bool   `json:"showDescriptions"`
	DefaultView      string `json:"defaultView"`
	SidebarOpen      bool   `json:"sidebarOpen"`
}

// DefaultTheme is the theme used when nothing is stored.
func DefaultTheme() Theme {
	return Theme{
		Primary:    "purple",
		Secondary:  "violet",
		Accent:     "indigo",
		Background: "purple-50",
	}
}

// DefaultPreferences returns the out-of-the-box preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:            DefaultTheme(),
		Animations:       true,
		CompactMode:      false,
		ShowDescriptions: true,
		DefaultView:      "list",
		SidebarOpen:      true,
	}
}
