// Package config reads service settings from the environment, after loading
// an optional .env file.
package config

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Backend selects the todo database: "firestore" (default) or "memory".
	Backend          string
	ProjectID        string
	CredentialsFile  string
	Port             string
	PreferencesDB    string
	LineChannelToken string
	LineNotifyTo     string
	LogFile          string
	// UserID signs this client in at startup when set.
	UserID string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Backend:          getenv("TODO_BACKEND", "firestore"),
		ProjectID:        os.Getenv("GOOGLE_CLOUD_PROJECT"),
		CredentialsFile:  os.Getenv("FIRESTORE_CREDENTIALS"),
		Port:             getenv("PORT", "8080"),
		PreferencesDB:    getenv("PREFERENCES_DB", "preferences.db"),
		LineChannelToken: os.Getenv("LINE_CHANNEL_TOKEN"),
		LineNotifyTo:     os.Getenv("LINE_NOTIFY_TO"),
		LogFile:          os.Getenv("LOG_FILE"),
		UserID:           os.Getenv("TODO_USER_ID"),
	}

	switch cfg.Backend {
	case "firestore":
		if cfg.ProjectID == "" {
			return nil, errors.New("GOOGLE_CLOUD_PROJECT environment variable is required")
		}
	case "memory":
	default:
		return nil, errors.New("TODO_BACKEND must be firestore or memory")
	}

	if (cfg.LineChannelToken == "") != (cfg.LineNotifyTo == "") {
		return nil, errors.New("LINE_CHANNEL_TOKEN and LINE_NOTIFY_TO must be set together")
	}

	return cfg, nil
}

// LineEnabled reports whether notifications are also pushed to LINE.
func (c *Config) LineEnabled() bool {
	return c.LineChannelToken != "" && c.LineNotifyTo != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
