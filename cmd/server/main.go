package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ytakahashi/todo-sync/internal/config"
	"github.com/ytakahashi/todo-sync/internal/handlers"
	"github.com/ytakahashi/todo-sync/internal/notify"
	"github.com/ytakahashi/todo-sync/internal/preferences"
	"github.com/ytakahashi/todo-sync/internal/services"
	"github.com/ytakahashi/todo-sync/internal/session"
	"github.com/ytakahashi/todo-sync/internal/store"
	"google.golang.org/api/option"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}))
	}

	var remote store.Remote
	switch cfg.Backend {
	case "memory":
		log.Println("Using in-memory todo backend")
		remote = services.NewMemoryService()
	default:
		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		firestoreService, err := services.NewFirestoreService(cfg.ProjectID, opts...)
		if err != nil {
			log.Fatalf("Failed to create Firestore service: %v", err)
		}
		defer firestoreService.Close()
		remote = firestoreService
	}

	storage, err := preferences.OpenSQLiteStorage(cfg.PreferencesDB)
	if err != nil {
		log.Fatalf("Failed to open preferences database: %v", err)
	}
	defer storage.Close()

	recorder := notify.NewRecorder(50)
	notifier := notify.Multi{recorder, notify.LogNotifier{}}
	if cfg.LineEnabled() {
		line, err := notify.NewLineNotifierFromToken(cfg.LineChannelToken, cfg.LineNotifyTo)
		if err != nil {
			log.Fatalf("Failed to create LINE bot client: %v", err)
		}
		notifier = append(notifier, line)
	}

	sess := session.New(cfg.UserID)
	todos := store.New(remote, sess, notifier)
	defer todos.Cleanup()

	if cfg.UserID != "" {
		if err := todos.Initialize(context.Background()); err != nil {
			log.Printf("Failed to load tasks for %s: %v", cfg.UserID, err)
		}
	}

	root := &preferences.RootElement{}
	prefs := preferences.New(storage, root)

	apiHandler := handlers.NewAPIHandler(todos, prefs, root, sess, recorder)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	apiHandler.Register(e)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
