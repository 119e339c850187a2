package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/todo-sync/internal/models"
	"github.com/ytakahashi/todo-sync/internal/notify"
	"github.com/ytakahashi/todo-sync/internal/preferences"
	"github.com/ytakahashi/todo-sync/internal/session"
	"github.com/ytakahashi/todo-sync/internal/store"
)

type APIHandler struct {
	todos         *store.TodoStore
	prefs         *preferences.Store
	root          *preferences.RootElement
	session       *session.Session
	notifications *notify.Recorder
}

func NewAPIHandler(todos *store.TodoStore, prefs *preferences.Store, root *preferences.RootElement, sess *session.Session, notifications *notify.Recorder) *APIHandler {
	return &APIHandler{
		todos:         todos,
		prefs:         prefs,
		root:          root,
		session:       sess,
		notifications: notifications,
	}
}

// Register mounts every route on e.
func (h *APIHandler) Register(e *echo.Echo) {
	e.POST("/session", h.SignIn)
	e.DELETE("/session", h.SignOut)

	e.GET("/todos", h.ListTodos)
	e.POST("/todos", h.AddTodo)
	e.PATCH("/todos/:id", h.UpdateTodo)
	e.DELETE("/todos/:id", h.DeleteTodo)
	e.POST("/todos/:id/important", h.ToggleImportant)
	e.POST("/todos/:id/bookmark", h.ToggleBookmark)
	e.PUT("/view", h.SetView)

	e.GET("/categories", h.ListCategories)
	e.POST("/categories", h.AddCategory)
	e.GET("/tags", h.ListTags)
	e.POST("/tags", h.AddTag)

	e.GET("/preferences", h.GetPreferences)
	e.PATCH("/preferences/theme", h.UpdateTheme)
	e.POST("/preferences/sidebar/toggle", h.ToggleSidebar)
	e.POST("/preferences/reset", h.ResetPreferences)

	e.GET("/notifications", h.ListNotifications)
	e.GET("/ws", h.HandleLive)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

type signInRequest struct {
	UserID string `json:"userId"`
}

type todosResponse struct {
	Todos   []models.Todo `json:"todos"`
	View    store.View    `json:"view"`
	State   string        `json:"state"`
	Loading bool          `json:"loading"`
}

type viewRequest struct {
	Filter           string   `json:"filter"`
	SortBy           string   `json:"sortBy"`
	SelectedCategory string   `json:"selectedCategory"`
	SelectedTags     []string `json:"selectedTags"`
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type tagRequest struct {
	Name string `json:"name"`
}

type preferencesResponse struct {
	Preferences models.Preferences `json:"preferences"`
	RootClass   string             `json:"rootClass"`
}

// SignIn switches the session to the given user and starts syncing.
func (h *APIHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}

	if current, ok := h.session.CurrentUserID(); ok && current != req.UserID {
		h.todos.Cleanup()
	}
	h.session.SignIn(req.UserID)

	if err := h.todos.Initialize(c.Request().Context()); err != nil {
		log.Printf("Failed to initialize store for user %s: %v", req.UserID, err)
		return echo.NewHTTPError(http.StatusBadGateway, "failed to load tasks")
	}

	return c.JSON(http.StatusOK, h.snapshot())
}

func (h *APIHandler) SignOut(c echo.Context) error {
	h.todos.Cleanup()
	h.session.SignOut()
	return c.NoContent(http.StatusNoContent)
}

func (h *APIHandler) ListTodos(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snapshot())
}

func (h *APIHandler) snapshot() todosResponse {
	return todosResponse{
		Todos:   h.todos.FilteredTodos(),
		View:    h.todos.View(),
		State:   h.todos.State().String(),
		Loading: h.todos.Loading(),
	}
}

func (h *APIHandler) AddTodo(c echo.Context) error {
	var in models.TodoInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(in.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "priority must be low, medium or high")
	}

	if err := h.todos.AddTodo(c.Request().Context(), in); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *APIHandler) UpdateTodo(c echo.Context) error {
	var patch models.TodoPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "priority must be low, medium or high")
	}

	id := c.Param("id")
	if err := h.todos.UpdateTodo(c.Request().Context(), id, patch); err != nil {
		return storeError(err)
	}
	return h.todoOrAccepted(c, id)
}

func (h *APIHandler) DeleteTodo(c echo.Context) error {
	if err := h.todos.DeleteTodo(c.Request().Context(), c.Param("id")); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *APIHandler) ToggleImportant(c echo.Context) error {
	return h.toggle(c, h.todos.ToggleImportant)
}

func (h *APIHandler) ToggleBookmark(c echo.Context) error {
	return h.toggle(c, h.todos.ToggleBookmark)
}

func (h *APIHandler) toggle(c echo.Context, fn func(ctx context.Context, id string) error) error {
	id := c.Param("id")
	if _, ok := h.todos.Todo(id); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "todo not found")
	}
	if err := fn(c.Request().Context(), id); err != nil {
		return storeError(err)
	}
	return h.todoOrAccepted(c, id)
}

func (h *APIHandler) todoOrAccepted(c echo.Context, id string) error {
	if todo, ok := h.todos.Todo(id); ok {
		return c.JSON(http.StatusOK, todo)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *APIHandler) SetView(c echo.Context) error {
	var req viewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Filter != "" {
		f, err := store.ParseFilter(req.Filter)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.todos.SetFilter(f)
	}
	if req.SortBy != "" {
		k, err := store.ParseSortKey(req.SortBy)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.todos.SetSortBy(k)
	}
	h.todos.SelectCategory(req.SelectedCategory)
	h.todos.SetSelectedTags(req.SelectedTags)

	return c.JSON(http.StatusOK, h.snapshot())
}

func (h *APIHandler) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.todos.CategoriesWithCount())
}

func (h *APIHandler) AddCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	category, err := h.todos.AddCategory(c.Request().Context(), req.Name, req.Color)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "failed to add category")
	}
	if category == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *APIHandler) ListTags(c echo.Context) error {
	return c.JSON(http.StatusOK, h.todos.TagsWithCount())
}

func (h *APIHandler) AddTag(c echo.Context) error {
	var req tagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	tag, err := h.todos.AddTag(c.Request().Context(), req.Name)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "failed to add tag")
	}
	if tag == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return c.JSON(http.StatusCreated, tag)
}

func (h *APIHandler) GetPreferences(c echo.Context) error {
	return c.JSON(http.StatusOK, h.preferences())
}

func (h *APIHandler) preferences() preferencesResponse {
	return preferencesResponse{
		Preferences: h.prefs.Preferences(),
		RootClass:   h.root.ClassName(),
	}
}

func (h *APIHandler) UpdateTheme(c echo.Context) error {
	var patch models.ThemePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if patch.Primary != "" && !models.KnownThemeColor(patch.Primary) {
		return echo.NewHTTPError(http.StatusBadRequest, "primary must be one of "+strings.Join(models.ThemeColors, ", "))
	}

	if err := h.prefs.UpdateTheme(patch); err != nil {
		log.Printf("Failed to save theme: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save preferences")
	}
	return c.JSON(http.StatusOK, h.preferences())
}

func (h *APIHandler) ToggleSidebar(c echo.Context) error {
	if err := h.prefs.ToggleSidebar(); err != nil {
		log.Printf("Failed to save sidebar state: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save preferences")
	}
	return c.JSON(http.StatusOK, h.preferences())
}

func (h *APIHandler) ResetPreferences(c echo.Context) error {
	if err := h.prefs.ResetPreferences(); err != nil {
		log.Printf("Failed to reset preferences: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save preferences")
	}
	return c.JSON(http.StatusOK, h.preferences())
}

func (h *APIHandler) ListNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, h.notifications.Recent())
}

// storeError maps store failures to HTTP errors. The store has already
// logged and notified.
func storeError(err error) error {
	if errors.Is(err, store.ErrNotSignedIn) {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return echo.NewHTTPError(http.StatusBadGateway, err.Error())
}
