package handler

import (
	"net/http"      // http provides status code constants
	"strconv"       // strconv parses string identifiers to numeric types
	"strings"       // strings offers trimming utilities
	"unicode/utf8"  // utf8 counts characters for the name length policy

	"github.com/labstack/echo/v4"

	"moviweb/internal/repository"
	"moviweb/internal/service"
)

// minNameLen and maxNameLen define the user name length policy. The
// policy lives at the handler layer; the store itself only rejects
// empty names.
const (
	minNameLen = 2
	maxNameLen = 20
)

// UserHandler exposes the user-management endpoints on top of the
// collection store.
type UserHandler struct {
	Store *service.Collection
}

// NewUserHandler constructs a UserHandler and panics if the store is nil.
func NewUserHandler(store *service.Collection) *UserHandler {
	if store == nil {
		panic("nil store passed to NewUserHandler")
	}
	return &UserHandler{Store: store}
}

// validName checks the 2-20 character policy on an already-trimmed name.
func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= minNameLen && n <= maxNameLen
}

// ListUsers handles GET /api/users and returns all users.
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.Store.ListUsers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"users":   users,
		"count":   len(users),
	})
}

// GetUser handles GET /api/users/:id.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	user, err := h.Store.GetUser(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser handles POST /api/users and creates a new user. The name
// must be 2-20 characters and unique across all users.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var body struct {
		Name string `json:"name"` // Name is the only field of a user
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if !validName(name) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name must be 2-20 characters"})
	}
	// Probe for an existing user first so the common case reads as a
	// clean conflict; the unique key backs this up under races.
	if _, exists, err := h.Store.GetUserByName(c.Request().Context(), name); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	} else if exists {
		return c.JSON(http.StatusConflict, map[string]string{"error": "user name already exists"})
	}
	user, err := h.Store.AddUser(c.Request().Context(), name)
	if err != nil {
		switch err {
		case repository.ErrInvalidName:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
		case repository.ErrNameExists:
			return c.JSON(http.StatusConflict, map[string]string{"error": "user name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create user"})
	}
	return c.JSON(http.StatusCreated, user)
}

// RenameUser handles PUT /api/users/:id and updates the user's name.
func (h *UserHandler) RenameUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if !validName(name) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name must be 2-20 characters"})
	}
	if err := h.Store.RenameUser(c.Request().Context(), id, name); err != nil {
		switch err {
		case repository.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		case repository.ErrNameExists:
			return c.JSON(http.StatusConflict, map[string]string{"error": "user name already exists"})
		case repository.ErrInvalidName:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	updated, err := h.Store.GetUser(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteUser handles DELETE /api/users/:id. Deleting a user removes all
// of their favorites and every movie no other user still links to.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	name, err := h.Store.DeleteUser(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete user"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":      true,
		"deleted_user": name,
	})
}
