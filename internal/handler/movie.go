package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"moviweb/internal/queue"
	"moviweb/internal/repository"
	"moviweb/internal/service"
)

// MovieHandler exposes the movie and favorites endpoints on top of the
// collection store. Publish announces new favorites to the broker; it
// runs outside the request goroutine and its errors are ignored.
type MovieHandler struct {
	Store   *service.Collection
	Publish func(ctx context.Context, ev queue.FavoriteAddedEvent) error
}

// NewMovieHandler constructs a MovieHandler and panics if the store is nil.
func NewMovieHandler(store *service.Collection) *MovieHandler {
	if store == nil {
		panic("nil store passed to NewMovieHandler")
	}
	return &MovieHandler{Store: store, Publish: service.PublishFavoriteAdded}
}

// ListMovies handles GET /api/movies and returns every movie any user
// has favorited.
func (h *MovieHandler) ListMovies(c echo.Context) error {
	movies, err := h.Store.ListMovies(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"movies":  movies,
		"count":   len(movies),
	})
}

// ListUserMovies handles GET /api/users/:id/movies and returns the
// user's collection with per-user ratings.
func (h *MovieHandler) ListUserMovies(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	user, err := h.Store.GetUser(ctx, userID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	movies, err := h.Store.GetUserMovies(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"user_id":   userID,
		"user_name": user.Name,
		"movies":    movies,
		"count":     len(movies),
	})
}

// AddUserMovie handles POST /api/users/:id/movies. The title is
// resolved through the catalog; an unknown title is 404, a movie the
// user already has is 409, a new favorite is 201.
func (h *MovieHandler) AddUserMovie(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	user, err := h.Store.GetUser(ctx, userID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	var body struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "request body must be valid JSON"})
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}

	res, err := h.Store.AddMovieToUser(ctx, userID, title)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not add movie"})
	}
	switch res.Outcome {
	case service.OutcomeNotFound:
		return c.JSON(http.StatusNotFound, map[string]any{
			"success": false,
			"error":   fmt.Sprintf("movie %q not found", title),
		})
	case service.OutcomeLinked:
		return c.JSON(http.StatusConflict, map[string]any{
			"success": false,
			"error":   fmt.Sprintf("movie %q is already in user's favorites", title),
		})
	}

	// Announce the new favorite; the broker must never block or fail the
	// response.
	ev := queue.FavoriteAddedEvent{
		UserID:      user.ID,
		UserName:    user.Name,
		MovieID:     res.Movie.ID,
		MovieTitle:  res.Movie.Title,
		ReleaseYear: res.Movie.ReleaseYear,
		UserRating:  res.UserRating,
		AddedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = h.Publish(context.Background(), ev) }()

	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": fmt.Sprintf("movie %q added successfully", title),
		"movie":   res.Movie,
	})
}

// RemoveUserMovie handles DELETE /api/users/:id/movies/:movie_id and
// removes a movie from the user's favorites. The movie row itself
// disappears when this was its last link.
func (h *MovieHandler) RemoveUserMovie(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	movieID, err := strconv.ParseUint(c.Param("movie_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid movie id"})
	}
	movie, err := h.Store.RemoveMovieFromUser(c.Request().Context(), userID, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not remove movie"})
	}
	if movie == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "movie not found in user's favorites"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"removed": movie,
	})
}

// GetUserMovieRating handles GET /api/users/:id/movies/:movie_id/rating.
// A link without a rating returns a null rating, a missing link is 404.
func (h *MovieHandler) GetUserMovieRating(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	movieID, err := strconv.ParseUint(c.Param("movie_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid movie id"})
	}
	rating, linked, err := h.Store.GetUserMovieRating(c.Request().Context(), userID, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if !linked {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "movie not found in user's favorites"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user_id":  userID,
		"movie_id": movieID,
		"rating":   rating,
	})
}

// UpdateUserMovieRating handles PUT /api/users/:id/movies/:movie_id/rating
// and overwrites the user's personal rating on the link. The movie's
// catalog rating is untouched. A null rating leaves the stored value as
// it is.
func (h *MovieHandler) UpdateUserMovieRating(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	movieID, err := strconv.ParseUint(c.Param("movie_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid movie id"})
	}
	var body struct {
		Rating *float64 `json:"rating"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "request body must be valid JSON"})
	}
	if body.Rating != nil && (*body.Rating < 0 || *body.Rating > 10) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "rating must be between 0 and 10"})
	}
	err = h.Store.UpdateUserMovieRating(c.Request().Context(), movieID, userID, body.Rating)
	if err != nil {
		switch err {
		case repository.ErrMovieNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": "movie not found"})
		case repository.ErrLinkNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": "movie not found in user's favorites"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
