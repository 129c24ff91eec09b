package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Recommender produces up to five titles similar to the given one. A
// nil result means the recommendation service could not answer (no API
// key, quota, network error or unparseable output).
type Recommender interface {
	Suggest(ctx context.Context, title string) []string
}

// RecommendHandler exposes the AI recommendation endpoint.
type RecommendHandler struct {
	Recommender Recommender
}

// NewRecommendHandler constructs a RecommendHandler and panics if the
// recommender is nil.
func NewRecommendHandler(r Recommender) *RecommendHandler {
	if r == nil {
		panic("nil recommender passed to NewRecommendHandler")
	}
	return &RecommendHandler{Recommender: r}
}

// GetRecommendations handles GET /api/movies/recommendations?title=X.
// Upstream trouble is reported generically; it is never a crash.
func (h *RecommendHandler) GetRecommendations(c echo.Context) error {
	title := strings.TrimSpace(c.QueryParam("title"))
	if title == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "movie title is required. Provide it as a query parameter: ?title=Movie Name",
		})
	}
	movies := h.Recommender.Suggest(c.Request().Context(), title)
	if movies == nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "failed to get movie recommendations",
		})
	}
	if len(movies) == 0 {
		return c.JSON(http.StatusNotFound, map[string]any{
			"success": false,
			"error":   fmt.Sprintf("no recommendations found for %q", title),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":         true,
		"original_movie":  title,
		"recommendations": movies,
		"count":           len(movies),
	})
}
