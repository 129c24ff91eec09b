package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework handles routing

	"moviweb/internal/handler" // handlers implement the endpoint logic
)

// RegisterRoutes registers routes that exist outside the /api surface.
// Currently it exposes only a health check, which load balancers and
// monitoring systems use to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the JSON API under /api. The rate limiter and
// the response cache are applied group-wide; either may be nil when
// Redis is unavailable, in which case that middleware is skipped. The
// cache configuration restricts caching to GET responses, so mounting
// it on the whole group is safe.
func RegisterAPI(e *echo.Echo, u *handler.UserHandler, m *handler.MovieHandler, r *handler.RecommendHandler, limit, cache echo.MiddlewareFunc) {
	api := e.Group("/api")
	if limit != nil {
		api.Use(limit)
	}
	if cache != nil {
		api.Use(cache)
	}

	// User management
	api.GET("/users", u.ListUsers)
	api.POST("/users", u.CreateUser)
	api.GET("/users/:id", u.GetUser)
	api.PUT("/users/:id", u.RenameUser)
	api.DELETE("/users/:id", u.DeleteUser)

	// Movies and favorites
	api.GET("/movies", m.ListMovies)
	api.GET("/users/:id/movies", m.ListUserMovies)
	api.POST("/users/:id/movies", m.AddUserMovie)
	api.DELETE("/users/:id/movies/:movie_id", m.RemoveUserMovie)
	api.GET("/users/:id/movies/:movie_id/rating", m.GetUserMovieRating)
	api.PUT("/users/:id/movies/:movie_id/rating", m.UpdateUserMovieRating)

	// AI recommendations
	api.GET("/movies/recommendations", r.GetRecommendations)
}
