package main // Entry point package

import (
	"context"
	"database/sql"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"moviweb/internal/config"
	"moviweb/internal/database"
	"moviweb/internal/handler"
	"moviweb/internal/middleware"
	"moviweb/internal/queue"
	"moviweb/internal/repository"
	"moviweb/internal/router"
	"moviweb/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	var (
		db  *sql.DB
		err error
	)
	switch cfg.DBDriver {
	case "mysql":
		db, err = database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	default:
		db, err = database.OpenSQLite(cfg.SQLitePath)
	}
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.EnsureSchema(context.Background(), db, cfg.DBDriver); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	// Repositories and the collection store
	users := repository.NewUserRepo(db)
	movies := repository.NewMovieRepo(db)
	links := repository.NewUserMovieRepo(db)
	catalog := service.NewOMDBClient(cfg.OMDBBaseURL, cfg.OMDBAPIKey)
	store := service.NewCollection(db, users, movies, links, catalog)
	recommender := service.NewGeminiClient("", cfg.GeminiAPIKey, cfg.GeminiModel)

	// Redis-backed middleware; both degrade to nil when Redis is down.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, response cache and rate limiting disabled")
	}
	var limit, cache echo.MiddlewareFunc
	if rdb != nil {
		limit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e,
		handler.NewUserHandler(store),
		handler.NewMovieHandler(store),
		handler.NewRecommendHandler(recommender),
		limit, cache)

	// Consume favorite.added events in the background; the consumer
	// reconnects on its own and never takes the server down.
	go func() {
		if err := queue.StartFavoriteConsumer(); err != nil {
			log.Printf("favorite consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBDriver)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
