package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	fiberRecover "github.com/gofiber/fiber/v3/middleware/recover"

	"movie-discovery-backend/internal/auth"
	"movie-discovery-backend/internal/config"
	"movie-discovery-backend/internal/database"
	"movie-discovery-backend/internal/handler"
	"movie-discovery-backend/internal/middleware"
	"movie-discovery-backend/internal/repository"
	"movie-discovery-backend/internal/service"
	"movie-discovery-backend/internal/tmdb"
)

func main() {
	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Load configuration (fails when JWT_SECRET or TMDB_API_KEY are missing)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis (non-fatal if unavailable; caching and rate limiting
	// degrade gracefully)
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without cache", "error", err)
	}

	// Initialize TMDB client
	tmdbClient := tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL)

	// Initialize layers
	tokens := auth.NewTokenManager(cfg.Auth.Secret, "movie-discovery-backend", time.Duration(cfg.Auth.TokenHours)*time.Hour)
	userRepo := repository.NewUserRepository(db)
	userSvc := service.NewUserService(userRepo, tokens)
	movieSvc := service.NewMovieService(tmdbClient, rdb)
	userHandler := handler.NewUserHandler(userSvc)
	movieHandler := handler.NewMovieHandler(movieSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Movie Discovery Backend",
		ServerHeader: "Movie-Discovery",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(fiberRecover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// Rate limiting (no-op when Redis is down)
	rateLimiter := middleware.NewRateLimiter(rdb, cfg.RateLimit)
	app.Use(rateLimiter.Handler())

	// Swagger docs
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
	} else {
		handler.RegisterSwagger(app, swaggerYAML)
	}

	api := app.Group("/api")
	api.Get("/health", movieHandler.Health)

	// Accounts & sessions
	api.Post("/users", userHandler.Authenticate)

	// Per-user collections (authenticated; the token is re-verified and the
	// account freshly resolved on every request)
	users := api.Group("/users", middleware.Auth(userSvc))
	users.Get("/favorites", userHandler.GetSet(repository.SetFavorites))
	users.Post("/favorites/:movieId", userHandler.AddToSet(repository.SetFavorites))
	users.Delete("/favorites/:movieId", userHandler.RemoveFromSet(repository.SetFavorites))
	users.Get("/mustwatch", userHandler.GetSet(repository.SetMustWatch))
	users.Post("/mustwatch/:movieId", userHandler.AddToSet(repository.SetMustWatch))
	users.Delete("/mustwatch/:movieId", userHandler.RemoveFromSet(repository.SetMustWatch))
	users.Get("/reviews", userHandler.ListReviews)
	users.Post("/reviews/:movieId", userHandler.UpsertReview)

	// Read-through TMDB proxies (URL reshaping only)
	movies := api.Group("/movies")
	movies.Get("/home", movieHandler.Proxy("/discover/movie"))
	movies.Get("/top-rated", movieHandler.Proxy("/movie/top_rated"))
	movies.Get("/upcoming", movieHandler.Proxy("/movie/upcoming"))
	movies.Get("/trending", movieHandler.Proxy("/trending/movie/day"))
	movies.Get("/search", movieHandler.Proxy("/search/movie"))
	movies.Get("/discover", movieHandler.Discover)
	movies.Get("/:id", movieHandler.ProxyID("/movie/%s"))
	movies.Get("/:id/credits", movieHandler.ProxyID("/movie/%s/credits"))
	movies.Get("/:id/reviews", movieHandler.ProxyID("/movie/%s/reviews"))
	movies.Get("/:id/similar", movieHandler.ProxyID("/movie/%s/similar"))

	api.Get("/genres", movieHandler.Proxy("/genre/movie/list"))

	people := api.Group("/people")
	people.Get("/popular", movieHandler.Proxy("/person/popular"))
	people.Get("/:id", movieHandler.ProxyID("/person/%s"))
	people.Get("/:id/credits", movieHandler.ProxyID("/person/%s/combined_credits"))

	// Admin
	api.Post("/admin/cache/purge", movieHandler.PurgeCache)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		slog.Info("starting movie discovery backend", "addr", addr)
		if err := app.Listen(addr); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down...")

	if err := app.Shutdown(); err != nil {
		slog.Error("error shutting down HTTP server", "error", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("error closing Redis connection", "error", err)
		}
	}

	slog.Info("shutdown complete")
}
