package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"ulasan/internal/config"
	"ulasan/internal/database"
	"ulasan/internal/handlers"
	"ulasan/internal/mail"
	"ulasan/internal/middleware"
	"ulasan/internal/repositories"
	"ulasan/internal/services"
)

// NewApp wires repositories, services and handlers into a Fiber app.
func NewApp(cfg config.Config, db *gorm.DB, mailer mail.Mailer) *fiber.App {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	genreRepo := repositories.NewGORMGenreRepository(db)
	titleRepo := repositories.NewGORMTitleRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	commentRepo := repositories.NewGORMCommentRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, mailer, services.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		MailFrom:       cfg.MailFrom,
		MailFailLoudly: cfg.MailFailLoudly,
	})
	userService := services.NewUserService(userRepo)
	catalogService := services.NewCatalogService(categoryRepo, genreRepo)
	ratingService := services.NewRatingService(reviewRepo)
	titleService := services.NewTitleService(titleRepo, categoryRepo, genreRepo, ratingService)
	reviewService := services.NewReviewService(reviewRepo, titleRepo)
	commentService := services.NewCommentService(commentRepo, reviewRepo)

	// --- Handlers ---
	pager := handlers.Paginator{DefaultSize: cfg.PageSize, MaxSize: cfg.MaxPageSize}
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, pager)
	catalogHandler := handlers.NewCatalogHandler(catalogService, pager)
	titleHandler := handlers.NewTitleHandler(titleService, pager)
	reviewHandler := handlers.NewReviewHandler(reviewService, commentService, pager)

	app := fiber.New(fiber.Config{AppName: "ulasan"})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		code, status, dbStatus := fiber.StatusOK, "healthy", "up"
		if err := database.Ping(db); err != nil {
			code, status, dbStatus = fiber.StatusServiceUnavailable, "unhealthy", "down"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
		})
	})

	apiV1 := app.Group("/api/v1", middleware.Authenticate(authService))
	authHandler.RegisterRoutes(apiV1)
	userHandler.RegisterRoutes(apiV1)
	catalogHandler.RegisterRoutes(apiV1)
	titleHandler.RegisterRoutes(apiV1)
	reviewHandler.RegisterRoutes(apiV1)

	return app
}
