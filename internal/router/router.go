package router

import (
	"fmt"
	"log/slog"

	"github.com/anonto42/threadboard/backend/internal/handlers"
	"github.com/anonto42/threadboard/backend/internal/repositories"
	"github.com/anonto42/threadboard/backend/internal/services"
	"github.com/anonto42/threadboard/backend/internal/view"
	"github.com/anonto42/threadboard/backend/pkg/config"
	"github.com/labstack/echo/v4"
)

// newStores picks the repositories matching the open store driver
func newStores(db *config.DB) (repositories.PostRepository, repositories.CommentRepository, error) {
	switch db.Driver {
	case config.DriverPostgres:
		if err := repositories.AutoMigrate(db.Postgres); err != nil {
			return nil, nil, fmt.Errorf("failed to auto migrate models: %w", err)
		}
		return repositories.NewPostgresPostRepository(db.Postgres), repositories.NewPostgresCommentRepository(db.Postgres), nil
	case config.DriverMongo:
		return repositories.NewMongoPostRepository(db.MongoDB), repositories.NewMongoCommentRepository(db.MongoDB), nil
	case config.DriverFirestore:
		client := db.Firestore.Firestore
		return repositories.NewFirestorePostRepository(client), repositories.NewFirestoreCommentRepository(client), nil
	case config.DriverMemory:
		store := repositories.NewMemoryStore()
		return store, store, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", db.Driver)
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *config.DB, cfg *config.Config, logger *slog.Logger) error {
	postRepo, commentRepo, err := newStores(db)
	if err != nil {
		return err
	}

	renderer, err := view.NewRenderer(cfg.RenderCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create content renderer: %w", err)
	}
	contentService := services.NewContentService(postRepo, commentRepo, logger)

	// Health check
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api/v1")

	postHandler := handlers.NewPostHandler(contentService, renderer, cfg.FeedExcerptWords)
	postHandler.RegisterPostRoutes(api)

	commentHandler := handlers.NewCommentHandler(contentService)
	commentHandler.RegisterCommentRoutes(api)

	logger.Info("routes configured", "store", db.Driver)
	return nil
}
