package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chameleon/server/internal/config"
	"github.com/chameleon/server/internal/handlers"
	"github.com/chameleon/server/internal/kv"
	custommw "github.com/chameleon/server/internal/middleware"
	"github.com/chameleon/server/internal/observability"
	"github.com/chameleon/server/internal/repository"
	"github.com/chameleon/server/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize telemetry
	telemetry, err := observability.Initialize(context.Background(),
		observability.NewConfig("chameleon-server", "1.0.0"))
	if err != nil {
		log.Printf("Warning: telemetry initialization failed: %v", err)
	}

	// Initialize storage backend
	log.Printf("Using %s storage", cfg.Storage.Driver)
	store, err := kv.Open(cfg.Storage.Driver, cfg.Storage.BasePath, cfg.Storage.DatabasePath, cfg.Storage.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Repositories
	recipeRepo := repository.NewRecipeRepository(store)
	groupRepo := repository.NewGroupRepository(store)
	userRepo := repository.NewUserRepository(store)

	// Image generator
	var generator services.ImageGenerator
	var localGen *services.LocalImageGenerator
	switch cfg.ImageGen.Provider {
	case "local":
		localGen, err = services.NewLocalImageGenerator(cfg.ImageGen.OutputDir, cfg.ImageGen.BaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize image generator: %v", err)
		}
		generator = localGen
	default:
		generator = services.NewMockImageGenerator(cfg.ImageGen.Delay)
	}

	// WebSocket hub
	var hub *services.WebSocketHub
	if cfg.WebSocket.Enabled {
		hub = services.NewWebSocketHub()
		go hub.Run()
	}

	// Services
	groupService := services.NewGroupService(groupRepo, userRepo, hub)
	recipeService := services.NewRecipeService(recipeRepo, groupService, generator, hub)
	ingestionService := services.NewIngestionService(cfg.Ingestion.Delay)

	if metrics, err := observability.NewRecipeMetrics(); err == nil {
		recipeService.SetMetrics(metrics)
		ingestionService.SetMetrics(metrics)
	} else {
		log.Printf("Warning: metrics initialization failed: %v", err)
	}

	// Handlers
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	groupHandler := handlers.NewGroupHandler(groupService)
	userHandler := handlers.NewUserHandler(userRepo)
	themeHandler := handlers.NewThemeHandler()
	ingestionHandler := handlers.NewIngestionHandler(ingestionService)
	healthHandler := handlers.NewHealthHandler()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TracingMiddleware("chameleon-server"))
	if httpMetrics, err := observability.NewHTTPMetrics(); err == nil {
		r.Use(observability.MetricsMiddleware(httpMetrics))
	}
	r.Use(custommw.UserAuth(userRepo, []string{"/health", "/api/health", "/api/ws"}))

	// Routes
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/api/health", healthHandler.HealthCheck)

	r.Get("/api/users", userHandler.ListUsers)
	r.Get("/api/users/{id}", userHandler.GetUser)
	r.Get("/api/themes", themeHandler.ListThemes)

	r.Route("/api/recipes", func(r chi.Router) {
		r.Get("/", recipeHandler.ListRecipes)
		r.Post("/", recipeHandler.SaveRecipe)
		r.Get("/{id}", recipeHandler.GetRecipe)
		r.Delete("/{id}", recipeHandler.DeleteRecipe)
		r.Post("/{id}/share", recipeHandler.ShareRecipe)
		r.Post("/{id}/unshare", recipeHandler.UnshareRecipe)
		r.Post("/{id}/image", recipeHandler.GenerateImage)
	})

	r.Route("/api/groups", func(r chi.Router) {
		r.Get("/", groupHandler.ListGroups)
		r.Post("/", groupHandler.CreateGroup)
		r.Delete("/{id}", groupHandler.DeleteGroup)
		r.Post("/{id}/members", groupHandler.AddMember)
		r.Delete("/{id}/members/{userId}", groupHandler.RemoveMember)
	})

	r.Route("/api/ingest", func(r chi.Router) {
		r.Post("/url", ingestionHandler.ParseURL)
		r.Post("/scan", ingestionHandler.ParseScan)
	})

	if hub != nil {
		wsHandler := handlers.NewWebSocketHandler(hub, userRepo, groupService)
		r.Get("/api/ws", wsHandler.HandleConnection)
	}

	// Locally generated placeholder images are served as static files
	if localGen != nil {
		fileServer := http.StripPrefix("/images/", http.FileServer(http.Dir(localGen.OutputDir())))
		r.Get("/images/*", fileServer.ServeHTTP)
	}

	// Create server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Chameleon Server starting on %s", cfg.ServerAddress)
		log.Printf("Image generator: %s", cfg.ImageGen.Provider)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(ctx); err != nil {
			log.Printf("Telemetry shutdown error: %v", err)
		}
	}

	log.Println("Server stopped")
}
